package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sevigo/merge-warden/internal/storage"
	"github.com/sevigo/merge-warden/internal/wire"
)

var ratingCmd = &cobra.Command{
	Use:   "rating [email]",
	Short: "Shows the running quality rating of an author",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		ctx := context.Background()
		email := args[0]

		app, cleanup, err := wire.InitializeApp(ctx)
		if err != nil {
			return fmt.Errorf("failed to initialize app services: %w", err)
		}
		defer cleanup()

		rating, err := app.Usecase.GetRating(ctx, email)
		if errors.Is(err, storage.ErrNotFound) {
			dimColor.Printf("No rating stored for %s yet.\n", email)
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to retrieve rating: %w", err)
		}

		titleColor.Printf("⭐ Rating for %s\n", rating.Email)
		infoColor.Printf("   Rating:       %d\n", rating.Rating)
		infoColor.Printf("   Reviews:      %d\n", rating.ReviewCount)
		dimColor.Printf("   Last updated: %s\n", rating.LastUpdated.Format(time.RFC822))
		return nil
	},
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	rootCmd.AddCommand(ratingCmd)
}
