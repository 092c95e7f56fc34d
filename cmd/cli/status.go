package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/sevigo/merge-warden/internal/wire"
	"github.com/spf13/cobra"
)

var outputJSON bool

var statusCmd = &cobra.Command{
	Use:   "status [project-id]",
	Short: "Shows all stored review results for a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		ctx := context.Background()

		projectID, err := strconv.Atoi(args[0])
		if err != nil || projectID <= 0 {
			return fmt.Errorf("invalid project id %q", args[0])
		}

		app, cleanup, err := wire.InitializeApp(ctx)
		if err != nil {
			return fmt.Errorf("failed to initialize app services: %w", err)
		}
		defer cleanup()

		results, err := app.Usecase.ListReviews(ctx, projectID)
		if err != nil {
			return fmt.Errorf("failed to retrieve reviews: %w", err)
		}

		if outputJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(results)
		}

		if len(results) == 0 {
			slog.Info("No reviews stored for this project.", "project_id", projectID)
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "MR\tRECOMMENDATION\tSCORE\tCOMMENTS\tREVIEWED AT")
		for _, r := range results {
			fmt.Fprintf(w, "!%d\t%s\t%d\t%d\t%s\n",
				r.MRID,
				r.Recommendation,
				r.QualityScore,
				len(r.Comments),
				r.ReviewedAt.Format(time.RFC822),
			)
		}
		return w.Flush()
	},
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	statusCmd.Flags().BoolVar(&outputJSON, "json", false, "Output reviews as JSON")
	rootCmd.AddCommand(statusCmd)
}
