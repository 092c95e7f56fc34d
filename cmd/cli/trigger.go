package main

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var triggerServerURL string

var triggerCmd = &cobra.Command{
	Use:   "trigger [project-id] [mr-iid]",
	Short: "Trigger a review on a running Merge-Warden service",
	Long: `Trigger a review on a running Merge-Warden service.

Unlike the review command, trigger does not run the review in-process. It
calls the service's manual trigger endpoint and returns as soon as the job
is queued.

Examples:
  warden-cli trigger 42 7
  warden-cli trigger --server http://warden.internal:8080 42 7`,
	Args: cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		projectID, mrIID, err := parseMRArgs(args)
		if err != nil {
			return err
		}

		url := fmt.Sprintf("%s/api/v1/reviews/%d/%d/trigger",
			strings.TrimRight(triggerServerURL, "/"), projectID, mrIID)

		client := &http.Client{Timeout: 30 * time.Second}
		resp, err := client.Post(url, "application/json", nil)
		if err != nil {
			return fmt.Errorf("failed to reach service at %s: %w", triggerServerURL, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusAccepted {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return fmt.Errorf("service rejected trigger: %s: %s", resp.Status, strings.TrimSpace(string(body)))
		}

		successColor.Printf("✅ Review queued for project %d, merge request !%d\n", projectID, mrIID)
		return nil
	},
}

func init() { //nolint:gochecknoinits // Cobra command registration
	triggerCmd.Flags().StringVar(&triggerServerURL, "server", "http://localhost:8080", "Base URL of the Merge-Warden service")
	rootCmd.AddCommand(triggerCmd)
}
