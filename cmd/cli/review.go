package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sevigo/merge-warden/internal/core"
	"github.com/sevigo/merge-warden/internal/wire"
)

var (
	verbose          bool
	reviewCmdTimeout int
)

// Color definitions
var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	infoColor    = color.New(color.FgWhite)
	dimColor     = color.New(color.FgHiBlack)
	boldColor    = color.New(color.Bold)
)

var reviewCmd = &cobra.Command{
	Use:   "review [project-id] [mr-iid]",
	Short: "Run an AI code review for a GitLab merge request",
	Long: `Run an AI code review for a GitLab merge request.

The review command fetches the merge request and its diff, analyzes the
changes with the configured LLM provider, stores the result, and posts
comments, a summary note, and labels back to GitLab.

Examples:
  warden-cli review 42 7
  warden-cli review --verbose 42 7`,
	Args: cobra.ExactArgs(2),
	RunE: runReview,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	reviewCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output with timing information")
	reviewCmd.Flags().IntVar(&reviewCmdTimeout, "timeout", 10, "Maximum time in minutes for the review")
	rootCmd.AddCommand(reviewCmd)
}

func runReview(_ *cobra.Command, args []string) error {
	projectID, mrIID, err := parseMRArgs(args)
	if err != nil {
		return err
	}

	timeout := time.Duration(reviewCmdTimeout) * time.Minute
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	overallStart := time.Now()

	titleColor.Println("🚀 Merge-Warden - MR Review")
	dimColor.Printf("   Target: project %d, merge request !%d\n\n", projectID, mrIID)

	fmt.Println("Initializing application...")
	appInstance, cleanup, err := wire.InitializeApp(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize app: %w\n\nTip: Check that GITLAB_TOKEN and the LLM credentials are set", err)
	}
	defer cleanup()

	fmt.Println("Reviewing merge request...")
	result, err := appInstance.Usecase.ReviewMergeRequest(ctx, projectID, mrIID)
	if err != nil {
		return fmt.Errorf("failed to review merge request: %w\n\nTip: Check that the merge request exists and your token has access", err)
	}

	fmt.Println("Posting results back to GitLab...")
	if err := appInstance.Usecase.PostReview(ctx, projectID, mrIID); err != nil {
		return fmt.Errorf("failed to post review: %w", err)
	}

	if verbose {
		dimColor.Printf("\n⏱️  Total time: %s\n", time.Since(overallStart).Round(time.Millisecond))
	}

	printReview(result)
	return nil
}

func parseMRArgs(args []string) (int, int, error) {
	projectID, err := strconv.Atoi(args[0])
	if err != nil || projectID <= 0 {
		return 0, 0, fmt.Errorf("invalid project id %q", args[0])
	}
	mrIID, err := strconv.Atoi(args[1])
	if err != nil || mrIID <= 0 {
		return 0, 0, fmt.Errorf("invalid merge request iid %q", args[1])
	}
	return projectID, mrIID, nil
}

func printReview(result *core.ReviewResult) {
	separator := strings.Repeat("═", 60)
	thinSeparator := strings.Repeat("─", 60)

	fmt.Println()
	titleColor.Println(separator)
	titleColor.Println("📋 REVIEW SUMMARY")
	titleColor.Println(separator)
	fmt.Println()
	infoColor.Println(result.Summary)
	fmt.Println()
	printRecommendation(result.Recommendation)
	dimColor.Printf("   Quality score: %d/100\n", result.QualityScore)

	if len(result.Comments) == 0 {
		fmt.Println()
		successColor.Println("✅ No issues found!")
		return
	}

	fmt.Println()
	warnColor.Println(thinSeparator)
	warnColor.Printf("💡 COMMENTS (%d)\n", len(result.Comments))
	warnColor.Println(thinSeparator)

	for i, c := range result.Comments {
		fmt.Println()
		printSeverityBadge(c.Severity)
		boldColor.Printf(" %s", c.FilePath)
		dimColor.Printf(":%d\n", c.Line)

		if c.Category != "" {
			dimColor.Printf("   Category: %s\n", c.Category)
		}
		fmt.Println()
		infoColor.Printf("%s\n", c.Content)

		if i < len(result.Comments)-1 {
			fmt.Println()
			dimColor.Println(strings.Repeat("─", 40))
		}
	}
	fmt.Println()
}

func printRecommendation(rec core.Recommendation) {
	switch rec {
	case core.RecommendMerge:
		successColor.Println("✅ Recommendation: merge")
	case core.RecommendNeedsFixes:
		warnColor.Println("🔧 Recommendation: needs fixes")
	case core.RecommendReject:
		errorColor.Println("⛔ Recommendation: reject")
	default:
		infoColor.Printf("Recommendation: %s\n", rec)
	}
}

func printSeverityBadge(severity core.CommentSeverity) {
	switch severity {
	case core.SeverityCritical:
		color.New(color.BgRed, color.FgWhite, color.Bold).Printf(" %s ", severity)
	case core.SeverityWarning:
		color.New(color.BgYellow, color.FgBlack).Printf(" %s ", severity)
	case core.SeverityInfo:
		color.New(color.BgGreen, color.FgWhite).Printf(" %s ", severity)
	default:
		color.New(color.BgWhite, color.FgBlack).Printf(" %s ", severity)
	}
}
