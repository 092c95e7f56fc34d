// Package core defines the essential interfaces and data structures that form the
// backbone of the application. These components are designed to be abstract,
// allowing for flexible and decoupled implementations of the application's logic.
package core

import (
	"fmt"
	"strings"
	"time"
)

// CommentSeverity classifies how urgent a review comment is.
type CommentSeverity string

const (
	SeverityInfo     CommentSeverity = "info"
	SeverityWarning  CommentSeverity = "warning"
	SeverityCritical CommentSeverity = "critical"
)

// ParseCommentSeverity maps a wire string onto a CommentSeverity.
// Unknown values are rejected so that stored records cannot silently
// degrade into a default.
func ParseCommentSeverity(s string) (CommentSeverity, error) {
	switch CommentSeverity(s) {
	case SeverityInfo, SeverityWarning, SeverityCritical:
		return CommentSeverity(s), nil
	}
	return "", fmt.Errorf("unknown comment severity %q", s)
}

// CommentCategory classifies the kind of issue a review comment raises.
type CommentCategory string

const (
	CategoryStyle        CommentCategory = "style_issue"
	CategoryCodeSmell    CommentCategory = "code_smell"
	CategoryBug          CommentCategory = "bug"
	CategoryPerformance  CommentCategory = "performance"
	CategorySecurity     CommentCategory = "security"
	CategoryBestPractice CommentCategory = "best_practice"
	CategoryFunctional   CommentCategory = "functional"
)

// ParseCommentCategory maps a wire string onto a CommentCategory.
func ParseCommentCategory(s string) (CommentCategory, error) {
	switch CommentCategory(s) {
	case CategoryStyle, CategoryCodeSmell, CategoryBug, CategoryPerformance,
		CategorySecurity, CategoryBestPractice, CategoryFunctional:
		return CommentCategory(s), nil
	}
	return "", fmt.Errorf("unknown comment category %q", s)
}

// Recommendation is the categorical verdict of a review.
type Recommendation string

const (
	RecommendMerge      Recommendation = "merge"
	RecommendNeedsFixes Recommendation = "needs_fixes"
	RecommendReject     Recommendation = "reject"
)

// ParseRecommendation maps a wire string onto a Recommendation.
func ParseRecommendation(s string) (Recommendation, error) {
	switch Recommendation(s) {
	case RecommendMerge, RecommendNeedsFixes, RecommendReject:
		return Recommendation(s), nil
	}
	return "", fmt.Errorf("unknown recommendation %q", s)
}

// MergeRequest is an immutable snapshot of a merge request as served by
// the host. ID is the host-global identifier; IID is the project-scoped
// one used everywhere else in the pipeline. The two must never be conflated.
type MergeRequest struct {
	ID             int
	ProjectID      int
	IID            int
	Title          string
	Description    string
	SourceBranch   string
	TargetBranch   string
	AuthorID       int
	AuthorUsername string
	AuthorEmail    string
	State          string
	WebURL         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// FileDiff holds the unified diff of a single changed file.
type FileDiff struct {
	OldPath     string
	NewPath     string
	Diff        string
	NewFile     bool
	DeletedFile bool
	RenamedFile bool
}

// Comment is a single piece of review feedback tied to a file and line.
// Comments are produced by the analyzer and never mutated afterwards.
type Comment struct {
	FilePath string
	Line     int
	Content  string
	Severity CommentSeverity
	Category CommentCategory
}

var severityEmoji = map[CommentSeverity]string{
	SeverityInfo:     "ℹ️",
	SeverityWarning:  "⚠️",
	SeverityCritical: "🚨",
}

// Markdown renders the comment body for posting on the host.
func (c Comment) Markdown() string {
	emoji, ok := severityEmoji[c.Severity]
	if !ok {
		emoji = "💡"
	}
	return fmt.Sprintf("%s **%s**: %s", emoji, titleCase(string(c.Category)), c.Content)
}

// Analysis is the outcome of one analyzer invocation.
type Analysis struct {
	Comments       []Comment
	Summary        string
	Recommendation Recommendation
	QualityScore   int
}

// ReviewResult is the stored outcome of reviewing one merge request.
// MRID is always the project-scoped IID used to fetch the merge request.
// A new review of the same (project, MR) pair overwrites the prior result.
type ReviewResult struct {
	MRID           int
	ProjectID      int
	Comments       []Comment
	Summary        string
	Recommendation Recommendation
	QualityScore   int
	ReviewedAt     time.Time
}

// SummaryMarkdown renders the aggregate summary note posted on the host.
func (r *ReviewResult) SummaryMarkdown() string {
	lines := []string{
		"## 🤖 AI Code Review Summary",
		"",
		fmt.Sprintf("**Recommendation**: %s", titleCase(string(r.Recommendation))),
		fmt.Sprintf("**Quality Score**: %d/100", r.QualityScore),
		"",
		r.Summary,
		"",
		fmt.Sprintf("**Total Issues Found**: %d", len(r.Comments)),
	}

	if len(r.Comments) > 0 {
		var critical, warnings, info int
		for _, c := range r.Comments {
			switch c.Severity {
			case SeverityCritical:
				critical++
			case SeverityWarning:
				warnings++
			case SeverityInfo:
				info++
			}
		}
		lines = append(lines,
			"",
			fmt.Sprintf("- 🚨 Critical: %d", critical),
			fmt.Sprintf("- ⚠️ Warnings: %d", warnings),
			fmt.Sprintf("- ℹ️ Info: %d", info),
		)
	}

	return strings.Join(lines, "\n")
}

// UserRating tracks the running quality rating of one author, keyed by
// email. New authors start at 500; every review moves the rating by the
// signed delta between its quality score and 50.
type UserRating struct {
	Email       string
	Rating      int
	ReviewCount int
	LastUpdated time.Time
}

// titleCase turns an enum wire string like "needs_fixes" into "Needs Fixes".
func titleCase(s string) string {
	words := strings.Split(strings.ReplaceAll(s, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
