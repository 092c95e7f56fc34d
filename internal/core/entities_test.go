package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommentSeverity(t *testing.T) {
	tests := []struct {
		input     string
		want      CommentSeverity
		expectErr bool
	}{
		{"info", SeverityInfo, false},
		{"warning", SeverityWarning, false},
		{"critical", SeverityCritical, false},
		{"fatal", "", true},
		{"", "", true},
		{"Warning", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCommentSeverity(tt.input)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCommentCategory(t *testing.T) {
	valid := []string{"style_issue", "code_smell", "bug", "performance", "security", "best_practice", "functional"}
	for _, s := range valid {
		got, err := ParseCommentCategory(s)
		require.NoError(t, err)
		assert.Equal(t, CommentCategory(s), got)
	}

	_, err := ParseCommentCategory("refactor")
	assert.Error(t, err)
}

func TestParseRecommendation(t *testing.T) {
	valid := []string{"merge", "needs_fixes", "reject"}
	for _, s := range valid {
		got, err := ParseRecommendation(s)
		require.NoError(t, err)
		assert.Equal(t, Recommendation(s), got)
	}

	_, err := ParseRecommendation("approve")
	assert.Error(t, err)
}

func TestCommentMarkdown(t *testing.T) {
	tests := []struct {
		name    string
		comment Comment
		want    string
	}{
		{
			name: "Critical security comment",
			comment: Comment{
				Content:  "SQL built from user input.",
				Severity: SeverityCritical,
				Category: CategorySecurity,
			},
			want: "🚨 **Security**: SQL built from user input.",
		},
		{
			name: "Info best practice comment",
			comment: Comment{
				Content:  "Consider a table test.",
				Severity: SeverityInfo,
				Category: CategoryBestPractice,
			},
			want: "ℹ️ **Best Practice**: Consider a table test.",
		},
		{
			name: "Unknown severity falls back to a neutral marker",
			comment: Comment{
				Content:  "Something.",
				Severity: CommentSeverity("odd"),
				Category: CategoryBug,
			},
			want: "💡 **Bug**: Something.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.comment.Markdown())
		})
	}
}

func TestSummaryMarkdown(t *testing.T) {
	result := &ReviewResult{
		MRID:      7,
		ProjectID: 42,
		Comments: []Comment{
			{Severity: SeverityCritical, Category: CategorySecurity},
			{Severity: SeverityWarning, Category: CategoryBug},
			{Severity: SeverityWarning, Category: CategoryCodeSmell},
			{Severity: SeverityInfo, Category: CategoryStyle},
		},
		Summary:        "Needs attention before merging.",
		Recommendation: RecommendNeedsFixes,
		QualityScore:   45,
		ReviewedAt:     time.Now(),
	}

	md := result.SummaryMarkdown()

	assert.Contains(t, md, "## 🤖 AI Code Review Summary")
	assert.Contains(t, md, "**Recommendation**: Needs Fixes")
	assert.Contains(t, md, "**Quality Score**: 45/100")
	assert.Contains(t, md, "Needs attention before merging.")
	assert.Contains(t, md, "**Total Issues Found**: 4")
	assert.Contains(t, md, "- 🚨 Critical: 1")
	assert.Contains(t, md, "- ⚠️ Warnings: 2")
	assert.Contains(t, md, "- ℹ️ Info: 1")
}

func TestSummaryMarkdownWithoutComments(t *testing.T) {
	result := &ReviewResult{
		Summary:        "Clean change.",
		Recommendation: RecommendMerge,
		QualityScore:   95,
	}

	md := result.SummaryMarkdown()

	assert.Contains(t, md, "**Total Issues Found**: 0")
	assert.NotContains(t, md, "Critical:")
}
