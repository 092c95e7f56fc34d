package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sevigo/merge-warden/internal/core"
)

func TestBuildAnalysisPrompt(t *testing.T) {
	req := Request{
		Title:       "Add retry to fetcher",
		Description: "Retries transient failures up to three times.",
		Diffs: []core.FileDiff{
			{NewPath: "internal/fetch/fetch.go", Diff: "+func retry() {}"},
			{NewPath: "internal/fetch/fetch_test.go", Diff: "+func TestRetry(t *testing.T) {}"},
		},
		Standards: []string{
			"Ensure proper error handling",
			"Write unit tests for new functionality",
		},
	}

	prompt := buildAnalysisPrompt(req)

	assert.Contains(t, prompt, "**Merge Request Title:** Add retry to fetcher")
	assert.Contains(t, prompt, "Retries transient failures up to three times.")
	assert.Contains(t, prompt, "- Ensure proper error handling\n- Write unit tests for new functionality")
	assert.Contains(t, prompt, "### File: internal/fetch/fetch.go\n```diff\n+func retry() {}\n```")
	assert.Contains(t, prompt, "### File: internal/fetch/fetch_test.go")
	assert.Contains(t, prompt, `"recommendation": "merge|needs_fixes|reject"`)
	assert.Contains(t, prompt, `"severity": "critical|warning|info"`)
}

func TestStubAnalyzer(t *testing.T) {
	analyzer := NewStubAnalyzer()

	analysis, err := analyzer.Analyze(context.Background(), Request{
		Title: "test",
		Diffs: []core.FileDiff{{NewPath: "server.go", Diff: "+x"}},
	})

	assert.NoError(t, err)
	assert.Len(t, analysis.Comments, 1)
	assert.Equal(t, "server.go", analysis.Comments[0].FilePath)
	assert.Equal(t, core.RecommendMerge, analysis.Recommendation)
	assert.Equal(t, 80, analysis.QualityScore)
}
