package llm

import (
	"context"

	"github.com/sevigo/merge-warden/internal/core"
)

// StubAnalyzer returns a fixed review without calling any network
// service. It exists for integration testing and for running the service
// without provider credentials.
type StubAnalyzer struct{}

// NewStubAnalyzer creates a stub analyzer.
func NewStubAnalyzer() *StubAnalyzer {
	return &StubAnalyzer{}
}

// Analyze returns one fixed informational comment and a merge recommendation.
func (a *StubAnalyzer) Analyze(_ context.Context, req Request) (*core.Analysis, error) {
	filePath := "main.go"
	if len(req.Diffs) > 0 {
		filePath = req.Diffs[0].NewPath
	}

	return &core.Analysis{
		Comments: []core.Comment{
			{
				FilePath: filePath,
				Line:     10,
				Content:  "This is a stub comment for testing purposes.",
				Severity: core.SeverityInfo,
				Category: core.CategoryBestPractice,
			},
		},
		Summary:        "Stub analysis completed. This is a test review.",
		Recommendation: core.RecommendMerge,
		QualityScore:   80,
	}, nil
}
