package llm

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/sevigo/merge-warden/internal/core"
)

// fallbackSummary is returned whenever the provider response cannot be
// parsed. The fallback never propagates as an error: a broken response
// yields a deterministic "needs fixes, score 0" analysis instead.
const fallbackSummary = "Failed to analyze code due to parsing error."

type analysisResponse struct {
	Comments       []json.RawMessage `json:"comments"`
	Summary        string            `json:"summary"`
	Recommendation string            `json:"recommendation"`
	QualityScore   *int              `json:"quality_score"`
}

type commentResponse struct {
	FilePath string `json:"file_path"`
	Line     int    `json:"line"`
	Content  string `json:"content"`
	Severity string `json:"severity"`
	Type     string `json:"type"`
}

// parseAnalysis extracts a structured Analysis from the raw provider
// output. It handles several common LLM quirks:
//   - response wrapped in a ```json or ``` code fence
//   - individual comments that fail to parse (dropped, not fatal)
//   - missing summary or quality_score fields
//
// Invalid JSON or an unknown recommendation invalidates the whole
// response and produces the fallback analysis.
func parseAnalysis(logger *slog.Logger, raw string) *core.Analysis {
	text := stripJSONFence(raw)

	var resp analysisResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		logger.Error("failed to parse LLM response", "error", err)
		logger.Debug("unparseable LLM response", "response", raw)
		return fallbackAnalysis()
	}

	recommendation, err := core.ParseRecommendation(withDefault(resp.Recommendation, string(core.RecommendNeedsFixes)))
	if err != nil {
		logger.Error("failed to parse LLM response", "error", err)
		return fallbackAnalysis()
	}

	comments := make([]core.Comment, 0, len(resp.Comments))
	for _, raw := range resp.Comments {
		comment, err := parseComment(raw)
		if err != nil {
			logger.Warn("dropping unparseable review comment", "error", err)
			continue
		}
		comments = append(comments, comment)
	}

	score := 50
	if resp.QualityScore != nil {
		score = *resp.QualityScore
	}

	return &core.Analysis{
		Comments:       comments,
		Summary:        withDefault(resp.Summary, "No summary provided"),
		Recommendation: recommendation,
		QualityScore:   score,
	}
}

func parseComment(raw json.RawMessage) (core.Comment, error) {
	var c commentResponse
	if err := json.Unmarshal(raw, &c); err != nil {
		return core.Comment{}, err
	}

	severity, err := core.ParseCommentSeverity(c.Severity)
	if err != nil {
		return core.Comment{}, err
	}
	category, err := core.ParseCommentCategory(c.Type)
	if err != nil {
		return core.Comment{}, err
	}

	return core.Comment{
		FilePath: c.FilePath,
		Line:     c.Line,
		Content:  c.Content,
		Severity: severity,
		Category: category,
	}, nil
}

func fallbackAnalysis() *core.Analysis {
	return &core.Analysis{
		Comments:       []core.Comment{},
		Summary:        fallbackSummary,
		Recommendation: core.RecommendNeedsFixes,
		QualityScore:   0,
	}
}

// stripJSONFence unwraps a response the model fenced as a markdown code
// block, preferring an explicit ```json fence over a bare one.
func stripJSONFence(s string) string {
	if start := strings.Index(s, "```json"); start >= 0 {
		inner := s[start+len("```json"):]
		if end := strings.Index(inner, "```"); end >= 0 {
			return strings.TrimSpace(inner[:end])
		}
		return strings.TrimSpace(inner)
	}
	if start := strings.Index(s, "```"); start >= 0 {
		inner := s[start+len("```"):]
		if end := strings.Index(inner, "```"); end >= 0 {
			return strings.TrimSpace(inner[:end])
		}
		return strings.TrimSpace(inner)
	}
	return s
}

func withDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
