package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sevigo/merge-warden/internal/core"
)

// reviewRecord is the serialized layout shared by the memory and
// key-value backends. Timestamps travel as RFC 3339 strings; enums travel
// as their wire strings and are validated strictly on the way back in.
// Plain fields absent from an older record decode to their zero values.
type reviewRecord struct {
	MRID           int             `json:"mr_id"`
	ProjectID      int             `json:"project_id"`
	Summary        string          `json:"summary"`
	Recommendation string          `json:"recommendation"`
	QualityScore   int             `json:"quality_score"`
	ReviewedAt     string          `json:"reviewed_at"`
	Comments       []commentRecord `json:"comments"`
}

type commentRecord struct {
	FilePath string `json:"file_path"`
	Line     int    `json:"line"`
	Content  string `json:"content"`
	Severity string `json:"severity"`
	Type     string `json:"type"`
}

func encodeReview(result *core.ReviewResult) ([]byte, error) {
	comments := make([]commentRecord, 0, len(result.Comments))
	for _, c := range result.Comments {
		comments = append(comments, commentRecord{
			FilePath: c.FilePath,
			Line:     c.Line,
			Content:  c.Content,
			Severity: string(c.Severity),
			Type:     string(c.Category),
		})
	}

	rec := reviewRecord{
		MRID:           result.MRID,
		ProjectID:      result.ProjectID,
		Summary:        result.Summary,
		Recommendation: string(result.Recommendation),
		QualityScore:   result.QualityScore,
		ReviewedAt:     result.ReviewedAt.Format(time.RFC3339Nano),
		Comments:       comments,
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to encode review record: %w", err)
	}
	return data, nil
}

// decodeReview reconstructs a ReviewResult from its serialized form.
// This is authoritative storage, not best-effort display: an unknown enum
// value or unparseable timestamp fails the whole reconstruction.
func decodeReview(data []byte) (*core.ReviewResult, error) {
	var rec reviewRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode review record: %w", err)
	}

	recommendation, err := core.ParseRecommendation(rec.Recommendation)
	if err != nil {
		return nil, fmt.Errorf("invalid review record: %w", err)
	}

	reviewedAt, err := time.Parse(time.RFC3339Nano, rec.ReviewedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid review record timestamp: %w", err)
	}

	comments := make([]core.Comment, 0, len(rec.Comments))
	for _, c := range rec.Comments {
		severity, err := core.ParseCommentSeverity(c.Severity)
		if err != nil {
			return nil, fmt.Errorf("invalid review record comment: %w", err)
		}
		category, err := core.ParseCommentCategory(c.Type)
		if err != nil {
			return nil, fmt.Errorf("invalid review record comment: %w", err)
		}
		comments = append(comments, core.Comment{
			FilePath: c.FilePath,
			Line:     c.Line,
			Content:  c.Content,
			Severity: severity,
			Category: category,
		})
	}

	return &core.ReviewResult{
		MRID:           rec.MRID,
		ProjectID:      rec.ProjectID,
		Summary:        rec.Summary,
		Recommendation: recommendation,
		QualityScore:   rec.QualityScore,
		ReviewedAt:     reviewedAt,
		Comments:       comments,
	}, nil
}
