package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewRecordRoundTrip(t *testing.T) {
	original := sampleResult(42, 7, 65)

	data, err := encodeReview(original)
	require.NoError(t, err)

	decoded, err := decodeReview(data)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestDecodeReviewRejectsBadRecords(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{
			name: "Not JSON",
			data: "garbage",
		},
		{
			name: "Unknown recommendation",
			data: `{"mr_id":7,"project_id":42,"recommendation":"approve","reviewed_at":"2026-08-12T09:30:00Z","comments":[]}`,
		},
		{
			name: "Unparseable timestamp",
			data: `{"mr_id":7,"project_id":42,"recommendation":"merge","reviewed_at":"yesterday","comments":[]}`,
		},
		{
			name: "Unknown comment severity",
			data: `{"mr_id":7,"project_id":42,"recommendation":"merge","reviewed_at":"2026-08-12T09:30:00Z","comments":[{"file_path":"a.go","line":1,"content":"x","severity":"fatal","type":"bug"}]}`,
		},
		{
			name: "Unknown comment category",
			data: `{"mr_id":7,"project_id":42,"recommendation":"merge","reviewed_at":"2026-08-12T09:30:00Z","comments":[{"file_path":"a.go","line":1,"content":"x","severity":"info","type":"mystery"}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeReview([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestDecodeReviewZeroDefaultsPlainFields(t *testing.T) {
	data := `{"mr_id":7,"project_id":42,"recommendation":"needs_fixes","reviewed_at":"2026-08-12T09:30:00Z"}`

	decoded, err := decodeReview([]byte(data))
	require.NoError(t, err)

	assert.Equal(t, 0, decoded.QualityScore)
	assert.Empty(t, decoded.Summary)
	assert.Empty(t, decoded.Comments)
	assert.Equal(t, time.Date(2026, 8, 12, 9, 30, 0, 0, time.UTC), decoded.ReviewedAt)
}

func TestReviewKey(t *testing.T) {
	assert.Equal(t, "42:7", reviewKey(42, 7))
	assert.Equal(t, "1:1", reviewKey(1, 1))
}
