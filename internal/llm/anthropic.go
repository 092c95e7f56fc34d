package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/sevigo/merge-warden/internal/core"
)

const defaultAnthropicModel = "claude-3-5-sonnet-20241022"

// AnthropicAnalyzer reviews merge requests through the Anthropic Messages
// API. The request and response shapes differ from the chat-completion
// providers, but the analyzer converges on the same JSON contract before
// parsing.
type AnthropicAnalyzer struct {
	api    *anthropic.Client
	model  anthropic.Model
	logger *slog.Logger
}

// NewAnthropicAnalyzer creates an analyzer backed by the Anthropic API.
func NewAnthropicAnalyzer(apiKey, model string, logger *slog.Logger) *AnthropicAnalyzer {
	if model == "" {
		model = defaultAnthropicModel
	}

	opts := []option.RequestOption{
		option.WithHTTPClient(newProviderHTTPClient()),
	}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	client := anthropic.NewClient(opts...)

	return &AnthropicAnalyzer{
		api:    &client,
		model:  anthropic.Model(model),
		logger: logger,
	}
}

// Analyze sends the review prompt to the Messages API and parses the
// JSON response.
func (a *AnthropicAnalyzer) Analyze(ctx context.Context, req Request) (*core.Analysis, error) {
	a.logger.Info("analyzing merge request", "files", len(req.Diffs), "model", a.model)

	msg, err := a.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     a.model,
		MaxTokens: 4096,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildAnalysisPrompt(req))),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic API call: %w", err)
	}

	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}
	if text == "" {
		return nil, fmt.Errorf("no text content in API response")
	}

	analysis := parseAnalysis(a.logger, text)
	a.logger.Info("analysis complete",
		"comments", len(analysis.Comments),
		"recommendation", analysis.Recommendation,
		"score", analysis.QualityScore,
	)
	return analysis, nil
}
