package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	openai "github.com/sashabaranov/go-openai"

	"github.com/sevigo/merge-warden/internal/core"
)

const defaultOpenAIModel = "gpt-4-turbo-preview"

// OpenAIAnalyzer reviews merge requests through an OpenAI-compatible
// chat-completions endpoint, either the public API or an Azure deployment.
type OpenAIAnalyzer struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

// NewOpenAIAnalyzer creates an analyzer backed by the public OpenAI API.
func NewOpenAIAnalyzer(apiKey, model string, logger *slog.Logger) *OpenAIAnalyzer {
	if model == "" {
		model = defaultOpenAIModel
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.HTTPClient = newProviderHTTPClient()

	return &OpenAIAnalyzer{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		logger: logger,
	}
}

// azureInstance describes one Azure OpenAI deployment as laid out in the
// instance configuration file: endpoint URL, credential, deployment name
// and API version.
type azureInstance struct {
	URL        string `json:"url"`
	Key        string `json:"key"`
	Deployment string `json:"deployment"`
	APIVersion string `json:"api_version"`
}

// NewAzureAnalyzer creates an analyzer backed by an Azure OpenAI
// deployment. Endpoint and credentials are resolved from a JSON instance
// file; when the file holds a list of instances the first one is used.
func NewAzureAnalyzer(configPath, model string, logger *slog.Logger) (*OpenAIAnalyzer, error) {
	inst, err := loadAzureInstance(configPath)
	if err != nil {
		return nil, fmt.Errorf("could not load Azure instance configuration: %w", err)
	}

	cfg := openai.DefaultAzureConfig(inst.Key, inst.URL)
	cfg.HTTPClient = newProviderHTTPClient()
	if inst.APIVersion != "" {
		cfg.APIVersion = inst.APIVersion
	}

	deployment := inst.Deployment
	if deployment == "" {
		deployment = model
	}
	if deployment == "" {
		deployment = "gpt-4"
	}

	logger.Info("Azure OpenAI analyzer initialized", "deployment", deployment, "endpoint", inst.URL)

	return &OpenAIAnalyzer{
		client: openai.NewClientWithConfig(cfg),
		model:  deployment,
		logger: logger,
	}, nil
}

func loadAzureInstance(configPath string) (*azureInstance, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// The instance file may hold a single object or a list of them.
	var instances []azureInstance
	if err := json.Unmarshal(data, &instances); err == nil {
		if len(instances) == 0 {
			return nil, fmt.Errorf("instance file %s holds an empty list", configPath)
		}
		return &instances[0], nil
	}

	var inst azureInstance
	if err := json.Unmarshal(data, &inst); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", configPath, err)
	}
	return &inst, nil
}

// Analyze sends the review prompt to the chat-completions endpoint and
// parses the JSON response.
func (a *OpenAIAnalyzer) Analyze(ctx context.Context, req Request) (*core.Analysis, error) {
	a.logger.Info("analyzing merge request", "files", len(req.Diffs), "model", a.model)

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Temperature: 0.3,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildAnalysisPrompt(req)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion response has no choices")
	}

	analysis := parseAnalysis(a.logger, resp.Choices[0].Message.Content)
	a.logger.Info("analysis complete",
		"comments", len(analysis.Comments),
		"recommendation", analysis.Recommendation,
		"score", analysis.QualityScore,
	)
	return analysis, nil
}
