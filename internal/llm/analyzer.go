// Package llm builds review prompts, dispatches them to a configured
// language-model provider, and parses the structured response.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/sevigo/merge-warden/internal/config"
	"github.com/sevigo/merge-warden/internal/core"
)

// Request carries everything the analyzer needs to review one merge request.
type Request struct {
	Title       string
	Description string
	Diffs       []core.FileDiff
	Standards   []string
}

// Analyzer defines the contract for AI-assisted merge request analysis.
// Implementations make exactly one provider call per invocation and do not
// retry. A malformed provider response is absorbed into the deterministic
// fallback Analysis; only transport-level failures surface as errors.
type Analyzer interface {
	Analyze(ctx context.Context, req Request) (*core.Analysis, error)
}

// NewAnalyzer creates the analyzer for the configured provider.
func NewAnalyzer(cfg *config.Config, logger *slog.Logger) (Analyzer, error) {
	switch cfg.LLMProvider {
	case "openai":
		logger.Info("using OpenAI analyzer", "model", cfg.LLMModel)
		return NewOpenAIAnalyzer(cfg.LLMAPIKey, cfg.LLMModel, logger), nil
	case "azure":
		logger.Info("using Azure OpenAI analyzer", "instance_config", cfg.AzureConfigPath)
		return NewAzureAnalyzer(cfg.AzureConfigPath, cfg.LLMModel, logger)
	case "anthropic":
		logger.Info("using Anthropic analyzer", "model", cfg.LLMModel)
		return NewAnthropicAnalyzer(cfg.LLMAPIKey, cfg.LLMModel, logger), nil
	case "stub":
		logger.Info("using stub analyzer")
		return NewStubAnalyzer(), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}
}

// newProviderHTTPClient builds an HTTP client with bounded timeouts for
// provider calls. Reviews of large diffs can take a while, but a stalled
// upstream must never hold a worker indefinitely.
func newProviderHTTPClient() *http.Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxConnsPerHost:     10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   5 * time.Minute,
	}
}
