package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GITLAB_TOKEN", "glpat-test")
	t.Setenv("LLM_PROVIDER", "stub")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "https://gitlab.com", cfg.GitLabURL)
	assert.Equal(t, "glpat-test", cfg.GitLabToken)
	assert.Equal(t, "stub", cfg.LLMProvider)
	assert.Equal(t, "memory", cfg.StorageBackend)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURL)
	assert.Equal(t, "mergewarden", cfg.MongoDBName)
	assert.Equal(t, 5, cfg.MaxWorkers)
	assert.Equal(t, defaultStandards, cfg.Standards)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("STORAGE_BACKEND", "redis")
	t.Setenv("MAX_WORKERS", "12")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, "redis", cfg.StorageBackend)
	assert.Equal(t, 12, cfg.MaxWorkers)
}

func TestLoadConfigRequiresGitLabToken(t *testing.T) {
	t.Setenv("GITLAB_TOKEN", "")
	t.Setenv("LLM_PROVIDER", "stub")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GITLAB_TOKEN")
}

func TestLoadConfigProviderCredentials(t *testing.T) {
	tests := []struct {
		name      string
		provider  string
		apiKey    string
		expectErr bool
	}{
		{"OpenAI without key fails", "openai", "", true},
		{"OpenAI with key succeeds", "openai", "sk-test", false},
		{"Anthropic without key fails", "anthropic", "", true},
		{"Anthropic with key succeeds", "anthropic", "sk-ant-test", false},
		{"Azure needs no key", "azure", "", false},
		{"Stub needs no key", "stub", "", false},
		{"Unknown provider fails", "vertex", "key", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GITLAB_TOKEN", "glpat-test")
			t.Setenv("LLM_PROVIDER", tt.provider)
			t.Setenv("LLM_API_KEY", tt.apiKey)

			_, err := LoadConfig()
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestResolveStandardsFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "standards.yaml")
	content := "standards:\n  - Use table driven tests\n  - Document exported symbols\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	standards, err := resolveStandards(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Use table driven tests", "Document exported symbols"}, standards)
}

func TestResolveStandardsMissingFileUsesDefaults(t *testing.T) {
	standards, err := resolveStandards("/nonexistent/standards.yaml")
	require.NoError(t, err)
	assert.Equal(t, defaultStandards, standards)
}

func TestResolveStandardsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "standards.yaml")
	require.NoError(t, os.WriteFile(path, []byte("standards: [unclosed"), 0600))

	_, err := resolveStandards(path)
	assert.ErrorIs(t, err, ErrStandardsParsing)
}

func TestResolveStandardsEmptyListUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "standards.yaml")
	require.NoError(t, os.WriteFile(path, []byte("standards: []"), 0600))

	standards, err := resolveStandards(path)
	require.NoError(t, err)
	assert.Equal(t, defaultStandards, standards)
}
