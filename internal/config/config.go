// Package config loads and validates the application configuration.
package config

import (
	"fmt"
	"log/slog"

	"github.com/spf13/viper"
)

// Config holds the application's configuration values.
type Config struct {
	ServerPort string
	LogLevel   string
	LogFormat  string

	GitLabURL   string
	GitLabToken string

	LLMProvider     string // openai, azure, anthropic, stub
	LLMAPIKey       string
	LLMModel        string
	AzureConfigPath string

	StorageBackend string // memory, redis, mongo
	RedisURL       string
	MongoURL       string
	MongoDBName    string

	StandardsFile string
	Standards     []string

	MaxWorkers int
}

// defaultStandards is the built-in list of development standards checked
// during analysis, used when no standards file is configured.
var defaultStandards = []string{
	"Write clear and concise code comments",
	"Ensure proper error handling",
	"Avoid code duplication",
	"Write unit tests for new functionality",
	"Keep functions small and focused",
	"Ensure code is secure and follows best practices",
}

// LoadConfig reads configuration from environment variables and a .env file,
// sets sensible defaults, and validates required fields. It uses the Viper
// library to handle configuration loading and precedence.
func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")
	viper.SetDefault("GITLAB_URL", "https://gitlab.com")
	viper.SetDefault("LLM_PROVIDER", "openai")
	viper.SetDefault("AZURE_CONFIG_PATH", "instance.json")
	viper.SetDefault("STORAGE_BACKEND", "memory")
	viper.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	viper.SetDefault("MONGO_URL", "mongodb://localhost:27017")
	viper.SetDefault("MONGO_DB_NAME", "mergewarden")
	viper.SetDefault("MAX_WORKERS", 5)

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Debug("no .env file loaded", "error", err)
		}
	}

	if viper.GetString("GITLAB_TOKEN") == "" {
		return nil, fmt.Errorf("GITLAB_TOKEN must be set")
	}

	provider := viper.GetString("LLM_PROVIDER")
	switch provider {
	case "openai", "anthropic":
		if viper.GetString("LLM_API_KEY") == "" {
			return nil, fmt.Errorf("LLM_API_KEY must be set for provider %s", provider)
		}
	case "azure", "stub":
		// azure resolves credentials from its instance file; stub needs none.
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}

	cfg := &Config{
		ServerPort:      viper.GetString("SERVER_PORT"),
		LogLevel:        viper.GetString("LOG_LEVEL"),
		LogFormat:       viper.GetString("LOG_FORMAT"),
		GitLabURL:       viper.GetString("GITLAB_URL"),
		GitLabToken:     viper.GetString("GITLAB_TOKEN"),
		LLMProvider:     provider,
		LLMAPIKey:       viper.GetString("LLM_API_KEY"),
		LLMModel:        viper.GetString("LLM_MODEL"),
		AzureConfigPath: viper.GetString("AZURE_CONFIG_PATH"),
		StorageBackend:  viper.GetString("STORAGE_BACKEND"),
		RedisURL:        viper.GetString("REDIS_URL"),
		MongoURL:        viper.GetString("MONGO_URL"),
		MongoDBName:     viper.GetString("MONGO_DB_NAME"),
		StandardsFile:   viper.GetString("STANDARDS_FILE"),
		MaxWorkers:      viper.GetInt("MAX_WORKERS"),
	}

	standards, err := resolveStandards(cfg.StandardsFile)
	if err != nil {
		return nil, err
	}
	cfg.Standards = standards

	return cfg, nil
}
