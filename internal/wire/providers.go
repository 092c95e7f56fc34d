package wire

import (
	"io"
	"os"

	"github.com/google/wire"

	"github.com/sevigo/merge-warden/internal/app"
	"github.com/sevigo/merge-warden/internal/config"
	"github.com/sevigo/merge-warden/internal/logger"
)

var AppSet = wire.NewSet(
	app.NewApp,
	config.LoadConfig,
	logger.NewLogger,
	provideLoggerConfig,
	provideLogWriter,
)

func provideLoggerConfig(cfg *config.Config) logger.Config {
	return logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	}
}

func provideLogWriter() io.Writer {
	return os.Stdout
}
