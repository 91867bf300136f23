package app

import (
	"strings"

	"github.com/mathsoc-club/backend/pkg/logger"
)

// ConfigureLogging initialises the global logger from the server section,
// defaulting to info level with no file sink.
func ConfigureLogging(cfg ServerConfig) error {
	level := strings.TrimSpace(cfg.LogLevel)
	if level == "" {
		level = "info"
	}
	return logger.InitWithConfig(logger.Config{
		Level: level,
		File:  strings.TrimSpace(cfg.LogFile),
	})
}
