package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/srg/bluuki/pkg/config"
)

// configureLogger builds the logger from cfg; --log-level takes precedence
// over the configured level.
func configureLogger(cmd *cobra.Command, cfg *config.Config) (*logrus.Logger, error) {
	logLevelStr, _ := cmd.Flags().GetString("log-level")
	switch logLevelStr {
	case "":
	case "debug":
		cfg.LogLevel = logrus.DebugLevel
	case "info":
		cfg.LogLevel = logrus.InfoLevel
	case "warn":
		cfg.LogLevel = logrus.WarnLevel
	case "error":
		cfg.LogLevel = logrus.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", logLevelStr)
	}

	logger := cfg.NewLogger()
	// stdout carries events; logs go to stderr
	logger.SetOutput(cmd.ErrOrStderr())
	return logger, nil
}
