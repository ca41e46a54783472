// Package main is the entry point for the earthglow viewer.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/earthglow/internal/app"
	"github.com/Faultbox/earthglow/internal/config"
	"github.com/Faultbox/earthglow/internal/logger"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}

	os.Exit(run(cfg))
}

func run(cfg *config.Config) int {
	defer logger.Close()

	logger.Info("=== earthglow ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(cfg)
	if err != nil {
		logger.Error("failed to start", zap.Error(err))
		return 1
	}

	runErr := a.Run(ctx)
	closeErr := a.Close()
	if runErr != nil {
		logger.Error("main loop error", zap.Error(runErr))
		return 1
	}
	if closeErr != nil {
		logger.Warn("teardown reported errors", zap.Error(closeErr))
	}

	logger.Info("closed normally")
	return 0
}
