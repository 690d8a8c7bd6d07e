package main

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/flavummontem/holiday-tg-bot/internal/app"
	"github.com/flavummontem/holiday-tg-bot/internal/config"
	"github.com/flavummontem/holiday-tg-bot/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// No logger yet; exit immediately.
		_, _ = os.Stderr.WriteString("config error: " + err.Error() + "\n")
		os.Exit(2)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		_, _ = os.Stderr.WriteString("logger init error: " + err.Error() + "\n")
		os.Exit(2)
	}
	// Flush on exit; sync errors are common on some platforms and ignored.
	defer func() { _ = log.Sync() }()

	a, err := app.New(cfg, log)
	if err != nil {
		log.Fatal("app init failed", zap.Error(err))
	}

	if err := a.Run(context.Background()); err != nil {
		log.Fatal("app run failed", zap.Error(err))
	}
}
