package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"order-desk/internal/adapters/cli"
	"order-desk/internal/api"
	"order-desk/internal/app"
	"order-desk/internal/config"
	"order-desk/internal/core"
	"order-desk/internal/logging"
	"order-desk/internal/realtime"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pending := core.NewPendingQuotes(64)
	go pending.Run(ctx)

	client := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout, logger.Named("api"))
	runner := &cli.Runner{
		Svc:     app.NewAppService(client, pending, logger.Named("app")),
		Session: cfg.API.Session(),
		Out:     os.Stdout,
	}
	if cfg.Realtime.WSURL != "" {
		runner.Listen = realtime.NewSubscriber(cfg.Realtime.WSURL, cfg.Realtime.ReconnectDelay, logger.Named("realtime")).Listen
	}

	if err := runner.Run(ctx, os.Args[1:]); err != nil {
		logger.Debug("command failed", zap.Error(err))
		if errors.Is(err, cli.ErrUsage) {
			fmt.Fprintln(os.Stderr, err)
		} else {
			fmt.Fprintln(os.Stderr, "Error:", core.UserMessage(err))
		}
		logger.Sync()
		os.Exit(1)
	}
}
