package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	webAdapter "order-desk/internal/adapters/web"
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

	pending := core.NewPendingQuotes(256)
	go pending.Run(ctx)

	client := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout, logger.Named("api"))
	svc := app.NewAppService(client, pending, logger.Named("app"))
	session := cfg.API.Session()

	if cfg.Realtime.WSURL != "" {
		sub := realtime.NewSubscriber(cfg.Realtime.WSURL, cfg.Realtime.ReconnectDelay, logger.Named("realtime"))
		go func() {
			err := sub.Listen(ctx, session, func(ctx context.Context, ev realtime.QuoteConverted) error {
				return svc.HandleQuoteConverted(ctx, ev.QuoteID, ev.OrderID)
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("quote channel stopped", zap.Error(err))
			}
		}()
	} else {
		logger.Info("WS_URL not set; pending quotes refresh only on reload")
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           webAdapter.NewHandler(svc, session, cfg.Server.AllowedOrigins, logger.Named("http")),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("backend", cfg.API.BaseURL),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exited")
}
