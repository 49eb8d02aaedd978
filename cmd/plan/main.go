package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/10xdev4u-alt/plan/internal/config"
	"github.com/10xdev4u-alt/plan/internal/events"
	"github.com/10xdev4u-alt/plan/internal/server"
	"github.com/10xdev4u-alt/plan/internal/store"
	"github.com/10xdev4u-alt/plan/internal/telegram"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "plan: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := "config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var logger *zap.Logger
	if cfg.Logging.Development {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	// Seed the owning profile and the webhook placeholder so captures
	// have a home before the first API call.
	ctx := context.Background()
	var username *string
	if cfg.Auth.Username != "" {
		username = &cfg.Auth.Username
	}
	if err := st.EnsureProfile(ctx, cfg.Auth.UserID, cfg.Auth.APIToken, username); err != nil {
		return fmt.Errorf("ensure profile: %w", err)
	}
	if cfg.Telegram.OwnerID != cfg.Auth.UserID {
		if err := st.EnsureProfile(ctx, cfg.Telegram.OwnerID, "", nil); err != nil {
			return fmt.Errorf("ensure webhook profile: %w", err)
		}
	}

	bus, err := events.NewBus(logger)
	if err != nil {
		return fmt.Errorf("start event bus: %w", err)
	}
	defer bus.Close()

	srv, err := server.NewServer(st, bus, telegram.NewClient(cfg.Telegram.BotToken), logger, &server.Config{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		WebhookOwnerID: cfg.Telegram.OwnerID,
		WebhookRate:    cfg.Telegram.RatePerSec,
		WebhookBurst:   cfg.Telegram.RateBurst,
	})
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case sig := <-stop:
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
