// Command browserd runs a REST daemon that controls a persistent
// headless browser session.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/odvcencio/browserd/pkg/api"
	"github.com/odvcencio/browserd/pkg/browser"
	"github.com/odvcencio/browserd/pkg/browser/adapters/chrome"
	"github.com/odvcencio/browserd/pkg/config"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "browserd: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("browserd", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to YAML config file")
	bind := fs.String("bind", "", "address to bind (overrides config)")
	autoStart := fs.Bool("auto-start", false, "launch the browser at startup")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *bind != "" {
		cfg.Server.Bind = *bind
	}
	if *autoStart {
		cfg.Browser.AutoStart = true
	}

	logger, err := buildLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	sessionCfg := browser.SessionConfig{
		Headless:  cfg.HeadlessEnabled(),
		Viewport:  browser.Viewport{Width: cfg.Browser.Width, Height: cfg.Browser.Height},
		UserAgent: cfg.Browser.UserAgent,
		ProxyURL:  cfg.Browser.ProxyURL,
		OpTimeout: cfg.Browser.OpTimeout,
	}
	holder := browser.NewHolder(chrome.NewDriver(logger), sessionCfg, logger)
	defer func() { _ = holder.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Browser.AutoStart {
		if _, err := holder.Start(ctx); err != nil {
			return fmt.Errorf("auto-start: %w", err)
		}
	}

	server := api.NewServer(api.Config{
		Bind:         cfg.Server.Bind,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		SettleDelay:  cfg.Server.SettleDelay,
		MaxWait:      cfg.Server.MaxWait,
	}, holder, logger)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func buildLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.Development {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	return zapCfg.Build()
}
