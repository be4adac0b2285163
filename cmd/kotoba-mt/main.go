// Command kotoba-mt is the machine-translation inference server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/kotobatl/kotoba/internal/app"
	"github.com/kotobatl/kotoba/internal/config"
)

func main() {
	os.Exit(run())
}

func run() (code int) {
	// A silent crash is undiagnosable for a host that only sees the process
	// exit; log the stack before dying.
	defer func() {
		if r := recover(); r != nil {
			slog.Error("fatal panic", "panic", r, "stack", string(debug.Stack()))
			code = 2
		}
	}()

	cfg, err := config.Parse(config.VariantMT, os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "kotoba-mt: %v\n", err)
		return 1
	}

	slog.SetDefault(newLogger(cfg.Debug))

	slog.Info("kotoba-mt starting",
		"host", cfg.Host,
		"port", cfg.Port,
		"device", cfg.Device,
		"compute_type", cfg.ComputeType,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, config.VariantMT, cfg)
	if err != nil {
		slog.Error("failed to initialise server", "err", err)
		return 1
	}

	runErr := application.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := application.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
		return 1
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		slog.Error("run error", "err", runErr)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

func newLogger(debugLevel bool) *slog.Logger {
	lvl := slog.LevelInfo
	if debugLevel {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
