// Package app wires one Kotoba server variant into a running process.
//
// The App struct owns the full lifecycle: New performs the bootstrap in its
// contractual order (library path sanitization, accelerator probe, asset
// provisioning, engine construction and load, warmup, listener), Run serves
// until the context is cancelled and emits the readiness marker the host
// waits for, and Shutdown tears everything down in order.
//
// For testing, inject mock engines via functional options (WithTranslator,
// WithRecognizer). When an engine is injected, the accelerator runtime and
// asset provisioning are skipped entirely.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"

	"google.golang.org/grpc"

	kotobav1 "github.com/kotobatl/kotoba/api/kotoba/v1"
	"github.com/kotobatl/kotoba/internal/accel"
	"github.com/kotobatl/kotoba/internal/assets"
	"github.com/kotobatl/kotoba/internal/batch"
	"github.com/kotobatl/kotoba/internal/config"
	"github.com/kotobatl/kotoba/internal/engine"
	"github.com/kotobatl/kotoba/internal/engine/nmt"
	"github.com/kotobatl/kotoba/internal/engine/vision"
	"github.com/kotobatl/kotoba/internal/health"
	"github.com/kotobatl/kotoba/internal/observe"
	"github.com/kotobatl/kotoba/internal/rpcserver"
)

// ReadyMarker is the line written to standard error once the RPC endpoint is
// accepting calls. Hosts that spawn the process synchronously block on
// observing it.
const ReadyMarker = "[SERVER_START]"

// App owns all subsystem lifetimes of one server process.
type App struct {
	cfg     *config.Config
	variant config.Variant

	translator engine.Translator
	recognizer engine.Recognizer

	agg      *batch.Aggregator
	monitor  *observe.Monitor
	srv      *grpc.Server
	lis      net.Listener
	debug    *health.Server
	otelStop func(context.Context) error

	readyOut io.Writer

	// closers are called in order during Shutdown.
	closers []func() error

	// stopOnce guards the Shutdown path.
	stopOnce sync.Once

	errs chan error
}

// Option is a functional option for New. Use these to inject test doubles.
type Option func(*App)

// WithTranslator injects a translation engine instead of constructing the
// ONNX one. Skips accelerator init and asset provisioning.
func WithTranslator(t engine.Translator) Option {
	return func(a *App) { a.translator = t }
}

// WithRecognizer injects an OCR engine instead of constructing the ONNX one.
// Skips accelerator init and asset provisioning.
func WithRecognizer(r engine.Recognizer) Option {
	return func(a *App) { a.recognizer = r }
}

// WithReadinessWriter redirects the readiness marker, for tests. Default is
// standard error.
func WithReadinessWriter(w io.Writer) Option {
	return func(a *App) { a.readyOut = w }
}

// ─── New ─────────────────────────────────────────────────────────────────────

// New bootstraps a server process for the given variant. The bootstrap order
// is contractual: environment sanitization and the accelerator probe run
// before any model is touched, assets are provisioned before engine load,
// and warmup completes before the listener opens.
func New(ctx context.Context, variant config.Variant, cfg *config.Config, opts ...Option) (*App, error) {
	a := &App{
		cfg:      cfg,
		variant:  variant,
		readyOut: os.Stderr,
		errs:     make(chan error, 2),
	}
	for _, o := range opts {
		o(a)
	}

	// ── 1. Telemetry providers ───────────────────────────────────────────
	otelStop, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    "kotoba-" + string(variant),
		ServiceVersion: a.engineVersion(),
	})
	if err != nil {
		return nil, fmt.Errorf("app: init telemetry: %w", err)
	}
	a.otelStop = otelStop

	injected := a.translator != nil || a.recognizer != nil

	// ── 2. Accelerator runtime ───────────────────────────────────────────
	device := cfg.Device
	if !injected {
		accel.SanitizeEnv()
		if err := accel.Init(cfg.OnnxLibPath); err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
		device, err = accel.Probe(cfg.Device)
		if err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
		slog.Info("accelerator resolved", "requested", cfg.Device, "using", device)
	}

	// ── 3. Assets + engine construction ──────────────────────────────────
	if err := a.initEngine(ctx, device, injected); err != nil {
		return nil, err
	}

	// ── 4. Load + warmup ─────────────────────────────────────────────────
	eng := a.engine()
	if err := eng.Load(ctx); err != nil {
		return nil, fmt.Errorf("app: load engine: %w", err)
	}
	a.closers = append(a.closers, eng.Close)
	if err := eng.Warmup(ctx); err != nil {
		// Warmup pays first-run costs early; a failure degrades latency,
		// never availability.
		slog.Warn("engine warmup failed", "err", err)
	}

	// ── 5. Resource monitor ──────────────────────────────────────────────
	a.monitor, err = observe.NewMonitor(0)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	// ── 6. RPC server + listener ─────────────────────────────────────────
	if err := a.initServer(); err != nil {
		return nil, err
	}

	return a, nil
}

// Addr reports the bound listener address. Useful when the configured port
// is 0 and the OS picked one.
func (a *App) Addr() net.Addr { return a.lis.Addr() }

// engine returns the variant's engine under its common interface.
func (a *App) engine() engine.Engine {
	if a.variant == config.VariantOCR {
		return a.recognizer
	}
	return a.translator
}

func (a *App) engineVersion() string {
	if a.variant == config.VariantOCR {
		return vision.Version
	}
	return nmt.Version
}

// initEngine provisions assets and constructs the variant's engine, unless a
// test double was injected.
func (a *App) initEngine(ctx context.Context, device accel.Device, injected bool) error {
	if injected {
		return nil
	}

	dir, err := assets.ModelDir(a.cfg.ModelPath)
	if err != nil {
		return fmt.Errorf("app: %w", err)
	}
	prov := &assets.Provisioner{Dir: dir, BaseURL: a.cfg.HubURL}

	switch a.variant {
	case config.VariantOCR:
		bundle := assets.Bundle{Name: "ocr-" + a.cfg.ComputeType, Files: vision.BundleFiles(a.cfg.ComputeType)}
		if err := prov.Ensure(ctx, bundle); err != nil {
			return fmt.Errorf("app: %w", err)
		}
		a.recognizer = vision.New(vision.Config{
			Dir:         dir,
			Device:      device,
			ComputeType: a.cfg.ComputeType,
		})
	default:
		bundle := assets.Bundle{Name: "nmt-" + a.cfg.ComputeType, Files: nmt.BundleFiles(a.cfg.ComputeType)}
		if err := prov.Ensure(ctx, bundle); err != nil {
			return fmt.Errorf("app: %w", err)
		}
		a.translator = nmt.New(nmt.Config{
			Dir:         dir,
			Device:      device,
			ComputeType: a.cfg.ComputeType,
		})
	}
	return nil
}

// initServer builds the gRPC server, registers the variant's services, and
// opens the listener. The aggregator fronts the translator so concurrent
// singles share model calls.
func (a *App) initServer() error {
	m := observe.DefaultMetrics()
	a.srv = rpcserver.NewServer(m)

	var checkers []health.Checker
	switch a.variant {
	case config.VariantOCR:
		kotobav1.RegisterOcrServiceServer(a.srv, rpcserver.NewOcrServer(a.recognizer, m))
		checkers = append(checkers, health.EngineChecker("engine", a.recognizer))
	default:
		a.agg = batch.New(a.translator, batch.Config{
			Headroom: a.monitor.VRAMUtilization,
		})
		kotobav1.RegisterTranslationServiceServer(a.srv,
			rpcserver.NewTranslationServer(a.translator, a.agg, m))
		checkers = append(checkers, health.EngineChecker("engine", a.translator))
	}

	lis, err := rpcserver.Listen(a.cfg.Host, a.cfg.Port)
	if err != nil {
		return fmt.Errorf("app: %w", err)
	}
	a.lis = lis

	if a.cfg.DebugAddr != "" {
		a.debug = health.NewServer(a.cfg.DebugAddr, health.New(checkers...))
	}
	return nil
}

// ─── Run ─────────────────────────────────────────────────────────────────────

// Run serves until ctx is cancelled or the server fails. The readiness
// marker is emitted only after the listener is accepting calls; the resource
// monitor starts with serving and stops with it.
func (a *App) Run(ctx context.Context) error {
	go func() {
		if err := a.srv.Serve(a.lis); err != nil {
			a.errs <- fmt.Errorf("app: grpc serve: %w", err)
		}
	}()
	if a.debug != nil {
		a.debug.Start(a.errs)
	}
	a.monitor.Start()

	a.announceReady()
	slog.Info("server running",
		"variant", a.variant, "addr", a.lis.Addr().String(),
		"engine", a.engine().Info().Name, "version", a.engine().Info().Version)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-a.errs:
		return err
	}
}

// announceReady writes the readiness marker to raw standard error and
// flushes, so a host reading the pipe unblocks immediately.
func (a *App) announceReady() {
	fmt.Fprintln(a.readyOut, ReadyMarker)
	if f, ok := a.readyOut.(*os.File); ok {
		f.Sync()
	}
}

// ─── Shutdown ────────────────────────────────────────────────────────────────

// Shutdown tears the process down in order: stop accepting calls and drain
// in-flight ones within the grace period, close the aggregator, join the
// resource monitor, close the engine, then the accelerator runtime and
// telemetry. Safe to call once; respects ctx for the monitor join and
// telemetry flush.
func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error
	a.stopOnce.Do(func() {
		slog.Info("shutting down", "variant", a.variant)

		if a.srv != nil {
			rpcserver.Shutdown(a.srv, a.cfg.ShutdownGrace)
		}
		if a.agg != nil {
			a.agg.Close()
		}
		if a.debug != nil {
			if err := a.debug.Shutdown(ctx); err != nil {
				slog.Warn("debug server shutdown error", "err", err)
			}
		}
		if a.monitor != nil {
			if err := a.monitor.Stop(ctx); err != nil {
				slog.Warn("monitor stop error", "err", err)
			}
		}

		for i, closer := range a.closers {
			if err := closer(); err != nil {
				slog.Warn("closer error", "index", i, "err", err)
			}
		}

		if err := accel.Shutdown(); err != nil {
			slog.Warn("accelerator shutdown error", "err", err)
		}
		if a.otelStop != nil {
			if err := a.otelStop(ctx); err != nil {
				slog.Warn("telemetry shutdown error", "err", err)
			}
		}

		slog.Info("shutdown complete")
	})
	return shutdownErr
}
