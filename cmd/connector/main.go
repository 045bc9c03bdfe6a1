// Package main is the entry point for the Balancer connector.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/fd1az/balancer-connector/business/chain"
	chainDI "github.com/fd1az/balancer-connector/business/chain/di"
	"github.com/fd1az/balancer-connector/business/gateway"
	"github.com/fd1az/balancer-connector/business/swap"
	"github.com/fd1az/balancer-connector/business/swap/app"
	swapDI "github.com/fd1az/balancer-connector/business/swap/di"
	"github.com/fd1az/balancer-connector/business/swap/infra/reporter"
	"github.com/fd1az/balancer-connector/internal/apm"
	"github.com/fd1az/balancer-connector/internal/config"
	"github.com/fd1az/balancer-connector/internal/health"
	"github.com/fd1az/balancer-connector/internal/logger"
	"github.com/fd1az/balancer-connector/internal/metrics"
	"github.com/fd1az/balancer-connector/internal/monolith"
	"github.com/fd1az/balancer-connector/pkg/ui"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

const (
	modeServe = "serve"
	modeQuote = "quote"
	modeWatch = "watch"
)

type options struct {
	configPath string
	mode       string
	noTUI      bool
	execute    bool

	chain    string
	network  string
	pair     string
	amount   string
	side     string
	slippage string
}

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.mode, "mode", modeServe, "Run mode: serve | quote | watch")
	flag.BoolVar(&opts.noTUI, "no-tui", false, "Watch mode: print quotes as log lines instead of the TUI")
	flag.BoolVar(&opts.execute, "execute", false, "Quote mode: build and broadcast the quoted trade")
	flag.StringVar(&opts.chain, "chain", "", "Chain to quote on (overrides monitor.chain)")
	flag.StringVar(&opts.network, "network", "", "Network to quote on (overrides monitor.network)")
	flag.StringVar(&opts.pair, "pair", "", "Pair as BASE-QUOTE (overrides monitor.pair)")
	flag.StringVar(&opts.amount, "amount", "", "Base amount in whole tokens (overrides monitor.amount)")
	flag.StringVar(&opts.side, "side", "", "BUY or SELL (overrides monitor.side)")
	flag.StringVar(&opts.slippage, "slippage", "", "Slippage override as n/d (overrides monitor.slippage)")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("balancer-connector %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	switch opts.mode {
	case modeServe, modeQuote, modeWatch:
	default:
		fmt.Fprintf(os.Stderr, "error: unknown mode %q\n", opts.mode)
		os.Exit(2)
	}

	tuiMode := opts.mode == modeWatch && !opts.noTUI

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		if !tuiMode {
			fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
		}
		cancel()
	}()

	if err := run(ctx, opts, tuiMode); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, tuiMode bool) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Monitor.TUIMode = tuiMode
	opts.apply(&cfg.Monitor)

	log := newLogger(cfg, tuiMode)
	log.Info(ctx, "starting balancer connector",
		"version", version,
		"mode", opts.mode,
		"environment", cfg.App.Environment,
	)

	traceProvider, err := setupTelemetry(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := traceProvider.Stop(); err != nil {
			log.Warn(context.Background(), "trace provider shutdown failed", "error", err)
		}
	}()

	mono := monolith.New(cfg, log)
	defer func() {
		if err := mono.Close(); err != nil {
			log.Warn(context.Background(), "shutdown", "error", err)
		}
	}()

	// dependency order: chain first, then swap, then the HTTP surface
	modules := []monolith.Module{
		&chain.Module{},
		&swap.Module{},
	}
	if opts.mode == modeServe {
		modules = append(modules, &gateway.Module{})
	}

	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}

	if opts.mode != modeQuote {
		healthServer := health.NewServer(cfg.Health.Port, version, log)
		healthServer.RegisterCheck("chain", func(ctx context.Context) (bool, string) {
			return chainDI.GetChainService(mono.Services()).Ready(ctx)
		})
		healthServer.RegisterCheck("connectors", func(context.Context) (bool, string) {
			return connectorsReady(swapDI.GetRegistry(mono.Services()).Instances())
		})
		if err := healthServer.Start(); err != nil {
			log.Warn(ctx, "failed to start health server", "error", err)
		} else {
			mono.OnClose(healthServer)
		}
	}

	switch {
	case tuiMode:
		return runTUI(ctx, cfg.Monitor.Pair, func() error {
			ui.Send(ui.StartupMsg{Step: "config", Status: "connected"})
			ui.Send(ui.StartupMsg{Step: "chain", Status: "connecting"})
			if err := mono.StartModules(ctx, modules...); err != nil {
				ui.Send(ui.StartupMsg{Step: "chain", Status: "failed", Message: err.Error()})
				return fmt.Errorf("failed to start modules: %w", err)
			}
			ui.Send(ui.StartupMsg{Step: "chain", Status: "connected"})

			monitor, err := swap.NewMonitor(mono.Services(), cfg.Monitor, reporter.NewTUIReporter(nil))
			if err != nil {
				return err
			}
			ui.Send(ui.StartupMsg{Step: "tokens", Status: "connecting"})
			if err := monitor.Start(ctx); err != nil {
				ui.Send(ui.StartupMsg{Step: "tokens", Status: "failed", Message: err.Error()})
				return err
			}
			ui.Send(ui.StartupMsg{Step: "tokens", Status: "connected"})
			mono.OnClose(closerFunc(monitor.Stop))
			return nil
		})

	case opts.mode == modeWatch:
		if err := mono.StartModules(ctx, modules...); err != nil {
			return fmt.Errorf("failed to start modules: %w", err)
		}
		monitor, err := swap.NewMonitor(mono.Services(), cfg.Monitor, reporter.NewConsoleReporter(os.Stdout))
		if err != nil {
			return err
		}
		return runWatch(ctx, monitor, log)

	case opts.mode == modeQuote:
		if err := mono.StartModules(ctx, modules...); err != nil {
			return fmt.Errorf("failed to start modules: %w", err)
		}
		return runQuote(ctx, mono.Services(), cfg.Monitor, opts.execute, os.Stdout)

	default:
		if err := mono.StartModules(ctx, modules...); err != nil {
			return fmt.Errorf("failed to start modules: %w", err)
		}
		log.Info(ctx, "gateway serving", "address", cfg.Gateway.Address)
		<-ctx.Done()
		log.Info(context.Background(), "shutting down")
		return nil
	}
}

func (o options) apply(mc *config.MonitorConfig) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&mc.Chain, o.chain)
	set(&mc.Network, o.network)
	set(&mc.Pair, o.pair)
	set(&mc.Amount, o.amount)
	set(&mc.Side, o.side)
	set(&mc.Slippage, o.slippage)
}

// newLogger discards output in TUI mode; the screen is owned by the UI.
func newLogger(cfg *config.Config, tuiMode bool) *logger.Logger {
	level := logger.ParseLevel(cfg.App.LogLevel)
	switch {
	case tuiMode:
		return logger.New(io.Discard, level, cfg.App.Name, nil)
	case cfg.App.LogFormat == "console":
		return logger.NewConsole(os.Stderr, level, cfg.App.Name)
	default:
		return logger.New(os.Stderr, level, cfg.App.Name, nil)
	}
}

func setupTelemetry(ctx context.Context, cfg *config.Config, log logger.LoggerInterface) (apm.TraceProvider, error) {
	if !cfg.Telemetry.Enabled {
		return apm.NewEmptyTraceProvider(), nil
	}

	tp, err := apm.NewTraceProvider(cfg.Telemetry, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	log.Info(ctx, "tracing initialized", "provider", cfg.Telemetry.TraceProvider)

	mp, err := metrics.NewMetricProvider(ctx, metrics.FromTelemetry(cfg.Telemetry)...)
	if err != nil {
		_ = tp.Stop()
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}
	go func() {
		<-ctx.Done()
		_ = mp.Shutdown(context.Background())
	}()

	if metrics.Scraped(cfg.Telemetry) {
		go func() {
			if err := metrics.ServePrometheusMetrics(ctx, log, cfg.Telemetry.PrometheusPort); err != nil {
				log.Warn(ctx, "prometheus server stopped", "error", err)
			}
		}()
	}

	return tp, nil
}

func runWatch(ctx context.Context, monitor *app.Monitor, log logger.LoggerInterface) error {
	if err := monitor.Start(ctx); err != nil {
		return fmt.Errorf("failed to start monitor: %w", err)
	}
	log.Info(ctx, "quote monitor running")

	<-ctx.Done()

	log.Info(context.Background(), "shutting down")
	if err := monitor.Stop(); err != nil {
		log.Error(context.Background(), "error stopping monitor", "error", err)
	}
	return nil
}

func runTUI(ctx context.Context, pair string, startFunc func() error) error {
	// fired once the welcome screen is left
	startSignal := make(chan struct{}, 1)
	ui.OnStartModules = func() {
		select {
		case startSignal <- struct{}{}:
		default:
		}
	}

	p := tea.NewProgram(ui.New(pair), tea.WithAltScreen(), tea.WithContext(ctx))
	ui.Program = p

	errCh := make(chan error, 1)
	go func() {
		select {
		case <-startSignal:
		case <-ctx.Done():
			errCh <- nil
			return
		}

		if err := startFunc(); err != nil {
			ui.Send(ui.ErrorMsg{Error: err})
			errCh <- err
			return
		}
		errCh <- nil
	}()

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("TUI error: %w", err)
	}

	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}

// connectorsReady fails while any connector built so far is not ready.
func connectorsReady(instances []*app.Connector) (bool, string) {
	var pending []string
	for _, c := range instances {
		if !c.Ready() {
			pending = append(pending, c.Name()+" "+c.State().String())
		}
	}
	if len(pending) > 0 {
		return false, strings.Join(pending, ", ")
	}
	return true, fmt.Sprintf("%d ready", len(instances))
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
