// Package main implements the wxpost entry point. wxpost reads archive
// records as newline-delimited JSON on standard input and uploads them to
// the configured weather services: Ambient-protocol providers over HTTP
// and CWOP over APRS-IS.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pmcgeorge/weewx/archive"
	"github.com/pmcgeorge/weewx/config"
	"github.com/pmcgeorge/weewx/destination"
	"github.com/pmcgeorge/weewx/metric"
	"github.com/pmcgeorge/weewx/record"
	"github.com/pmcgeorge/weewx/service"
)

// Build information constants
const (
	Version = "0.1.0"
	appName = "wxpost"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	cliCfg := parseFlags()

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil
	}
	if cliCfg.ShowHelp {
		printHelp()
		return nil
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	logger.Info("starting weather upload pipeline",
		"version", Version,
		"config_path", cliCfg.ConfigPath)

	cfg, err := config.Load(cliCfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cliCfg.Validate {
		logger.Info("configuration is valid")
		return nil
	}

	deps, closeArchive, err := buildDeps(cfg, logger)
	if err != nil {
		return err
	}
	defer closeArchive()

	svc, err := service.New(cfg, deps)
	if err != nil {
		return fmt.Errorf("build destinations: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}

	metricsSrv := startMetricsServer(cfg.Metrics.Addr, deps.Metrics, logger)

	readRecords(ctx, svc, logger)

	logger.Info("draining queued posts", "timeout", cliCfg.ShutdownTimeout)
	if err := svc.Shutdown(cliCfg.ShutdownTimeout); err != nil {
		logger.Warn("shutdown incomplete", "error", err)
	}
	if metricsSrv != nil {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	return nil
}

// buildDeps assembles the process-wide collaborators shared by every
// destination. The returned closer is safe to call even when no archive
// was opened.
func buildDeps(cfg *config.Config, logger *slog.Logger) (destination.Deps, func(), error) {
	deps := destination.Deps{
		Converter: record.StdConverter{},
		Logger:    logger,
		Metrics:   metric.NewMetrics(),
	}
	closeArchive := func() {}

	if tz := cfg.Station.TimeZone; tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return destination.Deps{}, nil, fmt.Errorf("load time zone %q: %w", tz, err)
		}
		deps.Location = loc
	}

	if dsn := cfg.Database.DSN; dsn != "" {
		var opts []archive.SQLOption
		if cfg.Database.Table != "" {
			opts = append(opts, archive.WithTable(cfg.Database.Table))
		}
		store, err := archive.Open(dsn, opts...)
		if err != nil {
			return destination.Deps{}, nil, fmt.Errorf("open archive: %w", err)
		}
		deps.Archive = store
		closeArchive = func() { _ = store.Close() }
	} else {
		logger.Info("no archive configured, rain totals will not be augmented")
	}

	return deps, closeArchive, nil
}

// startMetricsServer exposes /metrics when an address is configured
func startMetricsServer(addr string, m *metric.Metrics, logger *slog.Logger) *http.Server {
	if addr == "" {
		return nil
	}

	registry := prometheus.NewRegistry()
	if err := m.Register(registry); err != nil {
		logger.Warn("metrics registration failed", "error", err)
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("metrics endpoint listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Warn("metrics endpoint failed", "error", err)
		}
	}()
	return srv
}

// readRecords feeds stdin records to the service until EOF or signal. A
// malformed line is logged and skipped; the pipe stays up.
func readRecords(ctx context.Context, svc *service.Service, logger *slog.Logger) {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if ctx.Err() != nil {
			logger.Info("signal received, stopping record intake")
			return
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		rec, err := record.FromJSON(line)
		if err != nil {
			logger.Warn("skipping malformed record", "error", err)
			continue
		}
		svc.Submit(ctx, rec)
	}
	if err := scanner.Err(); err != nil {
		logger.Warn("record intake failed", "error", err)
		return
	}
	logger.Info("record intake finished")
}
