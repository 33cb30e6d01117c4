package main

import (
	"flag"
	"fmt"
	"os"
	"time"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigPath      string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	ShowVersion     bool
	ShowHelp        bool
	Validate        bool
}

func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}

	// Define flags with environment variable fallback
	flag.StringVar(&cfg.ConfigPath, "config",
		getEnv("WXPOST_CONFIG", "wxpost.yaml"),
		"Path to configuration file")
	flag.StringVar(&cfg.ConfigPath, "c",
		getEnv("WXPOST_CONFIG", "wxpost.yaml"),
		"Path to configuration file (shorthand)")
	flag.StringVar(&cfg.LogLevel, "log-level",
		getEnv("WXPOST_LOG_LEVEL", "info"),
		"Log level (debug, info, warn, error)")
	flag.StringVar(&cfg.LogFormat, "log-format",
		getEnv("WXPOST_LOG_FORMAT", "text"),
		"Log format (json, text)")
	flag.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout",
		20*time.Second,
		"How long to wait for queued posts to drain on shutdown")
	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	flag.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")
	flag.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")
	flag.BoolVar(&cfg.ShowHelp, "h", false, "Show help information")
	flag.BoolVar(&cfg.Validate, "validate", false, "Validate configuration and exit")

	flag.Usage = printHelp
	flag.Parse()

	return cfg
}

func printHelp() {
	fmt.Fprintf(os.Stderr, `%s - weather station upload pipeline

Reads archive records as JSON objects, one per line, on standard input and
posts them to the configured destinations (Weather Underground, PWSweather,
CWOP and compatible services).

Usage: %s [flags]

Flags:
`, appName, appName)
	flag.PrintDefaults()
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
