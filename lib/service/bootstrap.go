// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/reporting/lib/clock"
	"github.com/bureau-foundation/reporting/lib/config"
	"github.com/bureau-foundation/reporting/lib/node"
	"github.com/bureau-foundation/reporting/lib/report"
)

// CommonFlags holds the flag values shared by all reporting binaries.
type CommonFlags struct {
	ConfigPath  string
	LogFormat   string
	LogLevel    string
	ShowVersion bool
}

// RegisterCommonFlags binds [CommonFlags] to flagSet with the
// standard names, defaults and help text.
func RegisterCommonFlags(flagSet *pflag.FlagSet, flags *CommonFlags) {
	flagSet.StringVar(&flags.ConfigPath, "config", "", "path to reporting.yaml (default: $REPORTING_CONFIG)")
	flagSet.StringVar(&flags.LogFormat, "log-format", "json", "log output format: json or text")
	flagSet.StringVar(&flags.LogLevel, "log-level", "info", "minimum log level: debug, info, warn or error")
	flagSet.BoolVar(&flags.ShowVersion, "version", false, "print version information and exit")
}

// BootstrapResult is the state produced by [Bootstrap].
type BootstrapResult struct {
	// Config is the loaded and validated configuration.
	Config *config.Config

	// Node is the identity attached to every report.
	Node node.Info

	// Client delivers reports. It logs through Logger.
	Client *report.Client

	// Clock is the real clock. Binaries pass it to their loops so
	// tests can substitute a fake.
	Clock clock.Clock

	// Logger writes to the stderr passed to Bootstrap.
	Logger *slog.Logger
}

// Bootstrap performs the common startup sequence:
//
//  1. Build the logger from --log-format and --log-level
//  2. Load the configuration from --config or REPORTING_CONFIG
//  3. Validate it and resolve the node identity
//  4. Construct the report client
func Bootstrap(flags CommonFlags, stderr io.Writer) (*BootstrapResult, error) {
	logger, err := NewLogger(stderr, flags.LogFormat, flags.LogLevel)
	if err != nil {
		return nil, err
	}

	var cfg *config.Config
	if flags.ConfigPath != "" {
		cfg, err = config.LoadFile(flags.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	info, err := node.FromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("node identity: %w", err)
	}

	client, err := report.NewClient(info, cfg.Report, report.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	return &BootstrapResult{
		Config: cfg,
		Node:   info,
		Client: client,
		Clock:  clock.Real(),
		Logger: logger,
	}, nil
}

// NewLogger creates the standard logger writing to w: JSON or text
// records at the given minimum level. It also sets the default slog
// logger so that code using slog.Info etc. gets the same handler.
func NewLogger(w io.Writer, format, level string) (*slog.Logger, error) {
	var minimum slog.Level
	if err := minimum.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("--log-level: %w", err)
	}
	options := &slog.HandlerOptions{Level: minimum}

	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(w, options)
	case "text":
		handler = slog.NewTextHandler(w, options)
	default:
		return nil, fmt.Errorf("--log-format must be json or text, got %q", format)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger, nil
}
