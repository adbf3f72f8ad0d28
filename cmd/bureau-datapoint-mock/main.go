// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Bureau-datapoint-mock is an in-memory stand-in for the metrics
// collector, for local development and end-to-end tests. It accepts
// the reporter's upload exactly (POST api/v1/datapoints with a gzip
// JSON array body), stores every data point, and exposes what it
// received:
//   - POST /api/v1/datapoints: store a report; 204 on success, 400 on
//     a malformed body, 415 on a Content-Type other than
//     application/gzip
//   - GET /api/v1/datapoints: stored data points as a JSON array,
//     optionally filtered with ?name=
//   - DELETE /api/v1/datapoints: forget everything stored
//   - GET /status: upload, rejection and data point counts
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/reporting/lib/process"
	"github.com/bureau-foundation/reporting/lib/service"
	"github.com/bureau-foundation/reporting/lib/version"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		process.Fatal(err)
	}
}

func run(args []string) error {
	var (
		listenAddress string
		logFormat     string
		logLevel      string
		showVersion   bool
	)
	flagSet := pflag.NewFlagSet("bureau-datapoint-mock", pflag.ContinueOnError)
	flagSet.StringVar(&listenAddress, "listen", "127.0.0.1:8125", "address to serve the collector API on")
	flagSet.StringVar(&logFormat, "log-format", "json", "log output format: json or text")
	flagSet.StringVar(&logLevel, "log-level", "info", "minimum log level: debug, info, warn or error")
	flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if showVersion {
		version.Print("bureau-datapoint-mock")
		return nil
	}

	logger, err := service.NewLogger(os.Stderr, logFormat, logLevel)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	listener, err := net.Listen("tcp", listenAddress)
	if err != nil {
		return err
	}

	mock := newDatapointMock(logger)
	server := &http.Server{
		Handler:           mock.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveDone := make(chan error, 1)
	go func() {
		serveDone <- server.Serve(listener)
	}()

	logger.Info("datapoint mock running", "address", listener.Addr().String())

	select {
	case <-ctx.Done():
	case err := <-serveDone:
		return err
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-serveDone; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
