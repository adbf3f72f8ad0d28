// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/reporting/lib/hostmetrics"
	"github.com/bureau-foundation/reporting/lib/measurement"
	"github.com/bureau-foundation/reporting/lib/process"
	"github.com/bureau-foundation/reporting/lib/report"
	"github.com/bureau-foundation/reporting/lib/service"
	"github.com/bureau-foundation/reporting/lib/version"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		process.Fatal(err)
	}
}

func run(args []string) error {
	var flags service.CommonFlags
	flagSet := pflag.NewFlagSet("bureau-reporter", pflag.ContinueOnError)
	service.RegisterCommonFlags(flagSet, &flags)
	dumpPath := flagSet.String("dump", "", "after each report, write the reported snapshot to this file")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if flags.ShowVersion {
		version.Print("bureau-reporter")
		return nil
	}

	boot, err := service.Bootstrap(flags, os.Stderr)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reporter := &Reporter{
		client:       boot.Client,
		collector:    measurement.NewCollector(),
		collectHost:  hostmetrics.Collect,
		clock:        boot.Clock,
		interval:     boot.Config.Report.Interval.Std(),
		finalTimeout: boot.Config.Report.Timeout.Std(),
		dumpPath:     *dumpPath,
		logger:       boot.Logger,
	}

	boot.Logger.Info("reporter running",
		"application", boot.Node.Application,
		"host", boot.Node.InternalHostname,
		"environment", boot.Node.Environment,
		"pool", boot.Node.Pool,
		"enabled", boot.Client.Enabled(),
		"url", boot.Client.UploadURL(),
		"interval", reporter.interval,
		"version", version.Short(),
	)

	reporter.Run(ctx)

	boot.Logger.Info("reporter stopped",
		"delivered", reporter.Count(report.OutcomeDelivered),
		"rejected", reporter.Count(report.OutcomeRejected),
		"failed", reporter.Count(report.OutcomeFailed),
	)
	return nil
}
