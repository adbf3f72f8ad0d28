// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Bureau-report sends one snapshot file to the metrics collector.
//
//	bureau-report --config reporting.yaml --snapshot metrics.json
//
// The snapshot is a list of {"name", "tags", "value"} entries, as JSON
// with comments or as CBOR (*.cbor); see lib/snapshot. Every data
// point is stamped with --timestamp (Unix milliseconds), or the
// current time when it is omitted. The exit status is 0 when the
// collector accepted the report or reporting is disabled, 1 otherwise.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/reporting/lib/process"
	"github.com/bureau-foundation/reporting/lib/report"
	"github.com/bureau-foundation/reporting/lib/service"
	"github.com/bureau-foundation/reporting/lib/snapshot"
	"github.com/bureau-foundation/reporting/lib/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		process.Fatal(err)
	}
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	var flags service.CommonFlags
	var snapshotPath string
	var timestampMillis int64

	flagSet := pflag.NewFlagSet("bureau-report", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	service.RegisterCommonFlags(flagSet, &flags)
	flagSet.StringVar(&snapshotPath, "snapshot", "", "snapshot file to send (required)")
	flagSet.Int64Var(&timestampMillis, "timestamp", 0, "report timestamp in Unix milliseconds (default: now)")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if flags.ShowVersion {
		version.Print("bureau-report")
		return nil
	}
	if snapshotPath == "" {
		return fmt.Errorf("--snapshot is required")
	}
	if len(flagSet.Args()) > 0 {
		return fmt.Errorf("unexpected argument: %s", flagSet.Arg(0))
	}

	boot, err := service.Bootstrap(flags, stderr)
	if err != nil {
		return err
	}

	table, err := snapshot.ReadFile(snapshotPath)
	if err != nil {
		return err
	}
	if !flagSet.Changed("timestamp") {
		timestampMillis = boot.Clock.Now().UnixMilli()
	}

	outcome := boot.Client.Report(ctx, timestampMillis, table)
	switch outcome {
	case report.OutcomeDelivered, report.OutcomeDisabled:
		boot.Logger.Info("report finished",
			"outcome", outcome.String(),
			"cells", table.Len(),
			"timestamp", timestampMillis,
		)
		return nil
	default:
		return fmt.Errorf("report %s: %d cells from %s were not delivered", outcome, table.Len(), snapshotPath)
	}
}
