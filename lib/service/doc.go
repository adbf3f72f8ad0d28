// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package service holds the startup sequence shared by the reporting
// binaries.
//
// A binary registers [CommonFlags] on its pflag set, parses, and calls
// [Bootstrap], which builds the logger, loads and validates the YAML
// configuration, resolves the node identity and constructs the
// report.Client:
//
//	var flags service.CommonFlags
//	flagSet := pflag.NewFlagSet("bureau-reporter", pflag.ContinueOnError)
//	service.RegisterCommonFlags(flagSet, &flags)
//	// binary-specific flags...
//	if err := flagSet.Parse(args); err != nil { ... }
//	boot, err := service.Bootstrap(flags, os.Stderr)
//
// The configuration file comes from --config, or the REPORTING_CONFIG
// environment variable when the flag is absent.
package service
