// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for the
// reporting binaries.
//
// Configuration is loaded from a single file specified by either the
// REPORTING_CONFIG environment variable (via [Load]) or a --config
// flag (via [LoadFile]). There are no fallbacks, no ~/.config
// discovery, and no automatic file search.
//
// The file may contain environment-specific sections (development,
// staging, production) that override base values when
// [Config].Environment matches. Override tags are merged on top of
// the base tags rather than replacing them.
//
// Variable expansion is performed on report.uri and
// node.internal_hostname after loading: ${VAR} and ${VAR:-default}
// patterns are expanded from the process environment. No other
// environment variables override config values.
//
// Key exports:
//
//   - [Config] -- master struct with Node and Report sections
//   - [ReportConfig] -- the enabled flag, collector URI, timeouts and static tags
//   - [Default] -- returns a Config with development defaults
//   - [Load] and [LoadFile] -- the two entry points for loading
//
// This package depends on no other Bureau packages.
package config
