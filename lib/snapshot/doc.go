// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package snapshot reads measurement tables from files.
//
// A snapshot file is a list of entries, each a metric name, an
// optional tag map and a value:
//
//	// requests seen since start
//	[
//	  {"name": "requests.count", "tags": {"route": "/api"}, "value": 42},
//	  {"name": "build.version", "value": "1.4.2"},
//	]
//
// Files ending in ".cbor" are decoded with lib/codec; anything else is
// JSON with comments and trailing commas allowed. JSON numbers keep
// their exact text (json.Number), so a snapshot value is reported
// with the digits it was written with.
package snapshot
