// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec holds the shared CBOR configuration for measurement
// snapshot files.
//
// Reports themselves are gzip-compressed JSON (see lib/report); CBOR
// is the compact on-disk form of a snapshot handed to bureau-report.
// Encoding uses Core Deterministic Encoding (RFC 8949 §4.2), so the
// same snapshot always produces identical bytes:
//
//	data, err := codec.Marshal(entries)
//	err = codec.Unmarshal(data, &entries)
//
// Types carry `json` struct tags only. fxamacker/cbor falls back to
// them when `cbor` tags are absent, so one tag set names the fields
// of both the JSON and the CBOR snapshot forms.
package codec
