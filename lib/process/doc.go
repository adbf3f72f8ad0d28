// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides the entrypoint error handler for the
// reporting binaries. main() calls [Fatal] with the error from run(),
// which may come from flag parsing or config loading before the
// structured logger exists.
package process
