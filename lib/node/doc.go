// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package node describes the identity of a running service instance:
// the application it belongs to, the host it runs on, and the
// environment and pool it is deployed into. Reporters attach this
// identity to every data point so the collector can tell instances
// apart.
package node
