// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/bureau-foundation/reporting/lib/node"
)

func testInfo() node.Info {
	return node.Info{
		Application:      "api",
		InternalHostname: "api-1.internal",
		Environment:      "testing",
		Pool:             "general",
	}
}

// decodePayload gunzips and decodes a report payload. Numbers are kept
// as json.Number so tests can compare their exact text.
func decodePayload(t *testing.T, compressed []byte) []map[string]any {
	t.Helper()
	reader, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		t.Fatalf("gzip.NewReader: %v", err)
	}
	defer reader.Close()
	raw, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("reading gzip payload: %v", err)
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var records []map[string]any
	if err := decoder.Decode(&records); err != nil {
		t.Fatalf("decoding payload %q: %v", raw, err)
	}
	if records == nil {
		t.Fatalf("payload %q is not a JSON array", raw)
	}
	return records
}

// recordingSink is an io.WriteCloser that keeps everything written and
// counts Close calls.
type recordingSink struct {
	bytes.Buffer
	closes   int
	writeErr error
}

func (s *recordingSink) Write(p []byte) (int, error) {
	if s.writeErr != nil {
		return 0, s.writeErr
	}
	return s.Buffer.Write(p)
}

func (s *recordingSink) Close() error {
	s.closes++
	return nil
}

// logBuffer is a goroutine-safe destination for a text slog handler.
type logBuffer struct {
	mu     sync.Mutex
	buffer bytes.Buffer
}

func (l *logBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buffer.Write(p)
}

func (l *logBuffer) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buffer.String()
}

func newTestLogger() (*slog.Logger, *logBuffer) {
	output := &logBuffer{}
	handler := slog.NewTextHandler(output, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(handler), output
}

// failingValue fails JSON encoding.
type failingValue struct{}

func (failingValue) MarshalJSON() ([]byte, error) {
	return nil, io.ErrUnexpectedEOF
}

// panickingValue panics during JSON encoding.
type panickingValue struct{}

func (panickingValue) MarshalJSON() ([]byte, error) {
	panic("marshal exploded")
}
