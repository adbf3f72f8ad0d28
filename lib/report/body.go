// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"bytes"
	"io"
	"sync"

	"github.com/bureau-foundation/reporting/lib/measurement"
)

// Body is an io.ReadCloser request body backed by an Encoder. Each
// Read hands out compressed bytes already produced and pulls the next
// data point from the encoder only when none are pending, so the
// transport drives encoding at the pace it writes to the network.
//
// Read and Close may be called from different goroutines, as
// net/http does.
type Body struct {
	mu      sync.Mutex
	sink    bodySink
	encoder *Encoder
	done    bool
	err     error
}

// bodySink collects the encoder's compressed output until Read hands
// it out.
type bodySink struct {
	pending bytes.Buffer
	closed  bool
}

func (s *bodySink) Write(p []byte) (int, error) {
	if s.closed {
		return 0, io.ErrClosedPipe
	}
	return s.pending.Write(p)
}

func (s *bodySink) Close() error {
	s.closed = true
	return nil
}

// NewBody returns a Body that encodes table with the given report
// timestamp and instance tags.
func NewBody(timestampMillis int64, table *measurement.Table, tags InstanceTags, options ...EncoderOption) (*Body, error) {
	body := &Body{}
	encoder, err := NewEncoder(&body.sink, timestampMillis, table, tags, options...)
	if err != nil {
		return nil, err
	}
	body.encoder = encoder
	return body, nil
}

// Read implements io.Reader. It returns io.EOF once the encoder has
// finished and every compressed byte has been read, and the encoder's
// error if encoding fails.
func (b *Body) Read(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for b.sink.pending.Len() == 0 {
		if b.err != nil {
			return 0, b.err
		}
		if b.done {
			return 0, io.EOF
		}
		done, err := b.encoder.Next()
		if err != nil {
			// Whatever was produced before the failure is an incomplete
			// payload; drop it rather than send a truncated stream.
			b.sink.pending.Reset()
			b.err = err
			return 0, err
		}
		b.done = done
	}
	return b.sink.pending.Read(p)
}

// Close releases the encoder. Closing before EOF abandons the
// remaining data points.
func (b *Body) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.encoder.Abandon()
	b.sink.pending.Reset()
	return nil
}

// Records returns the number of data points encoded so far.
func (b *Body) Records() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.encoder.Records()
}
