// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"errors"
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
	"github.com/klauspost/compress/gzip"

	"github.com/bureau-foundation/reporting/lib/measurement"
)

// jsonAPI matches encoding/json output (sorted map keys, HTML-safe
// escaping) so payloads are byte-for-byte deterministic.
var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// streamBufferSize is the initial jsoniter buffer. The buffer is
// flushed into the compressor after every data point, so it only
// grows past this for unusually large records.
const streamBufferSize = 512

// errAbandoned is recorded when the consumer stops pulling before the
// encoder finished, for example because the transport aborted.
var errAbandoned = errors.New("report encoder abandoned before completion")

// encoderState is the encoder's position in its lifecycle. The only
// transitions are producing → finished and producing → failed.
type encoderState uint8

const (
	stateProducing encoderState = iota
	stateFinished
	stateFailed
)

// EncoderOption configures an Encoder.
type EncoderOption func(*encoderConfig)

type encoderConfig struct {
	compressionLevel int
}

// WithCompressionLevel sets the gzip level (gzip.BestSpeed through
// gzip.BestCompression, or gzip.DefaultCompression).
func WithCompressionLevel(level int) EncoderOption {
	return func(config *encoderConfig) {
		config.compressionLevel = level
	}
}

// Encoder streams a measurement table as gzip(JSON array of
// DataPoint) into a sink, one data point per Next call.
//
// The array-open token is written by NewEncoder. Once the table is
// exhausted, Next closes the array, finishes the gzip stream and
// closes the sink; this happens exactly once, and later Next calls
// are no-ops. Encoder is not safe for concurrent use.
type Encoder struct {
	sink            io.WriteCloser
	compressor      *gzip.Writer
	stream          *jsoniter.Stream
	cursor          *measurement.Cursor
	timestampMillis int64
	tags            InstanceTags
	records         int
	state           encoderState
	err             error
}

// NewEncoder wraps sink in a gzip writer and writes the opening "[".
// The encoder owns sink from here on and closes it when it finishes,
// fails, or is abandoned.
func NewEncoder(sink io.WriteCloser, timestampMillis int64, table *measurement.Table, tags InstanceTags, options ...EncoderOption) (*Encoder, error) {
	config := encoderConfig{compressionLevel: gzip.DefaultCompression}
	for _, option := range options {
		option(&config)
	}

	compressor, err := gzip.NewWriterLevel(sink, config.compressionLevel)
	if err != nil {
		sink.Close()
		return nil, fmt.Errorf("creating gzip writer: %w", err)
	}

	encoder := &Encoder{
		sink:            sink,
		compressor:      compressor,
		stream:          jsoniter.NewStream(jsonAPI, compressor, streamBufferSize),
		cursor:          table.Cursor(),
		timestampMillis: timestampMillis,
		tags:            tags,
	}

	encoder.stream.WriteArrayStart()
	if err := encoder.flushStream(); err != nil {
		return nil, encoder.fail(fmt.Errorf("writing array start: %w", err))
	}
	return encoder, nil
}

// Next produces the next unit of output: one data point, or the
// closing framing once the table is exhausted. It returns done=true
// when there is nothing left to produce. After a failure every call
// returns the same error.
func (e *Encoder) Next() (done bool, err error) {
	switch e.state {
	case stateFinished:
		return true, nil
	case stateFailed:
		return true, e.err
	}

	// A panicking value marshaler must not take down the goroutine
	// that drives the request body.
	defer func() {
		if recovered := recover(); recovered != nil {
			done, err = true, e.fail(fmt.Errorf("encoding data point: panic: %v", recovered))
		}
	}()

	cell, ok := e.cursor.Next()
	if !ok {
		if err := e.finish(); err != nil {
			return true, e.fail(err)
		}
		return true, nil
	}

	if e.records > 0 {
		e.stream.WriteMore()
	}
	e.stream.WriteVal(NewDataPoint(e.timestampMillis, cell, e.tags))
	if err := e.flushStream(); err != nil {
		return true, e.fail(fmt.Errorf("encoding data point %q: %w", cell.Name, err))
	}
	e.records++
	return false, nil
}

// Records returns the number of data points written so far.
func (e *Encoder) Records() int { return e.records }

// Abandon stops the encoder without finishing the payload and closes
// the sink. It is a no-op once the encoder has finished or failed.
func (e *Encoder) Abandon() {
	if e.state == stateProducing {
		e.fail(errAbandoned)
	}
}

// flushStream moves buffered JSON from the jsoniter stream into the
// compressor.
func (e *Encoder) flushStream() error {
	if e.stream.Error != nil {
		return e.stream.Error
	}
	return e.stream.Flush()
}

func (e *Encoder) finish() error {
	e.stream.WriteArrayEnd()
	if err := e.flushStream(); err != nil {
		return fmt.Errorf("writing array end: %w", err)
	}
	// Close writes the gzip footer; it does not close the sink.
	if err := e.compressor.Close(); err != nil {
		return fmt.Errorf("finishing gzip stream: %w", err)
	}
	e.state = stateFinished
	if err := e.sink.Close(); err != nil {
		return fmt.Errorf("closing report sink: %w", err)
	}
	return nil
}

// fail moves the encoder to the failed state, releases the sink and
// returns err for convenience.
func (e *Encoder) fail(err error) error {
	alreadyClosed := e.state == stateFinished
	e.state = stateFailed
	e.err = err
	if !alreadyClosed {
		e.sink.Close()
	}
	return err
}
