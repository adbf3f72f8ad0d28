// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"sync"
	"sync/atomic"

	jsoniter "github.com/json-iterator/go"
	"github.com/klauspost/compress/gzip"

	"github.com/bureau-foundation/reporting/lib/report"
)

// Upload limits. A report of a few thousand cells compresses to tens
// of kilobytes.
const (
	maxCompressedBytes   = 8 << 20
	maxDecompressedBytes = 64 << 20
)

// jsonAPI keeps numbers as json.Number so stored values are served
// back with the digits they arrived with.
var jsonAPI = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
	DisallowUnknownFields:  true,
}.Froze()

// datapointMock stores uploaded data points in memory.
type datapointMock struct {
	logger *slog.Logger

	mu     sync.Mutex
	points []report.DataPoint

	uploads  atomic.Uint64
	rejected atomic.Uint64
}

// mockStatus is the GET /status response.
type mockStatus struct {
	Uploads    uint64 `json:"uploads"`
	Rejected   uint64 `json:"rejected"`
	DataPoints int    `json:"data_points"`
}

func newDatapointMock(logger *slog.Logger) *datapointMock {
	return &datapointMock{logger: logger}
}

// Handler returns the collector API.
func (m *datapointMock) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /"+report.UploadPath, m.handleUpload)
	mux.HandleFunc("GET /"+report.UploadPath, m.handleQuery)
	mux.HandleFunc("DELETE /"+report.UploadPath, m.handleReset)
	mux.HandleFunc("GET /status", m.handleStatus)
	return mux
}

func (m *datapointMock) handleUpload(writer http.ResponseWriter, request *http.Request) {
	mediaType, _, err := mime.ParseMediaType(request.Header.Get("Content-Type"))
	if err != nil || mediaType != report.ContentType {
		m.reject(writer, http.StatusUnsupportedMediaType,
			fmt.Errorf("Content-Type must be %s, got %q", report.ContentType, request.Header.Get("Content-Type")))
		return
	}

	points, err := decodeUpload(http.MaxBytesReader(writer, request.Body, maxCompressedBytes))
	if err != nil {
		m.reject(writer, http.StatusBadRequest, err)
		return
	}

	m.mu.Lock()
	m.points = append(m.points, points...)
	m.mu.Unlock()
	m.uploads.Add(1)

	m.logger.Debug("stored upload", "data_points", len(points))
	writer.WriteHeader(http.StatusNoContent)
}

func (m *datapointMock) reject(writer http.ResponseWriter, status int, err error) {
	m.rejected.Add(1)
	m.logger.Info("rejected upload", "status", status, "error", err)
	http.Error(writer, err.Error(), status)
}

// decodeUpload gunzips and decodes one report body, then checks each
// data point.
func decodeUpload(body io.Reader) ([]report.DataPoint, error) {
	reader, err := gzip.NewReader(body)
	if err != nil {
		return nil, fmt.Errorf("reading gzip header: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(io.LimitReader(reader, maxDecompressedBytes+1))
	if err != nil {
		return nil, fmt.Errorf("decompressing body: %w", err)
	}
	if len(data) > maxDecompressedBytes {
		return nil, fmt.Errorf("decompressed body exceeds %d bytes", maxDecompressedBytes)
	}

	if trimmed := bytes.TrimSpace(data); len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, errors.New("body is not a JSON array")
	}
	var points []report.DataPoint
	if err := jsonAPI.Unmarshal(data, &points); err != nil {
		return nil, fmt.Errorf("decoding data points: %w", err)
	}

	var errs []error
	for i, point := range points {
		if err := validatePoint(point); err != nil {
			errs = append(errs, fmt.Errorf("data point %d: %w", i, err))
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return points, nil
}

func validatePoint(point report.DataPoint) error {
	switch {
	case point.Name == "":
		return errors.New("name is empty")
	case point.Name != report.Sanitize(point.Name):
		return fmt.Errorf("name %q contains unaccepted characters", point.Name)
	case point.Tags == nil:
		return errors.New("tags are missing")
	case point.Type != "" && point.Type != report.StringType:
		return fmt.Errorf("unknown type %q", point.Type)
	case point.Type == "" && !report.IsNumeric(point.Value):
		return fmt.Errorf("value %v is not numeric and type is not %q", point.Value, report.StringType)
	}
	for key, value := range point.Tags {
		if value != report.Sanitize(value) {
			return fmt.Errorf("tag %s value %q contains unaccepted characters", key, value)
		}
	}
	return nil
}

func (m *datapointMock) handleQuery(writer http.ResponseWriter, request *http.Request) {
	name := request.URL.Query().Get("name")

	m.mu.Lock()
	points := make([]report.DataPoint, 0, len(m.points))
	for _, point := range m.points {
		if name == "" || point.Name == name {
			points = append(points, point)
		}
	}
	m.mu.Unlock()

	writeJSON(writer, points, m.logger)
}

func (m *datapointMock) handleReset(writer http.ResponseWriter, _ *http.Request) {
	m.mu.Lock()
	m.points = nil
	m.mu.Unlock()
	writer.WriteHeader(http.StatusNoContent)
}

func (m *datapointMock) handleStatus(writer http.ResponseWriter, _ *http.Request) {
	m.mu.Lock()
	stored := len(m.points)
	m.mu.Unlock()

	writeJSON(writer, mockStatus{
		Uploads:    m.uploads.Load(),
		Rejected:   m.rejected.Load(),
		DataPoints: stored,
	}, m.logger)
}

func writeJSON(writer http.ResponseWriter, value any, logger *slog.Logger) {
	writer.Header().Set("Content-Type", "application/json")
	stream := jsonAPI.BorrowStream(writer)
	defer jsonAPI.ReturnStream(stream)
	stream.WriteVal(value)
	if stream.Error == nil {
		stream.Flush()
	}
	if stream.Error != nil {
		logger.Debug("writing response", "error", stream.Error)
	}
}
