// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/tidwall/jsonc"

	"github.com/bureau-foundation/reporting/lib/codec"
	"github.com/bureau-foundation/reporting/lib/measurement"
)

// Entry is one cell of a snapshot file.
type Entry struct {
	Name  string            `json:"name"`
	Tags  map[string]string `json:"tags,omitempty"`
	Value any               `json:"value"`
}

// Format selects the snapshot file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCBOR Format = "cbor"
)

// jsonAPI decodes numbers as json.Number and rejects unknown fields.
var jsonAPI = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
	DisallowUnknownFields:  true,
}.Froze()

// FormatOf returns the format implied by the file extension.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".cbor") {
		return FormatCBOR
	}
	return FormatJSON
}

// ReadFile loads the snapshot at path.
func ReadFile(path string) (*measurement.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	table, err := Decode(data, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", path, err)
	}
	return table, nil
}

// Decode parses a snapshot and builds a table from its entries in
// file order. A later entry with the same name and tags replaces an
// earlier one.
func Decode(data []byte, format Format) (*measurement.Table, error) {
	var entries []Entry
	switch format {
	case FormatCBOR:
		if err := codec.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("decoding CBOR: %w", err)
		}
	case FormatJSON:
		if err := jsonAPI.Unmarshal(jsonc.ToJSON(data), &entries); err != nil {
			return nil, fmt.Errorf("decoding JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown snapshot format %q", format)
	}

	var errs []error
	builder := measurement.NewBuilder()
	for i, entry := range entries {
		if entry.Name == "" {
			errs = append(errs, fmt.Errorf("entry %d: name is empty", i))
			continue
		}
		builder.Put(entry.Name, entry.Tags, entry.Value)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return builder.Build(), nil
}

// Encode writes table as a snapshot in the given format.
func Encode(table *measurement.Table, format Format) ([]byte, error) {
	entries := make([]Entry, 0, table.Len())
	for cell := range table.All() {
		entries = append(entries, Entry{Name: cell.Name, Tags: cell.Tags, Value: cell.Value})
	}
	switch format {
	case FormatCBOR:
		return codec.Marshal(entries)
	case FormatJSON:
		return jsonAPI.MarshalIndent(entries, "", "  ")
	default:
		return nil, fmt.Errorf("unknown snapshot format %q", format)
	}
}
