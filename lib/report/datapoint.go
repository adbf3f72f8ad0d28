// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"encoding/json"
	"reflect"

	"github.com/bureau-foundation/reporting/lib/measurement"
)

// StringType is the "type" of every data point whose value is not
// numeric. Numeric data points omit the field.
const StringType = "string"

// DataPoint is the wire form of one measurement cell.
type DataPoint struct {
	Name      string            `json:"name"`
	Timestamp int64             `json:"timestamp"`
	Type      string            `json:"type,omitempty"`
	Value     any               `json:"value"`
	Tags      map[string]string `json:"tags"`
}

// NewDataPoint projects one table cell into a DataPoint stamped with
// the report timestamp (Unix milliseconds). The value is passed
// through untouched for the JSON codec to encode.
func NewDataPoint(timestampMillis int64, cell measurement.Cell, tags InstanceTags) DataPoint {
	point := DataPoint{
		Name:      Sanitize(cell.Name),
		Timestamp: timestampMillis,
		Value:     cell.Value,
		Tags:      tags.Merge(cell.Tags),
	}
	if !IsNumeric(cell.Value) {
		point.Type = StringType
	}
	return point
}

// IsNumeric reports whether value is encoded as a JSON number: any
// integer or floating point kind (including named types such as
// time.Duration) and json.Number.
func IsNumeric(value any) bool {
	if _, ok := value.(json.Number); ok {
		return true
	}
	switch reflect.ValueOf(value).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
