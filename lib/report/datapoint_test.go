// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/bureau-foundation/reporting/lib/measurement"
)

func TestIsNumeric(t *testing.T) {
	type celsius float64
	number := 7

	tests := []struct {
		name     string
		value    any
		expected bool
	}{
		{name: "int", value: 42, expected: true},
		{name: "int8", value: int8(-3), expected: true},
		{name: "int64", value: int64(1) << 40, expected: true},
		{name: "uint8", value: uint8(200), expected: true},
		{name: "uint64", value: uint64(1) << 63, expected: true},
		{name: "float32", value: float32(1.5), expected: true},
		{name: "float64", value: 0.25, expected: true},
		{name: "named float", value: celsius(21.5), expected: true},
		{name: "duration", value: 3 * time.Second, expected: true},
		{name: "json number", value: json.Number("1e3"), expected: true},
		{name: "string", value: "42", expected: false},
		{name: "bool", value: true, expected: false},
		{name: "nil", value: nil, expected: false},
		{name: "pointer to int", value: &number, expected: false},
		{name: "slice", value: []int{1}, expected: false},
		{name: "struct", value: struct{ N int }{N: 1}, expected: false},
		{name: "time", value: time.Unix(0, 0), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNumeric(tt.value); got != tt.expected {
				t.Errorf("IsNumeric(%#v) = %v, want %v", tt.value, got, tt.expected)
			}
		})
	}
}

func TestNewDataPoint(t *testing.T) {
	tags := NewInstanceTags(testInfo(), nil)

	t.Run("numeric", func(t *testing.T) {
		point := NewDataPoint(1000, measurement.Cell{Name: "requests.count", Value: 42}, tags)
		if point.Name != "requests.count" || point.Timestamp != 1000 || point.Value != 42 {
			t.Errorf("unexpected point %+v", point)
		}
		if point.Type != "" {
			t.Errorf("numeric point has type %q", point.Type)
		}
		if len(point.Tags) != 4 {
			t.Errorf("tags = %v, want the 4 instance tags", point.Tags)
		}
	})

	t.Run("string", func(t *testing.T) {
		point := NewDataPoint(2000, measurement.Cell{Name: "build", Value: "1.2.3"}, tags)
		if point.Type != StringType {
			t.Errorf("type = %q, want %q", point.Type, StringType)
		}
		if point.Value != "1.2.3" {
			t.Errorf("value = %v, want the string passed through", point.Value)
		}
	})

	t.Run("name and tags sanitized", func(t *testing.T) {
		cell := measurement.Cell{
			Name:  "cpu load!",
			Tags:  map[string]string{"core": "0 1"},
			Value: 0.5,
		}
		point := NewDataPoint(3000, cell, tags)
		if point.Name != "cpu_load_" {
			t.Errorf("name = %q", point.Name)
		}
		if point.Tags["core"] != "0_1" {
			t.Errorf("core tag = %q", point.Tags["core"])
		}
		if cell.Tags["core"] != "0 1" {
			t.Error("NewDataPoint modified the cell's tags")
		}
	})
}
