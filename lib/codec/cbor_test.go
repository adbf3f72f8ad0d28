// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"testing"
)

type sampleEntry struct {
	Name  string            `json:"name"`
	Tags  map[string]string `json:"tags,omitempty"`
	Value any               `json:"value"`
}

func TestMarshalUnmarshalRoundtrip(t *testing.T) {
	original := []sampleEntry{
		{Name: "requests.count", Tags: map[string]string{"route": "/api"}, Value: uint64(42)},
		{Name: "status.message", Value: "ok"},
		{Name: "ratio", Value: 0.5},
		{Name: "delta", Value: int64(-3)},
	}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded []sampleEntry
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(decoded) != len(original) {
		t.Fatalf("decoded %d entries, want %d", len(decoded), len(original))
	}
	for i := range original {
		if decoded[i].Name != original[i].Name || decoded[i].Value != original[i].Value {
			t.Errorf("entry %d: got %+v, want %+v", i, decoded[i], original[i])
		}
	}
	if decoded[0].Tags["route"] != "/api" {
		t.Errorf("tags = %v", decoded[0].Tags)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	entry := sampleEntry{
		Name:  "latency",
		Tags:  map[string]string{"zone": "b", "app": "api", "method": "get"},
		Value: 12,
	}

	first, err := Marshal(entry)
	if err != nil {
		t.Fatalf("first Marshal: %v", err)
	}
	for range 10 {
		again, err := Marshal(entry)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("deterministic encoding violated: %x != %x", first, again)
		}
	}
}

func TestUnmarshalAnyUsesStringKeyedMaps(t *testing.T) {
	data, err := Marshal(map[string]any{"name": "a", "tags": map[string]string{"k": "v"}})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded any
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	top, ok := decoded.(map[string]any)
	if !ok {
		t.Fatalf("decoded %T, want map[string]any", decoded)
	}
	if _, ok := top["tags"].(map[string]any); !ok {
		t.Errorf("nested map decoded as %T, want map[string]any", top["tags"])
	}
}

func TestUnmarshalRejectsDuplicateKeys(t *testing.T) {
	// {"a": 1, "a": 2}
	data := []byte{0xa2, 0x61, 'a', 0x01, 0x61, 'a', 0x02}
	var decoded map[string]int
	if err := Unmarshal(data, &decoded); err == nil {
		t.Errorf("expected duplicate key error, decoded %v", decoded)
	}
}

func TestUnmarshalInvalidCBOR(t *testing.T) {
	var entry sampleEntry
	if err := Unmarshal([]byte{0xFF, 0xFE, 0xFD}, &entry); err == nil {
		t.Error("Unmarshal should reject invalid CBOR")
	}
}

func BenchmarkMarshal(b *testing.B) {
	entry := sampleEntry{Name: "requests.count", Tags: map[string]string{"route": "/api"}, Value: 42}
	b.ReportAllocs()
	for b.Loop() {
		Marshal(entry)
	}
}
