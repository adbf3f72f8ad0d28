// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"testing"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "requests.count", expected: "requests.count"},
		{input: "cpu load!", expected: "cpu_load_"},
		{input: "a/b", expected: "a/b"},
		{input: "Mixed-Case_09./x", expected: "Mixed-Case_09./x"},
		{input: "key=value,other", expected: "key_value_other"},
		{input: "héllo", expected: "h_llo"},
		{input: "日本", expected: "__"},
		{input: "tab\there", expected: "tab_here"},
		{input: "", expected: ""},
		{input: "\xff", expected: "_"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Sanitize(tt.input); got != tt.expected {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSanitizeIsIdempotent(t *testing.T) {
	inputs := []string{"cpu load!", "héllo wörld", "a:b:c", "ok.name", "   ", "100%", "x\x00y"}
	for _, input := range inputs {
		once := Sanitize(input)
		if twice := Sanitize(once); twice != once {
			t.Errorf("Sanitize not idempotent for %q: %q then %q", input, once, twice)
		}
		for _, c := range []byte(once) {
			if !isAccepted(c) {
				t.Errorf("Sanitize(%q) = %q still contains %q", input, once, c)
			}
		}
	}
}

func TestSanitizeCleanInputDoesNotAllocate(t *testing.T) {
	allocations := testing.AllocsPerRun(100, func() {
		_ = Sanitize("service.requests/total-2xx")
	})
	if allocations != 0 {
		t.Errorf("Sanitize allocated %v times for a clean string", allocations)
	}
}

func TestNewInstanceTags(t *testing.T) {
	info := testInfo()
	info.InternalHostname = "api 1.internal"

	tags := NewInstanceTags(info, map[string]string{
		"region": "us east",
		"pool":   "override",
	})

	expected := map[string]string{
		"application": "api",
		"host":        "api_1.internal",
		"environment": "testing",
		"pool":        "override",
		"region":      "us_east",
	}
	if tags.Len() != len(expected) {
		t.Fatalf("Len = %d, want %d", tags.Len(), len(expected))
	}
	for key, value := range expected {
		if got, ok := tags.Get(key); !ok || got != value {
			t.Errorf("tag %q = %q (present %v), want %q", key, got, ok, value)
		}
	}

	count := 0
	for range tags.All() {
		count++
	}
	if count != len(expected) {
		t.Errorf("All yielded %d tags, want %d", count, len(expected))
	}
}

func TestMergeCellTagsOverrideInstanceTags(t *testing.T) {
	tags := NewInstanceTags(testInfo(), nil)

	merged := tags.Merge(map[string]string{
		"host":           "other host",
		"shard":          "a/b",
		"Key With Space": "v!",
	})

	if merged["host"] != "other_host" {
		t.Errorf("cell tag should win with sanitized value, got %q", merged["host"])
	}
	if merged["shard"] != "a/b" {
		t.Errorf("shard = %q", merged["shard"])
	}
	if merged["Key With Space"] != "v_" {
		t.Errorf("keys must pass through unsanitized, got %v", merged)
	}
	if merged["application"] != "api" {
		t.Errorf("instance tag missing from merge: %v", merged)
	}

	if host, _ := tags.Get("host"); host != "api-1.internal" {
		t.Errorf("Merge mutated instance tags: host = %q", host)
	}
}

func TestMergeWithoutCellTags(t *testing.T) {
	tags := NewInstanceTags(testInfo(), map[string]string{"region": "eu"})
	merged := tags.Merge(nil)
	if len(merged) != 5 {
		t.Fatalf("expected the 5 instance tags, got %v", merged)
	}
	merged["region"] = "changed"
	if region, _ := tags.Get("region"); region != "eu" {
		t.Error("merged map aliases instance tags")
	}
}
