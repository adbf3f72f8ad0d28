// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"iter"
	"maps"
	"regexp"

	"github.com/bureau-foundation/reporting/lib/node"
)

// notAcceptedCharacter matches one character that may not appear in a
// metric name or tag value.
var notAcceptedCharacter = regexp.MustCompile(`[^-A-Za-z0-9./_]`)

// Sanitize replaces every character outside [-A-Za-z0-9./_] with
// "_". Multi-byte characters become a single "_". Sanitize is
// idempotent and returns its argument without allocating when there
// is nothing to replace.
func Sanitize(value string) string {
	for i := 0; i < len(value); i++ {
		if !isAccepted(value[i]) {
			return notAcceptedCharacter.ReplaceAllLiteralString(value, "_")
		}
	}
	return value
}

func isAccepted(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '-', c == '.', c == '/', c == '_':
		return true
	}
	return false
}

// Instance tag keys derived from the node identity.
const (
	TagApplication = "application"
	TagHost        = "host"
	TagEnvironment = "environment"
	TagPool        = "pool"
)

// InstanceTags is the immutable set of tags attached to every data
// point a Client emits. It is safe for concurrent use.
type InstanceTags struct {
	tags map[string]string
}

// NewInstanceTags builds instance tags from the node identity followed
// by the static configured tags; a configured tag with the same key as
// an identity tag replaces it. Values are sanitized, keys are taken
// as given.
func NewInstanceTags(info node.Info, configTags map[string]string) InstanceTags {
	tags := make(map[string]string, 4+len(configTags))
	tags[TagApplication] = Sanitize(info.Application)
	tags[TagHost] = Sanitize(info.InternalHostname)
	tags[TagEnvironment] = Sanitize(info.Environment)
	tags[TagPool] = Sanitize(info.Pool)
	for key, value := range configTags {
		tags[key] = Sanitize(value)
	}
	return InstanceTags{tags: tags}
}

// Len returns the number of instance tags.
func (t InstanceTags) Len() int { return len(t.tags) }

// Get returns the value of one instance tag.
func (t InstanceTags) Get(key string) (string, bool) {
	value, ok := t.tags[key]
	return value, ok
}

// All iterates over the instance tags in unspecified order.
func (t InstanceTags) All() iter.Seq2[string, string] {
	return maps.All(t.tags)
}

// Merge returns a new map holding the instance tags overlaid with
// cellTags. Cell tag values are sanitized and win over instance tags
// of the same key.
func (t InstanceTags) Merge(cellTags map[string]string) map[string]string {
	merged := make(map[string]string, len(t.tags)+len(cellTags))
	maps.Copy(merged, t.tags)
	for key, value := range cellTags {
		merged[key] = Sanitize(value)
	}
	return merged
}
