package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/tartampluch/go-pantry/internal/config"
)

// HealthMap maps an unhealthy item to a healthier alternative.
// Keys are case-insensitive: the first spelling seen is kept, along with its
// position, which decides ties during matching.
// The zero value is an empty map ready to use.
type HealthMap struct {
	keys   []string
	values map[string]string // by NormalizeName(key)
}

// NewHealthMap builds a HealthMap from key/value pairs, in order.
// A trailing key without value is ignored.
func NewHealthMap(pairs ...string) HealthMap {
	var h HealthMap
	for i := 0; i+1 < len(pairs); i += 2 {
		h.Set(pairs[i], pairs[i+1])
	}
	return h
}

// Set adds or replaces an entry. Replacing keeps the original spelling and position.
func (h *HealthMap) Set(key, value string) {
	if h.values == nil {
		h.values = make(map[string]string)
	}
	norm := NormalizeName(key)
	if _, exists := h.values[norm]; !exists {
		h.keys = append(h.keys, key)
	}
	h.values[norm] = value
}

// Get returns the alternative stored under key, ignoring case and surrounding spaces.
func (h HealthMap) Get(key string) (string, bool) {
	v, ok := h.values[NormalizeName(key)]
	return v, ok
}

// Len returns the number of entries.
func (h HealthMap) Len() int {
	return len(h.keys)
}

// Keys returns a copy of the keys in insertion order.
func (h HealthMap) Keys() []string {
	return append([]string(nil), h.keys...)
}

// All iterates over the entries in insertion order.
func (h HealthMap) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, k := range h.keys {
			if !yield(k, h.values[NormalizeName(k)]) {
				return
			}
		}
	}
}

// Merge appends the entries of other whose key is not present yet.
// Existing entries win, whatever the case of the incoming key.
// It returns the number of entries added.
func (h *HealthMap) Merge(other HealthMap) int {
	added := 0
	for k, v := range other.All() {
		if _, exists := h.Get(k); exists {
			continue
		}
		h.Set(k, v)
		added++
	}
	return added
}

// MarshalJSON encodes the map as a JSON object, preserving key order.
func (h HealthMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range h.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(h.values[NormalizeName(k)])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping the document order of its keys.
// A JSON null yields an empty map.
func (h *HealthMap) UnmarshalJSON(data []byte) error {
	decoded, err := DecodeHealthMap(bytes.NewReader(data))
	if err != nil {
		return err
	}
	*h = decoded
	return nil
}

// DecodeHealthMap reads a single JSON object of string values from r.
func DecodeHealthMap(r io.Reader) (HealthMap, error) {
	dec := json.NewDecoder(r)

	var out HealthMap
	tok, err := dec.Token()
	if err != nil {
		return out, fmt.Errorf("%s: %w", config.ErrHealthDecode, err)
	}
	if tok == nil {
		return out, nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return out, fmt.Errorf("%s: expected object, got %v", config.ErrHealthDecode, tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return out, fmt.Errorf("%s: %w", config.ErrHealthDecode, err)
		}
		key, ok := tok.(string)
		if !ok {
			return out, fmt.Errorf("%s: unexpected key %v", config.ErrHealthDecode, tok)
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return out, fmt.Errorf("%s: key %q: %w", config.ErrHealthDecode, key, err)
		}
		out.Set(key, value)
	}

	if _, err := dec.Token(); err != nil {
		return out, fmt.Errorf("%s: %w", config.ErrHealthDecode, err)
	}
	return out, nil
}

// FindHealthAlternative suggests a healthier substitute for name.
// Matching is case-insensitive and tried in a fixed order, first success wins:
//  1. exact key match;
//  2. the first key (insertion order) contained in name;
//  3. the key with the best similarity ratio strictly above FuzzyMatchThreshold.
//
// It returns false when nothing matches.
func FindHealthAlternative(name string, hm HealthMap) (string, bool) {
	candidate := NormalizeName(name)
	if candidate == "" || hm.Len() == 0 {
		return "", false
	}

	if v, ok := hm.Get(candidate); ok {
		return v, true
	}

	for k, v := range hm.All() {
		key := NormalizeName(k)
		if key != "" && strings.Contains(candidate, key) {
			return v, true
		}
	}

	best, bestRatio := "", 0.0
	found := false
	for k, v := range hm.All() {
		ratio := similarity(NormalizeName(k), candidate)
		if ratio > config.FuzzyMatchThreshold && ratio > bestRatio {
			best, bestRatio, found = v, ratio, true
		}
	}
	if found {
		slog.Debug(config.MsgFuzzyMatch,
			config.LogKeyComponent, config.CompEngine,
			config.LogKeyName, name,
			config.LogKeyMatch, best,
			config.LogKeyRatio, bestRatio)
	}
	return best, found
}

// similarity is the Ratcliff/Obershelp ratio 2*M/T computed over runes,
// where M is the size of the matching blocks and T the total length.
func similarity(a, b string) float64 {
	m := difflib.NewMatcherWithJunk(splitRunes(a), splitRunes(b), false, nil)
	return m.Ratio()
}

func splitRunes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// NormalizeName is the case-insensitive identity used for item names.
func NormalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
