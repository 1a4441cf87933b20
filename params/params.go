// Package params decodes query-protocol form bodies and extracts the
// indexed parameters (Attribute.1.Name, Tag.2.Value, ...) they carry.
//
// Decoding happens in two stages: Decode flattens the body into a plain
// key/value mapping, and Extract applies the positional grammar
// <Prefix>.<index>.<Field> to that mapping.
package params

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// ErrMalformedQuery is returned when a request body is not valid form encoding.
var ErrMalformedQuery = errors.New("malformed query string")

// Entry is one indexed parameter group, e.g. everything under Attribute.3.
type Entry struct {
	// Index is the 1-based position taken from the key.
	Index int
	Name  string
	Value string
	// Fields holds every field seen for the index, keyed by the text after
	// the index ("Name", "Value.DataType", ...).
	Fields map[string]string
}

// Field returns the first non-empty field among names. Exact matches win
// over case-insensitive ones.
func (e Entry) Field(names ...string) string {
	for _, name := range names {
		if v, ok := e.Fields[name]; ok && v != "" {
			return v
		}
	}
	for _, name := range names {
		for k, v := range e.Fields {
			if v != "" && strings.EqualFold(k, name) {
				return v
			}
		}
	}
	return ""
}

// Decode parses a URL-encoded body into a flat mapping. When a key repeats,
// the first value wins.
func Decode(body []byte) (map[string]string, error) {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedQuery, err)
	}
	form := make(map[string]string, len(values))
	for k, v := range values {
		if len(v) > 0 {
			form[k] = v[0]
		}
	}
	return form, nil
}

// Extract collects every key of the form <prefix>.<n>.<Field> into entries,
// one per distinct n, ordered by ascending n. The prefix matches
// case-insensitively. Keys whose index is not a positive integer are
// ignored, as are entries that end up without a name.
//
// Name is read from the Name field (or Key, which the SDK uses for tags) and
// Value from Value (or Value.StringValue, used by message attributes).
func Extract(form map[string]string, prefix string) []Entry {
	byIndex := make(map[int]*Entry)
	for key, value := range form {
		index, field, ok := splitIndexedKey(key, prefix)
		if !ok {
			continue
		}
		e, exists := byIndex[index]
		if !exists {
			e = &Entry{Index: index, Fields: make(map[string]string)}
			byIndex[index] = e
		}
		e.Fields[field] = value
	}

	entries := make([]Entry, 0, len(byIndex))
	for _, e := range byIndex {
		e.Name = e.Field("Name", "Key")
		e.Value = e.Field("Value", "Value.StringValue")
		if e.Name == "" {
			continue
		}
		entries = append(entries, *e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Index < entries[j].Index
	})
	return entries
}

// ToMap collapses entries into a name->value mapping. A later index
// overwrites an earlier one with the same name.
func ToMap(entries []Entry) map[string]string {
	m := make(map[string]string, len(entries))
	for _, e := range entries {
		m[e.Name] = e.Value
	}
	return m
}

func splitIndexedKey(key, prefix string) (int, string, bool) {
	if len(key) <= len(prefix)+1 || key[len(prefix)] != '.' {
		return 0, "", false
	}
	if !strings.EqualFold(key[:len(prefix)], prefix) {
		return 0, "", false
	}
	indexStr, field, found := strings.Cut(key[len(prefix)+1:], ".")
	if !found || indexStr == "" || field == "" {
		return 0, "", false
	}
	for _, r := range indexStr {
		if r < '0' || r > '9' {
			return 0, "", false
		}
	}
	index, err := strconv.Atoi(indexStr)
	if err != nil || index < 1 {
		return 0, "", false
	}
	return index, field, true
}
