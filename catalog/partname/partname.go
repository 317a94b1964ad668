// Copyright (C) 2024 Datalith, Inc.
// See LICENSE for copying information.

// Package partname implements the canonical, reversible encoding between a
// partition's ordered value list and its name.
//
// A partition name is the partition-key columns joined with their values as
// escaped `key=value` components separated by '/':
//
//	ds=2024-01-01/region=eu%2Fwest
//
// The encoding is deterministic and bijective with the value list for a fixed
// key list: Decode(keys, Encode(keys, values)) always yields values back.
package partname

import (
	"strings"

	"github.com/zeebo/errs"
)

// ErrMalformed is returned when a partition name cannot be decoded.
var ErrMalformed = errs.Class("malformed partition name")

const (
	// Separator separates key=value components in a partition name.
	Separator = '/'
	// Delimiter separates a key from its value within a component.
	Delimiter = '='
)

const hexDigits = "0123456789ABCDEF"

// needsEscape reports whether c may not appear raw inside a component.
// The set covers the separator and delimiter themselves, the escape
// character, path-hostile characters, and ASCII control characters, so a
// partition name stays unambiguous and safe to embed in a storage location.
func needsEscape(c byte) bool {
	if c < 0x20 || c == 0x7F {
		return true
	}
	switch c {
	case '%', '/', '=', ':', '#', '?', '*', '"', '\'', '\\', '{', '}', '[', ']', '^':
		return true
	}
	return false
}

// Escape encodes a single component so it can appear in a partition name.
func Escape(component string) string {
	var b strings.Builder
	for i := 0; i < len(component); i++ {
		c := component[i]
		if needsEscape(c) {
			b.WriteByte('%')
			b.WriteByte(hexDigits[c>>4])
			b.WriteByte(hexDigits[c&0xF])
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// Unescape reverses Escape. It fails on truncated or non-hex escapes.
func Unescape(component string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(component); i++ {
		c := component[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		if i+2 >= len(component) {
			return "", ErrMalformed.New("truncated escape in %q", component)
		}
		hi, ok1 := unhex(component[i+1])
		lo, ok2 := unhex(component[i+2])
		if !ok1 || !ok2 {
			return "", ErrMalformed.New("invalid escape %q in %q", component[i:i+3], component)
		}
		b.WriteByte(hi<<4 | lo)
		i += 2
	}
	return b.String(), nil
}

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	}
	return 0, false
}

// Encode builds the canonical partition name from the ordered partition-key
// names and the matching ordered values.
func Encode(keys, values []string) (string, error) {
	if len(keys) == 0 {
		return "", ErrMalformed.New("no partition keys")
	}
	if len(keys) != len(values) {
		return "", ErrMalformed.New("got %d values for %d partition keys", len(values), len(keys))
	}

	var b strings.Builder
	for i := range keys {
		if keys[i] == "" {
			return "", ErrMalformed.New("empty partition key at position %d", i)
		}
		if i > 0 {
			b.WriteByte(Separator)
		}
		b.WriteString(Escape(keys[i]))
		b.WriteByte(Delimiter)
		b.WriteString(Escape(values[i]))
	}
	return b.String(), nil
}

// Decode extracts the ordered value list from a partition name. The caller
// supplies the table's ordered partition-key names; the name must contain
// exactly one component per key, in order, or decoding fails.
func Decode(keys []string, name string) ([]string, error) {
	if name == "" {
		return nil, ErrMalformed.New("empty partition name")
	}

	components := strings.Split(name, string(Separator))
	if len(components) != len(keys) {
		return nil, ErrMalformed.New("name %q has %d components, expected %d", name, len(components), len(keys))
	}

	values := make([]string, len(components))
	for i, component := range components {
		eq := strings.IndexByte(component, Delimiter)
		if eq < 0 {
			return nil, ErrMalformed.New("component %q has no %q", component, string(Delimiter))
		}

		key, err := Unescape(component[:eq])
		if err != nil {
			return nil, err
		}
		if !strings.EqualFold(key, keys[i]) {
			return nil, ErrMalformed.New("component %d has key %q, expected %q", i, key, keys[i])
		}

		value, err := Unescape(component[eq+1:])
		if err != nil {
			return nil, err
		}
		values[i] = value
	}
	return values, nil
}
