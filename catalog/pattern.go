// Copyright (C) 2024 Datalith, Inc.
// See LICENSE for copying information.

package catalog

import (
	"regexp"
	"strings"
)

// matchAll matches every name.
var matchAll = func(string) bool { return true }

// compilePattern turns a listing filter into a predicate. The syntax is
// '*' for any run of characters and '|' separating alternatives; everything
// else matches literally and case-insensitively. An empty pattern matches
// all. The pattern is compiled once and applied to every candidate.
func compilePattern(pattern string) (func(string) bool, error) {
	if pattern == "" || pattern == "*" {
		return matchAll, nil
	}

	var b strings.Builder
	b.WriteString("(?i)^(?:")
	for i, alternative := range strings.Split(pattern, "|") {
		if i > 0 {
			b.WriteByte('|')
		}
		for j, literal := range strings.Split(alternative, "*") {
			if j > 0 {
				b.WriteString(".*")
			}
			b.WriteString(regexp.QuoteMeta(literal))
		}
	}
	b.WriteString(")$")

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, ErrInvalidOperation.New("bad pattern %q: %v", pattern, err)
	}
	return re.MatchString, nil
}
