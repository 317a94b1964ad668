// Copyright (C) 2024 Datalith, Inc.
// See LICENSE for copying information.

package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompilePattern(t *testing.T) {
	cases := []struct {
		pattern string
		name    string
		want    bool
	}{
		{"", "anything", true},
		{"*", "anything", true},
		{"events", "events", true},
		{"events", "events_daily", false},
		{"EVENTS", "events", true},
		{"events*", "events_daily", true},
		{"*daily", "events_daily", true},
		{"*ent*", "events", true},
		{"a|b", "a", true},
		{"a|b", "b", true},
		{"a|b", "c", false},
		{"us*|eu*", "us_east", true},
		{"us*|eu*", "ap_south", false},
		// regex metacharacters are literals here
		{"a.b", "axb", false},
		{"a.b", "a.b", true},
		{"[ab]", "[ab]", true},
		{"[ab]", "a", false},
	}
	for _, tc := range cases {
		match, err := compilePattern(tc.pattern)
		require.NoError(t, err, "pattern %q", tc.pattern)
		require.Equal(t, tc.want, match(tc.name), "pattern %q against %q", tc.pattern, tc.name)
	}
}
