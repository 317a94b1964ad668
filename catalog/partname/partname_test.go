// Copyright (C) 2024 Datalith, Inc.
// See LICENSE for copying information.

package partname_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/datalith/catalogd/catalog/partname"
)

func TestEncode(t *testing.T) {
	name, err := partname.Encode([]string{"ds"}, []string{"2024-01-01"})
	require.NoError(t, err)
	require.Equal(t, "ds=2024-01-01", name)

	name, err = partname.Encode([]string{"ds", "region"}, []string{"2024-01-01", "eu-west"})
	require.NoError(t, err)
	require.Equal(t, "ds=2024-01-01/region=eu-west", name)

	// reserved characters inside a value never ambiguate the encoding
	name, err = partname.Encode([]string{"path"}, []string{"a/b=c%d"})
	require.NoError(t, err)
	require.Equal(t, "path=a%2Fb%3Dc%25d", name)

	_, err = partname.Encode([]string{"ds"}, []string{"a", "b"})
	require.True(t, partname.ErrMalformed.Has(err))

	_, err = partname.Encode(nil, nil)
	require.True(t, partname.ErrMalformed.Has(err))

	_, err = partname.Encode([]string{""}, []string{"x"})
	require.True(t, partname.ErrMalformed.Has(err))
}

func TestRoundtrip(t *testing.T) {
	cases := []struct {
		keys   []string
		values []string
	}{
		{[]string{"ds"}, []string{"2024-01-01"}},
		{[]string{"ds", "hr"}, []string{"2024-01-01", "23"}},
		{[]string{"k"}, []string{""}},
		{[]string{"k"}, []string{"plain"}},
		{[]string{"k"}, []string{"with space"}},
		{[]string{"k"}, []string{"a/b"}},
		{[]string{"k"}, []string{"a=b"}},
		{[]string{"k"}, []string{"100%"}},
		{[]string{"k"}, []string{"tab\tnewline\n"}},
		{[]string{"k"}, []string{`quo"te'and\back`}},
		{[]string{"k"}, []string{"ünïcödé-日本語"}},
		{[]string{"a", "b", "c"}, []string{"=", "/", "%"}},
	}

	for _, tc := range cases {
		name, err := partname.Encode(tc.keys, tc.values)
		require.NoError(t, err)

		decoded, err := partname.Decode(tc.keys, name)
		require.NoError(t, err)
		require.Equal(t, tc.values, decoded, "roundtrip of %q", name)
	}
}

func TestDecodeMalformed(t *testing.T) {
	keys := []string{"ds"}

	for _, name := range []string{
		"",                  // empty
		"ds",                // no delimiter
		"2024-01-01",        // no delimiter
		"hr=23",             // wrong key
		"ds=a/hr=b",         // too many components
		"ds=100%",           // truncated escape
		"ds=bad%zzescape",   // non-hex escape
		"ds=%2",             // truncated escape
		"ds=ok/",            // trailing separator, arity mismatch
		"=2024-01-01/hr=23", // arity mismatch
	} {
		_, err := partname.Decode(keys, name)
		require.True(t, partname.ErrMalformed.Has(err), "expected malformed: %q", name)
	}

	// key comparison is case-insensitive, same as catalog name normalization
	values, err := partname.Decode(keys, "DS=x")
	require.NoError(t, err)
	require.Equal(t, []string{"x"}, values)
}
