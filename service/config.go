// Copyright (C) 2024 Datalith, Inc.
// See LICENSE for copying information.

package service

import (
	"github.com/spf13/viper"

	"github.com/datalith/catalogd/catalog"
)

// Config is everything needed to run the catalog service.
type Config struct {
	DatabaseURL string         `help:"the record store to use" default:"bolt://$CONFDIR/catalog.db"`
	Catalog     catalog.Config `help:"catalog configuration"`
}

// ViperValues adapts a loaded viper snapshot to the read-only ConfigValues
// collaborator. The snapshot is taken once; later viper mutations are not
// observed.
type ViperValues struct {
	values map[string]string
}

// NewViperValues snapshots the given viper instance.
func NewViperValues(v *viper.Viper) *ViperValues {
	values := make(map[string]string)
	for _, key := range v.AllKeys() {
		values[key] = v.GetString(key)
	}
	return &ViperValues{values: values}
}

// Lookup returns the configured value for name.
func (v *ViperValues) Lookup(name string) (string, bool) {
	value, ok := v.values[name]
	return value, ok
}

// StaticValues is a fixed ConfigValues, convenient in tests.
type StaticValues map[string]string

// Lookup returns the configured value for name.
func (s StaticValues) Lookup(name string) (string, bool) {
	value, ok := s[name]
	return value, ok
}
