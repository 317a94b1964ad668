// Copyright (C) 2024 Datalith, Inc.
// See LICENSE for copying information.

package catalog

import (
	"strings"
	"time"
)

// Database is the top level of the namespace hierarchy.
type Database struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	LocationURI string `json:"location_uri,omitempty"`
}

// FieldSchema is a single column definition. Type names a primitive or a
// registered type.
type FieldSchema struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Comment string `json:"comment,omitempty"`
}

// Table is a named collection of fields under a database. PartitionKeys are
// distinct from the data columns and are immutable after creation.
type Table struct {
	Database      string            `json:"database"`
	Name          string            `json:"name"`
	Fields        []FieldSchema     `json:"fields"`
	PartitionKeys []FieldSchema     `json:"partition_keys,omitempty"`
	LocationURI   string            `json:"location_uri,omitempty"`
	Properties    map[string]string `json:"properties,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

// PartitionKeyNames returns the ordered partition-key column names.
func (table *Table) PartitionKeyNames() []string {
	if len(table.PartitionKeys) == 0 {
		return nil
	}
	names := make([]string, len(table.PartitionKeys))
	for i, key := range table.PartitionKeys {
		names[i] = key.Name
	}
	return names
}

// Partition is a uniquely-keyed subdivision of a table, addressed by its
// ordered value list. Name is the canonical reversible encoding of Values
// against the table's partition keys; it is derived, never stored
// independently.
type Partition struct {
	Database    string            `json:"database"`
	Table       string            `json:"table"`
	Values      []string          `json:"values"`
	Name        string            `json:"-"`
	LocationURI string            `json:"location_uri,omitempty"`
	Properties  map[string]string `json:"properties,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// TypeKind tags the closed set of type shapes.
type TypeKind string

const (
	// KindPrimitive is a seeded scalar type.
	KindPrimitive TypeKind = "primitive"
	// KindStruct is a named record of fields.
	KindStruct TypeKind = "struct"
	// KindList is a homogeneous sequence; Element names the element type.
	KindList TypeKind = "list"
	// KindMap is a key/value mapping; Key and Value name the component types.
	KindMap TypeKind = "map"
)

// Type is a named type definition, a tagged variant over TypeKind.
type Type struct {
	Name   string        `json:"name"`
	Kind   TypeKind      `json:"kind"`
	Fields []FieldSchema `json:"fields,omitempty"`  // struct
	Elem   string        `json:"elem,omitempty"`    // list
	MapKey string        `json:"map_key,omitempty"` // map
	MapVal string        `json:"map_val,omitempty"` // map
}

// References returns the type names this type depends on.
func (t *Type) References() []string {
	switch t.Kind {
	case KindStruct:
		refs := make([]string, 0, len(t.Fields))
		for _, field := range t.Fields {
			refs = append(refs, normalizeName(field.Type))
		}
		return refs
	case KindList:
		return []string{normalizeName(t.Elem)}
	case KindMap:
		return []string{normalizeName(t.MapKey), normalizeName(t.MapVal)}
	}
	return nil
}

// normalizeName case-folds an identifier; every lookup path agrees on this.
func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// validateName rejects identifiers that would break the key scheme.
func validateName(kind, name string) error {
	if name == "" {
		return ErrInvalidOperation.New("%s name is empty", kind)
	}
	if strings.ContainsRune(name, '/') {
		return ErrInvalidOperation.New("%s name %q contains '/'", kind, name)
	}
	return nil
}
