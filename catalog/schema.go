// Copyright (C) 2024 Datalith, Inc.
// See LICENSE for copying information.

package catalog

import "context"

// GetFields returns the table's data columns in declaration order.
func (db *DB) GetFields(ctx context.Context, database, table string) (_ []FieldSchema, err error) {
	defer mon.Task()(&ctx)(&err)

	stored, err := db.GetTable(ctx, database, table)
	if err != nil {
		return nil, err
	}
	return stored.Fields, nil
}

// GetSchema returns the table's effective schema: the data columns followed
// by any partition-key columns not already materialized as data columns, in
// partition-key order.
func (db *DB) GetSchema(ctx context.Context, database, table string) (_ []FieldSchema, err error) {
	defer mon.Task()(&ctx)(&err)

	stored, err := db.GetTable(ctx, database, table)
	if err != nil {
		return nil, err
	}

	present := make(map[string]bool, len(stored.Fields))
	for _, field := range stored.Fields {
		present[field.Name] = true
	}

	schema := append([]FieldSchema{}, stored.Fields...)
	for _, key := range stored.PartitionKeys {
		if !present[key.Name] {
			schema = append(schema, key)
		}
	}
	return schema, nil
}
