// Copyright (C) 2024 Datalith, Inc.
// See LICENSE for copying information.

package service

import "github.com/datalith/catalogd/catalog"

// Request and response types form the plain contract carried by the external
// transport collaborator. Limits are int16 with the inherited convention:
// negative means unbounded, zero means none.

// CreateDatabaseRequest asks for a new database.
type CreateDatabaseRequest struct {
	Name        string
	Description string
	LocationURI string
}

// CreateDatabaseResponse reports creation.
type CreateDatabaseResponse struct {
	Created bool
}

// GetDatabaseRequest addresses a database by name.
type GetDatabaseRequest struct {
	Name string
}

// GetDatabaseResponse carries the database.
type GetDatabaseResponse struct {
	Database catalog.Database
}

// DropDatabaseRequest asks to remove a database.
type DropDatabaseRequest struct {
	Name  string
	Force bool
}

// DropDatabaseResponse reports removal.
type DropDatabaseResponse struct {
	Dropped bool
}

// GetDatabasesRequest lists all databases.
type GetDatabasesRequest struct{}

// GetDatabasesResponse carries all database names.
type GetDatabasesResponse struct {
	Names []string
}

// CreateTypeRequest registers a type definition.
type CreateTypeRequest struct {
	Type catalog.Type
}

// CreateTypeResponse reports creation.
type CreateTypeResponse struct {
	Created bool
}

// GetTypeRequest addresses a type by name.
type GetTypeRequest struct {
	Name string
}

// GetTypeResponse carries the type.
type GetTypeResponse struct {
	Type catalog.Type
}

// GetTypeAllRequest asks for a type and its transitive references.
type GetTypeAllRequest struct {
	Name string
}

// GetTypeAllResponse carries the closure keyed by type name.
type GetTypeAllResponse struct {
	Types map[string]catalog.Type
}

// DropTypeRequest asks to remove a type.
type DropTypeRequest struct {
	Name string
}

// DropTypeResponse reports removal.
type DropTypeResponse struct {
	Dropped bool
}

// CreateTableRequest registers a table.
type CreateTableRequest struct {
	Table catalog.Table
}

// CreateTableResponse is empty; failures arrive as status errors.
type CreateTableResponse struct{}

// AlterTableRequest replaces a table's mutable attributes.
type AlterTableRequest struct {
	Database string
	Name     string
	Table    catalog.Table
}

// AlterTableResponse is empty.
type AlterTableResponse struct{}

// DropTableRequest asks to remove a table and its partitions.
type DropTableRequest struct {
	Database   string
	Name       string
	DeleteData bool
}

// DropTableResponse is empty.
type DropTableResponse struct{}

// GetTableRequest addresses a table.
type GetTableRequest struct {
	Database string
	Name     string
}

// GetTableResponse carries the table.
type GetTableResponse struct {
	Table catalog.Table
}

// GetTablesRequest lists a database's tables filtered by pattern.
type GetTablesRequest struct {
	Database string
	Pattern  string
}

// GetTablesResponse carries the matching table names.
type GetTablesResponse struct {
	Names []string
}

// GetFieldsRequest asks for a table's data columns.
type GetFieldsRequest struct {
	Database string
	Table    string
}

// GetFieldsResponse carries the columns in declaration order.
type GetFieldsResponse struct {
	Fields []catalog.FieldSchema
}

// GetSchemaRequest asks for a table's effective schema.
type GetSchemaRequest struct {
	Database string
	Table    string
}

// GetSchemaResponse carries fields plus trailing partition-key columns.
type GetSchemaResponse struct {
	Fields []catalog.FieldSchema
}

// AddPartitionRequest registers a fully specified partition.
type AddPartitionRequest struct {
	Partition catalog.Partition
}

// AppendPartitionRequest creates a partition from values alone.
type AppendPartitionRequest struct {
	Database string
	Table    string
	Values   []string
}

// AppendPartitionByNameRequest creates a partition from its encoded name.
type AppendPartitionByNameRequest struct {
	Database string
	Table    string
	Name     string
}

// PartitionResponse carries the stored partition, canonical name included.
type PartitionResponse struct {
	Partition catalog.Partition
}

// DropPartitionRequest removes a partition addressed by values.
type DropPartitionRequest struct {
	Database   string
	Table      string
	Values     []string
	DeleteData bool
}

// DropPartitionByNameRequest removes a partition addressed by name.
type DropPartitionByNameRequest struct {
	Database   string
	Table      string
	Name       string
	DeleteData bool
}

// DropPartitionResponse reports removal.
type DropPartitionResponse struct {
	Dropped bool
}

// GetPartitionRequest addresses a partition by values.
type GetPartitionRequest struct {
	Database string
	Table    string
	Values   []string
}

// GetPartitionByNameRequest addresses a partition by encoded name.
type GetPartitionByNameRequest struct {
	Database string
	Table    string
	Name     string
}

// GetPartitionsRequest enumerates partitions up to MaxParts.
type GetPartitionsRequest struct {
	Database string
	Table    string
	MaxParts int16
}

// GetPartitionsResponse carries the partitions in natural order.
type GetPartitionsResponse struct {
	Partitions []catalog.Partition
}

// GetPartitionNamesRequest enumerates partition names up to MaxParts.
type GetPartitionNamesRequest struct {
	Database string
	Table    string
	MaxParts int16
}

// GetPartitionNamesResponse carries the names in natural order.
type GetPartitionNamesResponse struct {
	Names []string
}

// GetPartitionsPsRequest filters partitions by a partial value list; empty
// positions are wildcards.
type GetPartitionsPsRequest struct {
	Database      string
	Table         string
	PartialValues []string
	MaxParts      int16
}

// GetPartitionNamesPsRequest is GetPartitionsPsRequest for names only.
type GetPartitionNamesPsRequest struct {
	Database      string
	Table         string
	PartialValues []string
	MaxParts      int16
}

// AlterPartitionRequest replaces a partition's mutable attributes.
type AlterPartitionRequest struct {
	Database  string
	Table     string
	Partition catalog.Partition
}

// AlterPartitionResponse is empty.
type AlterPartitionResponse struct{}

// GetConfigValueRequest looks up a process configuration value.
type GetConfigValueRequest struct {
	Name         string
	DefaultValue string
}

// GetConfigValueResponse carries the configured or default value.
type GetConfigValueResponse struct {
	Value string
}
