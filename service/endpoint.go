// Copyright (C) 2024 Datalith, Inc.
// See LICENSE for copying information.

// Package service exposes the catalog as the operation set carried by an
// external RPC transport. The endpoint validates addressing, dispatches to
// the catalog, and translates the internal failure taxonomy into grpc
// status codes.
package service

import (
	"context"

	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/datalith/catalogd/catalog"
	"github.com/datalith/catalogd/catalog/partname"
)

var (
	// Error is the default service errs class.
	Error = errs.Class("catalog service")

	mon = monkit.Package()
)

// ConfigValues is the read-only process configuration collaborator behind
// GetConfigValue. It is loaded once at startup.
type ConfigValues interface {
	Lookup(name string) (value string, ok bool)
}

// Endpoint dispatches catalog operations.
type Endpoint struct {
	log     *zap.Logger
	catalog *catalog.DB
	config  ConfigValues
}

// NewEndpoint creates the service endpoint.
func NewEndpoint(log *zap.Logger, db *catalog.DB, config ConfigValues) *Endpoint {
	return &Endpoint{
		log:     log,
		catalog: db,
		config:  config,
	}
}

// convertError maps the catalog failure taxonomy onto grpc status codes.
// Every failure keeps its message, which names the entity kind and its
// qualified name.
func (endpoint *Endpoint) convertError(err error) error {
	switch {
	case err == nil:
		return nil
	case catalog.ErrNotFound.Has(err):
		return status.Error(codes.NotFound, err.Error())
	case catalog.ErrAlreadyExists.Has(err):
		return status.Error(codes.AlreadyExists, err.Error())
	case catalog.ErrNotEmpty.Has(err),
		catalog.ErrInvalidOperation.Has(err),
		catalog.ErrStillReferenced.Has(err):
		return status.Error(codes.FailedPrecondition, err.Error())
	case catalog.ErrInvalidSchema.Has(err),
		catalog.ErrUnknownReference.Has(err),
		catalog.ErrCyclicDependency.Has(err),
		partname.ErrMalformed.Has(err):
		return status.Error(codes.InvalidArgument, err.Error())
	case catalog.ErrProtected.Has(err):
		return status.Error(codes.PermissionDenied, err.Error())
	case catalog.ErrUnavailable.Has(err):
		return status.Error(codes.Unavailable, err.Error())
	default:
		endpoint.log.Error("internal error", zap.Error(err))
		return status.Error(codes.Internal, err.Error())
	}
}

// CreateDatabase registers a new database.
func (endpoint *Endpoint) CreateDatabase(ctx context.Context, req CreateDatabaseRequest) (_ CreateDatabaseResponse, err error) {
	defer mon.Task()(&ctx)(&err)

	err = endpoint.catalog.CreateDatabase(ctx, catalog.Database{
		Name:        req.Name,
		Description: req.Description,
		LocationURI: req.LocationURI,
	})
	if err != nil {
		return CreateDatabaseResponse{}, endpoint.convertError(err)
	}
	return CreateDatabaseResponse{Created: true}, nil
}

// GetDatabase returns a database by name.
func (endpoint *Endpoint) GetDatabase(ctx context.Context, req GetDatabaseRequest) (_ GetDatabaseResponse, err error) {
	defer mon.Task()(&ctx)(&err)

	database, err := endpoint.catalog.GetDatabase(ctx, req.Name)
	if err != nil {
		return GetDatabaseResponse{}, endpoint.convertError(err)
	}
	return GetDatabaseResponse{Database: database}, nil
}

// DropDatabase removes a database.
func (endpoint *Endpoint) DropDatabase(ctx context.Context, req DropDatabaseRequest) (_ DropDatabaseResponse, err error) {
	defer mon.Task()(&ctx)(&err)

	if err := endpoint.catalog.DropDatabase(ctx, req.Name, req.Force); err != nil {
		return DropDatabaseResponse{}, endpoint.convertError(err)
	}
	return DropDatabaseResponse{Dropped: true}, nil
}

// GetDatabases lists all database names.
func (endpoint *Endpoint) GetDatabases(ctx context.Context, req GetDatabasesRequest) (_ GetDatabasesResponse, err error) {
	defer mon.Task()(&ctx)(&err)

	names, err := endpoint.catalog.GetDatabases(ctx)
	if err != nil {
		return GetDatabasesResponse{}, endpoint.convertError(err)
	}
	return GetDatabasesResponse{Names: names}, nil
}

// CreateType registers a type definition.
func (endpoint *Endpoint) CreateType(ctx context.Context, req CreateTypeRequest) (_ CreateTypeResponse, err error) {
	defer mon.Task()(&ctx)(&err)

	if err := endpoint.catalog.CreateType(ctx, req.Type); err != nil {
		return CreateTypeResponse{}, endpoint.convertError(err)
	}
	return CreateTypeResponse{Created: true}, nil
}

// GetType returns a type by name.
func (endpoint *Endpoint) GetType(ctx context.Context, req GetTypeRequest) (_ GetTypeResponse, err error) {
	defer mon.Task()(&ctx)(&err)

	t, err := endpoint.catalog.GetType(ctx, req.Name)
	if err != nil {
		return GetTypeResponse{}, endpoint.convertError(err)
	}
	return GetTypeResponse{Type: t}, nil
}

// GetTypeAll returns a type and every type it transitively references.
func (endpoint *Endpoint) GetTypeAll(ctx context.Context, req GetTypeAllRequest) (_ GetTypeAllResponse, err error) {
	defer mon.Task()(&ctx)(&err)

	types, err := endpoint.catalog.GetTypeAll(ctx, req.Name)
	if err != nil {
		return GetTypeAllResponse{}, endpoint.convertError(err)
	}
	return GetTypeAllResponse{Types: types}, nil
}

// DropType removes an unreferenced, non-primitive type.
func (endpoint *Endpoint) DropType(ctx context.Context, req DropTypeRequest) (_ DropTypeResponse, err error) {
	defer mon.Task()(&ctx)(&err)

	if err := endpoint.catalog.DropType(ctx, req.Name); err != nil {
		return DropTypeResponse{}, endpoint.convertError(err)
	}
	return DropTypeResponse{Dropped: true}, nil
}

// CreateTable registers a table.
func (endpoint *Endpoint) CreateTable(ctx context.Context, req CreateTableRequest) (_ CreateTableResponse, err error) {
	defer mon.Task()(&ctx)(&err)

	if err := endpoint.catalog.CreateTable(ctx, req.Table); err != nil {
		return CreateTableResponse{}, endpoint.convertError(err)
	}
	return CreateTableResponse{}, nil
}

// AlterTable replaces a table's mutable attributes.
func (endpoint *Endpoint) AlterTable(ctx context.Context, req AlterTableRequest) (_ AlterTableResponse, err error) {
	defer mon.Task()(&ctx)(&err)

	if err := endpoint.catalog.AlterTable(ctx, req.Database, req.Name, req.Table); err != nil {
		return AlterTableResponse{}, endpoint.convertError(err)
	}
	return AlterTableResponse{}, nil
}

// DropTable removes a table and its partitions.
func (endpoint *Endpoint) DropTable(ctx context.Context, req DropTableRequest) (_ DropTableResponse, err error) {
	defer mon.Task()(&ctx)(&err)

	if err := endpoint.catalog.DropTable(ctx, req.Database, req.Name, req.DeleteData); err != nil {
		return DropTableResponse{}, endpoint.convertError(err)
	}
	return DropTableResponse{}, nil
}

// GetTable returns a table.
func (endpoint *Endpoint) GetTable(ctx context.Context, req GetTableRequest) (_ GetTableResponse, err error) {
	defer mon.Task()(&ctx)(&err)

	table, err := endpoint.catalog.GetTable(ctx, req.Database, req.Name)
	if err != nil {
		return GetTableResponse{}, endpoint.convertError(err)
	}
	return GetTableResponse{Table: table}, nil
}

// GetTables lists table names matching the pattern.
func (endpoint *Endpoint) GetTables(ctx context.Context, req GetTablesRequest) (_ GetTablesResponse, err error) {
	defer mon.Task()(&ctx)(&err)

	names, err := endpoint.catalog.GetTables(ctx, req.Database, req.Pattern)
	if err != nil {
		return GetTablesResponse{}, endpoint.convertError(err)
	}
	return GetTablesResponse{Names: names}, nil
}

// GetFields returns a table's data columns.
func (endpoint *Endpoint) GetFields(ctx context.Context, req GetFieldsRequest) (_ GetFieldsResponse, err error) {
	defer mon.Task()(&ctx)(&err)

	fields, err := endpoint.catalog.GetFields(ctx, req.Database, req.Table)
	if err != nil {
		return GetFieldsResponse{}, endpoint.convertError(err)
	}
	return GetFieldsResponse{Fields: fields}, nil
}

// GetSchema returns a table's effective schema.
func (endpoint *Endpoint) GetSchema(ctx context.Context, req GetSchemaRequest) (_ GetSchemaResponse, err error) {
	defer mon.Task()(&ctx)(&err)

	fields, err := endpoint.catalog.GetSchema(ctx, req.Database, req.Table)
	if err != nil {
		return GetSchemaResponse{}, endpoint.convertError(err)
	}
	return GetSchemaResponse{Fields: fields}, nil
}

// AddPartition registers a fully specified partition.
func (endpoint *Endpoint) AddPartition(ctx context.Context, req AddPartitionRequest) (_ PartitionResponse, err error) {
	defer mon.Task()(&ctx)(&err)

	partition, err := endpoint.catalog.AddPartition(ctx, req.Partition)
	if err != nil {
		return PartitionResponse{}, endpoint.convertError(err)
	}
	return PartitionResponse{Partition: partition}, nil
}

// AppendPartition creates a partition from its value list.
func (endpoint *Endpoint) AppendPartition(ctx context.Context, req AppendPartitionRequest) (_ PartitionResponse, err error) {
	defer mon.Task()(&ctx)(&err)

	partition, err := endpoint.catalog.AppendPartition(ctx, req.Database, req.Table, req.Values)
	if err != nil {
		return PartitionResponse{}, endpoint.convertError(err)
	}
	return PartitionResponse{Partition: partition}, nil
}

// AppendPartitionByName creates a partition from its encoded name.
func (endpoint *Endpoint) AppendPartitionByName(ctx context.Context, req AppendPartitionByNameRequest) (_ PartitionResponse, err error) {
	defer mon.Task()(&ctx)(&err)

	partition, err := endpoint.catalog.AppendPartitionByName(ctx, req.Database, req.Table, req.Name)
	if err != nil {
		return PartitionResponse{}, endpoint.convertError(err)
	}
	return PartitionResponse{Partition: partition}, nil
}

// DropPartition removes a partition addressed by values.
func (endpoint *Endpoint) DropPartition(ctx context.Context, req DropPartitionRequest) (_ DropPartitionResponse, err error) {
	defer mon.Task()(&ctx)(&err)

	if err := endpoint.catalog.DropPartition(ctx, req.Database, req.Table, req.Values, req.DeleteData); err != nil {
		return DropPartitionResponse{}, endpoint.convertError(err)
	}
	return DropPartitionResponse{Dropped: true}, nil
}

// DropPartitionByName removes a partition addressed by its encoded name.
func (endpoint *Endpoint) DropPartitionByName(ctx context.Context, req DropPartitionByNameRequest) (_ DropPartitionResponse, err error) {
	defer mon.Task()(&ctx)(&err)

	if err := endpoint.catalog.DropPartitionByName(ctx, req.Database, req.Table, req.Name, req.DeleteData); err != nil {
		return DropPartitionResponse{}, endpoint.convertError(err)
	}
	return DropPartitionResponse{Dropped: true}, nil
}

// GetPartition returns the partition addressed by values.
func (endpoint *Endpoint) GetPartition(ctx context.Context, req GetPartitionRequest) (_ PartitionResponse, err error) {
	defer mon.Task()(&ctx)(&err)

	partition, err := endpoint.catalog.GetPartition(ctx, req.Database, req.Table, req.Values)
	if err != nil {
		return PartitionResponse{}, endpoint.convertError(err)
	}
	return PartitionResponse{Partition: partition}, nil
}

// GetPartitionByName returns the partition addressed by its encoded name.
func (endpoint *Endpoint) GetPartitionByName(ctx context.Context, req GetPartitionByNameRequest) (_ PartitionResponse, err error) {
	defer mon.Task()(&ctx)(&err)

	partition, err := endpoint.catalog.GetPartitionByName(ctx, req.Database, req.Table, req.Name)
	if err != nil {
		return PartitionResponse{}, endpoint.convertError(err)
	}
	return PartitionResponse{Partition: partition}, nil
}

// GetPartitions enumerates partitions up to MaxParts.
func (endpoint *Endpoint) GetPartitions(ctx context.Context, req GetPartitionsRequest) (_ GetPartitionsResponse, err error) {
	defer mon.Task()(&ctx)(&err)

	partitions, err := endpoint.catalog.GetPartitions(ctx, req.Database, req.Table, int(req.MaxParts))
	if err != nil {
		return GetPartitionsResponse{}, endpoint.convertError(err)
	}
	return GetPartitionsResponse{Partitions: partitions}, nil
}

// GetPartitionNames enumerates partition names up to MaxParts.
func (endpoint *Endpoint) GetPartitionNames(ctx context.Context, req GetPartitionNamesRequest) (_ GetPartitionNamesResponse, err error) {
	defer mon.Task()(&ctx)(&err)

	names, err := endpoint.catalog.GetPartitionNames(ctx, req.Database, req.Table, int(req.MaxParts))
	if err != nil {
		return GetPartitionNamesResponse{}, endpoint.convertError(err)
	}
	return GetPartitionNamesResponse{Names: names}, nil
}

// GetPartitionsPs filters partitions by a partial value list.
func (endpoint *Endpoint) GetPartitionsPs(ctx context.Context, req GetPartitionsPsRequest) (_ GetPartitionsResponse, err error) {
	defer mon.Task()(&ctx)(&err)

	partitions, err := endpoint.catalog.GetPartitionsPs(ctx, req.Database, req.Table, req.PartialValues, int(req.MaxParts))
	if err != nil {
		return GetPartitionsResponse{}, endpoint.convertError(err)
	}
	return GetPartitionsResponse{Partitions: partitions}, nil
}

// GetPartitionNamesPs filters partition names by a partial value list.
func (endpoint *Endpoint) GetPartitionNamesPs(ctx context.Context, req GetPartitionNamesPsRequest) (_ GetPartitionNamesResponse, err error) {
	defer mon.Task()(&ctx)(&err)

	names, err := endpoint.catalog.GetPartitionNamesPs(ctx, req.Database, req.Table, req.PartialValues, int(req.MaxParts))
	if err != nil {
		return GetPartitionNamesResponse{}, endpoint.convertError(err)
	}
	return GetPartitionNamesResponse{Names: names}, nil
}

// AlterPartition replaces a partition's mutable attributes.
func (endpoint *Endpoint) AlterPartition(ctx context.Context, req AlterPartitionRequest) (_ AlterPartitionResponse, err error) {
	defer mon.Task()(&ctx)(&err)

	if err := endpoint.catalog.AlterPartition(ctx, req.Database, req.Table, req.Partition); err != nil {
		return AlterPartitionResponse{}, endpoint.convertError(err)
	}
	return AlterPartitionResponse{}, nil
}

// GetConfigValue looks up a process configuration value, falling back to
// the supplied default. Not catalog state; it only shares the surface.
func (endpoint *Endpoint) GetConfigValue(ctx context.Context, req GetConfigValueRequest) (_ GetConfigValueResponse, err error) {
	defer mon.Task()(&ctx)(&err)

	if endpoint.config != nil {
		if value, ok := endpoint.config.Lookup(req.Name); ok {
			return GetConfigValueResponse{Value: value}, nil
		}
	}
	return GetConfigValueResponse{Value: req.DefaultValue}, nil
}
