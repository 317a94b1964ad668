// Copyright (C) 2024 Datalith, Inc.
// See LICENSE for copying information.

package service

import (
	"strings"

	"go.uber.org/zap"

	"github.com/datalith/catalogd/private/kvstore"
	"github.com/datalith/catalogd/private/kvstore/boltdb"
	"github.com/datalith/catalogd/private/kvstore/storelogger"
	"github.com/datalith/catalogd/private/kvstore/teststore"
)

// CatalogBucket is the boltdb bucket holding every catalog record.
const CatalogBucket = "catalog"

// NewStore returns the record store for the given database URL.
// Supported schemes: `bolt://<path>` and `mem://`.
func NewStore(log *zap.Logger, databaseURL string) (kvstore.Store, error) {
	scheme, source, found := strings.Cut(databaseURL, "://")
	if !found {
		return nil, Error.New("malformed database URL %q", databaseURL)
	}

	var store kvstore.Store
	switch scheme {
	case "bolt":
		db, err := boltdb.New(source, CatalogBucket)
		if err != nil {
			return nil, err
		}
		store = db
	case "mem":
		store = teststore.New()
	default:
		return nil, Error.New("unsupported database scheme %q", databaseURL)
	}

	return storelogger.New(log.Named("kvstore"), store), nil
}
