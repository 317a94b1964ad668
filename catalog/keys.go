// Copyright (C) 2024 Datalith, Inc.
// See LICENSE for copying information.

package catalog

import (
	"encoding/json"

	"github.com/datalith/catalogd/private/kvstore"
)

// Key scheme. Database and table names are normalized and may not contain
// the delimiter; partition names escape it per component, so keys are
// unambiguous and sort lexicographically within each prefix.
//
//	dbs/<db>                     Database record
//	tbl/<db>/<table>             Table record
//	prt/<db>/<table>/<partname>  Partition record
//	typ/<name>                   Type record
const (
	databasePrefix  = "dbs/"
	tablePrefix     = "tbl/"
	partitionPrefix = "prt/"
	typePrefix      = "typ/"
)

func databaseKey(name string) kvstore.Key {
	return kvstore.Key(databasePrefix + name)
}

func tableKey(database, table string) kvstore.Key {
	return kvstore.Key(tablePrefix + database + "/" + table)
}

func tablesPrefix(database string) kvstore.Key {
	return kvstore.Key(tablePrefix + database + "/")
}

func partitionKey(database, table, name string) kvstore.Key {
	return kvstore.Key(partitionPrefix + database + "/" + table + "/" + name)
}

func partitionsPrefix(database, table string) kvstore.Key {
	return kvstore.Key(partitionPrefix + database + "/" + table + "/")
}

func typeKey(name string) kvstore.Key {
	return kvstore.Key(typePrefix + name)
}

func encodeRecord(record interface{}) (kvstore.Value, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return data, nil
}

func decodeRecord(value kvstore.Value, record interface{}) error {
	if err := json.Unmarshal(value, record); err != nil {
		return Error.New("corrupt record: %v", err)
	}
	return nil
}
