// Copyright (C) 2024 Datalith, Inc.
// See LICENSE for copying information.

package catalog

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/datalith/catalogd/private/kvstore"
)

// primitiveNames are seeded at Init and protected from DropType.
var primitiveNames = []string{
	"string", "int", "bigint", "smallint", "tinyint",
	"float", "double", "boolean", "binary",
	"timestamp", "date", "decimal",
}

func isPrimitive(name string) bool {
	for _, primitive := range primitiveNames {
		if name == primitive {
			return true
		}
	}
	return false
}

func (db *DB) seedPrimitives(ctx context.Context) error {
	for _, name := range primitiveNames {
		record, err := encodeRecord(Type{Name: name, Kind: KindPrimitive})
		if err != nil {
			return err
		}
		err = db.casCreate(ctx, typeKey(name), record)
		if err != nil && !kvstore.ErrKeyExists.Has(err) {
			return err
		}
	}
	return nil
}

// CreateType registers a named type. Every referenced type must already be
// registered, which keeps the reference graph acyclic by construction; the
// cycle check still guards the self-reference and any path leading back to
// the new name.
func (db *DB) CreateType(ctx context.Context, t Type) (err error) {
	defer mon.Task()(&ctx)(&err)

	if err := validateName("type", t.Name); err != nil {
		return err
	}
	t.Name = normalizeName(t.Name)
	normalizeFields(t.Fields)
	t.Elem = normalizeName(t.Elem)
	t.MapKey = normalizeName(t.MapKey)
	t.MapVal = normalizeName(t.MapVal)

	if err := validateTypeShape(&t); err != nil {
		return err
	}

	unlock := db.locks.Lock(typesScope)
	defer unlock()

	for _, ref := range t.References() {
		if ref == t.Name {
			return ErrCyclicDependency.New("type %q references itself", t.Name)
		}
		referenced, err := db.getType(ctx, ref)
		if err != nil {
			if ErrNotFound.Has(err) {
				return ErrUnknownReference.New("type %q references undefined type %q", t.Name, ref)
			}
			return err
		}
		if db.reaches(ctx, &referenced, t.Name, map[string]bool{}) {
			return ErrCyclicDependency.New("type %q closes a reference cycle through %q", t.Name, ref)
		}
	}

	record, err := encodeRecord(t)
	if err != nil {
		return err
	}
	err = db.casCreate(ctx, typeKey(t.Name), record)
	if kvstore.ErrKeyExists.Has(err) {
		return ErrAlreadyExists.New("type %q", t.Name)
	}
	if err != nil {
		return err
	}

	db.log.Info("type created", zap.String("type", t.Name), zap.String("kind", string(t.Kind)))
	return nil
}

func validateTypeShape(t *Type) error {
	switch t.Kind {
	case KindStruct:
		if len(t.Fields) == 0 {
			return ErrInvalidSchema.New("struct type %q has no fields", t.Name)
		}
		seen := make(map[string]bool, len(t.Fields))
		for _, field := range t.Fields {
			if field.Name == "" || field.Type == "" {
				return ErrInvalidSchema.New("struct type %q has an incomplete field", t.Name)
			}
			if seen[field.Name] {
				return ErrInvalidSchema.New("struct type %q field %q duplicated", t.Name, field.Name)
			}
			seen[field.Name] = true
		}
	case KindList:
		if t.Elem == "" {
			return ErrInvalidSchema.New("list type %q has no element type", t.Name)
		}
	case KindMap:
		if t.MapKey == "" || t.MapVal == "" {
			return ErrInvalidSchema.New("map type %q is missing key or value type", t.Name)
		}
	case KindPrimitive:
		return ErrProtected.New("type %q: primitive types are seeded, not created", t.Name)
	default:
		return ErrInvalidSchema.New("type %q has unknown kind %q", t.Name, t.Kind)
	}
	return nil
}

// reaches reports whether target is reachable from t through stored
// references. Lookup failures end the walk; the invariant they would guard
// is re-established by the creation-order rule anyway.
func (db *DB) reaches(ctx context.Context, t *Type, target string, visited map[string]bool) bool {
	for _, ref := range t.References() {
		if ref == target {
			return true
		}
		if visited[ref] {
			continue
		}
		visited[ref] = true
		next, err := db.getType(ctx, ref)
		if err != nil {
			continue
		}
		if db.reaches(ctx, &next, target, visited) {
			return true
		}
	}
	return false
}

// GetType returns the type with the given name.
func (db *DB) GetType(ctx context.Context, name string) (_ Type, err error) {
	defer mon.Task()(&ctx)(&err)
	return db.getType(ctx, normalizeName(name))
}

func (db *DB) getType(ctx context.Context, name string) (Type, error) {
	value, err := db.get(ctx, typeKey(name))
	if err != nil {
		if kvstore.ErrKeyNotFound.Has(err) {
			return Type{}, ErrNotFound.New("type %q", name)
		}
		return Type{}, err
	}

	var t Type
	if err := decodeRecord(value, &t); err != nil {
		return Type{}, err
	}
	return t, nil
}

// GetTypeAll returns the type and the transitive closure of every type it
// references, keyed by name.
func (db *DB) GetTypeAll(ctx context.Context, name string) (_ map[string]Type, err error) {
	defer mon.Task()(&ctx)(&err)

	name = normalizeName(name)
	root, err := db.getType(ctx, name)
	if err != nil {
		return nil, err
	}

	closure := map[string]Type{name: root}
	queue := root.References()
	for len(queue) > 0 {
		ref := queue[0]
		queue = queue[1:]
		if _, done := closure[ref]; done {
			continue
		}
		t, err := db.getType(ctx, ref)
		if err != nil {
			if ErrNotFound.Has(err) {
				return nil, ErrUnknownReference.New("type %q references undefined type %q", name, ref)
			}
			return nil, err
		}
		closure[ref] = t
		queue = append(queue, t.References()...)
	}
	return closure, nil
}

// checkTypeExists resolves a field type name. Caller holds the types lock
// when the result guards a write.
func (db *DB) checkTypeExists(ctx context.Context, name string) error {
	if name == "" {
		return ErrUnknownReference.New("empty type name")
	}
	if _, err := db.getType(ctx, name); err != nil {
		if ErrNotFound.Has(err) {
			return ErrUnknownReference.New("type %q is not registered", name)
		}
		return err
	}
	return nil
}

// DropType removes a type that nothing references. Primitive types are
// seeded and protected.
func (db *DB) DropType(ctx context.Context, name string) (err error) {
	defer mon.Task()(&ctx)(&err)

	name = normalizeName(name)
	if isPrimitive(name) {
		return ErrProtected.New("type %q is primitive", name)
	}

	unlock := db.locks.Lock(typesScope)
	defer unlock()

	if _, err := db.getType(ctx, name); err != nil {
		return err
	}

	if holder, err := db.typeReferencedBy(ctx, name); err != nil {
		return err
	} else if holder != "" {
		return ErrStillReferenced.New("type %q is referenced by %s", name, holder)
	}

	if err := db.delete(ctx, typeKey(name)); err != nil {
		return err
	}

	db.log.Info("type dropped", zap.String("type", name))
	return nil
}

// typeReferencedBy finds a holder of a reference to name: another type, or
// any table field or partition key. Returns "" when unreferenced.
func (db *DB) typeReferencedBy(ctx context.Context, name string) (string, error) {
	types, err := db.scanAll(ctx, kvstore.Key(typePrefix))
	if err != nil {
		return "", err
	}
	for _, item := range types {
		var t Type
		if err := decodeRecord(item.Value, &t); err != nil {
			return "", err
		}
		for _, ref := range t.References() {
			if ref == name {
				return "type " + t.Name, nil
			}
		}
	}

	tables, err := db.scanAll(ctx, kvstore.Key(tablePrefix))
	if err != nil {
		return "", err
	}
	for _, item := range tables {
		var table Table
		if err := decodeRecord(item.Value, &table); err != nil {
			return "", err
		}
		for _, field := range table.Fields {
			if field.Type == name {
				return "table " + table.Database + "." + table.Name + " field " + field.Name, nil
			}
		}
		for _, key := range table.PartitionKeys {
			if key.Type == name {
				return "table " + table.Database + "." + table.Name + " partition key " + key.Name, nil
			}
		}
	}
	return "", nil
}

// GetTypes returns the names of all registered types, primitives included.
func (db *DB) GetTypes(ctx context.Context) (names []string, err error) {
	defer mon.Task()(&ctx)(&err)

	items, err := db.scanAll(ctx, kvstore.Key(typePrefix))
	if err != nil {
		return nil, err
	}
	names = make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, strings.TrimPrefix(item.Key.String(), typePrefix))
	}
	return names, nil
}
