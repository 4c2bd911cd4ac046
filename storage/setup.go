// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"
	"fmt"
	"reflect"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"
	ldb_storage "github.com/syndtr/goleveldb/leveldb/storage"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/permchain/fault"
)

// Pools - the set of exported pools
//
// note all must be exported (i.e. initial capital) or initialisation will panic
type Pools struct {
	Permissions    *PoolHandle `prefix:"P" database:"permissions"`
	Approvals      *PoolHandle `prefix:"V" database:"permissions"`
	Entities       *PoolHandle `prefix:"E" database:"entities"`
	EntityNames    *PoolHandle `prefix:"N" database:"entities"`
	EntityShortIds *PoolHandle `prefix:"S" database:"entities"`
	EntityRefs     *PoolHandle `prefix:"R" database:"entities"`
	AssetTotals    *PoolHandle `prefix:"Q" database:"entities"`
	FollowOns      *PoolHandle `prefix:"F" database:"entities"`
	TestData       *PoolHandle `prefix:"Z" database:"entities"`
}

// Database - an open pair of permission and entity databases
type Database struct {
	sync.Mutex
	Pool Pools

	permissions       *leveldb.DB
	entities          *leveldb.DB
	permissionsAccess Access
	entitiesAccess    Access
}

// for database version
var versionKey = []byte{0x00, 'V', 'E', 'R', 'S', 'I', 'O', 'N'}

const (
	currentPermissionsDBVersion = 0x100
	currentEntitiesDBVersion    = 0x100
)

// pool access modes
const (
	ReadOnly  = true
	ReadWrite = false
)

// Open - open up the database files name-permissions.leveldb and
// name-entities.leveldb
func Open(name string, readOnly bool) (*Database, error) {
	permissions, err := openFile(name+"-permissions.leveldb", readOnly, currentPermissionsDBVersion)
	if nil != err {
		return nil, err
	}
	entities, err := openFile(name+"-entities.leveldb", readOnly, currentEntitiesDBVersion)
	if nil != err {
		permissions.Close()
		return nil, err
	}
	return newDatabase(permissions, entities)
}

// OpenMemory - databases held entirely in memory
func OpenMemory() (*Database, error) {
	permissions, err := leveldb.Open(ldb_storage.NewMemStorage(), nil)
	if nil != err {
		return nil, err
	}
	entities, err := leveldb.Open(ldb_storage.NewMemStorage(), nil)
	if nil != err {
		permissions.Close()
		return nil, err
	}
	return newDatabase(permissions, entities)
}

func newDatabase(permissions *leveldb.DB, entities *leveldb.DB) (*Database, error) {
	d := &Database{
		permissions:       permissions,
		entities:          entities,
		permissionsAccess: newDA(permissions, new(leveldb.Batch), newCache()),
		entitiesAccess:    newDA(entities, new(leveldb.Batch), newCache()),
	}

	// this will be a struct type
	poolType := reflect.TypeOf(d.Pool)

	// get write access by using pointer + Elem()
	poolValue := reflect.ValueOf(&d.Pool).Elem()

	// scan each field
	for i := 0; i < poolType.NumField(); i += 1 {

		fieldInfo := poolType.Field(i)

		prefixTag := fieldInfo.Tag.Get("prefix")
		if 1 != len(prefixTag) {
			d.Close()
			return nil, fmt.Errorf("pool: %v has invalid prefix: %q", fieldInfo, prefixTag)
		}

		prefix := prefixTag[0]
		limit := []byte(nil)
		if prefix < 255 {
			limit = []byte{prefix + 1}
		}

		var dataAccess Access
		switch dbName := fieldInfo.Tag.Get("database"); dbName {
		case "permissions":
			dataAccess = d.permissionsAccess
		case "entities":
			dataAccess = d.entitiesAccess
		default:
			d.Close()
			return nil, fmt.Errorf("pool: %v  has invalid database: %q", fieldInfo, dbName)
		}

		p := &PoolHandle{
			prefix:     prefix,
			limit:      limit,
			dataAccess: dataAccess,
		}
		poolValue.Field(i).Set(reflect.ValueOf(p))
	}

	return d, nil
}

// PermissionsAccess - checkpoint control of the permissions database
func (d *Database) PermissionsAccess() Access {
	return d.permissionsAccess
}

// EntitiesAccess - checkpoint control of the entities database
func (d *Database) EntitiesAccess() Access {
	return d.entitiesAccess
}

// Close - close both databases
func (d *Database) Close() {
	d.Lock()
	defer d.Unlock()

	if nil != d.entities {
		d.entities.Close()
		d.entities = nil
	}
	if nil != d.permissions {
		d.permissions.Close()
		d.permissions = nil
	}
}

// open a database file and check that its version is usable
func openFile(name string, readOnly bool, current int) (*leveldb.DB, error) {
	db, version, err := getDB(name, readOnly)
	if nil != err {
		return nil, err
	}

	// ensure no database downgrade
	if version > current {
		db.Close()
		logger.Criticalf("database: %s  version: %d > current version: %d", name, version, current)
		return nil, fault.ErrInvalidDatabaseVersion
	}

	if 0 == version {
		if readOnly {
			db.Close()
			return nil, fault.ErrDatabaseNotInitialised
		}
		// database was empty so tag as current version
		err = putVersion(db, current)
		if nil != err {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}

// return:
//
//	database handle
//	version number
func getDB(name string, readOnly bool) (*leveldb.DB, int, error) {
	opt := &ldb_opt.Options{
		ErrorIfExist:   false,
		ErrorIfMissing: readOnly,
		ReadOnly:       readOnly,
	}

	db, err := leveldb.OpenFile(name, opt)
	if nil != err {
		return nil, 0, err
	}

	versionValue, err := db.Get(versionKey, nil)
	if leveldb.ErrNotFound == err {
		return db, 0, nil
	} else if nil != err {
		db.Close()
		return nil, 0, err
	}

	if 4 != len(versionValue) {
		db.Close()
		return nil, 0, fmt.Errorf("incompatible database version length: expected: %d  actual: %d", 4, len(versionValue))
	}

	version := int(binary.BigEndian.Uint32(versionValue))
	return db, version, nil
}

func putVersion(db *leveldb.DB, version int) error {
	currentVersion := make([]byte, 4)
	binary.BigEndian.PutUint32(currentVersion, uint32(version))

	return db.Put(versionKey, currentVersion, nil)
}
