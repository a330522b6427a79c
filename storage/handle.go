// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"

	"github.com/syndtr/goleveldb/leveldb"
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/bitmark-inc/logger"
)

// Handle - the interface registries persist through
//
// a nil Handle disables persistence
type Handle interface {
	Put(key []byte, value []byte)
	Get(key []byte) []byte
	Has(key []byte) bool
	Delete(key []byte)
	NewFetchCursor() *FetchCursor
}

// PoolHandle - one prefix of the database
type PoolHandle struct {
	prefix   byte
	database *leveldb.DB
}

// Element - a binary key/value pair from a fetch
type Element struct {
	Key   []byte
	Value []byte
}

// Key - make a pool key from an entity id
func Key(id uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, id)
	return key
}

// KeyID - recover the entity id from a pool key
func KeyID(key []byte) uint64 {
	return binary.BigEndian.Uint64(key)
}

// prepend the prefix onto the key
func (p *PoolHandle) prefixKey(key []byte) []byte {
	prefixedKey := make([]byte, 1, len(key)+1)
	prefixedKey[0] = p.prefix
	return append(prefixedKey, key...)
}

// Put - store a key/value bytes pair to the database
func (p *PoolHandle) Put(key []byte, value []byte) {
	poolData.RLock()
	defer poolData.RUnlock()
	if nil == p.database {
		logger.Panic("pool.Put nil database")
		return
	}
	err := p.database.Put(p.prefixKey(key), value, nil)
	logger.PanicIfError("pool.Put", err)
}

// Get - read a value for a given key
//
// this returns the actual element - copy the result if it must be preserved
func (p *PoolHandle) Get(key []byte) []byte {
	poolData.RLock()
	defer poolData.RUnlock()
	if nil == p.database {
		return nil
	}
	value, err := p.database.Get(p.prefixKey(key), nil)
	if leveldb.ErrNotFound == err {
		return nil
	}
	logger.PanicIfError("pool.Get", err)
	return value
}

// Has - check if a key exists
func (p *PoolHandle) Has(key []byte) bool {
	poolData.RLock()
	defer poolData.RUnlock()
	if nil == p.database {
		return false
	}
	value, err := p.database.Has(p.prefixKey(key), nil)
	logger.PanicIfError("pool.Has", err)
	return value
}

// Delete - remove a key from the database
func (p *PoolHandle) Delete(key []byte) {
	poolData.RLock()
	defer poolData.RUnlock()
	if nil == p.database {
		logger.Panic("pool.Delete nil database")
		return
	}
	err := p.database.Delete(p.prefixKey(key), nil)
	logger.PanicIfError("pool.Delete", err)
}

// FetchCursor - to iterate a whole pool
type FetchCursor struct {
	pool *PoolHandle
}

// NewFetchCursor - create a cursor over the pool's prefix
func (p *PoolHandle) NewFetchCursor() *FetchCursor {
	return &FetchCursor{pool: p}
}

// Fetch - return all elements of the pool in key order
//
// keys and values are copies, safe to retain
func (cursor *FetchCursor) Fetch() ([]Element, error) {
	poolData.RLock()
	defer poolData.RUnlock()

	p := cursor.pool
	if nil == p.database {
		return nil, nil
	}

	iterator := p.database.NewIterator(ldb_util.BytesPrefix([]byte{p.prefix}), nil)
	defer iterator.Release()

	elements := []Element{}
	for iterator.Next() {
		key := make([]byte, len(iterator.Key())-1)
		copy(key, iterator.Key()[1:]) // strip the prefix
		value := make([]byte, len(iterator.Value()))
		copy(value, iterator.Value())
		elements = append(elements, Element{Key: key, Value: value})
	}
	return elements, iterator.Error()
}
