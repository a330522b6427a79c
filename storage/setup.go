// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"sync"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/bitmark-inc/marketd/fault"
)

// exported storage pools
//
// note all must be exported (i.e. initial capital) or initialisation will panic
type pools struct {
	Assets      *PoolHandle `prefix:"A"`
	Collections *PoolHandle `prefix:"C"`
	Businesses  *PoolHandle `prefix:"B"`
	Auctions    *PoolHandle `prefix:"U"`
	TestData    *PoolHandle `prefix:"Z"`
}

// Pool - the set of exported pools
var Pool pools

// holds the database handle
var poolData struct {
	sync.RWMutex
	database *leveldb.DB
}

// Initialise - open up the database connection
//
// this must be called before any pool is accessed
func Initialise(database string) error {
	poolData.Lock()
	defer poolData.Unlock()

	if nil != poolData.database {
		return fault.ErrAlreadyInitialised
	}

	db, err := leveldb.OpenFile(database, nil)
	if nil != err {
		return err
	}
	poolData.database = db

	Pool.Assets = &PoolHandle{prefix: 'A', database: db}
	Pool.Collections = &PoolHandle{prefix: 'C', database: db}
	Pool.Businesses = &PoolHandle{prefix: 'B', database: db}
	Pool.Auctions = &PoolHandle{prefix: 'U', database: db}
	Pool.TestData = &PoolHandle{prefix: 'Z', database: db}

	return nil
}

// Finalise - close the database connection
func Finalise() {
	poolData.Lock()
	defer poolData.Unlock()

	if nil == poolData.database {
		return
	}

	poolData.database.Close()
	poolData.database = nil
	Pool = pools{}
}
