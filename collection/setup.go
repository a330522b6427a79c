// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package collection

import (
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/marketd/account"
	"github.com/bitmark-inc/marketd/counter"
	"github.com/bitmark-inc/marketd/fault"
	"github.com/bitmark-inc/marketd/guard"
	"github.com/bitmark-inc/marketd/storage"
)

// Record - one collection
type Record struct {
	ID          uint64
	Name        string
	CoverRef    string
	Description string
	OwnerName   string
	Owner       account.Account
	Listed      bool
	Category    string
	AssetIDs    []uint64
}

// globals
var globalData struct {
	sync.RWMutex
	log               *logger.L
	guard             guard.Guard
	administrator     account.Account
	marketplace       account.Account
	records           map[uint64]*Record
	live              []uint64
	liveIndex         map[uint64]int // position+1, 0 = absent
	assetToCollection map[uint64]uint64
	sequence          counter.Sequence
	handle            storage.Handle
	initialised       bool
}

// Initialise - start the collection registry
func Initialise(administrator account.Account, handle storage.Handle) error {
	globalData.Lock()
	defer globalData.Unlock()

	if globalData.initialised {
		return fault.ErrAlreadyInitialised
	}

	globalData.log = logger.New("collection")
	globalData.log.Info("starting…")

	globalData.administrator = administrator
	globalData.records = make(map[uint64]*Record)
	globalData.live = []uint64{}
	globalData.liveIndex = make(map[uint64]int)
	globalData.assetToCollection = make(map[uint64]uint64)
	globalData.handle = handle

	if err := restore(); nil != err {
		return err
	}

	globalData.initialised = true
	return nil
}

// Finalise - shut down the collection registry
func Finalise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.ErrNotInitialised
	}

	globalData.log.Info("shutting down…")
	globalData.records = nil
	globalData.live = nil
	globalData.liveIndex = nil
	globalData.assetToCollection = nil
	globalData.marketplace = account.Account{}
	globalData.handle = nil
	globalData.sequence = 0
	globalData.initialised = false
	return nil
}

// RegisterMarketplace - record the orchestrator identity, once
func RegisterMarketplace(caller account.Account, marketplace account.Account) error {
	if err := globalData.guard.Enter(); nil != err {
		return err
	}
	defer globalData.guard.Leave()

	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.ErrNotInitialised
	}

	if globalData.marketplace.IsZero() {
		if caller != globalData.administrator {
			return fault.ErrNotAdministrator
		}
	} else if caller != globalData.administrator && caller != globalData.marketplace {
		return fault.ErrMarketplaceAlreadySet
	}

	globalData.marketplace = marketplace
	return nil
}

// BeginSettlement - hold the registry scope while a payout runs
// foreign payee hooks
//
// marketplace only; every mutator fails with ErrReentrantCall until
// EndSettlement releases the scope
func BeginSettlement(caller account.Account) error {
	globalData.RLock()
	initialised := globalData.initialised
	marketplace := globalData.marketplace
	globalData.RUnlock()

	if !initialised {
		return fault.ErrNotInitialised
	}
	if caller.IsZero() || caller != marketplace {
		return fault.ErrNotMarketplace
	}
	return globalData.guard.Enter()
}

// EndSettlement - release the scope taken by BeginSettlement
func EndSettlement() {
	globalData.guard.Leave()
}
