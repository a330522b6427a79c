// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package asset

import (
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/marketd/account"
	"github.com/bitmark-inc/marketd/counter"
	"github.com/bitmark-inc/marketd/fault"
	"github.com/bitmark-inc/marketd/guard"
	"github.com/bitmark-inc/marketd/storage"
)

// Custodian - the marketplace side of the unlist handshake
//
// implemented by the orchestrator; must refuse the return unless the
// claimed seller really is the recorded seller and the marketplace
// currently holds custody
type Custodian interface {
	ReturnToOwner(assetID uint64, claimedSeller account.Account) error
}

// Record - one asset
type Record struct {
	ID         uint64
	Price      uint64
	Seller     account.Account
	Holder     account.Account
	Sold       bool
	Listed     bool
	Category   string
	ContentRef string
}

// globals
var globalData struct {
	sync.RWMutex
	log           *logger.L
	guard         guard.Guard
	administrator account.Account
	marketplace   account.Account
	custodian     Custodian
	records       map[uint64]*Record
	pool          []uint64
	poolIndex     map[uint64]int // position+1, 0 = absent
	sequence      counter.Sequence
	handle        storage.Handle
	initialised   bool
}

// Initialise - start the asset registry
//
// a nil handle disables persistence; with a handle all stored records
// are restored and the id sequence is caught up past them
func Initialise(administrator account.Account, handle storage.Handle) error {
	globalData.Lock()
	defer globalData.Unlock()

	if globalData.initialised {
		return fault.ErrAlreadyInitialised
	}

	globalData.log = logger.New("asset")
	globalData.log.Info("starting…")

	globalData.administrator = administrator
	globalData.records = make(map[uint64]*Record)
	globalData.pool = []uint64{}
	globalData.poolIndex = make(map[uint64]int)
	globalData.handle = handle

	if err := restore(); nil != err {
		return err
	}

	globalData.initialised = true
	return nil
}

// Finalise - shut down the asset registry
func Finalise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.ErrNotInitialised
	}

	globalData.log.Info("shutting down…")
	globalData.records = nil
	globalData.pool = nil
	globalData.poolIndex = nil
	globalData.marketplace = account.Account{}
	globalData.custodian = nil
	globalData.handle = nil
	globalData.sequence = 0
	globalData.initialised = false
	return nil
}

// RegisterMarketplace - record the orchestrator identity, once
//
// first registration must come from the administrator; afterwards only
// the administrator or the current marketplace may re-register
func RegisterMarketplace(caller account.Account, marketplace account.Account, custodian Custodian) error {
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
	globalData.custodian = custodian
	return nil
}

// Marketplace - the registered orchestrator identity
func Marketplace() account.Account {
	globalData.RLock()
	defer globalData.RUnlock()
	return globalData.marketplace
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
