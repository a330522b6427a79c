// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package asset

import (
	"github.com/bitmark-inc/marketd/account"
	"github.com/bitmark-inc/marketd/fault"
	"github.com/bitmark-inc/marketd/messagebus"
)

// Mint - create a new asset record
//
// always succeeds for any caller; the beneficiary becomes both seller
// and holder, a zero beneficiary defaults to the caller; the new asset
// starts in the unassigned pool
func Mint(caller account.Account, contentRef string, price uint64, category string, beneficiary account.Account) (uint64, error) {
	if err := globalData.guard.Enter(); nil != err {
		return 0, err
	}
	defer globalData.guard.Leave()

	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return 0, fault.ErrNotInitialised
	}

	if beneficiary.IsZero() {
		beneficiary = caller
	}

	assetID := globalData.sequence.Next()
	record := &Record{
		ID:         assetID,
		Price:      price,
		Seller:     beneficiary,
		Holder:     beneficiary,
		Category:   category,
		ContentRef: contentRef,
	}
	globalData.records[assetID] = record
	poolAdd(assetID)
	save(record)
	saveSequence()

	globalData.log.Infof("mint: id: %d  seller: %s", assetID, beneficiary)
	return assetID, nil
}

// Burn - erase an asset record
//
// only the current seller may burn; a listed asset is in marketplace
// custody and must be unlisted first; an asset outside the unassigned
// pool belongs to a collection or business and must be removed from
// its group first; the id is never reused
func Burn(caller account.Account, assetID uint64) error {
	if err := globalData.guard.Enter(); nil != err {
		return err
	}
	defer globalData.guard.Leave()

	globalData.Lock()
	defer globalData.Unlock()

	record, ok := globalData.records[assetID]
	if !ok {
		return fault.ErrAssetNotFound
	}
	if caller != record.Seller {
		return fault.ErrNotOwner
	}
	if record.Listed {
		return fault.ErrAssetAlreadyListed
	}
	if 0 == globalData.poolIndex[assetID] {
		return fault.ErrNotInUnassignedPool
	}

	poolRemove(assetID)
	delete(globalData.records, assetID)
	erase(assetID)

	globalData.log.Infof("burn: id: %d", assetID)
	return nil
}

// AddToUnassignedPool - return an asset to the unassigned pool
//
// caller must be the recorded seller or the marketplace; used by the
// grouping registries and orchestrator when evicting an asset
func AddToUnassignedPool(caller account.Account, assetID uint64) error {
	if err := globalData.guard.Enter(); nil != err {
		return err
	}
	defer globalData.guard.Leave()

	globalData.Lock()
	defer globalData.Unlock()

	record, ok := globalData.records[assetID]
	if !ok {
		return fault.ErrAssetNotFound
	}
	if caller != record.Seller && caller != globalData.marketplace {
		return fault.ErrNotOwner
	}
	if 0 != globalData.poolIndex[assetID] {
		return fault.ErrAlreadyInUnassignedPool
	}

	poolAdd(assetID)
	save(record)
	return nil
}

// RemoveFromUnassignedPool - take an asset out of the unassigned pool
//
// caller must be the recorded seller or the marketplace; used when an
// asset joins a collection or a business
func RemoveFromUnassignedPool(caller account.Account, assetID uint64) error {
	if err := globalData.guard.Enter(); nil != err {
		return err
	}
	defer globalData.guard.Leave()

	globalData.Lock()
	defer globalData.Unlock()

	record, ok := globalData.records[assetID]
	if !ok {
		return fault.ErrAssetNotFound
	}
	if caller != record.Seller && caller != globalData.marketplace {
		return fault.ErrNotOwner
	}
	if 0 == globalData.poolIndex[assetID] {
		return fault.ErrNotInUnassignedPool
	}

	poolRemove(assetID)
	save(record)
	return nil
}

// List - make an asset available for sale or auction
//
// seller only; custody moves to the marketplace and an AssetReceived
// event is emitted for external indexers
func List(caller account.Account, assetID uint64) error {
	if err := globalData.guard.Enter(); nil != err {
		return err
	}
	defer globalData.guard.Leave()

	globalData.Lock()

	record, ok := globalData.records[assetID]
	if !ok {
		globalData.Unlock()
		return fault.ErrAssetNotFound
	}
	if caller != record.Seller {
		globalData.Unlock()
		return fault.ErrNotSeller
	}
	if record.Listed {
		globalData.Unlock()
		return fault.ErrAssetAlreadyListed
	}
	marketplace := globalData.marketplace
	if marketplace.IsZero() {
		globalData.Unlock()
		return fault.ErrMarketplaceNotRegistered
	}

	record.Listed = true
	record.Sold = false
	record.Holder = marketplace
	save(record)
	payload := record.ContentRef
	globalData.Unlock()

	messagebus.Send("asset", messagebus.AssetReceived{
		Operator: marketplace,
		From:     caller,
		AssetID:  assetID,
		Payload:  payload,
	})
	return nil
}

// Unlist - withdraw an asset from sale
//
// seller only; the marketplace custodian must approve the custody
// return before any state changes
func Unlist(caller account.Account, assetID uint64) error {
	if err := globalData.guard.Enter(); nil != err {
		return err
	}
	defer globalData.guard.Leave()

	globalData.Lock()

	record, ok := globalData.records[assetID]
	if !ok {
		globalData.Unlock()
		return fault.ErrAssetNotFound
	}
	if caller != record.Seller {
		globalData.Unlock()
		return fault.ErrNotSeller
	}
	if !record.Listed {
		globalData.Unlock()
		return fault.ErrAssetNotListed
	}
	custodian := globalData.custodian
	globalData.Unlock()

	if nil == custodian {
		return fault.ErrMarketplaceNotRegistered
	}

	// outside the data lock: the custodian reads this registry
	if err := custodian.ReturnToOwner(assetID, caller); nil != err {
		return err
	}

	globalData.Lock()
	defer globalData.Unlock()

	record, ok = globalData.records[assetID]
	if !ok {
		return fault.ErrAssetNotFound
	}
	record.Listed = false
	record.Holder = caller
	save(record)
	return nil
}

// UpdatePrice - change the asking price
func UpdatePrice(caller account.Account, assetID uint64, newPrice uint64) error {
	if err := globalData.guard.Enter(); nil != err {
		return err
	}
	defer globalData.guard.Leave()

	globalData.Lock()
	defer globalData.Unlock()

	record, ok := globalData.records[assetID]
	if !ok {
		return fault.ErrAssetNotFound
	}
	if caller != record.Seller {
		return fault.ErrNotSeller
	}

	record.Price = newPrice
	save(record)
	return nil
}

// SetPrice - marketplace price write used by auction settlement
func SetPrice(caller account.Account, assetID uint64, price uint64) error {
	if err := globalData.guard.Enter(); nil != err {
		return err
	}
	defer globalData.guard.Leave()

	globalData.Lock()
	defer globalData.Unlock()

	record, ok := globalData.records[assetID]
	if !ok {
		return fault.ErrAssetNotFound
	}
	if caller != globalData.marketplace || caller.IsZero() {
		return fault.ErrNotMarketplace
	}

	record.Price = price
	save(record)
	return nil
}

// MarkSold - complete a sale
//
// marketplace only; the buyer becomes the new seller of record, and a
// sold asset is never simultaneously listed
func MarkSold(caller account.Account, assetID uint64, newOwner account.Account) error {
	if err := globalData.guard.Enter(); nil != err {
		return err
	}
	defer globalData.guard.Leave()

	globalData.Lock()
	defer globalData.Unlock()

	record, ok := globalData.records[assetID]
	if !ok {
		return fault.ErrAssetNotFound
	}
	if caller != globalData.marketplace || caller.IsZero() {
		return fault.ErrNotMarketplace
	}

	record.Sold = true
	record.Listed = false
	record.Seller = newOwner
	save(record)
	return nil
}

// MarkUnsold - clear the sold flag, e.g. when relisting
//
// seller or marketplace
func MarkUnsold(caller account.Account, assetID uint64) error {
	if err := globalData.guard.Enter(); nil != err {
		return err
	}
	defer globalData.guard.Leave()

	globalData.Lock()
	defer globalData.Unlock()

	record, ok := globalData.records[assetID]
	if !ok {
		return fault.ErrAssetNotFound
	}
	if caller != record.Seller && caller != globalData.marketplace {
		return fault.ErrNotSeller
	}

	record.Sold = false
	save(record)
	return nil
}

// TransferCustody - marketplace custody move during settlement
func TransferCustody(caller account.Account, assetID uint64, to account.Account) error {
	if err := globalData.guard.Enter(); nil != err {
		return err
	}
	defer globalData.guard.Leave()

	globalData.Lock()
	defer globalData.Unlock()

	record, ok := globalData.records[assetID]
	if !ok {
		return fault.ErrAssetNotFound
	}
	if caller != globalData.marketplace || caller.IsZero() {
		return fault.ErrNotMarketplace
	}

	record.Holder = to
	save(record)
	return nil
}

// Get - a copy of the asset record
func Get(assetID uint64) (Record, error) {
	globalData.RLock()
	defer globalData.RUnlock()

	record, ok := globalData.records[assetID]
	if !ok {
		return Record{}, fault.ErrAssetNotFound
	}
	return *record, nil
}

// CurrentHolder - the identity entitled to transfer the asset
func CurrentHolder(assetID uint64) (account.Account, error) {
	globalData.RLock()
	defer globalData.RUnlock()

	record, ok := globalData.records[assetID]
	if !ok {
		return account.Account{}, fault.ErrAssetNotFound
	}
	return record.Holder, nil
}

// InPool - membership of the unassigned pool
func InPool(assetID uint64) bool {
	globalData.RLock()
	defer globalData.RUnlock()
	return 0 != globalData.poolIndex[assetID]
}

// IsUnassignedAndListed - eligible to join a collection or business
func IsUnassignedAndListed(assetID uint64) bool {
	globalData.RLock()
	defer globalData.RUnlock()

	if 0 == globalData.poolIndex[assetID] {
		return false
	}
	record, ok := globalData.records[assetID]
	return ok && record.Listed
}

// UnassignedListedIDs - freshly built sequence of pool assets that are listed
//
// O(n) scan; not restartable
func UnassignedListedIDs() []uint64 {
	globalData.RLock()
	defer globalData.RUnlock()

	ids := []uint64{}
	for _, assetID := range globalData.pool {
		if record, ok := globalData.records[assetID]; ok && record.Listed {
			ids = append(ids, assetID)
		}
	}
	return ids
}

// PoolSize - number of unassigned assets
func PoolSize() int {
	globalData.RLock()
	defer globalData.RUnlock()
	return len(globalData.pool)
}

// Count - number of live asset records
func Count() int {
	globalData.RLock()
	defer globalData.RUnlock()
	return len(globalData.records)
}

// append to the dense pool sequence; lock must be held
func poolAdd(assetID uint64) {
	globalData.pool = append(globalData.pool, assetID)
	globalData.poolIndex[assetID] = len(globalData.pool) // position+1
}

// swap with last and pop; lock must be held
func poolRemove(assetID uint64) bool {
	position := globalData.poolIndex[assetID]
	if 0 == position {
		return false
	}

	last := len(globalData.pool) - 1
	moved := globalData.pool[last]
	globalData.pool[position-1] = moved
	globalData.pool = globalData.pool[:last]
	delete(globalData.poolIndex, assetID)
	if moved != assetID {
		globalData.poolIndex[moved] = position
	}
	return true
}
