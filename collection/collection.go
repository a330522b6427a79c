// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package collection

import (
	"github.com/bitmark-inc/marketd/account"
	"github.com/bitmark-inc/marketd/asset"
	"github.com/bitmark-inc/marketd/fault"
)

// Create - register a new collection
//
// initial assets must each be unassigned, listed single assets owned
// by the new collection owner; any failure unwinds the whole create
func Create(name string, coverRef string, description string, ownerName string, initialAssetIDs []uint64, category string, owner account.Account) (uint64, error) {
	if err := globalData.guard.Enter(); nil != err {
		return 0, err
	}
	defer globalData.guard.Leave()

	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return 0, fault.ErrNotInitialised
	}

	collectionID := globalData.sequence.Next()
	record := &Record{
		ID:          collectionID,
		Name:        name,
		CoverRef:    coverRef,
		Description: description,
		OwnerName:   ownerName,
		Owner:       owner,
		Category:    category,
		AssetIDs:    []uint64{},
	}
	globalData.records[collectionID] = record
	globalData.live = append(globalData.live, collectionID)
	globalData.liveIndex[collectionID] = len(globalData.live)

	for i, assetID := range initialAssetIDs {
		err := addAsset(record, assetID, owner)
		if nil != err {
			// unwind: earlier seed assets back to the pool, then the record
			for j := i - 1; j >= 0; j -= 1 {
				_ = removeAsset(record, initialAssetIDs[j], owner)
			}
			removeLive(collectionID)
			delete(globalData.records, collectionID)
			return 0, err
		}
	}

	save(record)
	saveSequence()
	globalData.log.Infof("create: id: %d  owner: %s  assets: %d", collectionID, owner, len(record.AssetIDs))
	return collectionID, nil
}

// Delete - remove an empty collection
//
// owner or marketplace; deleting a non-empty collection is forbidden
func Delete(caller account.Account, collectionID uint64) error {
	if err := globalData.guard.Enter(); nil != err {
		return err
	}
	defer globalData.guard.Leave()

	globalData.Lock()
	defer globalData.Unlock()

	record, ok := globalData.records[collectionID]
	if !ok {
		return fault.ErrCollectionNotFound
	}
	if caller != record.Owner && caller != globalData.marketplace {
		return fault.ErrNotCollectionOwner
	}
	if 0 != len(record.AssetIDs) {
		return fault.ErrCollectionNotEmpty
	}

	removeLive(collectionID)
	delete(globalData.records, collectionID)
	erase(collectionID)
	return nil
}

// List - mark the collection as listed
func List(caller account.Account, collectionID uint64) error {
	return setListed(caller, collectionID, true)
}

// Unlist - mark the collection as not listed
func Unlist(caller account.Account, collectionID uint64) error {
	return setListed(caller, collectionID, false)
}

func setListed(caller account.Account, collectionID uint64, listed bool) error {
	if err := globalData.guard.Enter(); nil != err {
		return err
	}
	defer globalData.guard.Leave()

	globalData.Lock()
	defer globalData.Unlock()

	record, ok := globalData.records[collectionID]
	if !ok {
		return fault.ErrCollectionNotFound
	}
	if caller != record.Owner {
		return fault.ErrNotCollectionOwner
	}

	record.Listed = listed
	save(record)
	return nil
}

// AddAsset - move an unassigned listed asset into the collection
//
// collection owner only
func AddAsset(caller account.Account, collectionID uint64, assetID uint64) error {
	if err := globalData.guard.Enter(); nil != err {
		return err
	}
	defer globalData.guard.Leave()

	globalData.Lock()
	defer globalData.Unlock()

	record, ok := globalData.records[collectionID]
	if !ok {
		return fault.ErrCollectionNotFound
	}
	if caller != record.Owner {
		return fault.ErrNotCollectionOwner
	}

	err := addAsset(record, assetID, caller)
	if nil != err {
		return err
	}
	save(record)
	return nil
}

// AddMultipleAssets - apply AddAsset per element in input order
//
// the whole call is atomic: the first failure unwinds every element
// already added
func AddMultipleAssets(caller account.Account, collectionID uint64, assetIDs []uint64) error {
	if err := globalData.guard.Enter(); nil != err {
		return err
	}
	defer globalData.guard.Leave()

	globalData.Lock()
	defer globalData.Unlock()

	record, ok := globalData.records[collectionID]
	if !ok {
		return fault.ErrCollectionNotFound
	}
	if caller != record.Owner {
		return fault.ErrNotCollectionOwner
	}

	for i, assetID := range assetIDs {
		err := addAsset(record, assetID, caller)
		if nil != err {
			for j := i - 1; j >= 0; j -= 1 {
				_ = removeAsset(record, assetIDs[j], caller)
			}
			return err
		}
	}
	save(record)
	return nil
}

// RemoveAsset - move an asset back to the unassigned pool
//
// collection owner, marketplace, or the asset's current seller
func RemoveAsset(caller account.Account, collectionID uint64, assetID uint64) error {
	if err := globalData.guard.Enter(); nil != err {
		return err
	}
	defer globalData.guard.Leave()

	globalData.Lock()
	defer globalData.Unlock()

	record, ok := globalData.records[collectionID]
	if !ok {
		return fault.ErrCollectionNotFound
	}

	if caller != record.Owner && caller != globalData.marketplace {
		assetRecord, err := asset.Get(assetID)
		if nil != err || caller != assetRecord.Seller {
			return fault.ErrNotCollectionOwner
		}
	}

	// re-adding credits the marketplace
	credit := globalData.marketplace
	if credit.IsZero() {
		credit = caller
	}

	err := removeAsset(record, assetID, credit)
	if nil != err {
		return err
	}
	save(record)
	return nil
}

// Get - a copy of the collection record
func Get(collectionID uint64) (Record, error) {
	globalData.RLock()
	defer globalData.RUnlock()

	record, ok := globalData.records[collectionID]
	if !ok {
		return Record{}, fault.ErrCollectionNotFound
	}
	copied := *record
	copied.AssetIDs = append([]uint64{}, record.AssetIDs...)
	return copied, nil
}

// Owner - the collection owner identity
func Owner(collectionID uint64) (account.Account, error) {
	globalData.RLock()
	defer globalData.RUnlock()

	record, ok := globalData.records[collectionID]
	if !ok {
		return account.Account{}, fault.ErrCollectionNotFound
	}
	return record.Owner, nil
}

// AssetCollection - the collection an asset belongs to, if any
func AssetCollection(assetID uint64) (uint64, bool) {
	globalData.RLock()
	defer globalData.RUnlock()

	collectionID, ok := globalData.assetToCollection[assetID]
	return collectionID, ok
}

// Count - number of live collections
func Count() int {
	globalData.RLock()
	defer globalData.RUnlock()
	return len(globalData.records)
}

// LiveIDs - freshly built sequence of collection ids
func LiveIDs() []uint64 {
	globalData.RLock()
	defer globalData.RUnlock()
	return append([]uint64{}, globalData.live...)
}

// membership append; collection lock must be held
func addAsset(record *Record, assetID uint64, caller account.Account) error {
	if _, ok := globalData.assetToCollection[assetID]; ok {
		return fault.ErrAlreadyInCollection
	}
	if !asset.IsUnassignedAndListed(assetID) {
		return fault.ErrAssetNotListed
	}

	err := asset.RemoveFromUnassignedPool(caller, assetID)
	if nil != err {
		return err
	}

	record.AssetIDs = append(record.AssetIDs, assetID)
	globalData.assetToCollection[assetID] = record.ID
	return nil
}

// membership swap-remove after linear scan; collection lock must be held
func removeAsset(record *Record, assetID uint64, credit account.Account) error {
	found := -1
	for i, member := range record.AssetIDs {
		if member == assetID {
			found = i
			break
		}
	}
	if found < 0 {
		return fault.ErrNotInCollection
	}

	err := asset.AddToUnassignedPool(credit, assetID)
	if nil != err {
		return err
	}

	last := len(record.AssetIDs) - 1
	record.AssetIDs[found] = record.AssetIDs[last]
	record.AssetIDs = record.AssetIDs[:last]
	delete(globalData.assetToCollection, assetID)
	return nil
}

// swap-remove from the dense live sequence; lock must be held
func removeLive(collectionID uint64) {
	position := globalData.liveIndex[collectionID]
	if 0 == position {
		return
	}
	last := len(globalData.live) - 1
	moved := globalData.live[last]
	globalData.live[position-1] = moved
	globalData.live = globalData.live[:last]
	delete(globalData.liveIndex, collectionID)
	if moved != collectionID {
		globalData.liveIndex[moved] = position
	}
}
