// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package business

import (
	"github.com/bitmark-inc/marketd/account"
	"github.com/bitmark-inc/marketd/asset"
	"github.com/bitmark-inc/marketd/collection"
	"github.com/bitmark-inc/marketd/fault"
	"github.com/bitmark-inc/marketd/fees"
	"github.com/bitmark-inc/marketd/messagebus"
)

// AddBusiness - register a new business
//
// marketplace administrator only; the employee seed list is applied
// through the normal employment rules, so a duplicate or already
// employed identity aborts the whole call
func AddBusiness(caller account.Account, name string, logoRef string, feePercent fees.Percent, admin account.Account, employees []account.Account) (uint64, error) {
	if err := globalData.guard.Enter(); nil != err {
		return 0, err
	}
	defer globalData.guard.Leave()

	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return 0, fault.ErrNotInitialised
	}
	if caller != globalData.administrator {
		return 0, fault.ErrNotAdministrator
	}
	if err := feePercent.Validate(); nil != err {
		return 0, err
	}

	businessID := globalData.sequence.Next()
	record := &Record{
		ID:            businessID,
		Name:          name,
		LogoRef:       logoRef,
		Fee:           feePercent,
		Admin:         admin,
		CollectionIDs: []uint64{},
		AssetIDs:      []uint64{},
		Employees:     []account.Account{},
	}

	for _, employee := range employees {
		if err := hireEmployee(record, employee); nil != err {
			// unwind the seed hires
			for i := len(record.Employees) - 1; i >= 0; i -= 1 {
				delete(globalData.employeeToBusiness, record.Employees[i])
			}
			return 0, err
		}
	}

	globalData.records[businessID] = record
	globalData.live = append(globalData.live, businessID)
	globalData.liveIndex[businessID] = len(globalData.live)
	save(record)
	saveSequence()

	globalData.log.Infof("add business: id: %d  admin: %s", businessID, admin)
	messagebus.Send("business", messagebus.BusinessCreated{BusinessID: businessID, Admin: admin})
	for _, employee := range record.Employees {
		messagebus.Send("business", messagebus.EmployeeAdded{BusinessID: businessID, Employee: employee})
	}
	return businessID, nil
}

// RemoveBusiness - remove a business and evict everything it groups
//
// marketplace administrator only; employees leave in reverse hire
// order, member assets return to the unassigned pool, and no reverse
// index entry may survive the removal
func RemoveBusiness(caller account.Account, businessID uint64) error {
	if err := globalData.guard.Enter(); nil != err {
		return err
	}
	defer globalData.guard.Leave()

	globalData.Lock()
	defer globalData.Unlock()

	record, ok := globalData.records[businessID]
	if !ok {
		return fault.ErrBusinessNotFound
	}
	if caller != globalData.administrator {
		return fault.ErrNotAdministrator
	}

	for i := len(record.Employees) - 1; i >= 0; i -= 1 {
		employee := record.Employees[i]
		delete(globalData.employeeToBusiness, employee)
		messagebus.Send("business", messagebus.EmployeeRemoved{BusinessID: businessID, Employee: employee})
	}

	for _, collectionID := range record.CollectionIDs {
		delete(globalData.collectionToBusiness, collectionID)
	}

	credit := globalData.marketplace
	for _, assetID := range record.AssetIDs {
		delete(globalData.assetToBusiness, assetID)
		if err := asset.AddToUnassignedPool(credit, assetID); nil != err {
			globalData.log.Warnf("remove business: %d  asset: %d not returned to pool: %s", businessID, assetID, err)
		}
	}

	removeLive(businessID)
	delete(globalData.records, businessID)
	erase(businessID)

	messagebus.Send("business", messagebus.BusinessRemoved{BusinessID: businessID})
	return nil
}

// AddCollectionToBusiness - group an existing collection
//
// business admin only; the collection must currently be owned by the
// admin or one of the employees
func AddCollectionToBusiness(caller account.Account, businessID uint64, collectionID uint64) error {
	if err := globalData.guard.Enter(); nil != err {
		return err
	}
	defer globalData.guard.Leave()

	globalData.Lock()
	defer globalData.Unlock()

	record, ok := globalData.records[businessID]
	if !ok {
		return fault.ErrBusinessNotFound
	}
	if caller != record.Admin {
		return fault.ErrNotBusinessAdmin
	}
	if _, taken := globalData.collectionToBusiness[collectionID]; taken {
		return fault.ErrAlreadyInBusiness
	}

	owned, err := ownedByAdminOrEmployee(record, collectionID, false)
	if nil != err {
		return err
	}
	if !owned {
		return fault.ErrOwnershipMismatch
	}

	record.CollectionIDs = append(record.CollectionIDs, collectionID)
	globalData.collectionToBusiness[collectionID] = businessID
	save(record)

	messagebus.Send("business", messagebus.CollectionAddedToBusiness{BusinessID: businessID, CollectionID: collectionID})
	return nil
}

// AddAssetToBusiness - group a single unassigned asset
//
// business admin, or the employee who currently owns the asset
func AddAssetToBusiness(caller account.Account, businessID uint64, assetID uint64) error {
	if err := globalData.guard.Enter(); nil != err {
		return err
	}
	defer globalData.guard.Leave()

	globalData.Lock()
	defer globalData.Unlock()

	record, ok := globalData.records[businessID]
	if !ok {
		return fault.ErrBusinessNotFound
	}

	assetRecord, err := asset.Get(assetID)
	if nil != err {
		return err
	}

	if caller != record.Admin {
		if globalData.employeeToBusiness[caller] != businessID || caller != assetRecord.Seller {
			return fault.ErrNotBusinessAdmin
		}
	}

	if _, taken := globalData.assetToBusiness[assetID]; taken {
		return fault.ErrAlreadyInBusiness
	}
	if _, inCollection := collection.AssetCollection(assetID); inCollection {
		return fault.ErrAlreadyInCollection
	}

	owned, err := ownedByAdminOrEmployee(record, assetID, true)
	if nil != err {
		return err
	}
	if !owned {
		return fault.ErrOwnershipMismatch
	}

	err = asset.RemoveFromUnassignedPool(assetRecord.Seller, assetID)
	if nil != err {
		return err
	}

	record.AssetIDs = append(record.AssetIDs, assetID)
	globalData.assetToBusiness[assetID] = businessID
	save(record)

	messagebus.Send("business", messagebus.AssetAddedToBusiness{BusinessID: businessID, AssetID: assetID})
	return nil
}

// CreateCollectionInBusiness - create a collection then group it
//
// business admin or employee; the caller becomes collection owner so
// the ownership requirement holds by construction
func CreateCollectionInBusiness(caller account.Account, businessID uint64, name string, coverRef string, description string, ownerName string, category string) (uint64, error) {
	globalData.RLock()
	record, ok := globalData.records[businessID]
	if !ok {
		globalData.RUnlock()
		return 0, fault.ErrBusinessNotFound
	}
	admin := record.Admin
	isMember := caller == admin || globalData.employeeToBusiness[caller] == businessID
	globalData.RUnlock()

	if !isMember {
		return 0, fault.ErrNotBusinessAdmin
	}

	collectionID, err := collection.Create(name, coverRef, description, ownerName, nil, category, caller)
	if nil != err {
		return 0, err
	}

	err = AddCollectionToBusiness(admin, businessID, collectionID)
	if nil != err {
		_ = collection.Delete(caller, collectionID)
		return 0, err
	}
	return collectionID, nil
}

// CreateAssetInBusiness - mint an asset then group it
//
// business admin or employee; the caller becomes the seller
func CreateAssetInBusiness(caller account.Account, businessID uint64, contentRef string, price uint64, category string) (uint64, error) {
	globalData.RLock()
	record, ok := globalData.records[businessID]
	if !ok {
		globalData.RUnlock()
		return 0, fault.ErrBusinessNotFound
	}
	admin := record.Admin
	isMember := caller == admin || globalData.employeeToBusiness[caller] == businessID
	globalData.RUnlock()

	if !isMember {
		return 0, fault.ErrNotBusinessAdmin
	}

	assetID, err := asset.Mint(caller, contentRef, price, category, caller)
	if nil != err {
		return 0, err
	}

	err = AddAssetToBusiness(admin, businessID, assetID)
	if nil != err {
		_ = asset.Burn(caller, assetID)
		return 0, err
	}
	return assetID, nil
}

// RemoveCollectionFromBusiness - detach a collection
//
// business admin, marketplace, or the collection's current owner;
// the three-way authorization exists so the orchestrator can evict
// sold items during settlement
func RemoveCollectionFromBusiness(caller account.Account, businessID uint64, collectionID uint64) error {
	if err := globalData.guard.Enter(); nil != err {
		return err
	}
	defer globalData.guard.Leave()

	globalData.Lock()
	defer globalData.Unlock()

	record, ok := globalData.records[businessID]
	if !ok {
		return fault.ErrBusinessNotFound
	}

	if caller != record.Admin && caller != globalData.marketplace {
		owner, err := collection.Owner(collectionID)
		if nil != err || caller != owner {
			return fault.ErrNotBusinessAdmin
		}
	}

	found := -1
	for i, member := range record.CollectionIDs {
		if member == collectionID {
			found = i
			break
		}
	}
	if found < 0 {
		return fault.ErrNotInBusiness
	}

	last := len(record.CollectionIDs) - 1
	record.CollectionIDs[found] = record.CollectionIDs[last]
	record.CollectionIDs = record.CollectionIDs[:last]
	delete(globalData.collectionToBusiness, collectionID)
	save(record)

	messagebus.Send("business", messagebus.CollectionRemovedFromBusiness{BusinessID: businessID, CollectionID: collectionID})
	return nil
}

// RemoveAssetFromBusiness - detach a single asset
//
// business admin, marketplace, or the asset's current seller; the
// asset returns to the unassigned pool credited to the marketplace
func RemoveAssetFromBusiness(caller account.Account, businessID uint64, assetID uint64) error {
	if err := globalData.guard.Enter(); nil != err {
		return err
	}
	defer globalData.guard.Leave()

	globalData.Lock()
	defer globalData.Unlock()

	record, ok := globalData.records[businessID]
	if !ok {
		return fault.ErrBusinessNotFound
	}

	assetRecord, err := asset.Get(assetID)
	if nil != err {
		return err
	}

	if caller != record.Admin && caller != globalData.marketplace && caller != assetRecord.Seller {
		return fault.ErrNotBusinessAdmin
	}

	found := -1
	for i, member := range record.AssetIDs {
		if member == assetID {
			found = i
			break
		}
	}
	if found < 0 {
		return fault.ErrNotInBusiness
	}

	credit := globalData.marketplace
	if credit.IsZero() {
		credit = assetRecord.Seller
	}
	err = asset.AddToUnassignedPool(credit, assetID)
	if nil != err {
		return err
	}

	last := len(record.AssetIDs) - 1
	record.AssetIDs[found] = record.AssetIDs[last]
	record.AssetIDs = record.AssetIDs[:last]
	delete(globalData.assetToBusiness, assetID)
	save(record)

	messagebus.Send("business", messagebus.AssetRemovedFromBusiness{BusinessID: businessID, AssetID: assetID})
	return nil
}

// UpdateFeePercent - change the business fee rate
//
// business admin only
func UpdateFeePercent(caller account.Account, businessID uint64, feePercent fees.Percent) error {
	if err := globalData.guard.Enter(); nil != err {
		return err
	}
	defer globalData.guard.Leave()

	globalData.Lock()
	defer globalData.Unlock()

	record, ok := globalData.records[businessID]
	if !ok {
		return fault.ErrBusinessNotFound
	}
	if caller != record.Admin {
		return fault.ErrNotBusinessAdmin
	}
	if err := feePercent.Validate(); nil != err {
		return err
	}

	record.Fee = feePercent
	save(record)

	messagebus.Send("business", messagebus.BusinessFeeUpdated{BusinessID: businessID, FeePercent: uint64(feePercent)})
	return nil
}

// AddEmployee - hire an identity into the business
//
// business admin only; an identity is employee of at most one
// business at a time
func AddEmployee(caller account.Account, businessID uint64, employee account.Account) error {
	if err := globalData.guard.Enter(); nil != err {
		return err
	}
	defer globalData.guard.Leave()

	globalData.Lock()
	defer globalData.Unlock()

	record, ok := globalData.records[businessID]
	if !ok {
		return fault.ErrBusinessNotFound
	}
	if caller != record.Admin {
		return fault.ErrNotBusinessAdmin
	}

	if err := hireEmployee(record, employee); nil != err {
		return err
	}
	save(record)

	messagebus.Send("business", messagebus.EmployeeAdded{BusinessID: businessID, Employee: employee})
	return nil
}

// RemoveEmployee - dismiss an employee
//
// business admin only
func RemoveEmployee(caller account.Account, businessID uint64, employee account.Account) error {
	if err := globalData.guard.Enter(); nil != err {
		return err
	}
	defer globalData.guard.Leave()

	globalData.Lock()
	defer globalData.Unlock()

	record, ok := globalData.records[businessID]
	if !ok {
		return fault.ErrBusinessNotFound
	}
	if caller != record.Admin {
		return fault.ErrNotBusinessAdmin
	}

	found := -1
	for i, member := range record.Employees {
		if member == employee {
			found = i
			break
		}
	}
	if found < 0 {
		return fault.ErrEmployeeNotFound
	}

	last := len(record.Employees) - 1
	record.Employees[found] = record.Employees[last]
	record.Employees = record.Employees[:last]
	delete(globalData.employeeToBusiness, employee)
	save(record)

	messagebus.Send("business", messagebus.EmployeeRemoved{BusinessID: businessID, Employee: employee})
	return nil
}

// OwnedByAdminOrEmployee - the membership precondition
//
// resolves the current owner through the owning registry and checks
// it against the business admin and employee set
func OwnedByAdminOrEmployee(businessID uint64, id uint64, isAsset bool) (bool, error) {
	globalData.RLock()
	defer globalData.RUnlock()

	record, ok := globalData.records[businessID]
	if !ok {
		return false, fault.ErrBusinessNotFound
	}
	return ownedByAdminOrEmployee(record, id, isAsset)
}

// Get - a copy of the business record
func Get(businessID uint64) (Record, error) {
	globalData.RLock()
	defer globalData.RUnlock()

	record, ok := globalData.records[businessID]
	if !ok {
		return Record{}, fault.ErrBusinessNotFound
	}
	copied := *record
	copied.CollectionIDs = append([]uint64{}, record.CollectionIDs...)
	copied.AssetIDs = append([]uint64{}, record.AssetIDs...)
	copied.Employees = append([]account.Account{}, record.Employees...)
	return copied, nil
}

// Count - number of live businesses
func Count() int {
	globalData.RLock()
	defer globalData.RUnlock()
	return len(globalData.records)
}

// LiveIDs - freshly built sequence of business ids
func LiveIDs() []uint64 {
	globalData.RLock()
	defer globalData.RUnlock()
	return append([]uint64{}, globalData.live...)
}

// AssetBusiness - the business an asset directly belongs to, if any
func AssetBusiness(assetID uint64) (uint64, bool) {
	globalData.RLock()
	defer globalData.RUnlock()
	businessID, ok := globalData.assetToBusiness[assetID]
	return businessID, ok
}

// CollectionBusiness - the business a collection belongs to, if any
func CollectionBusiness(collectionID uint64) (uint64, bool) {
	globalData.RLock()
	defer globalData.RUnlock()
	businessID, ok := globalData.collectionToBusiness[collectionID]
	return businessID, ok
}

// EmployeeBusiness - the business employing an identity, if any
func EmployeeBusiness(employee account.Account) (uint64, bool) {
	globalData.RLock()
	defer globalData.RUnlock()
	businessID, ok := globalData.employeeToBusiness[employee]
	return businessID, ok
}

// the employment invariant; lock must be held
func hireEmployee(record *Record, employee account.Account) error {
	if _, employed := globalData.employeeToBusiness[employee]; employed {
		return fault.ErrAlreadyEmployed
	}
	record.Employees = append(record.Employees, employee)
	globalData.employeeToBusiness[employee] = record.ID
	return nil
}

// swap-remove from the dense live sequence; lock must be held
func removeLive(businessID uint64) {
	position := globalData.liveIndex[businessID]
	if 0 == position {
		return
	}
	last := len(globalData.live) - 1
	moved := globalData.live[last]
	globalData.live[position-1] = moved
	globalData.live = globalData.live[:last]
	delete(globalData.liveIndex, businessID)
	if moved != businessID {
		globalData.liveIndex[moved] = position
	}
}

// ownership resolution; lock must be held
func ownedByAdminOrEmployee(record *Record, id uint64, isAsset bool) (bool, error) {
	var owner account.Account

	if isAsset {
		assetRecord, err := asset.Get(id)
		if nil != err {
			return false, err
		}
		owner = assetRecord.Seller
	} else {
		collectionOwner, err := collection.Owner(id)
		if nil != err {
			return false, err
		}
		owner = collectionOwner
	}

	if owner == record.Admin {
		return true, nil
	}
	for _, employee := range record.Employees {
		if owner == employee {
			return true, nil
		}
	}
	return false, nil
}
