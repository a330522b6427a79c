// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package business_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/marketd/account"
	"github.com/bitmark-inc/marketd/asset"
	"github.com/bitmark-inc/marketd/business"
	"github.com/bitmark-inc/marketd/collection"
	"github.com/bitmark-inc/marketd/fault"
	"github.com/bitmark-inc/marketd/fixtures"
	"github.com/bitmark-inc/marketd/storage"
)

func TestMain(m *testing.M) {
	fixtures.SetupTestLogger()
	rc := m.Run()
	fixtures.TeardownTestLogger()
	os.Exit(rc)
}

type approver struct{}

func (approver) ReturnToOwner(assetID uint64, claimedSeller account.Account) error {
	return nil
}

var (
	administrator = fixtures.Account(250)
	marketplace   = fixtures.Account(251)
)

func setup(t *testing.T) func() {
	assert.NoError(t, asset.Initialise(administrator, nil), "asset initialise failed")
	assert.NoError(t, collection.Initialise(administrator, nil), "collection initialise failed")
	assert.NoError(t, business.Initialise(administrator, nil), "business initialise failed")
	assert.NoError(t, asset.RegisterMarketplace(administrator, marketplace, approver{}), "asset register failed")
	assert.NoError(t, collection.RegisterMarketplace(administrator, marketplace), "collection register failed")
	assert.NoError(t, business.RegisterMarketplace(administrator, marketplace), "business register failed")
	return func() {
		_ = business.Finalise()
		_ = collection.Finalise()
		_ = asset.Finalise()
	}
}

func TestAddBusiness(t *testing.T) {
	defer setup(t)()

	bossie := fixtures.Account(10)
	worker := fixtures.Account(11)

	businessID, err := business.AddBusiness(administrator, "gallery", "logo", 5, bossie, []account.Account{worker})
	assert.NoError(t, err, "add business failed")

	record, err := business.Get(businessID)
	assert.NoError(t, err, "get failed")
	assert.Equal(t, "gallery", record.Name, "wrong name")
	assert.Equal(t, bossie, record.Admin, "wrong admin")
	assert.Equal(t, []account.Account{worker}, record.Employees, "wrong employees")

	got, ok := business.EmployeeBusiness(worker)
	assert.True(t, ok, "employee reverse index missing")
	assert.Equal(t, businessID, got, "employee reverse index wrong")

	_, err = business.AddBusiness(bossie, "rogue", "logo", 5, bossie, nil)
	assert.Equal(t, fault.ErrNotAdministrator, err, "non-administrator allowed to add")

	_, err = business.AddBusiness(administrator, "over", "logo", 101, bossie, nil)
	assert.Equal(t, fault.ErrFeePercentOutOfRange, err, "fee over 100 accepted")
}

func TestAddBusinessUnwindsOnDuplicateEmployee(t *testing.T) {
	defer setup(t)()

	bossie := fixtures.Account(10)
	worker := fixtures.Account(11)

	_, err := business.AddBusiness(administrator, "first", "logo", 5, bossie, []account.Account{worker})
	assert.NoError(t, err, "add business failed")

	_, err = business.AddBusiness(administrator, "second", "logo", 5, bossie, []account.Account{worker})
	assert.Equal(t, fault.ErrAlreadyEmployed, err, "double employment accepted")
	assert.Equal(t, 1, business.Count(), "phantom business left behind")
}

func TestEmployment(t *testing.T) {
	defer setup(t)()

	bossie := fixtures.Account(10)
	worker := fixtures.Account(11)
	mallory := fixtures.Account(12)

	businessID, _ := business.AddBusiness(administrator, "gallery", "logo", 5, bossie, nil)

	err := business.AddEmployee(mallory, businessID, worker)
	assert.Equal(t, fault.ErrNotBusinessAdmin, err, "stranger allowed to hire")

	assert.NoError(t, business.AddEmployee(bossie, businessID, worker), "hire failed")
	err = business.AddEmployee(bossie, businessID, worker)
	assert.Equal(t, fault.ErrAlreadyEmployed, err, "double hire allowed")

	assert.NoError(t, business.RemoveEmployee(bossie, businessID, worker), "dismiss failed")
	_, ok := business.EmployeeBusiness(worker)
	assert.False(t, ok, "reverse index entry survives dismissal")

	err = business.RemoveEmployee(bossie, businessID, worker)
	assert.Equal(t, fault.ErrEmployeeNotFound, err, "double dismissal allowed")
}

func TestAddAssetToBusiness(t *testing.T) {
	defer setup(t)()

	bossie := fixtures.Account(10)
	worker := fixtures.Account(11)
	outsider := fixtures.Account(12)

	businessID, _ := business.AddBusiness(administrator, "gallery", "logo", 5, bossie, []account.Account{worker})

	// owned by an employee: allowed
	workerAsset, _ := asset.Mint(worker, "ref/w", 100, "art", account.Account{})
	assert.NoError(t, business.AddAssetToBusiness(bossie, businessID, workerAsset), "admin add failed")
	assert.False(t, asset.InPool(workerAsset), "member still in pool")

	got, ok := business.AssetBusiness(workerAsset)
	assert.True(t, ok, "reverse index missing")
	assert.Equal(t, businessID, got, "reverse index wrong")

	err := business.AddAssetToBusiness(bossie, businessID, workerAsset)
	assert.Equal(t, fault.ErrAlreadyInBusiness, err, "double add allowed")

	// owned by an outsider: refused
	outsiderAsset, _ := asset.Mint(outsider, "ref/o", 100, "art", account.Account{})
	err = business.AddAssetToBusiness(bossie, businessID, outsiderAsset)
	assert.Equal(t, fault.ErrOwnershipMismatch, err, "foreign asset accepted")

	// an employee may add their own asset
	second, _ := asset.Mint(worker, "ref/w2", 100, "art", account.Account{})
	assert.NoError(t, business.AddAssetToBusiness(worker, businessID, second), "employee add failed")

	// but not someone else's
	third, _ := asset.Mint(bossie, "ref/b", 100, "art", account.Account{})
	err = business.AddAssetToBusiness(worker, businessID, third)
	assert.Equal(t, fault.ErrNotBusinessAdmin, err, "employee allowed to add admin's asset")
}

func TestAssetInCollectionCannotJoinBusiness(t *testing.T) {
	defer setup(t)()

	bossie := fixtures.Account(10)
	businessID, _ := business.AddBusiness(administrator, "gallery", "logo", 5, bossie, nil)

	assetID, _ := asset.Mint(bossie, "ref", 100, "art", account.Account{})
	assert.NoError(t, asset.List(bossie, assetID), "list failed")

	collectionID, err := collection.Create("set", "cover", "", "bossie", []uint64{assetID}, "art", bossie)
	assert.NoError(t, err, "create collection failed")

	err = business.AddAssetToBusiness(bossie, businessID, assetID)
	assert.Equal(t, fault.ErrAlreadyInCollection, err, "collection member accepted into business")

	_ = collectionID
}

func TestAddCollectionToBusiness(t *testing.T) {
	defer setup(t)()

	bossie := fixtures.Account(10)
	outsider := fixtures.Account(12)

	businessID, _ := business.AddBusiness(administrator, "gallery", "logo", 5, bossie, nil)

	mine, _ := collection.Create("mine", "cover", "", "bossie", nil, "art", bossie)
	theirs, _ := collection.Create("theirs", "cover", "", "outsider", nil, "art", outsider)

	assert.NoError(t, business.AddCollectionToBusiness(bossie, businessID, mine), "add collection failed")
	got, ok := business.CollectionBusiness(mine)
	assert.True(t, ok, "reverse index missing")
	assert.Equal(t, businessID, got, "reverse index wrong")

	err := business.AddCollectionToBusiness(bossie, businessID, theirs)
	assert.Equal(t, fault.ErrOwnershipMismatch, err, "foreign collection accepted")

	assert.NoError(t, business.RemoveCollectionFromBusiness(bossie, businessID, mine), "remove collection failed")
	_, ok = business.CollectionBusiness(mine)
	assert.False(t, ok, "reverse index entry survives removal")

	err = business.RemoveCollectionFromBusiness(bossie, businessID, mine)
	assert.Equal(t, fault.ErrNotInBusiness, err, "double remove allowed")
}

func TestCreateInBusiness(t *testing.T) {
	defer setup(t)()

	bossie := fixtures.Account(10)
	worker := fixtures.Account(11)
	mallory := fixtures.Account(12)

	businessID, _ := business.AddBusiness(administrator, "gallery", "logo", 5, bossie, []account.Account{worker})

	collectionID, err := business.CreateCollectionInBusiness(worker, businessID, "set", "cover", "", "worker", "art")
	assert.NoError(t, err, "create collection in business failed")
	owner, _ := collection.Owner(collectionID)
	assert.Equal(t, worker, owner, "collection owner wrong")
	got, ok := business.CollectionBusiness(collectionID)
	assert.True(t, ok && got == businessID, "collection not grouped")

	assetID, err := business.CreateAssetInBusiness(worker, businessID, "ref", 500, "art")
	assert.NoError(t, err, "create asset in business failed")
	record, _ := asset.Get(assetID)
	assert.Equal(t, worker, record.Seller, "asset seller wrong")
	gotBusiness, ok := business.AssetBusiness(assetID)
	assert.True(t, ok && gotBusiness == businessID, "asset not grouped")

	_, err = business.CreateAssetInBusiness(mallory, businessID, "ref", 1, "art")
	assert.Equal(t, fault.ErrNotBusinessAdmin, err, "stranger allowed to create")
}

func TestUpdateFeePercent(t *testing.T) {
	defer setup(t)()

	bossie := fixtures.Account(10)
	mallory := fixtures.Account(12)
	businessID, _ := business.AddBusiness(administrator, "gallery", "logo", 5, bossie, nil)

	err := business.UpdateFeePercent(mallory, businessID, 10)
	assert.Equal(t, fault.ErrNotBusinessAdmin, err, "stranger allowed to set fee")

	err = business.UpdateFeePercent(bossie, businessID, 101)
	assert.Equal(t, fault.ErrFeePercentOutOfRange, err, "fee over 100 accepted")

	assert.NoError(t, business.UpdateFeePercent(bossie, businessID, 10), "fee update failed")
	record, _ := business.Get(businessID)
	assert.Equal(t, uint64(10), uint64(record.Fee), "fee not updated")
}

func TestRemoveBusinessClearsEverything(t *testing.T) {
	defer setup(t)()

	bossie := fixtures.Account(10)
	workers := []account.Account{fixtures.Account(11), fixtures.Account(12), fixtures.Account(13)}

	businessID, err := business.AddBusiness(administrator, "gallery", "logo", 5, bossie, workers)
	assert.NoError(t, err, "add business failed")

	assetID, _ := asset.Mint(bossie, "ref", 100, "art", account.Account{})
	assert.NoError(t, business.AddAssetToBusiness(bossie, businessID, assetID), "add asset failed")

	collectionID, _ := collection.Create("set", "cover", "", "bossie", nil, "art", bossie)
	assert.NoError(t, business.AddCollectionToBusiness(bossie, businessID, collectionID), "add collection failed")

	err = business.RemoveBusiness(bossie, businessID)
	assert.Equal(t, fault.ErrNotAdministrator, err, "business admin allowed to remove")

	assert.NoError(t, business.RemoveBusiness(administrator, businessID), "remove failed")

	_, err = business.Get(businessID)
	assert.Equal(t, fault.ErrBusinessNotFound, err, "removed business readable")
	assert.Equal(t, 0, business.Count(), "count wrong after removal")

	for _, worker := range workers {
		_, ok := business.EmployeeBusiness(worker)
		assert.False(t, ok, "employee reverse index entry survives removal")
	}
	_, ok := business.AssetBusiness(assetID)
	assert.False(t, ok, "asset reverse index entry survives removal")
	_, ok = business.CollectionBusiness(collectionID)
	assert.False(t, ok, "collection reverse index entry survives removal")

	assert.True(t, asset.InPool(assetID), "member asset not returned to pool")
}

func TestMemberAssetCannotBeBurned(t *testing.T) {
	defer setup(t)()

	bossie := fixtures.Account(10)

	businessID, _ := business.AddBusiness(administrator, "gallery", "logo", 5, bossie, nil)
	assetID, _ := asset.Mint(bossie, "ref", 100, "art", account.Account{})
	assert.NoError(t, business.AddAssetToBusiness(bossie, businessID, assetID), "add asset failed")

	err := asset.Burn(bossie, assetID)
	assert.Equal(t, fault.ErrNotInUnassignedPool, err, "member asset burned")

	// membership must be intact and still removable
	got, ok := business.AssetBusiness(assetID)
	assert.True(t, ok, "membership lost")
	assert.Equal(t, businessID, got, "membership wrong")

	assert.NoError(t, business.RemoveAssetFromBusiness(bossie, businessID, assetID), "remove failed")
	assert.NoError(t, asset.Burn(bossie, assetID), "burn of freed asset failed")
}

func TestRemoveBusinessLiveList(t *testing.T) {
	defer setup(t)()

	bossie := fixtures.Account(10)

	first, err := business.AddBusiness(administrator, "first", "logo", 5, bossie, nil)
	assert.NoError(t, err, "add business failed")
	second, err := business.AddBusiness(administrator, "second", "logo", 5, fixtures.Account(11), nil)
	assert.NoError(t, err, "add business failed")
	third, err := business.AddBusiness(administrator, "third", "logo", 5, fixtures.Account(12), nil)
	assert.NoError(t, err, "add business failed")

	assert.Equal(t, []uint64{first, second, third}, business.LiveIDs(), "live sequence wrong")

	// removing from the middle must keep the sequence dense
	assert.NoError(t, business.RemoveBusiness(administrator, second), "remove failed")
	assert.ElementsMatch(t, []uint64{first, third}, business.LiveIDs(), "live sequence wrong after removal")

	assert.NoError(t, business.RemoveBusiness(administrator, first), "remove failed")
	assert.Equal(t, []uint64{third}, business.LiveIDs(), "live sequence wrong after removal")
}

func TestRemoveAssetFromBusinessAuthorisation(t *testing.T) {
	defer setup(t)()

	bossie := fixtures.Account(10)
	worker := fixtures.Account(11)
	mallory := fixtures.Account(14)

	businessID, _ := business.AddBusiness(administrator, "gallery", "logo", 5, bossie, []account.Account{worker})

	assetID, _ := asset.Mint(worker, "ref", 100, "art", account.Account{})
	assert.NoError(t, business.AddAssetToBusiness(worker, businessID, assetID), "add asset failed")

	err := business.RemoveAssetFromBusiness(mallory, businessID, assetID)
	assert.Equal(t, fault.ErrNotBusinessAdmin, err, "stranger allowed to remove")

	// the asset's seller may pull their own asset out
	assert.NoError(t, business.RemoveAssetFromBusiness(worker, businessID, assetID), "seller remove failed")
	assert.True(t, asset.InPool(assetID), "asset not returned to pool")

	// the marketplace may evict during settlement
	assert.NoError(t, business.AddAssetToBusiness(worker, businessID, assetID), "re-add failed")
	assert.NoError(t, business.RemoveAssetFromBusiness(marketplace, businessID, assetID), "marketplace remove failed")
}

func TestRestore(t *testing.T) {
	directory, err := os.MkdirTemp("", "marketd-business-test")
	assert.NoError(t, err, "cannot create test directory")
	defer os.RemoveAll(directory)

	assert.NoError(t, storage.Initialise(filepath.Join(directory, "test.leveldb")), "storage initialise failed")
	defer storage.Finalise()

	bossie := fixtures.Account(10)
	worker := fixtures.Account(11)

	assert.NoError(t, asset.Initialise(administrator, nil), "asset initialise failed")
	assert.NoError(t, business.Initialise(administrator, storage.Pool.Businesses), "business initialise failed")

	kept, err := business.AddBusiness(administrator, "kept", "logo", 5, bossie, []account.Account{worker})
	assert.NoError(t, err, "add business failed")
	gone, err := business.AddBusiness(administrator, "gone", "logo", 5, fixtures.Account(12), nil)
	assert.NoError(t, err, "add business failed")
	assert.NoError(t, business.RemoveBusiness(administrator, gone), "remove failed")

	assert.NoError(t, business.Finalise(), "business finalise failed")

	// restart from storage
	assert.NoError(t, business.Initialise(administrator, storage.Pool.Businesses), "business re-initialise failed")
	defer func() {
		_ = business.Finalise()
		_ = asset.Finalise()
	}()

	assert.Equal(t, []uint64{kept}, business.LiveIDs(), "wrong restored live ids")
	record, err := business.Get(kept)
	assert.NoError(t, err, "restored business missing")
	assert.Equal(t, "kept", record.Name, "restored name wrong")

	got, ok := business.EmployeeBusiness(worker)
	assert.True(t, ok, "employee reverse index lost")
	assert.Equal(t, kept, got, "employee reverse index wrong")

	// the id sequence must not reuse removed ids
	next, err := business.AddBusiness(administrator, "fresh", "logo", 5, fixtures.Account(13), nil)
	assert.NoError(t, err, "add business failed")
	assert.Greater(t, next, gone, "id reused after restore")
}
