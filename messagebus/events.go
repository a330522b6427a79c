// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package messagebus

import (
	"github.com/bitmark-inc/marketd/account"
)

// AssetReceived - the marketplace took custody of a listed asset
type AssetReceived struct {
	Operator account.Account
	From     account.Account
	AssetID  uint64
	Payload  string
}

// BusinessCreated - a business was registered
type BusinessCreated struct {
	BusinessID uint64
	Admin      account.Account
}

// BusinessRemoved - a business was removed
type BusinessRemoved struct {
	BusinessID uint64
}

// EmployeeAdded - an identity joined a business
type EmployeeAdded struct {
	BusinessID uint64
	Employee   account.Account
}

// EmployeeRemoved - an identity left a business
type EmployeeRemoved struct {
	BusinessID uint64
	Employee   account.Account
}

// CollectionAddedToBusiness - membership change
type CollectionAddedToBusiness struct {
	BusinessID   uint64
	CollectionID uint64
}

// CollectionRemovedFromBusiness - membership change
type CollectionRemovedFromBusiness struct {
	BusinessID   uint64
	CollectionID uint64
}

// AssetAddedToBusiness - membership change
type AssetAddedToBusiness struct {
	BusinessID uint64
	AssetID    uint64
}

// AssetRemovedFromBusiness - membership change
type AssetRemovedFromBusiness struct {
	BusinessID uint64
	AssetID    uint64
}

// BusinessFeeUpdated - the business fee rate changed
type BusinessFeeUpdated struct {
	BusinessID uint64
	FeePercent uint64
}
