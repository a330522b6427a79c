// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package market

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/marketd/account"
	"github.com/bitmark-inc/marketd/asset"
	"github.com/bitmark-inc/marketd/business"
	"github.com/bitmark-inc/marketd/collection"
	"github.com/bitmark-inc/marketd/counter"
	"github.com/bitmark-inc/marketd/fault"
	"github.com/bitmark-inc/marketd/fees"
	"github.com/bitmark-inc/marketd/guard"
	"github.com/bitmark-inc/marketd/storage"
)

// Clock - time source for lazy auction-end checks
type Clock interface {
	Now() time.Time
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

// receipts stay queryable for three days
const (
	receiptExpiry  = 72 * time.Hour
	receiptCleanup = time.Hour
)

// Auction - one active auction, keyed by asset id
//
// record absence means no auction; there is no zero-valued sentinel
type Auction struct {
	AssetID       uint64
	Seller        account.Account
	HighestBidder account.Account
	HighestBid    uint64
	BasePrice     uint64
	BidEnd        time.Time
}

// globals
var globalData struct {
	sync.RWMutex
	log           *logger.L
	guard         guard.Guard
	identity      account.Account
	administrator account.Account
	feeAccount    account.Account
	feePercent    fees.Percent
	clock         Clock
	auctions      map[uint64]*Auction
	active        []uint64
	activeIndex   map[uint64]int // position+1, 0 = absent
	receipts      *gocache.Cache
	receiptSeq    counter.Sequence
	handle        storage.Handle
	initialised   bool
}

// Initialise - start the orchestrator
//
// identity is the marketplace's own account; a nil clock selects the
// wall clock and a nil handle disables auction persistence
func Initialise(identity account.Account, administrator account.Account, feeAccount account.Account, feePercent fees.Percent, clock Clock, handle storage.Handle) error {
	globalData.Lock()
	defer globalData.Unlock()

	if globalData.initialised {
		return fault.ErrAlreadyInitialised
	}
	if err := feePercent.Validate(); nil != err {
		return err
	}

	globalData.log = logger.New("market")
	globalData.log.Info("starting…")

	if nil == clock {
		clock = wallClock{}
	}

	globalData.identity = identity
	globalData.administrator = administrator
	globalData.feeAccount = feeAccount
	globalData.feePercent = feePercent
	globalData.clock = clock
	globalData.auctions = make(map[uint64]*Auction)
	globalData.active = []uint64{}
	globalData.activeIndex = make(map[uint64]int)
	globalData.receipts = gocache.New(receiptExpiry, receiptCleanup)
	globalData.handle = handle

	if err := restore(); nil != err {
		return err
	}

	globalData.initialised = true
	return nil
}

// Finalise - shut down the orchestrator
func Finalise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.ErrNotInitialised
	}

	globalData.log.Info("shutting down…")
	globalData.auctions = nil
	globalData.active = nil
	globalData.activeIndex = nil
	globalData.receipts = nil
	globalData.handle = nil
	globalData.receiptSeq = 0
	globalData.initialised = false
	return nil
}

// RegisterWithRegistries - hand the marketplace identity to every registry
//
// bootstrap step, performed once on behalf of the administrator
func RegisterWithRegistries() error {
	globalData.RLock()
	administrator := globalData.administrator
	identity := globalData.identity
	globalData.RUnlock()

	if err := asset.RegisterMarketplace(administrator, identity, custodian{}); nil != err {
		return err
	}
	if err := collection.RegisterMarketplace(administrator, identity); nil != err {
		return err
	}
	return business.RegisterMarketplace(administrator, identity)
}

// custodian - the asset registry calls back through this on unlist
type custodian struct{}

// ReturnToOwner - approve or refuse a custody return
//
// refuses unless the claimed seller is the recorded seller and the
// marketplace actually holds the asset; refused outright while an
// auction is active or while a settlement holds the market scope
func (custodian) ReturnToOwner(assetID uint64, claimedSeller account.Account) error {
	if err := globalData.guard.Enter(); nil != err {
		return err
	}
	defer globalData.guard.Leave()

	globalData.RLock()
	_, onAuction := globalData.auctions[assetID]
	identity := globalData.identity
	globalData.RUnlock()

	if onAuction {
		return fault.ErrAlreadyOnAuction
	}

	record, err := asset.Get(assetID)
	if nil != err {
		return err
	}
	if claimedSeller != record.Seller {
		return fault.ErrNotSeller
	}
	if identity != record.Holder {
		return fault.ErrNotMarketplace
	}
	return nil
}

// Identity - the marketplace account
func Identity() account.Account {
	globalData.RLock()
	defer globalData.RUnlock()
	return globalData.identity
}

// Administrator - the configured administrator account
func Administrator() account.Account {
	globalData.RLock()
	defer globalData.RUnlock()
	return globalData.administrator
}

// FeeAccount - where marketplace fees accumulate
func FeeAccount() account.Account {
	globalData.RLock()
	defer globalData.RUnlock()
	return globalData.feeAccount
}

// FeePercent - the marketplace fee rate
func FeePercent() fees.Percent {
	globalData.RLock()
	defer globalData.RUnlock()
	return globalData.feePercent
}

// UpdateFeeAccount - administrator only
func UpdateFeeAccount(caller account.Account, feeAccount account.Account) error {
	globalData.Lock()
	defer globalData.Unlock()

	if caller != globalData.administrator {
		return fault.ErrNotAdministrator
	}
	globalData.feeAccount = feeAccount
	return nil
}

// ChangeAdministrator - administrator only
func ChangeAdministrator(caller account.Account, administrator account.Account) error {
	globalData.Lock()
	defer globalData.Unlock()

	if caller != globalData.administrator {
		return fault.ErrNotAdministrator
	}
	globalData.administrator = administrator
	return nil
}

// ChangeFeePercent - administrator only
func ChangeFeePercent(caller account.Account, feePercent fees.Percent) error {
	globalData.Lock()
	defer globalData.Unlock()

	if caller != globalData.administrator {
		return fault.ErrNotAdministrator
	}
	if err := feePercent.Validate(); nil != err {
		return err
	}
	globalData.feePercent = feePercent
	return nil
}
