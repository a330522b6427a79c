// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package market

import (
	"time"

	"github.com/bitmark-inc/marketd/account"
	"github.com/bitmark-inc/marketd/asset"
	"github.com/bitmark-inc/marketd/fault"
)

// PutOnAuction - open an auction on a listed asset
//
// seller only; the base price is advisory - bidding starts from zero
// and only ever has to beat the current highest bid
func PutOnAuction(caller account.Account, assetID uint64, basePrice uint64, duration time.Duration) error {
	if err := globalData.guard.Enter(); nil != err {
		return err
	}
	defer globalData.guard.Leave()

	record, err := asset.Get(assetID)
	if nil != err {
		return err
	}
	if caller != record.Seller {
		return fault.ErrNotSeller
	}
	if !record.Listed {
		return fault.ErrAssetNotListed
	}

	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.ErrNotInitialised
	}
	if _, ok := globalData.auctions[assetID]; ok {
		return fault.ErrAlreadyOnAuction
	}

	auction := &Auction{
		AssetID:   assetID,
		Seller:    caller,
		BasePrice: basePrice,
		BidEnd:    globalData.clock.Now().Add(duration),
	}
	globalData.auctions[assetID] = auction
	globalData.active = append(globalData.active, assetID)
	globalData.activeIndex[assetID] = len(globalData.active)
	saveAuction(auction)

	globalData.log.Infof("auction: asset: %d  base: %d  ends: %s", assetID, basePrice, auction.BidEnd)
	return nil
}

// PlaceBid - replace the highest bid
//
// no funds move; the bid is a promise validated again at claim time.
// a displaced bidder is simply displaced.
func PlaceBid(caller account.Account, assetID uint64, bidAmount uint64) error {
	if err := globalData.guard.Enter(); nil != err {
		return err
	}
	defer globalData.guard.Leave()

	globalData.Lock()
	defer globalData.Unlock()

	auction, ok := globalData.auctions[assetID]
	if !ok {
		return fault.ErrAuctionNotFound
	}
	if caller == auction.Seller {
		return fault.ErrBidderIsSeller
	}
	if caller == auction.HighestBidder {
		return fault.ErrAlreadyHighestBidder
	}
	if globalData.clock.Now().After(auction.BidEnd) {
		return fault.ErrAuctionEnded
	}
	if bidAmount <= auction.HighestBid {
		return fault.ErrBidTooLow
	}

	auction.HighestBidder = caller
	auction.HighestBid = bidAmount
	saveAuction(auction)

	globalData.log.Infof("bid: asset: %d  amount: %d  bidder: %s", assetID, bidAmount, caller)
	return nil
}

// ExtendAuction - push the end time out
//
// seller only; there is no cap on the total duration
func ExtendAuction(caller account.Account, assetID uint64, extra time.Duration) error {
	if err := globalData.guard.Enter(); nil != err {
		return err
	}
	defer globalData.guard.Leave()

	globalData.Lock()
	defer globalData.Unlock()

	auction, ok := globalData.auctions[assetID]
	if !ok {
		return fault.ErrAuctionNotFound
	}
	if caller != auction.Seller {
		return fault.ErrNotSeller
	}

	auction.BidEnd = auction.BidEnd.Add(extra)
	saveAuction(auction)
	return nil
}

// WithdrawFromAuction - the seller cancels the auction
//
// the only way an auction disappears without a claim
func WithdrawFromAuction(caller account.Account, assetID uint64) error {
	if err := globalData.guard.Enter(); nil != err {
		return err
	}
	defer globalData.guard.Leave()

	globalData.Lock()
	defer globalData.Unlock()

	auction, ok := globalData.auctions[assetID]
	if !ok {
		return fault.ErrAuctionNotFound
	}
	if caller != auction.Seller {
		return fault.ErrNotSeller
	}

	removeAuction(assetID)
	return nil
}

// ClaimAfterAuctionEnd - the winner collects, paying the winning bid
//
// only the recorded highest bidder, only strictly after the end time,
// only for exactly the highest bid; settlement is identical to a
// direct sale with the winning bid as price, and the asset's stored
// price becomes the winning bid
func ClaimAfterAuctionEnd(caller account.Account, assetID uint64, paymentAmount uint64) error {
	if err := globalData.guard.Enter(); nil != err {
		return err
	}
	defer globalData.guard.Leave()

	globalData.Lock()
	auction, ok := globalData.auctions[assetID]
	if !ok {
		globalData.Unlock()
		return fault.ErrAuctionNotFound
	}
	if auction.HighestBidder.IsZero() || caller != auction.HighestBidder {
		globalData.Unlock()
		return fault.ErrNotHighestBidder
	}
	if !globalData.clock.Now().After(auction.BidEnd) {
		globalData.Unlock()
		return fault.ErrAuctionNotEnded
	}
	if paymentAmount != auction.HighestBid {
		globalData.Unlock()
		return fault.ErrWrongPaymentAmount
	}
	winningBid := auction.HighestBid
	identity := globalData.identity
	globalData.Unlock()

	record, err := asset.Get(assetID)
	if nil != err {
		return err
	}
	if !record.Listed {
		return fault.ErrAssetNotListed
	}

	err = settle(caller, &record, winningBid)
	if nil != err {
		return err
	}

	// record the winning bid as the new stored price
	err = asset.SetPrice(identity, assetID, winningBid)
	if nil != err {
		globalData.log.Criticalf("claim: asset: %d  price update failed: %s", assetID, err)
		return err
	}

	globalData.Lock()
	removeAuction(assetID)
	globalData.Unlock()
	return nil
}

// AuctionOf - a copy of the active auction record for an asset
func AuctionOf(assetID uint64) (Auction, error) {
	globalData.RLock()
	defer globalData.RUnlock()

	auction, ok := globalData.auctions[assetID]
	if !ok {
		return Auction{}, fault.ErrAuctionNotFound
	}
	return *auction, nil
}

// ActiveAuctionIDs - freshly built sequence of asset ids on auction
func ActiveAuctionIDs() []uint64 {
	globalData.RLock()
	defer globalData.RUnlock()
	return append([]uint64{}, globalData.active...)
}

// swap-remove from the active sequence and drop the record;
// lock must be held
func removeAuction(assetID uint64) {
	position := globalData.activeIndex[assetID]
	if 0 != position {
		last := len(globalData.active) - 1
		moved := globalData.active[last]
		globalData.active[position-1] = moved
		globalData.active = globalData.active[:last]
		delete(globalData.activeIndex, assetID)
		if moved != assetID {
			globalData.activeIndex[moved] = position
		}
	}
	delete(globalData.auctions, assetID)
	eraseAuction(assetID)
}
