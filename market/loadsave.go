// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package market

import (
	"time"

	"github.com/bitmark-inc/marketd/storage"
)

// packed auction layout: asset id, seller, highest bidder,
// highest bid, base price, end time as unix seconds

func packAuction(auction *Auction) []byte {
	packer := &storage.Packer{}
	return packer.
		Uint64(auction.AssetID).
		Account(auction.Seller).
		Account(auction.HighestBidder).
		Uint64(auction.HighestBid).
		Uint64(auction.BasePrice).
		Uint64(uint64(auction.BidEnd.Unix())).
		Bytes()
}

func unpackAuction(buffer []byte) (*Auction, error) {
	u := storage.NewUnpacker(buffer)
	auction := &Auction{
		AssetID:       u.Uint64(),
		Seller:        u.Account(),
		HighestBidder: u.Account(),
		HighestBid:    u.Uint64(),
		BasePrice:     u.Uint64(),
	}
	auction.BidEnd = time.Unix(int64(u.Uint64()), 0)
	if nil != u.Err() {
		return nil, u.Err()
	}
	return auction, nil
}

// write one auction through the handle; lock must be held
func saveAuction(auction *Auction) {
	if nil == globalData.handle {
		return
	}
	globalData.handle.Put(storage.Key(auction.AssetID), packAuction(auction))
}

// drop one auction from the handle; lock must be held
func eraseAuction(assetID uint64) {
	if nil == globalData.handle {
		return
	}
	globalData.handle.Delete(storage.Key(assetID))
}

// rebuild the auction table and active sequence; lock must be held
//
// expired auctions are restored too - the end check is lazy and the
// winner may still claim
func restore() error {
	if nil == globalData.handle {
		return nil
	}

	elements, err := globalData.handle.NewFetchCursor().Fetch()
	if nil != err {
		return err
	}

	for _, element := range elements {
		auction, err := unpackAuction(element.Value)
		if nil != err {
			return err
		}
		globalData.auctions[auction.AssetID] = auction
		globalData.active = append(globalData.active, auction.AssetID)
		globalData.activeIndex[auction.AssetID] = len(globalData.active)
	}

	globalData.log.Infof("restored: %d auctions", len(globalData.auctions))
	return nil
}
