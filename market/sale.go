// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package market

import (
	"strconv"
	"time"

	"github.com/bitmark-inc/marketd/account"
	"github.com/bitmark-inc/marketd/asset"
	"github.com/bitmark-inc/marketd/business"
	"github.com/bitmark-inc/marketd/collection"
	"github.com/bitmark-inc/marketd/fault"
	"github.com/bitmark-inc/marketd/fees"
	"github.com/bitmark-inc/marketd/payment"
)

// Receipt - the settlement record kept for indexer queries
type Receipt struct {
	ID             uint64
	AssetID        uint64
	Buyer          account.Account
	Seller         account.Account
	Price          uint64
	MarketplaceFee uint64
	BusinessFee    uint64
	BusinessID     uint64
	At             time.Time
}

// BuyAndTransfer - direct sale at the asking price
//
// payment must match the stored price exactly; over and underpayment
// both fail.  An asset with an active auction cannot be bought
// directly - the auction must conclude or be withdrawn first.
func BuyAndTransfer(buyer account.Account, assetID uint64, paymentAmount uint64) error {
	if err := globalData.guard.Enter(); nil != err {
		return err
	}
	defer globalData.guard.Leave()

	globalData.RLock()
	initialised := globalData.initialised
	_, onAuction := globalData.auctions[assetID]
	globalData.RUnlock()

	if !initialised {
		return fault.ErrNotInitialised
	}
	if onAuction {
		return fault.ErrAlreadyOnAuction
	}

	record, err := asset.Get(assetID)
	if nil != err {
		return err
	}
	if !record.Listed {
		return fault.ErrAssetNotListed
	}
	if record.Sold {
		return fault.ErrAssetSold
	}
	if paymentAmount != record.Price {
		return fault.ErrWrongPaymentAmount
	}

	return settle(buyer, &record, record.Price)
}

// settle - the common fee-split / eviction / transfer sequence
//
// the market guard must already be held; price is the asking price
// for a direct sale or the winning bid for an auction claim
func settle(buyer account.Account, record *asset.Record, price uint64) error {

	globalData.RLock()
	identity := globalData.identity
	feeAccount := globalData.feeAccount
	feePercent := globalData.feePercent
	now := globalData.clock.Now()
	log := globalData.log
	globalData.RUnlock()

	assetID := record.ID
	seller := record.Seller

	// the business fee applies only when the asset itself is grouped
	// under a business
	businessRate := fees.Percent(0)
	businessAdmin := account.Account{}
	businessID, inBusiness := business.AssetBusiness(assetID)
	if inBusiness {
		businessRecord, err := business.Get(businessID)
		if nil != err {
			return err
		}
		businessRate = businessRecord.Fee
		businessAdmin = businessRecord.Admin
	}

	marketplaceFee, businessFee, sellerPayout := fees.Split(price, feePercent, businessRate)

	// fee account first, then business admin, then seller; the whole
	// settlement aborts if any leg is refused
	payouts := []payment.Payout{{To: feeAccount, Amount: marketplaceFee}}
	if inBusiness {
		payouts = append(payouts, payment.Payout{To: businessAdmin, Amount: businessFee})
	}
	payouts = append(payouts, payment.Payout{To: seller, Amount: sellerPayout})

	// foreign payee hooks run inside the payout; hold every registry
	// scope across it so a hook cannot change grouping or custody
	// while money is moving
	if err := business.BeginSettlement(identity); nil != err {
		return err
	}
	if err := collection.BeginSettlement(identity); nil != err {
		business.EndSettlement()
		return err
	}
	if err := asset.BeginSettlement(identity); nil != err {
		collection.EndSettlement()
		business.EndSettlement()
		return err
	}

	err := payment.Settle(buyer, payouts)

	asset.EndSettlement()
	collection.EndSettlement()
	business.EndSettlement()

	if nil != err {
		return err
	}

	// money has moved; the remaining state changes are marketplace
	// internal and must not fail
	if inBusiness {
		err = business.RemoveAssetFromBusiness(identity, businessID, assetID)
		if nil != err {
			log.Criticalf("settle: asset: %d  business eviction failed: %s", assetID, err)
			return err
		}
	} else if collectionID, inCollection := collection.AssetCollection(assetID); inCollection {
		err = collection.RemoveAsset(identity, collectionID, assetID)
		if nil != err {
			log.Criticalf("settle: asset: %d  collection eviction failed: %s", assetID, err)
			return err
		}
	}

	err = asset.TransferCustody(identity, assetID, buyer)
	if nil != err {
		log.Criticalf("settle: asset: %d  custody transfer failed: %s", assetID, err)
		return err
	}
	err = asset.MarkSold(identity, assetID, buyer)
	if nil != err {
		log.Criticalf("settle: asset: %d  mark sold failed: %s", assetID, err)
		return err
	}

	receipt := Receipt{
		ID:             globalData.receiptSeq.Next(),
		AssetID:        assetID,
		Buyer:          buyer,
		Seller:         seller,
		Price:          price,
		MarketplaceFee: marketplaceFee,
		BusinessFee:    businessFee,
		BusinessID:     businessID,
		At:             now,
	}
	globalData.receipts.SetDefault(strconv.FormatUint(receipt.ID, 10), receipt)

	log.Infof("settle: asset: %d  price: %d  buyer: %s", assetID, price, buyer)
	return nil
}

// FindReceipt - look up a recent settlement
func FindReceipt(receiptID uint64) (Receipt, bool) {
	globalData.RLock()
	defer globalData.RUnlock()

	if nil == globalData.receipts {
		return Receipt{}, false
	}
	item, ok := globalData.receipts.Get(strconv.FormatUint(receiptID, 10))
	if !ok {
		return Receipt{}, false
	}
	return item.(Receipt), true
}
