// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fees - fee rate validation and settlement arithmetic
//
// All prices are in the smallest unit of the native settlement
// currency; fee terms use truncating integer division so the seller
// payout absorbs any rounding remainder and the split is always exact.
package fees

import (
	"math/bits"

	"github.com/bitmark-inc/marketd/fault"
)

// Percent - a fee rate in whole percent, valid range 0 to 100
type Percent uint64

// Validate - check the rate is in range
func (p Percent) Validate() error {
	if p > 100 {
		return fault.ErrFeePercentOutOfRange
	}
	return nil
}

// Apply - the fee for a price at this rate, truncated toward zero
//
// the intermediate product is kept in 128 bits so prices anywhere in
// the uint64 range divide correctly
func (p Percent) Apply(price uint64) uint64 {
	hi, lo := bits.Mul64(uint64(p), price)
	quotient, _ := bits.Div64(hi, lo, 100)
	return quotient
}

// Split - divide a sale price between marketplace, business and seller
//
// returns (marketplaceFee, businessFee, sellerPayout) with the three
// terms summing exactly to price
func Split(price uint64, marketplaceRate Percent, businessRate Percent) (uint64, uint64, uint64) {
	marketplaceFee := marketplaceRate.Apply(price)
	businessFee := businessRate.Apply(price)
	return marketplaceFee, businessFee, price - marketplaceFee - businessFee
}
