// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package market - the marketplace orchestrator
//
// Sequences every cross-registry operation that moves money: direct
// sale, auction settlement and the custody return on unlist.  Per
// asset the sale state machine is:
//
//	Unlisted → Listed → {SoldDirect | OnAuction → (Claimed | Withdrawn)}
//
// Settlement order is fixed: marketplace fee account, then business
// admin, then seller, then custody transfer, then the sold mark; the
// whole payment is one all-or-nothing settlement.
//
// Auction end is evaluated lazily against the injected clock when a
// bid or claim arrives; nothing fires at the end time itself.  Bids
// are promises, not escrow: placing a bid moves no funds and a
// displaced bidder has nothing to refund - payment is collected only
// at claim time.
package market
