// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package asset - the asset registry
//
// Authoritative owner of individual asset records and of the
// unassigned pool, the set of assets belonging to no collection or
// business.  Asset ids are minted from a monotone sequence and are
// never reused; burning erases the record but not the id.
//
// Custody and economic ownership are distinct: Seller is the identity
// entitled to sale proceeds, Holder is the identity currently entitled
// to transfer the asset.  Listing hands custody to the marketplace;
// unlisting asks the marketplace, through the registered Custodian, to
// verify and approve the return.
//
// The unassigned pool is a dense sequence of ids with an id to
// position map kept in lockstep; positions are stored offset by one so
// zero always means absent, including for the entry at position 0.
package asset
