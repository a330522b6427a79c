// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage - maintain the on-disk data store
//
// one LevelDB database with prefixed pools, one pool per registry:
//
//	Assets      A - packed asset records keyed by 8 byte big endian id
//	Collections C - packed collection records
//	Businesses  B - packed business records
//	Auctions    U - packed auction records
//	TestData    Z - for unit tests only
//
// registries write a packed record on every mutation and restore the
// whole pool during Initialise; a registry handed a nil handle runs
// memory-only, which is how most unit tests operate
package storage
