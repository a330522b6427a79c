// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package collection - the collection registry
//
// Groups assets into named collections.  Membership is exclusive with
// the unassigned pool: adding an asset removes it from the pool,
// removing it hands it back, crediting the marketplace as re-adder.
// Membership enumeration promises no ordering, which is what makes
// swap-with-last-and-pop removal acceptable.
package collection
