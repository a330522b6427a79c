// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package business - the business registry
//
// A business groups collections and single assets under an admin with
// its own fee rate, charged on top of the marketplace fee when a
// member asset is sold.  Every member must be owned by the business
// admin or one of its employees at the time it is added; ownership can
// later change without automatic eviction.  An identity is employee of
// at most one business at a time.
package business
