// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package guard - fail-fast reentrancy protection
//
// Every state-mutating operation that can reach an external payment
// enters its package guard on entry and leaves on every return path.
// A nested call into the same guarded scope does not block; it fails
// immediately with fault.ErrReentrantCall, so a payee reacting to a
// transfer cannot re-enter a half-finished operation.
package guard

import (
	"sync/atomic"

	"github.com/bitmark-inc/marketd/fault"
)

// Guard - a single busy flag; the zero value is ready for use
type Guard struct {
	busy uint32
}

// Enter - acquire the scope or fail fast
func (g *Guard) Enter() error {
	if !atomic.CompareAndSwapUint32(&g.busy, 0, 1) {
		return fault.ErrReentrantCall
	}
	return nil
}

// Leave - release the scope
//
// must only be called after a successful Enter, normally deferred
func (g *Guard) Leave() {
	atomic.StoreUint32(&g.busy, 0)
}
