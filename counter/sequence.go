// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package counter

import (
	"sync/atomic"
)

// Sequence - a monotone source of entity ids
//
// ids start at 1 and are never reused, even after the entity they
// identified has been removed; the zero value is ready for use
type Sequence uint64

// Next - allocate the next id
func (s *Sequence) Next() uint64 {
	return atomic.AddUint64((*uint64)(s), 1)
}

// Current - the highest id allocated so far
func (s *Sequence) Current() uint64 {
	return atomic.AddUint64((*uint64)(s), 0)
}

// Catchup - raise the floor so ids restored from storage are not reallocated
//
// no effect if the sequence is already past n
func (s *Sequence) Catchup(n uint64) {
	for {
		current := atomic.LoadUint64((*uint64)(s))
		if current >= n {
			return
		}
		if atomic.CompareAndSwapUint64((*uint64)(s), current, n) {
			return
		}
	}
}
