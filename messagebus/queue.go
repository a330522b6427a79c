// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package messagebus

import (
	"github.com/bitmark-inc/marketd/counter"
)

// internal constants
const (
	queueSize = 1000
)

// Message - one event as seen by an external indexer
type Message struct {
	From string
	Item interface{}
}

var (
	// for queueing data
	queue = make(chan Message, queueSize)

	sent    counter.Counter
	dropped counter.Counter
)

// Send - queue an event
//
// events are emitted after the state change commits, inside the same
// atomic operation; the registries never read the queue back
func Send(from string, item interface{}) {
	select {
	case queue <- Message{From: from, Item: item}:
		sent.Increment()
	default:
		// an indexer that stopped draining must not wedge the ledger
		dropped.Increment()
	}
}

// Chan - channel to read from
func Chan() <-chan Message {
	return queue
}

// Sent - total events queued since process start
func Sent() uint64 {
	return sent.Uint64()
}

// Dropped - total events discarded because the queue was full
func Dropped() uint64 {
	return dropped.Uint64()
}
