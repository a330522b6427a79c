// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package messagebus_test

import (
	"testing"

	"github.com/bitmark-inc/marketd/messagebus"
)

func TestSendReceive(t *testing.T) {

	before := messagebus.Sent()
	messagebus.Send("test", messagebus.BusinessCreated{BusinessID: 7})
	if before+1 != messagebus.Sent() {
		t.Errorf("sent count: %d  expected: %d", messagebus.Sent(), before+1)
	}

	message := <-messagebus.Chan()
	if "test" != message.From {
		t.Errorf("wrong sender: %q", message.From)
	}

	event, ok := message.Item.(messagebus.BusinessCreated)
	if !ok {
		t.Fatalf("wrong event type: %T", message.Item)
	}
	if 7 != event.BusinessID {
		t.Errorf("wrong business id: %d", event.BusinessID)
	}
}

// a full queue discards rather than blocks
func TestSendNeverBlocks(t *testing.T) {

	droppedBefore := messagebus.Dropped()

	// fill whatever space remains, then overflow by one
	for i := 0; i < 1001; i += 1 {
		messagebus.Send("test", messagebus.AssetReceived{AssetID: uint64(i)})
	}
	if messagebus.Dropped() <= droppedBefore {
		t.Errorf("overflow not counted as dropped")
	}

	// drain so later tests start with a known-empty queue
drain:
	for {
		select {
		case <-messagebus.Chan():
		default:
			break drain
		}
	}
}
