// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/marketd/messagebus"
)

// drains the event queue and writes each event to the log, standing
// in for an external indexer feed
type eventLogger struct {
	log *logger.L
}

func (e *eventLogger) Run(args interface{}, shutdown <-chan struct{}) {
	events := messagebus.Chan()
loop:
	for {
		select {
		case <-shutdown:
			break loop
		case message := <-events:
			e.log.Infof("%s: %#v", message.From, message.Item)
		}
	}
	e.log.Infof("shutdown: %d events emitted, %d dropped", messagebus.Sent(), messagebus.Dropped())
}
