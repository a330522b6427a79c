// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package asset

import (
	"github.com/bitmark-inc/marketd/storage"
)

// packed record layout: id, price, seller, holder,
// sold flag, listed flag, in-pool flag, category, content reference

func pack(record *Record, inPool bool) []byte {
	packer := &storage.Packer{}
	return packer.
		Uint64(record.ID).
		Uint64(record.Price).
		Account(record.Seller).
		Account(record.Holder).
		Flag(record.Sold).
		Flag(record.Listed).
		Flag(inPool).
		String(record.Category).
		String(record.ContentRef).
		Bytes()
}

func unpack(buffer []byte) (*Record, bool, error) {
	u := storage.NewUnpacker(buffer)
	record := &Record{
		ID:     u.Uint64(),
		Price:  u.Uint64(),
		Seller: u.Account(),
		Holder: u.Account(),
		Sold:   u.Flag(),
		Listed: u.Flag(),
	}
	inPool := u.Flag()
	record.Category = u.String()
	record.ContentRef = u.String()
	if nil != u.Err() {
		return nil, false, u.Err()
	}
	return record, inPool, nil
}

// write one record through the handle; lock must be held
func save(record *Record) {
	if nil == globalData.handle {
		return
	}
	globalData.handle.Put(storage.Key(record.ID), pack(record, 0 != globalData.poolIndex[record.ID]))
}

// drop one record from the handle; lock must be held
func erase(assetID uint64) {
	if nil == globalData.handle {
		return
	}
	globalData.handle.Delete(storage.Key(assetID))
}

// record the high-water mark of the id sequence under the zero key,
// which no asset ever occupies; lock must be held
//
// without this a burn of the highest id would let a restart reissue it
func saveSequence() {
	if nil == globalData.handle {
		return
	}
	packer := &storage.Packer{}
	globalData.handle.Put(storage.Key(0), packer.Uint64(globalData.sequence.Current()).Bytes())
}

// rebuild the arena and pool from storage; lock must be held
func restore() error {
	if nil == globalData.handle {
		return nil
	}

	elements, err := globalData.handle.NewFetchCursor().Fetch()
	if nil != err {
		return err
	}

	highest := uint64(0)
	for _, element := range elements {
		if 0 == storage.KeyID(element.Key) {
			u := storage.NewUnpacker(element.Value)
			floor := u.Uint64()
			if nil != u.Err() {
				return u.Err()
			}
			if floor > highest {
				highest = floor
			}
			continue
		}
		record, inPool, err := unpack(element.Value)
		if nil != err {
			return err
		}
		globalData.records[record.ID] = record
		if inPool {
			poolAdd(record.ID)
		}
		if record.ID > highest {
			highest = record.ID
		}
	}
	globalData.sequence.Catchup(highest)

	globalData.log.Infof("restored: %d assets, %d unassigned", len(globalData.records), len(globalData.pool))
	return nil
}
