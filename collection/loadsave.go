// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package collection

import (
	"github.com/bitmark-inc/marketd/storage"
)

// packed record layout: id, name, cover reference, description,
// owner display name, owner, listed flag, category,
// member count followed by member asset ids

func pack(record *Record) []byte {
	packer := &storage.Packer{}
	packer.
		Uint64(record.ID).
		String(record.Name).
		String(record.CoverRef).
		String(record.Description).
		String(record.OwnerName).
		Account(record.Owner).
		Flag(record.Listed).
		String(record.Category).
		Uint64(uint64(len(record.AssetIDs)))
	for _, assetID := range record.AssetIDs {
		packer.Uint64(assetID)
	}
	return packer.Bytes()
}

func unpack(buffer []byte) (*Record, error) {
	u := storage.NewUnpacker(buffer)
	record := &Record{
		ID:          u.Uint64(),
		Name:        u.String(),
		CoverRef:    u.String(),
		Description: u.String(),
		OwnerName:   u.String(),
		Owner:       u.Account(),
		Listed:      u.Flag(),
		Category:    u.String(),
	}
	count := u.Uint64()
	record.AssetIDs = make([]uint64, 0, count)
	for i := uint64(0); i < count; i += 1 {
		record.AssetIDs = append(record.AssetIDs, u.Uint64())
	}
	if nil != u.Err() {
		return nil, u.Err()
	}
	return record, nil
}

// write one record through the handle; lock must be held
func save(record *Record) {
	if nil == globalData.handle {
		return
	}
	globalData.handle.Put(storage.Key(record.ID), pack(record))
}

// drop one record from the handle; lock must be held
func erase(collectionID uint64) {
	if nil == globalData.handle {
		return
	}
	globalData.handle.Delete(storage.Key(collectionID))
}

// record the high-water mark of the id sequence under the zero key,
// which no collection ever occupies; lock must be held
//
// without this a delete of the highest id would let a restart reissue it
func saveSequence() {
	if nil == globalData.handle {
		return
	}
	packer := &storage.Packer{}
	globalData.handle.Put(storage.Key(0), packer.Uint64(globalData.sequence.Current()).Bytes())
}

// rebuild records, live sequence and reverse index; lock must be held
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
		record, err := unpack(element.Value)
		if nil != err {
			return err
		}
		globalData.records[record.ID] = record
		globalData.live = append(globalData.live, record.ID)
		globalData.liveIndex[record.ID] = len(globalData.live)
		for _, assetID := range record.AssetIDs {
			globalData.assetToCollection[assetID] = record.ID
		}
		if record.ID > highest {
			highest = record.ID
		}
	}
	globalData.sequence.Catchup(highest)

	globalData.log.Infof("restored: %d collections", len(globalData.records))
	return nil
}
