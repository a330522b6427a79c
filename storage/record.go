// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"

	"github.com/bitmark-inc/marketd/account"
	"github.com/bitmark-inc/marketd/fault"
)

// counted binary record convention: unsigned values as uvarint,
// strings as uvarint length followed by bytes, accounts as the raw
// 32 byte public key, flags as a single byte

// Packer - accumulate one packed record
type Packer struct {
	buffer []byte
}

// Uint64 - append an unsigned value
func (p *Packer) Uint64(value uint64) *Packer {
	scratch := make([]byte, binary.MaxVarintLen64)
	n := binary.PutUvarint(scratch, value)
	p.buffer = append(p.buffer, scratch[:n]...)
	return p
}

// String - append a counted string
func (p *Packer) String(s string) *Packer {
	p.Uint64(uint64(len(s)))
	p.buffer = append(p.buffer, s...)
	return p
}

// Account - append a raw public key
func (p *Packer) Account(acct account.Account) *Packer {
	p.buffer = append(p.buffer, acct.Bytes()...)
	return p
}

// Flag - append a boolean
func (p *Packer) Flag(flag bool) *Packer {
	b := byte(0x00)
	if flag {
		b = 0x01
	}
	p.buffer = append(p.buffer, b)
	return p
}

// Bytes - the packed record
func (p *Packer) Bytes() []byte {
	return p.buffer
}

// Unpacker - decode one packed record
//
// the first decoding error sticks; check Err after the last field
type Unpacker struct {
	buffer []byte
	err    error
}

// NewUnpacker - start decoding a packed record
func NewUnpacker(buffer []byte) *Unpacker {
	return &Unpacker{buffer: buffer}
}

// Uint64 - read an unsigned value
func (u *Unpacker) Uint64() uint64 {
	if nil != u.err {
		return 0
	}
	value, n := binary.Uvarint(u.buffer)
	if n <= 0 {
		u.err = fault.ErrCorruptedRecord
		return 0
	}
	u.buffer = u.buffer[n:]
	return value
}

// String - read a counted string
func (u *Unpacker) String() string {
	length := u.Uint64()
	if nil != u.err {
		return ""
	}
	if uint64(len(u.buffer)) < length {
		u.err = fault.ErrCorruptedRecord
		return ""
	}
	s := string(u.buffer[:length])
	u.buffer = u.buffer[length:]
	return s
}

// Account - read a raw public key
func (u *Unpacker) Account() account.Account {
	if nil != u.err {
		return account.Account{}
	}
	acct, err := account.FromBytes(u.buffer[:min(32, len(u.buffer))])
	if nil != err {
		u.err = fault.ErrCorruptedRecord
		return account.Account{}
	}
	u.buffer = u.buffer[32:]
	return acct
}

// Flag - read a boolean
func (u *Unpacker) Flag() bool {
	if nil != u.err {
		return false
	}
	if 0 == len(u.buffer) {
		u.err = fault.ErrCorruptedRecord
		return false
	}
	b := u.buffer[0]
	u.buffer = u.buffer[1:]
	return 0x01 == b
}

// Err - the first decoding error, nil when the record was well-formed
func (u *Unpacker) Err() error {
	return u.err
}

func min(a int, b int) int {
	if a < b {
		return a
	}
	return b
}
