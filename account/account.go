// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package account - identity values for every caller on the marketplace
//
// An account is an ED25519 public key; sellers, buyers, business
// admins, employees and the marketplace itself are all plain account
// values.  The type is a fixed-size comparable value so registries can
// key maps by account, and the zero account acts as the "nobody"
// sentinel (e.g. an auction with no bidder yet).
package account

import (
	"bytes"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/ed25519"
	"golang.org/x/crypto/sha3"

	"github.com/bitmark-inc/marketd/fault"
)

// enumeration of supported key algorithms
const (
	ED25519 = 0x01
)

// miscellaneous constants
const (
	checksumLength  = 4
	publicKeyLength = ed25519.PublicKeySize
)

// Account - a single marketplace identity
type Account struct {
	PublicKey [publicKeyLength]byte
}

// FromBytes - wrap a raw ED25519 public key
func FromBytes(publicKey []byte) (Account, error) {
	if publicKeyLength != len(publicKey) {
		return Account{}, fault.ErrNotPublicKey
	}
	account := Account{}
	copy(account.PublicKey[:], publicKey)
	return account, nil
}

// FromBase58 - decode the text form of an account
//
// the encoding is: algorithm byte, public key, 4 byte checksum
func FromBase58(accountBase58Encoded string) (Account, error) {
	accountDecoded, err := base58.Decode(accountBase58Encoded)
	if nil != err {
		return Account{}, fault.ErrCannotDecodeAccount
	}

	if 1+publicKeyLength+checksumLength != len(accountDecoded) {
		return Account{}, fault.ErrCannotDecodeAccount
	}

	if ED25519 != accountDecoded[0] {
		return Account{}, fault.ErrNotPublicKey
	}

	checksumStart := 1 + publicKeyLength
	digest := sha3.Sum256(accountDecoded[:checksumStart])
	if !bytes.Equal(digest[:checksumLength], accountDecoded[checksumStart:]) {
		return Account{}, fault.ErrInvalidChecksum
	}

	return FromBytes(accountDecoded[1:checksumStart])
}

// IsZero - true for the "nobody" account
func (account Account) IsZero() bool {
	return Account{} == account
}

// Bytes - the raw public key
func (account Account) Bytes() []byte {
	return account.PublicKey[:]
}

// String - base58 encoding of algorithm byte, key and checksum
func (account Account) String() string {
	buffer := make([]byte, 0, 1+publicKeyLength+checksumLength)
	buffer = append(buffer, ED25519)
	buffer = append(buffer, account.PublicKey[:]...)
	digest := sha3.Sum256(buffer)
	buffer = append(buffer, digest[:checksumLength]...)
	return base58.Encode(buffer)
}

// MarshalText - convert an account to text
func (account Account) MarshalText() ([]byte, error) {
	return []byte(account.String()), nil
}

// UnmarshalText - convert a text form back to an account
func (account *Account) UnmarshalText(s []byte) error {
	a, err := FromBase58(string(s))
	if nil != err {
		return err
	}
	*account = a
	return nil
}

// CheckSignature - verify a message was signed by this account
func (account Account) CheckSignature(message []byte, signature []byte) error {
	if ed25519.SignatureSize != len(signature) {
		return fault.ErrInvalidSignature
	}
	if !ed25519.Verify(account.PublicKey[:], message, signature) {
		return fault.ErrInvalidSignature
	}
	return nil
}
