// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault_test

import (
	"testing"

	"github.com/bitmark-inc/marketd/fault"
)

// test that the classification predicates pick the right class
func TestErrorClassification(t *testing.T) {

	if !fault.IsErrUnauthorized(fault.ErrNotOwner) {
		t.Errorf("ErrNotOwner is not classified as unauthorized")
	}

	if !fault.IsErrNotFound(fault.ErrAssetNotFound) {
		t.Errorf("ErrAssetNotFound is not classified as not found")
	}

	if !fault.IsErrNotEmpty(fault.ErrCollectionNotEmpty) {
		t.Errorf("ErrCollectionNotEmpty is not classified as not empty")
	}

	if !fault.IsErrExists(fault.ErrAlreadyEmployed) {
		t.Errorf("ErrAlreadyEmployed is not classified as exists")
	}

	if !fault.IsErrWrongAmount(fault.ErrWrongPaymentAmount) {
		t.Errorf("ErrWrongPaymentAmount is not classified as wrong amount")
	}

	if !fault.IsErrReentrant(fault.ErrReentrantCall) {
		t.Errorf("ErrReentrantCall is not classified as reentrant")
	}

	if fault.IsErrInvalid(fault.ErrNotOwner) {
		t.Errorf("ErrNotOwner is wrongly classified as invalid")
	}
}

// errors must compare by identity
func TestErrorComparison(t *testing.T) {

	var err error = fault.ErrBidTooLow
	if err != fault.ErrBidTooLow {
		t.Errorf("identical error instances do not compare equal")
	}

	if fault.ErrBidTooLow.Error() != "bid does not exceed current highest bid" {
		t.Errorf("unexpected message: %q", fault.ErrBidTooLow.Error())
	}
}
