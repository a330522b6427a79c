// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fees_test

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/bitmark-inc/marketd/fault"
	"github.com/bitmark-inc/marketd/fees"
)

func TestValidate(t *testing.T) {

	if nil != fees.Percent(0).Validate() {
		t.Errorf("0 percent rejected")
	}
	if nil != fees.Percent(100).Validate() {
		t.Errorf("100 percent rejected")
	}
	if fault.ErrFeePercentOutOfRange != fees.Percent(101).Validate() {
		t.Errorf("101 percent accepted")
	}
}

func TestApplyTruncates(t *testing.T) {

	// 2% of 1,000,000 = 20,000 exactly
	if 20000 != fees.Percent(2).Apply(1000000) {
		t.Errorf("2%% of 1000000: %d  expected: 20000", fees.Percent(2).Apply(1000000))
	}

	// 3% of 101 = 3.03 → 3
	if 3 != fees.Percent(3).Apply(101) {
		t.Errorf("3%% of 101: %d  expected: 3", fees.Percent(3).Apply(101))
	}
}

// prices near the top of the uint64 range must not wrap in the
// intermediate multiplication
func TestApplyLargePrice(t *testing.T) {

	// 3% of 2^63 = 276701161105643274 (truncated)
	if 276701161105643274 != fees.Percent(3).Apply(1<<63) {
		t.Errorf("3%% of 2^63: %d  expected: 276701161105643274", fees.Percent(3).Apply(1<<63))
	}

	// 100% is the identity
	if ^uint64(0) != fees.Percent(100).Apply(^uint64(0)) {
		t.Errorf("100%% of max: %d", fees.Percent(100).Apply(^uint64(0)))
	}
}

func TestSplitScenario(t *testing.T) {

	// direct sale of 1,000,000 at 2% marketplace fee
	m, b, s := fees.Split(1000000, 2, 0)
	if 20000 != m || 0 != b || 980000 != s {
		t.Errorf("split: %d %d %d  expected: 20000 0 980000", m, b, s)
	}

	// business sale: 2% marketplace + 5% business → seller keeps 93%
	m, b, s = fees.Split(1000000, 2, 5)
	if 20000 != m || 50000 != b || 930000 != s {
		t.Errorf("split: %d %d %d  expected: 20000 50000 930000", m, b, s)
	}
}

// the three terms must always reconstruct the price exactly
func TestSplitExact(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		price := rapid.Uint64().Draw(t, "price")
		mRate := fees.Percent(rapid.Uint64Range(0, 50).Draw(t, "mRate"))
		bRate := fees.Percent(rapid.Uint64Range(0, 50).Draw(t, "bRate"))

		m, b, s := fees.Split(price, mRate, bRate)
		if m+b+s != price {
			t.Fatalf("split of %d at %d%%+%d%% does not sum: %d + %d + %d", price, mRate, bRate, m, b, s)
		}
	})
}
