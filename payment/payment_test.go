// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package payment_test

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/marketd/account"
	"github.com/bitmark-inc/marketd/fault"
	"github.com/bitmark-inc/marketd/fixtures"
	"github.com/bitmark-inc/marketd/payment"
)

func TestMain(m *testing.M) {
	fixtures.SetupTestLogger()
	rc := m.Run()
	fixtures.TeardownTestLogger()
	os.Exit(rc)
}

func setup(t *testing.T) func() {
	assert.NoError(t, payment.Initialise(), "payment initialise failed")
	return func() {
		_ = payment.Finalise()
	}
}

func TestTransfer(t *testing.T) {
	defer setup(t)()

	alpha := fixtures.Account(1)
	beta := fixtures.Account(2)

	payment.Deposit(alpha, 1000)

	assert.NoError(t, payment.Transfer(alpha, beta, 400), "transfer failed")
	assert.Equal(t, uint64(600), payment.Balance(alpha), "payer balance")
	assert.Equal(t, uint64(400), payment.Balance(beta), "payee balance")

	err := payment.Transfer(alpha, beta, 601)
	assert.Equal(t, fault.ErrInsufficientFunds, err, "overdraft allowed")
	assert.Equal(t, uint64(600), payment.Balance(alpha), "payer balance changed on failure")
}

func TestSettleAllOrNothing(t *testing.T) {
	defer setup(t)()

	buyer := fixtures.Account(3)
	feeAccount := fixtures.Account(4)
	seller := fixtures.Account(5)

	payment.Deposit(buyer, 1000000)

	err := payment.Settle(buyer, []payment.Payout{
		{To: feeAccount, Amount: 20000},
		{To: seller, Amount: 980000},
	})
	assert.NoError(t, err, "settle failed")
	assert.Equal(t, uint64(0), payment.Balance(buyer), "buyer balance")
	assert.Equal(t, uint64(20000), payment.Balance(feeAccount), "fee account balance")
	assert.Equal(t, uint64(980000), payment.Balance(seller), "seller balance")
}

type refuser struct{}

func (r refuser) Receive(from account.Account, amount uint64) error {
	return errors.New("payee refuses funds")
}

func TestSettleRollsBackOnRefusal(t *testing.T) {
	defer setup(t)()

	buyer := fixtures.Account(6)
	feeAccount := fixtures.Account(7)
	seller := fixtures.Account(8)

	payment.Deposit(buyer, 500)
	payment.RegisterReceiver(seller, refuser{})

	err := payment.Settle(buyer, []payment.Payout{
		{To: feeAccount, Amount: 10},
		{To: seller, Amount: 490},
	})
	assert.Error(t, err, "refused settlement succeeded")
	assert.Equal(t, uint64(500), payment.Balance(buyer), "buyer balance not restored")
	assert.Equal(t, uint64(0), payment.Balance(feeAccount), "fee account balance not restored")
	assert.Equal(t, uint64(0), payment.Balance(seller), "seller balance not restored")
}

type spender struct {
	to account.Account
}

func (s spender) Receive(from account.Account, amount uint64) error {
	// a payee contract immediately forwarding half of what it received
	return payment.Transfer(fixtures.Account(9), s.to, amount/2)
}

func TestSettleHookMayspend(t *testing.T) {
	defer setup(t)()

	buyer := fixtures.Account(20)
	seller := fixtures.Account(9)
	charity := fixtures.Account(10)

	payment.Deposit(buyer, 100)
	payment.RegisterReceiver(seller, spender{to: charity})

	assert.NoError(t, payment.Transfer(buyer, seller, 100), "transfer failed")
	assert.Equal(t, uint64(50), payment.Balance(seller), "seller balance")
	assert.Equal(t, uint64(50), payment.Balance(charity), "charity balance")
}
