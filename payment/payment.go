// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package payment - native currency settlement ledger
//
// Fungible balances exist only for the native settlement currency;
// marketd is not a general token ledger.  A payee may have a Receiver
// hook registered, standing in for an account that reacts to incoming
// funds with calls of its own - which is exactly the reentrancy vector
// the registry guards exist for.  A multi-payout settlement is
// all-or-nothing: if any payout or hook fails every balance is
// restored.
package payment

import (
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/marketd/account"
	"github.com/bitmark-inc/marketd/fault"
)

// Receiver - reaction of a payee to incoming funds
//
// an error refuses the funds and aborts the whole settlement
type Receiver interface {
	Receive(from account.Account, amount uint64) error
}

// Payout - one leg of a settlement
type Payout struct {
	To     account.Account
	Amount uint64
}

// globals
var globalData struct {
	sync.RWMutex
	log         *logger.L
	balances    map[account.Account]uint64
	receivers   map[account.Account]Receiver
	initialised bool
}

// Initialise - start the ledger with empty balances
func Initialise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if globalData.initialised {
		return fault.ErrAlreadyInitialised
	}

	globalData.log = logger.New("payment")
	globalData.log.Info("starting…")

	globalData.balances = make(map[account.Account]uint64)
	globalData.receivers = make(map[account.Account]Receiver)

	globalData.initialised = true
	return nil
}

// Finalise - shut down the ledger
func Finalise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.ErrNotInitialised
	}

	globalData.log.Info("shutting down…")
	globalData.balances = nil
	globalData.receivers = nil
	globalData.initialised = false
	return nil
}

// Deposit - credit an account
//
// bootstrap faucet; a real deployment funds accounts from outside
func Deposit(to account.Account, amount uint64) {
	globalData.Lock()
	globalData.balances[to] += amount
	globalData.Unlock()
}

// Balance - current funds of an account
func Balance(acct account.Account) uint64 {
	globalData.RLock()
	defer globalData.RUnlock()
	return globalData.balances[acct]
}

// RegisterReceiver - attach a hook to a payee account
func RegisterReceiver(acct account.Account, receiver Receiver) {
	globalData.Lock()
	globalData.receivers[acct] = receiver
	globalData.Unlock()
}

// Transfer - move funds between two accounts
func Transfer(from account.Account, to account.Account, amount uint64) error {
	return Settle(from, []Payout{{To: to, Amount: amount}})
}

// Settle - apply a list of payouts from one payer, all or nothing
//
// balances move first, then each payee hook runs in payout order; a
// hook error rolls every balance back to the pre-settlement state
func Settle(from account.Account, payouts []Payout) error {
	globalData.Lock()

	if !globalData.initialised {
		globalData.Unlock()
		return fault.ErrNotInitialised
	}

	total := uint64(0)
	for _, payout := range payouts {
		total += payout.Amount
	}

	if globalData.balances[from] < total {
		globalData.Unlock()
		return fault.ErrInsufficientFunds
	}

	// snapshot for rollback: a hook may move funds of its own before failing
	snapshot := make(map[account.Account]uint64, len(globalData.balances))
	for acct, balance := range globalData.balances {
		snapshot[acct] = balance
	}

	globalData.balances[from] -= total
	hooks := make([]Receiver, len(payouts))
	for i, payout := range payouts {
		globalData.balances[payout.To] += payout.Amount
		hooks[i] = globalData.receivers[payout.To]
	}
	log := globalData.log
	globalData.Unlock()

	// hooks run outside the ledger lock so a payee can legitimately
	// spend what it just received
	for i, hook := range hooks {
		if nil == hook || 0 == payouts[i].Amount {
			continue
		}
		err := hook.Receive(from, payouts[i].Amount)
		if nil != err {
			log.Warnf("payout to: %s refused: %s", payouts[i].To, err)
			globalData.Lock()
			globalData.balances = snapshot
			globalData.Unlock()
			return err
		}
	}

	return nil
}
