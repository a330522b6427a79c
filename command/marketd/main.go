// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/getoptions"
	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/marketd/account"
	"github.com/bitmark-inc/marketd/asset"
	"github.com/bitmark-inc/marketd/background"
	"github.com/bitmark-inc/marketd/business"
	"github.com/bitmark-inc/marketd/collection"
	"github.com/bitmark-inc/marketd/fees"
	"github.com/bitmark-inc/marketd/market"
	"github.com/bitmark-inc/marketd/payment"
	"github.com/bitmark-inc/marketd/storage"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

// main program
func main() {
	// ensure exit handler is first
	defer exitwithstatus.Handler()

	flags := []getoptions.Option{
		{Long: "help", HasArg: getoptions.NO_ARGUMENT, Short: 'h'},
		{Long: "verbose", HasArg: getoptions.NO_ARGUMENT, Short: 'v'},
		{Long: "quiet", HasArg: getoptions.NO_ARGUMENT, Short: 'q'},
		{Long: "version", HasArg: getoptions.NO_ARGUMENT, Short: 'V'},
		{Long: "config-file", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'c'},
	}

	program, options, _, err := getoptions.GetOS(flags)
	if nil != err {
		exitwithstatus.Message("%s: getoptions error: %s", program, err)
	}

	if len(options["version"]) > 0 {
		exitwithstatus.Message("%s: version: %s", program, version)
	}

	if len(options["help"]) > 0 {
		exitwithstatus.Message("usage: %s [--help] [--verbose] [--quiet] --config-file=FILE", program)
	}

	if 1 != len(options["config-file"]) {
		exitwithstatus.Message("%s: only one config-file option is required, %d were detected", program, len(options["config-file"]))
	}

	// read options and parse the configuration file
	configurationFile := options["config-file"][0]
	theConfiguration, err := getConfiguration(configurationFile)
	if nil != err {
		exitwithstatus.Message("%s: failed to read configuration from: %q  error: %s", program, configurationFile, err)
	}

	// decode the marketplace identities
	marketplaceAccount, err := account.FromBase58(theConfiguration.Marketplace)
	if nil != err {
		exitwithstatus.Message("%s: invalid marketplace account: %q  error: %s", program, theConfiguration.Marketplace, err)
	}
	administratorAccount, err := account.FromBase58(theConfiguration.Administrator)
	if nil != err {
		exitwithstatus.Message("%s: invalid administrator account: %q  error: %s", program, theConfiguration.Administrator, err)
	}
	feeAccount, err := account.FromBase58(theConfiguration.FeeAccount)
	if nil != err {
		exitwithstatus.Message("%s: invalid fee account: %q  error: %s", program, theConfiguration.FeeAccount, err)
	}

	feePercent := fees.Percent(theConfiguration.FeePercent)
	if err := feePercent.Validate(); nil != err {
		exitwithstatus.Message("%s: invalid fee percent: %d  error: %s", program, theConfiguration.FeePercent, err)
	}

	// start logging
	if err = logger.Initialise(theConfiguration.Logging); nil != err {
		exitwithstatus.Message("%s: logger setup failed with error: %s", program, err)
	}
	defer logger.Finalise()

	// create a logger channel for the main program
	log := logger.New("main")
	defer log.Info("finished")
	log.Info("starting…")
	log.Infof("version: %s", version)
	log.Debugf("theConfiguration: %v", theConfiguration)

	// ------------------
	// start of real main
	// ------------------

	// optional PID file
	// use if not running under a supervisor program like daemon(8)
	if "" != theConfiguration.PidFile {
		lockFile, err := os.OpenFile(theConfiguration.PidFile, os.O_WRONLY|os.O_EXCL|os.O_CREATE, os.ModeExclusive|0600)
		if err != nil {
			if os.IsExist(err) {
				exitwithstatus.Message("%s: another instance is already running", program)
			}
			exitwithstatus.Message("%s: PID file: %q creation failed, error: %s", program, theConfiguration.PidFile, err)
		}
		fmt.Fprintf(lockFile, "%d\n", os.Getpid())
		lockFile.Close()
		defer os.Remove(theConfiguration.PidFile)
	}

	// general info
	log.Infof("database: %q", theConfiguration.Database)
	log.Infof("marketplace: %s", marketplaceAccount)
	log.Infof("fee percent: %d", feePercent)

	// start the data storage
	log.Info("initialise storage")
	err = storage.Initialise(theConfiguration.Database.Name)
	if nil != err {
		log.Criticalf("storage initialise error: %s", err)
		exitwithstatus.Message("storage initialise error: %s", err)
	}
	defer storage.Finalise()

	// the payment ledger
	log.Info("initialise payment")
	err = payment.Initialise()
	if nil != err {
		log.Criticalf("payment initialise error: %s", err)
		exitwithstatus.Message("payment initialise error: %s", err)
	}
	defer payment.Finalise()

	// the asset registry
	log.Info("initialise asset")
	err = asset.Initialise(administratorAccount, storage.Pool.Assets)
	if nil != err {
		log.Criticalf("asset initialise error: %s", err)
		exitwithstatus.Message("asset initialise error: %s", err)
	}
	defer asset.Finalise()

	// the collection registry
	log.Info("initialise collection")
	err = collection.Initialise(administratorAccount, storage.Pool.Collections)
	if nil != err {
		log.Criticalf("collection initialise error: %s", err)
		exitwithstatus.Message("collection initialise error: %s", err)
	}
	defer collection.Finalise()

	// the business registry
	log.Info("initialise business")
	err = business.Initialise(administratorAccount, storage.Pool.Businesses)
	if nil != err {
		log.Criticalf("business initialise error: %s", err)
		exitwithstatus.Message("business initialise error: %s", err)
	}
	defer business.Finalise()

	// the marketplace orchestrator
	log.Info("initialise market")
	err = market.Initialise(marketplaceAccount, administratorAccount, feeAccount, feePercent, nil, storage.Pool.Auctions)
	if nil != err {
		log.Criticalf("market initialise error: %s", err)
		exitwithstatus.Message("market initialise error: %s", err)
	}
	defer market.Finalise()

	// hand the orchestrator identity to the registries
	err = market.RegisterWithRegistries()
	if nil != err {
		log.Criticalf("market registration error: %s", err)
		exitwithstatus.Message("market registration error: %s", err)
	}

	// drain registry events to the log
	processes := background.Processes{
		&eventLogger{log: logger.New("events")},
	}
	backgrounds := background.Start(processes, nil)
	defer backgrounds.Stop()

	// wait for CTRL-C before shutting down to allow manual testing
	if 0 == len(options["quiet"]) {
		fmt.Printf("\n\nWaiting for CTRL-C (SIGINT) or 'kill <pid>' (SIGTERM)…")
	}

	// turn Signals into channel messages
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	sig := <-ch
	log.Infof("received signal: %v", sig)
	if 0 == len(options["quiet"]) {
		fmt.Printf("\nreceived signal: %v\n", sig)
		fmt.Printf("\nshutting down…\n")
	}

	log.Info("shutting down…")
}
