// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/getoptions"
	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/permchain/acceptance"
	"github.com/bitmark-inc/permchain/configuration"
	"github.com/bitmark-inc/permchain/entity"
	"github.com/bitmark-inc/permchain/filter"
	"github.com/bitmark-inc/permchain/permission"
	"github.com/bitmark-inc/permchain/storage"
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
		{Long: "version", HasArg: getoptions.NO_ARGUMENT, Short: 'V'},
		{Long: "config-file", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'c'},
		{Long: "height", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'H'},
		{Long: "check-only", HasArg: getoptions.NO_ARGUMENT, Short: 'n'},
		{Long: "spool", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 's'},
	}

	program, options, arguments, err := getoptions.GetOS(flags)
	if nil != err {
		exitwithstatus.Message("%s: getoptions error: %s", program, err)
	}

	if len(options["version"]) > 0 {
		processSetupCommand(program, []string{"version"})
		return
	}

	if len(options["help"]) > 0 {
		processSetupCommand(program, []string{"help"})
		return
	}

	// these commands do not require the configuration
	if len(arguments) > 0 && processSetupCommand(program, arguments) {
		return
	}

	if 1 != len(options["config-file"]) {
		exitwithstatus.Message("%s: only one config-file option is required, %d were detected", program, len(options["config-file"]))
	}

	// read options and parse the configuration file
	configurationFile := options["config-file"][0]
	theConfiguration, err := configuration.GetConfiguration(configurationFile)
	if nil != err {
		exitwithstatus.Message("%s: failed to read configuration from: %q  error: %s", program, configurationFile, err)
	}

	// these commands only enquire on the configuration
	if len(arguments) > 0 && processConfigCommand(arguments, theConfiguration) {
		return
	}

	height := -1
	if 1 == len(options["height"]) {
		height, err = strconv.Atoi(options["height"][0])
		if nil != err || height < -1 {
			exitwithstatus.Message("%s: invalid height: %q", program, options["height"][0])
		}
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

	log.Infof("chain: %s", theConfiguration.Chain)
	log.Infof("database: %q", theConfiguration.Database.Name)

	// start the data storage
	log.Info("initialise storage")
	db, err := storage.Open(theConfiguration.Database.Name, storage.ReadWrite)
	if nil != err {
		log.Criticalf("storage initialise error: %s", err)
		exitwithstatus.Message("storage initialise error: %s", err)
	}
	defer db.Close()

	parameters := &theConfiguration.Policy
	permissions := permission.New(db, parameters.PermissionOptions())
	entities := entity.New(db)
	permissions.SetHeight(height)
	entities.SetHeight(height)

	validator := acceptance.New(permissions, entities, parameters)

	var filters *filter.Gateway
	if theConfiguration.Filters.Enabled {
		log.Infof("filter timeout: %s", theConfiguration.Filters.Duration())
		filters = filter.New(entities, permissions, theConfiguration.Filters.Duration())
		validator.SetFilterGateway(filters)
	}

	spoolDirectory := ""
	if 1 == len(options["spool"]) {
		spoolDirectory = options["spool"][0]
	}

	if 0 == len(arguments) && "" == spoolDirectory {
		exitwithstatus.Message("%s: missing transaction file arguments", program)
	}

	r := newReplayer(log, validator, permissions, entities, filters, height)
	r.checkOnly = len(options["check-only"]) > 0
	r.verbose = len(options["verbose"]) > 0

	for _, fileName := range arguments {
		log.Infof("replay: %q", fileName)
		if err := r.replayFile(fileName); nil != err {
			log.Criticalf("replay: %q  error: %s", fileName, err)
			exitwithstatus.Message("%s: replay: %q  error: %s", program, fileName, err)
		}
	}

	if "" != spoolDirectory {
		s, err := newSpool(spoolDirectory, log)
		if nil != err {
			log.Criticalf("spool: %q  error: %s", spoolDirectory, err)
			exitwithstatus.Message("%s: spool: %q  error: %s", program, spoolDirectory, err)
		}

		// wait for CTRL-C SIGINT or SIGTERM
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
		log.Infof("watching spool: %q", spoolDirectory)
		s.run(r, shutdown)
	}
	r.finish()

	log.Infof("height: %d  accepted: %d  rejected: %d", r.height, r.accepted, r.rejected)
	fmt.Printf("height: %d  accepted: %d  rejected: %d\n", r.height, r.accepted, r.rejected)
	if r.rejected > 0 {
		exitwithstatus.Exit(2)
	}
}
