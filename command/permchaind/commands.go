// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"

	"github.com/bitmark-inc/exitwithstatus"

	"github.com/bitmark-inc/permchain/configuration"
)

// setup command handler
//
// commands that do not need the configuration file
func processSetupCommand(program string, arguments []string) bool {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
	}

	switch command {
	case "version", "v":
		fmt.Printf("%s\n", version)

	case "help", "h", "?":
		fmt.Printf("supported commands:\n\n")
		fmt.Printf("  help                       (h)      - display this message\n\n")
		fmt.Printf("  version                    (v)      - display version string\n\n")
		fmt.Printf("  dump-config                (dc)     - display the parsed configuration\n\n")
		fmt.Printf("  FILE...                             - replay transaction files\n\n")
		fmt.Printf("transaction file lines:\n\n")
		fmt.Printf("  # comment\n")
		fmt.Printf("  block TIMESTAMP                     - start a block, closing any open block\n")
		fmt.Printf("  mempool                             - close any open block\n")
		fmt.Printf("  HEX                                 - a packed transaction\n\n")
		fmt.Printf("options:\n\n")
		fmt.Printf("  --config-file=FILE         -c FILE  - configuration file\n")
		fmt.Printf("  --height=N                 -H N     - height of the stores, default -1\n")
		fmt.Printf("  --check-only               -n       - validate without storing\n")
		fmt.Printf("  --spool=DIR                -s DIR   - replay *.txs files renamed into DIR until signalled\n")
		fmt.Printf("  --verbose                  -v       - print every result\n\n")
		fmt.Printf("program: %s\n", program)

	default:
		return false
	}

	return true
}

// configuration command handler
//
// commands that only read the configuration
func processConfigCommand(arguments []string, options *configuration.Configuration) bool {

	switch arguments[0] {
	case "dump-config", "dc":
		b, err := json.MarshalIndent(options, "", "  ")
		if nil != err {
			exitwithstatus.Message("dump-config: error: %s", err)
		}
		fmt.Printf("%s\n", b)

	default:
		return false
	}

	return true
}
