// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

func main() {

	app := cli.NewApp()
	app.Name = "permchain-cli"
	app.Usage = "inspect permchain transactions and stores"
	app.Version = version
	app.HideVersion = true

	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config-file, c",
			Value: "",
			Usage: " permchaind configuration `FILE`",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "decode",
			Usage:     "decode a packed transaction",
			ArgsUsage: "HEX\n   (* = required)",
			Action:    runDecode,
		},
		{
			Name:      "entity",
			Usage:     "look up an entity by name, txid, short id or ref",
			ArgsUsage: "IDENTIFIER\n   (* = required)",
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "follow-ons, f",
					Usage: " also list follow-on records",
				},
			},
			Action: runEntity,
		},
		{
			Name:      "permissions",
			Usage:     "list the permission records of an address",
			ArgsUsage: "ADDRESS\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "entity, e",
					Value: "",
					Usage: " entity `IDENTIFIER` [default global]",
				},
			},
			Action: runPermissions,
		},
		{
			Name:      "votes",
			Usage:     "list the admin votes on an upgrade or filter",
			ArgsUsage: "IDENTIFIER\n   (* = required)",
			Action:    runVotes,
		},
		{
			Name:   "version",
			Usage:  "display version",
			Action: runVersion,
		},
	}

	err := app.Run(os.Args)
	if nil != err {
		fmt.Fprintf(app.ErrWriter, "terminated with error: %s\n", err)
		os.Exit(1)
	}
}

func runVersion(c *cli.Context) error {
	fmt.Fprintf(c.App.Writer, "%s\n", version)
	return nil
}
