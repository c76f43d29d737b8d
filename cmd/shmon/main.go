// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/shmonad/shmon/log"
)

var (
	version   string
	gitCommit string
	gitTag    string
	logger    = log.WithContext("pkg", "main")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Version = fullVersion()
	app.Name = "shmon"
	app.Usage = "Liquid staking ledger keeper"
	app.Copyright = "2025 The VeChainThor developers"
	app.Commands = []cli.Command{
		{
			Name:  "solo",
			Usage: "run the ledger against a simulated staking precompile",
			Flags: []cli.Flag{
				configFlag,
				dataDirFlag,
				persistFlag,
				validatorsFlag,
				depositFlag,
				apiAddrFlag,
				apiCorsFlag,
				apiAllowCrankFlag,
				enableAPILogsFlag,
				enableMetricsFlag,
				pprofFlag,
				adminAddrFlag,
				maxCrankAgeFlag,
				verbosityFlag,
				jsonLogsFlag,
			},
			Action: soloAction,
		},
		{
			Name:  "inspect",
			Usage: "print the state of a persisted ledger",
			Flags: []cli.Flag{
				configFlag,
				dataDirFlag,
				verbosityFlag,
			},
			Action: inspectAction,
		},
		{
			Name:  "quote",
			Usage: "price an atomic unstake offline",
			Flags: []cli.Flag{
				configFlag,
				allocatedFlag,
				utilizedFlag,
				grossFlag,
				netFlag,
			},
			Action: quoteAction,
		},
	}
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
