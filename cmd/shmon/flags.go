// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

var (
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "path to a YAML config file (ledger, keeper and sim sections)",
	}
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for the ledger database",
	}
	persistFlag = cli.BoolFlag{
		Name:  "persist",
		Usage: "keep the ledger on disk instead of in memory",
	}
	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Value: "localhost:8670",
		Usage: "API service listening address",
	}
	apiCorsFlag = cli.StringFlag{
		Name:  "api-cors",
		Value: "",
		Usage: "comma separated list of domains from which to accept cross origin requests to API",
	}
	apiAllowCrankFlag = cli.BoolFlag{
		Name:  "api-allow-crank",
		Usage: "expose POST /crank for manual cranking",
	}
	enableAPILogsFlag = cli.BoolFlag{
		Name:  "enable-api-logs",
		Usage: "enables API requests logging",
	}
	pprofFlag = cli.BoolFlag{
		Name:  "pprof",
		Usage: "turn on go-pprof",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "enables metrics collection, served at /metrics",
	}
	adminAddrFlag = cli.StringFlag{
		Name:  "admin-addr",
		Value: "",
		Usage: "admin service listening address, disabled when empty",
	}
	maxCrankAgeFlag = cli.DurationFlag{
		Name:  "max-crank-age",
		Value: defaultMaxCrankAge,
		Usage: "longest time without a successful crank before the keeper reports unhealthy",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: 3,
		Usage: "log verbosity (0-5)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "output logs in JSON format",
	}

	// solo
	validatorsFlag = cli.IntFlag{
		Name:  "validators",
		Value: 4,
		Usage: "number of simulated validators",
	}
	depositFlag = cli.StringFlag{
		Name:  "deposit",
		Value: "0",
		Usage: "MON deposited into the ledger at start, in wei",
	}

	// quote
	allocatedFlag = cli.StringFlag{
		Name:  "allocated",
		Usage: "pool allocation in wei",
	}
	utilizedFlag = cli.StringFlag{
		Name:  "utilized",
		Value: "0",
		Usage: "pool utilized amount in wei",
	}
	grossFlag = cli.StringFlag{
		Name:  "gross",
		Usage: "gross amount to unstake in wei",
	}
	netFlag = cli.StringFlag{
		Name:  "net",
		Usage: "net amount to receive in wei",
	}
)
