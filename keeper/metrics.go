// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package keeper

import (
	"github.com/shmonad/shmon/metrics"
)

var (
	metricKeeperRuns    = metrics.LazyLoadCounterVec("keeper_runs_total", []string{"job", "result"})
	metricKeeperCranks  = metrics.LazyLoadHistogram("keeper_cranks_per_run", []int64{0, 1, 2, 4, 8, 16, 32, 64, 128})
	metricLedgerAmounts = metrics.LazyLoadGaugeVec("ledger_amount_mon", []string{"kind"})
	metricValidators    = metrics.LazyLoadGauge("ledger_validators")
)
