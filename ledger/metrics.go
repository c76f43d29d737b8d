// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/shmonad/shmon/metrics"
)

var (
	metricCrankCount        = metrics.LazyLoadCounterVec("crank_count", []string{"kind"})
	metricCrankUnits        = metrics.LazyLoadHistogram("crank_compute_units", metrics.BucketComputeUnits)
	metricCrankValidators   = metrics.LazyLoadHistogram("crank_validators", metrics.BucketValidators)
	metricAdapterFailures   = metrics.LazyLoadCounterVec("adapter_failures_total", []string{"op", "reason"})
	metricInternalEpoch     = metrics.LazyLoadGauge("internal_epoch")
	metricFlowCount         = metrics.LazyLoadCounterVec("flow_count", []string{"kind"})
	metricCircuitBreaker    = metrics.LazyLoadCounter("circuit_breaker_trips")
	metricPayoutHookFailure = metrics.LazyLoadCounter("payout_hook_failures_total")
)
