// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// #nosec G404
package metrics

import (
	"math/rand/v2"
	"strconv"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	dto "github.com/prometheus/client_model/go"
)

func gather(t *testing.T) map[string]*dto.MetricFamily {
	metricFamilies, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	families := make(map[string]*dto.MetricFamily)
	for _, mf := range metricFamilies {
		families[mf.GetName()] = mf
	}
	return families
}

func TestPromMetrics(t *testing.T) {
	InitializePrometheusMetrics()

	cranks := Counter("cranks_total")
	failures := CounterVec("adapter_failures_total", []string{"op"})
	units := Histogram("crank_units", BucketComputeUnits)
	epoch := Gauge("internal_epoch")
	stake := GaugeVec("validator_target_stake", []string{"validator"})

	n := rand.N(50) + 1
	for range n {
		Counter("cranks_total").Add(1)
	}

	unitsTotal := 0
	for i := range rand.N(20) + 2 {
		units.Observe(int64(i * 1000))
		unitsTotal += i * 1000
	}

	failuresTotal := 0
	for i := range rand.N(20) + 2 {
		failures.AddWithLabel(int64(i), map[string]string{"op": strconv.Itoa(i % 2)})
		failuresTotal += i
	}

	epoch.Set(41)
	epoch.Add(1)
	stake.SetWithLabel(7, map[string]string{"validator": "1"})
	stake.AddWithLabel(3, map[string]string{"validator": "1"})

	families := gather(t)

	require.Equal(t, float64(n), families["shmon_cranks_total"].Metric[0].GetCounter().GetValue())
	require.Equal(t, float64(unitsTotal), families["shmon_crank_units"].Metric[0].GetHistogram().GetSampleSum())
	sum := families["shmon_adapter_failures_total"].Metric[0].GetCounter().GetValue() +
		families["shmon_adapter_failures_total"].Metric[1].GetCounter().GetValue()
	require.Equal(t, float64(failuresTotal), sum)
	require.Equal(t, float64(42), families["shmon_internal_epoch"].Metric[0].GetGauge().GetValue())
	require.Equal(t, float64(10), families["shmon_validator_target_stake"].Metric[0].GetGauge().GetValue())
	require.Same(t, cranks, Counter("cranks_total"))
}

func TestLazyLoading(t *testing.T) {
	metrics = defaultNoopMetrics()

	for _, a := range []any{
		Gauge("noopGauge"),
		GaugeVec("noopGauge", nil),
		Counter("noopCounter"),
		CounterVec("noopCounter", nil),
		Histogram("noopHist", nil),
	} {
		require.IsType(t, &noopMeters{}, a)
	}

	lazyGauge := LazyLoadGauge("lazyGauge")
	lazyGaugeVec := LazyLoadGaugeVec("lazyGaugeVec", nil)
	lazyCounter := LazyLoadCounter("lazyCounter")
	lazyCounterVec := LazyLoadCounterVec("lazyCounterVec", nil)
	lazyHistogram := LazyLoadHistogram("lazyHistogram", nil)

	InitializePrometheusMetrics()

	require.IsType(t, &promGaugeMeter{}, lazyGauge())
	require.IsType(t, &promGaugeVecMeter{}, lazyGaugeVec())
	require.IsType(t, &promCountMeter{}, lazyCounter())
	require.IsType(t, &promCountVecMeter{}, lazyCounterVec())
	require.IsType(t, &promHistogramMeter{}, lazyHistogram())
}
