// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package atomic

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shmonad/shmon/api/utils"
	"github.com/shmonad/shmon/keeper"
	"github.com/shmonad/shmon/ledger"
	"github.com/shmonad/shmon/shmon"
	"github.com/shmonad/shmon/staking/sim"
)

func newServer(t *testing.T, targetLiquidity uint256.Int) *httptest.Server {
	chain := sim.New(sim.Config{EpochBlocks: 10, BoundaryBlocks: 2, WithdrawalDelay: 2})
	chain.AddValidator(1, uint256.Int{})

	params := ledger.DefaultParams()
	params.TargetLiquidity = targetLiquidity
	l, err := ledger.New(chain, params)
	require.NoError(t, err)
	require.NoError(t, l.AddValidator(1))
	_, err = l.Deposit(shmon.Mon(100))
	require.NoError(t, err)

	svc := keeper.New(l, nil, keeper.DefaultOptions())
	chain.NextEpoch()
	_, err = svc.CrankAll()
	require.NoError(t, err)

	router := mux.NewRouter()
	New(svc).Mount(router, "/atomic")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts
}

func httpGet(t *testing.T, url string) ([]byte, int) {
	res, err := http.Get(url) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return body, res.StatusCode
}

func TestPool(t *testing.T) {
	ts := newServer(t, shmon.NewAmount(1e17))

	body, status := httpGet(t, ts.URL+"/atomic")
	require.Equal(t, http.StatusOK, status)

	var pool Pool
	require.NoError(t, json.Unmarshal(body, &pool))
	assert.Equal(t, "10000000000000000000", pool.Allocated)
	assert.Equal(t, pool.Allocated, pool.Liquidity)
	assert.Equal(t, "0", pool.Utilization)
	assert.Equal(t, "1000000000000000", pool.Rate)
}

func TestQuote(t *testing.T) {
	ts := newServer(t, shmon.NewAmount(1e17))

	body, status := httpGet(t, ts.URL+"/atomic/quote?gross=1000000000000000000")
	require.Equal(t, http.StatusOK, status, string(body))
	var q Quote
	require.NoError(t, json.Unmarshal(body, &q))
	assert.Equal(t, "1000000000000000000", q.Gross)
	assert.False(t, q.Clamped)
	net, err := shmon.ParseAmount(q.Net)
	require.NoError(t, err)
	fee, err := shmon.ParseAmount(q.Fee)
	require.NoError(t, err)
	gross := shmon.Add(net, fee)
	assert.Equal(t, q.Gross, gross.Dec())

	body, status = httpGet(t, ts.URL+"/atomic/quote?net=1000000000000000000")
	require.Equal(t, http.StatusOK, status, string(body))
	require.NoError(t, json.Unmarshal(body, &q))
	assert.Equal(t, "1000000000000000000", q.Net)

	// quoting does not move the pool
	body, _ = httpGet(t, ts.URL+"/atomic")
	var pool Pool
	require.NoError(t, json.Unmarshal(body, &pool))
	assert.Equal(t, "0", pool.Distributed)
}

func TestQuoteRejected(t *testing.T) {
	ts := newServer(t, uint256.Int{})

	for url, expected := range map[string]int{
		"/atomic/quote":                    http.StatusBadRequest,
		"/atomic/quote?gross=1&net=1":      http.StatusBadRequest,
		"/atomic/quote?gross=abc":          http.StatusBadRequest,
		"/atomic/quote?gross=0":            http.StatusConflict,
		"/atomic/quote?gross=100000000000": http.StatusConflict,
	} {
		_, status := httpGet(t, ts.URL+url)
		assert.Equal(t, expected, status, url)
	}
}

func TestQuoteContentType(t *testing.T) {
	ts := newServer(t, shmon.NewAmount(1e17))

	res, err := http.Get(ts.URL + "/atomic/quote?gross=1000") //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, utils.JSONContentType, res.Header.Get("Content-Type"))
}
