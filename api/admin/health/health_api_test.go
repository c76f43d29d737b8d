// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shmonad/shmon/keeper"
)

type fakeReporter struct {
	maxAge time.Duration
	status keeper.Status
}

func (f *fakeReporter) Status(maxAge time.Duration) keeper.Status {
	f.maxAge = maxAge
	return f.status
}

func get(t *testing.T, h *API, url string) (*httptest.ResponseRecorder, keeper.Status) {
	router := mux.NewRouter()
	h.Mount(router, "/health")

	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	var status keeper.Status
	if rr.Code != http.StatusBadRequest {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
	}
	return rr, status
}

func TestHealth(t *testing.T) {
	now := time.Now()
	reporter := &fakeReporter{status: keeper.Status{Healthy: true, InternalEpoch: 7, LastCrank: &now}}
	h := NewAPI(reporter, time.Minute)

	rr, status := get(t, h, "/health")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, status.Healthy)
	assert.Equal(t, uint64(7), status.InternalEpoch)
	assert.Equal(t, time.Minute, reporter.maxAge)

	reporter.status = keeper.Status{Frozen: true}
	rr, status = get(t, h, "/health?maxCrankAge=5s")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.False(t, status.Healthy)
	assert.True(t, status.Frozen)
	assert.Nil(t, status.LastCrank)
	assert.Equal(t, 5*time.Second, reporter.maxAge)

	rr, _ = get(t, h, "/health?maxCrankAge=soon")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
