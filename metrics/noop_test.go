// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNoopMetrics(t *testing.T) {
	m := defaultNoopMetrics()
	server := httptest.NewServer(m.GetOrCreateHandler())
	t.Cleanup(server.Close)

	m.GetOrCreateCountMeter("count1").Add(1)
	m.GetOrCreateHistogramMeter("hist1", nil).Observe(3)
	m.GetOrCreateCountVecMeter("countVec1", []string{"op"}).AddWithLabel(1, map[string]string{"bogus": "label"})
	m.GetOrCreateGaugeVecMeter("gaugeVec1", []string{"op"}).SetWithLabel(1, map[string]string{"bogus": "label"})

	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
