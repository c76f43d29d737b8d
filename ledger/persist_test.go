// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shmonad/shmon/kv"
)

func TestEncodeDecode(t *testing.T) {
	lt := staked(t, testParams()).RequestUnstake(mon(10))
	lt.sim.NextEpoch()
	// stop in the middle of a round
	_, err := lt.Crank(0)
	require.NoError(t, err)

	data, err := lt.Encode()
	require.NoError(t, err)

	decoded, err := Decode(data, lt.sim, lt.Params())
	require.NoError(t, err)
	again, err := decoded.Encode()
	require.NoError(t, err)
	assert.Equal(t, data, again)

	assert.Equal(t, lt.Cursor(), decoded.Cursor())
	assert.Equal(t, lt.Books(), decoded.Books())
	assert.Equal(t, lt.Balance(), decoded.Balance())
	require.NoError(t, decoded.CheckInvariants())

	// the decoded ledger finishes the round the same way
	resumed := &LedgerTest{Ledger: decoded, t: t, sim: lt.sim}
	resumed.CrankAll().
		AssertTarget(1, sum(mon(67), n(5e17), n(6e9))).
		AssertTarget(2, sum(mon(22), n(5e17), n(2e9)))
}

func TestDecodeRejectsGarbage(t *testing.T) {
	lt := newTest(t, testParams())

	_, err := Decode([]byte{0x01, 0x02}, lt.sim, lt.Params())
	assert.Error(t, err)
}

func TestSaveLoad(t *testing.T) {
	store, err := kv.NewMem()
	require.NoError(t, err)
	defer store.Close()

	lt := staked(t, testParams())

	_, found, err := Load(store, lt.sim, lt.Params())
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, lt.Save(store))
	loaded, found, err := Load(store, lt.sim, lt.Params())
	require.NoError(t, err)
	require.True(t, found)

	want, err := lt.Encode()
	require.NoError(t, err)
	got, err := loaded.Encode()
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, lt.InternalEpoch(), loaded.InternalEpoch())
	assert.Len(t, loaded.Validators(), 2)
}
