// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shmonad/shmon/keeper"
	"github.com/shmonad/shmon/kv"
	"github.com/shmonad/shmon/ledger"
	"github.com/shmonad/shmon/shmon"
	"github.com/shmonad/shmon/staking/sim"
)

func TestOpenLedger(t *testing.T) {
	db, err := kv.NewMem()
	require.NoError(t, err)
	defer db.Close()
	cfg := defaultConfig()

	_, _, err = openLedger(db, sim.New(cfg.Sim), cfg, 0)
	assert.Error(t, err)

	chain := sim.New(cfg.Sim)
	l, resumed, err := openLedger(db, chain, cfg, 3)
	require.NoError(t, err)
	assert.False(t, resumed)
	assert.Len(t, l.Validators(), 3)

	// run an epoch through the keeper so there is state to resume
	svc := keeper.New(l, ledgerBucket.NewPutter(db), cfg.Keeper)
	svc.SetChain(chain)
	require.NoError(t, svc.Update(func(l *ledger.Ledger) error {
		_, err := l.Deposit(shmon.Mon(10))
		return err
	}))
	require.NoError(t, svc.AdvanceEpoch())
	_, err = svc.CrankAll()
	require.NoError(t, err)
	require.NoError(t, saveSim(db, chain))

	var equity = l.Equity()
	resumedChain := sim.New(cfg.Sim)
	l2, resumed, err := openLedger(db, resumedChain, cfg, 3)
	require.NoError(t, err)
	assert.True(t, resumed)
	assert.Equal(t, uint64(1), l2.InternalEpoch())
	assert.Equal(t, equity, l2.Equity())
	require.NoError(t, l2.CheckInvariants())
}

func TestRender(t *testing.T) {
	db, err := kv.NewMem()
	require.NoError(t, err)
	defer db.Close()
	cfg := defaultConfig()

	l, _, err := openLedger(db, sim.New(cfg.Sim), cfg, 2)
	require.NoError(t, err)

	var buf bytes.Buffer
	renderSummary(&buf, l)
	renderEpochs(&buf, l)
	renderValidators(&buf, l)
	out := buf.String()
	assert.Contains(t, out, "internal epoch")
	assert.Contains(t, out, "Queue to stake")
	assert.Contains(t, out, "Pending unstake")
	assert.Contains(t, out, "-7")

	svc := keeper.New(l, nil, cfg.Keeper)
	buf.Reset()
	printSoloStartupMessage(&buf, svc, "Memory", "http://localhost:8670/", "disabled", false)
	assert.Contains(t, buf.String(), "shmon solo")
	assert.Contains(t, buf.String(), "Target stake")
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "0.1%", percent(shmon.NewAmount(1e15)))
	assert.Equal(t, "100%", percent(shmon.Base))
}
