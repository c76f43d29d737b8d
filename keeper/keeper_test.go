// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package keeper

import (
	"context"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shmonad/shmon/kv"
	"github.com/shmonad/shmon/ledger"
	"github.com/shmonad/shmon/ledger/reverts"
	"github.com/shmonad/shmon/shmon"
	"github.com/shmonad/shmon/staking/sim"
	"github.com/shmonad/shmon/test"
)

func params() ledger.Params {
	p := ledger.DefaultParams()
	p.TargetLiquidity = uint256.Int{}
	p.CommissionRate = uint256.Int{}
	p.ValidatorShareRate = uint256.Int{}
	return p
}

func newService(t *testing.T, store kv.Putter, opts Options) (*Service, *sim.Precompile) {
	chain := sim.New(sim.Config{EpochBlocks: 10, BoundaryBlocks: 2, WithdrawalDelay: 2})
	chain.AddValidator(1, uint256.Int{})

	l, err := ledger.New(chain, params())
	require.NoError(t, err)
	require.NoError(t, l.AddValidator(1))

	svc := New(l, store, opts)
	svc.SetChain(chain)
	return svc, chain
}

func TestOptionsValidate(t *testing.T) {
	assert.NoError(t, DefaultOptions().Validate())

	opts := DefaultOptions()
	opts.CrankSchedule = "every now and then"
	assert.Error(t, opts.Validate())

	opts = DefaultOptions()
	opts.EpochSchedule = ""
	assert.NoError(t, opts.Validate())
	opts.EpochSchedule = "61 * * * *"
	assert.Error(t, opts.Validate())

	opts = DefaultOptions()
	opts.MaxCranks = 0
	assert.Error(t, opts.Validate())
}

func TestCrankAllPersists(t *testing.T) {
	store, err := kv.NewMem()
	require.NoError(t, err)
	defer store.Close()

	svc, chain := newService(t, store, DefaultOptions())
	require.NoError(t, svc.Update(func(l *ledger.Ledger) error {
		_, err := l.Deposit(shmon.Mon(10))
		return err
	}))

	n, err := svc.CrankAll()
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	require.NoError(t, svc.AdvanceEpoch())
	n, err = svc.CrankAll()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	loaded, found, err := ledger.Load(store, chain, params())
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, uint64(1), loaded.InternalEpoch())
	assert.Equal(t, shmon.Mon(10), loaded.Balance())
}

func TestCrankAllBounded(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxCranks = 1
	svc, _ := newService(t, nil, opts)

	require.NoError(t, svc.AdvanceEpoch())
	n, err := svc.CrankAll()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, svc.View(func(l *ledger.Ledger) error {
		assert.Equal(t, uint64(1), l.InternalEpoch())
		assert.True(t, l.IsValidatorCrankAvailable(1))
		return nil
	}))
}

func TestTipJarForwardsAfterCrank(t *testing.T) {
	opts := DefaultOptions()
	opts.Tip = *uint256.NewInt(1e15)
	svc, _ := newService(t, nil, opts)
	require.NoError(t, svc.AddTipJar(1, opts.Tip))
	assert.ErrorIs(t, svc.AddTipJar(2, opts.Tip), reverts.ErrUnknownValidator)

	require.NoError(t, svc.AdvanceEpoch())
	_, err := svc.CrankAll()
	require.NoError(t, err)

	require.NoError(t, svc.View(func(l *ledger.Ledger) error {
		revenue, err := l.GlobalRevenue(0)
		require.NoError(t, err)
		assert.Equal(t, opts.Tip, revenue.Earned)
		assert.Equal(t, opts.Tip, l.Balance())
		return l.CheckInvariants()
	}))
	assert.Zero(t, svc.tips[1].Pending())
}

func TestStatus(t *testing.T) {
	svc, _ := newService(t, nil, DefaultOptions())
	now := time.Unix(1_700_000_000, 0)
	svc.now = func() time.Time { return now }

	st := svc.Status(time.Minute)
	assert.False(t, st.Healthy)
	assert.Nil(t, st.LastCrank)

	_, err := svc.Crank(0)
	require.NoError(t, err)
	st = svc.Status(time.Minute)
	assert.True(t, st.Healthy)
	require.NotNil(t, st.LastCrank)
	assert.Equal(t, now, *st.LastCrank)

	now = now.Add(2 * time.Minute)
	assert.False(t, svc.Status(time.Minute).Healthy)

	require.NoError(t, svc.Update(func(l *ledger.Ledger) error {
		return l.SetFrozen(true)
	}))
	// a frozen ledger still cranks but is reported unhealthy
	_, err = svc.Crank(0)
	require.NoError(t, err)
	st = svc.Status(time.Hour)
	assert.False(t, st.Healthy)
	assert.True(t, st.Frozen)
	assert.Empty(t, st.LastError)
}

func TestAdvanceEpochWithoutChain(t *testing.T) {
	svc, _ := newService(t, nil, DefaultOptions())
	svc.SetChain(nil)
	assert.Error(t, svc.AdvanceEpoch())
}

func TestRun(t *testing.T) {
	opts := DefaultOptions()
	opts.CrankSchedule = "@every 1s"
	svc, _ := newService(t, nil, opts)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("keeper did not stop")
	}

	opts.CrankSchedule = "nonsense"
	svc, _ = newService(t, nil, opts)
	assert.Error(t, svc.Run(context.Background()))
}

func TestRunTicksAndCranks(t *testing.T) {
	opts := DefaultOptions()
	opts.CrankSchedule = "@every 1s"
	opts.EpochSchedule = "@every 1s"
	svc, _ := newService(t, nil, opts)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.Run(ctx)

	require.NoError(t, test.Retry(func() error {
		st := svc.Status(time.Minute)
		if st.InternalEpoch == 0 || !st.Healthy {
			return errors.New("no epoch cranked yet")
		}
		return nil
	}, 100*time.Millisecond, 10*time.Second))
}
