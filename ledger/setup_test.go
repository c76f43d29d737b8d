// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shmonad/shmon/shmon"
	"github.com/shmonad/shmon/staking/sim"
)

// LedgerTest drives a ledger against the simulated precompile. Every crank is
// followed by an invariant check.
type LedgerTest struct {
	*Ledger
	t   *testing.T
	sim *sim.Precompile
}

// testParams turns off the pool and the reward split so flows are easy to follow.
func testParams() Params {
	p := DefaultParams()
	p.TargetLiquidity = uint256.Int{}
	p.CommissionRate = uint256.Int{}
	p.ValidatorShareRate = uint256.Int{}
	return p
}

func newTest(t *testing.T, params Params) *LedgerTest {
	s := sim.New(sim.Config{EpochBlocks: 10, BoundaryBlocks: 2, WithdrawalDelay: 2})
	l, err := New(s, params)
	require.NoError(t, err)
	return &LedgerTest{Ledger: l, t: t, sim: s}
}

func n(v uint64) uint256.Int { return shmon.NewAmount(v) }

func mon(v uint64) uint256.Int { return shmon.Mon(v) }

// sum adds amounts, for fixtures written as whole MON plus wei.
func sum(amounts ...uint256.Int) uint256.Int {
	var total uint256.Int
	for _, a := range amounts {
		total = shmon.Add(total, a)
	}
	return total
}

func (lt *LedgerTest) AddValidators(ids ...shmon.ValidatorID) *LedgerTest {
	for _, id := range ids {
		lt.sim.AddValidator(id, uint256.Int{})
		require.NoError(lt.t, lt.Ledger.AddValidator(id))
	}
	return lt
}

func (lt *LedgerTest) Deposit(amount uint256.Int) *LedgerTest {
	_, err := lt.Ledger.Deposit(amount)
	require.NoError(lt.t, err)
	return lt
}

func (lt *LedgerTest) Boost(id shmon.ValidatorID, amount uint256.Int) *LedgerTest {
	require.NoError(lt.t, lt.BoostYield(id, amount))
	return lt
}

func (lt *LedgerTest) RequestUnstake(amount uint256.Int) *LedgerTest {
	_, err := lt.Ledger.RequestUnstake(amount)
	require.NoError(lt.t, err)
	return lt
}

// CrankAll cranks until the ledger reports nothing left to do.
func (lt *LedgerTest) CrankAll() *LedgerTest {
	for range 1000 {
		complete, err := lt.Crank(0)
		require.NoError(lt.t, err)
		require.NoError(lt.t, lt.CheckInvariants())
		if complete {
			return lt
		}
	}
	lt.t.Fatal("crank did not complete")
	return lt
}

// NextEpoch moves the chain to the next epoch and runs the full crank for it.
func (lt *LedgerTest) NextEpoch() *LedgerTest {
	lt.sim.NextEpoch()
	return lt.CrankAll()
}

func (lt *LedgerTest) Epochs(count int) *LedgerTest {
	for range count {
		lt.NextEpoch()
	}
	return lt
}

func (lt *LedgerTest) AssertTarget(id shmon.ValidatorID, expected uint256.Int) *LedgerTest {
	target, err := lt.TargetStake(id)
	require.NoError(lt.t, err)
	assert.Equal(lt.t, expected.Dec(), target.Dec(), "target stake of validator %s", id)

	info, err := lt.sim.GetDelegator(id)
	require.NoError(lt.t, err)
	assert.Equal(lt.t, expected.Dec(), info.Stake.Dec(), "precompile stake of validator %s", id)
	return lt
}

func (lt *LedgerTest) AssertQueues(offset int, toStake, forUnstake uint256.Int) *LedgerTest {
	flows, err := lt.GlobalCashFlows(offset)
	require.NoError(lt.t, err)
	assert.Equal(lt.t, toStake.Dec(), flows.QueueToStake.Dec(), "queue to stake at %d", offset)
	assert.Equal(lt.t, forUnstake.Dec(), flows.QueueForUnstake.Dec(), "queue for unstake at %d", offset)
	return lt
}

func (lt *LedgerTest) AssertInternalEpoch(expected uint64) *LedgerTest {
	assert.Equal(lt.t, expected, lt.InternalEpoch())
	return lt
}

// AssertBalanceIdentity checks balance + distributed == allocated + unassigned + reserved.
func (lt *LedgerTest) AssertBalanceIdentity() *LedgerTest {
	books := lt.Books()
	left := shmon.Add(lt.Balance(), books.Atomic.Distributed)
	right := sum(books.Atomic.Allocated, lt.Unassigned(), books.Working.Reserved)
	assert.Equal(lt.t, left.Dec(), right.Dec())
	assert.False(lt.t, books.Atomic.Allocated.Lt(&books.Atomic.Distributed))
	return lt
}

type hookFunc func() error

func (f hookFunc) Process() error { return f() }
