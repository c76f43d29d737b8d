// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shmonad/shmon/ledger/reverts"
	"github.com/shmonad/shmon/shmon"
)

func liquidParams() Params {
	p := testParams()
	p.TargetLiquidity = n(1e17) // 10%
	return p
}

func TestPoolFilledAtBoundary(t *testing.T) {
	lt := staked(t, liquidParams())

	books := lt.Books()
	assert.Equal(t, sum(mon(10), n(8e8)), books.Atomic.Allocated)
	assert.True(t, books.Atomic.Distributed.IsZero())
	lt.AssertBalanceIdentity()

	pool := lt.Pool()
	assert.Equal(t, books.Atomic.Allocated, pool.Liquidity())
	assert.Equal(t, n(1e15), pool.Rate())
}

func TestAtomicUnstake(t *testing.T) {
	lt := staked(t, liquidParams())
	balance := lt.Balance()

	q, err := lt.AtomicUnstake(mon(1))
	require.NoError(t, err)
	assert.Equal(t, mon(1), q.Gross)
	assert.Equal(t, q.Gross, sum(q.Net, q.Fee))
	assert.False(t, q.Clamped)
	// intercept plus the slope share of the post-payout utilization
	low, high := n(1e15), n(1e16)
	assert.True(t, q.Fee.Gt(&low))
	assert.True(t, q.Fee.Lt(&high))

	assert.Equal(t, q.Net, lt.Books().Atomic.Distributed)
	assert.Equal(t, shmon.Sub(balance, q.Net), lt.Balance())
	lt.AssertBalanceIdentity()
	require.NoError(t, lt.CheckInvariants())

	// the rate went up with utilization
	rate := lt.Pool().Rate()
	assert.True(t, rate.Gt(&low))
}

func TestAtomicUnstakeNet(t *testing.T) {
	lt := staked(t, liquidParams())

	q, err := lt.AtomicUnstakeNet(mon(1))
	require.NoError(t, err)
	assert.Equal(t, mon(1), q.Net)
	assert.True(t, q.Gross.Gt(&q.Net))
	assert.Equal(t, mon(1), lt.Books().Atomic.Distributed)

	liquidity := lt.Pool().Liquidity()
	_, err = lt.AtomicUnstakeNet(shmon.Add(liquidity, n(1)))
	assert.ErrorIs(t, err, reverts.ErrInsufficientLiquidity)
	require.NoError(t, lt.CheckInvariants())
}

func TestAtomicUnstakeClamped(t *testing.T) {
	lt := staked(t, liquidParams())
	liquidity := lt.Pool().Liquidity()

	q, err := lt.AtomicUnstake(mon(50))
	require.NoError(t, err)
	assert.True(t, q.Clamped)
	assert.Equal(t, liquidity.Dec(), q.Net.Dec())
	assert.Zero(t, lt.Pool().Liquidity())

	_, err = lt.AtomicUnstake(mon(1))
	assert.ErrorIs(t, err, reverts.ErrInsufficientLiquidity)
	lt.AssertBalanceIdentity()
	require.NoError(t, lt.CheckInvariants())
}

func TestAtomicUnstakeEmptyPool(t *testing.T) {
	lt := staked(t, testParams())

	_, err := lt.AtomicUnstake(mon(1))
	assert.ErrorIs(t, err, reverts.ErrInsufficientLiquidity)
	_, err = lt.AtomicUnstake(n(0))
	assert.ErrorIs(t, err, reverts.ErrZeroAmount)
}
