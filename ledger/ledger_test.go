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

	"github.com/shmonad/shmon/ledger/linkedlist"
	"github.com/shmonad/shmon/ledger/reverts"
	"github.com/shmonad/shmon/shmon"
	"github.com/shmonad/shmon/staking"
	"github.com/shmonad/shmon/staking/sim"
)

func TestNew(t *testing.T) {
	s := sim.New(sim.Config{EpochBlocks: 10, BoundaryBlocks: 2})
	s.Advance(50)

	l, err := New(s, testParams())
	require.NoError(t, err)

	assert.Equal(t, uint64(0), l.InternalEpoch())
	assert.Equal(t, linkedlist.Tail, l.Cursor())
	for offset, expected := range map[int]uint64{-3: 2, -1: 4, 0: 5, 1: 6, 2: 7} {
		e, err := l.GlobalEpoch(offset)
		require.NoError(t, err)
		assert.Equal(t, expected, e.Epoch, "offset %d", offset)
	}
	available, err := l.IsGlobalCrankAvailable()
	require.NoError(t, err)
	assert.False(t, available)
	assert.Equal(t, uint64(50), l.Smoother().LastBlock)
}

func TestNewRejectsBadParams(t *testing.T) {
	s := sim.New(sim.DefaultConfig())

	params := testParams()
	params.RevenueWindow = 0
	_, err := New(s, params)
	assert.Error(t, err)

	params = testParams()
	params.CommissionRate = shmon.Mon(2)
	_, err = New(s, params)
	assert.Error(t, err)

	s.FailNext(staking.OpGetEpoch, 0, staking.ReasonReverted)
	_, err = New(s, testParams())
	assert.Error(t, err)
}

func TestAddValidator(t *testing.T) {
	lt := newTest(t, testParams())

	assert.ErrorIs(t, lt.Ledger.AddValidator(1), reverts.ErrUnknownValidator)
	assert.ErrorIs(t, lt.Ledger.AddValidator(linkedlist.Head), reverts.ErrInvalidValidatorID)
	assert.ErrorIs(t, lt.Ledger.AddValidator(linkedlist.Tail), reverts.ErrInvalidValidatorID)

	lt.AddValidators(3, 1, 2)
	assert.ErrorIs(t, lt.Ledger.AddValidator(1), reverts.ErrValidatorExists)

	ids := make([]shmon.ValidatorID, 0)
	for _, v := range lt.Validators() {
		ids = append(ids, v.ID)
		assert.True(t, v.Active)
		assert.True(t, v.InActiveSetCurrent)
	}
	assert.Equal(t, []shmon.ValidatorID{3, 1, 2}, ids)

	e, err := lt.ValidatorEpoch(1, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), e.Epoch)
	require.NoError(t, lt.CheckInvariants())
}

func TestSnapshotOffsets(t *testing.T) {
	lt := newTest(t, testParams()).AddValidators(1)

	for _, offset := range []int{-7, 0, 7} {
		_, err := lt.GlobalEpoch(offset)
		assert.NoError(t, err)
		_, err = lt.ValidatorRewards(1, offset)
		assert.NoError(t, err)
	}
	for _, offset := range []int{-8, 8, 100} {
		_, err := lt.GlobalEpoch(offset)
		assert.ErrorIs(t, err, reverts.ErrOffsetOutOfRange)
		_, err = lt.GlobalCashFlows(offset)
		assert.ErrorIs(t, err, reverts.ErrOffsetOutOfRange)
		_, err = lt.GlobalRevenue(offset)
		assert.ErrorIs(t, err, reverts.ErrOffsetOutOfRange)
		_, err = lt.ValidatorEpoch(1, offset)
		assert.ErrorIs(t, err, reverts.ErrOffsetOutOfRange)
		_, err = lt.ValidatorEscrow(1, offset)
		assert.ErrorIs(t, err, reverts.ErrOffsetOutOfRange)
	}
	_, err := lt.ValidatorEpoch(9, 0)
	assert.ErrorIs(t, err, reverts.ErrUnknownValidator)
	_, err = lt.TargetStake(9)
	assert.ErrorIs(t, err, reverts.ErrUnknownValidator)
}

func TestSetters(t *testing.T) {
	lt := newTest(t, testParams())
	before := lt.Books().Admin

	assert.ErrorIs(t, lt.SetFeeCurve(shmon.Mon(1), shmon.Mon(1)), reverts.ErrInvalidFeeCurve)
	assert.ErrorIs(t, lt.SetTargetLiquidityPercentage(shmon.Mon(2)), reverts.ErrInvalidPercentage)
	assert.ErrorIs(t, lt.SetCommissionRate(shmon.Mon(2)), reverts.ErrInvalidRate)
	assert.ErrorIs(t, lt.SetValidatorShareRate(shmon.Mon(2)), reverts.ErrInvalidRate)
	assert.Equal(t, before, lt.Books().Admin)

	require.NoError(t, lt.SetFeeCurve(n(3e16), n(2e15)))
	require.NoError(t, lt.SetTargetLiquidityPercentage(n(2e17)))
	require.NoError(t, lt.SetCommissionRate(n(1e17)))
	require.NoError(t, lt.SetValidatorShareRate(shmon.Base))

	admin := lt.Books().Admin
	assert.Equal(t, n(3e16), admin.FeeSlope)
	assert.Equal(t, n(2e15), admin.FeeIntercept)
	assert.Equal(t, n(2e17), admin.TargetLiquidityPercentage)
	assert.Equal(t, n(1e17), admin.CommissionRate)
	assert.Equal(t, shmon.Base, admin.ValidatorShareRate)

	pool := lt.Pool()
	assert.Equal(t, n(3e16), pool.Curve.Slope)
	assert.Equal(t, n(2e15), pool.Curve.Intercept)
}

func TestDepositValidation(t *testing.T) {
	lt := newTest(t, testParams())

	_, err := lt.Ledger.Deposit(uint256.Int{})
	assert.ErrorIs(t, err, reverts.ErrZeroAmount)
	_, err = lt.Ledger.Deposit(n(1))
	assert.ErrorIs(t, err, reverts.ErrBelowMinimum)

	require.NoError(t, lt.SetClosed(true))
	assert.True(t, lt.Closed())
	_, err = lt.Ledger.Deposit(mon(1))
	assert.ErrorIs(t, err, reverts.ErrClosed)
	require.NoError(t, lt.SetClosed(false))

	require.NoError(t, lt.SetFrozen(true))
	_, err = lt.Ledger.Deposit(mon(1))
	assert.ErrorIs(t, err, reverts.ErrFrozen)
	_, err = lt.Ledger.RequestUnstake(mon(1))
	assert.ErrorIs(t, err, reverts.ErrFrozen)
	assert.ErrorIs(t, lt.ClaimRedemption(mon(1)), reverts.ErrFrozen)
	require.NoError(t, lt.SetFrozen(false))

	lt.Deposit(mon(1))
	assert.Equal(t, mon(1), lt.Balance())
	assert.Equal(t, mon(1), lt.ExpectedBalance())
	lt.AssertQueues(0, mon(1), uint256.Int{}).AssertBalanceIdentity()
}

func TestDepositEquity(t *testing.T) {
	lt := newTest(t, testParams()).AddValidators(1)

	equity, err := lt.Ledger.Deposit(mon(100))
	require.NoError(t, err)
	assert.True(t, equity.IsZero())

	lt.Boost(1, n(3e9))
	// revenue of the open epoch is not priced in
	equity, err = lt.Ledger.Deposit(mon(1))
	require.NoError(t, err)
	assert.Equal(t, mon(100), equity)

	lt.NextEpoch()
	// the closed epoch's revenue vests over the following ticks
	assert.Equal(t, mon(101), lt.DepositEquity())
	lt.sim.Advance(50)
	assert.Equal(t, sum(mon(101), n(15e8)), lt.DepositEquity())
	lt.sim.Advance(50)
	assert.Equal(t, sum(mon(101), n(3e9)), lt.DepositEquity())
}

func TestRequestUnstakeValidation(t *testing.T) {
	lt := newTest(t, testParams())

	_, err := lt.Ledger.RequestUnstake(uint256.Int{})
	assert.ErrorIs(t, err, reverts.ErrZeroAmount)
	_, err = lt.Ledger.RequestUnstake(mon(1))
	assert.ErrorIs(t, err, reverts.ErrInsufficientReserves)

	lt.Deposit(mon(10))
	ready, err := lt.Ledger.RequestUnstake(mon(4))
	require.NoError(t, err)
	assert.Equal(t, uint64(shmon.MaxSettlementLag+1), ready)
	assert.Equal(t, mon(4), lt.Books().Liabilities.RedemptionsPayable)
	lt.AssertQueues(0, mon(10), mon(4))

	assert.ErrorIs(t, lt.ClaimRedemption(mon(5)), reverts.ErrInsufficientPayable)
	assert.ErrorIs(t, lt.ClaimRedemption(mon(4)), reverts.ErrInsufficientReserves)
	assert.ErrorIs(t, lt.ClaimRedemption(uint256.Int{}), reverts.ErrZeroAmount)
}

func TestBoostYield(t *testing.T) {
	params := testParams()
	params.ValidatorShareRate = n(1e17)
	params.CommissionRate = n(1e17)
	lt := newTest(t, params).AddValidators(1)

	assert.ErrorIs(t, lt.BoostYield(2, mon(1)), reverts.ErrUnknownValidator)
	assert.ErrorIs(t, lt.BoostYield(1, uint256.Int{}), reverts.ErrZeroAmount)

	lt.Boost(1, mon(1))
	books := lt.Books()
	assert.Equal(t, n(19e16), books.Liabilities.RewardsPayable)
	assert.Equal(t, n(19e16), books.Working.Reserved)
	assert.Equal(t, n(9e16), lt.CommissionPayable())

	rewards, err := lt.ValidatorRewards(1, 0)
	require.NoError(t, err)
	assert.Equal(t, n(1e17), rewards.Allocated)
	assert.Equal(t, n(81e16), rewards.Earned)
	revenue, err := lt.GlobalRevenue(0)
	require.NoError(t, err)
	assert.Equal(t, n(81e16), revenue.Earned)
	lt.AssertQueues(0, n(81e16), uint256.Int{}).AssertBalanceIdentity()
	require.NoError(t, lt.CheckInvariants())
}

func TestReceiveIsGoodwill(t *testing.T) {
	lt := newTest(t, testParams()).AddValidators(1, 2).
		Deposit(mon(100)).
		Boost(1, n(6e9)).
		Boost(2, n(2e9)).
		NextEpoch()

	lt.Receive(mon(5))
	assert.Equal(t, mon(5), lt.Balance())
	assert.Zero(t, lt.ExpectedBalance())

	lt.NextEpoch()
	assert.Equal(t, lt.Balance(), lt.ExpectedBalance())
	assert.Zero(t, lt.Balance())
	lt.AssertTarget(1, sum(mon(78), n(75e16), n(6e9))).
		AssertTarget(2, sum(mon(26), n(25e16), n(2e9)))
}

func TestSmoother(t *testing.T) {
	var s RevenueSmoother
	s.Update(n(100), 10)

	assert.Equal(t, n(100), s.Unvested(5, 100))
	assert.Equal(t, n(100), s.Unvested(10, 100))
	assert.Equal(t, n(50), s.Unvested(60, 100))
	assert.Zero(t, s.Unvested(110, 100))
	assert.Equal(t, n(100), s.Unvested(500, 0))
}

func TestReentrancy(t *testing.T) {
	lt := newTest(t, testParams()).AddValidators(1)

	var depositErr, crankErr error
	calls := 0
	require.NoError(t, lt.SetPayoutProcessor(1, hookFunc(func() error {
		calls++
		_, depositErr = lt.Ledger.Deposit(mon(1))
		_, crankErr = lt.Crank(0)
		return nil
	})))

	lt.NextEpoch()
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, depositErr, reverts.ErrReentrancy)
	assert.ErrorIs(t, crankErr, reverts.ErrReentrancy)

	// the guard is released once the crank returns
	lt.Deposit(mon(1))
}

func TestPayoutHookFailures(t *testing.T) {
	lt := newTest(t, testParams()).AddValidators(1, 2)

	require.NoError(t, lt.SetPayoutProcessor(1, hookFunc(func() error {
		panic("boom")
	})))
	calls := 0
	require.NoError(t, lt.SetPayoutProcessor(2, hookFunc(func() error {
		calls++
		return assert.AnError
	})))

	lt.NextEpoch().NextEpoch()
	assert.Equal(t, 2, calls)
	assert.Equal(t, uint64(2), lt.InternalEpoch())

	require.NoError(t, lt.SetPayoutProcessor(2, nil))
	lt.NextEpoch()
	assert.Equal(t, 2, calls)
	assert.ErrorIs(t, lt.SetPayoutProcessor(9, nil), reverts.ErrUnknownValidator)
}
