// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package allocation

import (
	"github.com/holiman/uint256"

	"github.com/shmonad/shmon/shmon"
)

// Input is one validator's view of the epoch's queues.
type Input struct {
	QueueToStake    uint256.Int
	QueueForUnstake uint256.Int

	ValidatorRevenue uint256.Int // smoothed
	GlobalRevenue    uint256.Int // smoothed, over all validators

	ValidatorAvailable uint256.Int // stake that can be undelegated from this validator
	GlobalAvailable    uint256.Int

	CurrentTarget uint256.Int
	DustThreshold uint256.Int
	MinDeposit    uint256.Int
}

// Result is the stake change for one validator.
type Result struct {
	Increase uint256.Int
	Decrease uint256.Int

	// Withdrawal is set when Decrease >= Increase, ties included.
	Withdrawal bool
	Net        uint256.Int
	NewTarget  uint256.Int
	// Clamped is set when a withdrawal was widened to everything available
	// because the target would fall below the minimum deposit.
	Clamped bool
}

// Solve splits the global queues onto one validator. Increases are
// proportional to the validator's share of revenue and round down, so the
// validators never take more than the queue holds. Decreases are proportional
// to the validator's share of unstakable stake and round up, so the queue is
// always covered.
func Solve(in Input) Result {
	var r Result

	if in.ValidatorRevenue.Gt(&in.DustThreshold) && in.QueueToStake.Gt(&in.DustThreshold) && !in.GlobalRevenue.IsZero() {
		r.Increase = shmon.MulDiv(in.QueueToStake, in.ValidatorRevenue, in.GlobalRevenue)
	}
	if in.QueueForUnstake.Gt(&in.DustThreshold) && !in.ValidatorAvailable.IsZero() && !in.GlobalAvailable.IsZero() {
		r.Decrease = shmon.Min(
			shmon.MulDivUp(in.QueueForUnstake, in.ValidatorAvailable, in.GlobalAvailable),
			in.ValidatorAvailable,
		)
	}

	if r.Increase.Gt(&r.Decrease) {
		r.Net = shmon.Sub(r.Increase, r.Decrease)
		r.NewTarget = shmon.Add(in.CurrentTarget, r.Net)
		return r
	}

	// equal components take this branch as well, with a zero net
	r.Withdrawal = true
	r.Net = shmon.Sub(r.Decrease, r.Increase)
	r.NewTarget = shmon.SatSub(in.CurrentTarget, r.Net)
	if !r.Net.IsZero() && r.NewTarget.Lt(&in.MinDeposit) {
		r.Net = in.ValidatorAvailable
		r.NewTarget = shmon.SatSub(in.CurrentTarget, in.ValidatorAvailable)
		r.Clamped = true
	}
	return r
}
