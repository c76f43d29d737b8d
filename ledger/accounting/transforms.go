// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounting

import (
	"github.com/holiman/uint256"

	"github.com/shmonad/shmon/ledger/epochs"
	"github.com/shmonad/shmon/shmon"
)

// OffsetLiabilitiesWithDeposits settles queued unstakes directly with queued
// deposits, bounded by uncovered liabilities and unassigned balance. The settled
// amount leaves both queues and enters the reserve.
func OffsetLiabilitiesWithDeposits(b *Books, flows *epochs.CashFlows, balance uint256.Int) uint256.Int {
	x := shmon.Min(
		shmon.Min(b.Uncovered(), b.Unassigned(balance)),
		shmon.Min(flows.QueueForUnstake, flows.QueueToStake),
	)
	if x.IsZero() {
		return x
	}
	flows.QueueToStake = shmon.Sub(flows.QueueToStake, x)
	flows.QueueForUnstake = shmon.Sub(flows.QueueForUnstake, x)
	b.Working.Reserved = shmon.Add(b.Working.Reserved, x)
	return x
}

// ApplyGoodwill folds any balance above the expected balance into the stake queue.
// It returns the goodwill and the new expected balance.
func ApplyGoodwill(flows *epochs.CashFlows, balance, expected uint256.Int) (uint256.Int, uint256.Int) {
	g := shmon.SatSub(balance, expected)
	if !g.IsZero() {
		flows.QueueToStake = shmon.Add(flows.QueueToStake, g)
	}
	return g, shmon.Add(expected, g)
}

// NetQueues cancels the stake queue against the unstake queue. The cancelled
// amount is cash that stays in the balance; it covers outstanding liabilities
// first. It returns the netted amount and the part moved into the reserve.
func NetQueues(b *Books, flows *epochs.CashFlows, balance uint256.Int) (netted, reserved uint256.Int) {
	netted = shmon.Min(flows.QueueToStake, flows.QueueForUnstake)
	if netted.IsZero() {
		return
	}
	flows.QueueToStake = shmon.Sub(flows.QueueToStake, netted)
	flows.QueueForUnstake = shmon.Sub(flows.QueueForUnstake, netted)
	reserved = b.Reserve(netted, balance)
	return
}

// AlignIncentives keeps stake turning over when net flow is flat: the unstake
// queue is raised to at least a quarter of the netted amount and the raise is
// mirrored into the stake queue, so the net flow is unchanged. A quarter because
// a full stake-then-unstake round trip spans two unstake and two stake epochs.
func AlignIncentives(flows *epochs.CashFlows, netted uint256.Int) uint256.Int {
	var floor uint256.Int
	floor.Rsh(&netted, 2)
	raise := shmon.SatSub(floor, flows.QueueForUnstake)
	if raise.IsZero() {
		return raise
	}
	flows.QueueForUnstake = shmon.Add(flows.QueueForUnstake, raise)
	flows.QueueToStake = shmon.Add(flows.QueueToStake, raise)
	return raise
}

// RewardSplit is how a claimed reward is divided.
type RewardSplit struct {
	Commission     uint256.Int
	ValidatorShare uint256.Int
	Net            uint256.Int
}

// SplitReward divides a gross reward: the validator share first, then the
// commission on what remains, the rest is revenue of the pool.
func SplitReward(admin AdminValues, gross uint256.Int) RewardSplit {
	share := shmon.MulDiv(gross, admin.ValidatorShareRate, shmon.Base)
	rest := shmon.SatSub(gross, share)
	commission := shmon.MulDiv(rest, admin.CommissionRate, shmon.Base)
	return RewardSplit{
		Commission:     commission,
		ValidatorShare: share,
		Net:            shmon.SatSub(rest, commission),
	}
}
