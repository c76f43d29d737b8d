// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package accounting holds the aggregate books of the ledger and the pure
// transforms applied to them. Assets are the native balance plus stake held by
// the staking precompile; they always equal equity plus liabilities.
package accounting

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/shmonad/shmon/shmon"
)

// WorkingCapital is stake held by the precompile (delegated, activating or
// awaiting withdrawal) and the part of the balance reserved for liabilities.
type WorkingCapital struct {
	Staked   uint256.Int
	Reserved uint256.Int
}

// AtomicCapital sizes the atomic unstake pool. Distributed has been paid out
// and is refilled from revenue; Allocated >= Distributed always holds.
type AtomicCapital struct {
	Allocated   uint256.Int
	Distributed uint256.Int
}

// Liquidity is the pool cash still available for payouts.
func (a AtomicCapital) Liquidity() uint256.Int {
	return shmon.SatSub(a.Allocated, a.Distributed)
}

// CurrentLiabilities is MON owed but not yet paid.
type CurrentLiabilities struct {
	RewardsPayable     uint256.Int
	RedemptionsPayable uint256.Int
}

func (l CurrentLiabilities) Total() uint256.Int {
	return shmon.Add(l.RewardsPayable, l.RedemptionsPayable)
}

// AdminValues are tunable parameters plus the internal epoch counter.
// Rates and percentages use shmon.Base as 100%.
type AdminValues struct {
	InternalEpoch             uint64
	TargetLiquidityPercentage uint256.Int
	FeeSlope                  uint256.Int
	FeeIntercept              uint256.Int
	CommissionRate            uint256.Int
	ValidatorShareRate        uint256.Int
}

// Books is the full set of aggregates.
type Books struct {
	Working     WorkingCapital
	Atomic      AtomicCapital
	Liabilities CurrentLiabilities
	Admin       AdminValues
}

// Assets is the native balance plus stake held by the precompile.
func (b *Books) Assets(balance uint256.Int) uint256.Int {
	return shmon.Add(b.Working.Staked, balance)
}

// Equity is assets minus liabilities.
func (b *Books) Equity(balance uint256.Int) uint256.Int {
	return shmon.SatSub(b.Assets(balance), b.Liabilities.Total())
}

// Unassigned is the balance not held by the pool and not reserved:
// balance + Distributed - Allocated - Reserved.
func (b *Books) Unassigned(balance uint256.Int) uint256.Int {
	return shmon.SatSub(
		shmon.Add(balance, b.Atomic.Distributed),
		shmon.Add(b.Atomic.Allocated, b.Working.Reserved),
	)
}

// Uncovered is the part of liabilities the reserve does not cover yet.
func (b *Books) Uncovered() uint256.Int {
	return shmon.SatSub(b.Liabilities.Total(), b.Working.Reserved)
}

// Reserve moves up to amount of unassigned balance into the reserve, bounded by
// the uncovered liabilities. It returns the amount moved.
func (b *Books) Reserve(amount, balance uint256.Int) uint256.Int {
	moved := shmon.Min(amount, shmon.Min(b.Uncovered(), b.Unassigned(balance)))
	b.Working.Reserved = shmon.Add(b.Working.Reserved, moved)
	return moved
}

// Check verifies the balance identity and the pool and reserve bounds.
func (b *Books) Check(balance uint256.Int) error {
	if b.Atomic.Allocated.Lt(&b.Atomic.Distributed) {
		return errors.Errorf("atomic pool overdrawn: allocated %s < distributed %s",
			b.Atomic.Allocated.Dec(), b.Atomic.Distributed.Dec())
	}
	held := shmon.Add(balance, b.Atomic.Distributed)
	claimed := shmon.Add(b.Atomic.Allocated, b.Working.Reserved)
	if held.Lt(&claimed) {
		return errors.Errorf("balance %s below pool liquidity plus reserve (allocated %s, distributed %s, reserved %s)",
			balance.Dec(), b.Atomic.Allocated.Dec(), b.Atomic.Distributed.Dec(), b.Working.Reserved.Dec())
	}
	total := b.Liabilities.Total()
	if total.Lt(&b.Working.Reserved) {
		return errors.Errorf("reserve %s exceeds liabilities %s", b.Working.Reserved.Dec(), total.Dec())
	}
	return nil
}
