// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package atomicpool

import (
	"github.com/holiman/uint256"

	"github.com/shmonad/shmon/ledger/accounting"
	"github.com/shmonad/shmon/shmon"
)

// AdjustedUtilized offsets the distributed amount by the revenue that will
// refill it at the next epoch boundary, so the priced rate does not jump when
// the refill happens.
func AdjustedUtilized(distributed, unsettledRevenue uint256.Int) uint256.Int {
	return shmon.Sub(distributed, shmon.Min(unsettledRevenue, distributed))
}

// Target is the pool size for a percentage of equity.
func Target(equity, percentage uint256.Int) uint256.Int {
	return shmon.MulDiv(equity, percentage, shmon.Base)
}

// Rebalance moves allocated toward target. Growth is limited to the available
// unassigned balance; shrinking never goes below the utilized amount.
func Rebalance(allocated, target, available, utilized uint256.Int) uint256.Int {
	if target.Gt(&allocated) {
		return shmon.Add(allocated, shmon.Min(shmon.Sub(target, allocated), available))
	}
	return shmon.Max(target, utilized)
}

// Settlement is the pool transition at an epoch boundary.
type Settlement struct {
	Allocated uint256.Int
	// Distributed still includes Carry; the carry step removes it.
	Distributed uint256.Int
	// Carry is the revenue that refills distributed liquidity.
	Carry uint256.Int
	// CashIn is balance taken into the pool, CashOut balance released from it,
	// after netting the allocation and utilization deltas against each other.
	CashIn  uint256.Int
	CashOut uint256.Int
}

// Settle rebalances the pool toward target while preserving the ratio of the
// revenue-adjusted utilized amount to the allocation, so the fee rate priced
// just before the boundary is the rate just after it.
func Settle(pool accounting.AtomicCapital, target, unassigned, unsettledRevenue uint256.Int) Settlement {
	carry := shmon.Min(shmon.Min(unsettledRevenue, pool.Distributed), unassigned)
	utilized := shmon.Sub(pool.Distributed, carry)

	allocated := Rebalance(pool.Allocated, target, shmon.Sub(unassigned, carry), utilized)

	var newUtilized uint256.Int
	if !pool.Allocated.IsZero() {
		newUtilized = shmon.Min(shmon.MulDivUp(utilized, allocated, pool.Allocated), allocated)
	}

	// allocation growth and utilization shrink draw cash in; the opposite releases it
	var in, out uint256.Int
	if allocated.Gt(&pool.Allocated) {
		in = shmon.Sub(allocated, pool.Allocated)
	} else {
		out = shmon.Sub(pool.Allocated, allocated)
	}
	if newUtilized.Gt(&utilized) {
		out = shmon.Add(out, shmon.Sub(newUtilized, utilized))
	} else {
		in = shmon.Add(in, shmon.Sub(utilized, newUtilized))
	}

	s := Settlement{
		Allocated:   allocated,
		Distributed: shmon.Add(newUtilized, carry),
		Carry:       carry,
	}
	if in.Gt(&out) {
		s.CashIn = shmon.Sub(in, out)
	} else {
		s.CashOut = shmon.Sub(out, in)
	}
	return s
}
