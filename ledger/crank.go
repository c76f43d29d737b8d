// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/holiman/uint256"

	"github.com/shmonad/shmon/ledger/accounting"
	"github.com/shmonad/shmon/ledger/atomicpool"
	"github.com/shmonad/shmon/ledger/budget"
	"github.com/shmonad/shmon/ledger/epochs"
	"github.com/shmonad/shmon/ledger/linkedlist"
	"github.com/shmonad/shmon/shmon"
	"github.com/shmonad/shmon/staking"
)

// Crank performs the next unit of settlement work within limit compute units
// (zero means unlimited). An unfinished validator round is resumed first;
// otherwise the internal epoch advances if the external epoch moved on.
// complete is true when there was nothing to do.
func (l *Ledger) Crank(limit uint64) (complete bool, err error) {
	ctx, err := l.enter()
	if err != nil {
		return false, err
	}
	defer ctx.close()

	meter := budget.New(limit)
	defer func() {
		metricCrankUnits().Observe(int64(min(meter.Used(), uint64(1)<<62)))
	}()

	if l.cursor != linkedlist.Tail {
		l.crankValidators(ctx, meter)
		l.verify("validator crank")
		return false, nil
	}

	meter.Charge(budget.KindAdapter, shmon.CostAdapterCall)
	info, err := l.adapter.GetEpoch()
	if err != nil {
		l.adapterFailed(err)
		return true, nil
	}
	if info.Epoch <= l.currentEpoch().Epoch {
		return true, nil
	}

	l.crankGlobal(meter, info)
	l.verify("global crank")
	return false, nil
}

// crankGlobal closes the current internal epoch and opens the validator round
// for it. It has no failure path, so it is applied in full or not at all.
func (l *Ledger) crankGlobal(meter *budget.Meter, info staking.EpochInfo) {
	meter.Charge(budget.KindGlobal, shmon.CostGlobalCrank)
	metricCrankCount().AddWithLabel(1, map[string]string{"kind": "global"})

	epoch := l.InternalEpoch()
	flows := l.globalFlows.Ptr(epoch, 0)
	next := l.globalFlows.Ptr(epoch, 1)
	revenue := l.globalRevenue.Ptr(epoch, 0)

	// what the last round's solver did not hand out goes back in the queues
	prev := l.globalFlows.At(epoch, -1)
	flows.Add(epochs.CashFlows{
		QueueToStake:    shmon.SatSub(prev.QueueToStake, l.round.StakeAssigned),
		QueueForUnstake: shmon.SatSub(prev.QueueForUnstake, l.round.UnstakeAssigned),
	})

	// a. prime the next epoch, clear the one after
	target := info.Epoch
	if info.InBoundary {
		target++
	}
	l.globalEpochs.Set(epoch, 1, l.currentEpoch().Next(target))
	l.globalEpochs.Clear(epoch, 2)
	l.globalFlows.Clear(epoch, 2)
	l.globalRevenue.Clear(epoch, 2)

	// b. deposits that can cover liabilities go straight to the reserve
	offset := accounting.OffsetLiabilitiesWithDeposits(&l.books, flows, l.balance)

	// c. unexplained balance
	var goodwill uint256.Int
	goodwill, l.expected = accounting.ApplyGoodwill(flows, l.balance, l.expected)

	// d. move the atomic pool toward its target
	settlement := atomicpool.Settle(
		l.books.Atomic,
		atomicpool.Target(l.Equity(), l.books.Admin.TargetLiquidityPercentage),
		l.Unassigned(),
		revenue.Unsettled(),
	)
	l.books.Atomic.Allocated = settlement.Allocated
	l.books.Atomic.Distributed = settlement.Distributed
	if !settlement.CashIn.IsZero() {
		flows.QueueToStake = shmon.SatSub(flows.QueueToStake, settlement.CashIn)
	} else if !settlement.CashOut.IsZero() {
		flows.QueueToStake = shmon.Add(flows.QueueToStake, settlement.CashOut)
	}

	// e. revenue refills distributed liquidity
	flows.QueueForUnstake = shmon.Add(flows.QueueForUnstake, settlement.Carry)
	l.books.Atomic.Distributed = shmon.Sub(l.books.Atomic.Distributed, settlement.Carry)
	revenue.Allocated = shmon.Add(revenue.Allocated, settlement.Carry)

	// f. net the queues
	netted, reserved := accounting.NetQueues(&l.books, flows, l.balance)
	active := l.activeCount()
	if l.params.IncentiveAlignment && active > 1 {
		accounting.AlignIncentives(flows, netted)
	}

	// g. no revenue signal to weight stake by
	window := l.globalRevenueWindow()
	if active > 0 && window.Lt(&l.params.DustThreshold) {
		next.QueueToStake = shmon.Add(next.QueueToStake, flows.QueueToStake)
		flows.QueueToStake = uint256.Int{}
	}

	// h. clamp to what the validator set can absorb
	available := l.globalAvailable()
	if active == 0 {
		accounting.NetQueues(&l.books, flows, l.balance)
		next.Add(*flows)
		*flows = epochs.CashFlows{}
	} else {
		if flows.QueueForUnstake.Gt(&available) {
			next.QueueForUnstake = shmon.Add(next.QueueForUnstake, shmon.Sub(flows.QueueForUnstake, available))
			flows.QueueForUnstake = available
		}
		if capacity, limited := l.globalCapacity(); limited && flows.QueueToStake.Gt(&capacity) {
			next.QueueToStake = shmon.Add(next.QueueToStake, shmon.Sub(flows.QueueToStake, capacity))
			flows.QueueToStake = capacity
		}
	}

	// i. smoother and round snapshot
	l.smoother.Update(revenue.Earned, info.Block)
	l.round = Round{GlobalRevenue: window, GlobalAvailable: available}

	// j. open the round
	l.books.Admin.InternalEpoch++
	l.cursor = linkedlist.Head
	metricInternalEpoch().Set(int64(l.books.Admin.InternalEpoch))

	logger.Info("🏠epoch advanced",
		"internal", l.books.Admin.InternalEpoch,
		"epoch", l.currentEpoch().Epoch,
		"queueToStake", shmon.Format(flows.QueueToStake),
		"queueForUnstake", shmon.Format(flows.QueueForUnstake),
		"offset", shmon.Format(offset),
		"goodwill", shmon.Format(goodwill),
		"netted", shmon.Format(netted),
		"reserved", shmon.Format(reserved),
		"poolAllocated", shmon.Format(l.books.Atomic.Allocated),
		"active", active,
	)
}

// activeCount counts validators that are registered, not deactivated and in
// the active set as of their last crank.
func (l *Ledger) activeCount() int {
	n := 0
	for _, v := range l.validators {
		if v.isActive() {
			n++
		}
	}
	return n
}

// globalAvailable is the stake the active validators can unstake.
func (l *Ledger) globalAvailable() uint256.Int {
	var total uint256.Int
	epoch := l.InternalEpoch()
	for _, v := range l.validators {
		if v.isActive() {
			total = shmon.Add(total, v.epochs.At(epoch, 0).TargetStake)
		}
	}
	return total
}

// globalCapacity is the stake the active validators can still take. limited
// is false when no per-validator maximum is configured.
func (l *Ledger) globalCapacity() (capacity uint256.Int, limited bool) {
	if l.params.MaxValidatorStake.IsZero() {
		return capacity, false
	}
	epoch := l.InternalEpoch()
	for _, v := range l.validators {
		if v.isActive() {
			capacity = shmon.Add(capacity, shmon.SatSub(l.params.MaxValidatorStake, v.epochs.At(epoch, 0).TargetStake))
		}
	}
	return capacity, true
}

// globalRevenueWindow sums the earned revenue of the current epoch and the
// ones before it, over the configured window.
func (l *Ledger) globalRevenueWindow() uint256.Int {
	var total uint256.Int
	for delta := 0; delta > -l.params.RevenueWindow; delta-- {
		total = shmon.Add(total, l.globalRevenue.At(l.InternalEpoch(), delta).Earned)
	}
	return total
}

func (v *validatorState) isActive() bool {
	return v.Active && v.InActiveSetCurrent
}
