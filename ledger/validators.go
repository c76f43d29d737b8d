// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/holiman/uint256"

	"github.com/shmonad/shmon/ledger/allocation"
	"github.com/shmonad/shmon/ledger/budget"
	"github.com/shmonad/shmon/ledger/epochs"
	"github.com/shmonad/shmon/ledger/linkedlist"
	"github.com/shmonad/shmon/log"
	"github.com/shmonad/shmon/shmon"
)

// crankValidators walks the round from the cursor while the budget lasts.
func (l *Ledger) crankValidators(ctx *callContext, meter *budget.Meter) {
	cranked := 0
	for l.cursor != linkedlist.Tail && meter.Remaining() > l.params.CrankThreshold {
		id := l.cursor
		if id == linkedlist.Head {
			id = l.list.First()
			if id == linkedlist.Tail {
				l.cursor = linkedlist.Tail
				break
			}
		}
		// the crank may remove id from the list
		following := l.list.Next(id)
		if l.crankValidator(ctx, meter, id) {
			cranked++
		}
		l.cursor = following
	}
	metricCrankValidators().Observe(int64(cranked))

	if l.cursor == linkedlist.Tail {
		logger.Debug("validator round finished", "internal", l.InternalEpoch(), "cranked", l.round.Cranked)
	} else {
		logger.Debug("validator round suspended", "next", l.cursor, "used", meter.Used())
	}
}

// crankValidator settles the previous epoch of one validator and applies its
// share of the queues. It reports false when the validator was already cranked.
func (l *Ledger) crankValidator(ctx *callContext, meter *budget.Meter, id shmon.ValidatorID) bool {
	v := l.validators[id]
	epoch := l.InternalEpoch()
	prev := v.epochs.Ptr(epoch, -1)
	if prev.WasCranked {
		return false
	}
	meter.Charge(budget.KindValidator, shmon.CostValidatorCrank)
	metricCrankCount().AddWithLabel(1, map[string]string{"kind": "validator"})
	vlog := logger.With("validator", id, "internal", epoch)

	// 1. optimistic active-set flags
	v.InActiveSetLast = v.InActiveSetCurrent
	v.InActiveSetCurrent = true
	meter.Charge(budget.KindAdapter, shmon.CostAdapterCall)
	if info, err := l.adapter.GetValidator(id); err != nil {
		l.adapterFailed(err)
		v.InActiveSetCurrent = false
	} else if !info.InActiveSet {
		v.InActiveSetCurrent = false
	}
	inBoundary := l.inBoundary(meter)

	// 2. yield
	l.claimRewards(ctx, meter, v, vlog)

	// 3. deposits and withdrawals that came due
	l.settleEdges(ctx, meter, v, vlog)

	// 4. validator share
	l.payValidatorShare(meter, v, vlog)

	// 5. expected vs reported stake
	l.reconcile(meter, v, vlog)

	// 6, 7. this epoch's delta
	l.allocate(meter, v, inBoundary, vlog)

	// 8. roll the window
	prev.WasCranked = true
	cur := v.epochs.At(epoch, 0)
	v.epochs.Set(epoch, 1, cur.Next(cur.Epoch+1))
	v.epochs.Clear(epoch, 2)
	v.escrow.Clear(epoch, 2)
	v.rewards.Clear(epoch, 2)
	if v.InActiveSetCurrent != v.InActiveSetLast {
		v.LastTransition = epoch
		vlog.Info("active set changed", "active", v.InActiveSetCurrent)
	}
	l.round.Cranked++

	if l.cooledDown(v) {
		l.list.Remove(id)
		delete(l.validators, id)
		vlog.Info("validator removed after cooldown", "deactivatedAt", v.DeactivatedAt)
		return true
	}

	// 9. payout hook
	l.notifyPayout(meter, v, vlog)
	return true
}

// inBoundary reports whether actions taken now settle one epoch late. When
// the epoch cannot be read the late path is assumed.
func (l *Ledger) inBoundary(meter *budget.Meter) bool {
	meter.Charge(budget.KindAdapter, shmon.CostAdapterCall)
	info, err := l.adapter.GetEpoch()
	if err != nil {
		l.adapterFailed(err)
		return true
	}
	return info.InBoundary
}

func (l *Ledger) claimRewards(ctx *callContext, meter *budget.Meter, v *validatorState, vlog log.Logger) {
	meter.Charge(budget.KindTransfer, shmon.CostAdapterTransfer)
	ctx.expect(receiptRewards)
	err := l.adapter.ClaimRewards(ctx, v.ID)
	gross := ctx.take()
	if err != nil {
		l.adapterFailed(err)
		v.InActiveSetCurrent = false
		vlog.Warn("reward claim failed, validator provisionally inactive")
	}
	if gross.IsZero() {
		return
	}
	split := l.creditRewards(v, gross)
	vlog.Debug("rewards claimed",
		"gross", shmon.Format(gross),
		"net", shmon.Format(split.Net),
		"commission", shmon.Format(split.Commission),
		"validatorShare", shmon.Format(split.ValidatorShare),
	)
}

// settleEdges completes deposits and withdrawals recorded up to
// MaxSettlementLag epochs back, then retries withdrawals orphaned by an
// earlier crank.
func (l *Ledger) settleEdges(ctx *callContext, meter *budget.Meter, v *validatorState, vlog log.Logger) {
	epoch := l.InternalEpoch()
	orphaned := len(v.Orphans)
	for lag := 1; lag <= shmon.MaxSettlementLag; lag++ {
		rec := v.epochs.Ptr(epoch, -lag)
		esc := v.escrow.Ptr(epoch, -lag)
		late := 0
		if rec.CrankedInBoundary {
			late = 1
		}

		if rec.HasDeposit && lag == shmon.DepositLag+late {
			rec.HasDeposit = false
			esc.PendingStaking = uint256.Int{}
		}
		if rec.HasWithdrawal && lag == shmon.WithdrawalLag+late {
			l.settleWithdrawal(ctx, meter, v, rec, esc, vlog)
		}
	}

	if orphaned > 0 {
		l.retryOrphans(ctx, meter, v, orphaned, vlog)
	}
}

func (l *Ledger) settleWithdrawal(
	ctx *callContext,
	meter *budget.Meter,
	v *validatorState,
	rec *epochs.Epoch,
	esc *epochs.StakingEscrow,
	vlog log.Logger,
) {
	meter.Charge(budget.KindTransfer, shmon.CostAdapterTransfer)
	ctx.expect(receiptWithdrawal)
	err := l.adapter.Withdraw(ctx, v.ID, rec.WithdrawalID)
	received := ctx.take()
	if err != nil {
		l.adapterFailed(err)
		if !rec.CrankedInBoundary {
			// one more epoch in the window
			rec.CrankedInBoundary = true
			return
		}
		v.Orphans = append(v.Orphans, Orphan{WithdrawalID: rec.WithdrawalID, Amount: esc.PendingUnstaking})
		vlog.Warn("withdrawal orphaned", "id", rec.WithdrawalID, "amount", shmon.Format(esc.PendingUnstaking))
		rec.HasWithdrawal = false
		esc.PendingUnstaking = uint256.Int{}
		return
	}

	l.bookWithdrawal(esc.PendingUnstaking, received)
	vlog.Debug("withdrawal settled", "id", rec.WithdrawalID, "amount", shmon.Format(received))
	rec.HasWithdrawal = false
	esc.PendingUnstaking = uint256.Int{}
}

// retryOrphans retries the first n orphans. Orphans added after them wait for
// the next crank.
func (l *Ledger) retryOrphans(ctx *callContext, meter *budget.Meter, v *validatorState, n int, vlog log.Logger) {
	fresh := v.Orphans[n:]
	var kept []Orphan
	for _, o := range v.Orphans[:n] {
		meter.Charge(budget.KindTransfer, shmon.CostAdapterTransfer)
		ctx.expect(receiptWithdrawal)
		err := l.adapter.Withdraw(ctx, v.ID, o.WithdrawalID)
		received := ctx.take()
		if err != nil {
			l.adapterFailed(err)
			kept = append(kept, o)
			continue
		}
		l.bookWithdrawal(o.Amount, received)
		vlog.Info("orphaned withdrawal recovered", "id", o.WithdrawalID, "amount", shmon.Format(received))
	}
	v.Orphans = append(kept, fresh...)
}

// bookWithdrawal retires booked stake and routes the cash received: liabilities
// first, the rest back to the stake queue.
func (l *Ledger) bookWithdrawal(booked, received uint256.Int) {
	l.books.Working.Staked = shmon.SatSub(l.books.Working.Staked, booked)
	if received.IsZero() {
		return
	}
	reserved := l.books.Reserve(received, l.balance)
	flows := l.globalFlows.Ptr(l.InternalEpoch(), 0)
	flows.QueueToStake = shmon.Add(flows.QueueToStake, shmon.Sub(received, reserved))
}

// payValidatorShare sends the escrowed share of the last two epochs. What the
// adapter does not take stays escrowed in the current epoch.
func (l *Ledger) payValidatorShare(meter *budget.Meter, v *validatorState, vlog log.Logger) {
	epoch := l.InternalEpoch()
	prev := v.rewards.Ptr(epoch, -1)
	cur := v.rewards.Ptr(epoch, 0)
	owed := shmon.Add(prev.Allocated, cur.Allocated)
	if owed.IsZero() {
		return
	}
	owed = shmon.Min(owed, l.books.Working.Reserved)

	meter.Charge(budget.KindTransfer, shmon.CostAdapterTransfer)
	paid, err := l.adapter.ExternalReward(v.ID, owed)
	if err != nil {
		l.adapterFailed(err)
		paid = uint256.Int{}
	}
	paid = shmon.Min(paid, owed)

	l.balance = shmon.Sub(l.balance, paid)
	l.expected = shmon.SatSub(l.expected, paid)
	l.books.Liabilities.RewardsPayable = shmon.SatSub(l.books.Liabilities.RewardsPayable, paid)
	l.books.Working.Reserved = shmon.Sub(l.books.Working.Reserved, paid)

	cur.Allocated = shmon.Sub(shmon.Add(prev.Allocated, cur.Allocated), paid)
	prev.Allocated = uint256.Int{}
	if !cur.Allocated.IsZero() {
		vlog.Debug("validator share short paid", "paid", shmon.Format(paid), "escrowed", shmon.Format(cur.Allocated))
	}
}

// reconcile aligns the target with the stake the precompile reports. A
// deficit above the slashing threshold trips the circuit breaker.
func (l *Ledger) reconcile(meter *budget.Meter, v *validatorState, vlog log.Logger) {
	meter.Charge(budget.KindAdapter, shmon.CostAdapterCall)
	info, err := l.adapter.GetDelegator(v.ID)
	if err != nil {
		l.adapterFailed(err)
		return
	}

	cur := v.epochs.Ptr(l.InternalEpoch(), 0)
	switch info.Stake.Cmp(&cur.TargetStake) {
	case 1:
		surplus := shmon.Sub(info.Stake, cur.TargetStake)
		cur.TargetStake = info.Stake
		l.books.Working.Staked = shmon.Add(l.books.Working.Staked, surplus)
		vlog.Info("stake surplus", "amount", shmon.Format(surplus))
	case -1:
		deficit := shmon.Sub(cur.TargetStake, info.Stake)
		threshold := shmon.MulDiv(l.params.SlashingThreshold, l.Equity(), shmon.Base)
		cur.TargetStake = info.Stake
		l.books.Working.Staked = shmon.SatSub(l.books.Working.Staked, deficit)
		vlog.Warn("stake deficit", "amount", shmon.Format(deficit))
		if deficit.Gt(&threshold) {
			l.tripBreaker("stake deficit above slashing threshold",
				"validator", v.ID, "deficit", shmon.Format(deficit), "threshold", shmon.Format(threshold))
		}
	}
}

// allocate solves and applies this validator's share of the closed epoch's queues.
func (l *Ledger) allocate(meter *budget.Meter, v *validatorState, inBoundary bool, vlog log.Logger) {
	epoch := l.InternalEpoch()
	cur := v.epochs.Ptr(epoch, 0)
	queues := l.globalFlows.At(epoch, -1)

	var available uint256.Int
	if v.Active && v.InActiveSetLast {
		// counted in the round's global available
		available = cur.TargetStake
	}
	res := allocation.Solve(allocation.Input{
		QueueToStake:       queues.QueueToStake,
		QueueForUnstake:    queues.QueueForUnstake,
		ValidatorRevenue:   l.validatorRevenueWindow(v),
		GlobalRevenue:      l.round.GlobalRevenue,
		ValidatorAvailable: available,
		GlobalAvailable:    l.round.GlobalAvailable,
		CurrentTarget:      cur.TargetStake,
		DustThreshold:      l.params.DustThreshold,
		MinDeposit:         l.params.MinValidatorDeposit,
	})
	l.round.StakeAssigned = shmon.Add(l.round.StakeAssigned, res.Increase)
	l.round.UnstakeAssigned = shmon.Add(l.round.UnstakeAssigned, res.Decrease)

	p := l.plan(v, cur.TargetStake, res)

	var requeue epochs.CashFlows
	requeue.Add(p.requeue)

	// cash assigned to stake that meets unstake demand in place
	if !p.netted.IsZero() {
		reserved := l.books.Reserve(p.netted, l.balance)
		requeue.QueueToStake = shmon.Add(requeue.QueueToStake, shmon.Sub(p.netted, reserved))
	}

	if !p.stake.IsZero() {
		short := l.delegate(meter, v, p.stake, inBoundary, vlog)
		requeue.QueueToStake = shmon.Add(requeue.QueueToStake, short)
	}
	if !p.unstake.IsZero() {
		short := l.undelegate(meter, v, p.unstake, inBoundary, vlog)
		if !p.exit {
			requeue.QueueForUnstake = shmon.Add(requeue.QueueForUnstake, short)
		}
	}

	if !requeue.IsZero() {
		l.globalFlows.Ptr(epoch, 0).Add(requeue)
	}
	vlog.Debug("allocated",
		"increase", shmon.Format(res.Increase),
		"decrease", shmon.Format(res.Decrease),
		"stake", shmon.Format(p.stake),
		"unstake", shmon.Format(p.unstake),
		"exit", p.exit,
		"target", shmon.Format(cur.TargetStake),
	)
}

// plan is what allocate executes for one validator.
type plan struct {
	stake   uint256.Int
	unstake uint256.Int
	netted  uint256.Int
	requeue epochs.CashFlows
	exit    bool // full unstake outside the queues
}

func (l *Ledger) plan(v *validatorState, target uint256.Int, res allocation.Result) plan {
	var p plan
	switch {
	case !v.Active:
		p.exit = true
		p.unstake = target
		p.requeue.QueueToStake = res.Increase
	case res.Withdrawal:
		p.unstake = res.Net
		p.netted = res.Increase
	default:
		newTarget := shmon.Add(target, res.Net)
		switch {
		case newTarget.Lt(&l.params.MinValidatorDeposit):
			p.exit = true
			p.unstake = target
			p.requeue.QueueToStake = res.Increase
		case !v.InActiveSetCurrent:
			p.requeue.QueueToStake = res.Net
			p.netted = res.Decrease
		default:
			p.stake = res.Net
			p.netted = res.Decrease
		}
	}

	// dust is not worth an adapter call; full exits always go through
	if !p.stake.IsZero() && p.stake.Lt(&l.params.DustThreshold) {
		p.requeue.QueueToStake = shmon.Add(p.requeue.QueueToStake, p.stake)
		p.stake = uint256.Int{}
	}
	if !p.exit && !p.unstake.IsZero() && p.unstake.Lt(&l.params.DustThreshold) {
		p.requeue.QueueForUnstake = shmon.Add(p.requeue.QueueForUnstake, p.unstake)
		p.unstake = uint256.Int{}
	}
	return p
}

// delegate stakes amount with v and returns the part to re-queue.
func (l *Ledger) delegate(meter *budget.Meter, v *validatorState, amount uint256.Int, inBoundary bool, vlog log.Logger) uint256.Int {
	// never stake cash the pool or the reserve holds
	amount = shmon.Min(amount, l.Unassigned())
	if amount.IsZero() {
		return amount
	}

	meter.Charge(budget.KindTransfer, shmon.CostAdapterTransfer)
	accepted, err := l.adapter.Delegate(v.ID, amount)
	if err != nil {
		l.adapterFailed(err)
		return amount
	}
	accepted = shmon.Min(accepted, amount)
	if accepted.IsZero() {
		return amount
	}

	epoch := l.InternalEpoch()
	l.balance = shmon.Sub(l.balance, accepted)
	l.expected = shmon.SatSub(l.expected, accepted)
	l.books.Working.Staked = shmon.Add(l.books.Working.Staked, accepted)

	rec := v.epochs.Ptr(epoch, 0)
	rec.TargetStake = shmon.Add(rec.TargetStake, accepted)
	rec.HasDeposit = true
	rec.CrankedInBoundary = inBoundary
	esc := v.escrow.Ptr(epoch, 0)
	esc.PendingStaking = shmon.Add(esc.PendingStaking, accepted)

	vlog.Debug("delegated", "amount", shmon.Format(accepted), "requested", shmon.Format(amount))
	return shmon.Sub(amount, accepted)
}

// undelegate starts unbonding amount from v and returns the shortfall.
func (l *Ledger) undelegate(meter *budget.Meter, v *validatorState, amount uint256.Int, inBoundary bool, vlog log.Logger) uint256.Int {
	epoch := l.InternalEpoch()
	rec := v.epochs.Ptr(epoch, 0)
	amount = shmon.Min(amount, rec.TargetStake)
	if amount.IsZero() {
		return amount
	}

	meter.Charge(budget.KindTransfer, shmon.CostAdapterTransfer)
	wid := v.NextWithdrawalID
	accepted, err := l.adapter.Undelegate(v.ID, amount, wid)
	if err != nil {
		l.adapterFailed(err)
		return amount
	}
	accepted = shmon.Min(accepted, amount)
	if accepted.IsZero() {
		return amount
	}
	v.NextWithdrawalID++

	rec.TargetStake = shmon.Sub(rec.TargetStake, accepted)
	rec.HasWithdrawal = true
	rec.WithdrawalID = wid
	rec.CrankedInBoundary = inBoundary
	esc := v.escrow.Ptr(epoch, 0)
	esc.PendingUnstaking = shmon.Add(esc.PendingUnstaking, accepted)

	vlog.Debug("undelegated", "amount", shmon.Format(accepted), "requested", shmon.Format(amount), "id", wid)
	return shmon.Sub(amount, accepted)
}

// validatorRevenueWindow sums the validator's earned revenue over the settled
// epochs of the window.
func (l *Ledger) validatorRevenueWindow(v *validatorState) uint256.Int {
	var total uint256.Int
	for delta := -1; delta >= -l.params.RevenueWindow; delta-- {
		total = shmon.Add(total, v.rewards.At(l.InternalEpoch(), delta).Earned)
	}
	return total
}

// cooledDown reports whether a deactivated validator has nothing left with
// the ledger and waited out the cooldown.
func (l *Ledger) cooledDown(v *validatorState) bool {
	if v.Active || l.InternalEpoch() < v.DeactivatedAt+l.params.DeactivationCooldown {
		return false
	}
	if len(v.Orphans) > 0 || !v.epochs.Ptr(l.InternalEpoch(), 0).TargetStake.IsZero() {
		return false
	}
	for i := range v.escrow.Slots {
		esc := v.escrow.Slots[i]
		if !esc.PendingStaking.IsZero() || !esc.PendingUnstaking.IsZero() || !v.rewards.Slots[i].Allocated.IsZero() {
			return false
		}
	}
	return true
}

func (l *Ledger) notifyPayout(meter *budget.Meter, v *validatorState, vlog log.Logger) {
	if v.payout == nil {
		return
	}
	meter.Charge(budget.KindHook, shmon.CostPayoutHook)
	defer func() {
		if r := recover(); r != nil {
			metricPayoutHookFailure().Add(1)
			vlog.Warn("payout hook panicked", "panic", r)
		}
	}()
	if err := v.payout.Process(); err != nil {
		metricPayoutHookFailure().Add(1)
		vlog.Warn("payout hook failed", "err", err)
	}
}
