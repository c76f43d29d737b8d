// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/holiman/uint256"

	"github.com/shmonad/shmon/ledger/accounting"
	"github.com/shmonad/shmon/ledger/atomicpool"
	"github.com/shmonad/shmon/ledger/reverts"
	"github.com/shmonad/shmon/shmon"
)

// Deposit takes amount into the ledger and queues it for staking. It returns
// the equity a share mint should price against: equity before the deposit,
// less revenue that has not vested yet.
func (l *Ledger) Deposit(amount uint256.Int) (uint256.Int, error) {
	var equity uint256.Int
	err := l.guarded(func(*callContext) error {
		if err := l.open(); err != nil {
			return err
		}
		if amount.IsZero() {
			return reverts.ErrZeroAmount
		}
		if amount.Lt(&l.params.MinDeposit) {
			return reverts.ErrBelowMinimum
		}
		equity = l.DepositEquity()

		l.balance = shmon.Add(l.balance, amount)
		l.expected = shmon.Add(l.expected, amount)
		flows := l.globalFlows.Ptr(l.InternalEpoch(), 0)
		flows.QueueToStake = shmon.Add(flows.QueueToStake, amount)

		metricFlowCount().AddWithLabel(1, map[string]string{"kind": "deposit"})
		logger.Debug("deposit", "amount", shmon.Format(amount))
		return nil
	})
	return equity, err
}

// DepositEquity is equity less the revenue of the current epoch and the
// unvested part of the last one.
func (l *Ledger) DepositEquity() uint256.Int {
	info, err := l.adapter.GetEpoch()
	block := l.smoother.LastBlock
	if err == nil {
		block = info.Block
	}
	unvested := shmon.Add(
		l.smoother.Unvested(block, l.params.EpochTicks),
		l.globalRevenue.At(l.InternalEpoch(), 0).Earned,
	)
	return shmon.SatSub(l.Equity(), unvested)
}

// RequestUnstake books a redemption of amount. The cash is raised through
// the validator rounds and can be claimed once reserved.
func (l *Ledger) RequestUnstake(amount uint256.Int) (readyEpoch uint64, err error) {
	err = l.guarded(func(*callContext) error {
		if l.Frozen() {
			return reverts.ErrFrozen
		}
		if amount.IsZero() {
			return reverts.ErrZeroAmount
		}
		equity := l.Equity()
		if amount.Gt(&equity) {
			return reverts.ErrInsufficientReserves
		}
		l.books.Liabilities.RedemptionsPayable = shmon.Add(l.books.Liabilities.RedemptionsPayable, amount)
		flows := l.globalFlows.Ptr(l.InternalEpoch(), 0)
		flows.QueueForUnstake = shmon.Add(flows.QueueForUnstake, amount)
		readyEpoch = l.currentEpoch().Epoch + shmon.MaxSettlementLag + 1

		metricFlowCount().AddWithLabel(1, map[string]string{"kind": "unstake_request"})
		logger.Debug("unstake requested", "amount", shmon.Format(amount), "ready", readyEpoch)
		return nil
	})
	return
}

// ClaimRedemption pays out a booked redemption from the reserve.
func (l *Ledger) ClaimRedemption(amount uint256.Int) error {
	return l.guarded(func(*callContext) error {
		if l.Frozen() {
			return reverts.ErrFrozen
		}
		if amount.IsZero() {
			return reverts.ErrZeroAmount
		}
		if amount.Gt(&l.books.Liabilities.RedemptionsPayable) {
			return reverts.ErrInsufficientPayable
		}
		if err := l.payFromReserve(amount); err != nil {
			return err
		}
		l.books.Liabilities.RedemptionsPayable = shmon.Sub(l.books.Liabilities.RedemptionsPayable, amount)
		metricFlowCount().AddWithLabel(1, map[string]string{"kind": "redemption"})
		return nil
	})
}

// ClaimCommission pays the operator's commission from the reserve.
func (l *Ledger) ClaimCommission(amount uint256.Int) error {
	return l.guarded(func(*callContext) error {
		if amount.IsZero() {
			return reverts.ErrZeroAmount
		}
		if amount.Gt(&l.commission) {
			return reverts.ErrInsufficientPayable
		}
		if err := l.payFromReserve(amount); err != nil {
			return err
		}
		l.commission = shmon.Sub(l.commission, amount)
		l.books.Liabilities.RewardsPayable = shmon.Sub(l.books.Liabilities.RewardsPayable, amount)
		metricFlowCount().AddWithLabel(1, map[string]string{"kind": "commission"})
		return nil
	})
}

func (l *Ledger) payFromReserve(amount uint256.Int) error {
	if amount.Gt(&l.books.Working.Reserved) {
		return reverts.ErrInsufficientReserves
	}
	l.books.Working.Reserved = shmon.Sub(l.books.Working.Reserved, amount)
	l.balance = shmon.Sub(l.balance, amount)
	l.expected = shmon.SatSub(l.expected, amount)
	return nil
}

// Pool returns the atomic pool as priced right now.
func (l *Ledger) Pool() atomicpool.Pool {
	return atomicpool.Pool{
		Curve: atomicpool.FeeCurve{
			Slope:     l.books.Admin.FeeSlope,
			Intercept: l.books.Admin.FeeIntercept,
		},
		Allocated:   l.books.Atomic.Allocated,
		Distributed: l.books.Atomic.Distributed,
		Utilized: atomicpool.AdjustedUtilized(
			l.books.Atomic.Distributed,
			l.globalRevenue.At(l.InternalEpoch(), 0).Unsettled(),
		),
		MinFee:        l.params.MinAtomicFee,
		DustThreshold: l.params.DustThreshold,
	}
}

// AtomicUnstake pays out gross (less the fee) from the pool immediately. A
// gross beyond the liquidity is clamped; the quote tells what was taken.
func (l *Ledger) AtomicUnstake(gross uint256.Int) (atomicpool.Quote, error) {
	return l.atomicUnstake(func(p atomicpool.Pool) (atomicpool.Quote, error) {
		return p.Quote(gross)
	})
}

// AtomicUnstakeNet pays out exactly net, or fails when the pool cannot.
func (l *Ledger) AtomicUnstakeNet(net uint256.Int) (atomicpool.Quote, error) {
	return l.atomicUnstake(func(p atomicpool.Pool) (atomicpool.Quote, error) {
		return p.QuoteNet(net)
	})
}

func (l *Ledger) atomicUnstake(quote func(atomicpool.Pool) (atomicpool.Quote, error)) (atomicpool.Quote, error) {
	var q atomicpool.Quote
	err := l.guarded(func(*callContext) error {
		if l.Frozen() {
			return reverts.ErrFrozen
		}
		var err error
		if q, err = quote(l.Pool()); err != nil {
			return err
		}
		if q.Net.IsZero() {
			return reverts.ErrBelowMinimum
		}
		l.books.Atomic.Distributed = shmon.Add(l.books.Atomic.Distributed, q.Net)
		l.balance = shmon.Sub(l.balance, q.Net)
		l.expected = shmon.SatSub(l.expected, q.Net)

		metricFlowCount().AddWithLabel(1, map[string]string{"kind": "atomic_unstake"})
		logger.Debug("atomic unstake", "gross", shmon.Format(q.Gross), "net", shmon.Format(q.Net), "fee", shmon.Format(q.Fee))
		return nil
	})
	return q, err
}

// Receive is a bare transfer into the ledger. It is not expected, so the
// next global crank folds it into the stake queue as goodwill.
func (l *Ledger) Receive(amount uint256.Int) {
	l.balance = shmon.Add(l.balance, amount)
}

// BoostYield credits revenue earned on behalf of validator id, such as a
// payout contract forwarding tips. It is split like claimed rewards.
func (l *Ledger) BoostYield(id shmon.ValidatorID, amount uint256.Int) error {
	return l.guarded(func(*callContext) error {
		if amount.IsZero() {
			return reverts.ErrZeroAmount
		}
		v, ok := l.validators[id]
		if !ok {
			return reverts.ErrUnknownValidator
		}
		l.balance = shmon.Add(l.balance, amount)
		l.expected = shmon.Add(l.expected, amount)
		l.creditRewards(v, amount)
		metricFlowCount().AddWithLabel(1, map[string]string{"kind": "boost"})
		return nil
	})
}

// creditRewards splits gross rewards received for v: commission and the
// validator share become reserved liabilities, the rest is revenue queued to stake.
func (l *Ledger) creditRewards(v *validatorState, gross uint256.Int) accounting.RewardSplit {
	split := accounting.SplitReward(l.books.Admin, gross)
	epoch := l.InternalEpoch()

	owed := shmon.Add(split.Commission, split.ValidatorShare)
	l.books.Liabilities.RewardsPayable = shmon.Add(l.books.Liabilities.RewardsPayable, owed)
	l.commission = shmon.Add(l.commission, split.Commission)
	l.books.Reserve(owed, l.balance)

	vr := v.rewards.Ptr(epoch, 0)
	vr.Allocated = shmon.Add(vr.Allocated, split.ValidatorShare)
	vr.Earned = shmon.Add(vr.Earned, split.Net)

	gr := l.globalRevenue.Ptr(epoch, 0)
	gr.Earned = shmon.Add(gr.Earned, split.Net)

	flows := l.globalFlows.Ptr(epoch, 0)
	flows.QueueToStake = shmon.Add(flows.QueueToStake, split.Net)
	return split
}

// open rejects flows into a frozen or closed ledger.
func (l *Ledger) open() error {
	if l.Frozen() {
		return reverts.ErrFrozen
	}
	if l.Closed() {
		return reverts.ErrClosed
	}
	return nil
}
