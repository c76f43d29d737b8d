// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/shmonad/shmon/shmon"
	"github.com/shmonad/shmon/staking"
)

// CheckInvariants verifies the accounting identities. It does not change state.
func (l *Ledger) CheckInvariants() error {
	if err := l.books.Check(l.balance); err != nil {
		return err
	}
	if l.expected.Gt(&l.balance) {
		return errors.Errorf("expected balance %s above balance %s", l.expected.Dec(), l.balance.Dec())
	}
	if l.commission.Gt(&l.books.Liabilities.RewardsPayable) {
		return errors.Errorf("commission %s above rewards payable %s",
			l.commission.Dec(), l.books.Liabilities.RewardsPayable.Dec())
	}

	// booked stake is exactly what sits with validators or is on its way back
	var held uint256.Int
	epoch := l.InternalEpoch()
	for _, v := range l.validators {
		held = shmon.Add(held, v.epochs.At(epoch, 0).TargetStake)
		for i := range v.escrow.Slots {
			held = shmon.Add(held, v.escrow.Slots[i].PendingUnstaking)
		}
		for _, o := range v.Orphans {
			held = shmon.Add(held, o.Amount)
		}
	}
	if !held.Eq(&l.books.Working.Staked) {
		return errors.Errorf("staked %s does not match validator positions %s",
			l.books.Working.Staked.Dec(), held.Dec())
	}
	if l.list.Len() != len(l.validators) {
		return errors.Errorf("validator list has %d entries, registry %d", l.list.Len(), len(l.validators))
	}
	return nil
}

// verify trips the circuit breaker when an invariant no longer holds.
func (l *Ledger) verify(stage string) {
	if err := l.CheckInvariants(); err != nil {
		l.tripBreaker("invariant violated", "stage", stage, "err", err)
	}
}

// tripBreaker freezes and closes the ledger.
func (l *Ledger) tripBreaker(reason string, ctx ...any) {
	cur := l.globalEpochs.Ptr(l.InternalEpoch(), 0)
	cur.Frozen = true
	cur.Closed = true
	metricCircuitBreaker().Add(1)
	logger.Error("circuit breaker tripped: "+reason, ctx...)
}

// adapterFailed records a soft adapter failure.
func (l *Ledger) adapterFailed(err error) {
	f, ok := staking.AsFailure(err)
	if !ok {
		metricAdapterFailures().AddWithLabel(1, map[string]string{"op": "unknown", "reason": "error"})
		logger.Warn("adapter call failed", "err", err)
		return
	}
	metricAdapterFailures().AddWithLabel(1, map[string]string{"op": string(f.Op), "reason": f.Reason})
	logger.Warn("adapter call failed", "op", f.Op, "validator", f.Validator, "reason", f.Reason)
}
