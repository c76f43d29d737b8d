// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/shmonad/shmon/ledger/epochs"
	"github.com/shmonad/shmon/ledger/linkedlist"
	"github.com/shmonad/shmon/ledger/reverts"
	"github.com/shmonad/shmon/shmon"
)

// AddValidator appends id to the crank order. The precompile must know it.
func (l *Ledger) AddValidator(id shmon.ValidatorID) error {
	return l.guarded(func(*callContext) error {
		if linkedlist.IsSentinel(id) {
			return reverts.ErrInvalidValidatorID
		}
		if _, ok := l.validators[id]; ok {
			return reverts.ErrValidatorExists
		}
		info, err := l.adapter.GetValidator(id)
		if err != nil {
			l.adapterFailed(err)
			return reverts.ErrUnknownValidator
		}
		if err := l.list.Add(id); err != nil {
			return err
		}

		v := &validatorState{
			ValidatorData: ValidatorData{
				ID:                 id,
				Active:             true,
				InActiveSetCurrent: info.InActiveSet,
				InActiveSetLast:    info.InActiveSet,
				LastTransition:     l.InternalEpoch(),
			},
		}
		epoch := l.InternalEpoch()
		cur := epochs.Epoch{Epoch: l.currentEpoch().Epoch}
		v.epochs.Set(epoch, 0, cur)
		v.epochs.Set(epoch, 1, cur.Next(cur.Epoch+1))
		l.validators[id] = v

		logger.Info("validator added", "validator", id, "inActiveSet", info.InActiveSet)
		return nil
	})
}

// DeactivateValidator starts a full unstake of id. The validator is removed
// once nothing is left with it and the cooldown passed.
func (l *Ledger) DeactivateValidator(id shmon.ValidatorID) error {
	return l.guarded(func(*callContext) error {
		v, ok := l.validators[id]
		if !ok {
			return reverts.ErrUnknownValidator
		}
		if !v.Active {
			return reverts.ErrValidatorInactive
		}
		v.Active = false
		v.DeactivatedAt = l.InternalEpoch()
		logger.Info("validator deactivated", "validator", id, "internal", v.DeactivatedAt)
		return nil
	})
}

// SetPayoutProcessor installs the payout hook of id; nil removes it.
func (l *Ledger) SetPayoutProcessor(id shmon.ValidatorID, p PayoutProcessor) error {
	return l.guarded(func(*callContext) error {
		v, ok := l.validators[id]
		if !ok {
			return reverts.ErrUnknownValidator
		}
		v.payout = p
		return nil
	})
}
