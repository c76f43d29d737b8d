// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/shmonad/shmon/kv"
	"github.com/shmonad/shmon/ledger/accounting"
	"github.com/shmonad/shmon/ledger/epochs"
	"github.com/shmonad/shmon/ledger/linkedlist"
	"github.com/shmonad/shmon/shmon"
	"github.com/shmonad/shmon/staking"
)

var stateKey = []byte("state")

type validatorRecord struct {
	Data    ValidatorData
	Epochs  epochs.Ring[epochs.Epoch]
	Escrow  epochs.Ring[epochs.StakingEscrow]
	Rewards epochs.Ring[epochs.Revenue]
}

type state struct {
	Balance    uint256.Int
	Expected   uint256.Int
	Books      accounting.Books
	Commission uint256.Int

	GlobalEpochs  epochs.Ring[epochs.Epoch]
	GlobalFlows   epochs.Ring[epochs.CashFlows]
	GlobalRevenue epochs.Ring[epochs.Revenue]

	Cursor     shmon.ValidatorID
	Round      Round
	Smoother   RevenueSmoother
	Validators []validatorRecord // crank order
}

// Encode serializes the ledger. Payout processors are not part of it.
func (l *Ledger) Encode() ([]byte, error) {
	s := state{
		Balance:       l.balance,
		Expected:      l.expected,
		Books:         l.books,
		Commission:    l.commission,
		GlobalEpochs:  l.globalEpochs,
		GlobalFlows:   l.globalFlows,
		GlobalRevenue: l.globalRevenue,
		Cursor:        l.cursor,
		Round:         l.round,
		Smoother:      l.smoother,
	}
	for _, id := range l.list.Slice() {
		v := l.validators[id]
		s.Validators = append(s.Validators, validatorRecord{
			Data:    v.ValidatorData,
			Epochs:  v.epochs,
			Escrow:  v.escrow,
			Rewards: v.rewards,
		})
	}
	return rlp.EncodeToBytes(&s)
}

// Decode restores a ledger encoded by Encode.
func Decode(data []byte, adapter staking.Adapter, params Params) (*Ledger, error) {
	if err := params.Validate(); err != nil {
		return nil, errors.Wrap(err, "params")
	}
	var s state
	if err := rlp.DecodeBytes(data, &s); err != nil {
		return nil, errors.Wrap(err, "decode ledger state")
	}

	l := newLedger(adapter, params)
	l.balance = s.Balance
	l.expected = s.Expected
	l.books = s.Books
	l.commission = s.Commission
	l.globalEpochs = s.GlobalEpochs
	l.globalFlows = s.GlobalFlows
	l.globalRevenue = s.GlobalRevenue
	l.cursor = s.Cursor
	l.round = s.Round
	l.smoother = s.Smoother

	ids := make([]shmon.ValidatorID, 0, len(s.Validators))
	for _, rec := range s.Validators {
		ids = append(ids, rec.Data.ID)
		l.validators[rec.Data.ID] = &validatorState{
			ValidatorData: rec.Data,
			epochs:        rec.Epochs,
			escrow:        rec.Escrow,
			rewards:       rec.Rewards,
		}
	}
	list, err := linkedlist.FromSlice(ids)
	if err != nil {
		return nil, errors.Wrap(err, "rebuild validator list")
	}
	l.list = list
	if !linkedlist.IsSentinel(l.cursor) && !l.list.Contains(l.cursor) {
		return nil, errors.Errorf("cursor %s not in validator list", l.cursor)
	}
	return l, nil
}

// Save writes the encoded ledger to w.
func (l *Ledger) Save(w kv.Putter) error {
	data, err := l.Encode()
	if err != nil {
		return errors.Wrap(err, "encode ledger state")
	}
	return w.Put(stateKey, data)
}

// Load reads a ledger saved by Save. found is false when r holds none.
func Load(r kv.Getter, adapter staking.Adapter, params Params) (l *Ledger, found bool, err error) {
	data, err := r.Get(stateKey)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, errors.Wrap(err, "read ledger state")
	}
	l, err = Decode(data, adapter, params)
	if err != nil {
		return nil, true, err
	}
	return l, true, nil
}
