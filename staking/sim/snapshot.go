// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sim

import (
	"slices"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/shmonad/shmon/shmon"
)

type withdrawalRecord struct {
	ID      uint8
	Amount  uint256.Int
	ReadyAt uint64
}

type validatorRecord struct {
	ID          shmon.ValidatorID
	Commission  uint256.Int
	InActiveSet bool
	Stake       uint256.Int
	Rewards     uint256.Int
	External    uint256.Int
	Withdrawals []withdrawalRecord
}

type snapshot struct {
	Block      uint64
	Sunk       uint256.Int
	Validators []validatorRecord
}

// Encode serializes the chain state. Injected failures are not kept.
func (p *Precompile) Encode() ([]byte, error) {
	p.lock.Lock()
	defer p.lock.Unlock()

	s := snapshot{Block: p.block, Sunk: p.sunk}
	for id, v := range p.validators {
		rec := validatorRecord{
			ID:          id,
			Commission:  v.Commission,
			InActiveSet: v.InActiveSet,
			Stake:       v.Stake,
			Rewards:     v.Rewards,
			External:    v.External,
		}
		for wid, w := range v.Withdrawals {
			rec.Withdrawals = append(rec.Withdrawals, withdrawalRecord{ID: wid, Amount: w.Amount, ReadyAt: w.ReadyAt})
		}
		slices.SortFunc(rec.Withdrawals, func(a, b withdrawalRecord) int { return int(a.ID) - int(b.ID) })
		s.Validators = append(s.Validators, rec)
	}
	slices.SortFunc(s.Validators, func(a, b validatorRecord) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return rlp.EncodeToBytes(&s)
}

// Decode replaces the chain state with an encoded snapshot.
func (p *Precompile) Decode(data []byte) error {
	var s snapshot
	if err := rlp.DecodeBytes(data, &s); err != nil {
		return errors.Wrap(err, "decode precompile snapshot")
	}

	p.lock.Lock()
	defer p.lock.Unlock()

	p.block = s.Block
	p.sunk = s.Sunk
	p.validators = make(map[shmon.ValidatorID]*validator, len(s.Validators))
	for _, rec := range s.Validators {
		v := &validator{
			Commission:  rec.Commission,
			InActiveSet: rec.InActiveSet,
			Stake:       rec.Stake,
			Rewards:     rec.Rewards,
			External:    rec.External,
			Withdrawals: make(map[uint8]withdrawal, len(rec.Withdrawals)),
		}
		for _, w := range rec.Withdrawals {
			v.Withdrawals[w.ID] = withdrawal{Amount: w.Amount, ReadyAt: w.ReadyAt}
		}
		p.validators[rec.ID] = v
	}
	return nil
}
