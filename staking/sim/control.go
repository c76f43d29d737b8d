// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sim

import (
	"github.com/holiman/uint256"

	"github.com/shmonad/shmon/shmon"
	"github.com/shmonad/shmon/staking"
)

// AddValidator registers a validator in the active set.
func (p *Precompile) AddValidator(id shmon.ValidatorID, commission uint256.Int) {
	p.lock.Lock()
	defer p.lock.Unlock()

	p.validators[id] = &validator{
		Commission:  commission,
		InActiveSet: true,
		Withdrawals: make(map[uint8]withdrawal),
	}
}

func (p *Precompile) SetActive(id shmon.ValidatorID, active bool) {
	p.lock.Lock()
	defer p.lock.Unlock()

	if v, ok := p.validators[id]; ok {
		v.InActiveSet = active
	}
}

// Advance moves the chain forward by blocks.
func (p *Precompile) Advance(blocks uint64) {
	p.lock.Lock()
	defer p.lock.Unlock()

	p.block += blocks
}

// NextEpoch jumps to the first block of the next epoch.
func (p *Precompile) NextEpoch() {
	p.lock.Lock()
	defer p.lock.Unlock()

	p.block = (p.epoch() + 1) * p.cfg.EpochBlocks
}

// EnterBoundary jumps to the first boundary block of the current epoch.
func (p *Precompile) EnterBoundary() {
	p.lock.Lock()
	defer p.lock.Unlock()

	start := p.epoch()*p.cfg.EpochBlocks + p.cfg.EpochBlocks - p.cfg.BoundaryBlocks
	if p.block < start {
		p.block = start
	}
}

// Reward credits claimable rewards to the delegator on id.
func (p *Precompile) Reward(id shmon.ValidatorID, amount uint256.Int) {
	p.lock.Lock()
	defer p.lock.Unlock()

	if v, ok := p.validators[id]; ok && v.InActiveSet {
		v.Rewards = shmon.Add(v.Rewards, amount)
	}
}

// Accrue credits every active validator rewards of rate (base 1e18) on the delegated stake.
func (p *Precompile) Accrue(rate uint256.Int) {
	p.lock.Lock()
	defer p.lock.Unlock()

	for _, v := range p.validators {
		if v.InActiveSet {
			v.Rewards = shmon.Add(v.Rewards, shmon.MulDiv(v.Stake, rate, shmon.Base))
		}
	}
}

// Slash removes amount of the delegated stake on id.
func (p *Precompile) Slash(id shmon.ValidatorID, amount uint256.Int) {
	p.lock.Lock()
	defer p.lock.Unlock()

	if v, ok := p.validators[id]; ok {
		amount = shmon.Min(amount, v.Stake)
		v.Stake = shmon.Sub(v.Stake, amount)
		p.sunk = shmon.SatSub(p.sunk, amount)
	}
}

// FailNext makes the next op call on id fail with reason. GetEpoch failures use id 0.
func (p *Precompile) FailNext(op staking.Op, id shmon.ValidatorID, reason string) {
	p.lock.Lock()
	defer p.lock.Unlock()

	p.failures[opKey{op, id}] = reason
}

// ShortNext caps the amount accepted by the next op call on id.
func (p *Precompile) ShortNext(op staking.Op, id shmon.ValidatorID, amount uint256.Int) {
	p.lock.Lock()
	defer p.lock.Unlock()

	p.shortfalls[opKey{op, id}] = amount
}

// Pending returns the undelegated amount not yet withdrawn on id.
func (p *Precompile) Pending(id shmon.ValidatorID) uint256.Int {
	p.lock.Lock()
	defer p.lock.Unlock()

	var total uint256.Int
	if v, ok := p.validators[id]; ok {
		for _, w := range v.Withdrawals {
			total = shmon.Add(total, w.Amount)
		}
	}
	return total
}

// ExternalRewards returns what the delegator paid into id's reward pool.
func (p *Precompile) ExternalRewards(id shmon.ValidatorID) uint256.Int {
	p.lock.Lock()
	defer p.lock.Unlock()

	if v, ok := p.validators[id]; ok {
		return v.External
	}
	return uint256.Int{}
}

// Held is the delegator value sitting in the precompile: stake plus pending withdrawals.
func (p *Precompile) Held() uint256.Int {
	p.lock.Lock()
	defer p.lock.Unlock()

	return p.sunk
}
