// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package sim is an in-memory staking precompile for solo mode and tests.
package sim

import (
	"sync"

	"github.com/holiman/uint256"

	"github.com/shmonad/shmon/shmon"
	"github.com/shmonad/shmon/staking"
)

type Config struct {
	EpochBlocks     uint64 `yaml:"epoch_blocks"`
	BoundaryBlocks  uint64 `yaml:"boundary_blocks"`
	WithdrawalDelay uint64 `yaml:"withdrawal_delay"`
}

func DefaultConfig() Config {
	return Config{
		EpochBlocks:     100,
		BoundaryBlocks:  10,
		WithdrawalDelay: shmon.WithdrawalLag,
	}
}

type withdrawal struct {
	Amount  uint256.Int
	ReadyAt uint64
}

type validator struct {
	Commission  uint256.Int
	InActiveSet bool
	Stake       uint256.Int
	Rewards     uint256.Int
	External    uint256.Int
	Withdrawals map[uint8]withdrawal
}

type opKey struct {
	op staking.Op
	id shmon.ValidatorID
}

var _ staking.Adapter = (*Precompile)(nil)

// Precompile simulates the staking precompile for a single delegator.
type Precompile struct {
	lock       sync.Mutex
	cfg        Config
	block      uint64
	validators map[shmon.ValidatorID]*validator
	failures   map[opKey]string
	shortfalls map[opKey]uint256.Int
	// Sunk is the value the delegator paid in and has not been returned.
	sunk uint256.Int
}

func New(cfg Config) *Precompile {
	if cfg.EpochBlocks == 0 {
		cfg.EpochBlocks = DefaultConfig().EpochBlocks
	}
	if cfg.BoundaryBlocks >= cfg.EpochBlocks {
		cfg.BoundaryBlocks = cfg.EpochBlocks - 1
	}
	return &Precompile{
		cfg:        cfg,
		validators: make(map[shmon.ValidatorID]*validator),
		failures:   make(map[opKey]string),
		shortfalls: make(map[opKey]uint256.Int),
	}
}

func (p *Precompile) epoch() uint64 {
	return p.block / p.cfg.EpochBlocks
}

func (p *Precompile) inBoundary() bool {
	return p.block%p.cfg.EpochBlocks >= p.cfg.EpochBlocks-p.cfg.BoundaryBlocks
}

// takeFailure consumes an injected failure for op on id.
func (p *Precompile) takeFailure(op staking.Op, id shmon.ValidatorID) error {
	key := opKey{op, id}
	if reason, ok := p.failures[key]; ok {
		delete(p.failures, key)
		return staking.Fail(op, id, reason)
	}
	return nil
}

// accepted applies an injected shortfall to amount.
func (p *Precompile) accepted(op staking.Op, id shmon.ValidatorID, amount uint256.Int) uint256.Int {
	key := opKey{op, id}
	if limit, ok := p.shortfalls[key]; ok {
		delete(p.shortfalls, key)
		return shmon.Min(amount, limit)
	}
	return amount
}

func (p *Precompile) get(op staking.Op, id shmon.ValidatorID) (*validator, error) {
	if err := p.takeFailure(op, id); err != nil {
		return nil, err
	}
	v, ok := p.validators[id]
	if !ok {
		return nil, staking.Fail(op, id, staking.ReasonUnknownValidator)
	}
	return v, nil
}

func (p *Precompile) Delegate(id shmon.ValidatorID, amount uint256.Int) (uint256.Int, error) {
	p.lock.Lock()
	defer p.lock.Unlock()

	v, err := p.get(staking.OpDelegate, id)
	if err != nil {
		return uint256.Int{}, err
	}
	amount = p.accepted(staking.OpDelegate, id, amount)
	v.Stake = shmon.Add(v.Stake, amount)
	p.sunk = shmon.Add(p.sunk, amount)
	return amount, nil
}

func (p *Precompile) Undelegate(id shmon.ValidatorID, amount uint256.Int, wid uint8) (uint256.Int, error) {
	p.lock.Lock()
	defer p.lock.Unlock()

	v, err := p.get(staking.OpUndelegate, id)
	if err != nil {
		return uint256.Int{}, err
	}
	if _, ok := v.Withdrawals[wid]; ok {
		return uint256.Int{}, staking.Fail(staking.OpUndelegate, id, staking.ReasonReverted)
	}
	amount = shmon.Min(p.accepted(staking.OpUndelegate, id, amount), v.Stake)
	if amount.IsZero() {
		return amount, staking.Fail(staking.OpUndelegate, id, staking.ReasonInsufficientBalance)
	}
	ready := p.epoch() + p.cfg.WithdrawalDelay
	if p.inBoundary() {
		ready++
	}
	v.Stake = shmon.Sub(v.Stake, amount)
	v.Withdrawals[wid] = withdrawal{Amount: amount, ReadyAt: ready}
	return amount, nil
}

func (p *Precompile) Withdraw(payee staking.Payee, id shmon.ValidatorID, wid uint8) error {
	p.lock.Lock()
	v, err := p.get(staking.OpWithdraw, id)
	if err != nil {
		p.lock.Unlock()
		return err
	}
	w, ok := v.Withdrawals[wid]
	if !ok {
		p.lock.Unlock()
		return staking.Fail(staking.OpWithdraw, id, staking.ReasonUnknownWithdrawal)
	}
	if p.epoch() < w.ReadyAt {
		p.lock.Unlock()
		return staking.Fail(staking.OpWithdraw, id, staking.ReasonNotReady)
	}
	delete(v.Withdrawals, wid)
	p.sunk = shmon.SatSub(p.sunk, w.Amount)
	p.lock.Unlock()

	// the payee may call back in
	payee.Receive(w.Amount)
	return nil
}

func (p *Precompile) ClaimRewards(payee staking.Payee, id shmon.ValidatorID) error {
	p.lock.Lock()
	v, err := p.get(staking.OpClaimRewards, id)
	if err != nil {
		p.lock.Unlock()
		return err
	}
	rewards := v.Rewards
	v.Rewards = uint256.Int{}
	p.lock.Unlock()

	if !rewards.IsZero() {
		payee.Receive(rewards)
	}
	return nil
}

func (p *Precompile) ExternalReward(id shmon.ValidatorID, amount uint256.Int) (uint256.Int, error) {
	p.lock.Lock()
	defer p.lock.Unlock()

	v, err := p.get(staking.OpExternalReward, id)
	if err != nil {
		return uint256.Int{}, err
	}
	amount = p.accepted(staking.OpExternalReward, id, amount)
	v.External = shmon.Add(v.External, amount)
	return amount, nil
}

func (p *Precompile) GetDelegator(id shmon.ValidatorID) (staking.DelegatorInfo, error) {
	p.lock.Lock()
	defer p.lock.Unlock()

	v, err := p.get(staking.OpGetDelegator, id)
	if err != nil {
		return staking.DelegatorInfo{}, err
	}
	return staking.DelegatorInfo{Stake: v.Stake, Rewards: v.Rewards}, nil
}

func (p *Precompile) GetValidator(id shmon.ValidatorID) (staking.ValidatorInfo, error) {
	p.lock.Lock()
	defer p.lock.Unlock()

	v, err := p.get(staking.OpGetValidator, id)
	if err != nil {
		return staking.ValidatorInfo{}, err
	}
	return staking.ValidatorInfo{
		ID:          id,
		Stake:       v.Stake,
		Commission:  v.Commission,
		InActiveSet: v.InActiveSet,
	}, nil
}

func (p *Precompile) GetEpoch() (staking.EpochInfo, error) {
	p.lock.Lock()
	defer p.lock.Unlock()

	if err := p.takeFailure(staking.OpGetEpoch, 0); err != nil {
		return staking.EpochInfo{}, err
	}
	return staking.EpochInfo{Epoch: p.epoch(), InBoundary: p.inBoundary(), Block: p.block}, nil
}
