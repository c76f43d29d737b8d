// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ledger is the liquid-staking settlement engine. It pools deposits,
// spreads them over a set of validators through the staking precompile, and
// advances a rolling window of epoch records one crank at a time.
//
// A Ledger is not safe for concurrent use.
package ledger

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/shmonad/shmon/ledger/accounting"
	"github.com/shmonad/shmon/ledger/atomicpool"
	"github.com/shmonad/shmon/ledger/epochs"
	"github.com/shmonad/shmon/ledger/linkedlist"
	"github.com/shmonad/shmon/ledger/reverts"
	"github.com/shmonad/shmon/log"
	"github.com/shmonad/shmon/shmon"
	"github.com/shmonad/shmon/staking"
)

var logger = log.WithContext("pkg", "ledger")

func SetLogger(l log.Logger) {
	logger = l
}

// PayoutProcessor is a validator's payout hook, called after each crank of
// that validator. Its failures never affect the ledger.
type PayoutProcessor interface {
	Process() error
}

// Orphan is a withdrawal that kept failing past the settlement window.
type Orphan struct {
	WithdrawalID uint8
	Amount       uint256.Int
}

type ValidatorData struct {
	ID                 shmon.ValidatorID
	Active             bool // false once deactivated
	InActiveSetCurrent bool
	InActiveSetLast    bool
	LastTransition     uint64 // internal epoch of the last active-set flag change
	DeactivatedAt      uint64
	NextWithdrawalID   uint8
	Orphans            []Orphan
}

type validatorState struct {
	ValidatorData
	epochs  epochs.Ring[epochs.Epoch]
	escrow  epochs.Ring[epochs.StakingEscrow]
	rewards epochs.Ring[epochs.Revenue]
	payout  PayoutProcessor
}

// Round is the state shared by the validator cranks of one internal epoch.
type Round struct {
	// GlobalRevenue and GlobalAvailable are fixed when the round opens.
	GlobalRevenue   uint256.Int
	GlobalAvailable uint256.Int
	// StakeAssigned and UnstakeAssigned are what the solver handed out of the
	// previous epoch's queues.
	StakeAssigned   uint256.Int
	UnstakeAssigned uint256.Int
	Cranked         uint64
}

type Ledger struct {
	params  Params
	adapter staking.Adapter

	balance    uint256.Int // native balance held by the ledger
	expected   uint256.Int // balance explained by labeled transfers
	books      accounting.Books
	commission uint256.Int // share of RewardsPayable owed to the operator

	globalEpochs  epochs.Ring[epochs.Epoch]
	globalFlows   epochs.Ring[epochs.CashFlows]
	globalRevenue epochs.Ring[epochs.Revenue]

	validators map[shmon.ValidatorID]*validatorState
	list       *linkedlist.List
	cursor     shmon.ValidatorID
	round      Round
	smoother   RevenueSmoother

	entered bool
}

// New creates a ledger positioned at the adapter's current epoch.
func New(adapter staking.Adapter, params Params) (*Ledger, error) {
	if err := params.Validate(); err != nil {
		return nil, errors.Wrap(err, "params")
	}
	info, err := adapter.GetEpoch()
	if err != nil {
		return nil, errors.Wrap(err, "read epoch")
	}

	l := newLedger(adapter, params)
	l.books.Admin = accounting.AdminValues{
		TargetLiquidityPercentage: params.TargetLiquidity,
		FeeSlope:                  params.FeeSlope,
		FeeIntercept:              params.FeeIntercept,
		CommissionRate:            params.CommissionRate,
		ValidatorShareRate:        params.ValidatorShareRate,
	}
	// seed the slots the first crank reads behind and ahead of the pointer
	for delta := -shmon.MaxSettlementLag; delta < shmon.SeededEpochs-shmon.MaxSettlementLag; delta++ {
		var ext uint64
		if delta >= 0 || info.Epoch >= uint64(-delta) {
			ext = uint64(int64(info.Epoch) + int64(delta))
		}
		l.globalEpochs.Set(0, delta, epochs.Epoch{Epoch: ext})
	}
	l.smoother.Update(uint256.Int{}, info.Block)

	logger.Info("ledger created", "epoch", info.Epoch, "block", info.Block)
	return l, nil
}

func newLedger(adapter staking.Adapter, params Params) *Ledger {
	return &Ledger{
		params:     params,
		adapter:    adapter,
		validators: make(map[shmon.ValidatorID]*validatorState),
		list:       linkedlist.New(),
		cursor:     linkedlist.Tail,
	}
}

//
// Getters - no state change
//

func (l *Ledger) Params() Params {
	return l.params
}

func (l *Ledger) Books() accounting.Books {
	return l.books
}

func (l *Ledger) Balance() uint256.Int {
	return l.balance
}

func (l *Ledger) ExpectedBalance() uint256.Int {
	return l.expected
}

func (l *Ledger) InternalEpoch() uint64 {
	return l.books.Admin.InternalEpoch
}

// Cursor returns the next validator to crank, linkedlist.Head before the
// round starts and linkedlist.Tail once it is finished.
func (l *Ledger) Cursor() shmon.ValidatorID {
	return l.cursor
}

func (l *Ledger) Round() Round {
	return l.round
}

func (l *Ledger) Equity() uint256.Int {
	return l.books.Equity(l.balance)
}

func (l *Ledger) Unassigned() uint256.Int {
	return l.books.Unassigned(l.balance)
}

// CommissionPayable is the operator's part of the rewards payable.
func (l *Ledger) CommissionPayable() uint256.Int {
	return l.commission
}

func (l *Ledger) Frozen() bool {
	return l.currentEpoch().Frozen
}

func (l *Ledger) Closed() bool {
	return l.currentEpoch().Closed
}

func (l *Ledger) Smoother() RevenueSmoother {
	return l.smoother
}

// Validators returns the registered validators in crank order.
func (l *Ledger) Validators() []ValidatorData {
	ids := l.list.Slice()
	out := make([]ValidatorData, 0, len(ids))
	for _, id := range ids {
		out = append(out, l.validators[id].data())
	}
	return out
}

func (l *Ledger) Validator(id shmon.ValidatorID) (ValidatorData, bool) {
	v, ok := l.validators[id]
	if !ok {
		return ValidatorData{}, false
	}
	return v.data(), true
}

// TargetStake is the stake the ledger holds with id in the current epoch.
func (l *Ledger) TargetStake(id shmon.ValidatorID) (uint256.Int, error) {
	v, ok := l.validators[id]
	if !ok {
		return uint256.Int{}, reverts.ErrUnknownValidator
	}
	return v.epochs.At(l.InternalEpoch(), 0).TargetStake, nil
}

//
// Snapshot getters - offsets are relative to the current internal epoch
//

func (l *Ledger) GlobalEpoch(offset int) (epochs.Epoch, error) {
	if !epochs.ValidOffset(offset) {
		return epochs.Epoch{}, reverts.ErrOffsetOutOfRange
	}
	return l.globalEpochs.At(l.InternalEpoch(), offset), nil
}

func (l *Ledger) GlobalCashFlows(offset int) (epochs.CashFlows, error) {
	if !epochs.ValidOffset(offset) {
		return epochs.CashFlows{}, reverts.ErrOffsetOutOfRange
	}
	return l.globalFlows.At(l.InternalEpoch(), offset), nil
}

func (l *Ledger) GlobalRevenue(offset int) (epochs.Revenue, error) {
	if !epochs.ValidOffset(offset) {
		return epochs.Revenue{}, reverts.ErrOffsetOutOfRange
	}
	return l.globalRevenue.At(l.InternalEpoch(), offset), nil
}

func (l *Ledger) validatorAt(id shmon.ValidatorID, offset int) (*validatorState, error) {
	if !epochs.ValidOffset(offset) {
		return nil, reverts.ErrOffsetOutOfRange
	}
	v, ok := l.validators[id]
	if !ok {
		return nil, reverts.ErrUnknownValidator
	}
	return v, nil
}

func (l *Ledger) ValidatorEpoch(id shmon.ValidatorID, offset int) (epochs.Epoch, error) {
	v, err := l.validatorAt(id, offset)
	if err != nil {
		return epochs.Epoch{}, err
	}
	return v.epochs.At(l.InternalEpoch(), offset), nil
}

func (l *Ledger) ValidatorEscrow(id shmon.ValidatorID, offset int) (epochs.StakingEscrow, error) {
	v, err := l.validatorAt(id, offset)
	if err != nil {
		return epochs.StakingEscrow{}, err
	}
	return v.escrow.At(l.InternalEpoch(), offset), nil
}

func (l *Ledger) ValidatorRewards(id shmon.ValidatorID, offset int) (epochs.Revenue, error) {
	v, err := l.validatorAt(id, offset)
	if err != nil {
		return epochs.Revenue{}, err
	}
	return v.rewards.At(l.InternalEpoch(), offset), nil
}

//
// Readiness probes
//

// IsGlobalCrankAvailable reports whether the next Crank would advance the
// internal epoch.
func (l *Ledger) IsGlobalCrankAvailable() (bool, error) {
	if l.cursor != linkedlist.Tail {
		return false, nil
	}
	info, err := l.adapter.GetEpoch()
	if err != nil {
		return false, errors.Wrap(err, "read epoch")
	}
	return info.Epoch > l.currentEpoch().Epoch, nil
}

// IsValidatorCrankAvailable reports whether id is still due in the open round.
func (l *Ledger) IsValidatorCrankAvailable(id shmon.ValidatorID) bool {
	v, ok := l.validators[id]
	if !ok || l.cursor == linkedlist.Tail {
		return false
	}
	return !v.epochs.At(l.InternalEpoch(), -1).WasCranked
}

//
// Admin setters
//

func (l *Ledger) SetFeeCurve(slope, intercept uint256.Int) error {
	return l.guarded(func(*callContext) error {
		if err := (atomicpool.FeeCurve{Slope: slope, Intercept: intercept}).Validate(); err != nil {
			return err
		}
		l.books.Admin.FeeSlope = slope
		l.books.Admin.FeeIntercept = intercept
		logger.Info("fee curve updated", "slope", slope.Dec(), "intercept", intercept.Dec())
		return nil
	})
}

// SetTargetLiquidityPercentage sets the atomic pool target as a share of
// equity. The pool moves toward it at the next global crank.
func (l *Ledger) SetTargetLiquidityPercentage(pct uint256.Int) error {
	return l.guarded(func(*callContext) error {
		if pct.Gt(&shmon.Base) {
			return reverts.ErrInvalidPercentage
		}
		l.books.Admin.TargetLiquidityPercentage = pct
		logger.Info("target liquidity updated", "pct", pct.Dec())
		return nil
	})
}

func (l *Ledger) SetCommissionRate(rate uint256.Int) error {
	return l.guarded(func(*callContext) error {
		if rate.Gt(&shmon.Base) {
			return reverts.ErrInvalidRate
		}
		l.books.Admin.CommissionRate = rate
		return nil
	})
}

func (l *Ledger) SetValidatorShareRate(rate uint256.Int) error {
	return l.guarded(func(*callContext) error {
		if rate.Gt(&shmon.Base) {
			return reverts.ErrInvalidRate
		}
		l.books.Admin.ValidatorShareRate = rate
		return nil
	})
}

// SetFrozen halts deposits and unstaking while set. Cranking continues so
// pending withdrawals and redemptions still settle.
func (l *Ledger) SetFrozen(frozen bool) error {
	return l.guarded(func(*callContext) error {
		l.globalEpochs.Ptr(l.InternalEpoch(), 0).Frozen = frozen
		logger.Warn("frozen flag updated", "frozen", frozen)
		return nil
	})
}

// SetClosed stops deposits while set. Withdrawals keep working.
func (l *Ledger) SetClosed(closed bool) error {
	return l.guarded(func(*callContext) error {
		l.globalEpochs.Ptr(l.InternalEpoch(), 0).Closed = closed
		logger.Warn("closed flag updated", "closed", closed)
		return nil
	})
}

func (l *Ledger) currentEpoch() epochs.Epoch {
	return l.globalEpochs.At(l.InternalEpoch(), 0)
}

func (v *validatorState) data() ValidatorData {
	d := v.ValidatorData
	d.Orphans = append([]Orphan(nil), v.Orphans...)
	return d
}
