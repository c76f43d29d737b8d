// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/holiman/uint256"

	"github.com/shmonad/shmon/ledger"
	"github.com/shmonad/shmon/ledger/epochs"
	"github.com/shmonad/shmon/ledger/linkedlist"
	"github.com/shmonad/shmon/shmon"
)

// Amounts are decimal wei strings.

type Admin struct {
	TargetLiquidityPercentage string `json:"targetLiquidityPercentage"`
	FeeSlope                  string `json:"feeSlope"`
	FeeIntercept              string `json:"feeIntercept"`
	CommissionRate            string `json:"commissionRate"`
	ValidatorShareRate        string `json:"validatorShareRate"`
}

type Summary struct {
	InternalEpoch      uint64 `json:"internalEpoch"`
	Epoch              uint64 `json:"epoch"`
	Cursor             string `json:"cursor"`
	Frozen             bool   `json:"frozen"`
	Closed             bool   `json:"closed"`
	Balance            string `json:"balance"`
	ExpectedBalance    string `json:"expectedBalance"`
	Equity             string `json:"equity"`
	Unassigned         string `json:"unassigned"`
	Staked             string `json:"staked"`
	Reserved           string `json:"reserved"`
	PoolAllocated      string `json:"poolAllocated"`
	PoolDistributed    string `json:"poolDistributed"`
	PoolLiquidity      string `json:"poolLiquidity"`
	RewardsPayable     string `json:"rewardsPayable"`
	RedemptionsPayable string `json:"redemptionsPayable"`
	CommissionPayable  string `json:"commissionPayable"`
	Validators         int    `json:"validators"`
	Admin              Admin  `json:"admin"`
}

func newSummary(l *ledger.Ledger) *Summary {
	books := l.Books()
	pool := l.Pool()
	epoch, _ := l.GlobalEpoch(0)
	return &Summary{
		InternalEpoch:      l.InternalEpoch(),
		Epoch:              epoch.Epoch,
		Cursor:             cursorString(l.Cursor()),
		Frozen:             l.Frozen(),
		Closed:             l.Closed(),
		Balance:            dec(l.Balance()),
		ExpectedBalance:    dec(l.ExpectedBalance()),
		Equity:             dec(l.Equity()),
		Unassigned:         dec(l.Unassigned()),
		Staked:             dec(books.Working.Staked),
		Reserved:           dec(books.Working.Reserved),
		PoolAllocated:      dec(books.Atomic.Allocated),
		PoolDistributed:    dec(books.Atomic.Distributed),
		PoolLiquidity:      dec(pool.Liquidity()),
		RewardsPayable:     dec(books.Liabilities.RewardsPayable),
		RedemptionsPayable: dec(books.Liabilities.RedemptionsPayable),
		CommissionPayable:  dec(l.CommissionPayable()),
		Validators:         len(l.Validators()),
		Admin: Admin{
			TargetLiquidityPercentage: dec(books.Admin.TargetLiquidityPercentage),
			FeeSlope:                  dec(books.Admin.FeeSlope),
			FeeIntercept:              dec(books.Admin.FeeIntercept),
			CommissionRate:            dec(books.Admin.CommissionRate),
			ValidatorShareRate:        dec(books.Admin.ValidatorShareRate),
		},
	}
}

type Epoch struct {
	Epoch             uint64 `json:"epoch"`
	WithdrawalID      uint8  `json:"withdrawalId"`
	HasWithdrawal     bool   `json:"hasWithdrawal"`
	HasDeposit        bool   `json:"hasDeposit"`
	CrankedInBoundary bool   `json:"crankedInBoundary"`
	WasCranked        bool   `json:"wasCranked"`
	Frozen            bool   `json:"frozen"`
	Closed            bool   `json:"closed"`
	TargetStake       string `json:"targetStake"`
}

func newEpoch(e epochs.Epoch) Epoch {
	return Epoch{
		Epoch:             e.Epoch,
		WithdrawalID:      e.WithdrawalID,
		HasWithdrawal:     e.HasWithdrawal,
		HasDeposit:        e.HasDeposit,
		CrankedInBoundary: e.CrankedInBoundary,
		WasCranked:        e.WasCranked,
		Frozen:            e.Frozen,
		Closed:            e.Closed,
		TargetStake:       dec(e.TargetStake),
	}
}

type Revenue struct {
	Allocated string `json:"allocated"`
	Earned    string `json:"earned"`
}

func newRevenue(r epochs.Revenue) Revenue {
	return Revenue{Allocated: dec(r.Allocated), Earned: dec(r.Earned)}
}

type GlobalEpoch struct {
	Offset          int     `json:"offset"`
	Epoch           Epoch   `json:"epoch"`
	QueueToStake    string  `json:"queueToStake"`
	QueueForUnstake string  `json:"queueForUnstake"`
	Revenue         Revenue `json:"revenue"`
}

type Orphan struct {
	WithdrawalID uint8  `json:"withdrawalId"`
	Amount       string `json:"amount"`
}

type Validator struct {
	ID                 uint64   `json:"id"`
	Active             bool     `json:"active"`
	InActiveSetCurrent bool     `json:"inActiveSetCurrent"`
	InActiveSetLast    bool     `json:"inActiveSetLast"`
	LastTransition     uint64   `json:"lastTransition"`
	DeactivatedAt      uint64   `json:"deactivatedAt"`
	NextWithdrawalID   uint8    `json:"nextWithdrawalId"`
	TargetStake        string   `json:"targetStake"`
	Orphans            []Orphan `json:"orphans"`
}

func newValidator(v ledger.ValidatorData, target uint256.Int) Validator {
	orphans := make([]Orphan, 0, len(v.Orphans))
	for _, o := range v.Orphans {
		orphans = append(orphans, Orphan{WithdrawalID: o.WithdrawalID, Amount: dec(o.Amount)})
	}
	return Validator{
		ID:                 uint64(v.ID),
		Active:             v.Active,
		InActiveSetCurrent: v.InActiveSetCurrent,
		InActiveSetLast:    v.InActiveSetLast,
		LastTransition:     v.LastTransition,
		DeactivatedAt:      v.DeactivatedAt,
		NextWithdrawalID:   v.NextWithdrawalID,
		TargetStake:        dec(target),
		Orphans:            orphans,
	}
}

type ValidatorEpoch struct {
	Validator
	Offset           int     `json:"offset"`
	Epoch            Epoch   `json:"epoch"`
	PendingStaking   string  `json:"pendingStaking"`
	PendingUnstaking string  `json:"pendingUnstaking"`
	Rewards          Revenue `json:"rewards"`
}

func cursorString(id shmon.ValidatorID) string {
	switch id {
	case linkedlist.Head:
		return "head"
	case linkedlist.Tail:
		return "tail"
	}
	return id.String()
}

func dec(a uint256.Int) string {
	return a.Dec()
}
