// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package epochs

import (
	"github.com/holiman/uint256"

	"github.com/shmonad/shmon/shmon"
)

// Epoch is the settlement metadata of one epoch, global or per validator.
type Epoch struct {
	Epoch             uint64 // external epoch number the record waits for
	WithdrawalID      uint8
	HasWithdrawal     bool
	HasDeposit        bool
	CrankedInBoundary bool
	WasCranked        bool
	Frozen            bool
	Closed            bool
	TargetStake       uint256.Int
}

// Next returns a fresh record for the following epoch, carrying the circuit
// breaker flags and the target stake.
func (e Epoch) Next(epoch uint64) Epoch {
	return Epoch{
		Epoch:       epoch,
		Frozen:      e.Frozen,
		Closed:      e.Closed,
		TargetStake: e.TargetStake,
	}
}

// Revenue is earned revenue and the part of it allocated to the atomic pool.
// For validators Allocated holds the reward share escrowed for the validator.
type Revenue struct {
	Allocated uint256.Int
	Earned    uint256.Int
}

// Unsettled is the earned revenue not yet allocated.
func (r Revenue) Unsettled() uint256.Int {
	return shmon.SatSub(r.Earned, r.Allocated)
}

// CashFlows is the queued stake and unstake intent of an epoch.
type CashFlows struct {
	QueueToStake    uint256.Int
	QueueForUnstake uint256.Int
}

func (c *CashFlows) Add(o CashFlows) {
	c.QueueToStake = shmon.Add(c.QueueToStake, o.QueueToStake)
	c.QueueForUnstake = shmon.Add(c.QueueForUnstake, o.QueueForUnstake)
}

func (c CashFlows) IsZero() bool {
	return c.QueueToStake.IsZero() && c.QueueForUnstake.IsZero()
}

// StakingEscrow is stake in flight with the staking precompile.
type StakingEscrow struct {
	PendingStaking   uint256.Int
	PendingUnstaking uint256.Int
}
