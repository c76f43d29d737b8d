// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package staking defines the boundary between the ledger and the chain's
// staking precompile.
package staking

import (
	"github.com/holiman/uint256"

	"github.com/shmonad/shmon/shmon"
)

// Payee receives value sent by the precompile during a call.
type Payee interface {
	Receive(amount uint256.Int)
}

// EpochInfo is the precompile's view of the chain clock.
type EpochInfo struct {
	Epoch      uint64
	InBoundary bool // inside the delay window before the epoch switches
	Block      uint64
}

// DelegatorInfo is the ledger's position with one validator.
type DelegatorInfo struct {
	// Stake is delegated and not undelegated, activated or not.
	Stake uint256.Int
	// Rewards accrued and not yet claimed.
	Rewards uint256.Int
}

type ValidatorInfo struct {
	ID          shmon.ValidatorID
	Stake       uint256.Int
	Commission  uint256.Int
	InActiveSet bool
}

// Adapter is the staking precompile. Every method may fail with a *Failure,
// which callers treat as soft.
type Adapter interface {
	// Delegate stakes amount with id and returns the amount accepted.
	Delegate(id shmon.ValidatorID, amount uint256.Int) (uint256.Int, error)
	// Undelegate starts unbonding under withdrawal id wid and returns the amount accepted.
	Undelegate(id shmon.ValidatorID, amount uint256.Int, wid uint8) (uint256.Int, error)
	// Withdraw sends an unbonded withdrawal to payee.
	Withdraw(payee Payee, id shmon.ValidatorID, wid uint8) error
	// ClaimRewards sends accrued rewards to payee.
	ClaimRewards(payee Payee, id shmon.ValidatorID) error
	// ExternalReward pays amount into the validator's reward pool and returns the amount taken.
	ExternalReward(id shmon.ValidatorID, amount uint256.Int) (uint256.Int, error)
	GetDelegator(id shmon.ValidatorID) (DelegatorInfo, error)
	GetValidator(id shmon.ValidatorID) (ValidatorInfo, error)
	GetEpoch() (EpochInfo, error)
}
