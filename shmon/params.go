// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package shmon

import "github.com/holiman/uint256"

// Constants of the rolling epoch window.
const (
	// EpochsTracked is the depth of every per-epoch ring. It must exceed MaxSettlementLag.
	EpochsTracked = 8
	// MaxSettlementLag is the number of epochs between initiating a stake action and settling it,
	// including the extra epoch added by the boundary window.
	MaxSettlementLag = 3

	// DepositLag and WithdrawalLag are the regular settlement lags, before boundary delays.
	DepositLag    = 1
	WithdrawalLag = 2

	// SeededEpochs is the number of global slots written at initialization (offsets -3..+2).
	SeededEpochs = 6
)

// Fixed point base used by rates and percentages: Base == 100%.
var Base = *uint256.NewInt(1e18)

// Compute units charged by the crank.
const (
	CostGlobalCrank     uint64 = 60_000
	CostValidatorCrank  uint64 = 25_000
	CostAdapterCall     uint64 = 10_000
	CostAdapterTransfer uint64 = 20_000
	CostPayoutHook      uint64 = 15_000
	CostStorageWrite    uint64 = 5_000
)
