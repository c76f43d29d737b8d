// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/shmonad/shmon/ledger/atomicpool"
	"github.com/shmonad/shmon/shmon"
)

// Params are the tunables of a ledger. Amounts are in wei, rates and
// percentages in shmon.Base units. Amount fields decode from decimal or
// 0x-prefixed strings.
type Params struct {
	MinValidatorDeposit  uint256.Int `yaml:"min_validator_deposit"`
	DustThreshold        uint256.Int `yaml:"dust_threshold"`
	MinDeposit           uint256.Int `yaml:"min_deposit"`
	MinAtomicFee         uint256.Int `yaml:"min_atomic_fee"`
	SlashingThreshold    uint256.Int `yaml:"slashing_threshold"`
	DeactivationCooldown uint64      `yaml:"deactivation_cooldown"`
	CrankThreshold       uint64      `yaml:"crank_threshold"`
	MaxValidatorStake    uint256.Int `yaml:"max_validator_stake"` // zero means unlimited
	IncentiveAlignment   bool        `yaml:"incentive_alignment"`
	RevenueWindow        int         `yaml:"revenue_window"`
	EpochTicks           uint64      `yaml:"epoch_ticks"`

	// initial admin values
	TargetLiquidity    uint256.Int `yaml:"target_liquidity"`
	FeeSlope           uint256.Int `yaml:"fee_slope"`
	FeeIntercept       uint256.Int `yaml:"fee_intercept"`
	CommissionRate     uint256.Int `yaml:"commission_rate"`
	ValidatorShareRate uint256.Int `yaml:"validator_share_rate"`
}

func DefaultParams() Params {
	return Params{
		MinValidatorDeposit:  shmon.Mon(1),
		DustThreshold:        shmon.NewAmount(1e9),
		MinDeposit:           shmon.NewAmount(1e9),
		MinAtomicFee:         shmon.NewAmount(1e6),
		SlashingThreshold:    shmon.NewAmount(1e15),
		DeactivationCooldown: 4,
		CrankThreshold:       150_000,
		RevenueWindow:        3,
		EpochTicks:           100,

		TargetLiquidity:    shmon.NewAmount(5e16), // 5%
		FeeSlope:           shmon.NewAmount(2e16),
		FeeIntercept:       shmon.NewAmount(1e15),
		CommissionRate:     shmon.NewAmount(5e16),
		ValidatorShareRate: shmon.NewAmount(1e16),
	}
}

func (p Params) Validate() error {
	if p.RevenueWindow < 1 || p.RevenueWindow > shmon.MaxSettlementLag {
		return errors.Errorf("revenue window %d out of range [1, %d]", p.RevenueWindow, shmon.MaxSettlementLag)
	}
	if err := (atomicpool.FeeCurve{Slope: p.FeeSlope, Intercept: p.FeeIntercept}).Validate(); err != nil {
		return errors.Wrap(err, "fee curve")
	}
	for name, v := range map[string]uint256.Int{
		"target liquidity":     p.TargetLiquidity,
		"commission rate":      p.CommissionRate,
		"validator share rate": p.ValidatorShareRate,
		"slashing threshold":   p.SlashingThreshold,
	} {
		if v.Gt(&shmon.Base) {
			return errors.Errorf("%s above 100%%", name)
		}
	}
	if p.MinAtomicFee.Gt(&p.DustThreshold) {
		return errors.New("min atomic fee above dust threshold")
	}
	return nil
}
