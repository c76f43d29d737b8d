// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package atomicpool

import (
	"github.com/holiman/uint256"

	"github.com/shmonad/shmon/ledger/reverts"
	"github.com/shmonad/shmon/shmon"
)

// FeeCurve is the affine fee rate over pool utilization, in shmon.Base units.
type FeeCurve struct {
	Slope     uint256.Int
	Intercept uint256.Int
}

// Validate rejects curves whose rate could exceed 100%.
func (c FeeCurve) Validate() error {
	if c.Slope.Gt(&shmon.Base) || c.Intercept.Gt(&shmon.Base) {
		return reverts.ErrInvalidFeeCurve
	}
	sum, overflow := new(uint256.Int).AddOverflow(&c.Slope, &c.Intercept)
	if overflow || sum.Gt(&shmon.Base) {
		return reverts.ErrInvalidFeeCurve
	}
	return nil
}

// Max is the rate at full utilization.
func (c FeeCurve) Max() uint256.Int {
	return shmon.Add(c.Intercept, c.Slope)
}

// Rate returns min(c + m*u, c + m) for utilization u in base units.
func (c FeeCurve) Rate(u uint256.Int) uint256.Int {
	rate := shmon.Add(c.Intercept, shmon.MulDiv(c.Slope, u, shmon.Base))
	return shmon.Min(rate, c.Max())
}
