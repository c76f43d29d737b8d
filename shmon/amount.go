// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package shmon

import (
	"math/big"

	"github.com/dustin/go-humanize"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

var weiPerMon = new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))

// NewAmount returns v as an amount value.
func NewAmount(v uint64) uint256.Int {
	return *uint256.NewInt(v)
}

// Mon returns n whole MON in wei.
func Mon(n uint64) uint256.Int {
	var z uint256.Int
	z.Mul(uint256.NewInt(n), uint256.NewInt(1e18))
	return z
}

// ParseAmount parses a decimal wei amount.
func ParseAmount(s string) (uint256.Int, error) {
	var z uint256.Int
	if err := z.SetFromDecimal(s); err != nil {
		return z, errors.Wrapf(err, "parse amount %q", s)
	}
	return z, nil
}

func Add(a, b uint256.Int) uint256.Int {
	var z uint256.Int
	z.Add(&a, &b)
	return z
}

// Sub returns a-b. Callers must ensure a >= b, use SatSub otherwise.
func Sub(a, b uint256.Int) uint256.Int {
	var z uint256.Int
	z.Sub(&a, &b)
	return z
}

// SatSub returns a-b, or zero when b > a.
func SatSub(a, b uint256.Int) uint256.Int {
	if a.Cmp(&b) <= 0 {
		return uint256.Int{}
	}
	return Sub(a, b)
}

func Min(a, b uint256.Int) uint256.Int {
	if a.Lt(&b) {
		return a
	}
	return b
}

func Max(a, b uint256.Int) uint256.Int {
	if a.Gt(&b) {
		return a
	}
	return b
}

// Mul returns a*b, wrapping on overflow.
func Mul(a, b uint256.Int) uint256.Int {
	var z uint256.Int
	z.Mul(&a, &b)
	return z
}

// MulDiv returns floor(a*b/d) with a 512-bit intermediate. Division by zero yields zero.
func MulDiv(a, b, d uint256.Int) uint256.Int {
	var z uint256.Int
	if d.IsZero() {
		return z
	}
	z.MulDivOverflow(&a, &b, &d)
	return z
}

// MulDivUp returns ceil(a*b/d).
func MulDivUp(a, b, d uint256.Int) uint256.Int {
	if d.IsZero() {
		return uint256.Int{}
	}
	z := MulDiv(a, b, d)
	var rem uint256.Int
	rem.MulMod(&a, &b, &d)
	if !rem.IsZero() {
		z.AddUint64(&z, 1)
	}
	return z
}

// Format renders an amount in MON with thousands separators.
func Format(a uint256.Int) string {
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(a.ToBig()), weiPerMon).Float64()
	return humanize.CommafWithDigits(f, 4) + " MON"
}
