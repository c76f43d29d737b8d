// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	"crypto/rand"

	"github.com/holiman/uint256"

	"github.com/shmonad/shmon/shmon"
)

// RandAmount returns a random amount in [0, limit). A zero limit yields zero.
func RandAmount(limit uint256.Int) uint256.Int {
	if limit.IsZero() {
		return uint256.Int{}
	}
	var b [32]byte
	rand.Read(b[:])
	var v uint256.Int
	v.SetBytes32(b[:])
	v.Mod(&v, &limit)
	return v
}

// RandMon returns a random amount of at most limit whole MON with a random
// fractional part.
func RandMon(limit uint64) uint256.Int {
	whole := shmon.Mon(RandUint64N(limit + 1))
	return shmon.Add(whole, RandAmount(shmon.Base))
}

// RandValidatorID returns a random id that is not a list sentinel.
func RandValidatorID() shmon.ValidatorID {
	return shmon.ValidatorID(RandUint64N(1<<32) + 1)
}
