// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/holiman/uint256"

	"github.com/shmonad/shmon/shmon"
)

// RevenueSmoother vests the last closed epoch's revenue linearly over the
// following epoch, so deposits cannot buy into revenue that just landed.
type RevenueSmoother struct {
	LastEarned uint256.Int
	LastBlock  uint64
}

func (s *RevenueSmoother) Update(earned uint256.Int, block uint64) {
	s.LastEarned = earned
	s.LastBlock = block
}

// Unvested is the part of LastEarned not yet vested at block.
func (s RevenueSmoother) Unvested(block, ticks uint64) uint256.Int {
	if ticks == 0 || block < s.LastBlock {
		return s.LastEarned
	}
	elapsed := block - s.LastBlock
	if elapsed >= ticks {
		return uint256.Int{}
	}
	return shmon.MulDiv(s.LastEarned, shmon.NewAmount(ticks-elapsed), shmon.NewAmount(ticks))
}
