// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"

	"github.com/shmonad/shmon/shmon"
)

func TestRandAmount(t *testing.T) {
	assert.Zero(t, RandAmount(uint256.Int{}))

	limit := shmon.Mon(3)
	for range 100 {
		v := RandAmount(limit)
		assert.True(t, v.Lt(&limit))
	}
}

func TestRandMon(t *testing.T) {
	limit := shmon.Mon(6)
	for range 100 {
		v := RandMon(5)
		assert.True(t, v.Lt(&limit))
	}
	assert.NotZero(t, RandValidatorID())
}
