// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package shmon

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSatSub(t *testing.T) {
	assert.Equal(t, NewAmount(3), SatSub(NewAmount(10), NewAmount(7)))
	assert.Equal(t, NewAmount(0), SatSub(NewAmount(7), NewAmount(10)))
	assert.Equal(t, NewAmount(0), SatSub(NewAmount(7), NewAmount(7)))
}

func TestMulDiv(t *testing.T) {
	tests := []struct {
		a, b, d   uint64
		down, up uint64
	}{
		{1_600_000_000, 2_000_000_000, 8_000_000_000, 400_000_000, 400_000_000},
		{10, 1, 3, 3, 4},
		{7, 3, 7, 3, 3},
		{5, 5, 0, 0, 0},
	}
	for _, tt := range tests {
		a, b, d := NewAmount(tt.a), NewAmount(tt.b), NewAmount(tt.d)
		assert.Equal(t, NewAmount(tt.down), MulDiv(a, b, d))
		assert.Equal(t, NewAmount(tt.up), MulDivUp(a, b, d))
	}
}

func TestMulDivWide(t *testing.T) {
	// a*b overflows 256 bits, the quotient does not.
	a := Mon(1e9)
	var max uint256.Int
	max.SetAllOne()
	got := MulDiv(a, max, max)
	assert.Equal(t, a, got)
}

func TestParseAndFormat(t *testing.T) {
	v, err := ParseAmount("1500000000000000000")
	require.NoError(t, err)
	assert.Equal(t, Add(Mon(1), NewAmount(5e17)), v)
	assert.Equal(t, "1.5 MON", Format(v))
	assert.Equal(t, "1,000 MON", Format(Mon(1000)))

	_, err = ParseAmount("-1")
	assert.Error(t, err)
}

func TestMinMax(t *testing.T) {
	assert.Equal(t, NewAmount(1), Min(NewAmount(1), NewAmount(2)))
	assert.Equal(t, NewAmount(2), Max(NewAmount(1), NewAmount(2)))
}
