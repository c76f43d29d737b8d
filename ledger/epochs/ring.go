// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package epochs

import (
	"github.com/pkg/errors"

	"github.com/shmonad/shmon/shmon"
)

// ValidOffset reports whether delta addresses a slot distinct from the current one's
// wrap-around, i.e. |delta| < EpochsTracked.
func ValidOffset(delta int) bool {
	return delta > -shmon.EpochsTracked && delta < shmon.EpochsTracked
}

// Slot returns (counter + delta) mod EpochsTracked.
func Slot(counter uint64, delta int) int {
	if !ValidOffset(delta) {
		panic(errors.Errorf("epoch offset %d out of range", delta))
	}
	return int((counter + uint64(delta+shmon.EpochsTracked)) % shmon.EpochsTracked)
}

// Ring is a fixed window of per-epoch records addressed relative to an epoch counter.
// Slots are reused every EpochsTracked epochs and must be cleared before reuse.
type Ring[T any] struct {
	Slots [shmon.EpochsTracked]T
}

func (r *Ring[T]) At(counter uint64, delta int) T {
	return r.Slots[Slot(counter, delta)]
}

func (r *Ring[T]) Ptr(counter uint64, delta int) *T {
	return &r.Slots[Slot(counter, delta)]
}

func (r *Ring[T]) Set(counter uint64, delta int, v T) {
	r.Slots[Slot(counter, delta)] = v
}

func (r *Ring[T]) Clear(counter uint64, delta int) {
	var zero T
	r.Slots[Slot(counter, delta)] = zero
}
