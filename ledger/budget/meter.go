// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package budget

import (
	"fmt"
	"math"
)

// Kind classifies charged compute units for the breakdown.
type Kind int

const (
	KindGlobal Kind = iota
	KindValidator
	KindAdapter
	KindTransfer
	KindHook
	KindStorage
	kindCount
)

var kindNames = [kindCount]string{"GLOBAL", "VALIDATOR", "ADAPTER", "TRANSFER", "HOOK", "STORAGE"}

func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return "UNKNOWN"
	}
	return kindNames[k]
}

// Meter tracks compute units consumed by one crank call against a limit.
// Charging past the limit is allowed; callers check Remaining before starting a unit of work.
type Meter struct {
	limit uint64
	used  uint64
	ops   [kindCount]uint64
	units [kindCount]uint64
}

// New creates a meter. A zero limit means unlimited.
func New(limit uint64) *Meter {
	if limit == 0 {
		limit = math.MaxUint64
	}
	return &Meter{limit: limit}
}

func (m *Meter) Charge(kind Kind, units uint64) {
	if m.used > math.MaxUint64-units {
		m.used = math.MaxUint64
	} else {
		m.used += units
	}
	if kind >= 0 && kind < kindCount {
		m.ops[kind]++
		m.units[kind] += units
	}
}

// Remaining returns the units left before the limit, zero once exhausted.
func (m *Meter) Remaining() uint64 {
	if m.used >= m.limit {
		return 0
	}
	return m.limit - m.used
}

func (m *Meter) Used() uint64 {
	return m.used
}

func (m *Meter) Limit() uint64 {
	return m.limit
}

func (m *Meter) Breakdown() string {
	s := ""
	for k := Kind(0); k < kindCount; k++ {
		s += fmt.Sprintf("%s: %d ops (%d units) | ", k, m.ops[k], m.units[k])
	}
	return s + fmt.Sprintf("TOTAL: %d units", m.used)
}
