// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/holiman/uint256"

	"github.com/shmonad/shmon/ledger/reverts"
	"github.com/shmonad/shmon/shmon"
	"github.com/shmonad/shmon/staking"
)

type receiptKind uint8

const (
	receiptNone receiptKind = iota
	receiptRewards
	receiptWithdrawal
)

func (k receiptKind) String() string {
	switch k {
	case receiptRewards:
		return "rewards"
	case receiptWithdrawal:
		return "withdrawal"
	default:
		return "none"
	}
}

// scratch classifies value received while an adapter call is in flight.
type scratch struct {
	kind   receiptKind
	amount uint256.Int
}

// callContext lives for one guarded entry point. It is the payee the adapter
// sends value to, and it never outlives the call.
type callContext struct {
	l       *Ledger
	scratch scratch
	closed  bool
}

var _ staking.Payee = (*callContext)(nil)

// expect labels the value received until the next take.
func (c *callContext) expect(kind receiptKind) {
	c.scratch = scratch{kind: kind}
}

// take returns the labeled amount received since expect and clears the scratch.
func (c *callContext) take() uint256.Int {
	amount := c.scratch.amount
	c.scratch = scratch{}
	return amount
}

// Receive books value sent by the adapter. Unlabeled value is goodwill: it
// raises the balance without being expected.
func (c *callContext) Receive(amount uint256.Int) {
	l := c.l
	l.balance = shmon.Add(l.balance, amount)
	if c.closed || c.scratch.kind == receiptNone {
		logger.Debug("unlabeled value received", "amount", shmon.Format(amount))
		return
	}
	l.expected = shmon.Add(l.expected, amount)
	c.scratch.amount = shmon.Add(c.scratch.amount, amount)
}

func (c *callContext) close() {
	c.scratch = scratch{}
	c.closed = true
	c.l.entered = false
}

// enter opens a guarded call. Nested entry is rejected.
func (l *Ledger) enter() (*callContext, error) {
	if l.entered {
		return nil, reverts.ErrReentrancy
	}
	l.entered = true
	return &callContext{l: l}, nil
}

// guarded runs fn inside a fresh call context.
func (l *Ledger) guarded(fn func(*callContext) error) error {
	ctx, err := l.enter()
	if err != nil {
		return err
	}
	defer ctx.close()
	return fn(ctx)
}
