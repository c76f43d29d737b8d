// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package keeper

import (
	"sync"

	"github.com/holiman/uint256"

	"github.com/shmonad/shmon/ledger"
	"github.com/shmonad/shmon/shmon"
)

// TipJar stands in for a validator payout contract. Process runs inside the
// crank and cannot call the ledger, so the tips collected there are forwarded
// by the keeper once the crank returned.
type TipJar struct {
	ID  shmon.ValidatorID
	Tip uint256.Int

	lock    sync.Mutex
	pending uint256.Int
}

var _ ledger.PayoutProcessor = (*TipJar)(nil)

func (j *TipJar) Process() error {
	j.lock.Lock()
	defer j.lock.Unlock()

	j.pending = shmon.Add(j.pending, j.Tip)
	return nil
}

func (j *TipJar) Pending() uint256.Int {
	j.lock.Lock()
	defer j.lock.Unlock()

	return j.pending
}

func (j *TipJar) take() uint256.Int {
	j.lock.Lock()
	defer j.lock.Unlock()

	amount := j.pending
	j.pending = uint256.Int{}
	return amount
}
