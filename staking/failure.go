// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/shmonad/shmon/shmon"
)

type Op string

const (
	OpDelegate       Op = "delegate"
	OpUndelegate     Op = "undelegate"
	OpWithdraw       Op = "withdraw"
	OpClaimRewards   Op = "claimRewards"
	OpExternalReward Op = "externalReward"
	OpGetDelegator   Op = "getDelegator"
	OpGetValidator   Op = "getValidator"
	OpGetEpoch       Op = "getEpoch"
)

const (
	ReasonReverted            = "reverted"
	ReasonNotReady            = "not ready"
	ReasonInsufficientBalance = "insufficient balance"
	ReasonUnknownValidator    = "unknown validator"
	ReasonUnknownWithdrawal   = "unknown withdrawal"
)

// Failure is a precompile call that did not go through.
type Failure struct {
	Op        Op
	Validator shmon.ValidatorID
	Reason    string
}

func (f *Failure) Error() string {
	return fmt.Sprintf("staking: %s(%s): %s", f.Op, f.Validator, f.Reason)
}

func Fail(op Op, id shmon.ValidatorID, reason string) *Failure {
	return &Failure{Op: op, Validator: id, Reason: reason}
}

// AsFailure unwraps a *Failure from err.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}
