// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"github.com/pkg/errors"
)

// ErrRevert is a rejection of a call: the ledger state is left unchanged.
type ErrRevert struct {
	message string
}

func New(message string) *ErrRevert {
	return &ErrRevert{
		message: message,
	}
}

func (e *ErrRevert) Error() string {
	return e.message
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

var (
	ErrReentrancy            = New("reentrant call")
	ErrFrozen                = New("ledger is frozen")
	ErrClosed                = New("ledger is closed")
	ErrInvalidFeeCurve       = New("fee curve out of bounds")
	ErrInvalidPercentage     = New("percentage out of bounds")
	ErrInvalidRate           = New("rate out of bounds")
	ErrInsufficientLiquidity = New("insufficient atomic pool liquidity")
	ErrInsufficientReserves  = New("insufficient reserved balance")
	ErrInsufficientPayable   = New("amount exceeds payable")
	ErrOffsetOutOfRange      = New("epoch offset out of range")
	ErrUnknownValidator      = New("unknown validator")
	ErrValidatorExists       = New("validator already registered")
	ErrInvalidValidatorID    = New("invalid validator id")
	ErrValidatorInactive     = New("validator is deactivated")
	ErrBelowMinimum          = New("amount below minimum")
	ErrZeroAmount            = New("zero amount")
)
