// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package shmon

import (
	"strconv"

	"github.com/pkg/errors"
)

// ValidatorID identifies a validator in the staking precompile.
// Zero and the maximum value are reserved for list sentinels.
type ValidatorID uint64

// String implements fmt.Stringer.
func (id ValidatorID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParseValidatorID parses a decimal validator id.
func ParseValidatorID(s string) (ValidatorID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errors.Wrap(err, "parse validator id")
	}
	return ValidatorID(v), nil
}
