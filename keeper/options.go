// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package keeper

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
)

// Options controls the keeper schedules. Schedules use the cron syntax with
// an optional seconds field, or descriptors such as "@every 2s".
type Options struct {
	CrankSchedule string `yaml:"crank_schedule"`
	// EpochSchedule advances the simulated chain in solo mode. Empty disables it.
	EpochSchedule string `yaml:"epoch_schedule"`
	// CrankLimit is the compute budget of one crank call, zero for unlimited.
	CrankLimit uint64 `yaml:"crank_limit"`
	// MaxCranks bounds the crank calls of one scheduled run.
	MaxCranks int `yaml:"max_cranks"`
	// RewardRate is accrued on every simulated epoch, base 1e18.
	RewardRate uint256.Int `yaml:"reward_rate"`
	// Tip is forwarded by each validator's payout processor per crank in solo mode.
	Tip uint256.Int `yaml:"tip"`
}

func DefaultOptions() Options {
	return Options{
		CrankSchedule: "@every 2s",
		EpochSchedule: "@every 30s",
		CrankLimit:    2_000_000,
		MaxCranks:     64,
		RewardRate:    *uint256.NewInt(1e14),
		Tip:           *uint256.NewInt(1e15),
	}
}

var scheduleParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (o Options) Validate() error {
	if _, err := scheduleParser.Parse(o.CrankSchedule); err != nil {
		return errors.Wrap(err, "crank schedule")
	}
	if o.EpochSchedule != "" {
		if _, err := scheduleParser.Parse(o.EpochSchedule); err != nil {
			return errors.Wrap(err, "epoch schedule")
		}
	}
	if o.MaxCranks < 1 {
		return errors.New("max cranks must be positive")
	}
	return nil
}
