// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/holiman/uint256"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/shmonad/shmon/ledger"
	"github.com/shmonad/shmon/shmon"
	"github.com/shmonad/shmon/staking/sim"
)

func inspectAction(ctx *cli.Context) error {
	initLogger(ctx)
	cfg, err := loadConfig(ctx.String(configFlag.Name))
	if err != nil {
		return err
	}
	db, _, err := openStore(ctx, true)
	if err != nil {
		return err
	}
	defer db.Close()

	chain := sim.New(cfg.Sim)
	data, err := simBucket.NewGetter(db).Get(simStateKey)
	if err != nil {
		if db.IsNotFound(err) {
			return errors.New("no ledger in data dir")
		}
		return errors.Wrap(err, "read simulated chain")
	}
	if err := chain.Decode(data); err != nil {
		return err
	}
	l, found, err := ledger.Load(ledgerBucket.NewGetter(db), chain, cfg.Ledger)
	if err != nil {
		return err
	}
	if !found {
		return errors.New("no ledger in data dir")
	}

	renderSummary(os.Stdout, l)
	renderEpochs(os.Stdout, l)
	renderValidators(os.Stdout, l)
	return nil
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	return table
}

func renderSummary(w io.Writer, l *ledger.Ledger) {
	books := l.Books()
	pool := l.Pool()
	table := newTable(w, "Key", "Value")
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.AppendBulk([][]string{
		{"internal epoch", strconv.FormatUint(l.InternalEpoch(), 10)},
		{"frozen", strconv.FormatBool(l.Frozen())},
		{"closed", strconv.FormatBool(l.Closed())},
		{"balance", shmon.Format(l.Balance())},
		{"equity", shmon.Format(l.Equity())},
		{"unassigned", shmon.Format(l.Unassigned())},
		{"staked", shmon.Format(books.Working.Staked)},
		{"reserved", shmon.Format(books.Working.Reserved)},
		{"pool allocated", shmon.Format(books.Atomic.Allocated)},
		{"pool distributed", shmon.Format(books.Atomic.Distributed)},
		{"pool rate", percent(pool.Rate())},
		{"rewards payable", shmon.Format(books.Liabilities.RewardsPayable)},
		{"redemptions payable", shmon.Format(books.Liabilities.RedemptionsPayable)},
		{"commission payable", shmon.Format(l.CommissionPayable())},
	})
	table.Render()
}

// percent formats a base 1e18 fraction.
func percent(rate uint256.Int) string {
	return humanize.FtoaWithDigits(float64(rate.Uint64())/1e16, 4) + "%"
}

func renderEpochs(w io.Writer, l *ledger.Ledger) {
	table := newTable(w, "Offset", "Epoch", "Queue to stake", "Queue for unstake", "Revenue earned", "Revenue allocated")
	for offset := -(shmon.EpochsTracked - 1); offset <= 1; offset++ {
		epoch, err := l.GlobalEpoch(offset)
		if err != nil {
			continue
		}
		flows, _ := l.GlobalCashFlows(offset)
		revenue, _ := l.GlobalRevenue(offset)
		table.Append([]string{
			strconv.Itoa(offset),
			strconv.FormatUint(epoch.Epoch, 10),
			shmon.Format(flows.QueueToStake),
			shmon.Format(flows.QueueForUnstake),
			shmon.Format(revenue.Earned),
			shmon.Format(revenue.Allocated),
		})
	}
	table.Render()
}

func renderValidators(w io.Writer, l *ledger.Ledger) {
	table := newTable(w, "Validator", "Active", "Active set", "Target stake", "Pending stake", "Pending unstake", "Orphans")
	for _, v := range l.Validators() {
		target, _ := l.TargetStake(v.ID)
		escrow, _ := l.ValidatorEscrow(v.ID, 0)
		table.Append([]string{
			v.ID.String(),
			strconv.FormatBool(v.Active),
			strconv.FormatBool(v.InActiveSetCurrent),
			shmon.Format(target),
			shmon.Format(escrow.PendingStaking),
			shmon.Format(escrow.PendingUnstaking),
			fmt.Sprint(len(v.Orphans)),
		})
	}
	table.Render()
}
