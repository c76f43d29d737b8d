// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"io"
	"os"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/shmonad/shmon/ledger"
	"github.com/shmonad/shmon/ledger/atomicpool"
	"github.com/shmonad/shmon/shmon"
)

// quoteAction prices an atomic unstake against a hypothetical pool, using
// the fee curve of the config.
func quoteAction(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx.String(configFlag.Name))
	if err != nil {
		return err
	}
	amounts := make(map[string]uint256.Int)
	for _, name := range []string{allocatedFlag.Name, utilizedFlag.Name, grossFlag.Name, netFlag.Name} {
		s := ctx.String(name)
		if s == "" {
			continue
		}
		a, err := shmon.ParseAmount(s)
		if err != nil {
			return errors.WithMessage(err, name)
		}
		amounts[name] = a
	}
	q, err := quote(cfg.Ledger, amounts)
	if err != nil {
		return err
	}
	renderQuote(os.Stdout, q)
	return nil
}

func quote(params ledger.Params, amounts map[string]uint256.Int) (atomicpool.Quote, error) {
	allocated, ok := amounts[allocatedFlag.Name]
	if !ok {
		return atomicpool.Quote{}, errors.New("allocated required")
	}
	gross, hasGross := amounts[grossFlag.Name]
	net, hasNet := amounts[netFlag.Name]
	if hasGross == hasNet {
		return atomicpool.Quote{}, errors.New("exactly one of gross or net required")
	}
	utilized := amounts[utilizedFlag.Name]
	if utilized.Gt(&allocated) {
		return atomicpool.Quote{}, errors.New("utilized exceeds allocated")
	}

	curve := atomicpool.FeeCurve{Slope: params.FeeSlope, Intercept: params.FeeIntercept}
	if err := curve.Validate(); err != nil {
		return atomicpool.Quote{}, err
	}
	pool := atomicpool.Pool{
		Curve:         curve,
		Allocated:     allocated,
		Distributed:   utilized,
		Utilized:      utilized,
		MinFee:        params.MinAtomicFee,
		DustThreshold: params.DustThreshold,
	}
	if hasGross {
		return pool.Quote(gross)
	}
	return pool.QuoteNet(net)
}

func renderQuote(w io.Writer, q atomicpool.Quote) {
	table := newTable(w, "Gross", "Net", "Fee", "Clamped")
	table.Append([]string{q.Gross.Dec(), q.Net.Dec(), q.Fee.Dec(), boolString(q.Clamped)})
	table.Render()
}

func boolString(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
