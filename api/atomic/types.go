// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package atomic

import (
	"github.com/shmonad/shmon/ledger/atomicpool"
)

type Pool struct {
	Allocated   string `json:"allocated"`
	Distributed string `json:"distributed"`
	Utilized    string `json:"utilized"`
	Liquidity   string `json:"liquidity"`
	Utilization string `json:"utilization"`
	Rate        string `json:"rate"`
}

func newPool(p atomicpool.Pool) *Pool {
	liquidity, utilization, rate := p.Liquidity(), p.Utilization(), p.Rate()
	return &Pool{
		Allocated:   p.Allocated.Dec(),
		Distributed: p.Distributed.Dec(),
		Utilized:    p.Utilized.Dec(),
		Liquidity:   liquidity.Dec(),
		Utilization: utilization.Dec(),
		Rate:        rate.Dec(),
	}
}

type Quote struct {
	Gross   string `json:"gross"`
	Net     string `json:"net"`
	Fee     string `json:"fee"`
	Clamped bool   `json:"clamped"`
}

func newQuote(q atomicpool.Quote) *Quote {
	return &Quote{
		Gross:   q.Gross.Dec(),
		Net:     q.Net.Dec(),
		Fee:     q.Fee.Dec(),
		Clamped: q.Clamped,
	}
}
