// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package atomic

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/shmonad/shmon/api/utils"
	"github.com/shmonad/shmon/keeper"
	"github.com/shmonad/shmon/ledger"
	"github.com/shmonad/shmon/ledger/atomicpool"
)

type Atomic struct {
	svc *keeper.Service
}

func New(svc *keeper.Service) *Atomic {
	return &Atomic{svc}
}

func (a *Atomic) pool() (p atomicpool.Pool, err error) {
	err = a.svc.View(func(l *ledger.Ledger) error {
		p = l.Pool()
		return nil
	})
	return
}

func (a *Atomic) handleGetPool(w http.ResponseWriter, _ *http.Request) error {
	p, err := a.pool()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, newPool(p))
}

// handleGetQuote prices an atomic unstake without executing it. Exactly one
// of gross or net must be given.
func (a *Atomic) handleGetQuote(w http.ResponseWriter, req *http.Request) error {
	gross, hasGross, err := utils.QueryAmount(req, "gross")
	if err != nil {
		return err
	}
	net, hasNet, err := utils.QueryAmount(req, "net")
	if err != nil {
		return err
	}
	if hasGross == hasNet {
		return utils.BadRequest(errors.New("exactly one of gross or net required"))
	}

	p, err := a.pool()
	if err != nil {
		return err
	}
	var q atomicpool.Quote
	if hasGross {
		q, err = p.Quote(gross)
	} else {
		q, err = p.QuoteNet(net)
	}
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, newQuote(q))
}

func (a *Atomic) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("atomic_get_pool").
		HandlerFunc(utils.WrapHandlerFunc(a.handleGetPool))
	sub.Path("/quote").
		Methods(http.MethodGet).
		Name("atomic_get_quote").
		HandlerFunc(utils.WrapHandlerFunc(a.handleGetQuote))
}
