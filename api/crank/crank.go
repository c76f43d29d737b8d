// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package crank

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/shmonad/shmon/api/utils"
	"github.com/shmonad/shmon/keeper"
	"github.com/shmonad/shmon/ledger"
)

type Availability struct {
	Global     bool     `json:"global"`
	Validators []uint64 `json:"validators"`
}

type Result struct {
	Complete bool `json:"complete"`
	Cranks   int  `json:"cranks"`
}

type Crank struct {
	svc *keeper.Service
}

func New(svc *keeper.Service) *Crank {
	return &Crank{svc}
}

func (c *Crank) handleGetAvailability(w http.ResponseWriter, _ *http.Request) error {
	res := Availability{Validators: []uint64{}}
	if err := c.svc.View(func(l *ledger.Ledger) error {
		global, err := l.IsGlobalCrankAvailable()
		if err != nil {
			return err
		}
		res.Global = global
		for _, v := range l.Validators() {
			if l.IsValidatorCrankAvailable(v.ID) {
				res.Validators = append(res.Validators, uint64(v.ID))
			}
		}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, res)
}

func (c *Crank) handlePostCrank(w http.ResponseWriter, req *http.Request) error {
	limit, err := utils.QueryUint64(req, "limit", 0)
	if err != nil {
		return err
	}
	complete, err := c.svc.Crank(limit)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, Result{Complete: complete, Cranks: 1})
}

func (c *Crank) handlePostCrankAll(w http.ResponseWriter, _ *http.Request) error {
	n, err := c.svc.CrankAll()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, Result{Complete: true, Cranks: n})
}

func (c *Crank) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()
	sub.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	sub.Path("").
		Methods(http.MethodGet).
		Name("crank_get_availability").
		HandlerFunc(utils.WrapHandlerFunc(c.handleGetAvailability))
	sub.Path("").
		Methods(http.MethodPost).
		Name("crank_post").
		HandlerFunc(utils.WrapHandlerFunc(c.handlePostCrank))
	sub.Path("/all").
		Methods(http.MethodPost).
		Name("crank_post_all").
		HandlerFunc(utils.WrapHandlerFunc(c.handlePostCrankAll))
}
