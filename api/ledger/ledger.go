// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/shmonad/shmon/api/utils"
	"github.com/shmonad/shmon/keeper"
	"github.com/shmonad/shmon/ledger"
	"github.com/shmonad/shmon/ledger/reverts"
	"github.com/shmonad/shmon/shmon"
)

type Ledger struct {
	svc *keeper.Service
}

func New(svc *keeper.Service) *Ledger {
	return &Ledger{svc}
}

func (l *Ledger) handleGetSummary(w http.ResponseWriter, _ *http.Request) error {
	var summary *Summary
	if err := l.svc.View(func(lg *ledger.Ledger) error {
		summary = newSummary(lg)
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, summary)
}

func (l *Ledger) handleGetEpoch(w http.ResponseWriter, req *http.Request) error {
	offset, err := parseOffset(mux.Vars(req)["offset"])
	if err != nil {
		return err
	}
	var res GlobalEpoch
	if err := l.svc.View(func(lg *ledger.Ledger) error {
		epoch, err := lg.GlobalEpoch(offset)
		if err != nil {
			return err
		}
		flows, _ := lg.GlobalCashFlows(offset)
		revenue, _ := lg.GlobalRevenue(offset)
		res = GlobalEpoch{
			Offset:          offset,
			Epoch:           newEpoch(epoch),
			QueueToStake:    dec(flows.QueueToStake),
			QueueForUnstake: dec(flows.QueueForUnstake),
			Revenue:         newRevenue(revenue),
		}
		return nil
	}); err != nil {
		return asBadRequest(err)
	}
	return utils.WriteJSON(w, res)
}

func (l *Ledger) handleGetValidators(w http.ResponseWriter, _ *http.Request) error {
	var res []Validator
	if err := l.svc.View(func(lg *ledger.Ledger) error {
		for _, v := range lg.Validators() {
			target, err := lg.TargetStake(v.ID)
			if err != nil {
				return err
			}
			res = append(res, newValidator(v, target))
		}
		return nil
	}); err != nil {
		return err
	}
	if res == nil {
		res = []Validator{}
	}
	return utils.WriteJSON(w, res)
}

func (l *Ledger) handleGetValidator(w http.ResponseWriter, req *http.Request) error {
	id, err := shmon.ParseValidatorID(mux.Vars(req)["id"])
	if err != nil {
		return utils.BadRequest(err)
	}
	offset, err := utils.QueryInt(req, "offset", 0)
	if err != nil {
		return err
	}
	var res ValidatorEpoch
	if err := l.svc.View(func(lg *ledger.Ledger) error {
		v, ok := lg.Validator(id)
		if !ok {
			return utils.NotFound(errors.New("validator not found"))
		}
		epoch, err := lg.ValidatorEpoch(id, offset)
		if err != nil {
			return asBadRequest(err)
		}
		escrow, _ := lg.ValidatorEscrow(id, offset)
		rewards, _ := lg.ValidatorRewards(id, offset)
		target, _ := lg.TargetStake(id)
		res = ValidatorEpoch{
			Validator:        newValidator(v, target),
			Offset:           offset,
			Epoch:            newEpoch(epoch),
			PendingStaking:   dec(escrow.PendingStaking),
			PendingUnstaking: dec(escrow.PendingUnstaking),
			Rewards:          newRevenue(rewards),
		}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, res)
}

func parseOffset(s string) (int, error) {
	offset, err := strconv.Atoi(s)
	if err != nil {
		return 0, utils.BadRequest(errors.WithMessage(err, "offset"))
	}
	return offset, nil
}

// asBadRequest reports an out of range offset as a client error.
func asBadRequest(err error) error {
	if errors.Is(err, reverts.ErrOffsetOutOfRange) {
		return utils.BadRequest(err)
	}
	return err
}

func (l *Ledger) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("ledger_get_summary").
		HandlerFunc(utils.WrapHandlerFunc(l.handleGetSummary))
	sub.Path("/epochs/{offset:-?[0-9]+}").
		Methods(http.MethodGet).
		Name("ledger_get_epoch").
		HandlerFunc(utils.WrapHandlerFunc(l.handleGetEpoch))
	sub.Path("/validators").
		Methods(http.MethodGet).
		Name("ledger_get_validators").
		HandlerFunc(utils.WrapHandlerFunc(l.handleGetValidators))
	sub.Path("/validators/{id:[0-9]+}").
		Methods(http.MethodGet).
		Name("ledger_get_validator").
		HandlerFunc(utils.WrapHandlerFunc(l.handleGetValidator))
}
