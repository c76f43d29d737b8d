// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/shmonad/shmon/api/utils"
	"github.com/shmonad/shmon/keeper"
)

// Reporter is implemented by keeper.Service.
type Reporter interface {
	Status(maxAge time.Duration) keeper.Status
}

type API struct {
	reporter    Reporter
	maxCrankAge time.Duration
}

func NewAPI(reporter Reporter, maxCrankAge time.Duration) *API {
	return &API{
		reporter:    reporter,
		maxCrankAge: maxCrankAge,
	}
}

func (h *API) handleGetHealth(w http.ResponseWriter, r *http.Request) error {
	maxCrankAge := h.maxCrankAge
	if q := r.URL.Query().Get("maxCrankAge"); q != "" {
		parsed, err := time.ParseDuration(q)
		if err != nil {
			return utils.BadRequest(errors.WithMessage(err, "maxCrankAge"))
		}
		maxCrankAge = parsed
	}

	status := h.reporter.Status(maxCrankAge)

	w.Header().Set("Content-Type", utils.JSONContentType)
	if !status.Healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	return utils.WriteJSON(w, status)
}

func (h *API) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("health").
		HandlerFunc(utils.WrapHandlerFunc(h.handleGetHealth))
}
