// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vechain/halvening/api/restutil"
	"github.com/vechain/halvening/health"
	"github.com/vechain/halvening/pool"
)

type Health struct {
	healthStatus *health.Health
	pool         *pool.Pool
}

func New(healthStatus *health.Health, p *pool.Pool) *Health {
	return &Health{
		healthStatus: healthStatus,
		pool:         p,
	}
}

func (h *Health) handleGetHealth(w http.ResponseWriter, _ *http.Request) error {
	status := h.healthStatus.Status(func() error {
		_, err := h.pool.Global()
		return err
	})
	if !status.Healthy {
		w.Header().Set("Content-Type", restutil.JSONContentType)
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	return restutil.WriteJSON(w, status)
}

func (h *Health) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /health").
		HandlerFunc(restutil.WrapHandlerFunc(h.handleGetHealth))
}
