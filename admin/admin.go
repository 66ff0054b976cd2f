// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package admin

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/halvening/api/restutil"
	"github.com/vechain/halvening/log"
)

var levels = map[string]slog.Level{
	"trace": log.LevelTrace,
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
	"crit":  log.LevelCrit,
}

type logLevelRequest struct {
	Level string `json:"level"`
}

type logLevelResponse struct {
	CurrentLevel string `json:"currentLevel"`
}

type apiLogsRequest struct {
	Enabled bool `json:"enabled"`
}

type apiLogsResponse struct {
	Enabled bool `json:"enabled"`
}

type Admin struct {
	logLevel *slog.LevelVar
	apiLogs  *atomic.Bool
}

// New controls the process log level and the api request logging at runtime.
func New(logLevel *slog.LevelVar, apiLogs *atomic.Bool) *Admin {
	return &Admin{
		logLevel,
		apiLogs,
	}
}

func (a *Admin) handleGetLogLevel(w http.ResponseWriter, _ *http.Request) error {
	return restutil.WriteJSON(w, &logLevelResponse{CurrentLevel: log.LevelString(a.logLevel.Level())})
}

func (a *Admin) handlePostLogLevel(w http.ResponseWriter, req *http.Request) error {
	var body logLevelRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	lvl, ok := levels[body.Level]
	if !ok {
		return restutil.BadRequest(fmt.Errorf("invalid verbosity level %q", body.Level))
	}
	a.logLevel.Set(lvl)
	log.Info("log level changed", "level", body.Level)
	return a.handleGetLogLevel(w, req)
}

func (a *Admin) handleGetAPILogs(w http.ResponseWriter, _ *http.Request) error {
	return restutil.WriteJSON(w, &apiLogsResponse{Enabled: a.apiLogs.Load()})
}

func (a *Admin) handlePostAPILogs(w http.ResponseWriter, req *http.Request) error {
	var body apiLogsRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	a.apiLogs.Store(body.Enabled)
	return a.handleGetAPILogs(w, req)
}

func (a *Admin) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/loglevel").
		Methods(http.MethodGet).
		Name("GET /admin/loglevel").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleGetLogLevel))
	sub.Path("/loglevel").
		Methods(http.MethodPost).
		Name("POST /admin/loglevel").
		HandlerFunc(restutil.WrapHandlerFunc(a.handlePostLogLevel))
	sub.Path("/apilogs").
		Methods(http.MethodGet).
		Name("GET /admin/apilogs").
		HandlerFunc(restutil.WrapHandlerFunc(a.handleGetAPILogs))
	sub.Path("/apilogs").
		Methods(http.MethodPost).
		Name("POST /admin/apilogs").
		HandlerFunc(restutil.WrapHandlerFunc(a.handlePostAPILogs))
}

// HTTPHandler serves the admin routes under /admin.
func HTTPHandler(logLevel *slog.LevelVar, apiLogs *atomic.Bool) http.Handler {
	router := mux.NewRouter()
	New(logLevel, apiLogs).Mount(router, "/admin")
	return handlers.CompressHandler(router)
}
