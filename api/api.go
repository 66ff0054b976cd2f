// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/halvening/api/events"
	apihealth "github.com/vechain/halvening/api/health"
	"github.com/vechain/halvening/api/middleware"
	"github.com/vechain/halvening/api/pools"
	"github.com/vechain/halvening/api/schedule"
	"github.com/vechain/halvening/health"
	"github.com/vechain/halvening/log"
	"github.com/vechain/halvening/logdb"
	"github.com/vechain/halvening/metrics"
	"github.com/vechain/halvening/pool"
)

var logger = log.WithContext("pkg", "api")

const DefaultEventsLimit = 1000

type Options struct {
	AllowedOrigins       string
	EnableReqLogger      *atomic.Bool
	SlowQueriesThreshold time.Duration
	EnableMetrics        bool
	EventsLimit          uint64
	Health               *health.Health // mounts /health when set
	Clock                func() uint64  // answers queries without a "now" parameter, defaults to wall time
}

// New returns the api handler of p. The events routes are only mounted with a log db.
func New(p *pool.Pool, logDB *logdb.LogDB, opts Options) http.HandlerFunc {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}
	clock := opts.Clock
	if clock == nil {
		clock = func() uint64 { return uint64(time.Now().Unix()) }
	}
	if opts.EventsLimit == 0 {
		opts.EventsLimit = DefaultEventsLimit
	}
	if opts.EnableReqLogger == nil {
		opts.EnableReqLogger = &atomic.Bool{}
	}

	router := mux.NewRouter()

	schedule.New(p.Schedule(), clock).
		Mount(router, "/schedule")
	pools.New(p, clock).
		Mount(router)
	if opts.Health != nil {
		apihealth.New(opts.Health, p).
			Mount(router, "/health")
	}
	if logDB != nil {
		events.New(logDB, p.Name(), opts.EventsLimit).
			Mount(router, "/events")
	}

	if opts.EnableMetrics {
		if h := metrics.HTTPHandler(); h != nil {
			router.PathPrefix("/metrics").Handler(h)
		}
		router.Use(middleware.MetricsMiddleware)
	}
	router.Use(middleware.RequestLoggerMiddleware(logger, opts.EnableReqLogger, opts.SlowQueriesThreshold))

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodOptions}),
	)(handler)

	return handler.ServeHTTP
}
