// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/halvening/admin"
	"github.com/vechain/halvening/api"
	"github.com/vechain/halvening/health"
	"github.com/vechain/halvening/log"
	"github.com/vechain/halvening/metrics"
)

func serveAction(ctx *cli.Context) error {
	defer func() { log.Info("exited") }()

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	enableMetrics := ctx.Bool(enableMetricsFlag.Name)
	if enableMetrics {
		metrics.InitializePrometheusMetrics(metrics.DefaultNamespace)
	}

	inst, err := openInstance(cfg, normalizeCacheSize(ctx.Int(cacheFlag.Name)))
	if err != nil {
		return err
	}
	defer inst.close()

	enableAPILogs := &atomic.Bool{}
	enableAPILogs.Store(ctx.Bool(enableAPILogsFlag.Name))

	healthStatus := health.New(clockOffsetTolerance)
	handler := api.New(inst.pool, inst.logDB, api.Options{
		AllowedOrigins:       ctx.String(apiCorsFlag.Name),
		EnableReqLogger:      enableAPILogs,
		SlowQueriesThreshold: time.Duration(ctx.Uint64(apiSlowQueriesThresholdFlag.Name)) * time.Millisecond,
		EnableMetrics:        enableMetrics,
		EventsLimit:          ctx.Uint64(apiEventsLimitFlag.Name),
		Health:               healthStatus,
	})

	exitCtx := handleExitSignal()
	group, groupCtx := errgroup.WithContext(exitCtx)

	apiURL, err := serveHTTP(groupCtx, group, ctx.String(apiAddrFlag.Name), handler)
	if err != nil {
		return errors.Wrap(err, "start API server")
	}
	log.Info("API server started", "url", apiURL, "pool", inst.pool.Name())

	if enableMetrics {
		router := mux.NewRouter()
		router.PathPrefix("/metrics").Handler(metrics.HTTPHandler())
		metricsURL, err := serveHTTP(groupCtx, group, ctx.String(metricsAddrFlag.Name), handlers.CompressHandler(router))
		if err != nil {
			return errors.Wrap(err, "start metrics server")
		}
		log.Info("metrics server started", "url", metricsURL+"/metrics")
	}

	if addr := ctx.String(adminAddrFlag.Name); addr != "" {
		adminURL, err := serveHTTP(groupCtx, group, addr, admin.HTTPHandler(logLevel, enableAPILogs))
		if err != nil {
			return errors.Wrap(err, "start admin server")
		}
		log.Info("admin server started", "url", adminURL+"/admin")
	}

	group.Go(func() error { return clockSyncLoop(groupCtx, healthStatus) })

	return group.Wait()
}

// serveHTTP serves handler on addr within group until ctx is done.
func serveHTTP(ctx context.Context, group *errgroup.Group, addr string, handler http.Handler) (string, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", errors.Wrapf(err, "listen [%v]", addr)
	}
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}

	group.Go(func() error {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return "http://" + listener.Addr().String(), nil
}
