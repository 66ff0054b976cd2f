// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/elastic/gosigar"
	"github.com/ethereum/go-ethereum/common/fdlimit"
	"github.com/holiman/uint256"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/halvening/escrow"
	"github.com/vechain/halvening/kv"
	"github.com/vechain/halvening/log"
	"github.com/vechain/halvening/logdb"
	"github.com/vechain/halvening/lvldb"
	"github.com/vechain/halvening/params"
	"github.com/vechain/halvening/pool"
	"github.com/vechain/halvening/types"
)

func initLogger(ctx *cli.Context) *slog.LevelVar {
	lvl := &slog.LevelVar{}
	lvl.Set(log.FromLegacyLevel(ctx.Int(verbosityFlag.Name)))

	format := log.FormatTerminal
	if ctx.Bool(jsonLogsFlag.Name) {
		format = log.FormatJSON
	}
	useColor := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	log.SetDefault(log.NewLogger(log.NewHandler(os.Stderr, format, lvl, useColor)))
	return lvl
}

func loadConfig(ctx *cli.Context) (*params.Config, error) {
	path := ctx.String(configFlag.Name)
	if path == "" {
		return nil, errors.New("missing --config")
	}
	cfg, err := params.Load(path)
	if err != nil {
		return nil, err
	}
	if ctx.IsSet(dataDirFlag.Name) {
		cfg.DataDir = ctx.String(dataDirFlag.Name)
	}
	return cfg, nil
}

func nowOf(ctx *cli.Context) uint64 {
	if ctx.IsSet(nowFlag.Name) {
		return ctx.Uint64(nowFlag.Name)
	}
	return uint64(time.Now().Unix())
}

// instance is an opened pool with its databases and token.
type instance struct {
	pool  *pool.Pool
	token *escrow.MemoryToken
	logDB *logdb.LogDB
	close func()
}

type mainDB interface {
	kv.Store
	Close() error
}

func normalizeCacheSize(sizeMB int) int {
	if sizeMB < 16 {
		sizeMB = 16
	}

	var mem gosigar.Mem
	if err := mem.Get(); err != nil {
		log.Warn("failed to get total mem:", "err", err)
	} else {
		// limit to 1/2 os physical ram
		limitMB := int(mem.Total / 1024 / 1024 / 2)
		if sizeMB > limitMB {
			sizeMB = limitMB
			log.Warn("cache size(MB) limited", "limit", limitMB)
		}
	}
	return sizeMB
}

func suggestFDCache() int {
	limit, err := fdlimit.Current()
	if err != nil {
		log.Warn("failed to get fd limit:", "err", err)
		return 64
	}
	if limit <= 1024 {
		log.Warn("low fd limit, increase it if possible", "limit", limit)
	}

	n := limit / 2
	if n > 5120 {
		return 5120
	}
	return n
}

// openInstance opens the pool described by cfg, splitting cacheMB between the
// main database and the slot cache. With an empty data dir both databases live
// in memory. The escrow is funded on first open when the config carries a
// funding amount, and the token reserve is restored to what the escrow still holds.
func openInstance(cfg *params.Config, cacheMB int) (*instance, error) {
	var (
		db    mainDB
		logDB *logdb.LogDB
		err   error
	)
	if cfg.DataDir == "" {
		if db, err = lvldb.NewMem(); err != nil {
			return nil, err
		}
		logDB, err = logdb.NewMem()
	} else {
		if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
			return nil, errors.Wrap(err, "create data dir")
		}
		if db, err = lvldb.New(filepath.Join(cfg.DataDir, "main.db"), lvldb.Options{
			CacheSize:              cacheMB / 2,
			OpenFilesCacheCapacity: suggestFDCache(),
		}); err != nil {
			return nil, err
		}
		logDB, err = logdb.New(filepath.Join(cfg.DataDir, "logs.db"))
	}
	if err != nil {
		db.Close()
		return nil, err
	}
	closeAll := func() {
		log.Info("closing log database...")
		logDB.Close()
		log.Info("closing main database...")
		db.Close()
	}

	inst, err := newInstance(cfg, db, logDB, cacheMB/2)
	if err != nil {
		closeAll()
		return nil, err
	}
	inst.close = closeAll
	return inst, nil
}

func newInstance(cfg *params.Config, db kv.Store, logDB *logdb.LogDB, slotCacheMB int) (*instance, error) {
	token := escrow.NewMemoryToken(new(uint256.Int))
	poolCfg, err := cfg.PoolConfig(token, logDB)
	if err != nil {
		return nil, err
	}
	poolCfg.CacheSize = slotCacheMB
	p, err := pool.New(db, poolCfg)
	if err != nil {
		return nil, err
	}

	lifetime, err := p.LifetimeRewards()
	if err != nil {
		return nil, err
	}
	if lifetime.IsZero() && cfg.Escrow.Funding != nil && !cfg.Escrow.Funding.Int().IsZero() {
		if err := p.Fund(cfg.Escrow.Funding.Int(), cfg.Schedule.Start); err != nil {
			return nil, err
		}
		log.Info("escrow funded", "pool", p.Name(), "amount", cfg.Escrow.Funding.Int())
	}
	remaining, err := p.RemainingRewards()
	if err != nil {
		return nil, err
	}
	if err := token.Deposit(remaining); err != nil {
		return nil, err
	}
	return &instance{pool: p, token: token, logDB: logDB, close: func() {}}, nil
}

// participantAddress accepts a hex address, anything else is hashed into one.
func participantAddress(s string) types.Address {
	if addr, err := types.ParseAddress(s); err == nil {
		return addr
	}
	return types.BytesToAddress(types.Blake2b([]byte(s)).Bytes())
}

func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		log.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}
