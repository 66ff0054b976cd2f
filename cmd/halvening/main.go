// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"gopkg.in/cheggaaa/pb.v1"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/halvening/log"
	"github.com/vechain/halvening/schedule"
)

var (
	version   string
	gitCommit string
	gitTag    string

	logLevel *slog.LevelVar
)

const progressBarMinSteps = 100

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Version = fullVersion()
	app.Name = "halvening"
	app.Usage = "Staking rewards on a halving emission schedule"
	app.Copyright = "2025 VeChain Foundation <https://vechain.org/>"
	app.Flags = []cli.Flag{
		verbosityFlag,
		jsonLogsFlag,
	}
	app.Before = func(ctx *cli.Context) error {
		logLevel = initLogger(ctx)
		return nil
	}
	app.Commands = []cli.Command{
		{
			Name:   "schedule",
			Usage:  "print the emission schedule",
			Flags:  []cli.Flag{configFlag, nowFlag, cyclesFlag},
			Action: scheduleAction,
		},
		{
			Name:   "simulate",
			Usage:  "replay a script of pool actions and print the resulting rewards",
			Flags:  []cli.Flag{configFlag, scriptFlag, dataDirFlag, cacheFlag},
			Action: simulateAction,
		},
		{
			Name:  "serve",
			Usage: "serve the read-only pool API",
			Flags: []cli.Flag{
				configFlag,
				dataDirFlag,
				cacheFlag,
				apiAddrFlag,
				apiCorsFlag,
				apiEventsLimitFlag,
				apiSlowQueriesThresholdFlag,
				enableAPILogsFlag,
				enableMetricsFlag,
				metricsAddrFlag,
				adminAddrFlag,
			},
			Action: serveAction,
		},
	}
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func scheduleAction(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	sched, err := cfg.NewSchedule()
	if err != nil {
		return err
	}
	return printSchedule(ctx.App.Writer, sched, nowOf(ctx), ctx.Uint64(cyclesFlag.Name))
}

func printSchedule(w io.Writer, sched schedule.Schedule, now, cycles uint64) error {
	fmt.Fprintf(w, "cycle\tstart\trate\ttokens\n")
	for n := uint64(1); n <= cycles; n++ {
		start, err := sched.StartOfCycle(n)
		if err != nil {
			return err
		}
		rate, err := sched.RewardRate(n)
		if err != nil {
			return err
		}
		tokens, err := sched.TokensForCycle(n)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\n", n, start, rate.Dec(), tokens.Dec())
	}

	if now < sched.StartTime() {
		fmt.Fprintf(w, "\nnot started, begins at %d\n", sched.StartTime())
		return nil
	}
	current, err := sched.CurrentCycle(now)
	if err != nil {
		return err
	}
	rate, err := sched.CurrentRewardRate(now)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\nat %d: cycle %d, rate %s\n", now, current, rate.Dec())
	return nil
}

func simulateAction(ctx *cli.Context) error {
	defer func() { log.Info("exited") }()

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	path := ctx.String(scriptFlag.Name)
	if path == "" {
		return errors.New("missing --script")
	}
	script, err := loadScript(path)
	if err != nil {
		return err
	}

	inst, err := openInstance(cfg, normalizeCacheSize(ctx.Int(cacheFlag.Name)))
	if err != nil {
		return err
	}
	defer inst.close()

	log.Info("simulating", "pool", inst.pool.Name(), "steps", len(script.Steps), "data-dir", cfg.DataDir)

	var progress func()
	if len(script.Steps) >= progressBarMinSteps && isatty.IsTerminal(os.Stderr.Fd()) {
		bar := pb.New(len(script.Steps)).SetMaxWidth(90)
		bar.Output = os.Stderr
		bar.Start()
		defer bar.Finish()
		progress = func() { bar.Increment() }
	}
	return script.run(inst, cfg.Schedule.Start, ctx.App.Writer, progress)
}
