// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/halvening/params"
	"github.com/vechain/halvening/pool"
	"github.com/vechain/halvening/reverts"
	"github.com/vechain/halvening/types"
)

const (
	actionStake     = "stake"
	actionUnstake   = "unstake"
	actionAddReward = "add-reward"
	actionClaim     = "claim"
	actionFund      = "fund"
)

// Step is one scripted pool call. The call time is At when set, otherwise the
// previous step's time plus After. The first step is relative to the schedule start.
type Step struct {
	At          uint64         `yaml:"at,omitempty"`
	After       uint64         `yaml:"after,omitempty"`
	Action      string         `yaml:"action"`
	Participant string         `yaml:"participant,omitempty"`
	Amount      *params.Amount `yaml:"amount,omitempty"`
	Class       uint64         `yaml:"class,omitempty"`
	// ExpectRevert marks a step that must be rejected by the pool.
	ExpectRevert bool `yaml:"expect-revert,omitempty"`
}

type Script struct {
	Steps []Step `yaml:"steps"`
	// Until is the time the final report is taken at, defaults to the last step.
	Until uint64 `yaml:"until,omitempty"`
}

func loadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read script")
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Script
	if err := dec.Decode(&s); err != nil {
		return nil, errors.Wrap(err, "decode script")
	}
	for i, step := range s.Steps {
		switch step.Action {
		case actionStake, actionUnstake:
			if step.Participant == "" || step.Amount == nil {
				return nil, fmt.Errorf("step %d: %s needs a participant and an amount", i, step.Action)
			}
		case actionAddReward, actionFund:
			if step.Amount == nil {
				return nil, fmt.Errorf("step %d: %s needs an amount", i, step.Action)
			}
		case actionClaim:
			if step.Participant == "" {
				return nil, fmt.Errorf("step %d: claim needs a participant", i)
			}
		default:
			return nil, fmt.Errorf("step %d: unknown action %q", i, step.Action)
		}
	}
	return &s, nil
}

// run replays the script against inst and writes a line per step, then the
// earnings of every participant named in the script. progress, when not nil,
// is called after every step.
func (s *Script) run(inst *instance, start uint64, w io.Writer, progress func()) error {
	var (
		p     = inst.pool
		now   = start
		names = make(map[string]types.Address)
	)
	for i, step := range s.Steps {
		if step.At != 0 {
			now = step.At
		} else {
			now += step.After
		}
		var who types.Address
		if step.Participant != "" {
			who = participantAddress(step.Participant)
			names[step.Participant] = who
		}

		var (
			err    error
			result string
		)
		switch step.Action {
		case actionStake:
			err = p.Stake(who, step.Amount.Int(), step.Class, now)
		case actionUnstake:
			err = p.Unstake(who, step.Amount.Int(), step.Class, now)
		case actionAddReward:
			err = p.AddReward(step.Amount.Int(), now)
		case actionFund:
			if err = p.Fund(step.Amount.Int(), now); err == nil {
				err = inst.token.Deposit(step.Amount.Int())
			}
		case actionClaim:
			var claimed *uint256.Int
			if claimed, err = p.Claim(who, now); err == nil {
				result = claimed.Dec()
			}
		}

		switch {
		case err == nil && step.ExpectRevert:
			return fmt.Errorf("step %d: %s succeeded, expected a revert", i, step.Action)
		case err != nil && !(step.ExpectRevert && reverts.IsRevertErr(err)):
			return errors.Wrapf(err, "step %d: %s", i, step.Action)
		case err != nil:
			result = "reverted: " + err.Error()
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", now, step.Action, step.Participant, amountString(step.Amount), result)
		if progress != nil {
			progress()
		}
	}

	if s.Until > now {
		now = s.Until
	}
	return report(p, names, now, w)
}

func amountString(a *params.Amount) string {
	if a == nil {
		return ""
	}
	return a.String()
}

func report(p *pool.Pool, names map[string]types.Address, now uint64, w io.Writer) error {
	rpu, err := p.RewardPerUnit(now)
	if err != nil {
		return err
	}
	undistributed, err := p.Undistributed()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\nat %d: rewardPerUnit %s, undistributed %s\n", now, rpu.Dec(), undistributed.Dec())

	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)
	for _, name := range sorted {
		addr := names[name]
		earned, err := p.Earned(addr, now)
		if err != nil {
			return err
		}
		wb, err := p.WeightedBalance(addr)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\tweight %s\tearned %s\n", name, addr, wb.Dec(), earned.Dec())
	}
	return nil
}
