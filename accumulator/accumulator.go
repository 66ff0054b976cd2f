// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accumulator

import (
	"math"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/halvening/log"
	"github.com/vechain/halvening/periods"
	"github.com/vechain/halvening/reverts"
	"github.com/vechain/halvening/slots"
	"github.com/vechain/halvening/state"
	"github.com/vechain/halvening/types"
)

var logger = log.WithContext("pkg", "accumulator")

var (
	slotGlobal       = types.BytesToBytes32([]byte("accumulator-global"))
	slotParticipants = types.BytesToBytes32([]byte("accumulator-participants"))
)

// Emitter reports the amount a schedule emits over [from, to).
type Emitter interface {
	Emission(from, to uint64) (*uint256.Int, error)
}

// Accumulator maintains the reward-per-unit value and participant checkpoints.
//
// With an emitter the value grows continuously with scheduled emission,
// integrated period by period against the global weight in force.
// Without one, it only grows through AddReward.
type Accumulator struct {
	periods      *periods.Ledger
	emitter      Emitter
	global       *slots.Raw[*Global]
	participants *slots.Mapping[types.Address, *Checkpoint]
}

func New(st *state.State, ledger *periods.Ledger, emitter Emitter) *Accumulator {
	return &Accumulator{
		periods:      ledger,
		emitter:      emitter,
		global:       slots.NewRaw[*Global](st, slotGlobal),
		participants: slots.NewMapping[types.Address, *Checkpoint](st, slotParticipants),
	}
}

// ScheduleDriven reports whether emission flows from a schedule.
func (a *Accumulator) ScheduleDriven() bool {
	return a.emitter != nil
}

// Global returns the stored global state. Before the first settle the update
// time is the start of period 0.
func (a *Accumulator) Global() (*Global, error) {
	g, err := a.global.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get global accumulator")
	}
	if g == nil {
		g = &Global{LastUpdateTime: a.periods.Start()}
	}
	g.normalize()
	return g, nil
}

// advance integrates emission from g's last update up to now, in place.
// It returns the count of segments walked.
func (a *Accumulator) advance(g *Global, now uint64) (int, error) {
	if now < g.LastUpdateTime {
		if g.LastUpdateTime == a.periods.Start() {
			// nothing is emitted before period 0
			return 0, nil
		}
		return 0, reverts.Newf("timestamp %d is before last update %d", now, g.LastUpdateTime)
	}
	current, err := a.periods.PeriodIndex(now)
	if err != nil {
		return 0, err
	}
	if a.emitter == nil {
		g.LastUpdateTime, g.LastUpdatePeriod = now, current
		return 0, nil
	}

	var (
		segments int
		t        = g.LastUpdateTime
		p        = g.LastUpdatePeriod
	)
	for t < now {
		end := uint64(math.MaxUint64)
		if p < current {
			if end, err = a.periods.StartOfPeriod(p + 1); err != nil {
				return 0, err
			}
		}
		end = min(end, now)

		emission, err := a.emitter.Emission(t, end)
		if err != nil {
			return 0, err
		}
		weight, err := a.periods.WeightAt(periods.Global, p)
		if err != nil {
			return 0, err
		}
		if weight.IsZero() {
			if g.Undistributed, err = types.Add(g.Undistributed, emission); err != nil {
				return 0, err
			}
		} else {
			delta, err := types.MulDiv(emission, types.PrecisionInt(), weight)
			if err != nil {
				return 0, err
			}
			if g.RewardPerUnitStored, err = types.Add(g.RewardPerUnitStored, delta); err != nil {
				return 0, err
			}
		}
		segments++
		t = end
		if t < now {
			p++
		}
	}
	g.LastUpdateTime, g.LastUpdatePeriod = now, current
	return segments, nil
}

// Settle brings the stored global state up to now.
func (a *Accumulator) Settle(now uint64) (*Global, error) {
	g, err := a.Global()
	if err != nil {
		return nil, err
	}
	segments, err := a.advance(g, now)
	if err != nil {
		return nil, err
	}
	if err := a.global.Set(g); err != nil {
		return nil, errors.Wrap(err, "failed to set global accumulator")
	}
	metricSettleSegments().Observe(int64(segments))
	logger.Debug("settled", "now", now, "period", g.LastUpdatePeriod, "segments", segments, "rpu", g.RewardPerUnitStored)
	return g, nil
}

// RewardPerUnit returns the reward-per-unit value as of now without persisting anything.
func (a *Accumulator) RewardPerUnit(now uint64) (*uint256.Int, error) {
	g, err := a.Global()
	if err != nil {
		return nil, err
	}
	if _, err := a.advance(g, now); err != nil {
		return nil, err
	}
	return g.RewardPerUnitStored, nil
}

// AddReward settles, then spreads amount over the global weight of the current period.
// With zero weight the amount is only recorded as available.
func (a *Accumulator) AddReward(amount *uint256.Int, now uint64) (*Global, error) {
	if amount.IsZero() {
		return nil, reverts.New("reward amount must be positive")
	}
	g, err := a.Global()
	if err != nil {
		return nil, err
	}
	if _, err := a.advance(g, now); err != nil {
		return nil, err
	}
	if g.TotalAvailable, err = types.Add(g.TotalAvailable, amount); err != nil {
		return nil, err
	}
	supply, err := a.periods.WeightAt(periods.Global, g.LastUpdatePeriod)
	if err != nil {
		return nil, err
	}
	if !supply.IsZero() {
		delta, err := types.MulDiv(amount, types.PrecisionInt(), supply)
		if err != nil {
			return nil, err
		}
		if g.RewardPerUnitStored, err = types.Add(g.RewardPerUnitStored, delta); err != nil {
			return nil, err
		}
	}
	if err := a.global.Set(g); err != nil {
		return nil, errors.Wrap(err, "failed to set global accumulator")
	}
	logger.Debug("reward added", "amount", amount, "supply", supply, "rpu", g.RewardPerUnitStored)
	return g, nil
}
