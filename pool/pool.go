// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"sync"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/halvening/accumulator"
	"github.com/vechain/halvening/escrow"
	"github.com/vechain/halvening/kv"
	"github.com/vechain/halvening/log"
	"github.com/vechain/halvening/periods"
	"github.com/vechain/halvening/schedule"
	"github.com/vechain/halvening/stakes"
	"github.com/vechain/halvening/state"
	"github.com/vechain/halvening/types"
)

var logger = log.WithContext("pkg", "pool")

// Config describes a pool.
type Config struct {
	Name           string
	Schedule       schedule.Schedule
	Funded         bool // rewards only come from AddReward, the schedule drives the escrow alone
	Classes        *stakes.Classes
	PeriodStart    uint64
	PeriodDuration uint64
	Token          escrow.Token
	Sink           EventSink // optional
	CacheSize      int       // slot cache in MB, zero disables it
}

// Pool is a staking rewards engine. Calls are serialised, and every mutating
// call either commits all of its writes or none.
type Pool struct {
	mu    sync.Mutex
	name  string
	db    kv.Store
	cfg   Config
	cache *state.Cache
	st    *state.State
}

var _ escrow.Reporter = (*Pool)(nil)

// New opens the pool stored under its name in db.
func New(db kv.Store, cfg Config) (*Pool, error) {
	if cfg.Name == "" {
		return nil, errors.New("empty pool name")
	}
	if cfg.Schedule == nil {
		return nil, errors.New("nil schedule")
	}
	if cfg.Classes == nil {
		cfg.Classes = stakes.DefaultClasses()
	}
	if cfg.PeriodStart == 0 {
		cfg.PeriodStart = cfg.Schedule.StartTime()
	}
	if cfg.PeriodStart > cfg.Schedule.StartTime() {
		return nil, errors.Errorf("period start %d is after schedule start %d", cfg.PeriodStart, cfg.Schedule.StartTime())
	}
	if cfg.PeriodDuration == 0 {
		cfg.PeriodDuration = periods.DefaultDuration
	}
	if cfg.Token == nil {
		return nil, errors.New("nil token")
	}
	var cache *state.Cache
	if cfg.CacheSize > 0 {
		cache = state.NewCache(cfg.CacheSize)
	}
	store := kv.Bucket(cfg.Name + "/").NewStore(db)
	st := state.NewWithCache(store, cache)
	if _, err := periods.New(st, cfg.PeriodStart, cfg.PeriodDuration); err != nil {
		return nil, err
	}
	return &Pool{
		name:  cfg.Name,
		db:    store,
		cfg:   cfg,
		cache: cache,
		st:    st,
	}, nil
}

// payout is a token transfer due once the call is committed.
type payout struct {
	to     types.Address
	amount *uint256.Int
}

// view binds the modules to one state.
type view struct {
	st      *state.State
	stakes  *stakes.Ledger
	periods *periods.Ledger
	acc     *accumulator.Accumulator
	escrow  *escrow.Escrow
	payout  *payout
}

func (p *Pool) view() *view {
	// the duration was validated by New
	ledger, _ := periods.New(p.st, p.cfg.PeriodStart, p.cfg.PeriodDuration)
	var emitter accumulator.Emitter
	if !p.cfg.Funded {
		emitter = p.cfg.Schedule
	}
	return &view{
		st:      p.st,
		stakes:  stakes.New(p.st, p.cfg.Classes),
		periods: ledger,
		acc:     accumulator.New(p.st, ledger, emitter),
		escrow:  escrow.New(p.st, p.cfg.Schedule),
	}
}

// Name returns the pool name.
func (p *Pool) Name() string { return p.name }

// Schedule returns the emission schedule.
func (p *Pool) Schedule() schedule.Schedule { return p.cfg.Schedule }

// Classes returns the weight classes.
func (p *Pool) Classes() *stakes.Classes { return p.cfg.Classes }

// Funded reports whether rewards only come from AddReward.
func (p *Pool) Funded() bool { return p.cfg.Funded }

// execute runs fn inside a checkpoint. On success the changes are committed,
// the payout fn scheduled is transferred and the events are emitted. On failure
// every write of fn is reverted. A failed transfer restores the slots the commit
// overwrote, so no reward is paid twice.
func (p *Pool) execute(op EventKind, fn func(v *view) ([]*Event, error)) (err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	defer func() { recordOperation(p.name, op, err) }()

	v := p.view()
	chk := v.st.NewCheckpoint()
	events, err := fn(v)
	if err != nil {
		v.st.RevertTo(chk)
		return err
	}

	g, err := v.acc.Global()
	if err != nil {
		v.st.RevertTo(chk)
		return err
	}
	supply, err := v.stakes.WeightedTotalSupply()
	if err != nil {
		v.st.RevertTo(chk)
		return err
	}

	stage := v.st.Stage()
	var inverse *state.Stage
	if v.payout != nil {
		if inverse, err = stage.Inverse(); err != nil {
			v.st.RevertTo(chk)
			return err
		}
	}
	if err := stage.Commit(); err != nil {
		v.st.RevertTo(chk)
		return errors.Wrap(err, "commit pool state")
	}
	// start over on a clean journal
	p.st = state.NewWithCache(p.db, p.cache)

	if v.payout != nil {
		if err := p.cfg.Token.Transfer(v.payout.to, v.payout.amount); err != nil {
			if uerr := inverse.Commit(); uerr != nil {
				logger.Error("failed to undo unpaid release", "pool", p.name, "op", op, "to", v.payout.to, "amount", v.payout.amount, "err", uerr)
			}
			return errors.Wrap(err, "transfer released rewards")
		}
	}

	metricWeightedTotalSupply().SetWithLabel(gaugeValue(supply), map[string]string{"pool": p.name})
	for _, ev := range events {
		ev.Pool = p.name
		ev.RewardPerUnit = g.RewardPerUnitStored.Clone()
	}
	logger.Debug("committed", "pool", p.name, "op", op, "slots", stage.Len(), "digest", stage.Hash())

	if p.cfg.Sink != nil && len(events) > 0 {
		if err := p.cfg.Sink.Write(events...); err != nil {
			// the state is already committed
			logger.Warn("failed to write events", "pool", p.name, "op", op, "err", err)
		}
	}
	return nil
}

// query runs fn on the current state under the lock, reverting anything fn wrote.
func (p *Pool) query(fn func(v *view) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	v := p.view()
	chk := v.st.NewCheckpoint()
	defer v.st.RevertTo(chk)
	return fn(v)
}

// recordWeights writes the post-mutation weights of the participant and the pool.
func (v *view) recordWeights(participant types.Address, now uint64) error {
	wb, err := v.stakes.WeightedBalance(participant)
	if err != nil {
		return err
	}
	total, err := v.stakes.WeightedTotalSupply()
	if err != nil {
		return err
	}
	if err := v.periods.RecordWeight(periods.Global, total, now); err != nil {
		return err
	}
	return v.periods.RecordWeight(periods.Participant(participant), wb, now)
}

// Stake adds amount of class for the participant.
func (p *Pool) Stake(participant types.Address, amount *uint256.Int, class uint64, now uint64) error {
	return p.execute(EventStake, func(v *view) ([]*Event, error) {
		wb, err := v.stakes.WeightedBalance(participant)
		if err != nil {
			return nil, err
		}
		// accrue against the weight held so far
		if _, err := v.acc.SettleParticipant(participant, wb, now); err != nil {
			return nil, err
		}
		if err := v.stakes.Stake(participant, amount, class); err != nil {
			return nil, err
		}
		if err := v.recordWeights(participant, now); err != nil {
			return nil, err
		}
		logger.Debug("staked", "pool", p.name, "participant", participant, "class", class, "amount", amount)
		return []*Event{{Kind: EventStake, Participant: participant, Class: class, Amount: amount.Clone(), Time: now}}, nil
	})
}

// Unstake removes amount of class from the participant.
func (p *Pool) Unstake(participant types.Address, amount *uint256.Int, class uint64, now uint64) error {
	return p.execute(EventUnstake, func(v *view) ([]*Event, error) {
		wb, err := v.stakes.WeightedBalance(participant)
		if err != nil {
			return nil, err
		}
		if _, err := v.acc.SettleParticipant(participant, wb, now); err != nil {
			return nil, err
		}
		if err := v.stakes.Unstake(participant, amount, class); err != nil {
			return nil, err
		}
		if err := v.recordWeights(participant, now); err != nil {
			return nil, err
		}
		logger.Debug("unstaked", "pool", p.name, "participant", participant, "class", class, "amount", amount)
		return []*Event{{Kind: EventUnstake, Participant: participant, Class: class, Amount: amount.Clone(), Time: now}}, nil
	})
}

// AddReward injects amount, spread over the current global weight.
func (p *Pool) AddReward(amount *uint256.Int, now uint64) error {
	return p.execute(EventAddReward, func(v *view) ([]*Event, error) {
		if _, err := v.acc.AddReward(amount, now); err != nil {
			return nil, err
		}
		return []*Event{{Kind: EventAddReward, Amount: amount.Clone(), Time: now}}, nil
	})
}

// Claim pays the participant's accrued rewards out of the escrow and returns the amount.
// Nothing changes if the token transfer fails.
func (p *Pool) Claim(participant types.Address, now uint64) (*uint256.Int, error) {
	var claimed *uint256.Int
	err := p.execute(EventClaim, func(v *view) ([]*Event, error) {
		wb, err := v.stakes.WeightedBalance(participant)
		if err != nil {
			return nil, err
		}
		amount, err := v.acc.Claim(participant, wb, now)
		if err != nil {
			return nil, err
		}
		if err := v.escrow.Release(participant, amount); err != nil {
			return nil, err
		}
		v.payout = &payout{to: participant, amount: amount}
		claimed = amount
		return []*Event{{Kind: EventClaim, Participant: participant, Amount: amount.Clone(), Time: now}}, nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

// Fund records a deposit into the pool's escrow.
func (p *Pool) Fund(amount *uint256.Int, now uint64) error {
	return p.execute(EventFund, func(v *view) ([]*Event, error) {
		if err := v.escrow.Fund(amount); err != nil {
			return nil, err
		}
		return []*Event{{Kind: EventFund, Amount: amount.Clone(), Time: now}}, nil
	})
}
