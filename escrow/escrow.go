// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package escrow

import (
	"github.com/holiman/uint256"

	"github.com/vechain/halvening/log"
	"github.com/vechain/halvening/reverts"
	"github.com/vechain/halvening/slots"
	"github.com/vechain/halvening/state"
	"github.com/vechain/halvening/types"
)

var logger = log.WithContext("pkg", "escrow")

var (
	slotLifetime    = types.BytesToBytes32([]byte("escrow-lifetime"))
	slotDistributed = types.BytesToBytes32([]byte("escrow-distributed"))
)

// Reporter is the read side of a reward escrow.
type Reporter interface {
	LifetimeRewards() (*uint256.Int, error)
	DistributedRewards() (*uint256.Int, error)
	RemainingRewards() (*uint256.Int, error)
	ReleasedRewards(now uint64) (*uint256.Int, error)
	UnclaimedRewards(now uint64) (*uint256.Int, error)
}

// Releaser books rewards as paid out of the escrow.
type Releaser interface {
	Release(to types.Address, amount *uint256.Int) error
}

// Emitter reports the amount a schedule emits over [from, to).
type Emitter interface {
	StartTime() uint64
	Emission(from, to uint64) (*uint256.Int, error)
}

var (
	_ Reporter = (*Escrow)(nil)
	_ Releaser = (*Escrow)(nil)
)

// Escrow holds the funded rewards of a pool and releases them to claimants.
// Its totals live in the pool state, so a reverted call also reverts them.
// Tokens are moved by the caller once the release is committed.
type Escrow struct {
	lifetime    *slots.Uint256
	distributed *slots.Uint256
	schedule    Emitter
}

func New(st *state.State, schedule Emitter) *Escrow {
	return &Escrow{
		lifetime:    slots.NewUint256(st, slotLifetime),
		distributed: slots.NewUint256(st, slotDistributed),
		schedule:    schedule,
	}
}

// Fund records amount as deposited into the escrow.
func (e *Escrow) Fund(amount *uint256.Int) error {
	if amount.IsZero() {
		return reverts.New("fund amount must be positive")
	}
	if err := e.lifetime.Add(amount); err != nil {
		return err
	}
	logger.Debug("funded", "amount", amount)
	return nil
}

// LifetimeRewards returns the total ever funded.
func (e *Escrow) LifetimeRewards() (*uint256.Int, error) {
	return e.lifetime.Get()
}

// DistributedRewards returns the total paid out to claimants.
func (e *Escrow) DistributedRewards() (*uint256.Int, error) {
	return e.distributed.Get()
}

// RemainingRewards returns lifetime minus distributed.
func (e *Escrow) RemainingRewards() (*uint256.Int, error) {
	lifetime, err := e.lifetime.Get()
	if err != nil {
		return nil, err
	}
	distributed, err := e.distributed.Get()
	if err != nil {
		return nil, err
	}
	return types.Sub(lifetime, distributed)
}

// ReleasedRewards returns what the schedule has unlocked by now, capped by the funding.
func (e *Escrow) ReleasedRewards(now uint64) (*uint256.Int, error) {
	lifetime, err := e.lifetime.Get()
	if err != nil {
		return nil, err
	}
	if now <= e.schedule.StartTime() {
		return new(uint256.Int), nil
	}
	emitted, err := e.schedule.Emission(e.schedule.StartTime(), now)
	if err != nil {
		return nil, err
	}
	return types.Min(emitted, lifetime), nil
}

// UnclaimedRewards returns released minus distributed, floored at zero.
func (e *Escrow) UnclaimedRewards(now uint64) (*uint256.Int, error) {
	released, err := e.ReleasedRewards(now)
	if err != nil {
		return nil, err
	}
	distributed, err := e.distributed.Get()
	if err != nil {
		return nil, err
	}
	return types.SaturatingSub(released, distributed), nil
}

// Release books amount as distributed to the claimant.
func (e *Escrow) Release(to types.Address, amount *uint256.Int) error {
	remaining, err := e.RemainingRewards()
	if err != nil {
		return err
	}
	if amount.Gt(remaining) {
		return reverts.Newf("escrow exhausted: remaining %s, requested %s", remaining.Dec(), amount.Dec())
	}
	if err := e.distributed.Add(amount); err != nil {
		return err
	}
	logger.Debug("released", "to", to, "amount", amount)
	return nil
}
