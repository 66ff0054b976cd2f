// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"github.com/holiman/uint256"

	"github.com/vechain/halvening/accumulator"
	"github.com/vechain/halvening/periods"
	"github.com/vechain/halvening/types"
)

func (p *Pool) amount(fn func(v *view) (*uint256.Int, error)) (*uint256.Int, error) {
	var out *uint256.Int
	err := p.query(func(v *view) (err error) {
		out, err = fn(v)
		return
	})
	return out, err
}

// RewardPerUnit projects the reward-per-unit value as of now.
func (p *Pool) RewardPerUnit(now uint64) (*uint256.Int, error) {
	return p.amount(func(v *view) (*uint256.Int, error) {
		return v.acc.RewardPerUnit(now)
	})
}

// Earned projects what the participant could claim at now.
func (p *Pool) Earned(participant types.Address, now uint64) (*uint256.Int, error) {
	return p.amount(func(v *view) (*uint256.Int, error) {
		wb, err := v.stakes.WeightedBalance(participant)
		if err != nil {
			return nil, err
		}
		return v.acc.Earned(participant, wb, now)
	})
}

func (p *Pool) PeriodIndex(t uint64) (uint64, error) {
	ledger, err := periods.New(nil, p.cfg.PeriodStart, p.cfg.PeriodDuration)
	if err != nil {
		return 0, err
	}
	return ledger.PeriodIndex(t)
}

func (p *Pool) StartOfPeriod(i uint64) (uint64, error) {
	ledger, err := periods.New(nil, p.cfg.PeriodStart, p.cfg.PeriodDuration)
	if err != nil {
		return 0, err
	}
	return ledger.StartOfPeriod(i)
}

func (p *Pool) PeriodDuration() uint64 { return p.cfg.PeriodDuration }

func (p *Pool) TotalSupply() (*uint256.Int, error) {
	return p.amount(func(v *view) (*uint256.Int, error) { return v.stakes.TotalSupply() })
}

func (p *Pool) WeightedTotalSupply() (*uint256.Int, error) {
	return p.amount(func(v *view) (*uint256.Int, error) { return v.stakes.WeightedTotalSupply() })
}

func (p *Pool) WeightedBalance(participant types.Address) (*uint256.Int, error) {
	return p.amount(func(v *view) (*uint256.Int, error) { return v.stakes.WeightedBalance(participant) })
}

func (p *Pool) BalanceOf(participant types.Address, class uint64) (*uint256.Int, error) {
	return p.amount(func(v *view) (*uint256.Int, error) { return v.stakes.BalanceOf(participant, class) })
}

// Rewards returns the accrued amount stored at the participant's last checkpoint.
func (p *Pool) Rewards(participant types.Address) (*uint256.Int, error) {
	return p.amount(func(v *view) (*uint256.Int, error) {
		cp, err := v.acc.Checkpoint(participant)
		if err != nil {
			return nil, err
		}
		return cp.Accrued, nil
	})
}

func (p *Pool) RewardPerUnitPaid(participant types.Address) (*uint256.Int, error) {
	return p.amount(func(v *view) (*uint256.Int, error) {
		cp, err := v.acc.Checkpoint(participant)
		if err != nil {
			return nil, err
		}
		return cp.RewardPerUnitPaid, nil
	})
}

// Global returns the stored global accumulator state.
func (p *Pool) Global() (*accumulator.Global, error) {
	var g *accumulator.Global
	err := p.query(func(v *view) (err error) {
		g, err = v.acc.Global()
		return
	})
	return g, err
}

func (p *Pool) RewardPerUnitStored() (*uint256.Int, error) {
	g, err := p.Global()
	if err != nil {
		return nil, err
	}
	return g.RewardPerUnitStored, nil
}

func (p *Pool) TotalAvailableRewards() (*uint256.Int, error) {
	g, err := p.Global()
	if err != nil {
		return nil, err
	}
	return g.TotalAvailable, nil
}

// Undistributed returns the emission that fell in periods without weight, as of the last settle.
func (p *Pool) Undistributed() (*uint256.Int, error) {
	g, err := p.Global()
	if err != nil {
		return nil, err
	}
	return g.Undistributed, nil
}

func (p *Pool) GlobalWeightAt(i uint64) (*uint256.Int, error) {
	return p.amount(func(v *view) (*uint256.Int, error) { return v.periods.WeightAt(periods.Global, i) })
}

func (p *Pool) ParticipantWeightAt(participant types.Address, i uint64) (*uint256.Int, error) {
	return p.amount(func(v *view) (*uint256.Int, error) {
		return v.periods.WeightAt(periods.Participant(participant), i)
	})
}

func (p *Pool) LifetimeRewards() (*uint256.Int, error) {
	return p.amount(func(v *view) (*uint256.Int, error) { return v.escrow.LifetimeRewards() })
}

func (p *Pool) DistributedRewards() (*uint256.Int, error) {
	return p.amount(func(v *view) (*uint256.Int, error) { return v.escrow.DistributedRewards() })
}

func (p *Pool) RemainingRewards() (*uint256.Int, error) {
	return p.amount(func(v *view) (*uint256.Int, error) { return v.escrow.RemainingRewards() })
}

func (p *Pool) ReleasedRewards(now uint64) (*uint256.Int, error) {
	return p.amount(func(v *view) (*uint256.Int, error) { return v.escrow.ReleasedRewards(now) })
}

func (p *Pool) UnclaimedRewards(now uint64) (*uint256.Int, error) {
	return p.amount(func(v *view) (*uint256.Int, error) { return v.escrow.UnclaimedRewards(now) })
}
