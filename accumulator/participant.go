// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accumulator

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/halvening/reverts"
	"github.com/vechain/halvening/types"
)

// Checkpoint returns the stored checkpoint of the participant.
func (a *Accumulator) Checkpoint(participant types.Address) (*Checkpoint, error) {
	cp, err := a.participants.Get(participant)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get participant checkpoint")
	}
	cp.normalize()
	return cp, nil
}

// accrue credits weightedBalance * (rpu - paid) / precision and moves paid to rpu.
func accrue(cp *Checkpoint, weightedBalance, rpu *uint256.Int) error {
	delta, err := types.Sub(rpu, cp.RewardPerUnitPaid)
	if err != nil {
		return errors.Wrap(err, "reward per unit went backwards")
	}
	owed, err := types.MulDiv(weightedBalance, delta, types.PrecisionInt())
	if err != nil {
		return err
	}
	if cp.Accrued, err = types.Add(cp.Accrued, owed); err != nil {
		return err
	}
	cp.RewardPerUnitPaid = rpu.Clone()
	return nil
}

// SettleParticipant settles globally, then credits the participant for the
// weight it held since its last checkpoint. weightedBalance must be the weight
// before any pending change.
func (a *Accumulator) SettleParticipant(participant types.Address, weightedBalance *uint256.Int, now uint64) (*Checkpoint, error) {
	g, err := a.Settle(now)
	if err != nil {
		return nil, err
	}
	cp, err := a.Checkpoint(participant)
	if err != nil {
		return nil, err
	}
	if err := accrue(cp, weightedBalance, g.RewardPerUnitStored); err != nil {
		return nil, err
	}
	if err := a.participants.Set(participant, cp); err != nil {
		return nil, errors.Wrap(err, "failed to set participant checkpoint")
	}
	return cp, nil
}

// Earned projects the participant's claimable amount as of now without persisting anything.
func (a *Accumulator) Earned(participant types.Address, weightedBalance *uint256.Int, now uint64) (*uint256.Int, error) {
	rpu, err := a.RewardPerUnit(now)
	if err != nil {
		return nil, err
	}
	cp, err := a.Checkpoint(participant)
	if err != nil {
		return nil, err
	}
	if err := accrue(cp, weightedBalance, rpu); err != nil {
		return nil, err
	}
	return cp.Accrued, nil
}

// Claim settles the participant and zeroes its accrued amount, which is returned.
func (a *Accumulator) Claim(participant types.Address, weightedBalance *uint256.Int, now uint64) (*uint256.Int, error) {
	cp, err := a.SettleParticipant(participant, weightedBalance, now)
	if err != nil {
		return nil, err
	}
	if cp.Accrued.IsZero() {
		return nil, reverts.New("nothing to claim")
	}
	amount := cp.Accrued
	cp.Accrued = new(uint256.Int)
	if err := a.participants.Set(participant, cp); err != nil {
		return nil, errors.Wrap(err, "failed to set participant checkpoint")
	}
	logger.Debug("claimed", "participant", participant, "amount", amount)
	return amount, nil
}
