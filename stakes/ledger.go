// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakes

import (
	"encoding/binary"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/halvening/reverts"
	"github.com/vechain/halvening/slots"
	"github.com/vechain/halvening/state"
	"github.com/vechain/halvening/types"
)

var (
	slotBalances      = types.BytesToBytes32([]byte("class-balances"))
	slotWeighted      = types.BytesToBytes32([]byte("weighted-balances"))
	slotTotalSupply   = types.BytesToBytes32([]byte("total-supply"))
	slotWeightedTotal = types.BytesToBytes32([]byte("weighted-total-supply"))
)

type balanceKey struct {
	participant types.Address
	class       uint64
}

func (k balanceKey) Bytes() []byte {
	return binary.BigEndian.AppendUint64(k.participant.Bytes(), k.class)
}

// Ledger tracks per-class stakes and the weighted balances derived from them.
type Ledger struct {
	classes       *Classes
	balances      *slots.Mapping[balanceKey, *uint256.Int]
	weighted      *slots.Mapping[types.Address, *uint256.Int]
	totalSupply   *slots.Uint256
	weightedTotal *slots.Uint256
}

func New(st *state.State, classes *Classes) *Ledger {
	return &Ledger{
		classes:       classes,
		balances:      slots.NewMapping[balanceKey, *uint256.Int](st, slotBalances),
		weighted:      slots.NewMapping[types.Address, *uint256.Int](st, slotWeighted),
		totalSupply:   slots.NewUint256(st, slotTotalSupply),
		weightedTotal: slots.NewUint256(st, slotWeightedTotal),
	}
}

func (l *Ledger) Classes() *Classes {
	return l.classes
}

func (l *Ledger) weight(amount *uint256.Int, class uint64) (*uint256.Int, error) {
	if amount.IsZero() {
		return nil, reverts.New("amount must be positive")
	}
	multiplier, ok := l.classes.Multiplier(class)
	if !ok {
		return nil, reverts.Newf("unknown weight class %d", class)
	}
	return types.Mul(amount, uint256.NewInt(multiplier))
}

// Stake adds amount of class to the participant.
func (l *Ledger) Stake(participant types.Address, amount *uint256.Int, class uint64) error {
	weight, err := l.weight(amount, class)
	if err != nil {
		return err
	}
	key := balanceKey{participant, class}

	balance, err := l.balances.Get(key)
	if err != nil {
		return errors.Wrap(err, "failed to get class balance")
	}
	if balance, err = types.Add(balance, amount); err != nil {
		return err
	}
	wb, err := l.weighted.Get(participant)
	if err != nil {
		return errors.Wrap(err, "failed to get weighted balance")
	}
	if wb, err = types.Add(wb, weight); err != nil {
		return err
	}
	if err := l.totalSupply.Add(amount); err != nil {
		return err
	}
	if err := l.weightedTotal.Add(weight); err != nil {
		return err
	}
	if err := l.balances.Set(key, balance); err != nil {
		return errors.Wrap(err, "failed to set class balance")
	}
	return errors.Wrap(l.weighted.Set(participant, wb), "failed to set weighted balance")
}

// Unstake removes amount of class from the participant.
func (l *Ledger) Unstake(participant types.Address, amount *uint256.Int, class uint64) error {
	weight, err := l.weight(amount, class)
	if err != nil {
		return err
	}
	key := balanceKey{participant, class}

	balance, err := l.balances.Get(key)
	if err != nil {
		return errors.Wrap(err, "failed to get class balance")
	}
	if amount.Gt(balance) {
		return reverts.Newf("insufficient class %d balance: have %s, want %s", class, balance.Dec(), amount.Dec())
	}
	balance.Sub(balance, amount)

	wb, err := l.weighted.Get(participant)
	if err != nil {
		return errors.Wrap(err, "failed to get weighted balance")
	}
	if wb, err = types.Sub(wb, weight); err != nil {
		return err
	}
	if err := l.totalSupply.Sub(amount); err != nil {
		return err
	}
	if err := l.weightedTotal.Sub(weight); err != nil {
		return err
	}
	if balance.IsZero() {
		l.balances.Delete(key)
	} else if err := l.balances.Set(key, balance); err != nil {
		return errors.Wrap(err, "failed to set class balance")
	}
	if wb.IsZero() {
		l.weighted.Delete(participant)
		return nil
	}
	return errors.Wrap(l.weighted.Set(participant, wb), "failed to set weighted balance")
}

// BalanceOf returns the raw amount of class held by the participant.
func (l *Ledger) BalanceOf(participant types.Address, class uint64) (*uint256.Int, error) {
	if _, ok := l.classes.Multiplier(class); !ok {
		return nil, reverts.Newf("unknown weight class %d", class)
	}
	return l.balances.Get(balanceKey{participant, class})
}

// WeightedBalance returns Σ amount[c] * multiplier[c] for the participant.
func (l *Ledger) WeightedBalance(participant types.Address) (*uint256.Int, error) {
	return l.weighted.Get(participant)
}

// TotalSupply returns the raw units staked across all classes.
func (l *Ledger) TotalSupply() (*uint256.Int, error) {
	return l.totalSupply.Get()
}

// WeightedTotalSupply returns the sum of all weighted balances.
func (l *Ledger) WeightedTotalSupply() (*uint256.Int, error) {
	return l.weightedTotal.Get()
}
