// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package slots

import (
	"github.com/holiman/uint256"

	"github.com/vechain/halvening/state"
	"github.com/vechain/halvening/types"
)

// Uint256 is a wrapper for storage and retrieval of an uint256.
type Uint256 struct {
	state *state.State
	pos   types.Bytes32
}

func NewUint256(state *state.State, pos types.Bytes32) *Uint256 {
	return &Uint256{state: state, pos: pos}
}

func (u *Uint256) Get() (*uint256.Int, error) {
	storage, err := u.state.GetStorage(u.pos)
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).SetBytes32(storage[:]), nil
}

func (u *Uint256) Set(value *uint256.Int) {
	u.state.SetStorage(u.pos, value.Bytes32())
}

// Add adds value to the stored one, failing on overflow.
func (u *Uint256) Add(value *uint256.Int) error {
	storage, err := u.Get()
	if err != nil {
		return err
	}
	sum, err := types.Add(storage, value)
	if err != nil {
		return err
	}
	u.Set(sum)
	return nil
}

// Sub subtracts value from the stored one, failing on underflow.
func (u *Uint256) Sub(value *uint256.Int) error {
	storage, err := u.Get()
	if err != nil {
		return err
	}
	diff, err := types.Sub(storage, value)
	if err != nil {
		return err
	}
	u.Set(diff)
	return nil
}
