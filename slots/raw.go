// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package slots

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/halvening/state"
	"github.com/vechain/halvening/types"
)

// Raw stores an rlp encoded value of type V in a single slot.
// An unset slot decodes to the zero value of V.
type Raw[V any] struct {
	state *state.State
	pos   types.Bytes32
}

func NewRaw[V any](state *state.State, pos types.Bytes32) *Raw[V] {
	return &Raw[V]{state: state, pos: pos}
}

func (r *Raw[V]) Get() (value V, err error) {
	err = r.state.DecodeStorage(r.pos, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &value)
	})
	return
}

func (r *Raw[V]) Set(value V) error {
	return r.state.EncodeStorage(r.pos, func() ([]byte, error) {
		return rlp.EncodeToBytes(value)
	})
}
