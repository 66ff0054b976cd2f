// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package slots

import (
	"encoding/binary"
	"reflect"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/halvening/state"
	"github.com/vechain/halvening/types"
)

type Key interface {
	Bytes() []byte
}

// Uint64Key is a mapping key of an unsigned integer, big endian encoded.
type Uint64Key uint64

func (k Uint64Key) Bytes() []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(k))
}

// Mapping is a key/value storage abstraction, similar to the mapping in Solidity.
// Pointer values are never returned nil: a missing entry yields a new zero V.
type Mapping[K Key, V any] struct {
	state   *state.State
	basePos types.Bytes32
}

func NewMapping[K Key, V any](state *state.State, pos types.Bytes32) *Mapping[K, V] {
	return &Mapping[K, V]{state: state, basePos: pos}
}

func (m *Mapping[K, V]) position(key K) types.Bytes32 {
	return types.SlotOf(key.Bytes(), m.basePos)
}

func (m *Mapping[K, V]) Get(key K) (value V, err error) {
	err = m.state.DecodeStorage(m.position(key), func(raw []byte) error {
		if reflect.ValueOf(value).Kind() == reflect.Ptr {
			value = reflect.New(reflect.TypeOf(value).Elem()).Interface().(V)
		}
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &value)
	})
	return
}

func (m *Mapping[K, V]) Set(key K, value V) error {
	return m.state.EncodeStorage(m.position(key), func() ([]byte, error) {
		return rlp.EncodeToBytes(value)
	})
}

// Delete clears the entry.
func (m *Mapping[K, V]) Delete(key K) {
	m.state.SetRawStorage(m.position(key), nil)
}
