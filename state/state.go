// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/halvening/kv"
	"github.com/vechain/halvening/stackedmap"
	"github.com/vechain/halvening/types"
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.cause
}

// State manages the slots of one pool.
type State struct {
	db    kv.Store
	cache *Cache
	sm    *stackedmap.StackedMap[types.Bytes32, rlp.RawValue]
}

// New create state object over the given store.
func New(db kv.Store) *State {
	return NewWithCache(db, nil)
}

// NewWithCache create state object reading through cache, which may be nil.
func NewWithCache(db kv.Store, cache *Cache) *State {
	s := &State{db: db, cache: cache}
	s.sm = stackedmap.New(s.dbGetter)
	return s
}

func (s *State) dbGetter(key types.Bytes32) (rlp.RawValue, bool, error) {
	if data, ok := s.cache.get(key); ok {
		return data, true, nil
	}
	data, err := s.db.Get(key[:])
	if err != nil {
		if !s.db.IsNotFound(err) {
			return nil, false, err
		}
		data = nil
	}
	s.cache.set(key, data)
	return data, true, nil
}

// GetStorage returns storage value for the given key.
func (s *State) GetStorage(key types.Bytes32) (types.Bytes32, error) {
	raw, err := s.GetRawStorage(key)
	if err != nil {
		return types.Bytes32{}, err
	}
	if len(raw) == 0 {
		return types.Bytes32{}, nil
	}
	kind, content, _, err := rlp.Split(raw)
	if err != nil {
		return types.Bytes32{}, &Error{err}
	}
	if kind == rlp.List {
		// structured value, return hash of raw data
		return types.Blake2b(raw), nil
	}
	return types.BytesToBytes32(content), nil
}

// SetStorage set storage value for the given key.
func (s *State) SetStorage(key, value types.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(key, nil)
		return
	}
	v, _ := rlp.EncodeToBytes(bytes.TrimLeft(value[:], "\x00"))
	s.SetRawStorage(key, v)
}

// GetRawStorage returns storage value in rlp raw for given key.
func (s *State) GetRawStorage(key types.Bytes32) (rlp.RawValue, error) {
	data, _, err := s.sm.Get(key)
	if err != nil {
		return nil, &Error{err}
	}
	return data, nil
}

// SetRawStorage set storage value in rlp raw.
func (s *State) SetRawStorage(key types.Bytes32, raw rlp.RawValue) {
	s.sm.Put(key, raw)
}

// EncodeStorage set storage value encoded by given enc method.
// Error returned by enc will be absorbed by State instance.
func (s *State) EncodeStorage(key types.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
// Error returned by dec will be absorbed by State instance.
func (s *State) DecodeStorage(key types.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
	// the base level is always kept
	if s.sm.Depth() == 0 {
		s.sm.Push()
	}
}

// Stage makes a stage object to commit all changes.
func (s *State) Stage() *Stage {
	changes := make(map[types.Bytes32]rlp.RawValue)
	s.sm.Journal(func(key types.Bytes32, value rlp.RawValue) bool {
		changes[key] = value
		return true
	})
	return &Stage{db: s.db, cache: s.cache, changes: changes}
}
