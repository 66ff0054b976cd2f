// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"sort"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/halvening/kv"
	"github.com/vechain/halvening/types"
)

// Stage abstracts changes on the slots.
type Stage struct {
	db      kv.Store
	cache   *Cache
	changes map[types.Bytes32]rlp.RawValue
}

// Len returns count of changed slots.
func (s *Stage) Len() int {
	return len(s.changes)
}

// Hash computes the digest of the changes, in key order.
func (s *Stage) Hash() types.Bytes32 {
	keys := make([]types.Bytes32, 0, len(s.changes))
	for k := range s.changes {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return bytes.Compare(keys[i][:], keys[j][:]) < 0
	})

	var buf []byte
	for _, k := range keys {
		buf = append(buf, k[:]...)
		buf = append(buf, types.Blake2b(s.changes[k]).Bytes()...)
	}
	return types.Blake2b(buf)
}

// Commit writes all changes into the store atomically.
// Empty values delete the slot.
func (s *Stage) Commit() error {
	if len(s.changes) == 0 {
		return nil
	}
	batch := s.db.NewBatch()
	for k, v := range s.changes {
		var err error
		if len(v) == 0 {
			err = batch.Delete(k[:])
		} else {
			err = batch.Put(k[:], v)
		}
		if err != nil {
			return errors.Wrap(err, "stage slot")
		}
	}
	if err := batch.Write(); err != nil {
		return errors.Wrap(err, "commit stage")
	}
	for k, v := range s.changes {
		s.cache.set(k, v)
	}
	return nil
}

// Inverse returns a stage that restores the stored values of the changed
// slots. It must be built before Commit.
func (s *Stage) Inverse() (*Stage, error) {
	prev := make(map[types.Bytes32]rlp.RawValue, len(s.changes))
	for k := range s.changes {
		v, err := s.db.Get(k[:])
		if err != nil {
			if !s.db.IsNotFound(err) {
				return nil, errors.Wrap(err, "read slot")
			}
			v = nil
		}
		prev[k] = v
	}
	return &Stage{db: s.db, cache: s.cache, changes: prev}, nil
}
