// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package slots

import (
	"sort"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/halvening/state"
	"github.com/vechain/halvening/types"
)

// Checkpoint is a value recorded at a key, typically a period index.
type Checkpoint struct {
	Key   uint64
	Value *uint256.Int
}

// Checkpoints is a sparse, key ordered history of values.
// Only the latest checkpoint may be rewritten; earlier ones are immutable.
type Checkpoints struct {
	count   *Raw[uint64]
	entries *Mapping[Uint64Key, *Checkpoint]
}

func NewCheckpoints(state *state.State, pos types.Bytes32) *Checkpoints {
	return &Checkpoints{
		count:   NewRaw[uint64](state, pos),
		entries: NewMapping[Uint64Key, *Checkpoint](state, types.SlotOf([]byte("entries"), pos)),
	}
}

// Len returns the count of checkpoints.
func (c *Checkpoints) Len() (uint64, error) {
	return c.count.Get()
}

// Latest returns the checkpoint with the greatest key.
// The bool is false if nothing was ever pushed.
func (c *Checkpoints) Latest() (*Checkpoint, bool, error) {
	n, err := c.count.Get()
	if err != nil {
		return nil, false, err
	}
	if n == 0 {
		return nil, false, nil
	}
	cp, err := c.entries.Get(Uint64Key(n - 1))
	if err != nil {
		return nil, false, err
	}
	return cp, true, nil
}

// Push records value at key. It overwrites the latest checkpoint if keys are equal,
// appends if key is greater, and fails if key is lower.
func (c *Checkpoints) Push(key uint64, value *uint256.Int) error {
	n, err := c.count.Get()
	if err != nil {
		return err
	}
	if n > 0 {
		last, err := c.entries.Get(Uint64Key(n - 1))
		if err != nil {
			return err
		}
		if key < last.Key {
			return errors.Errorf("checkpoint %d is before latest %d", key, last.Key)
		}
		if key == last.Key {
			return c.entries.Set(Uint64Key(n-1), &Checkpoint{Key: key, Value: value.Clone()})
		}
	}
	if err := c.entries.Set(Uint64Key(n), &Checkpoint{Key: key, Value: value.Clone()}); err != nil {
		return err
	}
	return c.count.Set(n + 1)
}

// At returns the value of the last checkpoint whose key is at or below key,
// or zero if there is none.
func (c *Checkpoints) At(key uint64) (*uint256.Int, error) {
	n, err := c.count.Get()
	if err != nil {
		return nil, err
	}

	var serr error
	// first index whose key is above the requested one
	i := sort.Search(int(n), func(i int) bool {
		if serr != nil {
			return true
		}
		cp, err := c.entries.Get(Uint64Key(i))
		if err != nil {
			serr = err
			return true
		}
		return cp.Key > key
	})
	if serr != nil {
		return nil, serr
	}
	if i == 0 {
		return new(uint256.Int), nil
	}
	cp, err := c.entries.Get(Uint64Key(i - 1))
	if err != nil {
		return nil, err
	}
	if cp.Value == nil {
		return new(uint256.Int), nil
	}
	return cp.Value.Clone(), nil
}
