// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/qianbin/directcache"

	"github.com/vechain/halvening/log"
	"github.com/vechain/halvening/types"
)

var logger = log.WithContext("pkg", "state")

// Cache keeps slot values read from or committed to the store. A cache must
// only be shared by states over the same store. A nil *Cache caches nothing.
type Cache struct {
	slots       *directcache.Cache
	stats       cacheStats
	lastLogTime atomic.Int64
}

// NewCache creates a cache holding about sizeMB megabytes of slots.
func NewCache(sizeMB int) *Cache {
	c := &Cache{
		slots: directcache.New(sizeMB * 1024 * 1024),
	}
	c.lastLogTime.Store(time.Now().UnixNano())
	return c
}

// cached values carry a leading presence byte, so known-empty slots are cached too
func (c *Cache) get(key types.Bytes32) (rlp.RawValue, bool) {
	if c == nil {
		return nil, false
	}
	var (
		val   rlp.RawValue
		found bool
	)
	if c.slots.AdvGet(key[:], func(v []byte) {
		if len(v) > 0 {
			found = true
			if v[0] == 1 {
				val = slices.Clone(v[1:])
			}
		}
	}, false) && found {
		c.stats.Hit()
		return val, true
	}
	c.stats.Miss()
	c.log()
	return nil, false
}

func (c *Cache) set(key types.Bytes32, val rlp.RawValue) {
	if c == nil {
		return
	}
	if len(val) == 0 {
		_ = c.slots.Set(key[:], []byte{0})
		return
	}
	_ = c.slots.AdvSet(key[:], len(val)+1, func(v []byte) {
		v[0] = 1
		copy(v[1:], val)
	})
}

// Stats returns the hit and miss counts.
func (c *Cache) Stats() (hit, miss int64) {
	if c == nil {
		return 0, 0
	}
	_, hit, miss = c.stats.Stats()
	return
}

func (c *Cache) log() {
	now := time.Now().UnixNano()
	last := c.lastLogTime.Swap(now)

	if now-last > int64(time.Second*20) {
		if changed, hit, miss := c.stats.Stats(); changed {
			lookups := hit + miss
			logger.Debug("slot cache stats", "lookups", lookups, "hitrate", fmt.Sprintf("%.3f", float64(hit)/float64(lookups)))
		}
	} else {
		c.lastLogTime.CompareAndSwap(now, last)
	}
}

type cacheStats struct {
	hit, miss atomic.Int64
	flag      atomic.Int32
}

func (cs *cacheStats) Hit() int64  { return cs.hit.Add(1) }
func (cs *cacheStats) Miss() int64 { return cs.miss.Add(1) }

// Stats reports whether the hit rate moved since the last call, with the counts.
func (cs *cacheStats) Stats() (bool, int64, int64) {
	hit := cs.hit.Load()
	miss := cs.miss.Load()
	lookups := hit + miss

	hitRate := float64(0)
	if lookups > 0 {
		hitRate = float64(hit) / float64(lookups)
	}
	flag := int32(hitRate * 1000)

	return cs.flag.Swap(flag) != flag, hit, miss
}
