// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accumulator

import "github.com/holiman/uint256"

// Global is the pool-wide accumulator state.
type Global struct {
	RewardPerUnitStored *uint256.Int // scaled by types.Precision
	LastUpdateTime      uint64
	LastUpdatePeriod    uint64
	Undistributed       *uint256.Int // emission that fell in zero-weight windows
	TotalAvailable      *uint256.Int // sum of added rewards
}

func (g *Global) normalize() {
	if g.RewardPerUnitStored == nil {
		g.RewardPerUnitStored = new(uint256.Int)
	}
	if g.Undistributed == nil {
		g.Undistributed = new(uint256.Int)
	}
	if g.TotalAvailable == nil {
		g.TotalAvailable = new(uint256.Int)
	}
}

// Checkpoint is a participant's accrual state.
type Checkpoint struct {
	RewardPerUnitPaid *uint256.Int
	Accrued           *uint256.Int
}

func (c *Checkpoint) normalize() {
	if c.RewardPerUnitPaid == nil {
		c.RewardPerUnitPaid = new(uint256.Int)
	}
	if c.Accrued == nil {
		c.Accrued = new(uint256.Int)
	}
}
