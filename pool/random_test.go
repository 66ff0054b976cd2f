// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/halvening/reverts"
	"github.com/vechain/halvening/types"
)

type randomOp struct {
	Kind   uint8
	Who    uint8
	Class  uint8
	Amount uint16
	Delay  uint32
}

func TestRandomOperations(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		var ops []randomOp
		fuzz.NewWithSeed(seed).NilChance(0).NumElements(100, 200).Fuzz(&ops)

		tp := newTestPool(t)
		participants := []types.Address{
			types.BytesToAddress([]byte{1}),
			types.BytesToAddress([]byte{2}),
			types.BytesToAddress([]byte{3}),
		}
		var (
			now     = start
			lastRPU = new(uint256.Int)
			claimed = new(uint256.Int)
		)
		for _, op := range ops {
			now += uint64(op.Delay) % (3 * period)
			who := participants[int(op.Who)%len(participants)]
			class := uint64(op.Class%2) + 1
			amount := uint256.NewInt(uint64(op.Amount) + 1)

			var err error
			switch op.Kind % 3 {
			case 0:
				err = tp.Stake(who, amount, class, now)
			case 1:
				err = tp.Unstake(who, amount, class, now)
			case 2:
				var c *uint256.Int
				if c, err = tp.Claim(who, now); err == nil {
					claimed.Add(claimed, c)
				}
			}
			if err != nil {
				require.True(t, reverts.IsRevertErr(err), "seed %d: %v", seed, err)
			}

			rpu, err := tp.RewardPerUnit(now)
			require.NoError(t, err)
			assert.False(t, rpu.Lt(lastRPU), "seed %d: reward per unit went down", seed)
			lastRPU = rpu

			owed := claimed.Clone()
			for _, p := range participants {
				e, err := tp.Earned(p, now)
				require.NoError(t, err)
				owed.Add(owed, e)
			}
			emitted, err := tp.Schedule().Emission(start, now)
			require.NoError(t, err)
			undistributed, err := tp.Undistributed()
			require.NoError(t, err)
			assert.False(t, owed.Gt(types.SaturatingSub(emitted, undistributed)),
				"seed %d: owed %s exceeds emitted %s", seed, owed.Dec(), emitted.Dec())
		}
		paid := new(uint256.Int)
		for _, p := range participants {
			paid.Add(paid, tp.token.BalanceOf(p))
		}
		assert.Equal(t, claimed, paid, "seed %d", seed)
	}
}
