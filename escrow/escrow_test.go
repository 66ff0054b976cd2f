// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package escrow

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/halvening/lvldb"
	"github.com/vechain/halvening/reverts"
	"github.com/vechain/halvening/schedule"
	"github.com/vechain/halvening/state"
	"github.com/vechain/halvening/types"
)

const (
	week          = uint64(7 * 24 * 3600)
	cycleDuration = 26 * week
	now           = uint64(1_700_000_000)
)

var claimant = types.BytesToAddress([]byte("claimant"))

func newEscrow(t *testing.T, start uint64) (*Escrow, *state.State) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sched, err := schedule.New(start, cycleDuration, uint256.NewInt(cycleDuration*4))
	require.NoError(t, err)

	st := state.New(db)
	e := New(st, sched)
	require.NoError(t, e.Fund(uint256.NewInt(cycleDuration*8)))
	return e, st
}

func TestEscrowTotals(t *testing.T) {
	e, _ := newEscrow(t, now-27*week)

	lifetime, err := e.LifetimeRewards()
	assert.NoError(t, err)
	assert.Equal(t, uint256.NewInt(cycleDuration*8), lifetime)

	distributed, err := e.DistributedRewards()
	assert.NoError(t, err)
	assert.True(t, distributed.IsZero())

	remaining, err := e.RemainingRewards()
	assert.NoError(t, err)
	assert.Equal(t, uint256.NewInt(cycleDuration*8), remaining)

	// 26 weeks at rate 4, then one week at rate 2
	released, err := e.ReleasedRewards(now)
	assert.NoError(t, err)
	assert.Equal(t, uint256.NewInt(cycleDuration*4+week*2), released)

	unclaimed, err := e.UnclaimedRewards(now)
	assert.NoError(t, err)
	assert.Equal(t, released, unclaimed)

	// released is capped by lifetime emission, which is below funding
	released, err = e.ReleasedRewards(now + 100*cycleDuration)
	assert.NoError(t, err)
	assert.Equal(t, uint256.NewInt(cycleDuration*7), released)
}

func TestEscrowBeforeStart(t *testing.T) {
	e, _ := newEscrow(t, now+10000)

	released, err := e.ReleasedRewards(now)
	assert.NoError(t, err)
	assert.True(t, released.IsZero())

	unclaimed, err := e.UnclaimedRewards(now)
	assert.NoError(t, err)
	assert.True(t, unclaimed.IsZero())
}

func TestEscrowRelease(t *testing.T) {
	e, _ := newEscrow(t, now-100)

	require.NoError(t, e.Release(claimant, uint256.NewInt(300)))

	distributed, _ := e.DistributedRewards()
	assert.Equal(t, uint256.NewInt(300), distributed)

	// 400 released so far, 300 paid out
	unclaimed, err := e.UnclaimedRewards(now)
	assert.NoError(t, err)
	assert.Equal(t, uint256.NewInt(100), unclaimed)

	unclaimed, err = e.UnclaimedRewards(now - 50)
	assert.NoError(t, err)
	assert.True(t, unclaimed.IsZero(), "floored at zero")

	err = e.Release(claimant, uint256.NewInt(cycleDuration*8))
	assert.True(t, reverts.IsRevertErr(err))
}

func TestEscrowReleaseReverted(t *testing.T) {
	e, st := newEscrow(t, now)

	chk := st.NewCheckpoint()
	require.NoError(t, e.Release(claimant, uint256.NewInt(1)))
	st.RevertTo(chk)

	distributed, _ := e.DistributedRewards()
	assert.True(t, distributed.IsZero())
}

func TestMemoryToken(t *testing.T) {
	token := NewMemoryToken(uint256.NewInt(5))
	assert.True(t, reverts.IsRevertErr(token.Transfer(claimant, uint256.NewInt(6))))

	require.NoError(t, token.Deposit(uint256.NewInt(5)))
	require.NoError(t, token.Transfer(claimant, uint256.NewInt(6)))
	assert.Equal(t, uint256.NewInt(4), token.Reserve())
	assert.Equal(t, uint256.NewInt(6), token.BalanceOf(claimant))
}

func TestFundZero(t *testing.T) {
	e, _ := newEscrow(t, now)
	assert.True(t, reverts.IsRevertErr(e.Fund(new(uint256.Int))))
}
