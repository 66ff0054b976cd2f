// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package schedule

import (
	"math"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/halvening/reverts"
)

const (
	week          = uint64(7 * 24 * 3600)
	cycleDuration = 26 * week
	now           = uint64(1_700_000_000)
)

func newHalving(t *testing.T, start uint64, opts ...Option) *Halving {
	h, err := New(start, cycleDuration, uint256.NewInt(cycleDuration*4), opts...)
	require.NoError(t, err)
	return h
}

func TestNew(t *testing.T) {
	_, err := New(0, 0, uint256.NewInt(1))
	assert.Error(t, err)

	_, err = New(0, 1, nil)
	assert.Error(t, err)
}

func TestCurrentCycle(t *testing.T) {
	h := newHalving(t, now-100)

	cycle, err := h.CurrentCycle(now)
	assert.NoError(t, err)
	assert.Equal(t, uint64(1), cycle)

	rate, err := h.CurrentRewardRate(now)
	assert.NoError(t, err)
	assert.Equal(t, uint256.NewInt(4), rate)

	start, err := h.StartOfCurrentCycle(now)
	assert.NoError(t, err)
	assert.Equal(t, now-100, start)

	_, err = h.CurrentCycle(now - 101)
	assert.True(t, reverts.IsRevertErr(err))
}

func TestSecondCycle(t *testing.T) {
	h := newHalving(t, now-27*week)

	cycle, err := h.CurrentCycle(now)
	assert.NoError(t, err)
	assert.Equal(t, uint64(2), cycle)

	rate, err := h.CurrentRewardRate(now)
	assert.NoError(t, err)
	assert.Equal(t, uint256.NewInt(2), rate)

	start, err := h.StartOfCurrentCycle(now)
	assert.NoError(t, err)
	assert.Equal(t, now-week, start)
}

func TestRewardRate(t *testing.T) {
	h := newHalving(t, now)

	tests := []struct {
		n    uint64
		want uint64
	}{
		{1, 4},
		{2, 2},
		{3, 1},
		{4, 0},
		{300, 0},
		{math.MaxUint64, 0},
	}
	for _, tt := range tests {
		rate, err := h.RewardRate(tt.n)
		assert.NoError(t, err)
		assert.Equal(t, uint256.NewInt(tt.want), rate, "cycle %d", tt.n)
	}

	// cached value is not shared with callers
	rate, _ := h.RewardRate(1)
	rate.SetUint64(99)
	rate, _ = h.RewardRate(1)
	assert.Equal(t, uint256.NewInt(4), rate)

	_, err := h.RewardRate(0)
	assert.True(t, reverts.IsRevertErr(err))
}

func TestRewardRateNeverIncreases(t *testing.T) {
	h, err := New(0, 3, new(uint256.Int).SetAllOne())
	require.NoError(t, err)

	prev, err := h.RewardRate(1)
	require.NoError(t, err)
	for n := uint64(2); n <= 260; n++ {
		rate, err := h.RewardRate(n)
		require.NoError(t, err)
		assert.False(t, rate.Gt(prev), "cycle %d", n)
		prev = rate
	}
	assert.True(t, prev.IsZero())
}

func TestTokensForCycle(t *testing.T) {
	h := newHalving(t, now)

	tokens, err := h.TokensForCycle(3)
	assert.NoError(t, err)
	assert.Equal(t, uint256.NewInt(cycleDuration), tokens)

	tokens, err = h.TokensForCycle(1)
	assert.NoError(t, err)
	assert.Equal(t, uint256.NewInt(cycleDuration*4), tokens)

	_, err = h.TokensForCycle(0)
	assert.True(t, reverts.IsRevertErr(err))
}

func TestStartOfCycle(t *testing.T) {
	h := newHalving(t, now)

	start, err := h.StartOfCycle(1)
	assert.NoError(t, err)
	assert.Equal(t, now, start)

	start, err = h.StartOfCycle(3)
	assert.NoError(t, err)
	assert.Equal(t, now+2*cycleDuration, start)

	_, err = h.StartOfCycle(0)
	assert.True(t, reverts.IsRevertErr(err))

	_, err = h.StartOfCycle(math.MaxUint64)
	assert.ErrorIs(t, err, reverts.ErrOverflow)
}

func TestEmission(t *testing.T) {
	h := newHalving(t, now)

	tests := []struct {
		from, to uint64
		want     uint64
	}{
		{now - 1000, now, 0},
		{now - 1000, now + 10, 40},
		{now, now + 10, 40},
		{now + cycleDuration - 5, now + cycleDuration + 5, 5*4 + 5*2},
		{now, now + 2*cycleDuration, 6 * cycleDuration},
		{now, now + 100*cycleDuration, 7 * cycleDuration},
		{now + 5*cycleDuration, math.MaxUint64, 0},
		{now + 7, now + 7, 0},
	}
	for _, tt := range tests {
		got, err := h.Emission(tt.from, tt.to)
		assert.NoError(t, err)
		assert.Equal(t, uint256.NewInt(tt.want), got, "[%d, %d)", tt.from, tt.to)
	}

	_, err := h.Emission(now+1, now)
	assert.True(t, reverts.IsRevertErr(err))
}

func TestEmissionIsAdditive(t *testing.T) {
	h := newHalving(t, now)
	points := []uint64{now, now + 3, now + cycleDuration, now + cycleDuration + 1, now + 3*cycleDuration + 17, now + 9*cycleDuration}

	whole, err := h.Emission(points[0], points[len(points)-1])
	require.NoError(t, err)

	sum := new(uint256.Int)
	for i := 1; i < len(points); i++ {
		part, err := h.Emission(points[i-1], points[i])
		require.NoError(t, err)
		sum.Add(sum, part)
	}
	assert.Equal(t, whole, sum)
}

func TestLifetimeEmission(t *testing.T) {
	h := newHalving(t, now)

	total, err := h.LifetimeEmission()
	assert.NoError(t, err)
	assert.Equal(t, uint256.NewInt(7*cycleDuration), total)
}

func TestMinRate(t *testing.T) {
	h := newHalving(t, now, WithMinRate(uint256.NewInt(1)))
	assert.Equal(t, uint256.NewInt(1), h.MinRate())

	rate, err := h.RewardRate(10)
	assert.NoError(t, err)
	assert.Equal(t, uint256.NewInt(1), rate)

	got, err := h.Emission(now+3*cycleDuration, now+10*cycleDuration)
	assert.NoError(t, err)
	assert.Equal(t, uint256.NewInt(7*cycleDuration), got)

	_, err = h.LifetimeEmission()
	assert.True(t, reverts.IsRevertErr(err))

	// a zero floor is no floor
	assert.Nil(t, newHalving(t, now, WithMinRate(new(uint256.Int))).MinRate())
}
