// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package periods

import (
	"math"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/halvening/lvldb"
	"github.com/vechain/halvening/reverts"
	"github.com/vechain/halvening/state"
	"github.com/vechain/halvening/types"
)

const start = uint64(1_700_000_000)

func newLedger(t *testing.T) *Ledger {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	l, err := New(state.New(db), start, DefaultDuration)
	require.NoError(t, err)
	return l
}

func TestNew(t *testing.T) {
	_, err := New(nil, start, 0)
	assert.Error(t, err)
}

func TestPeriodIndex(t *testing.T) {
	l := newLedger(t)

	tests := []struct {
		t    uint64
		want uint64
	}{
		{start, 0},
		{start + DefaultDuration - 1, 0},
		{start + DefaultDuration, 1},
		{start + 10*DefaultDuration + 5, 10},
	}
	for _, tt := range tests {
		i, err := l.PeriodIndex(tt.t)
		assert.NoError(t, err)
		assert.Equal(t, tt.want, i)
	}

	_, err := l.PeriodIndex(start - 1)
	assert.True(t, reverts.IsRevertErr(err))
}

func TestStartOfPeriod(t *testing.T) {
	l := newLedger(t)

	s, err := l.StartOfPeriod(0)
	assert.NoError(t, err)
	assert.Equal(t, start, s)

	s, err = l.StartOfPeriod(3)
	assert.NoError(t, err)
	assert.Equal(t, start+3*DefaultDuration, s)

	// round trip
	i, err := l.PeriodIndex(s)
	assert.NoError(t, err)
	assert.Equal(t, uint64(3), i)

	_, err = l.StartOfPeriod(math.MaxUint64)
	assert.ErrorIs(t, err, reverts.ErrOverflow)
}

func TestRecordWeight(t *testing.T) {
	l := newLedger(t)
	alice := Participant(types.BytesToAddress([]byte("alice")))

	w, err := l.WeightAt(Global, 0)
	assert.NoError(t, err)
	assert.True(t, w.IsZero())

	require.NoError(t, l.RecordWeight(Global, uint256.NewInt(10), start+1))
	require.NoError(t, l.RecordWeight(Global, uint256.NewInt(15), start+2))
	require.NoError(t, l.RecordWeight(alice, uint256.NewInt(5), start+3))
	require.NoError(t, l.RecordWeight(Global, uint256.NewInt(30), start+3*DefaultDuration))

	tests := []struct {
		scope Scope
		i     uint64
		want  uint64
	}{
		{Global, 0, 15},
		{Global, 1, 15},
		{Global, 2, 15},
		{Global, 3, 30},
		{Global, 100, 30},
		{alice, 0, 5},
		{alice, 7, 5},
	}
	for _, tt := range tests {
		w, err := l.WeightAt(tt.scope, tt.i)
		assert.NoError(t, err)
		assert.Equal(t, uint256.NewInt(tt.want), w, "period %d", tt.i)
	}

	// closed period
	err = l.RecordWeight(Global, uint256.NewInt(1), start+DefaultDuration)
	assert.True(t, reverts.IsRevertErr(err))

	// other scopes are independent
	require.NoError(t, l.RecordWeight(alice, uint256.NewInt(6), start+DefaultDuration))

	// period 0 is closed too
	assert.True(t, reverts.IsRevertErr(l.RecordWeight(Global, uint256.NewInt(1), start-1)))
}

func TestRecordWeightBeforeStart(t *testing.T) {
	l := newLedger(t)

	require.NoError(t, l.RecordWeight(Global, uint256.NewInt(10), start-100))
	require.NoError(t, l.RecordWeight(Global, uint256.NewInt(20), start-50))
	w, err := l.WeightAt(Global, 0)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(20), w)

	require.NoError(t, l.RecordWeight(Global, uint256.NewInt(25), start))
	w, err = l.WeightAt(Global, 0)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(25), w)

	_, err = l.PeriodIndex(start - 100)
	assert.True(t, reverts.IsRevertErr(err))
}
