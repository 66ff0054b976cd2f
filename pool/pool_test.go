// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/halvening/escrow"
	"github.com/vechain/halvening/kv"
	"github.com/vechain/halvening/lvldb"
	"github.com/vechain/halvening/periods"
	"github.com/vechain/halvening/reverts"
	"github.com/vechain/halvening/schedule"
	"github.com/vechain/halvening/stakes"
	"github.com/vechain/halvening/types"
)

const (
	week          = uint64(7 * 24 * 3600)
	cycleDuration = 26 * week
	period        = periods.DefaultDuration
	start         = uint64(1_700_000_000)
)

var (
	alice = types.BytesToAddress([]byte("alice"))
	bob   = types.BytesToAddress([]byte("bob"))
)

func u(v uint64) *uint256.Int { return uint256.NewInt(v) }

type recordingSink struct {
	events []*Event
}

func (s *recordingSink) Write(events ...*Event) error {
	s.events = append(s.events, events...)
	return nil
}

type testPool struct {
	*Pool
	db    kv.Store
	token *escrow.MemoryToken
	sink  *recordingSink
	cfg   Config
}

type option func(*Config)

func funded(c *Config) { c.Funded = true }

func newTestPool(t *testing.T, opts ...option) *testPool {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sched, err := schedule.New(start, cycleDuration, u(cycleDuration*4))
	require.NoError(t, err)

	classes, err := stakes.NewClasses(stakes.Class{ID: 1, Multiplier: 1}, stakes.Class{ID: 2, Multiplier: 3})
	require.NoError(t, err)

	token := escrow.NewMemoryToken(u(cycleDuration * 8))
	sink := &recordingSink{}
	cfg := Config{
		Name:        "test",
		Schedule:    sched,
		Classes:     classes,
		PeriodStart: start,
		Token:       token,
		Sink:        sink,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	p, err := New(db, cfg)
	require.NoError(t, err)
	require.NoError(t, p.Fund(u(cycleDuration*8), start))
	return &testPool{Pool: p, db: db, token: token, sink: sink, cfg: cfg}
}

func (tp *testPool) earned(t *testing.T, who types.Address, now uint64) uint64 {
	e, err := tp.Earned(who, now)
	require.NoError(t, err)
	require.True(t, e.IsUint64())
	return e.Uint64()
}

func TestNewValidation(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()
	sched, _ := schedule.New(start, cycleDuration, u(1))
	token := escrow.NewMemoryToken(u(0))

	_, err = New(db, Config{Schedule: sched, Token: token})
	assert.Error(t, err)
	_, err = New(db, Config{Name: "x", Token: token})
	assert.Error(t, err)
	_, err = New(db, Config{Name: "x", Schedule: sched})
	assert.Error(t, err)

	_, err = New(db, Config{Name: "x", Schedule: sched, Token: token, PeriodStart: start + 1})
	assert.Error(t, err, "emission before the first period would be lost")

	p, err := New(db, Config{Name: "x", Schedule: sched, Token: token})
	require.NoError(t, err)
	assert.Equal(t, periods.DefaultDuration, p.PeriodDuration())
	s, err := p.StartOfPeriod(0)
	require.NoError(t, err)
	assert.Equal(t, start, s)
	m, ok := p.Classes().Multiplier(1)
	assert.True(t, ok)
	assert.Equal(t, uint64(65), m)
}

func TestRewardPerUnitFullPeriod(t *testing.T) {
	tp := newTestPool(t)

	rpu, err := tp.RewardPerUnit(start)
	require.NoError(t, err)
	assert.True(t, rpu.IsZero())

	require.NoError(t, tp.Stake(alice, u(907200), 1, start))
	require.NoError(t, tp.Stake(bob, u(100800), 2, start))

	rpu, err = tp.RewardPerUnit(start + period)
	require.NoError(t, err)
	assert.Equal(t, "4000000000000000000", rpu.Dec())

	assert.Equal(t, uint64(3628800), tp.earned(t, alice, start+period))
	assert.Equal(t, uint64(1209600), tp.earned(t, bob, start+period))

	// projections do not persist
	stored, err := tp.RewardPerUnitStored()
	require.NoError(t, err)
	assert.True(t, stored.IsZero())

	// idempotent
	assert.Equal(t, uint64(3628800), tp.earned(t, alice, start+period))
}

func TestEqualWeightsSplitEqually(t *testing.T) {
	tp := newTestPool(t)
	require.NoError(t, tp.Stake(alice, u(604800), 1, start))
	require.NoError(t, tp.Stake(bob, u(604800), 1, start))

	for _, now := range []uint64{start + period, start + 2*period} {
		a := tp.earned(t, alice, now)
		b := tp.earned(t, bob, now)
		assert.Equal(t, a, b)
		assert.Equal(t, 4*(now-start)/2, a)
	}
}

func TestMidPeriodStake(t *testing.T) {
	tp := newTestPool(t)
	require.NoError(t, tp.Stake(alice, u(100), 1, start))
	require.NoError(t, tp.Stake(bob, u(100), 1, start+period/2))

	// first half to alice alone, second half shared
	assert.Equal(t, uint64(3628800), tp.earned(t, alice, start+period))
	assert.Equal(t, uint64(1209600), tp.earned(t, bob, start+period))

	paid, err := tp.RewardPerUnitPaid(bob)
	require.NoError(t, err)
	assert.Equal(t, "24192000000000000000000", paid.Dec())

	w, err := tp.GlobalWeightAt(0)
	require.NoError(t, err)
	assert.Equal(t, u(200), w)

	w, err = tp.ParticipantWeightAt(bob, 5)
	require.NoError(t, err)
	assert.Equal(t, u(100), w)
}

func TestAcrossCycleBoundary(t *testing.T) {
	tp := newTestPool(t)
	require.NoError(t, tp.Stake(alice, u(100), 1, start))

	now := start + cycleDuration + period
	assert.Equal(t, 4*cycleDuration+2*period, tp.earned(t, alice, now))
}

func TestZeroWeightPeriod(t *testing.T) {
	tp := newTestPool(t)

	// nobody staked during period 0
	require.NoError(t, tp.Stake(alice, u(65), 1, start+period))
	undistributed, err := tp.Undistributed()
	require.NoError(t, err)
	assert.Equal(t, u(4*period), undistributed)

	rpu, err := tp.RewardPerUnitStored()
	require.NoError(t, err)
	assert.True(t, rpu.IsZero())

	// 4 * period / 65 truncates
	assert.Equal(t, uint64(4838399), tp.earned(t, alice, start+2*period))
	assert.Equal(t, uint64(0), tp.earned(t, bob, start+2*period))
}

func TestZeroWeightParticipantEarnsNothing(t *testing.T) {
	tp := newTestPool(t)
	require.NoError(t, tp.Stake(alice, u(10), 1, start))
	assert.Equal(t, uint64(0), tp.earned(t, bob, start+10*period))
}

func TestUnstakeSettlesWithPreviousWeight(t *testing.T) {
	tp := newTestPool(t)
	require.NoError(t, tp.Stake(alice, u(100), 1, start))
	require.NoError(t, tp.Stake(bob, u(100), 1, start))

	require.NoError(t, tp.Unstake(alice, u(100), 1, start+period))
	rewards, err := tp.Rewards(alice)
	require.NoError(t, err)
	assert.Equal(t, u(2*period), rewards)

	// alice no longer accrues, bob takes everything
	assert.Equal(t, uint64(2*period), tp.earned(t, alice, start+2*period))
	assert.Equal(t, uint64(2*period+4*period), tp.earned(t, bob, start+2*period))

	w, err := tp.GlobalWeightAt(1)
	require.NoError(t, err)
	assert.Equal(t, u(100), w)
	w, err = tp.GlobalWeightAt(0)
	require.NoError(t, err)
	assert.Equal(t, u(200), w)
}

func TestFailedCallChangesNothing(t *testing.T) {
	tp := newTestPool(t)
	require.NoError(t, tp.Stake(alice, u(100), 1, start))
	before, err := tp.Global()
	require.NoError(t, err)

	err = tp.Unstake(alice, u(101), 1, start+period)
	assert.True(t, reverts.IsRevertErr(err))

	err = tp.Stake(alice, u(1), 9, start+period)
	assert.True(t, reverts.IsRevertErr(err))

	err = tp.Stake(alice, u(0), 1, start+period)
	assert.True(t, reverts.IsRevertErr(err))

	after, err := tp.Global()
	require.NoError(t, err)
	assert.Equal(t, before, after)

	wb, err := tp.WeightedBalance(alice)
	require.NoError(t, err)
	assert.Equal(t, u(100), wb)

	// going back in time
	require.NoError(t, tp.Stake(alice, u(1), 1, start+period))
	err = tp.Stake(alice, u(1), 1, start+period-1)
	assert.True(t, reverts.IsRevertErr(err))
}

func TestStakeBeforeStart(t *testing.T) {
	tp := newTestPool(t)
	require.NoError(t, tp.Stake(alice, u(10), 1, start-100))
	require.NoError(t, tp.Stake(bob, u(10), 1, start-50))

	rpu, err := tp.RewardPerUnitStored()
	require.NoError(t, err)
	assert.True(t, rpu.IsZero())
	assert.Equal(t, uint64(0), tp.earned(t, alice, start-1))
	assert.Equal(t, uint64(0), tp.earned(t, bob, start))

	_, err = tp.Claim(alice, start-1)
	assert.True(t, reverts.IsRevertErr(err))

	// both accrue from the start
	assert.Equal(t, uint64(2*period), tp.earned(t, alice, start+period))
	assert.Equal(t, uint64(2*period), tp.earned(t, bob, start+period))

	undistributed, err := tp.Undistributed()
	require.NoError(t, err)
	assert.True(t, undistributed.IsZero())
}

func TestRewardPerUnitIgnoresSameInstantOrder(t *testing.T) {
	type op func(tp *testPool) error
	var (
		stakeAlice = func(tp *testPool) error { return tp.Stake(alice, u(3), 1, start+10) }
		stakeBob   = func(tp *testPool) error { return tp.Stake(bob, u(1), 2, start+10) }
		reward1000 = func(tp *testPool) error { return tp.AddReward(u(1000), start+20) }
		reward600  = func(tp *testPool) error { return tp.AddReward(u(600), start+20) }
		unstakeBob = func(tp *testPool) error { return tp.Unstake(bob, u(1), 2, start+period) }
	)
	orders := [][]op{
		{stakeAlice, stakeBob, reward1000, reward600, unstakeBob},
		{stakeBob, stakeAlice, reward600, reward1000, unstakeBob},
	}

	for _, opts := range [][]option{nil, {funded}} {
		var (
			rpus   []string
			alices []uint64
			bobs   []uint64
		)
		for _, order := range orders {
			tp := newTestPool(t, opts...)
			for _, fn := range order {
				require.NoError(t, fn(tp))
			}
			rpu, err := tp.RewardPerUnit(start + 2*period)
			require.NoError(t, err)
			rpus = append(rpus, rpu.Dec())
			alices = append(alices, tp.earned(t, alice, start+2*period))
			bobs = append(bobs, tp.earned(t, bob, start+2*period))
		}
		assert.Equal(t, rpus[0], rpus[1])
		assert.Equal(t, alices[0], alices[1])
		assert.Equal(t, bobs[0], bobs[1])
		if len(opts) > 0 {
			// 1600 over a weight of 3 + 3
			assert.Equal(t, "266666666666666666666", rpus[0])
			assert.Equal(t, uint64(799), alices[0])
			assert.Equal(t, uint64(799), bobs[0])
		}
	}
}

func TestClaim(t *testing.T) {
	tp := newTestPool(t)
	require.NoError(t, tp.Stake(alice, u(100), 1, start))

	claimed, err := tp.Claim(alice, start+period)
	require.NoError(t, err)
	assert.Equal(t, u(4*period), claimed)
	assert.Equal(t, u(4*period), tp.token.BalanceOf(alice))

	rewards, err := tp.Rewards(alice)
	require.NoError(t, err)
	assert.True(t, rewards.IsZero())

	_, err = tp.Claim(alice, start+period)
	assert.True(t, reverts.IsRevertErr(err))

	distributed, err := tp.DistributedRewards()
	require.NoError(t, err)
	assert.Equal(t, u(4*period), distributed)

	remaining, err := tp.RemainingRewards()
	require.NoError(t, err)
	assert.Equal(t, u(8*cycleDuration-4*period), remaining)

	released, err := tp.ReleasedRewards(start + period)
	require.NoError(t, err)
	assert.Equal(t, u(4*period), released)

	unclaimed, err := tp.UnclaimedRewards(start + period)
	require.NoError(t, err)
	assert.True(t, unclaimed.IsZero())

	_, err = tp.Claim(bob, start+period)
	assert.True(t, reverts.IsRevertErr(err))
}

func TestClaimRevertsWhenEscrowCannotPay(t *testing.T) {
	tp := newTestPool(t)
	require.NoError(t, tp.Stake(alice, u(100), 1, start))

	// drain the token reserve behind the escrow's back
	require.NoError(t, tp.token.Transfer(bob, tp.token.Reserve()))

	_, err := tp.Claim(alice, start+period)
	assert.Error(t, err)

	rewards, err := tp.Rewards(alice)
	require.NoError(t, err)
	assert.True(t, rewards.IsZero(), "checkpoint write reverted")

	distributed, err := tp.DistributedRewards()
	require.NoError(t, err)
	assert.True(t, distributed.IsZero())

	assert.Equal(t, uint64(4*period), tp.earned(t, alice, start+period))
	for _, ev := range tp.sink.events {
		assert.NotEqual(t, EventClaim, ev.Kind)
	}

	// paid once the reserve is topped up
	require.NoError(t, tp.token.Deposit(u(4*period)))
	claimed, err := tp.Claim(alice, start+period)
	require.NoError(t, err)
	assert.Equal(t, u(4*period), claimed)
	assert.Equal(t, u(4*period), tp.token.BalanceOf(alice))
}

// flakyStore fails batch writes while failing is set.
type flakyStore struct {
	kv.Store
	failing bool
}

func (s *flakyStore) NewBatch() kv.Batch {
	return &flakyBatch{Batch: s.Store.NewBatch(), store: s}
}

type flakyBatch struct {
	kv.Batch
	store *flakyStore
}

func (b *flakyBatch) Write() error {
	if b.store.failing {
		return errors.New("disk full")
	}
	return b.Batch.Write()
}

func TestClaimNotPaidWhenCommitFails(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()
	store := &flakyStore{Store: db}

	sched, err := schedule.New(start, cycleDuration, u(cycleDuration*4))
	require.NoError(t, err)
	token := escrow.NewMemoryToken(u(cycleDuration * 8))
	p, err := New(store, Config{Name: "flaky", Schedule: sched, Token: token, CacheSize: 1})
	require.NoError(t, err)
	require.NoError(t, p.Fund(u(cycleDuration*8), start))
	require.NoError(t, p.Stake(alice, u(10), 1, start))

	store.failing = true
	_, err = p.Claim(alice, start+period)
	assert.ErrorContains(t, err, "disk full")
	assert.True(t, token.BalanceOf(alice).IsZero())

	store.failing = false
	claimed, err := p.Claim(alice, start+period)
	require.NoError(t, err)
	assert.Equal(t, claimed, token.BalanceOf(alice), "paid exactly what was claimed")

	distributed, err := p.DistributedRewards()
	require.NoError(t, err)
	assert.Equal(t, claimed, distributed)

	_, err = p.Claim(alice, start+period)
	assert.True(t, reverts.IsRevertErr(err))
	assert.Equal(t, claimed, token.BalanceOf(alice))
}

func TestFundedPool(t *testing.T) {
	tp := newTestPool(t, funded)
	assert.True(t, tp.Funded())

	// no weight yet: recorded but not distributed
	require.NoError(t, tp.AddReward(u(500), start))
	rpu, err := tp.RewardPerUnitStored()
	require.NoError(t, err)
	assert.True(t, rpu.IsZero())

	require.NoError(t, tp.Stake(alice, u(3), 1, start+10))
	require.NoError(t, tp.Stake(bob, u(1), 1, start+10))

	// time alone emits nothing
	assert.Equal(t, uint64(0), tp.earned(t, alice, start+period))

	require.NoError(t, tp.AddReward(u(1000), start+20))
	assert.Equal(t, uint64(750), tp.earned(t, alice, start+30))
	assert.Equal(t, uint64(250), tp.earned(t, bob, start+30))

	available, err := tp.TotalAvailableRewards()
	require.NoError(t, err)
	assert.Equal(t, u(1500), available)

	err = tp.AddReward(u(0), start+40)
	assert.True(t, reverts.IsRevertErr(err))
}

func TestQueries(t *testing.T) {
	tp := newTestPool(t)
	require.NoError(t, tp.Stake(alice, u(2), 1, start))
	require.NoError(t, tp.Stake(alice, u(5), 2, start))

	total, err := tp.TotalSupply()
	require.NoError(t, err)
	assert.Equal(t, u(7), total)

	weighted, err := tp.WeightedTotalSupply()
	require.NoError(t, err)
	assert.Equal(t, u(17), weighted)

	bal, err := tp.BalanceOf(alice, 2)
	require.NoError(t, err)
	assert.Equal(t, u(5), bal)

	i, err := tp.PeriodIndex(start + 3*period + 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), i)

	s, err := tp.StartOfPeriod(3)
	require.NoError(t, err)
	assert.Equal(t, start+3*period, s)

	_, err = tp.PeriodIndex(start - 1)
	assert.True(t, reverts.IsRevertErr(err))

	cycle, err := tp.Schedule().CurrentCycle(start + 27*week)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), cycle)

	lifetime, err := tp.LifetimeRewards()
	require.NoError(t, err)
	assert.Equal(t, u(8*cycleDuration), lifetime)
}

func TestEvents(t *testing.T) {
	tp := newTestPool(t)
	require.NoError(t, tp.Stake(alice, u(100), 1, start))
	_ = tp.Unstake(alice, u(1000), 1, start+1)
	_, err := tp.Claim(alice, start+period)
	require.NoError(t, err)

	require.Len(t, tp.sink.events, 3)
	kinds := []EventKind{tp.sink.events[0].Kind, tp.sink.events[1].Kind, tp.sink.events[2].Kind}
	assert.Equal(t, []EventKind{EventFund, EventStake, EventClaim}, kinds)

	claim := tp.sink.events[2]
	assert.Equal(t, "test", claim.Pool)
	assert.Equal(t, alice, claim.Participant)
	assert.Equal(t, u(4*period), claim.Amount)
	assert.Equal(t, "48384000000000000000000", claim.RewardPerUnit.Dec())
	assert.Equal(t, start+period, claim.Time)
}

func TestPersistenceAndIsolation(t *testing.T) {
	tp := newTestPool(t)
	require.NoError(t, tp.Stake(alice, u(100), 1, start))
	require.NoError(t, tp.Stake(bob, u(100), 1, start+period))

	reopened, err := New(tp.db, tp.cfg)
	require.NoError(t, err)
	e, err := reopened.Earned(alice, start+2*period)
	require.NoError(t, err)
	assert.Equal(t, u(4*period+2*period), e)

	cfg := tp.cfg
	cfg.Name = "other"
	other, err := New(tp.db, cfg)
	require.NoError(t, err)
	wb, err := other.WeightedBalance(alice)
	require.NoError(t, err)
	assert.True(t, wb.IsZero())
}
