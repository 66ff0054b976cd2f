// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package schedule

import (
	"math"
	"math/bits"

	lru "github.com/hashicorp/golang-lru"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/halvening/reverts"
	"github.com/vechain/halvening/types"
)

// rateCacheSize bounds the memoised rates. A rate becomes zero after at most 257 cycles.
const rateCacheSize = 300

// Schedule is the read capability of an emission schedule.
type Schedule interface {
	StartTime() uint64
	CycleDuration() uint64
	CurrentCycle(now uint64) (uint64, error)
	TokensForCycle(n uint64) (*uint256.Int, error)
	StartOfCycle(n uint64) (uint64, error)
	RewardRate(n uint64) (*uint256.Int, error)
	CurrentRewardRate(now uint64) (*uint256.Int, error)
	StartOfCurrentCycle(now uint64) (uint64, error)
	Emission(from, to uint64) (*uint256.Int, error)
}

var _ Schedule = (*Halving)(nil)

// Halving is an emission schedule whose per-second rate halves every cycle.
// Cycle 1 begins at the start time.
type Halving struct {
	start         uint64
	cycleDuration uint64
	initial       *uint256.Int
	minRate       *uint256.Int
	rates         *lru.Cache
}

// Option customises a Halving schedule.
type Option func(*Halving)

// WithMinRate clamps the reward rate to a floor, which makes emission unbounded.
func WithMinRate(rate *uint256.Int) Option {
	return func(h *Halving) {
		if rate != nil && !rate.IsZero() {
			h.minRate = rate.Clone()
		}
	}
}

// New creates a halving schedule. cycleDuration must be positive.
func New(start, cycleDuration uint64, initialCycleEmission *uint256.Int, opts ...Option) (*Halving, error) {
	if cycleDuration == 0 {
		return nil, errors.New("zero cycle duration")
	}
	if initialCycleEmission == nil {
		return nil, errors.New("nil initial cycle emission")
	}
	rates, err := lru.New(rateCacheSize)
	if err != nil {
		return nil, err
	}
	h := &Halving{
		start:         start,
		cycleDuration: cycleDuration,
		initial:       initialCycleEmission.Clone(),
		rates:         rates,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

func (h *Halving) StartTime() uint64     { return h.start }
func (h *Halving) CycleDuration() uint64 { return h.cycleDuration }

// InitialCycleEmission returns the emission of the first cycle as configured.
func (h *Halving) InitialCycleEmission() *uint256.Int { return h.initial.Clone() }

// MinRate returns the rate floor, nil when the schedule halves down to zero.
func (h *Halving) MinRate() *uint256.Int {
	if h.minRate == nil {
		return nil
	}
	return h.minRate.Clone()
}

// CurrentCycle returns the 1-based index of the cycle containing now.
func (h *Halving) CurrentCycle(now uint64) (uint64, error) {
	if now < h.start {
		return 0, reverts.Newf("timestamp %d is before schedule start %d", now, h.start)
	}
	return (now-h.start)/h.cycleDuration + 1, nil
}

// RewardRate returns the per-second emission during cycle n.
func (h *Halving) RewardRate(n uint64) (*uint256.Int, error) {
	if n < 1 {
		return nil, reverts.New("cycle index must be at least 1")
	}
	if v, ok := h.rates.Get(n); ok {
		return v.(*uint256.Int).Clone(), nil
	}

	rate := new(uint256.Int).Div(h.initial, uint256.NewInt(h.cycleDuration))
	if shift := n - 1; shift >= 256 {
		rate.Clear()
	} else {
		rate.Rsh(rate, uint(shift))
	}
	if h.minRate != nil && rate.Lt(h.minRate) {
		rate.Set(h.minRate)
	}

	h.rates.Add(n, rate)
	return rate.Clone(), nil
}

// TokensForCycle returns the total emission of cycle n.
func (h *Halving) TokensForCycle(n uint64) (*uint256.Int, error) {
	rate, err := h.RewardRate(n)
	if err != nil {
		return nil, err
	}
	return types.Mul(rate, uint256.NewInt(h.cycleDuration))
}

// StartOfCycle returns the timestamp at which cycle n begins.
func (h *Halving) StartOfCycle(n uint64) (uint64, error) {
	if n < 1 {
		return 0, reverts.New("cycle index must be at least 1")
	}
	hi, offset := bits.Mul64(n-1, h.cycleDuration)
	if hi != 0 {
		return 0, errors.Wrapf(reverts.ErrOverflow, "start of cycle %d", n)
	}
	start, carry := bits.Add64(h.start, offset, 0)
	if carry != 0 {
		return 0, errors.Wrapf(reverts.ErrOverflow, "start of cycle %d", n)
	}
	return start, nil
}

func (h *Halving) CurrentRewardRate(now uint64) (*uint256.Int, error) {
	n, err := h.CurrentCycle(now)
	if err != nil {
		return nil, err
	}
	return h.RewardRate(n)
}

func (h *Halving) StartOfCurrentCycle(now uint64) (uint64, error) {
	n, err := h.CurrentCycle(now)
	if err != nil {
		return 0, err
	}
	return h.StartOfCycle(n)
}

// endOfCycle is the start of the next cycle, saturating at the end of time.
func (h *Halving) endOfCycle(n uint64) uint64 {
	end, err := h.StartOfCycle(n + 1)
	if err != nil {
		return math.MaxUint64
	}
	return end
}

// stable reports whether the rate of cycle n holds for every later cycle.
func (h *Halving) stable(rate *uint256.Int) bool {
	if rate.IsZero() {
		return true
	}
	return h.minRate != nil && rate.Eq(h.minRate)
}

// Emission returns the amount emitted over [from, to). Time before the start emits nothing.
func (h *Halving) Emission(from, to uint64) (*uint256.Int, error) {
	if to < from {
		return nil, reverts.Newf("emission window [%d, %d) is inverted", from, to)
	}
	total := new(uint256.Int)
	if to <= h.start {
		return total, nil
	}
	if from < h.start {
		from = h.start
	}

	n, err := h.CurrentCycle(from)
	if err != nil {
		return nil, err
	}
	for from < to {
		rate, err := h.RewardRate(n)
		if err != nil {
			return nil, err
		}
		end := to
		if !h.stable(rate) {
			end = min(h.endOfCycle(n), to)
		}
		part, err := types.Mul(rate, uint256.NewInt(end-from))
		if err != nil {
			return nil, err
		}
		if total, err = types.Add(total, part); err != nil {
			return nil, err
		}
		from = end
		n++
	}
	return total, nil
}

// LifetimeEmission returns the total amount the schedule will ever emit.
// It fails when a rate floor makes emission unbounded.
func (h *Halving) LifetimeEmission() (*uint256.Int, error) {
	if h.minRate != nil {
		return nil, reverts.New("emission is unbounded with a rate floor")
	}
	total := new(uint256.Int)
	for n := uint64(1); ; n++ {
		rate, err := h.RewardRate(n)
		if err != nil {
			return nil, err
		}
		if rate.IsZero() {
			return total, nil
		}
		tokens, err := types.Mul(rate, uint256.NewInt(h.cycleDuration))
		if err != nil {
			return nil, err
		}
		if total, err = types.Add(total, tokens); err != nil {
			return nil, err
		}
	}
}
