// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package periods

import (
	"math/bits"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/halvening/reverts"
	"github.com/vechain/halvening/slots"
	"github.com/vechain/halvening/state"
	"github.com/vechain/halvening/types"
)

// DefaultDuration is two weeks.
const DefaultDuration = uint64(14 * 24 * 3600)

var slotPeriodWeights = types.BytesToBytes32([]byte("period-weights"))

// Scope names whose weight history is recorded.
type Scope struct {
	key []byte
}

// Global is the scope of the weighted total supply.
var Global = Scope{key: []byte("global")}

// Participant is the scope of one participant's weighted balance.
func Participant(addr types.Address) Scope {
	return Scope{key: append([]byte("participant"), addr.Bytes()...)}
}

// Ledger records a weight per scope per period.
type Ledger struct {
	st       *state.State
	start    uint64
	duration uint64
}

func New(st *state.State, start, duration uint64) (*Ledger, error) {
	if duration == 0 {
		return nil, errors.New("zero period duration")
	}
	return &Ledger{st: st, start: start, duration: duration}, nil
}

func (l *Ledger) Start() uint64    { return l.start }
func (l *Ledger) Duration() uint64 { return l.duration }

// PeriodIndex returns the index of the period containing t.
func (l *Ledger) PeriodIndex(t uint64) (uint64, error) {
	if t < l.start {
		return 0, reverts.Newf("timestamp %d is before period start %d", t, l.start)
	}
	return (t - l.start) / l.duration, nil
}

// StartOfPeriod returns the timestamp at which period i begins.
func (l *Ledger) StartOfPeriod(i uint64) (uint64, error) {
	hi, offset := bits.Mul64(i, l.duration)
	if hi != 0 {
		return 0, errors.Wrapf(reverts.ErrOverflow, "start of period %d", i)
	}
	start, carry := bits.Add64(l.start, offset, 0)
	if carry != 0 {
		return 0, errors.Wrapf(reverts.ErrOverflow, "start of period %d", i)
	}
	return start, nil
}

func (l *Ledger) history(scope Scope) *slots.Checkpoints {
	return slots.NewCheckpoints(l.st, types.SlotOf(scope.key, slotPeriodWeights))
}

// RecordWeight sets the weight of scope for the period containing now.
// Weights recorded before the start go to period 0.
// Only the latest recorded period may be rewritten.
func (l *Ledger) RecordWeight(scope Scope, weight *uint256.Int, now uint64) error {
	var i uint64
	if now >= l.start {
		i = (now - l.start) / l.duration
	}
	h := l.history(scope)
	last, ok, err := h.Latest()
	if err != nil {
		return errors.Wrap(err, "failed to get latest period weight")
	}
	if ok && i < last.Key {
		return reverts.Newf("period %d is closed, latest is %d", i, last.Key)
	}
	return errors.Wrap(h.Push(i, weight), "failed to record period weight")
}

// WeightAt returns the weight of scope effective in period i:
// the last value recorded at or before i, zero if none.
func (l *Ledger) WeightAt(scope Scope, i uint64) (*uint256.Int, error) {
	w, err := l.history(scope).At(i)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get period weight")
	}
	return w, nil
}
