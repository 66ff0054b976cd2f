// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"sync"
	"time"
)

type Clock struct {
	Offset    string     `json:"offset"`
	CheckedAt *time.Time `json:"checkedAt"`
}

type Status struct {
	Healthy bool   `json:"healthy"`
	Storage bool   `json:"storage"`
	Clock   *Clock `json:"clock"`
	Error   string `json:"error,omitempty"`
}

// Health tracks the state a served pool depends on: a readable store and a
// local clock close enough to the network time.
type Health struct {
	lock           sync.RWMutex
	clockTolerance time.Duration
	clockOffset    time.Duration
	clockChecked   time.Time
}

func New(clockTolerance time.Duration) *Health {
	return &Health{clockTolerance: clockTolerance}
}

// ClockChecked records the offset measured against network time.
func (h *Health) ClockChecked(offset time.Duration) {
	h.lock.Lock()
	defer h.lock.Unlock()

	if offset < 0 {
		offset = -offset
	}
	h.clockOffset = offset
	h.clockChecked = time.Now()
}

// Status runs probe against the store and reports. An unchecked clock counts as healthy.
func (h *Health) Status(probe func() error) *Status {
	h.lock.RLock()
	defer h.lock.RUnlock()

	status := &Status{Storage: true}
	if err := probe(); err != nil {
		status.Storage = false
		status.Error = err.Error()
	}
	clockOK := true
	if !h.clockChecked.IsZero() {
		checkedAt := h.clockChecked
		status.Clock = &Clock{
			Offset:    h.clockOffset.String(),
			CheckedAt: &checkedAt,
		}
		clockOK = h.clockOffset <= h.clockTolerance
	}
	status.Healthy = status.Storage && clockOK
	return status
}
