// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok() error { return nil }

func TestHealthUncheckedClock(t *testing.T) {
	h := New(time.Second)
	status := h.Status(ok)
	assert.True(t, status.Healthy)
	assert.True(t, status.Storage)
	assert.Nil(t, status.Clock)
}

func TestHealthClockOffset(t *testing.T) {
	h := New(time.Second)

	h.ClockChecked(-500 * time.Millisecond)
	status := h.Status(ok)
	assert.True(t, status.Healthy)
	require.NotNil(t, status.Clock)
	assert.Equal(t, "500ms", status.Clock.Offset)
	assert.WithinDuration(t, time.Now(), *status.Clock.CheckedAt, time.Minute)

	h.ClockChecked(2 * time.Second)
	status = h.Status(ok)
	assert.False(t, status.Healthy)
	assert.True(t, status.Storage)
}

func TestHealthStorageProbe(t *testing.T) {
	h := New(time.Second)
	status := h.Status(func() error { return errors.New("closed") })
	assert.False(t, status.Healthy)
	assert.False(t, status.Storage)
	assert.Equal(t, "closed", status.Error)
}
