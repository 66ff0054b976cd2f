// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"time"

	"github.com/beevik/ntp"
	"github.com/ethereum/go-ethereum/common"

	"github.com/vechain/halvening/health"
	"github.com/vechain/halvening/log"
)

// queries without an explicit time are answered at the local clock
const clockOffsetTolerance = 5 * time.Second

func checkClockOffset(h *health.Health) {
	resp, err := ntp.Query("pool.ntp.org")
	if err != nil {
		log.Debug("failed to access NTP", "err", err)
		return
	}
	h.ClockChecked(resp.ClockOffset)

	offset := resp.ClockOffset
	if offset < 0 {
		offset = -offset
	}
	if offset > clockOffsetTolerance {
		log.Warn("clock offset detected", "offset", common.PrettyDuration(resp.ClockOffset))
	}
}

func clockSyncLoop(ctx context.Context, h *health.Health) error {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	checkClockOffset(h)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			checkClockOffset(h)
		}
	}
}
