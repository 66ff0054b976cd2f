// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"github.com/holiman/uint256"

	"github.com/vechain/halvening/types"
)

// EventKind is the kind of a pool event.
type EventKind string

const (
	EventStake     EventKind = "stake"
	EventUnstake   EventKind = "unstake"
	EventAddReward EventKind = "add-reward"
	EventClaim     EventKind = "claim"
	EventFund      EventKind = "fund"
)

// Event is emitted for every successful mutating call.
type Event struct {
	Pool          string
	Kind          EventKind
	Participant   types.Address // zero for pool wide events
	Class         uint64        // stake and unstake only
	Amount        *uint256.Int
	Time          uint64
	RewardPerUnit *uint256.Int // stored value right after the call
}

// EventSink receives the events of committed calls.
type EventSink interface {
	Write(events ...*Event) error
}
