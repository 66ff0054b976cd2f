// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"github.com/vechain/halvening/pool"
	"github.com/vechain/halvening/types"
)

type OrderType string

const (
	ASC  OrderType = "asc"
	DESC OrderType = "desc"
)

// Range bounds event times, both ends inclusive. A To below From leaves the range open ended.
type Range struct {
	From uint64 `json:"from"`
	To   uint64 `json:"to"`
}

type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

// EventFilter selects events. Zero fields match everything.
type EventFilter struct {
	Pool        string           `json:"pool"`
	Participant *types.Address   `json:"participant"`
	Kinds       []pool.EventKind `json:"kinds"`
	Range       *Range           `json:"range"`
	Order       OrderType        `json:"order"` // default asc
	Options     *Options         `json:"options"`
}

// Event is a stored pool event with its insertion sequence.
type Event struct {
	Seq uint64
	*pool.Event
}
