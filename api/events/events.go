// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/halvening/api/restutil"
	"github.com/vechain/halvening/logdb"
	"github.com/vechain/halvening/pool"
	"github.com/vechain/halvening/types"
)

// Event is a logged pool event. Amounts are decimal strings.
type Event struct {
	Seq           uint64         `json:"seq"`
	Pool          string         `json:"pool"`
	Kind          string         `json:"kind"`
	Participant   *types.Address `json:"participant,omitempty"`
	Class         uint64         `json:"class,omitempty"`
	Amount        string         `json:"amount"`
	Time          uint64         `json:"time"`
	RewardPerUnit string         `json:"rewardPerUnit"`
}

func convertEvent(e *logdb.Event) *Event {
	ev := &Event{
		Seq:           e.Seq,
		Pool:          e.Pool,
		Kind:          string(e.Kind),
		Class:         e.Class,
		Amount:        e.Amount.Dec(),
		Time:          e.Time,
		RewardPerUnit: e.RewardPerUnit.Dec(),
	}
	if !e.Participant.IsZero() {
		addr := e.Participant
		ev.Participant = &addr
	}
	return ev
}

type Events struct {
	db    *logdb.LogDB
	pool  string
	limit uint64
}

// New serves the events of the named pool, at most limit per request.
func New(db *logdb.LogDB, poolName string, limit uint64) *Events {
	return &Events{
		db,
		poolName,
		limit,
	}
}

func (e *Events) handleFilter(w http.ResponseWriter, req *http.Request) error {
	query := req.URL.Query()
	filter := &logdb.EventFilter{
		Pool:    e.pool,
		Options: &logdb.Options{Limit: e.limit},
	}
	if s := query.Get("participant"); s != "" {
		addr, err := types.ParseAddress(s)
		if err != nil {
			return restutil.BadRequest(errors.WithMessage(err, "participant"))
		}
		filter.Participant = &addr
	}
	for _, k := range query["kind"] {
		switch kind := pool.EventKind(k); kind {
		case pool.EventStake, pool.EventUnstake, pool.EventAddReward, pool.EventClaim, pool.EventFund:
			filter.Kinds = append(filter.Kinds, kind)
		default:
			return restutil.BadRequest(fmt.Errorf("kind: unknown %q", k))
		}
	}
	if s := query.Get("offset"); s != "" {
		offset, err := restutil.ParseUint64("offset", s)
		if err != nil {
			return err
		}
		filter.Options.Offset = offset
	}
	if s := query.Get("limit"); s != "" {
		limit, err := restutil.ParseUint64("limit", s)
		if err != nil {
			return err
		}
		if limit > e.limit {
			return restutil.HTTPError(fmt.Errorf("limit exceeds the maximum allowed value of %d", e.limit), http.StatusForbidden)
		}
		filter.Options.Limit = limit
	}
	if query.Get("order") == string(logdb.DESC) {
		filter.Order = logdb.DESC
	}

	events, err := e.db.FilterEvents(req.Context(), filter)
	if err != nil {
		return err
	}
	out := make([]*Event, 0, len(events))
	for _, ev := range events {
		out = append(out, convertEvent(ev))
	}
	return restutil.WriteJSON(w, out)
}

func (e *Events) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /events").
		HandlerFunc(restutil.WrapHandlerFunc(e.handleFilter))
}
