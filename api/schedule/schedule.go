// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package schedule

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vechain/halvening/api/restutil"
	"github.com/vechain/halvening/schedule"
)

// Cycle describes one emission cycle. Amounts are decimal strings.
type Cycle struct {
	Cycle  uint64 `json:"cycle"`
	Start  uint64 `json:"start"`
	Rate   string `json:"rate"`
	Tokens string `json:"tokens"`
}

type Schedule struct {
	schedule schedule.Schedule
	clock    func() uint64
}

func New(s schedule.Schedule, clock func() uint64) *Schedule {
	return &Schedule{s, clock}
}

func (s *Schedule) cycle(n uint64) (*Cycle, error) {
	rate, err := s.schedule.RewardRate(n)
	if err != nil {
		return nil, err
	}
	tokens, err := s.schedule.TokensForCycle(n)
	if err != nil {
		return nil, err
	}
	start, err := s.schedule.StartOfCycle(n)
	if err != nil {
		return nil, err
	}
	return &Cycle{
		Cycle:  n,
		Start:  start,
		Rate:   rate.Dec(),
		Tokens: tokens.Dec(),
	}, nil
}

func (s *Schedule) handleGetCycle(w http.ResponseWriter, req *http.Request) error {
	n, err := restutil.ParseUint64("cycle", mux.Vars(req)["n"])
	if err != nil {
		return err
	}
	c, err := s.cycle(n)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, c)
}

func (s *Schedule) handleGetCurrent(w http.ResponseWriter, req *http.Request) error {
	now, err := restutil.ParseNow(req, s.clock)
	if err != nil {
		return err
	}
	n, err := s.schedule.CurrentCycle(now)
	if err != nil {
		return err
	}
	c, err := s.cycle(n)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, c)
}

func (s *Schedule) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/cycles/{n}").
		Methods(http.MethodGet).
		Name("GET /schedule/cycles/{n}").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetCycle))
	sub.Path("/current").
		Methods(http.MethodGet).
		Name("GET /schedule/current").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetCurrent))
}
