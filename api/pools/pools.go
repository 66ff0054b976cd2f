// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pools

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/halvening/api/restutil"
	"github.com/vechain/halvening/pool"
	"github.com/vechain/halvening/types"
)

// Pools serves the read-only queries of a pool.
type Pools struct {
	pool  *pool.Pool
	clock func() uint64
}

func New(p *pool.Pool, clock func() uint64) *Pools {
	return &Pools{p, clock}
}

// amounts collects the results of several queries, keeping the first error.
type amounts struct {
	err error
}

func (a *amounts) get(v *uint256.Int, err error) string {
	if a.err != nil {
		return ""
	}
	if err != nil {
		a.err = err
		return ""
	}
	return v.Dec()
}

func (p *Pools) handleGetPool(w http.ResponseWriter, req *http.Request) error {
	now, err := restutil.ParseNow(req, p.clock)
	if err != nil {
		return err
	}
	period, err := p.pool.PeriodIndex(now)
	if err != nil {
		return err
	}
	g, err := p.pool.Global()
	if err != nil {
		return err
	}
	var a amounts
	summary := &PoolSummary{
		Name:                  p.pool.Name(),
		Funded:                p.pool.Funded(),
		Now:                   now,
		Period:                period,
		PeriodDuration:        p.pool.PeriodDuration(),
		RewardPerUnit:         a.get(p.pool.RewardPerUnit(now)),
		RewardPerUnitStored:   g.RewardPerUnitStored.Dec(),
		LastUpdateTime:        g.LastUpdateTime,
		TotalSupply:           a.get(p.pool.TotalSupply()),
		WeightedTotalSupply:   a.get(p.pool.WeightedTotalSupply()),
		TotalAvailableRewards: g.TotalAvailable.Dec(),
		Undistributed:         g.Undistributed.Dec(),
	}
	if a.err != nil {
		return a.err
	}
	for _, c := range p.pool.Classes().List() {
		summary.Classes = append(summary.Classes, &Class{ID: c.ID, Multiplier: c.Multiplier})
	}
	return restutil.WriteJSON(w, summary)
}

func (p *Pools) handleGetPeriod(w http.ResponseWriter, req *http.Request) error {
	i, err := restutil.ParseUint64("period", mux.Vars(req)["i"])
	if err != nil {
		return err
	}
	start, err := p.pool.StartOfPeriod(i)
	if err != nil {
		return err
	}
	weight, err := p.pool.GlobalWeightAt(i)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &Period{
		Index:  i,
		Start:  start,
		End:    start + p.pool.PeriodDuration(),
		Weight: weight.Dec(),
	})
}

func (p *Pools) handleGetParticipant(w http.ResponseWriter, req *http.Request) error {
	addr, err := types.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "address"))
	}
	now, err := restutil.ParseNow(req, p.clock)
	if err != nil {
		return err
	}
	var a amounts
	participant := &Participant{
		Address:           addr,
		WeightedBalance:   a.get(p.pool.WeightedBalance(addr)),
		Earned:            a.get(p.pool.Earned(addr, now)),
		Rewards:           a.get(p.pool.Rewards(addr)),
		RewardPerUnitPaid: a.get(p.pool.RewardPerUnitPaid(addr)),
		Balances:          make(map[uint64]string),
	}
	for _, c := range p.pool.Classes().List() {
		if b := a.get(p.pool.BalanceOf(addr, c.ID)); b != "0" {
			participant.Balances[c.ID] = b
		}
	}
	if a.err != nil {
		return a.err
	}
	return restutil.WriteJSON(w, participant)
}

func (p *Pools) handleGetEscrow(w http.ResponseWriter, req *http.Request) error {
	now, err := restutil.ParseNow(req, p.clock)
	if err != nil {
		return err
	}
	var a amounts
	escrow := &Escrow{
		Lifetime:    a.get(p.pool.LifetimeRewards()),
		Distributed: a.get(p.pool.DistributedRewards()),
		Remaining:   a.get(p.pool.RemainingRewards()),
		Released:    a.get(p.pool.ReleasedRewards(now)),
		Unclaimed:   a.get(p.pool.UnclaimedRewards(now)),
	}
	if a.err != nil {
		return a.err
	}
	return restutil.WriteJSON(w, escrow)
}

// Mount registers the pool, participant and escrow routes on root.
func (p *Pools) Mount(root *mux.Router) {
	root.Path("/pool").
		Methods(http.MethodGet).
		Name("GET /pool").
		HandlerFunc(restutil.WrapHandlerFunc(p.handleGetPool))
	root.Path("/pool/periods/{i}").
		Methods(http.MethodGet).
		Name("GET /pool/periods/{i}").
		HandlerFunc(restutil.WrapHandlerFunc(p.handleGetPeriod))
	root.Path("/participants/{address}").
		Methods(http.MethodGet).
		Name("GET /participants/{address}").
		HandlerFunc(restutil.WrapHandlerFunc(p.handleGetParticipant))
	root.Path("/escrow").
		Methods(http.MethodGet).
		Name("GET /escrow").
		HandlerFunc(restutil.WrapHandlerFunc(p.handleGetEscrow))
}
