// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pools

import "github.com/vechain/halvening/types"

// Amounts are rendered as decimal strings.

type Class struct {
	ID         uint64 `json:"id"`
	Multiplier uint64 `json:"multiplier"`
}

type PoolSummary struct {
	Name                  string   `json:"name"`
	Funded                bool     `json:"funded"`
	Now                   uint64   `json:"now"`
	Period                uint64   `json:"period"`
	PeriodDuration        uint64   `json:"periodDuration"`
	RewardPerUnit         string   `json:"rewardPerUnit"`
	RewardPerUnitStored   string   `json:"rewardPerUnitStored"`
	LastUpdateTime        uint64   `json:"lastUpdateTime"`
	TotalSupply           string   `json:"totalSupply"`
	WeightedTotalSupply   string   `json:"weightedTotalSupply"`
	TotalAvailableRewards string   `json:"totalAvailableRewards"`
	Undistributed         string   `json:"undistributed"`
	Classes               []*Class `json:"classes"`
}

type Period struct {
	Index  uint64 `json:"index"`
	Start  uint64 `json:"start"`
	End    uint64 `json:"end"`
	Weight string `json:"weight"`
}

type Participant struct {
	Address           types.Address     `json:"address"`
	WeightedBalance   string            `json:"weightedBalance"`
	Balances          map[uint64]string `json:"balances"` // by class id, zero balances omitted
	Earned            string            `json:"earned"`
	Rewards           string            `json:"rewards"`
	RewardPerUnitPaid string            `json:"rewardPerUnitPaid"`
}

type Escrow struct {
	Lifetime    string `json:"lifetime"`
	Distributed string `json:"distributed"`
	Remaining   string `json:"remaining"`
	Released    string `json:"released"`
	Unclaimed   string `json:"unclaimed"`
}
