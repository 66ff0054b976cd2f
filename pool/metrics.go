// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math"

	"github.com/holiman/uint256"

	"github.com/vechain/halvening/metrics"
)

var (
	metricOperations          = metrics.LazyLoadCounterVec("pool_operations_count", []string{"pool", "op", "result"})
	metricWeightedTotalSupply = metrics.LazyLoadGaugeVec("pool_weighted_total_supply", []string{"pool"})
)

// gaugeValue saturates v into the int64 range of a gauge.
func gaugeValue(v *uint256.Int) int64 {
	if !v.IsUint64() || v.Uint64() > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(v.Uint64())
}

func recordOperation(pool string, op EventKind, err error) {
	result := "ok"
	if err != nil {
		result = "failed"
	}
	metricOperations().AddWithLabel(1, map[string]string{"pool": pool, "op": string(op), "result": result})
}
