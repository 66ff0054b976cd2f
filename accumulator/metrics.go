// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accumulator

import "github.com/vechain/halvening/metrics"

var metricSettleSegments = metrics.LazyLoadHistogram("accumulator_settle_segments", []int64{0, 1, 2, 5, 10, 26, 52, 100, 500})
