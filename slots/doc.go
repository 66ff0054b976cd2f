// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package slots provides typed accessors over state slots, in the manner of
// solidity storage variables: a value lives at a fixed position, a mapping
// entry at blake2b(key, position).
package slots
