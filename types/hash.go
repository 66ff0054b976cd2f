// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package types

import (
	"hash"
	"sync"

	"github.com/ethereum/go-ethereum/crypto/blake2b"
)

var hashers = sync.Pool{
	New: func() any {
		h, _ := blake2b.New256(nil)
		return h
	},
}

// Blake2b computes the blake2b-256 digest of the concatenated data.
func Blake2b(data ...[]byte) (out Bytes32) {
	if len(data) == 1 {
		return blake2b.Sum256(data[0])
	}
	h := hashers.Get().(hash.Hash)
	defer hashers.Put(h)

	h.Reset()
	for _, b := range data {
		h.Write(b)
	}
	h.Sum(out[:0])
	return
}

// SlotOf returns the slot holding key in the slot space rooted at base.
// Distinct bases never share a slot, so nested mappings stay disjoint.
func SlotOf(key []byte, base Bytes32) Bytes32 {
	return Blake2b(key, base[:])
}
