// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package escrow

import (
	"sync"

	"github.com/holiman/uint256"

	"github.com/vechain/halvening/reverts"
	"github.com/vechain/halvening/types"
)

// Token moves reward tokens out of the escrow's custody.
type Token interface {
	Transfer(to types.Address, amount *uint256.Int) error
}

// MemoryToken is an in-memory ledger with a single reserve paying out.
type MemoryToken struct {
	mu       sync.Mutex
	reserve  *uint256.Int
	balances map[types.Address]*uint256.Int
}

func NewMemoryToken(reserve *uint256.Int) *MemoryToken {
	return &MemoryToken{
		reserve:  reserve.Clone(),
		balances: make(map[types.Address]*uint256.Int),
	}
}

// Deposit adds amount to the reserve.
func (t *MemoryToken) Deposit(amount *uint256.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	sum, err := types.Add(t.reserve, amount)
	if err != nil {
		return err
	}
	t.reserve = sum
	return nil
}

func (t *MemoryToken) Transfer(to types.Address, amount *uint256.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if amount.Gt(t.reserve) {
		return reverts.Newf("insufficient reserve: have %s, want %s", t.reserve.Dec(), amount.Dec())
	}
	balance := t.balances[to]
	if balance == nil {
		balance = new(uint256.Int)
	}
	sum, err := types.Add(balance, amount)
	if err != nil {
		return err
	}
	t.reserve = new(uint256.Int).Sub(t.reserve, amount)
	t.balances[to] = sum
	return nil
}

// Reserve returns what is left to pay out.
func (t *MemoryToken) Reserve() *uint256.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.reserve.Clone()
}

// BalanceOf returns the amount received by addr.
func (t *MemoryToken) BalanceOf(addr types.Address) *uint256.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if b := t.balances[addr]; b != nil {
		return b.Clone()
	}
	return new(uint256.Int)
}
