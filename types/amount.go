// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package types

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/halvening/reverts"
)

// Precision is the fixed-point scale applied to every reward-per-unit value.
const Precision uint64 = 1e18

// PrecisionInt returns Precision as a fresh uint256.
func PrecisionInt() *uint256.Int {
	return uint256.NewInt(Precision)
}

// Add returns x+y, or reverts.ErrOverflow if the sum exceeds 256 bits.
func Add(x, y *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).AddOverflow(x, y)
	if overflow {
		return nil, errors.Wrapf(reverts.ErrOverflow, "%s + %s", x.Dec(), y.Dec())
	}
	return z, nil
}

// Sub returns x-y, or reverts.ErrOverflow if y > x.
func Sub(x, y *uint256.Int) (*uint256.Int, error) {
	z, underflow := new(uint256.Int).SubOverflow(x, y)
	if underflow {
		return nil, errors.Wrapf(reverts.ErrOverflow, "%s - %s", x.Dec(), y.Dec())
	}
	return z, nil
}

// Mul returns x*y, or reverts.ErrOverflow if the product exceeds 256 bits.
func Mul(x, y *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).MulOverflow(x, y)
	if overflow {
		return nil, errors.Wrapf(reverts.ErrOverflow, "%s * %s", x.Dec(), y.Dec())
	}
	return z, nil
}

// MulDiv returns floor(x*y/d). The intermediate product must fit in 256 bits.
func MulDiv(x, y, d *uint256.Int) (*uint256.Int, error) {
	if d.IsZero() {
		return nil, errors.New("division by zero")
	}
	z, err := Mul(x, y)
	if err != nil {
		return nil, err
	}
	return z.Div(z, d), nil
}

// Sum adds all values, failing on the first overflow.
func Sum(values ...*uint256.Int) (*uint256.Int, error) {
	total := new(uint256.Int)
	for _, v := range values {
		var err error
		if total, err = Add(total, v); err != nil {
			return nil, err
		}
	}
	return total, nil
}

// Min returns the smaller of x and y.
func Min(x, y *uint256.Int) *uint256.Int {
	if x.Lt(y) {
		return x
	}
	return y
}

// SaturatingSub returns x-y, or zero when y > x.
func SaturatingSub(x, y *uint256.Int) *uint256.Int {
	if y.Gt(x) {
		return new(uint256.Int)
	}
	return new(uint256.Int).Sub(x, y)
}
