// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reverts classifies the failures a caller can act on.
//
// An ErrRevert is a precondition violation: the call was rejected as a whole and
// can be retried with corrected input. ErrOverflow marks arithmetic that left the
// 256-bit range and is fatal for the call that triggered it.
package reverts

import (
	"errors"
	"fmt"
)

// ErrOverflow is returned (wrapped) when an amount computation exceeds 256 bits.
var ErrOverflow = errors.New("arithmetic overflow")

type ErrRevert struct {
	message string
}

func New(message string) *ErrRevert {
	return &ErrRevert{
		message: message,
	}
}

func Newf(format string, args ...any) *ErrRevert {
	return New(fmt.Sprintf(format, args...))
}

func (e *ErrRevert) Error() string {
	return e.message
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

// IsOverflow reports whether err is, or wraps, ErrOverflow.
func IsOverflow(err error) bool {
	return errors.Is(err, ErrOverflow)
}
