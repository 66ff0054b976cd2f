// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package params

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Amount is a uint256 accepted as a decimal or 0x-prefixed hex string, or as a plain integer.
type Amount uint256.Int

func NewAmount(v *uint256.Int) *Amount {
	return (*Amount)(v.Clone())
}

// Int returns a copy of the value.
func (a *Amount) Int() *uint256.Int {
	if a == nil {
		return new(uint256.Int)
	}
	return (*uint256.Int)(a).Clone()
}

func (a *Amount) parse(s string) error {
	s = strings.ReplaceAll(strings.TrimSpace(s), "_", "")
	var (
		v   *uint256.Int
		err error
	)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err = uint256.FromHex(s)
	} else {
		v, err = uint256.FromDecimal(s)
	}
	if err != nil {
		return errors.Wrapf(err, "invalid amount %q", s)
	}
	*a = Amount(*v)
	return nil
}

func (a *Amount) UnmarshalText(text []byte) error {
	return a.parse(string(text))
}

func (a *Amount) MarshalText() ([]byte, error) {
	return []byte((*uint256.Int)(a).Dec()), nil
}

func (a *Amount) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: amount must be a scalar", node.Line)
	}
	return a.parse(node.Value)
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// bare number
		return a.parse(string(data))
	}
	return a.parse(s)
}

// UnmarshalTOML accepts toml integers and strings.
func (a *Amount) UnmarshalTOML(v any) error {
	switch v := v.(type) {
	case string:
		return a.parse(v)
	case int64:
		if v < 0 {
			return fmt.Errorf("negative amount %d", v)
		}
		*a = Amount(*uint256.NewInt(uint64(v)))
		return nil
	default:
		return fmt.Errorf("unsupported amount type %T", v)
	}
}

func (a *Amount) String() string {
	return (*uint256.Int)(a).Dec()
}
