// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakes

import (
	"sort"

	"github.com/pkg/errors"
)

// Class is a kind of stakeable asset and the multiplier its units carry.
type Class struct {
	ID         uint64 `yaml:"id" toml:"id" json:"id"`
	Multiplier uint64 `yaml:"multiplier" toml:"multiplier" json:"multiplier"`
}

// Classes is the immutable set of recognised weight classes.
type Classes struct {
	list        []Class
	multipliers map[uint64]uint64
}

// NewClasses builds a class set. IDs must be unique and multipliers positive.
func NewClasses(classes ...Class) (*Classes, error) {
	if len(classes) == 0 {
		return nil, errors.New("no weight class")
	}
	c := &Classes{
		list:        make([]Class, 0, len(classes)),
		multipliers: make(map[uint64]uint64, len(classes)),
	}
	for _, class := range classes {
		if class.Multiplier == 0 {
			return nil, errors.Errorf("class %d: zero multiplier", class.ID)
		}
		if _, ok := c.multipliers[class.ID]; ok {
			return nil, errors.Errorf("class %d: duplicated", class.ID)
		}
		c.multipliers[class.ID] = class.Multiplier
		c.list = append(c.list, class)
	}
	sort.Slice(c.list, func(i, j int) bool { return c.list[i].ID < c.list[j].ID })
	return c, nil
}

// DefaultClasses returns the four classes 1..4 weighted 65, 20, 10 and 5.
func DefaultClasses() *Classes {
	c, _ := NewClasses(
		Class{ID: 1, Multiplier: 65},
		Class{ID: 2, Multiplier: 20},
		Class{ID: 3, Multiplier: 10},
		Class{ID: 4, Multiplier: 5},
	)
	return c
}

// Multiplier returns the multiplier of the class, false if unrecognised.
func (c *Classes) Multiplier(id uint64) (uint64, bool) {
	m, ok := c.multipliers[id]
	return m, ok
}

// List returns the classes ordered by id.
func (c *Classes) List() []Class {
	return append([]Class(nil), c.list...)
}
