// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package kv abstracts the byte store pool slots are persisted in.
package kv

// Getter reads values. A missing key is an error recognised by IsNotFound.
type Getter interface {
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	IsNotFound(err error) bool
}

// Putter writes values.
type Putter interface {
	Put(key, val []byte) error
	Delete(key []byte) error
}

type GetPutter interface {
	Getter
	Putter
}

// Batch collects writes applied all at once by Write.
type Batch interface {
	Putter

	Len() int
	Write() error
}

// Iterator walks key ordered pairs. Release must be called when done.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Release()
	Error() error
}

// Range selects keys in [Start, Limit). A nil Limit is unbounded.
type Range struct {
	Start []byte
	Limit []byte
}

// Store is what a pool needs from its database.
type Store interface {
	GetPutter

	NewBatch() Batch
	Iterate(r Range) Iterator
	Close() error
}
