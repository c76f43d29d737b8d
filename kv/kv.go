// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

// Getter wraps methods for getting kvs.
type Getter interface {
	// Get value for given key.
	// An error returned if key not found. It can be checked via IsNotFound.
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	IsNotFound(err error) bool
}

// Putter wraps methods for putting kvs.
type Putter interface {
	Put(key, val []byte) error
	Delete(key []byte) error
}

// GetPutter wraps methods for getting/putting kvs.
type GetPutter interface {
	Getter
	Putter
}

// Batch collects puts and deletes and applies them atomically on Write.
type Batch interface {
	Putter
	Len() int
	Write() error
}

// Pair is a key/value pair produced by Iterate.
type Pair interface {
	Key() []byte
	Value() []byte
}

// Store is a kv store with batches and prefix iteration.
type Store interface {
	GetPutter
	NewBatch() Batch
	// Iterate calls fn for every pair whose key has the given prefix, until fn returns false.
	Iterate(prefix []byte, fn func(Pair) bool) error
	Close() error
}
