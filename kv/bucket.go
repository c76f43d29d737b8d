// Copyright (c) 2021 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

type (
	getFunc        func(key []byte) ([]byte, error)
	hasFunc        func(key []byte) (bool, error)
	putFunc        func(key, val []byte) error
	deleteFunc     func(key []byte) error
	isNotFoundFunc func(err error) bool
	keyFunc        func() []byte
	valueFunc      func() []byte
)

func (f getFunc) Get(key []byte) ([]byte, error)   { return f(key) }
func (f hasFunc) Has(key []byte) (bool, error)     { return f(key) }
func (f putFunc) Put(key, val []byte) error        { return f(key, val) }
func (f deleteFunc) Delete(key []byte) error       { return f(key) }
func (f isNotFoundFunc) IsNotFound(err error) bool { return f(err) }
func (f keyFunc) Key() []byte                      { return f() }
func (f valueFunc) Value() []byte                  { return f() }

// Bucket provides a logical key prefix inside a store.
type Bucket string

func (b Bucket) key(k []byte) []byte {
	return append(append(make([]byte, 0, len(b)+len(k)), b...), k...)
}

// NewGetter creates a bucket getter from the source getter.
func (b Bucket) NewGetter(src Getter) Getter {
	return &struct {
		getFunc
		hasFunc
		isNotFoundFunc
	}{
		func(key []byte) ([]byte, error) { return src.Get(b.key(key)) },
		func(key []byte) (bool, error) { return src.Has(b.key(key)) },
		src.IsNotFound,
	}
}

// NewPutter creates a bucket putter from the source putter.
func (b Bucket) NewPutter(src Putter) Putter {
	return &struct {
		putFunc
		deleteFunc
	}{
		func(key, val []byte) error { return src.Put(b.key(key), val) },
		func(key []byte) error { return src.Delete(b.key(key)) },
	}
}

// Iterate walks the pairs of the bucket in src, with the bucket prefix stripped from keys.
func (b Bucket) Iterate(src Store, prefix []byte, fn func(Pair) bool) error {
	return src.Iterate(b.key(prefix), func(p Pair) bool {
		return fn(&struct {
			keyFunc
			valueFunc
		}{
			func() []byte { return p.Key()[len(b):] },
			p.Value,
		})
	})
}
