// Copyright (c) 2021 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMem(t *testing.T) *LevelDB {
	db, err := NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestBucketGetPut(t *testing.T) {
	db := newMem(t)
	require.NoError(t, db.Put([]byte("k1"), []byte("v1")))
	require.NoError(t, db.Put([]byte("k2"), []byte("v2")))

	tests := []struct {
		b    Bucket
		key  string
		want string
		has  bool
	}{
		{Bucket(""), "k1", "v1", true},
		{Bucket("k"), "k1", "", false},
		{Bucket("k"), "1", "v1", true},
		{Bucket("k"), "2", "v2", true},
		{Bucket("k1"), "", "v1", true},
	}
	for _, tt := range tests {
		g := tt.b.NewGetter(db)
		has, err := g.Has([]byte(tt.key))
		require.NoError(t, err)
		assert.Equal(t, tt.has, has)

		got, err := g.Get([]byte(tt.key))
		if !tt.has {
			assert.True(t, g.IsNotFound(err))
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, string(got))
	}

	p := Bucket("x").NewPutter(db)
	require.NoError(t, p.Put([]byte("a"), []byte("1")))
	v, err := db.Get([]byte("xa"))
	require.NoError(t, err)
	assert.Equal(t, "1", string(v))

	require.NoError(t, p.Delete([]byte("a")))
	_, err = db.Get([]byte("xa"))
	assert.True(t, db.IsNotFound(err))
}

func TestBucketIterate(t *testing.T) {
	db := newMem(t)
	b := Bucket("v/")
	batch := db.NewBatch()
	w := b.NewPutter(batch)
	for _, k := range []string{"1", "2", "3"} {
		require.NoError(t, w.Put([]byte(k), []byte("val"+k)))
	}
	require.NoError(t, batch.Put([]byte("other"), []byte("x")))
	assert.Equal(t, 4, batch.Len())
	require.NoError(t, batch.Write())

	var keys []string
	require.NoError(t, b.Iterate(db, nil, func(p Pair) bool {
		keys = append(keys, string(p.Key()))
		return true
	}))
	assert.Equal(t, []string{"1", "2", "3"}, keys)

	keys = keys[:0]
	require.NoError(t, b.Iterate(db, nil, func(p Pair) bool {
		keys = append(keys, string(p.Key()))
		return len(keys) < 2
	}))
	assert.Equal(t, []string{"1", "2"}, keys)
}

func TestPersistentReopen(t *testing.T) {
	dir := t.TempDir()
	db, err := New(dir, Options{})
	require.NoError(t, err)
	require.NoError(t, db.Put([]byte("k"), []byte("v")))
	require.NoError(t, db.Close())

	db, err = New(dir, Options{CacheSize: 32})
	require.NoError(t, err)
	defer db.Close()
	v, err := db.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, "v", string(v))
}
