// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/halvening/kv"
	"github.com/vechain/halvening/lvldb"
)

func newDB(t *testing.T) kv.Store {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestBucketsAreDisjoint(t *testing.T) {
	db := newDB(t)
	a := kv.Bucket("a/").NewStore(db)
	b := kv.Bucket("b/").NewStore(db)

	require.NoError(t, a.Put([]byte("supply"), []byte("1")))
	require.NoError(t, b.Put([]byte("supply"), []byte("2")))

	v, err := a.Get([]byte("supply"))
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), v)

	v, err = db.Get([]byte("b/supply"))
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), v)

	require.NoError(t, a.Delete([]byte("supply")))
	_, err = a.Get([]byte("supply"))
	assert.True(t, a.IsNotFound(err))

	has, err := b.Has([]byte("supply"))
	require.NoError(t, err)
	assert.True(t, has)
}

func TestBucketGetterHas(t *testing.T) {
	db := newDB(t)
	require.NoError(t, db.Put([]byte("k1"), []byte("v1")))

	tests := []struct {
		bucket kv.Bucket
		key    string
		want   bool
	}{
		{"", "k1", true},
		{"k", "1", true},
		{"k1", "", true},
		{"k", "k1", false},
		{"x", "1", false},
	}
	for _, tt := range tests {
		has, err := tt.bucket.NewGetter(db).Has([]byte(tt.key))
		require.NoError(t, err)
		assert.Equal(t, tt.want, has, "bucket %q key %q", tt.bucket, tt.key)
	}
}

func TestBucketBatch(t *testing.T) {
	db := newDB(t)
	store := kv.Bucket("pool/").NewStore(db)

	batch := store.NewBatch()
	require.NoError(t, batch.Put([]byte("a"), []byte("1")))
	require.NoError(t, batch.Put([]byte("b"), []byte("2")))
	require.NoError(t, batch.Delete([]byte("c")))
	assert.Equal(t, 3, batch.Len())

	has, err := store.Has([]byte("a"))
	require.NoError(t, err)
	assert.False(t, has, "nothing lands before Write")

	require.NoError(t, batch.Write())
	v, err := db.Get([]byte("pool/b"))
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), v)
}

func TestBucketIterate(t *testing.T) {
	db := newDB(t)
	require.NoError(t, db.Put([]byte("a/1"), []byte("x")))
	require.NoError(t, db.Put([]byte("a/2"), []byte("y")))
	require.NoError(t, db.Put([]byte("a/3"), []byte("z")))
	require.NoError(t, db.Put([]byte("b/1"), []byte("other")))

	collect := func(r kv.Range) (keys []string) {
		iter := kv.Bucket("a/").NewStore(db).Iterate(r)
		defer iter.Release()
		for iter.Next() {
			keys = append(keys, string(iter.Key()))
		}
		require.NoError(t, iter.Error())
		return
	}

	assert.Equal(t, []string{"1", "2", "3"}, collect(kv.Range{}))
	assert.Equal(t, []string{"2"}, collect(kv.Range{Start: []byte("2"), Limit: []byte("3")}))
}

func TestBucketCloseKeepsSource(t *testing.T) {
	db := newDB(t)
	require.NoError(t, kv.Bucket("a/").NewStore(db).Close())

	require.NoError(t, db.Put([]byte("k"), []byte("v")))
	v, err := db.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)
}
