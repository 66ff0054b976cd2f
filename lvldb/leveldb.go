// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package lvldb stores pool slots in goleveldb.
package lvldb

import (
	"time"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/vechain/halvening/kv"
	"github.com/vechain/halvening/metrics"
)

// minimum cache and open files capacity
const minCapacity = 16

var (
	metricBatchSize     = metrics.LazyLoadHistogram("lvldb_batch_size", []int64{1, 2, 5, 10, 20, 50, 100, 500})
	metricBatchDuration = metrics.LazyLoadHistogram("lvldb_batch_duration_ms", []int64{0, 1, 2, 5, 10, 50, 100, 500})
)

var _ kv.Store = (*LevelDB)(nil)

type Options struct {
	CacheSize              int // MB, half block cache and a quarter write buffer
	OpenFilesCacheCapacity int
}

var (
	readOpt  = opt.ReadOptions{}
	writeOpt = opt.WriteOptions{}
	// a committed pool call must survive a crash
	batchOpt = opt.WriteOptions{Sync: true}
)

// LevelDB is a kv.Store over goleveldb.
type LevelDB struct {
	db *leveldb.DB
}

// New opens the database at path, creating it when missing.
func New(path string, opts Options) (*LevelDB, error) {
	stg, err := storage.OpenFile(path, false)
	if err != nil {
		return nil, errors.Wrapf(err, "open level db storage %s", path)
	}
	return open(stg, opts)
}

// NewMem creates a database living in memory.
func NewMem() (*LevelDB, error) {
	return open(storage.NewMemStorage(), Options{})
}

func open(stg storage.Storage, opts Options) (*LevelDB, error) {
	cacheSize := max(opts.CacheSize, minCapacity)
	db, err := leveldb.Open(stg, &opt.Options{
		OpenFilesCacheCapacity: max(opts.OpenFilesCacheCapacity, minCapacity),
		BlockCacheCapacity:     cacheSize / 2 * opt.MiB,
		WriteBuffer:            cacheSize / 4 * opt.MiB,
		Filter:                 filter.NewBloomFilter(10),
	})
	if err != nil {
		stg.Close()
		return nil, errors.Wrap(err, "open level db")
	}
	return &LevelDB{db}, nil
}

func (ldb *LevelDB) IsNotFound(err error) bool {
	return errors.Is(err, leveldb.ErrNotFound)
}

func (ldb *LevelDB) Get(key []byte) ([]byte, error) {
	return ldb.db.Get(key, &readOpt)
}

func (ldb *LevelDB) Has(key []byte) (bool, error) {
	return ldb.db.Has(key, &readOpt)
}

func (ldb *LevelDB) Put(key, value []byte) error {
	return ldb.db.Put(key, value, &writeOpt)
}

func (ldb *LevelDB) Delete(key []byte) error {
	return ldb.db.Delete(key, &writeOpt)
}

// Close closes the database, later calls fail.
func (ldb *LevelDB) Close() error {
	return ldb.db.Close()
}

// NewBatch creates a batch whose Write is synced to disk.
func (ldb *LevelDB) NewBatch() kv.Batch {
	return &batch{ldb.db, new(leveldb.Batch)}
}

// Iterate walks r in key order. The goleveldb iterator already is a kv.Iterator.
func (ldb *LevelDB) Iterate(r kv.Range) kv.Iterator {
	return ldb.db.NewIterator(&util.Range{Start: r.Start, Limit: r.Limit}, &readOpt)
}

type batch struct {
	db *leveldb.DB
	b  *leveldb.Batch
}

func (b *batch) Put(key, value []byte) error {
	b.b.Put(key, value)
	return nil
}

func (b *batch) Delete(key []byte) error {
	b.b.Delete(key)
	return nil
}

func (b *batch) Len() int {
	return b.b.Len()
}

func (b *batch) Write() error {
	start := time.Now()
	if err := b.db.Write(b.b, &batchOpt); err != nil {
		return err
	}
	metricBatchSize().Observe(int64(b.b.Len()))
	metricBatchDuration().Observe(time.Since(start).Milliseconds())
	return nil
}
