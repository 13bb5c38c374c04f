package kvsearch

import (
	"bytes"
	"context"
	"fmt"
	"time"
	"unsafe"

	"go.etcd.io/bbolt"
)

const defaultBoltBucket = "kvsearch"

// BoltOptions configures OpenBoltStore.
type BoltOptions struct {
	// Bucket holds all keys. Defaults to "kvsearch".
	Bucket string

	// IsTesting trades durability for speed (no fsync, small mmap).
	IsTesting bool

	MmapSize int
	Timeout  time.Duration
}

// BoltStore is a Store kept in a single Bolt file. All keys live in one
// bucket, sorted, so pattern scans seek to the literal prefix of the pattern.
type BoltStore struct {
	bdb  *bbolt.DB
	buck []byte
}

var (
	_ Store   = (*BoltStore)(nil)
	_ Flusher = (*BoltStore)(nil)
)

// OpenBoltStore opens or creates the Bolt database at path.
func OpenBoltStore(path string, opt BoltOptions) (*BoltStore, error) {
	bopt := &bbolt.Options{}
	*bopt = *bbolt.DefaultOptions
	bopt.Timeout = 10 * time.Second
	if opt.Timeout != 0 {
		bopt.Timeout = opt.Timeout
	}
	if opt.IsTesting {
		bopt.NoSync = true
		bopt.NoFreelistSync = true
		bopt.InitialMmapSize = 1024 * 1024 * 5
	} else {
		bopt.FreelistType = bbolt.FreelistMapType
	}
	if opt.MmapSize != 0 {
		bopt.InitialMmapSize = opt.MmapSize
	}

	bdb, err := bbolt.Open(path, 0666, bopt)
	if err != nil {
		return nil, fmt.Errorf("kvsearch: bolt: %w", err)
	}
	return NewBoltStore(bdb, opt.Bucket)
}

// NewBoltStore wraps an already open Bolt database. An empty bucket name
// selects the default bucket.
func NewBoltStore(bdb *bbolt.DB, bucket string) (*BoltStore, error) {
	if bucket == "" {
		bucket = defaultBoltBucket
	}
	s := &BoltStore{bdb: bdb, buck: []byte(bucket)}
	err := bdb.Update(func(btx *bbolt.Tx) error {
		_, err := btx.CreateBucketIfNotExists(s.buck)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("kvsearch: bolt: creating bucket %q: %w", bucket, err)
	}
	return s, nil
}

// Bolt returns the underlying database.
func (s *BoltStore) Bolt() *bbolt.DB {
	return s.bdb
}

func (s *BoltStore) Close() error {
	return s.bdb.Close()
}

func (s *BoltStore) Set(ctx context.Context, key, value string) error {
	return s.bdb.Update(func(btx *bbolt.Tx) error {
		return s.bucket(btx).Put([]byte(key), []byte(value))
	})
}

func (s *BoltStore) Get(ctx context.Context, key string) (value string, ok bool, err error) {
	err = s.bdb.View(func(btx *bbolt.Tx) error {
		v := s.bucket(btx).Get(unsafeBytesFromString(key))
		if v != nil {
			value, ok = string(v), true
		}
		return nil
	})
	return
}

func (s *BoltStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	p := compileKeyPattern(pattern)
	prefix := []byte(p.Prefix())

	var result []string
	err := s.bdb.View(func(btx *bbolt.Tx) error {
		c := s.bucket(btx).Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			if p.Match(string(k)) {
				result = append(result, string(k))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *BoltStore) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.bdb.Update(func(btx *bbolt.Tx) error {
		b := s.bucket(btx)
		for _, k := range keys {
			if err := b.Delete([]byte(k)); err != nil {
				return err
			}
		}
		return nil
	})
}

// FlushAll drops and recreates the bucket. Other buckets in the same file
// are left alone.
func (s *BoltStore) FlushAll(ctx context.Context) error {
	return s.bdb.Update(func(btx *bbolt.Tx) error {
		err := btx.DeleteBucket(s.buck)
		if err != nil && err != bbolt.ErrBucketNotFound {
			return err
		}
		_, err = btx.CreateBucket(s.buck)
		return err
	})
}

func (s *BoltStore) bucket(btx *bbolt.Tx) *bbolt.Bucket {
	b := btx.Bucket(s.buck)
	if b == nil {
		panic(fmt.Errorf("kvsearch: bolt bucket %q is missing", s.buck))
	}
	return b
}

func unsafeBytesFromString(s string) []byte {
	return unsafe.Slice(unsafe.StringData(s), len(s))
}
