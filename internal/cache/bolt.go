package cache

import (
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const boltBucket = "cache"

// Bolt persists entries in a bbolt file. Values are stored as expiry(8, unix nanos) + payload.
type Bolt struct {
	db    *bolt.DB
	clock func() time.Time
}

func OpenBolt(path string) (*Bolt, error) {
	if path == "" {
		return nil, errors.New("cache: bolt backend requires a path")
	}
	if dir := filepath.Dir(filepath.Clean(path)); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(boltBucket))
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Bolt{db: db, clock: time.Now}, nil
}

func (b *Bolt) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var (
		out   []byte
		found bool
	)
	err := b.db.View(func(tx *bolt.Tx) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		raw := tx.Bucket([]byte(boltBucket)).Get([]byte(key))
		if len(raw) < 8 {
			return nil
		}
		expires := time.Unix(0, int64(binary.BigEndian.Uint64(raw[:8])))
		if !b.clock().Before(expires) {
			return nil
		}
		out = append([]byte{}, raw[8:]...)
		found = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, found, nil
}

func (b *Bolt) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	buf := make([]byte, 8, 8+len(value))
	binary.BigEndian.PutUint64(buf, uint64(b.clock().Add(ttl).UnixNano()))
	buf = append(buf, value...)
	return b.db.Update(func(tx *bolt.Tx) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return tx.Bucket([]byte(boltBucket)).Put([]byte(key), buf)
	})
}

func (b *Bolt) Close() error {
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}
