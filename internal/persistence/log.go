// Package persistence implements the external ordered log and snapshot
// adapter (§6): a static, byte-keyed, monotonically-growing store. The
// adapter contract describes an LMDB/MDBX-style store opened with a
// static map size; this module uses go.etcd.io/bbolt instead — a pure-Go,
// equally ordered-byte-key B+tree store with the same "single writer,
// configured map size" operating model, so the build carries no cgo
// dependency (see DESIGN.md).
package persistence

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	bolt "go.etcd.io/bbolt"
)

var eventsBucket = []byte("events")

// StoreError wraps a failure from the underlying log, distinguishing it
// from a validation rejection or a corruption panic (§7).
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err) }
func (e *StoreError) Unwrap() error { return e.Err }

// Log is the append-only event store keyed by big-endian uint64 id
// (§6). It is owned by exactly one engine instance; opening the same
// file from two Logs is undefined — single-writer, like the
// underlying bbolt file lock.
type Log struct {
	db      *bolt.DB
	retry   backoff.BackOff
	path    string
}

// Options tunes the underlying bbolt database. MapSize is passed to
// bbolt as InitialMmapSize, the closest bbolt equivalent of the
// persistence adapter contract's "static map size" (§6); bbolt still
// grows its mmap on demand beyond it. MaxRetries, RetryFloor and
// RetryCeil bound the exponential retry of a failed Put.
type Options struct {
	MapSize     int64
	MaxRetries  uint64
	RetryFloor  time.Duration
	RetryCeil   time.Duration
}

// DefaultOptions returns the tuning the reference persistence adapter
// uses: a ~5 GiB static map size equivalent and a short bounded retry
// budget for transient write errors.
func DefaultOptions() Options {
	return Options{
		MapSize:    5 << 30,
		MaxRetries: 5,
		RetryFloor: 10 * time.Millisecond,
		RetryCeil:  500 * time.Millisecond,
	}
}

// Open opens (creating if absent) the log file at path.
func Open(path string, opts Options) (*Log, error) {
	if opts.RetryFloor <= 0 || opts.RetryCeil <= 0 || opts.MaxRetries <= 0 {
		d := DefaultOptions()
		if opts.RetryFloor <= 0 {
			opts.RetryFloor = d.RetryFloor
		}
		if opts.RetryCeil <= 0 {
			opts.RetryCeil = d.RetryCeil
		}
		if opts.MaxRetries <= 0 {
			opts.MaxRetries = d.MaxRetries
		}
	}
	if opts.MapSize <= 0 {
		opts.MapSize = DefaultOptions().MapSize
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second, InitialMmapSize: int(opts.MapSize)})
	if err != nil {
		return nil, &StoreError{Op: "open", Err: err}
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, e := tx.CreateBucketIfNotExists(eventsBucket)
		return e
	})
	if err != nil {
		_ = db.Close()
		return nil, &StoreError{Op: "init", Err: err}
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = opts.RetryFloor
	eb.MaxInterval = opts.RetryCeil
	eb.MaxElapsedTime = 0

	return &Log{
		db:    db,
		path:  path,
		retry: backoff.WithMaxRetries(eb, opts.MaxRetries),
	}, nil
}

// Close releases the underlying database file.
func (l *Log) Close() error {
	if l == nil {
		return nil
	}
	return l.db.Close()
}

func keyFor(id uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, id)
	return buf
}

// Put inserts bytes under id (§6), retrying transient write failures per
// l.retry before surfacing a *StoreError.
func (l *Log) Put(id uint64, value []byte) error {
	op := func() error {
		return l.db.Update(func(tx *bolt.Tx) error {
			b := tx.Bucket(eventsBucket)
			return b.Put(keyFor(id), value)
		})
	}
	if err := backoff.Retry(op, l.retry); err != nil {
		return &StoreError{Op: "put", Err: err}
	}
	return nil
}

// Entry is one (id, value) pair returned by ScanFrom.
type Entry struct {
	ID    uint64
	Value []byte
}

// ScanFrom returns every entry with id >= from, in ascending id order
// (§6). Values are copied out of the bbolt mmap since they are only
// valid for the lifetime of the read transaction otherwise.
func (l *Log) ScanFrom(from uint64) ([]Entry, error) {
	var out []Entry
	err := l.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(eventsBucket).Cursor()
		start := keyFor(from)
		for k, v := c.Seek(start); k != nil; k, v = c.Next() {
			id := binary.BigEndian.Uint64(k)
			value := make([]byte, len(v))
			copy(value, v)
			out = append(out, Entry{ID: id, Value: value})
		}
		return nil
	})
	if err != nil {
		return nil, &StoreError{Op: "scan", Err: err}
	}
	return out, nil
}

// Count returns the total number of entries in the log (§6).
func (l *Log) Count() (uint64, error) {
	var n uint64
	err := l.db.View(func(tx *bolt.Tx) error {
		n = uint64(tx.Bucket(eventsBucket).Stats().KeyN)
		return nil
	})
	if err != nil {
		return 0, &StoreError{Op: "count", Err: err}
	}
	return n, nil
}

// IsStoreError reports whether err originated from the log (as opposed
// to a validation rejection or aggregate corruption).
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
