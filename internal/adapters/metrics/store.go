// Package metrics persists build metrics in a bbolt database.
package metrics

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
	"go.trai.ch/polybuild/internal/core/domain"
	"go.trai.ch/polybuild/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	bucketName  = "metrics"
	openTimeout = time.Second
)

var _ ports.MetricsStore = (*Store)(nil)

// Store keeps one record per key of big-endian start nanoseconds followed
// by the target name, so a cursor walks records in start order.
type Store struct {
	db *bbolt.DB
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrMetricsOpenFailed.Error()), "path", path)
	}

	db, err := bbolt.Open(path, domain.PrivateFilePerm, &bbolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrMetricsOpenFailed.Error()), "path", path)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, zerr.With(zerr.Wrap(err, domain.ErrMetricsOpenFailed.Error()), "path", path)
	}
	return &Store{db: db}, nil
}

// Append stores m.
func (s *Store) Append(_ context.Context, m domain.BuildMetrics) error {
	data, err := json.Marshal(m)
	if err != nil {
		return zerr.Wrap(err, domain.ErrMetricsWriteFailed.Error())
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Put(recordKey(m.StartTime, m.Target), data)
	})
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrMetricsWriteFailed.Error()), "target", m.Target)
	}
	return nil
}

// Range returns the records started within [from, to], oldest first.
func (s *Store) Range(ctx context.Context, from, to time.Time) ([]domain.BuildMetrics, error) {
	var out []domain.BuildMetrics
	lower := timePrefix(from)
	upper := timePrefix(to)

	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(bucketName)).Cursor()
		for k, v := c.Seek(lower); k != nil; k, v = c.Next() {
			if bytes.Compare(k[:8], upper) > 0 {
				break
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			var m domain.BuildMetrics
			if err := json.Unmarshal(v, &m); err != nil {
				return zerr.With(err, "key", string(k[8:]))
			}
			out = append(out, m)
		}
		return nil
	})
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrMetricsReadFailed.Error())
	}
	return out, nil
}

// Clear removes every record.
func (s *Store) Clear() error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket([]byte(bucketName)); err != nil {
			return err
		}
		_, err := tx.CreateBucket([]byte(bucketName))
		return err
	})
	if err != nil {
		return zerr.Wrap(err, domain.ErrMetricsWriteFailed.Error())
	}
	return nil
}

// Close releases the database file lock.
func (s *Store) Close() error {
	return s.db.Close()
}

func timePrefix(t time.Time) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(max(t.UnixNano(), 0)))
	return b
}

func recordKey(start time.Time, target string) []byte {
	return append(timePrefix(start), target...)
}
