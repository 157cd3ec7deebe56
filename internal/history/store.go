// Package history persists forest predictions so the dashboard can list the
// most recent ones per domain.
package history

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.etcd.io/bbolt"
)

const (
	predictionsBucket = "predictions"
	indexBucket       = "prediction_ids"
)

var ErrNotFound = errors.New("prediction not found")

// Entry is one stored forest vote.
type Entry struct {
	ID        string            `json:"id"`
	Domain    string            `json:"domain"`
	Timestamp time.Time         `json:"timestamp"`
	Input     map[string]any    `json:"input"`
	TreeCount int               `json:"tree_count"`
	Label     string            `json:"label"`
	Counts    map[string]int    `json:"counts"`
	Votes     []string          `json:"votes"`
	Meta      map[string]string `json:"meta,omitempty"`
}

type Store struct {
	db *bbolt.DB
}

// Open opens or creates the history database under dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	db, err := bbolt.Open(filepath.Join(dir, "history.db"), 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range []string{predictionsBucket, indexBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(b)); err != nil {
				return fmt.Errorf("create %s bucket: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Keys are domain NUL nanos NUL sequence. NUL cannot occur in a domain name,
// so one domain's keys never share a prefix with another's, and the bucket
// sequence keeps saves with equal timestamps apart.
func domainPrefix(domain string) []byte {
	return append([]byte(domain), 0)
}

func entryKey(domain string, ts time.Time, seq uint64) []byte {
	return append(domainPrefix(domain), fmt.Sprintf("%020d\x00%020d", ts.UnixNano(), seq)...)
}

// Save stores e, filling its ID and timestamp when unset.
func (s *Store) Save(e *Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal prediction: %w", err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(predictionsBucket))
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		key := entryKey(e.Domain, e.Timestamp, seq)
		if err := b.Put(key, data); err != nil {
			return err
		}
		return tx.Bucket([]byte(indexBucket)).Put([]byte(e.ID), key)
	})
}

func (s *Store) Get(id string) (*Entry, error) {
	var e Entry
	err := s.db.View(func(tx *bbolt.Tx) error {
		key := tx.Bucket([]byte(indexBucket)).Get([]byte(id))
		if key == nil {
			return ErrNotFound
		}
		v := tx.Bucket([]byte(predictionsBucket)).Get(key)
		if v == nil {
			return ErrNotFound
		}
		return json.Unmarshal(v, &e)
	})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Recent returns up to limit entries for a domain, newest first.
func (s *Store) Recent(domain string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	prefix := domainPrefix(domain)
	out := []Entry{}
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(predictionsBucket)).Cursor()
		// seek past the prefix, then walk backwards
		end := append(append([]byte(nil), prefix...), 0xff)
		k, v := c.Seek(end)
		if k == nil {
			k, v = c.Last()
		} else {
			k, v = c.Prev()
		}
		for ; k != nil && bytes.HasPrefix(k, prefix) && len(out) < limit; k, v = c.Prev() {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return fmt.Errorf("decode %s: %w", k, err)
			}
			out = append(out, e)
		}
		return nil
	})
	return out, err
}
