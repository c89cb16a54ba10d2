// Package history keeps an append-only audit log of completed recovery
// sessions in a local Badger store. It records what each run did, never
// resumable scan state; a session that dies mid-scan simply has no entry.
package history

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// keyPrefix namespaces session records inside the store.
const keyPrefix = "s:"

// Record summarizes one completed recovery session.
type Record struct {
	ID           string        `json:"id"`
	Device       string        `json:"device"`
	Profile      string        `json:"profile"`
	Strategies   string        `json:"strategies"`
	StartedAt    time.Time     `json:"started_at"`
	Duration     time.Duration `json:"duration"`
	BytesScanned int64         `json:"bytes_scanned"`
	Found        int64         `json:"found"`
	Recovered    int64         `json:"recovered"`
	Skipped      int64         `json:"skipped"`
	Errors       int64         `json:"errors"`
	OutputDir    string        `json:"output_dir,omitempty"`
	Preview      bool          `json:"preview"`
	Cancelled    bool          `json:"cancelled"`
}

// key builds the record's store key. The timestamp is stored reversed so
// lexicographic iteration yields newest first; the session ID breaks ties.
func (r Record) key() []byte {
	reverse := math.MaxInt64 - r.StartedAt.UnixNano()
	return []byte(fmt.Sprintf("%s%020d:%s", keyPrefix, reverse, r.ID))
}

func (r Record) encode() ([]byte, error) {
	return json.Marshal(r)
}

func (r *Record) decode(data []byte) error {
	return json.Unmarshal(data, r)
}

// Store wraps Badger for session history operations.
type Store struct {
	db *badger.DB
}

// Open opens or creates the history store at the given directory.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable badger logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening history store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append stores one session record.
func (s *Store) Append(r Record) error {
	value, err := r.encode()
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(r.key(), value)
	})
}

// List returns up to limit records, newest first. A non-positive limit
// returns everything.
func (s *Store) List(limit int) ([]Record, error) {
	var out []Record
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(out) >= limit {
				break
			}
			var r Record
			if err := it.Item().Value(r.decode); err != nil {
				return err
			}
			out = append(out, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Prune deletes all but the newest keep records.
func (s *Store) Prune(keep int) error {
	if keep < 0 {
		keep = 0
	}
	return s.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(keyPrefix)
		seen := 0
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			seen++
			if seen <= keep {
				continue
			}
			if err := txn.Delete(it.Item().KeyCopy(nil)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Clear removes every session record.
func (s *Store) Clear() error {
	return s.Prune(0)
}
