// Package runstore persists pipeline run status in a bolt database.
// Each run has an explicit lifecycle: created as running, moved to
// finished or failed, and garbage-collected after a TTL.
package runstore

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/op/go-logging"

	bolt "go.etcd.io/bbolt"
)

// log is the global logging variable.
var log = logging.MustGetLogger("runstore")

// runs is the bucket holding all run records.
var runs = []byte("runs")

// Run statuses.
const (
	StatusRunning  = "running"
	StatusFinished = "finished"
	StatusFailed   = "failed"
)

// Run is the stored state of one pipeline run.
type Run struct {
	ID      string    `json:"id"`
	Status  string    `json:"status"`
	Logs    []string  `json:"logs"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
}

// Terminal reports whether the run reached a final status.
func (r *Run) Terminal() bool {
	return r.Status == StatusFinished || r.Status == StatusFailed
}

// Store keeps run records in a bolt database.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if needed) a run store at the given path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(runs)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) put(tx *bolt.Tx, r *Run) error {
	r.Updated = time.Now()
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return tx.Bucket(runs).Put([]byte(r.ID), data)
}

func (s *Store) get(tx *bolt.Tx, id string) (*Run, error) {
	data := tx.Bucket(runs).Get([]byte(id))
	if data == nil {
		return nil, fmt.Errorf("run %s not found", id)
	}
	r := &Run{}
	if err := json.Unmarshal(data, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Create registers a new run in the running state.
func (s *Store) Create(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(runs).Get([]byte(id)) != nil {
			return fmt.Errorf("run %s already exists", id)
		}
		return s.put(tx, &Run{
			ID:      id,
			Status:  StatusRunning,
			Created: time.Now(),
		})
	})
}

// SetStatus moves a run to a new status. Terminal runs cannot change.
func (s *Store) SetStatus(id, status string) error {
	switch status {
	case StatusRunning, StatusFinished, StatusFailed:
	default:
		return fmt.Errorf("unknown status %q", status)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		r, err := s.get(tx, id)
		if err != nil {
			return err
		}
		if r.Terminal() {
			return fmt.Errorf("run %s already %s", id, r.Status)
		}
		r.Status = status
		return s.put(tx, r)
	})
}

// AppendLog adds a log line to a run.
func (s *Store) AppendLog(id, line string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		r, err := s.get(tx, id)
		if err != nil {
			return err
		}
		r.Logs = append(r.Logs, line)
		return s.put(tx, r)
	})
}

// Get returns the state of one run.
func (s *Store) Get(id string) (*Run, error) {
	var r *Run
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		r, err = s.get(tx, id)
		return err
	})
	return r, err
}

// List returns all runs.
func (s *Store) List() ([]*Run, error) {
	var all []*Run
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(runs).ForEach(func(k, v []byte) error {
			r := &Run{}
			if err := json.Unmarshal(v, r); err != nil {
				return err
			}
			all = append(all, r)
			return nil
		})
	})
	return all, err
}

// Sweep deletes terminal runs not updated for at least ttl. It returns
// the number of deleted runs.
func (s *Store) Sweep(ttl time.Duration) (int, error) {
	deleted := 0
	cutoff := time.Now().Add(-ttl)
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(runs)
		var stale [][]byte
		err := b.ForEach(func(k, v []byte) error {
			r := &Run{}
			if err := json.Unmarshal(v, r); err != nil {
				return err
			}
			if r.Terminal() && r.Updated.Before(cutoff) {
				key := make([]byte, len(k))
				copy(key, k)
				stale = append(stale, key)
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
			deleted++
		}
		return nil
	})
	if deleted > 0 {
		log.Infof("swept %d stale runs", deleted)
	}
	return deleted, err
}
