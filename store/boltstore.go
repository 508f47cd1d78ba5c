// Package store persists engine state and the event journal in bbolt.
//
// The database file is shared with ledger.BoltLedger, which keeps its
// balances in separate buckets of the same file. Engine state is written
// as a full snapshot on every commit together with any new journal
// records, in a single bbolt transaction. CommitTx lets the caller add
// its own writes, such as ledger mints, to that transaction.
package store

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"

	"github.com/bitfsorg/libyield-go/event"
)

var (
	bucketMeta     = []byte("engine_meta")
	bucketHolders  = []byte("engine_holders")
	bucketRequests = []byte("engine_requests")
	bucketJournal  = []byte("engine_journal")

	keyState = []byte("state")
)

// BoltStore wraps a bbolt database for engine state.
type BoltStore struct {
	db *bbolt.DB
}

// Open opens or creates the bbolt database at dbPath.
// The parent directory is created if it does not exist.
func Open(dbPath string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("store: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("store: open bolt db: %w", err)
	}
	s, err := New(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New prepares the engine buckets in an already open database.
func New(db *bbolt.DB) (*BoltStore, error) {
	if db == nil {
		return nil, fmt.Errorf("%w: db", ErrNilParam)
	}
	err := db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketMeta, bucketHolders, bucketRequests, bucketJournal} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("store: create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &BoltStore{db: db}, nil
}

// DB returns the underlying database.
func (s *BoltStore) DB() *bbolt.DB { return s.db }

// Close closes the underlying database.
func (s *BoltStore) Close() error { return s.db.Close() }

// Initialized reports whether a state snapshot has been saved.
func (s *BoltStore) Initialized() (bool, error) {
	var ok bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		ok = tx.Bucket(bucketMeta).Get(keyState) != nil
		return nil
	})
	return ok, err
}

// Commit replaces the stored state with st and appends records to the
// journal, atomically.
func (s *BoltStore) Commit(st *State, records []*event.Record) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return s.CommitTx(tx, st, records)
	})
}

// CommitTx is Commit inside a caller-owned read-write transaction, so
// that other writes to the same database land together with the state.
func (s *BoltStore) CommitTx(tx *bbolt.Tx, st *State, records []*event.Record) error {
	if st == nil {
		return fmt.Errorf("%w: state", ErrNilParam)
	}
	if err := tx.Bucket(bucketMeta).Put(keyState, serializeMeta(st)); err != nil {
		return fmt.Errorf("store: put state: %w", err)
	}

	// Holders are append-only, so only the tail needs writing.
	hb := tx.Bucket(bucketHolders)
	for i := holderCount(hb); i < len(st.Holders); i++ {
		if err := hb.Put(indexKey(i), st.Holders[i][:]); err != nil {
			return fmt.Errorf("store: put holder %d: %w", i, err)
		}
	}

	rb := tx.Bucket(bucketRequests)
	for _, r := range st.Requests {
		if r == nil || r.Amount == nil {
			return fmt.Errorf("%w: request", ErrNilParam)
		}
		if err := rb.Put(idKey(r.ID), serializeRequest(r)); err != nil {
			return fmt.Errorf("store: put request %d: %w", r.ID, err)
		}
	}

	jb := tx.Bucket(bucketJournal)
	for _, r := range records {
		data, err := r.MarshalBinary()
		if err != nil {
			return fmt.Errorf("store: encode record %d: %w", r.Seq, err)
		}
		if err := jb.Put(event.SeqKey(r.Seq), data); err != nil {
			return fmt.Errorf("store: put record %d: %w", r.Seq, err)
		}
	}
	return nil
}

// LoadState reads the stored snapshot.
func (s *BoltStore) LoadState() (*State, error) {
	st := &State{}
	err := s.db.View(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(bucketMeta).Get(keyState)
		if meta == nil {
			return ErrNotInitialized
		}
		if err := deserializeMeta(meta, st); err != nil {
			return err
		}

		err := tx.Bucket(bucketHolders).ForEach(func(k, v []byte) error {
			a, err := decodeHolder(v)
			if err != nil {
				return fmt.Errorf("%w: holder %x: %w", ErrInvalidStateData, k, err)
			}
			st.Holders = append(st.Holders, a)
			return nil
		})
		if err != nil {
			return err
		}

		return tx.Bucket(bucketRequests).ForEach(func(k, v []byte) error {
			r, err := deserializeRequest(v)
			if err != nil {
				return err
			}
			st.Requests = append(st.Requests, r)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}

// LoadJournal reads every journal record in sequence order.
func (s *BoltStore) LoadJournal() ([]*event.Record, error) {
	var records []*event.Record
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketJournal).ForEach(func(k, v []byte) error {
			r := &event.Record{}
			if err := r.UnmarshalBinary(v); err != nil {
				return fmt.Errorf("store: record %x: %w", k, err)
			}
			records = append(records, r)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// holderCount returns the number of stored holders, relying on keys
// being contiguous indexes from zero.
func holderCount(b *bbolt.Bucket) int {
	k, _ := b.Cursor().Last()
	if k == nil {
		return 0
	}
	return int(binary.BigEndian.Uint32(k)) + 1
}
