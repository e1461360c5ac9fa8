// Package memory provides the in-memory implementation of the inventory
// persistence store. It is authoritative for transaction semantics and is
// embedded by the durable SQLite and Postgres stores.
package memory

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sort"
	"sync"
	"time"

	"medghor/pkg/domain"
)

// Compile-time contract assertion ensuring memory.Store adheres to the domain persistence interface.
var _ domain.PersistentStore = (*Store)(nil)

type state map[domain.Collection]map[string]domain.Record

// Snapshot captures a point-in-time clone of the store state, keyed by
// collection bucket. It is the unit of durable persistence.
type Snapshot map[domain.Collection]map[string]domain.Record

func newState() state {
	s := make(state, len(domain.Collections()))
	for _, c := range domain.Collections() {
		s[c] = make(map[string]domain.Record)
	}
	return s
}

func (s state) clone() state {
	out := make(state, len(s))
	for c, bucket := range s {
		cp := make(map[string]domain.Record, len(bucket))
		for id, r := range bucket {
			cp[id] = r.Clone()
		}
		out[c] = cp
	}
	return out
}

// Store is an in-memory persistent store guarded by a single RWMutex.
type Store struct {
	mu    sync.RWMutex
	state state
	nowFn func() time.Time
}

// NewStore constructs an empty in-memory store.
func NewStore() *Store {
	return &Store{
		state: newState(),
		nowFn: func() time.Time { return time.Now().UTC() },
	}
}

// SetNowFunc overrides the clock used to stamp CreatedAt/UpdatedAt. Intended
// for tests; the zero behavior is time.Now in UTC.
func (s *Store) SetNowFunc(fn func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fn != nil {
		s.nowFn = fn
	}
}

func newID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b[:])
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot(s.state.clone())
}

// ImportState replaces the store state with the provided snapshot. Missing
// buckets are initialized empty so older snapshots hydrate cleanly.
func (s *Store) ImportState(snapshot Snapshot) {
	st := newState()
	for c, bucket := range snapshot {
		if !domain.Known(c) {
			continue
		}
		for id, r := range bucket {
			st[c][id] = r.Clone()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
}

type transaction struct {
	store *Store
	state state
	now   time.Time
}

type transactionView struct {
	state state
}

func newTransactionView(st state) domain.TransactionView {
	return transactionView{state: st}
}

// List returns all records in the collection, ordered by creation time with
// id as the tie-break. The order is stable across calls so repeated reads
// paginate consistently.
func (v transactionView) List(c domain.Collection) []domain.Record {
	bucket := v.state[c]
	out := make([]domain.Record, 0, len(bucket))
	for _, r := range bucket {
		out = append(out, r.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Find retrieves a record by id from the snapshot.
func (v transactionView) Find(c domain.Collection, id string) (domain.Record, bool) {
	r, ok := v.state[c][id]
	if !ok {
		return domain.Record{}, false
	}
	return r.Clone(), true
}

// RunInTransaction executes fn within a transactional copy of the store
// state. The copy becomes the new state only when fn returns nil.
func (s *Store) RunInTransaction(_ context.Context, fn func(domain.Transaction) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		store: s,
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return err
	}

	s.state = tx.state
	return nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(domain.TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	return fn(newTransactionView(snapshot))
}

// List returns all records currently committed to the collection.
func (s *Store) List(c domain.Collection) []domain.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTransactionView(s.state).List(c)
}

// Get retrieves a committed record by id.
func (s *Store) Get(c domain.Collection, id string) (domain.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTransactionView(s.state).Find(c, id)
}

// Snapshot returns a read-only view over the transactional state.
func (tx *transaction) Snapshot() domain.TransactionView {
	return newTransactionView(tx.state)
}

// Find exposes record lookup within the transaction scope.
func (tx *transaction) Find(c domain.Collection, id string) (domain.Record, bool) {
	r, ok := tx.state[c][id]
	if !ok {
		return domain.Record{}, false
	}
	return r.Clone(), true
}

// Create stores a new record within the transaction. A fresh id is assigned
// when none is supplied; CreatedAt and UpdatedAt are stamped with the
// transaction time and never change on later updates.
func (tx *transaction) Create(c domain.Collection, r domain.Record) (domain.Record, error) {
	bucket, ok := tx.state[c]
	if !ok {
		return domain.Record{}, domain.UnknownCollectionError{Collection: c}
	}
	if r.ID == "" {
		r.ID = newID()
	}
	if _, exists := bucket[r.ID]; exists {
		return domain.Record{}, domain.ValidationError{Field: "id", Reason: "already exists"}
	}
	r.CreatedAt = tx.now
	r.UpdatedAt = tx.now
	bucket[r.ID] = r.Clone()
	return r.Clone(), nil
}

// Update mutates a record using the provided mutator function. The id and
// CreatedAt fields survive the mutation untouched.
func (tx *transaction) Update(c domain.Collection, id string, mutator func(*domain.Record) error) (domain.Record, error) {
	bucket, ok := tx.state[c]
	if !ok {
		return domain.Record{}, domain.UnknownCollectionError{Collection: c}
	}
	current, ok := bucket[id]
	if !ok {
		return domain.Record{}, domain.NotFoundError{Collection: c, ID: id}
	}
	createdAt := current.CreatedAt
	if err := mutator(&current); err != nil {
		return domain.Record{}, err
	}
	current.ID = id
	current.CreatedAt = createdAt
	current.UpdatedAt = tx.now
	bucket[id] = current.Clone()
	return current.Clone(), nil
}

// Delete removes a record from the transaction state.
func (tx *transaction) Delete(c domain.Collection, id string) error {
	bucket, ok := tx.state[c]
	if !ok {
		return domain.UnknownCollectionError{Collection: c}
	}
	if _, ok := bucket[id]; !ok {
		return domain.NotFoundError{Collection: c, ID: id}
	}
	delete(bucket, id)
	return nil
}
