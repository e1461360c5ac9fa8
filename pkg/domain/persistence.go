package domain

import "context"

// Transaction exposes the record operations that a persistence implementation
// must support within an atomic scope.
type Transaction interface {
	Snapshot() TransactionView
	Create(c Collection, r Record) (Record, error)
	Update(c Collection, id string, mutator func(*Record) error) (Record, error)
	Delete(c Collection, id string) error
	Find(c Collection, id string) (Record, bool)
}

// TransactionView provides read-only access to snapshot data.
type TransactionView interface {
	List(c Collection) []Record
	Find(c Collection, id string) (Record, bool)
}

// PersistentStore is a minimal abstraction over durable backends. Every
// successful RunInTransaction commit is visible to subsequent reads from any
// caller (read-your-writes; edits are last-write-wins).
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) error
	View(ctx context.Context, fn func(TransactionView) error) error
	List(c Collection) []Record
	Get(c Collection, id string) (Record, bool)
}
