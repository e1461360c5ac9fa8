package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"medghor/pkg/domain"
)

func openTestStore(t *testing.T, path string) *Store {
	t.Helper()
	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStateSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.db")
	expected := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)

	store := openTestStore(t, path)
	var productID, upcomingID string
	err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		p, err := tx.Create(domain.CollectionProducts, domain.Record{Name: "paracetamol"})
		if err != nil {
			return err
		}
		productID = p.ID
		u, err := tx.Create(domain.CollectionUpcomingGenericProducts, domain.Record{
			Name:         "cetirizine",
			ExpectedDate: &expected,
		})
		upcomingID = u.ID
		return err
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened := openTestStore(t, path)
	got, ok := reopened.Get(domain.CollectionProducts, productID)
	if !ok || got.Name != "paracetamol" {
		t.Fatalf("product not hydrated: (%v, %v)", got, ok)
	}
	upcoming, ok := reopened.Get(domain.CollectionUpcomingGenericProducts, upcomingID)
	if !ok {
		t.Fatalf("upcoming record not hydrated")
	}
	if upcoming.ExpectedDate == nil || !upcoming.ExpectedDate.Equal(expected) {
		t.Fatalf("expected date lost: %v", upcoming.ExpectedDate)
	}
}

func TestDeleteIsDurable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.db")
	store := openTestStore(t, path)

	var id string
	_ = store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		r, err := tx.Create(domain.CollectionGenericProducts, domain.Record{Name: "short lived"})
		id = r.ID
		return err
	})
	err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		return tx.Delete(domain.CollectionGenericProducts, id)
	})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened := openTestStore(t, path)
	if _, ok := reopened.Get(domain.CollectionGenericProducts, id); ok {
		t.Fatalf("deleted record reappeared after reopen")
	}
}

func TestFailedTransactionDoesNotPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.db")
	store := openTestStore(t, path)
	boom := errors.New("boom")

	err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		if _, err := tx.Create(domain.CollectionProducts, domain.Record{Name: "phantom"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened := openTestStore(t, path)
	if got := reopened.List(domain.CollectionProducts); len(got) != 0 {
		t.Fatalf("rolled-back write persisted: %v", got)
	}
}

func TestDefaultPath(t *testing.T) {
	store := openTestStore(t, filepath.Join(t.TempDir(), "nested", "dir", "inventory.db"))
	if store.Path() == "" {
		t.Fatalf("empty path")
	}
	if store.DB() == nil {
		t.Fatalf("nil db handle")
	}
}
