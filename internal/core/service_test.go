package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"medghor/internal/infra/persistence/memory"
	"medghor/pkg/domain"
)

type recordingMetrics struct {
	mu       sync.Mutex
	observed []string
	failures []string
}

func (m *recordingMetrics) Observe(_ context.Context, operation string, success bool, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observed = append(m.observed, operation)
	if !success {
		m.failures = append(m.failures, operation)
	}
}

func newTestService(opts ...Option) *Service {
	return NewService(memory.NewStore(), opts...)
}

func TestAddTrimsNameAndAssignsID(t *testing.T) {
	svc := newTestService()
	id, err := svc.AddProduct(context.Background(), RecordFields{Name: "  dolo 650  "})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if id == "" {
		t.Fatalf("empty id")
	}
	records, err := svc.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 || records[0].Name != "dolo 650" {
		t.Fatalf("records = %+v", records)
	}
	if records[0].ExpectedDate != nil {
		t.Fatalf("simple record carries an expected date")
	}
}

func TestAddRejectsBlankName(t *testing.T) {
	svc := newTestService()
	var verr domain.ValidationError
	if _, err := svc.AddGenericProduct(context.Background(), RecordFields{Name: "   "}); !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if verr.Field != "name" {
		t.Fatalf("field = %q", verr.Field)
	}
}

func TestScheduledAddRequiresExpectedDate(t *testing.T) {
	svc := newTestService()
	var verr domain.ValidationError
	if _, err := svc.AddUpcomingProduct(context.Background(), RecordFields{Name: "cefixime"}); !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if verr.Field != "expectedDate" {
		t.Fatalf("field = %q", verr.Field)
	}

	expected := time.Date(2026, time.October, 5, 0, 0, 0, 0, time.UTC)
	id, err := svc.AddUpcomingProduct(context.Background(), RecordFields{Name: "cefixime", ExpectedDate: &expected})
	if err != nil {
		t.Fatalf("add with date: %v", err)
	}
	records, _ := svc.ListUpcomingProducts(context.Background())
	if len(records) != 1 || records[0].ID != id {
		t.Fatalf("records = %+v", records)
	}
	if records[0].ExpectedDate == nil || !records[0].ExpectedDate.Equal(expected) {
		t.Fatalf("expected date = %v", records[0].ExpectedDate)
	}
}

func TestSimpleAddDropsExpectedDate(t *testing.T) {
	svc := newTestService()
	stray := time.Now()
	if _, err := svc.AddProduct(context.Background(), RecordFields{Name: "paracetamol", ExpectedDate: &stray}); err != nil {
		t.Fatalf("add: %v", err)
	}
	records, _ := svc.ListProducts(context.Background())
	if records[0].ExpectedDate != nil {
		t.Fatalf("expected date retained on a simple record")
	}
}

func TestEditReplacesFieldsInPlace(t *testing.T) {
	svc := newTestService()
	id, err := svc.AddGenericProduct(context.Background(), RecordFields{Name: "old"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	before, _ := svc.ListGenericProducts(context.Background())

	if err := svc.EditGenericProduct(context.Background(), id, RecordFields{Name: "new"}); err != nil {
		t.Fatalf("edit: %v", err)
	}
	after, _ := svc.ListGenericProducts(context.Background())
	if len(after) != 1 || after[0].Name != "new" {
		t.Fatalf("after = %+v", after)
	}
	if after[0].ID != id || !after[0].CreatedAt.Equal(before[0].CreatedAt) {
		t.Fatalf("identity changed: %+v vs %+v", after[0], before[0])
	}
}

func TestEditAndRemoveMissingID(t *testing.T) {
	svc := newTestService()
	var notFound domain.NotFoundError
	if err := svc.EditProduct(context.Background(), "ghost", RecordFields{Name: "x"}); !errors.As(err, &notFound) {
		t.Fatalf("edit err = %v, want NotFoundError", err)
	}
	if err := svc.RemoveProduct(context.Background(), "ghost"); !errors.As(err, &notFound) {
		t.Fatalf("remove err = %v, want NotFoundError", err)
	}
}

func TestRemoveDeletesRecord(t *testing.T) {
	svc := newTestService()
	id, _ := svc.AddUpcomingGenericProduct(context.Background(), RecordFields{
		Name:         "cetirizine",
		ExpectedDate: timePtr(time.Now().Add(48 * time.Hour)),
	})
	if err := svc.RemoveUpcomingGenericProduct(context.Background(), id); err != nil {
		t.Fatalf("remove: %v", err)
	}
	records, _ := svc.ListUpcomingGenericProducts(context.Background())
	if len(records) != 0 {
		t.Fatalf("records = %+v", records)
	}
}

func TestGenericOperationsRejectUnknownCollection(t *testing.T) {
	svc := newTestService()
	var unknown domain.UnknownCollectionError
	if _, err := svc.List(context.Background(), "widgets"); !errors.As(err, &unknown) {
		t.Fatalf("list err = %v", err)
	}
	if _, err := svc.Add(context.Background(), "widgets", RecordFields{Name: "x"}); !errors.As(err, &unknown) {
		t.Fatalf("add err = %v", err)
	}
	if err := svc.Edit(context.Background(), "widgets", "id", RecordFields{Name: "x"}); !errors.As(err, &unknown) {
		t.Fatalf("edit err = %v", err)
	}
	if err := svc.Remove(context.Background(), "widgets", "id"); !errors.As(err, &unknown) {
		t.Fatalf("remove err = %v", err)
	}
}

func TestListAllCoversEveryCollection(t *testing.T) {
	svc := newTestService()
	if _, err := svc.AddProduct(context.Background(), RecordFields{Name: "branded"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	all, err := svc.ListAll(context.Background())
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != len(domain.Collections()) {
		t.Fatalf("collections = %d, want %d", len(all), len(domain.Collections()))
	}
	if len(all[domain.CollectionProducts]) != 1 {
		t.Fatalf("products = %+v", all[domain.CollectionProducts])
	}
}

func TestMetricsObserveSuccessAndFailure(t *testing.T) {
	metrics := &recordingMetrics{}
	svc := newTestService(WithMetrics(metrics))

	if _, err := svc.AddProduct(context.Background(), RecordFields{Name: "ok"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	_ = svc.RemoveProduct(context.Background(), "ghost")

	metrics.mu.Lock()
	defer metrics.mu.Unlock()
	if len(metrics.observed) != 2 {
		t.Fatalf("observed = %v", metrics.observed)
	}
	if len(metrics.failures) != 1 || metrics.failures[0] != "remove_product" {
		t.Fatalf("failures = %v", metrics.failures)
	}
}

func TestOpenPersistentStoreMemoryDriver(t *testing.T) {
	t.Setenv(EnvStorageDriver, StorageDriverMemory)
	store, err := OpenPersistentStore(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, ok := store.(*memory.Store); !ok {
		t.Fatalf("store type = %T", store)
	}
}

func TestOpenPersistentStoreUnknownDriver(t *testing.T) {
	t.Setenv(EnvStorageDriver, "clay-tablet")
	if _, err := OpenPersistentStore(context.Background()); err == nil {
		t.Fatalf("unknown driver accepted")
	}
}

func timePtr(t time.Time) *time.Time { return &t }
