package core

import (
	"context"
	"expvar"
	"testing"
	"time"
)

func TestExpvarMetricsRecorderAggregates(t *testing.T) {
	rec := NewExpvarMetricsRecorder("")
	ctx := context.Background()

	rec.Observe(ctx, "add_product", true, 5*time.Millisecond)
	rec.Observe(ctx, "add_product", false, 3*time.Millisecond)
	rec.Observe(ctx, "list_products", true, 2*time.Millisecond)
	rec.Observe(ctx, "", true, time.Second) // unnamed operations are dropped

	snap := rec.Snapshot()
	if got := snap.DurationsMS["add_product"]; got != 8 {
		t.Fatalf("add_product duration total = %v ms, want 8", got)
	}
	if got := snap.Results["add_product"]["success"]; got != 1 {
		t.Fatalf("add_product success count = %d, want 1", got)
	}
	if got := snap.Results["add_product"]["error"]; got != 1 {
		t.Fatalf("add_product error count = %d, want 1", got)
	}
	if got := snap.Results["list_products"]["success"]; got != 1 {
		t.Fatalf("list_products success count = %d, want 1", got)
	}
	if _, ok := snap.Results[""]; ok {
		t.Fatalf("unnamed operation recorded")
	}
	if snap.RecordedAt.IsZero() {
		t.Fatalf("snapshot missing timestamp")
	}
}

func TestExpvarMetricsRecorderPublishes(t *testing.T) {
	rec := NewExpvarMetricsRecorder("")
	if rec.Name() == "" {
		t.Fatalf("empty export name")
	}
	if expvar.Get(rec.Name()) == nil {
		t.Fatalf("recorder not published under %q", rec.Name())
	}
}

func TestExpvarMetricsRecorderDrivesService(t *testing.T) {
	rec := NewExpvarMetricsRecorder("")
	svc := newTestService(WithMetrics(rec))

	if _, err := svc.AddProduct(context.Background(), RecordFields{Name: "paracetamol"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	snap := rec.Snapshot()
	if got := snap.Results["add_product"]["success"]; got != 1 {
		t.Fatalf("service outcome not recorded: %+v", snap.Results)
	}
}
