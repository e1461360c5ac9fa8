package domain

import (
	"errors"
	"testing"
	"time"
)

func TestCollectionsOrderIsFixed(t *testing.T) {
	want := []Collection{
		CollectionProducts,
		CollectionGenericProducts,
		CollectionUpcomingProducts,
		CollectionUpcomingGenericProducts,
	}
	got := Collections()
	if len(got) != len(want) {
		t.Fatalf("collections = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestKnown(t *testing.T) {
	for _, c := range Collections() {
		if !Known(c) {
			t.Errorf("Known(%q) = false", c)
		}
	}
	for _, c := range []Collection{"", "widgets", "Products", "upcoming"} {
		if Known(c) {
			t.Errorf("Known(%q) = true", c)
		}
	}
}

func TestScheduled(t *testing.T) {
	if CollectionProducts.Scheduled() || CollectionGenericProducts.Scheduled() {
		t.Fatalf("current collections report as scheduled")
	}
	if !CollectionUpcomingProducts.Scheduled() || !CollectionUpcomingGenericProducts.Scheduled() {
		t.Fatalf("upcoming collections report as unscheduled")
	}
}

func TestRecordCloneIsDeep(t *testing.T) {
	expected := time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)
	original := Record{Name: "cefixime", ExpectedDate: &expected}
	original.ID = "r1"

	clone := original.Clone()
	*clone.ExpectedDate = clone.ExpectedDate.AddDate(1, 0, 0)
	if !original.ExpectedDate.Equal(expected) {
		t.Fatalf("clone shares expected date with original")
	}
}

func TestStoreUnavailableUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := StoreUnavailableError{Op: "persist", Err: cause}
	if !errors.Is(err, cause) {
		t.Fatalf("cause not reachable via errors.Is")
	}
}
