package report

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"medghor/internal/blob"
	"medghor/pkg/domain"
)

func TestFileNameEmbedsLocalTimestamp(t *testing.T) {
	// 2026-02-28 16:15 UTC is 21:45 IST.
	now := time.Date(2026, time.February, 28, 16, 15, 0, 0, time.UTC)
	got := FileName(now)
	want := "medghor_product_summary(28-02-2026,09,45(PM)).pdf"
	if got != want {
		t.Fatalf("FileName = %q, want %q", got, want)
	}
}

func TestFileNameMorning(t *testing.T) {
	// 2026-02-28 02:00 UTC is 07:30 IST.
	now := time.Date(2026, time.February, 28, 2, 0, 0, 0, time.UTC)
	got := FileName(now)
	want := "medghor_product_summary(28-02-2026,07,30(AM)).pdf"
	if got != want {
		t.Fatalf("FileName = %q, want %q", got, want)
	}
}

func sampleCollections() map[domain.Collection][]domain.Record {
	expected := time.Date(2026, time.April, 10, 0, 0, 0, 0, time.UTC)
	earlier := expected.AddDate(0, 0, -3)
	upcoming := domain.Record{Name: "azithromycin 500", ExpectedDate: &expected}
	upcoming.ID = "u1"
	sooner := domain.Record{Name: "cefixime 200", ExpectedDate: &earlier}
	sooner.ID = "u2"
	current := domain.Record{Name: "paracetamol 650"}
	current.ID = "p1"
	current.CreatedAt = time.Date(2026, time.January, 5, 10, 0, 0, 0, time.UTC)
	return map[domain.Collection][]domain.Record{
		domain.CollectionProducts:         {current},
		domain.CollectionUpcomingProducts: {upcoming, sooner},
	}
}

func TestBuildProducesPDF(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	if err := Build(&buf, sampleCollections(), now); err != nil {
		t.Fatalf("build: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Fatalf("output does not look like a PDF (first bytes %q)", buf.Bytes()[:8])
	}
	if buf.Len() < 1000 {
		t.Fatalf("suspiciously small PDF: %d bytes", buf.Len())
	}
}

func TestBuildDoesNotMutateInput(t *testing.T) {
	collections := sampleCollections()
	first := collections[domain.CollectionUpcomingProducts][0].ID
	var buf bytes.Buffer
	if err := Build(&buf, collections, time.Now()); err != nil {
		t.Fatalf("build: %v", err)
	}
	if collections[domain.CollectionUpcomingProducts][0].ID != first {
		t.Fatalf("input collection order changed")
	}
}

func TestBuildHandlesEmptyCollections(t *testing.T) {
	var buf bytes.Buffer
	if err := Build(&buf, nil, time.Now()); err != nil {
		t.Fatalf("build with no records: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatalf("empty collections produced no document")
	}
}

type staticSource struct {
	collections map[domain.Collection][]domain.Record
	err         error
}

func (s staticSource) ListAll(context.Context) (map[domain.Collection][]domain.Record, error) {
	return s.collections, s.err
}

func waitForTerminal(t *testing.T, w *Worker, id string) Job {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		record, ok := w.Get(id)
		if !ok {
			t.Fatalf("job %s vanished", id)
		}
		if record.Status == StatusSucceeded || record.Status == StatusFailed {
			return record
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job %s did not finish", id)
	return Job{}
}

func TestWorkerGeneratesAndStoresReport(t *testing.T) {
	store := blob.NewMemory()
	w := NewWorker(staticSource{collections: sampleCollections()}, store)
	w.Start()
	defer func() { _ = w.Stop(context.Background()) }()

	queued, err := w.Enqueue(context.Background(), "office")
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if queued.Status != StatusQueued {
		t.Fatalf("status = %q, want %q", queued.Status, StatusQueued)
	}

	record := waitForTerminal(t, w, queued.ID)
	if record.Status != StatusSucceeded {
		t.Fatalf("status = %q (error %q), want succeeded", record.Status, record.Error)
	}
	if record.BlobKey == "" || record.FileName == "" || record.SizeBytes == 0 {
		t.Fatalf("incomplete record: %+v", record)
	}
	info, rc, err := store.Get(context.Background(), record.BlobKey)
	if err != nil {
		t.Fatalf("stored artifact missing: %v", err)
	}
	defer func() { _ = rc.Close() }()
	if info.ContentType != "application/pdf" {
		t.Fatalf("content type = %q", info.ContentType)
	}
	if info.Metadata["filename"] != record.FileName {
		t.Fatalf("filename metadata = %q, want %q", info.Metadata["filename"], record.FileName)
	}
}

func TestWorkerMarksFailureWhenSourceErrors(t *testing.T) {
	w := NewWorker(staticSource{err: errors.New("store down")}, blob.NewMemory())
	w.Start()
	defer func() { _ = w.Stop(context.Background()) }()

	queued, err := w.Enqueue(context.Background(), "office")
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	record := waitForTerminal(t, w, queued.ID)
	if record.Status != StatusFailed {
		t.Fatalf("status = %q, want failed", record.Status)
	}
	if record.Error == "" {
		t.Fatalf("failed record carries no error message")
	}
}

func TestWorkerGetUnknownID(t *testing.T) {
	w := NewWorker(staticSource{}, blob.NewMemory())
	if _, ok := w.Get("missing"); ok {
		t.Fatalf("unknown id reported as present")
	}
}
