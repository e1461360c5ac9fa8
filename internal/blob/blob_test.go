package blob

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
)

func testStoreRoundTrip(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	payload := []byte("%PDF-1.4 test artifact")

	info, err := store.Put(ctx, "reports/abc.pdf", bytes.NewReader(payload), PutOptions{
		ContentType: "application/pdf",
		Metadata:    map[string]string{"filename": "summary.pdf"},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != int64(len(payload)) {
		t.Fatalf("put size = %d, want %d", info.Size, len(payload))
	}

	if _, err := store.Put(ctx, "reports/abc.pdf", bytes.NewReader(payload), PutOptions{}); err == nil {
		t.Fatalf("second put on same key succeeded, want error")
	}

	got, rc, err := store.Get(ctx, "reports/abc.pdf")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Fatalf("get returned %d bytes, want %d", len(data), len(payload))
	}
	if got.ContentType != "application/pdf" {
		t.Fatalf("content type = %q", got.ContentType)
	}
	if got.Metadata["filename"] != "summary.pdf" {
		t.Fatalf("metadata not preserved: %v", got.Metadata)
	}

	infos, err := store.List(ctx, "reports/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 1 || infos[0].Key != "reports/abc.pdf" {
		t.Fatalf("list = %+v", infos)
	}

	removed, err := store.Delete(ctx, "reports/abc.pdf")
	if err != nil || !removed {
		t.Fatalf("delete = (%v, %v), want (true, nil)", removed, err)
	}
	removed, err = store.Delete(ctx, "reports/abc.pdf")
	if err != nil || removed {
		t.Fatalf("second delete = (%v, %v), want (false, nil)", removed, err)
	}
	if _, _, err := store.Get(ctx, "reports/abc.pdf"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("get after delete = %v, want not-exist", err)
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	testStoreRoundTrip(t, NewMemory())
}

func TestFilesystemStoreRoundTrip(t *testing.T) {
	store, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("new filesystem store: %v", err)
	}
	testStoreRoundTrip(t, store)
}

func TestFilesystemStoreRejectsTraversalKeys(t *testing.T) {
	store, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("new filesystem store: %v", err)
	}
	for _, key := range []string{"", "  ", "../escape", "/absolute", "a/../../b"} {
		if _, err := store.Put(context.Background(), key, strings.NewReader("x"), PutOptions{}); err == nil {
			t.Errorf("key %q accepted, want rejection", key)
		}
	}
}

func TestOpenDefaultsToFilesystem(t *testing.T) {
	t.Setenv(EnvDriver, "")
	t.Setenv(EnvFSRoot, t.TempDir())
	store, err := Open(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if store.Driver() != DriverFilesystem {
		t.Fatalf("driver = %s, want %s", store.Driver(), DriverFilesystem)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	t.Setenv(EnvDriver, "tape")
	if _, err := Open(context.Background()); err == nil {
		t.Fatalf("unknown driver accepted")
	}
}
