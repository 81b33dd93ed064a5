package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/brandreg/crm-api/internal/core/domain"
)

func TestStore_SaveAndOpen(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	ref, err := store.Save(context.Background(), "receipt.pdf", strings.NewReader("pdf-bytes"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasSuffix(ref, ".pdf") {
		t.Errorf("expected original extension preserved, got %q", ref)
	}
	if strings.Contains(ref, "receipt") {
		t.Errorf("client-supplied name must not leak into the reference, got %q", ref)
	}

	f, err := store.Open(ref)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	data, _ := io.ReadAll(f)
	if string(data) != "pdf-bytes" {
		t.Errorf("round trip mismatch: %q", data)
	}
}

func TestStore_DistinctReferences(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	a, _ := store.Save(context.Background(), "doc.pdf", strings.NewReader("a"))
	b, _ := store.Save(context.Background(), "doc.pdf", strings.NewReader("b"))
	if a == b {
		t.Error("same input name must still yield distinct references")
	}
}

func TestStore_OpenMissing(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if _, err := store.Open("nope.pdf"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
}
