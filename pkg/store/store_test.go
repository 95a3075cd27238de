package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aminofox/loopcast/pkg/catalog"
)

func TestLocalResolverExists(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "100"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "100", "abc.mp4"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	r, err := New(Config{Type: BackendLocal, BasePath: dir})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Close()

	ok, err := r.Exists(context.Background(), 100, catalog.Resource("abc.mp4"))
	if err != nil || !ok {
		t.Fatalf("Exists(abc.mp4) = %v, %v; want true, nil", ok, err)
	}

	ok, err = r.Exists(context.Background(), 100, catalog.Resource("missing.mp4"))
	if err != nil || ok {
		t.Fatalf("Exists(missing.mp4) = %v, %v; want false, nil", ok, err)
	}
}

func TestNewUnsupportedBackend(t *testing.T) {
	if _, err := New(Config{Type: "bogus"}); err == nil {
		t.Fatalf("expected error for unsupported backend")
	}
}
