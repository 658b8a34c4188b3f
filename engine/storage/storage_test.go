package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func exerciseStore(t *testing.T, s KeyValueStore) {
	t.Helper()
	if _, ok, err := s.Get("viewState"); ok || err != nil {
		t.Fatalf("Get(missing) = ok %t, err %v", ok, err)
	}
	if err := s.Set("viewState", `{"a":1}`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set("viewState", `{"a":2}`); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	v, ok, err := s.Get("viewState")
	if err != nil || !ok || v != `{"a":2}` {
		t.Errorf("Get = %q, %t, %v", v, ok, err)
	}
	for _, bad := range []string{"", "..", "a/b", `a\b`} {
		if err := s.Set(bad, "x"); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("Set(%q) = %v, want ErrInvalidKey", bad, err)
		}
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	exerciseStore(t, s)
	s.Delete("viewState")
	if _, ok, _ := s.Get("viewState"); ok {
		t.Error("value survived Delete")
	}
}

func TestFileStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	exerciseStore(t, s)

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "viewState.json" {
		names := []string{}
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory holds %v, want only viewState.json", names)
	}

	reopened, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if v, ok, _ := reopened.Get("viewState"); !ok || v != `{"a":2}` {
		t.Errorf("reopened Get = %q, %t", v, ok)
	}
}

func TestFileStoreNeedsDirectory(t *testing.T) {
	if _, err := NewFileStore(""); err == nil {
		t.Error("NewFileStore accepted an empty directory")
	}
}
