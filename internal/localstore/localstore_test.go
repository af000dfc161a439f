package localstore

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	in := map[string]int{"a": 1, "b": 2}
	if err := s.Put("device-1", "cart", in); err != nil {
		t.Fatalf("put: %v", err)
	}
	var out map[string]int
	if !s.Get("device-1", "cart", &out) {
		t.Fatal("expected value present")
	}
	if out["a"] != 1 || out["b"] != 2 {
		t.Fatalf("unexpected value: %v", out)
	}
}

func TestGetAbsent(t *testing.T) {
	s := newTestStore(t)
	var out []string
	if s.Get("device-1", "missing", &out) {
		t.Fatal("expected absent value")
	}
}

func TestGetCorruptValueReadsAsAbsent(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "device-1"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "device-1", "cart.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt: %v", err)
	}
	var out map[string]int
	if s.Get("device-1", "cart", &out) {
		t.Fatal("corrupt value should read as absent")
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	if err := s.Put("device-1", "cart", []int{1}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Delete("device-1", "cart"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	var out []int
	if s.Get("device-1", "cart", &out) {
		t.Fatal("expected value deleted")
	}
	if err := s.Delete("device-1", "cart"); err != nil {
		t.Fatalf("deleting absent value should not error: %v", err)
	}
}

func TestTraversalRejected(t *testing.T) {
	s := newTestStore(t)
	if err := s.Put("../escape", "cart", []int{1}); err == nil {
		t.Fatal("expected traversal rejection")
	}
}
