package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func backends(t *testing.T) map[string]func(t *testing.T, path string) KV {
	t.Helper()
	return map[string]func(t *testing.T, path string) KV{
		BackendSQLite: func(t *testing.T, path string) KV {
			kv, err := OpenSQLite(path)
			if err != nil {
				t.Fatalf("OpenSQLite failed: %v", err)
			}
			return kv
		},
		BackendJSON: func(t *testing.T, path string) KV {
			kv, err := OpenFile(path)
			if err != nil {
				t.Fatalf("OpenFile failed: %v", err)
			}
			return kv
		},
	}
}

func TestKV_GetMissing(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			kv := open(t, filepath.Join(t.TempDir(), "slots"))
			t.Cleanup(func() { kv.Close() })

			v, ok, err := kv.Get("tasks")
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if ok || v != "" {
				t.Errorf("expected missing slot, got %q ok=%v", v, ok)
			}
		})
	}
}

func TestKV_SetOverwritesAndSurvivesReopen(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "slots")
			kv := open(t, path)

			if err := kv.Set("tasks", `[1]`); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			if err := kv.Set("tasks", `[1,2]`); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			if err := kv.Set("other", `x`); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			if err := kv.Close(); err != nil {
				t.Fatalf("Close failed: %v", err)
			}

			reopened := open(t, path)
			t.Cleanup(func() { reopened.Close() })

			v, ok, err := reopened.Get("tasks")
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if !ok || v != `[1,2]` {
				t.Errorf("expected last write to win, got %q ok=%v", v, ok)
			}
			v, _, _ = reopened.Get("other")
			if v != "x" {
				t.Errorf("expected other slot untouched, got %q", v)
			}
		})
	}
}

func TestFile_CorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slots.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	kv, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	if _, _, err := kv.Get("tasks"); !errors.Is(err, ErrCorrupt) {
		t.Errorf("expected ErrCorrupt, got %v", err)
	}
}

func TestFile_SetReplacesCorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slots.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	kv, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	if err := kv.Set("tasks", "[]"); err != nil {
		t.Fatalf("Set failed on corrupt document: %v", err)
	}

	reopened, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	v, ok, err := reopened.Get("tasks")
	if err != nil || !ok || v != "[]" {
		t.Errorf("expected healed slot, got %q ok=%v err=%v", v, ok, err)
	}
}

func TestOpenSQLite_EmptyPath(t *testing.T) {
	if _, err := OpenSQLite(""); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	if _, ok, _ := m.Get("tasks"); ok {
		t.Error("expected empty memory store")
	}
	m.Set("tasks", "a")
	m.Set("tasks", "b")
	if v, ok, _ := m.Get("tasks"); !ok || v != "b" {
		t.Errorf("expected b, got %q", v)
	}
	if m.Writes != 2 {
		t.Errorf("expected 2 writes, got %d", m.Writes)
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		backend string
		want    any
		wantErr bool
	}{
		{backend: "", want: &SQLite{}},
		{backend: "sqlite", want: &SQLite{}},
		{backend: "JSON", want: &File{}},
		{backend: "memory", want: &Memory{}},
		{backend: "redis", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			kv, err := Open(tt.backend, filepath.Join(dir, tt.backend+"slots"))
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownBackend) {
					t.Errorf("expected ErrUnknownBackend, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			t.Cleanup(func() { kv.Close() })
			switch tt.want.(type) {
			case *SQLite:
				if _, ok := kv.(*SQLite); !ok {
					t.Errorf("expected *SQLite, got %T", kv)
				}
			case *File:
				if _, ok := kv.(*File); !ok {
					t.Errorf("expected *File, got %T", kv)
				}
			case *Memory:
				if _, ok := kv.(*Memory); !ok {
					t.Errorf("expected *Memory, got %T", kv)
				}
			}
		})
	}
}
