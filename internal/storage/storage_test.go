package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/desertthunder/flix/internal/shared"
)

func exercise(t *testing.T, s Storage) {
	t.Helper()

	if _, ok, err := s.Load(UserKey); err != nil || ok {
		t.Fatalf("expected empty storage, got ok=%v err=%v", ok, err)
	}

	if err := s.Save(UserKey, `{"Username":"ann"}`); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := s.Save(TokenKey, "tok"); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := s.Save(TokenKey, "tok2"); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}

	v, ok, err := s.Load(TokenKey)
	if err != nil || !ok || v != "tok2" {
		t.Errorf("expected tok2, got %q ok=%v err=%v", v, ok, err)
	}

	if err := s.Remove(TokenKey); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if err := s.Remove(TokenKey); err != nil {
		t.Errorf("removing an absent key should succeed: %v", err)
	}
	if _, ok, _ := s.Load(TokenKey); ok {
		t.Error("token should be gone")
	}
	if v, ok, _ := s.Load(UserKey); !ok || v != `{"Username":"ann"}` {
		t.Errorf("user should survive token removal, got %q", v)
	}
}

func TestMemory(t *testing.T) {
	t.Run("Contract", func(t *testing.T) {
		exercise(t, NewMemory())
	})

	t.Run("Injected Errors", func(t *testing.T) {
		m := NewMemory()
		m.SaveErr = errors.New("disk full")
		if err := m.Save(UserKey, "x"); err == nil {
			t.Error("expected save error")
		}
		if m.Keys() != 0 {
			t.Error("failed save should not store a value")
		}
	})
}

func TestFile(t *testing.T) {
	t.Run("Contract", func(t *testing.T) {
		exercise(t, NewFile(filepath.Join(t.TempDir(), "nested", "session.json")))
	})

	t.Run("Survives Reopen", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "session.json")
		if err := NewFile(path).Save(TokenKey, "tok"); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		v, ok, err := NewFile(path).Load(TokenKey)
		if err != nil || !ok || v != "tok" {
			t.Errorf("expected tok after reopen, got %q ok=%v err=%v", v, ok, err)
		}
	})

	t.Run("Corrupt File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "session.json")
		if err := os.WriteFile(path, []byte("{nope"), 0600); err != nil {
			t.Fatal(err)
		}

		f := NewFile(path)
		if _, _, err := f.Load(UserKey); err == nil {
			t.Error("expected decode error")
		}

		if err := f.Save(TokenKey, "tok"); err != nil {
			t.Fatalf("save should replace a corrupt file: %v", err)
		}
		if v, ok, err := f.Load(TokenKey); err != nil || !ok || v != "tok" {
			t.Errorf("expected tok, got %q ok=%v err=%v", v, ok, err)
		}
	})
}

func TestOpen(t *testing.T) {
	t.Run("Memory", func(t *testing.T) {
		cfg := shared.DefaultConfig()
		cfg.Storage.Driver = shared.StorageMemory
		s, closeFn, err := Open(cfg)
		if err != nil {
			t.Fatalf("open failed: %v", err)
		}
		defer closeFn()
		if _, ok := s.(*Memory); !ok {
			t.Errorf("expected *Memory, got %T", s)
		}
	})

	t.Run("File", func(t *testing.T) {
		cfg := shared.DefaultConfig()
		cfg.Storage.Driver = shared.StorageFile
		cfg.Storage.Path = filepath.Join(t.TempDir(), "s.json")
		s, _, err := Open(cfg)
		if err != nil {
			t.Fatalf("open failed: %v", err)
		}
		exercise(t, s)
	})

	t.Run("SQLite", func(t *testing.T) {
		cfg := shared.DefaultConfig()
		cfg.Storage.Driver = shared.StorageSQLite
		cfg.Database.Path = filepath.Join(t.TempDir(), "flix.db")
		s, closeFn, err := Open(cfg)
		if err != nil {
			t.Fatalf("open failed: %v", err)
		}
		defer closeFn()
		exercise(t, s)
	})

	t.Run("Unknown Driver", func(t *testing.T) {
		cfg := shared.DefaultConfig()
		cfg.Storage.Driver = "etcd"
		if _, _, err := Open(cfg); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}
