package archive

import (
	"context"
	"errors"
	"testing"

	"github.com/newthinker/taengine/internal/core"
)

func TestLocalFS_ImplementsStorage(t *testing.T) {
	var _ Storage = (*LocalFS)(nil)
}

func newLocal(t *testing.T) *LocalFS {
	t.Helper()
	fs, err := NewLocalFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalFS: %v", err)
	}
	return fs
}

func TestLocalFS_WriteRead(t *testing.T) {
	fs := newLocal(t)
	ctx := context.Background()
	data := []byte(`{"verdict":"buy"}`)

	if err := fs.Write(ctx, "reports/600519/2024-03-01/r1.json", data); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := fs.Read(ctx, "reports/600519/2024-03-01/r1.json")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("got %q, want %q", got, data)
	}
}

func TestLocalFS_ReadMissing(t *testing.T) {
	fs := newLocal(t)
	_, err := fs.Read(context.Background(), "reports/none.json")
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLocalFS_Exists(t *testing.T) {
	fs := newLocal(t)
	ctx := context.Background()

	exists, _ := fs.Exists(ctx, "nonexistent.json")
	if exists {
		t.Error("expected false for nonexistent key")
	}

	fs.Write(ctx, "exists.json", []byte("{}"))
	exists, _ = fs.Exists(ctx, "exists.json")
	if !exists {
		t.Error("expected true for existing key")
	}
}

func TestLocalFS_List(t *testing.T) {
	fs := newLocal(t)
	ctx := context.Background()

	fs.Write(ctx, "reports/AAPL/2024-01-02/b.json", []byte("b"))
	fs.Write(ctx, "reports/AAPL/2024-01-02/a.json", []byte("a"))
	fs.Write(ctx, "reports/MSFT/2024-01-02/c.json", []byte("c"))

	keys, err := fs.List(ctx, SymbolPrefix("AAPL"))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"reports/AAPL/2024-01-02/a.json", "reports/AAPL/2024-01-02/b.json"}
	if len(keys) != len(want) {
		t.Fatalf("got %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("keys[%d] = %q, want %q", i, keys[i], want[i])
		}
	}

	empty, err := fs.List(ctx, "reports/NONE")
	if err != nil || len(empty) != 0 {
		t.Errorf("List of missing prefix = %v, %v", empty, err)
	}
}

func TestLocalFS_Delete(t *testing.T) {
	fs := newLocal(t)
	ctx := context.Background()

	fs.Write(ctx, "delete.json", []byte("{}"))
	if err := fs.Delete(ctx, "delete.json"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	exists, _ := fs.Exists(ctx, "delete.json")
	if exists {
		t.Error("key should be deleted")
	}
	if err := fs.Delete(ctx, "delete.json"); err != nil {
		t.Errorf("deleting a missing key should succeed, got %v", err)
	}
}

func TestLocalFS_RejectsEscapingKeys(t *testing.T) {
	fs := newLocal(t)
	err := fs.Write(context.Background(), "../outside.json", []byte("x"))
	if !errors.Is(err, core.ErrArchiveFailed) {
		t.Errorf("expected ErrArchiveFailed, got %v", err)
	}
}
