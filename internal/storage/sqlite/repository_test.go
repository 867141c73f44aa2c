package sqlite

import (
	"path/filepath"
	"testing"

	"kharcha/internal/storage/storagetest"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(filepath.Join(t.TempDir(), "kharcha.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestRepository(t *testing.T) {
	storagetest.Run(t, newTestRepository(t))
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kharcha.db")
	repo, err := New(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	repo.Close()

	if err := RunMigrations(DSN(path)); err != nil {
		t.Fatalf("second migration run: %v", err)
	}
}

func TestDSN(t *testing.T) {
	got := DSN("/tmp/x.db")
	want := "file:/tmp/x.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
