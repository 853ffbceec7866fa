package migrations

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/orgball2608/reel-studio/pkg/errors"
)

func TestCollectFindsEmbeddedMigrations(t *testing.T) {
	migrations, err := Collect()
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	want := []int64{20250603091500, 20250603092000}
	if len(migrations) != len(want) {
		t.Fatalf("got %d migrations, want %d", len(migrations), len(want))
	}
	for i, m := range migrations {
		if m.Version != want[i] {
			t.Errorf("migration %d version %d, want %d", i, m.Version, want[i])
		}
	}
}

func TestCreateWritesGoSkeleton(t *testing.T) {
	dir := t.TempDir()
	if err := Create(dir, "add_tags"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || !strings.HasSuffix(entries[0].Name(), "_add_tags.go") {
		t.Fatalf("unexpected files %v", entries)
	}
	body, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(body), "package migrations") {
		t.Fatalf("skeleton is not a Go migration:\n%s", body)
	}

	if err := Create(dir, ""); !errors.Is(err, errors.ErrInvalidInput) {
		t.Fatalf("empty name: %v", err)
	}
}

func TestRunRejectsCreate(t *testing.T) {
	if err := Run(context.Background(), nil, "create", "x"); !errors.Is(err, errors.ErrInvalidInput) {
		t.Fatalf("want ErrInvalidInput, got %v", err)
	}
}
