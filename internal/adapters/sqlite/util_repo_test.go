package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/af/internal/adapters/sqlite"
	"github.com/example/af/internal/fault"
	"github.com/example/af/internal/ports/secondary"
)

func TestUtilRepository_InsertAndGet(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewUtilRepository(testDB)
	ctx := context.Background()

	err := repo.Insert(ctx, &secondary.UtilRecord{
		ID:      "util-abc",
		Port:    4230,
		Pid:     100,
		Session: "af-util-4230",
	})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := repo.GetByID(ctx, "util-abc")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Port != 4230 || got.Session != "af-util-4230" {
		t.Errorf("unexpected record: %+v", got)
	}
	if _, err := time.Parse(time.RFC3339, got.CreatedAt); err != nil {
		t.Errorf("created_at not RFC3339: %q", got.CreatedAt)
	}
}

func TestUtilRepository_DuplicatePortConflicts(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewUtilRepository(testDB)
	ctx := context.Background()

	seedUtil(t, testDB, "util-a", 4230)
	err := repo.Insert(ctx, &secondary.UtilRecord{ID: "util-b", Port: 4230, Session: "af-util-4230b"})
	if !errors.Is(err, fault.ErrConflict) {
		t.Errorf("expected conflict, got %v", err)
	}
}

func TestUtilRepository_RemoveAndList(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewUtilRepository(testDB)
	ctx := context.Background()

	seedUtil(t, testDB, "util-a", 4230)
	seedUtil(t, testDB, "util-b", 4231)

	if err := repo.Remove(ctx, "util-a"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if err := repo.Remove(ctx, "util-a"); !errors.Is(err, fault.ErrNotFound) {
		t.Errorf("expected not found on second remove, got %v", err)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 1 || list[0].ID != "util-b" {
		t.Errorf("unexpected list: %+v", list)
	}
}
