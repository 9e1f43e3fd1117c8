package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bookforge/cover-service/internal/model"
)

// setupTestDB creates a temporary SQLite database for testing, cleaned up
// automatically when the test finishes.
func setupTestDB(t *testing.T) CoverRepository {
	t.Helper()

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	db, err := NewDatabase(dbPath)
	if err != nil {
		t.Fatalf("creating test database: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
		os.Remove(dbPath)
	})

	return NewCoverRepository(db)
}

func TestCoverRepository_CreateAndGet(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	cover := &model.Cover{
		Digest: "abc123",
		Class:  model.ClassPaperback,
		Title:  "A Field Guide to Covers",
		Author: "R. Binder",
		Status: model.StatusPending,
	}

	if err := repo.Create(ctx, cover); err != nil {
		t.Fatalf("creating cover: %v", err)
	}
	if cover.ID == 0 {
		t.Error("expected cover ID to be set after create")
	}

	got, err := repo.GetByDigest(ctx, "abc123")
	if err != nil {
		t.Fatalf("getting cover: %v", err)
	}
	if got.Class != model.ClassPaperback {
		t.Errorf("expected class paperback, got %s", got.Class)
	}
	if got.Title != "A Field Guide to Covers" {
		t.Errorf("unexpected title %q", got.Title)
	}
	if got.Status != model.StatusPending {
		t.Errorf("expected status pending, got %s", got.Status)
	}
}

func TestCoverRepository_GetByDigest_NotFound(t *testing.T) {
	repo := setupTestDB(t)

	_, err := repo.GetByDigest(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCoverRepository_DigestUnique(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	cover := &model.Cover{Digest: "dup", Class: model.ClassDigital, Status: model.StatusPending}
	if err := repo.Create(ctx, cover); err != nil {
		t.Fatalf("creating cover: %v", err)
	}

	again := &model.Cover{Digest: "dup", Class: model.ClassDigital, Status: model.StatusPending}
	if err := repo.Create(ctx, again); err == nil {
		t.Error("expected unique constraint violation on duplicate digest")
	}
}

func TestCoverRepository_SetReady(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	cover := &model.Cover{Digest: "ready1", Class: model.ClassDigital, Status: model.StatusPending}
	if err := repo.Create(ctx, cover); err != nil {
		t.Fatalf("creating cover: %v", err)
	}

	if err := repo.SetReady(ctx, "ready1", "jpg", 12345, "trim off catalog"); err != nil {
		t.Fatalf("setting ready: %v", err)
	}

	got, err := repo.GetByDigest(ctx, "ready1")
	if err != nil {
		t.Fatalf("getting cover: %v", err)
	}
	if got.Status != model.StatusReady {
		t.Errorf("expected status ready, got %s", got.Status)
	}
	if got.Format != "jpg" || got.ByteSize != 12345 {
		t.Errorf("unexpected artifact facts: format=%q size=%d", got.Format, got.ByteSize)
	}
	if got.Warning == nil || *got.Warning != "trim off catalog" {
		t.Errorf("expected warning to be stored, got %v", got.Warning)
	}
	if got.ErrorMessage != nil {
		t.Errorf("expected error message cleared, got %v", *got.ErrorMessage)
	}
}

func TestCoverRepository_SetReadyWithoutWarning(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	cover := &model.Cover{Digest: "ready2", Class: model.ClassDigital, Status: model.StatusPending}
	if err := repo.Create(ctx, cover); err != nil {
		t.Fatalf("creating cover: %v", err)
	}
	if err := repo.SetReady(ctx, "ready2", "jpg", 1, ""); err != nil {
		t.Fatalf("setting ready: %v", err)
	}

	got, err := repo.GetByDigest(ctx, "ready2")
	if err != nil {
		t.Fatalf("getting cover: %v", err)
	}
	if got.Warning != nil {
		t.Errorf("expected no warning, got %q", *got.Warning)
	}
}

func TestCoverRepository_SetFailed(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	cover := &model.Cover{Digest: "bad1", Class: model.ClassHardback, Status: model.StatusPending}
	if err := repo.Create(ctx, cover); err != nil {
		t.Fatalf("creating cover: %v", err)
	}
	if err := repo.SetFailed(ctx, "bad1", "render failure: encoding jpeg"); err != nil {
		t.Fatalf("setting failed: %v", err)
	}

	got, err := repo.GetByDigest(ctx, "bad1")
	if err != nil {
		t.Fatalf("getting cover: %v", err)
	}
	if got.Status != model.StatusFailed {
		t.Errorf("expected status failed, got %s", got.Status)
	}
	if got.ErrorMessage == nil || *got.ErrorMessage == "" {
		t.Error("expected error message to be stored")
	}
}

func TestCoverRepository_CountsAndListRecent(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	seeds := []struct {
		digest string
		class  model.CoverClass
		status model.CoverStatus
	}{
		{"d1", model.ClassDigital, model.StatusReady},
		{"d2", model.ClassPaperback, model.StatusPending},
		{"d3", model.ClassPaperback, model.StatusReady},
		{"d4", model.ClassHardback, model.StatusFailed},
	}
	for _, s := range seeds {
		cover := &model.Cover{Digest: s.digest, Class: s.class, Status: s.status}
		if err := repo.Create(ctx, cover); err != nil {
			t.Fatalf("creating cover %s: %v", s.digest, err)
		}
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("counting covers: %v", err)
	}
	if count != 4 {
		t.Errorf("expected 4 covers, got %d", count)
	}

	ready, err := repo.CountByStatus(ctx, model.StatusReady)
	if err != nil {
		t.Fatalf("counting ready covers: %v", err)
	}
	if ready != 2 {
		t.Errorf("expected 2 ready covers, got %d", ready)
	}

	paperbacks, err := repo.CountByClass(ctx, model.ClassPaperback)
	if err != nil {
		t.Fatalf("counting paperbacks: %v", err)
	}
	if paperbacks != 2 {
		t.Errorf("expected 2 paperbacks, got %d", paperbacks)
	}

	recent, err := repo.ListRecent(ctx, 3)
	if err != nil {
		t.Fatalf("listing recent covers: %v", err)
	}
	if len(recent) != 3 {
		t.Errorf("expected 3 recent covers, got %d", len(recent))
	}
}
