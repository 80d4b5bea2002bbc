package history_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/NamanBalaji/fget/internal/history"
	"github.com/NamanBalaji/fget/internal/status"
)

func newTestRepository(t *testing.T) *history.Repository {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	repo, err := history.NewRepository(dbPath)
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	return repo
}

func TestSaveAndFindRecord(t *testing.T) {
	repo := newTestRepository(t)

	record := &history.Record{
		ID:        uuid.New(),
		URL:       "https://example.com/file.bin",
		Filename:  "file.bin",
		TotalSize: 4096,
		Received:  4096,
		Status:    status.Completed,
		StartTime: time.Now().Add(-time.Minute),
		EndTime:   time.Now(),
	}

	if err := repo.Save(record); err != nil {
		t.Fatalf("failed to save record: %v", err)
	}

	found, err := repo.Find(record.ID)
	if err != nil {
		t.Fatalf("failed to find record: %v", err)
	}

	if found.URL != record.URL {
		t.Errorf("expected URL %s, got %s", record.URL, found.URL)
	}
	if found.Received != record.Received {
		t.Errorf("expected %d received bytes, got %d", record.Received, found.Received)
	}
	if found.Status != status.Completed {
		t.Errorf("expected completed status, got %s", status.String(found.Status))
	}
}

func TestFindMissingRecord(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.Find(uuid.New())
	if !errors.Is(err, history.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestFindAllRecords(t *testing.T) {
	repo := newTestRepository(t)

	records := []*history.Record{
		{ID: uuid.New(), URL: "https://example.com/a", Status: status.Completed},
		{ID: uuid.New(), URL: "https://example.com/b", Status: status.Failed, ErrorMessage: "transfer interrupted"},
		{ID: uuid.New(), URL: "https://example.com/c", Status: status.Completed},
	}

	for _, r := range records {
		if err := repo.Save(r); err != nil {
			t.Fatalf("failed to save record %v: %v", r.ID, err)
		}
	}

	found, err := repo.FindAll()
	if err != nil {
		t.Fatalf("failed to find all records: %v", err)
	}

	if len(found) != len(records) {
		t.Errorf("expected %d records, got %d", len(records), len(found))
	}
}

func TestDeleteRecord(t *testing.T) {
	repo := newTestRepository(t)

	record := &history.Record{ID: uuid.New(), URL: "https://example.com/gone"}
	if err := repo.Save(record); err != nil {
		t.Fatalf("failed to save record: %v", err)
	}

	if err := repo.Delete(record.ID); err != nil {
		t.Fatalf("failed to delete record: %v", err)
	}

	if _, err := repo.Find(record.ID); !errors.Is(err, history.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound after delete, got %v", err)
	}

	// Deleting again is a no-op.
	if err := repo.Delete(record.ID); err != nil {
		t.Errorf("deleting a missing record should not fail: %v", err)
	}
}

func TestSaveOverwritesExistingRecord(t *testing.T) {
	repo := newTestRepository(t)

	id := uuid.New()

	if err := repo.Save(&history.Record{ID: id, URL: "https://example.com/v1", Status: status.Active}); err != nil {
		t.Fatalf("failed to save record: %v", err)
	}
	if err := repo.Save(&history.Record{ID: id, URL: "https://example.com/v1", Status: status.Completed, Received: 10}); err != nil {
		t.Fatalf("failed to overwrite record: %v", err)
	}

	found, err := repo.Find(id)
	if err != nil {
		t.Fatalf("failed to find record: %v", err)
	}
	if found.Status != status.Completed || found.Received != 10 {
		t.Errorf("expected overwritten record, got %+v", found)
	}
}
