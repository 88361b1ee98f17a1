package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// Helper function to create a temporary test database
func setupTestDB(t *testing.T) (*DBClient, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test_audiomatch.sqlite3")
	t.Setenv("AUDIOMATCH_DB_PATH", dbPath)

	client, err := NewDBClient()
	if err != nil {
		t.Fatalf("Failed to create test DB client: %v", err)
	}

	t.Cleanup(func() {
		client.Close()
	})

	return client, dbPath
}

func sampleRecord(score float64) *MatchRecord {
	return &MatchRecord{
		PathA:       "/tmp/a.wav",
		PathB:       "/tmp/b.wav",
		LabelA:      "Artist - Song A",
		LabelB:      "b.wav",
		DigestA:     "00000000000000aa",
		DigestB:     "00000000000000bb",
		MaxOffset:   43,
		MinDuration: 1.0,
		Score:       score,
		Matched:     score > 0,
	}
}

// TestNewDBClient tests database initialization
func TestNewDBClient(t *testing.T) {
	client, dbPath := setupTestDB(t)

	if client.DB == nil {
		t.Fatal("Expected non-nil GORM DB handle")
	}
	if client.db == nil {
		t.Fatal("Expected non-nil sql.DB handle")
	}

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("Database file was not created at %s", dbPath)
	}
}

// TestNewDBClientWithCustomPath tests that missing parent directories are created
func TestNewDBClientWithCustomPath(t *testing.T) {
	customPath := filepath.Join(t.TempDir(), "subdir", "custom.db")

	client, err := NewDBClientWithPath(customPath)
	if err != nil {
		t.Fatalf("Failed to create DB with custom path: %v", err)
	}
	defer client.Close()

	if _, err := os.Stat(customPath); os.IsNotExist(err) {
		t.Errorf("Database file was not created at custom path %s", customPath)
	}
}

// TestRecordMatch tests that a record gets an ID and timestamp and round-trips
func TestRecordMatch(t *testing.T) {
	client, _ := setupTestDB(t)

	rec := sampleRecord(43)
	if err := client.RecordMatch(rec); err != nil {
		t.Fatalf("Failed to record match: %v", err)
	}

	if len(rec.ID) != 36 {
		t.Errorf("Expected a UUID id, got %q", rec.ID)
	}
	if rec.CreatedAt.IsZero() {
		t.Error("Expected CreatedAt to be set")
	}

	got, err := client.GetMatch(rec.ID)
	if err != nil {
		t.Fatalf("Failed to get match: %v", err)
	}
	if got.Score != 43 || got.MaxOffset != 43 || !got.Matched {
		t.Errorf("Stored record differs: %+v", got)
	}
	if got.LabelA != "Artist - Song A" {
		t.Errorf("Expected label 'Artist - Song A', got '%s'", got.LabelA)
	}
}

// TestListMatchesNewestFirst tests ordering and limits
func TestListMatchesNewestFirst(t *testing.T) {
	client, _ := setupTestDB(t)

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		rec := sampleRecord(float64(i))
		rec.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := client.RecordMatch(rec); err != nil {
			t.Fatalf("Failed to record match %d: %v", i, err)
		}
	}

	rows, err := client.ListMatches(3)
	if err != nil {
		t.Fatalf("Failed to list matches: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(rows))
	}
	for i, want := range []float64{4, 3, 2} {
		if rows[i].Score != want {
			t.Errorf("Row %d: expected score %v, got %v", i, want, rows[i].Score)
		}
	}

	all, err := client.ListMatches(0)
	if err != nil {
		t.Fatalf("Failed to list matches: %v", err)
	}
	if len(all) != 5 {
		t.Errorf("Expected default limit to return all 5 rows, got %d", len(all))
	}
}

// TestFindByDigests tests lookup in both orders
func TestFindByDigests(t *testing.T) {
	client, _ := setupTestDB(t)

	if err := client.RecordMatch(sampleRecord(10)); err != nil {
		t.Fatalf("Failed to record match: %v", err)
	}
	other := sampleRecord(1)
	other.DigestB = "00000000000000cc"
	if err := client.RecordMatch(other); err != nil {
		t.Fatalf("Failed to record match: %v", err)
	}

	rows, err := client.FindByDigests("00000000000000bb", "00000000000000aa")
	if err != nil {
		t.Fatalf("Failed to find by digests: %v", err)
	}
	if len(rows) != 1 || rows[0].Score != 10 {
		t.Errorf("Expected the single aa/bb record, got %+v", rows)
	}
}

// TestDeleteMatch tests deletion and the not-found error
func TestDeleteMatch(t *testing.T) {
	client, _ := setupTestDB(t)

	rec := sampleRecord(5)
	if err := client.RecordMatch(rec); err != nil {
		t.Fatalf("Failed to record match: %v", err)
	}

	if err := client.DeleteMatch(rec.ID); err != nil {
		t.Fatalf("Failed to delete match: %v", err)
	}

	if _, err := client.GetMatch(rec.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
	if err := client.DeleteMatch(rec.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound deleting twice, got %v", err)
	}

	n, err := client.CountMatches()
	if err != nil {
		t.Fatalf("Failed to count: %v", err)
	}
	if n != 0 {
		t.Errorf("Expected 0 records, got %d", n)
	}
}

// TestNilClient tests that a nil client fails instead of panicking
func TestNilClient(t *testing.T) {
	var client *DBClient

	if err := client.RecordMatch(sampleRecord(1)); err == nil {
		t.Error("Expected error from nil client")
	}
	if _, err := client.ListMatches(1); err == nil {
		t.Error("Expected error from nil client")
	}
	if err := client.Close(); err != nil {
		t.Errorf("Expected nil close error, got %v", err)
	}
}
