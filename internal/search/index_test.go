package search

import (
	"os"
	"testing"
	"time"

	"github.com/starford/ansuz/internal/models"
)

func testIndex(t *testing.T) *Index {
	t.Helper()
	f, err := os.CreateTemp("", "ansuz-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	ix, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { ix.Close() })
	return ix
}

func TestSchemaCreation(t *testing.T) {
	ix := testIndex(t)
	var count int
	if err := ix.conn.QueryRow(`SELECT count(*) FROM entries`).Scan(&count); err != nil {
		t.Fatalf("entries table missing: %v", err)
	}
}

func TestUpsertAndSearch(t *testing.T) {
	ix := testIndex(t)

	if err := ix.Upsert(KindNote, "1", "photosynthesis happens in chloroplasts", "2026-03-14T10:00:00Z"); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := ix.Upsert(KindCaption, "2", "today we cover cell biology", "10:00:05"); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	results, err := ix.Search("photosynthesis", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	if results[0].Kind != KindNote || results[0].ID != "1" {
		t.Errorf("result = %+v", results[0])
	}
	if results[0].Snippet == "" {
		t.Error("snippet should not be empty")
	}
}

func TestUpsertReplacesExistingEntry(t *testing.T) {
	ix := testIndex(t)

	if err := ix.Upsert(KindNote, "1", "original text", ""); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := ix.Upsert(KindNote, "1", "replacement text", ""); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	n, err := ix.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Errorf("count = %d, want 1 after replace", n)
	}

	results, err := ix.Search("replacement", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("results = %d, want replacement findable", len(results))
	}
}

func TestSearchNoMatch(t *testing.T) {
	ix := testIndex(t)
	_ = ix.Upsert(KindNote, "1", "some note", "")

	results, err := ix.Search("zzzzz", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("results = %+v, want none", results)
	}
}

func TestRebuildReplacesIndex(t *testing.T) {
	ix := testIndex(t)

	// Stale entry that must disappear after rebuild.
	if err := ix.Upsert(KindNote, "stale", "obsolete content", ""); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	doc := models.Document{
		Notes: []models.Note{
			{ID: "n1", Text: "biology homework", Date: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)},
		},
		Captions: []models.Caption{
			{ID: "c1", Text: "lecture about volcanoes", Timestamp: "10:05:00"},
		},
	}
	if err := ix.Rebuild(doc); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	n, err := ix.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 2 {
		t.Errorf("count = %d, want 2", n)
	}

	if results, _ := ix.Search("obsolete", 10); len(results) != 0 {
		t.Errorf("stale entry survived rebuild: %+v", results)
	}
	if results, _ := ix.Search("volcanoes", 10); len(results) != 1 {
		t.Errorf("caption not indexed after rebuild")
	}
}

func TestSearchLimit(t *testing.T) {
	ix := testIndex(t)
	for i := 0; i < 5; i++ {
		id := string(rune('a' + i))
		if err := ix.Upsert(KindNote, id, "repeated subject matter", ""); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}
	results, err := ix.Search("repeated", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("results = %d, want limit 3", len(results))
	}
}
