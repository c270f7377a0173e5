package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "scan.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenAndClose(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "scan.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if db.Path() != dbPath {
		t.Errorf("Path() = %q, want %q", db.Path(), dbPath)
	}
	if err := db.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestMigrationIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "scan.db")

	for i := 0; i < 2; i++ {
		db, err := Open(dbPath)
		if err != nil {
			t.Fatalf("Open #%d failed: %v", i, err)
		}
		var version int
		if err := db.conn.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&version); err != nil {
			t.Fatalf("reading schema version: %v", err)
		}
		if version != 1 {
			t.Errorf("schema version = %d, want 1", version)
		}
		db.Close()
	}
}

func TestStoreAndLookup(t *testing.T) {
	db := openTestDB(t)

	f := &File{Root: "/p", RelPath: "email/Welcome.tsx", Language: "tsx", ContentHash: "h1", FileSize: 42}
	exports := []Export{
		{Name: "Default", StartLine: 3, EndLine: 9},
		{Name: "Dark", StartLine: 11, EndLine: 14},
	}
	if err := db.Store(f, exports); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if f.ID == 0 {
		t.Error("Store did not set file ID")
	}

	got, ok, err := db.Lookup("/p", "email/Welcome.tsx", "h1")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if !ok {
		t.Fatal("Lookup missed a stored file")
	}
	if len(got) != 2 || got[0] != exports[0] || got[1] != exports[1] {
		t.Errorf("Lookup = %+v, want %+v", got, exports)
	}
}

func TestLookupMissesOnChangedHash(t *testing.T) {
	db := openTestDB(t)

	if err := db.Store(&File{Root: "/p", RelPath: "a.tsx", ContentHash: "old"}, []Export{{Name: "A", StartLine: 1, EndLine: 1}}); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	if _, ok, err := db.Lookup("/p", "a.tsx", "new"); err != nil || ok {
		t.Errorf("Lookup with new hash = ok %v, err %v; want miss", ok, err)
	}
	if _, ok, err := db.Lookup("/other", "a.tsx", "old"); err != nil || ok {
		t.Errorf("Lookup under other root = ok %v, err %v; want miss", ok, err)
	}
}

func TestLookupFileWithoutExports(t *testing.T) {
	db := openTestDB(t)

	if err := db.Store(&File{Root: "/p", RelPath: "empty.tsx", ContentHash: "h"}, nil); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	got, ok, err := db.Lookup("/p", "empty.tsx", "h")
	if err != nil || !ok {
		t.Fatalf("Lookup = ok %v, err %v; want hit", ok, err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("Lookup = %#v, want empty non-nil slice", got)
	}
}

func TestStoreReplacesExports(t *testing.T) {
	db := openTestDB(t)

	f := &File{Root: "/p", RelPath: "a.tsx", ContentHash: "h1"}
	if err := db.Store(f, []Export{{Name: "A"}, {Name: "B"}, {Name: "C"}}); err != nil {
		t.Fatalf("first Store failed: %v", err)
	}
	firstID := f.ID

	f2 := &File{Root: "/p", RelPath: "a.tsx", ContentHash: "h2"}
	if err := db.Store(f2, []Export{{Name: "Z"}}); err != nil {
		t.Fatalf("second Store failed: %v", err)
	}
	if f2.ID != firstID {
		t.Errorf("file ID changed on upsert: %d -> %d", firstID, f2.ID)
	}

	got, ok, err := db.Lookup("/p", "a.tsx", "h2")
	if err != nil || !ok {
		t.Fatalf("Lookup = ok %v, err %v", ok, err)
	}
	if len(got) != 1 || got[0].Name != "Z" {
		t.Errorf("Lookup = %+v, want [Z]", got)
	}

	stats, err := db.GetStats()
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.TotalExports != 1 {
		t.Errorf("TotalExports = %d, want 1", stats.TotalExports)
	}
}

func TestGetFile(t *testing.T) {
	db := openTestDB(t)

	if f, err := db.GetFile("/p", "missing.tsx"); err != nil || f != nil {
		t.Errorf("GetFile(missing) = %v, %v; want nil, nil", f, err)
	}

	when := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := db.Store(&File{Root: "/p", RelPath: "a.go", Language: "go", ContentHash: "h", FileSize: 7, ScannedAt: when}, nil); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	f, err := db.GetFile("/p", "a.go")
	if err != nil {
		t.Fatalf("GetFile failed: %v", err)
	}
	if f == nil {
		t.Fatal("GetFile returned nil")
	}
	if f.Language != "go" || f.FileSize != 7 || f.ContentHash != "h" {
		t.Errorf("GetFile = %+v", f)
	}
	if !f.ScannedAt.Equal(when) {
		t.Errorf("ScannedAt = %v, want %v", f.ScannedAt, when)
	}
}

func TestPrune(t *testing.T) {
	db := openTestDB(t)

	for _, rel := range []string{"a.tsx", "b.tsx", "c.tsx"} {
		if err := db.Store(&File{Root: "/p", RelPath: rel, ContentHash: "h"}, []Export{{Name: "X"}}); err != nil {
			t.Fatalf("Store(%s) failed: %v", rel, err)
		}
	}
	if err := db.Store(&File{Root: "/q", RelPath: "a.tsx", ContentHash: "h"}, nil); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	removed, err := db.Prune("/p", map[string]bool{"b.tsx": true})
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("Prune removed %d, want 2", removed)
	}

	if _, ok, _ := db.Lookup("/p", "b.tsx", "h"); !ok {
		t.Error("kept file was pruned")
	}
	if _, ok, _ := db.Lookup("/p", "a.tsx", "h"); ok {
		t.Error("stale file survived prune")
	}
	if _, ok, _ := db.Lookup("/q", "a.tsx", "h"); !ok {
		t.Error("prune touched another root")
	}

	stats, err := db.GetStats()
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	// exports of pruned files cascade away
	if stats.TotalExports != 1 {
		t.Errorf("TotalExports = %d, want 1", stats.TotalExports)
	}
}

func TestClearAndStats(t *testing.T) {
	db := openTestDB(t)

	stats, err := db.GetStats()
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.TotalFiles != 0 || !stats.NewestScan.IsZero() {
		t.Errorf("empty stats = %+v", stats)
	}

	if err := db.Store(&File{Root: "/p", RelPath: "a.tsx", ContentHash: "h"}, []Export{{Name: "A"}, {Name: "B"}}); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if err := db.Store(&File{Root: "/q", RelPath: "b.tsx", ContentHash: "h"}, nil); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	stats, err = db.GetStats()
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.TotalFiles != 2 || stats.TotalExports != 2 || stats.TotalRoots != 2 {
		t.Errorf("stats = %+v, want 2 files, 2 exports, 2 roots", stats)
	}
	if stats.NewestScan.IsZero() {
		t.Error("NewestScan not set")
	}
	if stats.DatabaseSizeBytes <= 0 {
		t.Error("DatabaseSizeBytes not set")
	}

	if err := db.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	stats, err = db.GetStats()
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.TotalFiles != 0 || stats.TotalExports != 0 {
		t.Errorf("stats after Clear = %+v", stats)
	}
}
