package cache

import (
	"database/sql"
	"fmt"
	"os"
	"time"
)

// File is a scanned preview source file.
type File struct {
	ID          int64
	Root        string // absolute previews directory
	RelPath     string // slash path relative to Root
	Language    string
	ContentHash string
	FileSize    int64
	ScannedAt   time.Time
}

// Export is a preview name found in a file.
type Export struct {
	Name      string
	StartLine int
	EndLine   int
}

// Stats contains database statistics
type Stats struct {
	TotalFiles        int64     `json:"total_files"`
	TotalExports      int64     `json:"total_exports"`
	TotalRoots        int64     `json:"total_roots"`
	NewestScan        time.Time `json:"newest_scan"`
	DatabaseSizeBytes int64     `json:"database_size_bytes"`
}

// Lookup returns the cached exports of root/rel when its content hash still
// matches. ok is false on a miss.
func (db *DB) Lookup(root, rel, hash string) (exports []Export, ok bool, err error) {
	var id int64
	err = db.conn.QueryRow(
		"SELECT id FROM scanned_files WHERE root = ? AND rel_path = ? AND content_hash = ?",
		root, rel, hash,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("looking up %s: %w", rel, err)
	}

	rows, err := db.conn.Query(
		"SELECT name, start_line, end_line FROM exports WHERE file_id = ? ORDER BY ordinal",
		id,
	)
	if err != nil {
		return nil, false, fmt.Errorf("querying exports: %w", err)
	}
	defer rows.Close()

	exports = []Export{}
	for rows.Next() {
		var e Export
		if err := rows.Scan(&e.Name, &e.StartLine, &e.EndLine); err != nil {
			return nil, false, fmt.Errorf("scanning export: %w", err)
		}
		exports = append(exports, e)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return exports, true, nil
}

// GetFile retrieves a file record, or nil when it is not cached.
func (db *DB) GetFile(root, rel string) (*File, error) {
	var f File
	var scannedAt int64
	err := db.conn.QueryRow(`
		SELECT id, root, rel_path, language, content_hash, file_size, scanned_at
		FROM scanned_files
		WHERE root = ? AND rel_path = ?
	`, root, rel).Scan(&f.ID, &f.Root, &f.RelPath, &f.Language, &f.ContentHash, &f.FileSize, &scannedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting file: %w", err)
	}
	f.ScannedAt = time.Unix(scannedAt, 0)
	return &f, nil
}

// Store replaces the cached record and exports of f.
func (db *DB) Store(f *File, exports []Export) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	scannedAt := f.ScannedAt
	if scannedAt.IsZero() {
		scannedAt = time.Now()
	}

	_, err = tx.Exec(`
		INSERT INTO scanned_files (root, rel_path, language, content_hash, file_size, scanned_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(root, rel_path) DO UPDATE SET
			language = excluded.language,
			content_hash = excluded.content_hash,
			file_size = excluded.file_size,
			scanned_at = excluded.scanned_at
	`, f.Root, f.RelPath, f.Language, f.ContentHash, f.FileSize, scannedAt.Unix())
	if err != nil {
		return fmt.Errorf("upserting file: %w", err)
	}

	// LastInsertId is unreliable with ON CONFLICT UPDATE
	var id int64
	if err := tx.QueryRow(
		"SELECT id FROM scanned_files WHERE root = ? AND rel_path = ?",
		f.Root, f.RelPath,
	).Scan(&id); err != nil {
		return fmt.Errorf("getting file id: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM exports WHERE file_id = ?", id); err != nil {
		return fmt.Errorf("deleting exports: %w", err)
	}

	for i, e := range exports {
		_, err := tx.Exec(
			"INSERT INTO exports (file_id, ordinal, name, start_line, end_line) VALUES (?, ?, ?, ?, ?)",
			id, i, e.Name, e.StartLine, e.EndLine,
		)
		if err != nil {
			return fmt.Errorf("inserting export %s: %w", e.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	f.ID = id
	f.ScannedAt = time.Unix(scannedAt.Unix(), 0)
	return nil
}

// Prune deletes cached files under root whose relative path is not in keep.
// It returns the number of removed files.
func (db *DB) Prune(root string, keep map[string]bool) (int, error) {
	rows, err := db.conn.Query("SELECT id, rel_path FROM scanned_files WHERE root = ?", root)
	if err != nil {
		return 0, fmt.Errorf("listing files: %w", err)
	}

	var stale []int64
	for rows.Next() {
		var id int64
		var rel string
		if err := rows.Scan(&id, &rel); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scanning file: %w", err)
		}
		if !keep[rel] {
			stale = append(stale, id)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, id := range stale {
		if _, err := db.conn.Exec("DELETE FROM scanned_files WHERE id = ?", id); err != nil {
			return 0, fmt.Errorf("deleting file %d: %w", id, err)
		}
	}
	return len(stale), nil
}

// Clear removes every cached file and export.
func (db *DB) Clear() error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM exports"); err != nil {
		return fmt.Errorf("deleting exports: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM scanned_files"); err != nil {
		return fmt.Errorf("deleting files: %w", err)
	}
	return tx.Commit()
}

// GetStats returns cache statistics
func (db *DB) GetStats() (*Stats, error) {
	stats := &Stats{}

	row := db.conn.QueryRow("SELECT COUNT(*), COUNT(DISTINCT root), COALESCE(MAX(scanned_at), 0) FROM scanned_files")
	var newest int64
	if err := row.Scan(&stats.TotalFiles, &stats.TotalRoots, &newest); err != nil {
		return nil, fmt.Errorf("counting files: %w", err)
	}
	if newest > 0 {
		stats.NewestScan = time.Unix(newest, 0)
	}

	row = db.conn.QueryRow("SELECT COUNT(*) FROM exports")
	if err := row.Scan(&stats.TotalExports); err != nil {
		return nil, fmt.Errorf("counting exports: %w", err)
	}

	if info, err := os.Stat(db.path); err == nil {
		stats.DatabaseSizeBytes = info.Size()
	}

	return stats, nil
}
