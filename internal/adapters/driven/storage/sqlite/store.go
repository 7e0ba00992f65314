package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/remup-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/remup-cli/internal/core/domain"
	"github.com/custodia-labs/remup-cli/internal/core/ports/driven"
)

// Store is a SQLite-backed build cache.
type Store struct {
	db   *sql.DB
	path string
}

var _ driven.BuildStore = (*Store)(nil)

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.remup/data/builds.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".remup", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "builds.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Sort and run migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// Save stores or replaces the record for a source path.
func (s *Store) Save(ctx context.Context, rec *driven.BuildRecord) error {
	statsJSON, err := json.Marshal(rec.Stats)
	if err != nil {
		return fmt.Errorf("marshalling stats: %w", err)
	}

	if rec.CompiledAt.IsZero() {
		rec.CompiledAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO builds (id, source_path, source_hash, output_path, title, stats, warnings, compiled_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source_path) DO UPDATE SET
			id = excluded.id,
			source_hash = excluded.source_hash,
			output_path = excluded.output_path,
			title = excluded.title,
			stats = excluded.stats,
			warnings = excluded.warnings,
			compiled_at = excluded.compiled_at
	`, rec.ID, rec.SourcePath, rec.SourceHash, rec.OutputPath, rec.Title,
		string(statsJSON), rec.Warnings, rec.CompiledAt)

	if err != nil {
		return fmt.Errorf("saving build record: %w", err)
	}
	return nil
}

// GetBySource retrieves the latest record for a source path.
func (s *Store) GetBySource(ctx context.Context, sourcePath string) (*driven.BuildRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, source_path, source_hash, output_path, title, stats, warnings, compiled_at
		FROM builds
		WHERE source_path = ?
	`, sourcePath)

	rec, err := scanBuild(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("build for %s: %w", sourcePath, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting build record: %w", err)
	}
	return rec, nil
}

// List returns all records, most recent first.
func (s *Store) List(ctx context.Context) ([]driven.BuildRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source_path, source_hash, output_path, title, stats, warnings, compiled_at
		FROM builds
		ORDER BY compiled_at DESC, source_path ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("listing build records: %w", err)
	}
	defer rows.Close()

	var records []driven.BuildRecord
	for rows.Next() {
		rec, err := scanBuild(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning build record: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating build records: %w", err)
	}
	return records, nil
}

// Clear removes all records.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM builds"); err != nil {
		return fmt.Errorf("clearing build records: %w", err)
	}
	return nil
}

// scanner abstracts sql.Row and sql.Rows for scanBuild.
type scanner interface {
	Scan(dest ...any) error
}

func scanBuild(row scanner) (*driven.BuildRecord, error) {
	var (
		rec       driven.BuildRecord
		statsJSON string
	)
	if err := row.Scan(&rec.ID, &rec.SourcePath, &rec.SourceHash, &rec.OutputPath,
		&rec.Title, &statsJSON, &rec.Warnings, &rec.CompiledAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(statsJSON), &rec.Stats); err != nil {
		return nil, fmt.Errorf("unmarshalling stats: %w", err)
	}
	return &rec, nil
}
