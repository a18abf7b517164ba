// Package store persists companion records (dhikr counters, Quran khatm
// progress and Ramadan fasts) in a local SQLite database.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store is a handle on the records database. It is safe for concurrent use.
type Store struct {
	db   *sqlx.DB
	Path string
}

// DefaultPath returns $XDG_DATA_HOME/miqat/miqat.db, falling back to
// ~/.local/share/miqat/miqat.db.
func DefaultPath() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "miqat", "miqat.db")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "miqat", "miqat.db")
	}
	return filepath.Join(home, ".local", "share", "miqat", "miqat.db")
}

// Open opens (creating if needed) the database at path and brings its schema
// up to date. An empty path uses DefaultPath.
func Open(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sqlx.Connect("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}
	// SQLite allows one writer; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, Path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// migrations are applied in order; the schema version is the number applied.
var migrations = []string{
	`CREATE TABLE dhikr (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		count INTEGER NOT NULL DEFAULT 0,
		target INTEGER NOT NULL DEFAULT 0,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	INSERT INTO dhikr (name, target) VALUES
		('SubhanAllah', 33),
		('Alhamdulillah', 33),
		('AllahuAkbar', 34),
		('Astaghfirullah', 100);`,

	`CREATE TABLE khatm_cycles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		completed_at DATETIME
	);
	CREATE TABLE khatm_juz (
		cycle_id INTEGER NOT NULL REFERENCES khatm_cycles(id),
		juz INTEGER NOT NULL CHECK (juz BETWEEN 1 AND 30),
		read_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (cycle_id, juz)
	);`,

	`CREATE TABLE fasts (
		hijri_year INTEGER NOT NULL,
		day INTEGER NOT NULL CHECK (day BETWEEN 1 AND 30),
		kept INTEGER NOT NULL,
		logged_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (hijri_year, day)
	);`,
}

// SchemaVersion is the version a fully migrated database reports.
var SchemaVersion = len(migrations)

// Version returns the schema version recorded in the database.
func (s *Store) Version() (int, error) {
	var v int
	if err := s.db.Get(&v, "PRAGMA user_version"); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return v, nil
}

func (s *Store) migrate() error {
	current, err := s.Version()
	if err != nil {
		return err
	}
	if current > len(migrations) {
		return fmt.Errorf("database %s has schema version %d, newer than supported %d", s.Path, current, len(migrations))
	}

	for i := current; i < len(migrations); i++ {
		tx, err := s.db.Beginx()
		if err != nil {
			return fmt.Errorf("beginning migration %d: %w", i+1, err)
		}
		if _, err := tx.Exec(migrations[i]); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", i+1, err)
		}
		// PRAGMA does not accept bound parameters.
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording schema version %d: %w", i+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", i+1, err)
		}
		log.Debug().Int("version", i+1).Str("path", s.Path).Msg("applied migration")
	}
	return nil
}
