package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Store is the preference namespace shared by every surface. Several
// processes may hold a Store on the same file; writes are last-write-wins
// per key.
type Store struct {
	path    string
	readDB  *sql.DB
	writeDB *sql.DB
	log     *zap.Logger
}

const dsnParams = "?_pragma=busy_timeout(5000)"

func Open(dbPath string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating store dir: %w", err)
	}

	writeDB, err := sql.Open("sqlite", dbPath+dsnParams)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	readDB, err := sql.Open("sqlite", dbPath+dsnParams+"&mode=ro")
	if err != nil {
		writeDB.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}

	s := &Store{path: dbPath, readDB: readDB, writeDB: writeDB, log: log}
	if err := s.init(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	_, err := s.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS prefs (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS notifications (
			id           TEXT PRIMARY KEY,
			factlet_id   TEXT NOT NULL,
			title        TEXT NOT NULL,
			body         TEXT NOT NULL,
			fire_at      INTEGER NOT NULL,
			delivered_at INTEGER,
			opened_at    INTEGER
		);
		CREATE INDEX IF NOT EXISTS idx_notifications_fire_at ON notifications(fire_at);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

// Path is the database file backing the store.
func (s *Store) Path() string { return s.path }

func (s *Store) Close() error {
	var errs []error
	if s.readDB != nil {
		errs = append(errs, s.readDB.Close())
	}
	if s.writeDB != nil {
		errs = append(errs, s.writeDB.Close())
	}
	return errors.Join(errs...)
}

// Get returns the value for key. Any read failure is reported as absent so
// callers fall back to their default.
func (s *Store) Get(key string) (string, bool) {
	var value string
	err := s.readDB.QueryRow("SELECT value FROM prefs WHERE key = ?", key).Scan(&value)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.log.Debug("reading preference", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	return value, true
}

func (s *Store) Set(key, value string) error {
	_, err := s.writeDB.Exec(`
		INSERT INTO prefs (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(key string) error {
	if _, err := s.writeDB.Exec("DELETE FROM prefs WHERE key = ?", key); err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

// Keys lists the stored preference keys.
func (s *Store) Keys() ([]string, error) {
	rows, err := s.readDB.Query("SELECT key FROM prefs ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("listing keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scanning key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Stats reports the number of stored keys, pending notifications and the
// database size in bytes.
func (s *Store) Stats() (keys, pending int, size int64, err error) {
	if err = s.readDB.QueryRow("SELECT COUNT(*) FROM prefs").Scan(&keys); err != nil {
		return 0, 0, 0, fmt.Errorf("counting keys: %w", err)
	}
	if err = s.readDB.QueryRow("SELECT COUNT(*) FROM notifications WHERE delivered_at IS NULL").Scan(&pending); err != nil {
		return 0, 0, 0, fmt.Errorf("counting notifications: %w", err)
	}
	info, err := os.Stat(s.path)
	if err != nil {
		return keys, pending, 0, fmt.Errorf("stat %s: %w", s.path, err)
	}
	return keys, pending, info.Size(), nil
}

// Reset removes every preference and notification.
func (s *Store) Reset() error {
	if _, err := s.writeDB.Exec("DELETE FROM prefs; DELETE FROM notifications;"); err != nil {
		return fmt.Errorf("resetting store: %w", err)
	}
	return nil
}
