// Package sqlite implements the repository interfaces on SQLite using the
// pure-Go modernc.org/sqlite driver.
//
// Every table is owned by a user and declared with
// FOREIGN KEY (username) REFERENCES users(username) ON DELETE CASCADE,
// so deleting a user removes all of their data in one statement. Foreign
// keys are enabled per connection through the DSN.
//
// Dates are stored as INTEGER epoch seconds; measurements as REAL in
// natural units (kg, %, m).
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and implements every repository
// interface in internal/repository.
type DB struct {
	conn *sql.DB
}

// New opens the database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/fittrack.db"  → file-based database (persistent)
//   - ":memory:"          → in-memory database, used by tests
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Each connection to ":memory:" is a separate empty database.
	if isMemory(dbPath) {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	if !isMemory(dbPath) {
		if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
			conn.Close()
			return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
		}
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// dsn appends the per-connection pragmas understood by modernc.org/sqlite.
func dsn(dbPath string) string {
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return dbPath + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func isMemory(dbPath string) bool {
	return dbPath == ":memory:" || strings.Contains(dbPath, "mode=memory")
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. Statements are idempotent; columns added after
// the first release go through addColumnIfNotExists so older databases are
// upgraded in place.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			username   TEXT PRIMARY KEY,
			hashed_pw  TEXT NOT NULL DEFAULT '',
			salt       TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL DEFAULT (unixepoch())
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	if err := db.addColumnIfNotExists("users", "github_id", "INTEGER"); err != nil {
		return fmt.Errorf("adding github_id to users: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_users_github_id
			ON users(github_id) WHERE github_id IS NOT NULL;

		CREATE TABLE IF NOT EXISTS sessions (
			id         TEXT PRIMARY KEY,
			username   TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			expires_at INTEGER NOT NULL,
			FOREIGN KEY (username) REFERENCES users (username) ON DELETE CASCADE
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_username ON sessions(username);
		CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);

		CREATE TABLE IF NOT EXISTS stats (
			username TEXT NOT NULL,
			date     INTEGER NOT NULL,
			weight   REAL NOT NULL,
			body_fat REAL NOT NULL,
			water    REAL NOT NULL,
			muscles  REAL NOT NULL,
			PRIMARY KEY (username, date),
			FOREIGN KEY (username) REFERENCES users (username) ON DELETE CASCADE
		);

		CREATE TABLE IF NOT EXISTS routes (
			username   TEXT NOT NULL,
			route_name TEXT NOT NULL,
			distance   REAL NOT NULL,
			height     REAL NOT NULL,
			PRIMARY KEY (username, route_name),
			FOREIGN KEY (username) REFERENCES users (username) ON DELETE CASCADE
		);

		CREATE TABLE IF NOT EXISTS activities (
			username   TEXT NOT NULL,
			route_name TEXT NOT NULL,
			date       INTEGER NOT NULL,
			time       INTEGER NOT NULL,
			pace       REAL NOT NULL,
			speed      REAL NOT NULL,
			PRIMARY KEY (username, route_name, date),
			FOREIGN KEY (username) REFERENCES users (username) ON DELETE CASCADE,
			FOREIGN KEY (username, route_name) REFERENCES routes (username, route_name) ON DELETE CASCADE
		);
		CREATE INDEX IF NOT EXISTS idx_activities_date ON activities(username, date);
	`)
	if err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}

	if err := db.addColumnIfNotExists("activities", "heart_rate", "INTEGER"); err != nil {
		return fmt.Errorf("adding heart_rate to activities: %w", err)
	}

	return nil
}

// addColumnIfNotExists adds a column to a table only if it doesn't already
// exist. table and column are always constants from migrate.
func (db *DB) addColumnIfNotExists(table, column, definition string) error {
	var count int
	err := db.conn.QueryRow(
		`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`,
		table, column,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking column %s.%s: %w", table, column, err)
	}
	if count > 0 {
		return nil
	}
	_, err = db.conn.Exec(fmt.Sprintf(
		`ALTER TABLE %s ADD COLUMN %s %s`, table, column, definition,
	))
	return err
}

// inserted reports whether an INSERT OR IGNORE wrote a row.
func inserted(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// affected reports whether an UPDATE or DELETE touched a row.
func affected(res sql.Result) (bool, error) {
	return inserted(res)
}

func fromEpoch(sec int64) time.Time {
	return time.Unix(sec, 0)
}
