package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// DB is the global database connection
var DB *sqlx.DB

// Connect establishes a connection to the database. When DATABASE_URL is
// set a PostgreSQL connection is used; otherwise a local SQLite file under
// the data directory.
func Connect() error {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		db, err := sqlx.Connect("postgres", url)
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		DB = db
		return initializeSchema()
	}

	dataDir := "data"
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "lingoleap.db")
	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite doesn't support multiple writers
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	DB = db
	return initializeSchema()
}

// ConnectMemory replaces the global connection with an in-memory SQLite
// database. Tests use it to exercise the repositories against real storage.
func ConnectMemory() error {
	db, err := sqlx.Connect("sqlite3", ":memory:")
	if err != nil {
		return fmt.Errorf("failed to open in-memory database: %w", err)
	}
	db.SetMaxOpenConns(1)
	DB = db
	return initializeSchema()
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// rebind converts ?-style placeholders to the driver's style
func rebind(query string) string {
	return DB.Rebind(query)
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema() error {
	_, err := DB.Exec(`
		CREATE TABLE IF NOT EXISTS vocabulary_words (
			id TEXT PRIMARY KEY,
			word TEXT NOT NULL,
			part_of_speech TEXT NOT NULL DEFAULT '',
			definition TEXT NOT NULL DEFAULT '',
			srs_level INTEGER NOT NULL DEFAULT 0,
			next_review_date TEXT NOT NULL,
			created_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create vocabulary_words table: %w", err)
	}

	_, err = DB.Exec(`
		CREATE TABLE IF NOT EXISTS structures (
			id TEXT PRIMARY KEY,
			structure TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			example TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			consecutive_correct INTEGER NOT NULL DEFAULT 0,
			position INTEGER NOT NULL DEFAULT 0
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create structures table: %w", err)
	}

	return nil
}
