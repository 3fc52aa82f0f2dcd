package database

import (
	"database/sql"
	"log"

	_ "modernc.org/sqlite"
)

var SQLiteDB *sql.DB

// ConnectSQLite opens (creating if needed) a local SQLite file for desktop mode.
func ConnectSQLite(path string) error {
	db, err := OpenSQLite(path)
	if err != nil {
		return err
	}
	SQLiteDB = db
	log.Printf("✅ Opened SQLite database at %s", path)
	return nil
}

// OpenSQLite opens a SQLite database and creates the responses table.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer
	db.SetMaxOpenConns(1)

	queries := []string{
		`PRAGMA journal_mode=WAL`,
		`CREATE TABLE IF NOT EXISTS responses (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			question TEXT NOT NULL,
			answer TEXT NOT NULL,
			model TEXT NOT NULL,
			timestamp TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '일반',
			feedback TEXT NOT NULL DEFAULT '없음'
		)`,
		`CREATE INDEX IF NOT EXISTS idx_responses_timestamp ON responses(timestamp)`,
	}
	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}

func DisconnectSQLite() error {
	if SQLiteDB != nil {
		return SQLiteDB.Close()
	}
	return nil
}
