package database

import (
	"database/sql"
	"log"
	"time"

	_ "github.com/lib/pq"
)

var PostgresDB *sql.DB

// ConnectPostgres connects to PostgreSQL database
func ConnectPostgres(postgresURI string) error {
	var err error

	PostgresDB, err = sql.Open("postgres", postgresURI)
	if err != nil {
		return err
	}

	PostgresDB.SetMaxOpenConns(25)
	PostgresDB.SetMaxIdleConns(5)
	PostgresDB.SetConnMaxLifetime(5 * time.Minute)

	if err = PostgresDB.Ping(); err != nil {
		return err
	}

	log.Println("✅ Connected to PostgreSQL")

	return InitPostgresTables()
}

// InitPostgresTables creates the Q&A response table if it doesn't exist
func InitPostgresTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS responses (
			id VARCHAR(64) PRIMARY KEY,
			question TEXT NOT NULL,
			answer TEXT NOT NULL,
			model VARCHAR(100) NOT NULL,
			timestamp TEXT NOT NULL,
			category VARCHAR(100) NOT NULL DEFAULT '일반',
			feedback TEXT NOT NULL DEFAULT '없음',
			seq BIGSERIAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_responses_timestamp ON responses(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_responses_category ON responses(category)`,
		`CREATE INDEX IF NOT EXISTS idx_responses_model ON responses(model)`,
	}

	for _, query := range queries {
		if _, err := PostgresDB.Exec(query); err != nil {
			return err
		}
	}

	log.Println("✅ PostgreSQL tables initialized")
	return nil
}

// DisconnectPostgres closes the PostgreSQL connection
func DisconnectPostgres() error {
	if PostgresDB != nil {
		return PostgresDB.Close()
	}
	return nil
}
