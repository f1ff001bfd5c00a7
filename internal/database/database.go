package database

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"pub_pos_backend/pkg/utils"
)

//go:embed schema.sql
var defaultSchema string

// InitDB opens and pings the connection pool.
func InitDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	utils.LogInfo("Successfully connected to the database")
	return db, nil
}

// EnsureSchema applies the schema file at schemaPath, or the built-in documents
// schema when the path is empty. Statements are idempotent.
func EnsureSchema(db *sql.DB, schemaPath string) error {
	content := defaultSchema
	if schemaPath != "" {
		raw, err := os.ReadFile(schemaPath)
		if err != nil {
			return fmt.Errorf("could not read schema file %s: %w", schemaPath, err)
		}
		content = string(raw)
	}

	if _, err := db.Exec(content); err != nil {
		return fmt.Errorf("could not execute schema script: %w", err)
	}
	utils.LogInfo("Database schema applied", map[string]interface{}{"path": schemaPath})
	return nil
}
