// Package db constructs the shared *sql.DB connection pool used by the
// store layer and the migration CLI.
package db

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"
)

// New opens a PostgreSQL connection pool and verifies it with a bounded
// ping before returning it to the caller.
func New(addr string, maxOpenConns, maxIdleConns int, maxIdleTime string) (*sql.DB, error) {
	database, err := sql.Open("postgres", addr)
	if err != nil {
		return nil, err
	}

	database.SetMaxOpenConns(maxOpenConns)
	database.SetMaxIdleConns(maxIdleConns)

	duration, err := time.ParseDuration(maxIdleTime)
	if err != nil {
		return nil, err
	}
	database.SetConnMaxIdleTime(duration)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := database.PingContext(ctx); err != nil {
		database.Close()
		return nil, err
	}

	return database, nil
}
