// Package database is the persistence boundary of the Aisle API.
//
// Every table the planner works with (profiles, vendors, venues, rooms,
// seating tables, guests, budgets, timeline tasks, moodboards) lives in
// SurrealDB and is reached only through the Database interface below.
// Repositories issue parameterised SurrealQL; nothing above the repository
// layer sees a query string.
//
// Query returns the raw statement responses, QueryOne unwraps the first
// record of the first statement, and Execute discards results.
//
// Multi-statement writes that must land together use AtomicBatch, which
// wraps the statements in BEGIN/COMMIT TRANSACTION and sends them in a
// single round trip. There is no isolation between Add calls.
//
// Callers check failures with errors.Is against the sentinels below:
//
//	if errors.Is(err, database.ErrNotFound) {
//	    return nil, nil
//	}
package database

import (
	"context"
	"errors"
)

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate indicates a unique index violation (e.g. duplicate email).
	ErrDuplicate = errors.New("duplicate record")

	// ErrConnection indicates a failure to reach the database.
	ErrConnection = errors.New("database connection error")

	// ErrQuery indicates a statement failed to execute.
	ErrQuery = errors.New("query error")
)

// Database defines the operations repositories rely on.
type Database interface {
	Connect(ctx context.Context) error
	Close() error
	Ping(ctx context.Context) error

	// Query executes a query and returns one response per statement.
	Query(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error)

	// QueryOne executes a query and returns the first record of the first statement.
	QueryOne(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error)

	// Execute runs a query without returning results.
	Execute(ctx context.Context, query string, vars map[string]interface{}) error
}

// Config holds database connection settings.
type Config struct {
	Host      string
	Port      string
	User      string
	Password  string
	Namespace string
	Database  string
}
