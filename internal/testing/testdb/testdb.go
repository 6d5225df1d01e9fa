package testdb

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/forgo/aisle/api/internal/database"
)

const (
	surrealImage    = "surrealdb/surrealdb:v2.3.7"
	surrealUser     = "root"
	surrealPassword = "root"
)

// TestDB provides an isolated database environment for testing.
// Each TestDB instance gets a unique namespace to ensure test isolation.
type TestDB struct {
	DB        database.Database
	Namespace string
	Database  string
	t         *testing.T
}

var (
	migrationOnce sync.Once
	migrations    []string
	migrationErr  error

	serverOnce sync.Once
	serverCfg  database.Config
	serverErr  error

	counterMu sync.Mutex
	counter   int64
)

// server returns connection settings for the test SurrealDB. TEST_DB_HOST
// points at an existing server; otherwise one container is started for the
// whole test binary and left for the testcontainers reaper to remove.
func server() (database.Config, error) {
	serverOnce.Do(func() {
		if host := os.Getenv("TEST_DB_HOST"); host != "" {
			serverCfg = database.Config{
				Host:     host,
				Port:     envOr("TEST_DB_PORT", "8000"),
				User:     envOr("TEST_DB_USER", surrealUser),
				Password: envOr("TEST_DB_PASSWORD", surrealPassword),
			}
			return
		}
		serverCfg, serverErr = startContainer()
	})
	return serverCfg, serverErr
}

func startContainer() (database.Config, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	req := testcontainers.ContainerRequest{
		Image:        surrealImage,
		ExposedPorts: []string{"8000/tcp"},
		Cmd:          []string{"start", "--user", surrealUser, "--pass", surrealPassword, "memory"},
		WaitingFor:   wait.ForListeningPort("8000/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return database.Config{}, fmt.Errorf("start surrealdb container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return database.Config{}, fmt.Errorf("container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "8000")
	if err != nil {
		return database.Config{}, fmt.Errorf("container port: %w", err)
	}

	return database.Config{
		Host:     host,
		Port:     port.Port(),
		User:     surrealUser,
		Password: surrealPassword,
	}, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// uniqueNamespace generates a unique namespace for test isolation
func uniqueNamespace() string {
	counterMu.Lock()
	defer counterMu.Unlock()
	counter++
	return fmt.Sprintf("test_%d_%d", time.Now().UnixNano(), counter)
}

// loadMigrations reads every .surql file under migrations/ in name order
func loadMigrations() ([]string, error) {
	migrationOnce.Do(func() {
		var dir string
		for _, p := range []string{"migrations", "../migrations", "../../migrations", "../../../migrations", "../../../../migrations"} {
			if _, err := os.Stat(p); err == nil {
				dir = p
				break
			}
		}
		if dir == "" {
			if root := os.Getenv("AISLE_ROOT"); root != "" {
				dir = filepath.Join(root, "migrations")
			}
		}
		if dir == "" {
			migrationErr = fmt.Errorf("could not find migrations directory")
			return
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			migrationErr = fmt.Errorf("reading migrations dir: %w", err)
			return
		}

		var files []string
		for _, e := range entries {
			if strings.HasSuffix(e.Name(), ".surql") {
				files = append(files, e.Name())
			}
		}
		sort.Strings(files)

		for _, name := range files {
			content, err := os.ReadFile(filepath.Join(dir, name))
			if err != nil {
				migrationErr = fmt.Errorf("reading %s: %w", name, err)
				return
			}
			migrations = append(migrations, string(content))
		}
	})

	return migrations, migrationErr
}

// New creates a fresh namespace with migrations applied. The namespace is
// removed when the test finishes.
func New(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}

	cfg, err := server()
	if err != nil {
		t.Fatalf("testdb: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg.Namespace = uniqueNamespace()
	cfg.Database = "test"

	db := database.NewSurrealDB(cfg)
	if err := db.Connect(ctx); err != nil {
		t.Fatalf("testdb: failed to connect: %v", err)
	}

	tdb := &TestDB{
		DB:        db,
		Namespace: cfg.Namespace,
		Database:  cfg.Database,
		t:         t,
	}
	t.Cleanup(tdb.Close)

	migs, err := loadMigrations()
	if err != nil {
		t.Fatalf("testdb: failed to load migrations: %v", err)
	}
	for i, mig := range migs {
		if err := db.Execute(ctx, mig, nil); err != nil {
			t.Fatalf("testdb: migration %d failed: %v", i+1, err)
		}
	}

	return tdb
}

// Close removes the namespace and closes the connection. It is safe to call
// more than once.
func (tdb *TestDB) Close() {
	if tdb.DB == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = tdb.DB.Execute(ctx, fmt.Sprintf("REMOVE NAMESPACE %s", tdb.Namespace), nil)
	_ = tdb.DB.Close()
	tdb.DB = nil
}

// Ctx returns a context bounded by the test's lifetime
func (tdb *TestDB) Ctx() context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	tdb.t.Cleanup(cancel)
	return ctx
}

// MustExec executes a query and fails the test on error.
func (tdb *TestDB) MustExec(query string, vars map[string]interface{}) {
	tdb.t.Helper()
	if err := tdb.DB.Execute(tdb.Ctx(), query, vars); err != nil {
		tdb.t.Fatalf("testdb: exec failed: %v\nQuery: %s", err, query)
	}
}

// Count returns the number of rows in table matching where (may be empty)
func (tdb *TestDB) Count(table, where string, vars map[string]interface{}) int {
	tdb.t.Helper()
	query := "SELECT count() AS n FROM " + table
	if where != "" {
		query += " WHERE " + where
	}
	query += " GROUP ALL"

	rows := tdb.rows(query, vars)
	if len(rows) == 0 {
		return 0
	}
	row, _ := rows[0].(map[string]interface{})
	switch n := row["n"].(type) {
	case float64:
		return int(n)
	case int64:
		return int(n)
	case uint64:
		return int(n)
	case int:
		return n
	}
	return 0
}

// rows runs a single-statement query and returns its result rows
func (tdb *TestDB) rows(query string, vars map[string]interface{}) []interface{} {
	tdb.t.Helper()
	results, err := tdb.DB.Query(tdb.Ctx(), query, vars)
	if err != nil {
		tdb.t.Fatalf("testdb: query failed: %v\nQuery: %s", err, query)
	}
	if len(results) == 0 {
		return nil
	}
	resp, _ := results[0].(map[string]interface{})
	rows, _ := resp["result"].([]interface{})
	return rows
}

// AssertExists fails the test when the record id is missing
func (tdb *TestDB) AssertExists(id string) {
	tdb.t.Helper()
	if !tdb.exists(id) {
		tdb.t.Errorf("expected record %s to exist", id)
	}
}

// AssertNotExists fails the test when the record id is present
func (tdb *TestDB) AssertNotExists(id string) {
	tdb.t.Helper()
	if tdb.exists(id) {
		tdb.t.Errorf("expected record %s to be deleted", id)
	}
}

func (tdb *TestDB) exists(id string) bool {
	tdb.t.Helper()
	return len(tdb.rows("SELECT id FROM type::record($id)", map[string]interface{}{"id": id})) > 0
}
