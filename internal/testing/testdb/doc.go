// Package testdb provides SurrealDB databases for repository tests.
//
// A single SurrealDB server is shared by the test binary. Set TEST_DB_HOST
// (and optionally TEST_DB_PORT, TEST_DB_USER, TEST_DB_PASSWORD) to use an
// existing server; otherwise an in-memory surrealdb container is started
// with testcontainers.
//
//	func TestSomething(t *testing.T) {
//	    tdb := testdb.New(t)
//	    repo := repository.NewGuestRepository(tdb.DB)
//	    ...
//	}
//
// Each call to New gets its own namespace with migrations/ applied. The
// namespace is removed when the test ends. Tests are skipped under -short.
package testdb
