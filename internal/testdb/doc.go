//go:build integration

// Package testdb provides helpers for tests that run against a real
// PostgreSQL database.
//
// Each test runs in its own transaction which is rolled back when the test
// finishes, so tests may call t.Parallel and share tables freely:
//
//	func TestUserStore(t *testing.T) {
//		t.Parallel()
//		db := testdb.Open(t)
//
//		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//			users := postgres.NewPostgresUserStore(tx)
//			// ...
//		})
//	}
//
// Tests are skipped unless CLEANAPI_TEST_DATABASE_URL or DATABASE_URL is
// set. Build with -tags=integration.
package testdb
