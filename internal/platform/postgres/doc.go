// Package postgres implements the store interfaces on PostgreSQL through the
// pgx stdlib driver. It also owns the embedded goose migrations that create
// the schema those stores rely on.
package postgres
