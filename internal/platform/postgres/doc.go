// Package postgres implements the store interfaces on PostgreSQL through
// database/sql and the pgx driver. It owns the embedded goose migrations
// and translates driver errors into the store sentinels.
package postgres
