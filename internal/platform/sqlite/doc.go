// Package sqlite provides a small key/value store on an embedded SQLite
// database. The mock backend uses it to persist the serialized application
// state between runs.
package sqlite
