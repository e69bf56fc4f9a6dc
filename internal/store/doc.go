// Package store declares the row-level persistence contracts of the remote
// backend: users and verification tokens, decks, cards, settings and study
// sessions. Every read and write is scoped to the owning user id, and each
// store can be rebound to a transaction with WithTx.
package store
