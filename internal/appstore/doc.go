// Package appstore holds the authenticated user's decks, cards, settings and
// study history in an explicitly constructed state container.
//
// A Store is backed by exactly one Backend chosen at startup: MockBackend
// serves a seeded in-memory dataset, RemoteBackend reads and writes the
// relational stores. Both satisfy the same contract, so callers never branch
// on which one is in use.
//
// Every mutation calls the backend first and changes local state only after
// the backend confirms. A failed operation returns an error and leaves the
// state exactly as it was. Completed operations publish an
// events.TypeStateChanged event carrying the new snapshot.
package appstore
