// Package domain holds the flashcard entities (users, decks, cards, settings
// and study sessions), their input validation and the defaults shared by
// both data backends.
package domain
