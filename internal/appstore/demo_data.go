package appstore

import (
	"time"

	"github.com/phrazzld/flashdeck/internal/domain"
)

// Dataset is the complete content of a MockBackend.
type Dataset struct {
	User          domain.User              `json:"user"`
	Decks         []domain.Deck            `json:"decks"`
	Cards         map[string][]domain.Card `json:"cards"`
	Settings      domain.Settings          `json:"settings"`
	StudySessions []domain.StudySession    `json:"study_sessions"`
}

// DatasetFromState rebuilds a dataset from a persisted, authenticated state.
// It is complete only when the state was produced by a Store using
// WithAllCards; decks whose cards were never loaded keep an empty card list.
func DatasetFromState(st State) (Dataset, bool) {
	if !st.IsAuthenticated || st.User == nil {
		return Dataset{}, false
	}
	st = normalizeState(st.Clone())
	return Dataset{
		User:          *st.User,
		Decks:         st.Decks,
		Cards:         st.Cards,
		Settings:      st.Settings,
		StudySessions: st.StudySessions,
	}, true
}

func ts(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return t
}

func demoDeck(id, title, description, created, updated string, count int) domain.Deck {
	return domain.Deck{
		ID:          id,
		UserID:      demoUserID,
		Title:       title,
		Description: &description,
		CardCount:   count,
		CreatedAt:   ts(created),
		UpdatedAt:   ts(updated),
	}
}

func demoCard(id, deckID, front, back string, position int, created string) domain.Card {
	return domain.Card{
		ID:        id,
		DeckID:    deckID,
		FrontText: front,
		BackText:  back,
		Position:  position,
		CreatedAt: ts(created),
		UpdatedAt: ts(created),
	}
}

func demoSession(id, deckID, started, ended string, known, total int) domain.StudySession {
	end := ts(ended)
	return domain.StudySession{
		ID:         id,
		UserID:     demoUserID,
		DeckID:     deckID,
		StartedAt:  ts(started),
		EndedAt:    &end,
		KnownCount: known,
		TotalCount: total,
	}
}

const demoUserID = "user-1"

// DemoDataset returns the seed data served by the mock backend. Each deck's
// CardCount equals the length of its card list.
func DemoDataset() Dataset {
	const (
		deck1 = "2024-01-15T10:00:00Z"
		deck2 = "2024-01-18T09:00:00Z"
		deck3 = "2024-01-20T15:00:00Z"
		deck4 = "2024-01-22T08:00:00Z"
	)

	cards := map[string][]domain.Card{
		"deck-1": {
			demoCard("card-1-1", "deck-1", "What is a closure in JavaScript?",
				"A closure is a function that has access to its outer function's scope, even after the outer function has returned. It 'closes over' the variables from its parent scope.",
				1, deck1),
			demoCard("card-1-2", "deck-1", "What is the difference between let and const?",
				"Both are block-scoped. 'let' allows reassignment while 'const' creates a read-only reference that cannot be reassigned. However, const objects can still have their properties modified.",
				2, deck1),
			demoCard("card-1-3", "deck-1", "What is hoisting?",
				"Hoisting is JavaScript's default behavior of moving declarations to the top of their scope. Variable declarations (var) are hoisted but not initialized. Function declarations are fully hoisted.",
				3, deck1),
			demoCard("card-1-4", "deck-1", "What is the event loop?",
				"The event loop is a mechanism that allows JavaScript to perform non-blocking operations. It continuously checks the call stack and task queue, pushing callbacks from the queue to the stack when it's empty.",
				4, deck1),
			demoCard("card-1-5", "deck-1", "What are Promises?",
				"Promises are objects representing the eventual completion or failure of an asynchronous operation. They have three states: pending, fulfilled, or rejected.",
				5, deck1),
		},
		"deck-2": {
			demoCard("card-2-1", "deck-2", "What does useState return?",
				"useState returns an array with two elements: the current state value and a function to update it. Example: const [count, setCount] = useState(0);",
				1, deck2),
			demoCard("card-2-2", "deck-2", "When does useEffect run?",
				"useEffect runs after render. With an empty dependency array [], it runs once on mount. With dependencies, it runs when any dependency changes. Without an array, it runs after every render.",
				2, deck2),
			demoCard("card-2-3", "deck-2", "What is useContext used for?",
				"useContext allows you to subscribe to React context without introducing nesting. It reads the context value from the nearest matching Provider above it in the tree.",
				3, deck2),
		},
		"deck-3": {
			demoCard("card-3-1", "deck-3", "What is the main axis in Flexbox?",
				"The main axis is defined by flex-direction. If it's 'row', the main axis runs horizontally. If it's 'column', it runs vertically. justify-content aligns items along this axis.",
				1, deck3),
			demoCard("card-3-2", "deck-3", "What does 'grid-template-columns: repeat(3, 1fr)' do?",
				"It creates 3 equal-width columns. 'repeat(3, 1fr)' is shorthand for '1fr 1fr 1fr'. The 'fr' unit represents a fraction of the available space in the grid container.",
				2, deck3),
		},
		"deck-4": {
			demoCard("card-4-1", "deck-4", "What is the difference between 'type' and 'interface'?",
				"Both can describe object shapes. Interfaces can be extended and merged. Types can create unions, tuples, and mapped types. Types use '=' while interfaces don't.",
				1, deck4),
			demoCard("card-4-2", "deck-4", "What are generics in TypeScript?",
				"Generics allow you to create reusable components that work with multiple types. They're like type variables: function identity<T>(arg: T): T { return arg; }",
				2, deck4),
		},
	}

	decks := []domain.Deck{
		demoDeck("deck-1", "JavaScript Fundamentals",
			"Core JavaScript concepts including variables, functions, and objects",
			deck1, "2024-01-20T14:30:00Z", len(cards["deck-1"])),
		demoDeck("deck-2", "React Hooks",
			"useState, useEffect, useContext and more",
			deck2, "2024-01-22T11:00:00Z", len(cards["deck-2"])),
		demoDeck("deck-3", "CSS Flexbox & Grid",
			"Modern CSS layout techniques",
			deck3, "2024-01-21T16:00:00Z", len(cards["deck-3"])),
		demoDeck("deck-4", "TypeScript Basics",
			"Types, interfaces, and generics",
			deck4, "2024-01-23T12:00:00Z", len(cards["deck-4"])),
	}

	settings := domain.DefaultSettings(demoUserID)
	settings.ID = "settings-1"
	settings.UpdatedAt = ts("2024-01-20T00:00:00Z")

	return Dataset{
		User: domain.User{
			ID:          demoUserID,
			Email:       "demo@flashcards.app",
			FullName:    "Demo User",
			CreatedAt:   ts("2024-01-01T00:00:00Z"),
			ConfirmedAt: ptrTime(ts("2024-01-01T00:00:00Z")),
		},
		Decks:    decks,
		Cards:    cards,
		Settings: settings,
		StudySessions: []domain.StudySession{
			demoSession("session-1", "deck-1", "2024-01-20T10:00:00Z", "2024-01-20T10:15:00Z", 4, 5),
			demoSession("session-2", "deck-2", "2024-01-21T14:00:00Z", "2024-01-21T14:10:00Z", 2, 3),
		},
	}
}

func ptrTime(t time.Time) *time.Time { return &t }
