package appstore

import (
	"context"
	"testing"

	"github.com/phrazzld/flashdeck/internal/domain"
	"github.com/phrazzld/flashdeck/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemoDatasetCountsMatchCards(t *testing.T) {
	data := DemoDataset()
	require.Len(t, data.Decks, 4)
	for _, d := range data.Decks {
		assert.Equal(t, len(data.Cards[d.ID]), d.CardCount, d.ID)
	}
	assert.Equal(t, "demo@flashcards.app", data.User.Email)
	assert.Equal(t, "settings-1", data.Settings.ID)
}

func TestMockBackendIsIsolatedFromDataset(t *testing.T) {
	data := DemoDataset()
	b := NewMockBackend(data, nil)

	_, err := b.CreateDeck(context.Background(), "user-1", domain.DeckInput{Title: "New"})
	require.NoError(t, err)

	assert.Len(t, data.Decks, 4)
	decks, err := b.ListDecks(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Len(t, decks, 5)
}

func TestMockBackendFabricatesSequentialIDs(t *testing.T) {
	b := newMockBackend()
	ctx := context.Background()

	deck, err := b.CreateDeck(ctx, "user-1", domain.DeckInput{Title: "One"})
	require.NoError(t, err)
	card, err := b.CreateCard(ctx, "user-1", deck.ID, domain.CardInput{FrontText: "Q", BackText: "A"}, 1)
	require.NoError(t, err)

	assert.Equal(t, "mock-1001", deck.ID)
	assert.Equal(t, "mock-1002", card.ID)
}

func TestMockBackendAcceptsAnyCredentials(t *testing.T) {
	b := newMockBackend()
	ctx := context.Background()

	user, err := b.Login(ctx, "someone@else.com", "x")
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)

	user, err = b.Verify(ctx, "any", domain.VerificationRecovery)
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)

	_, err = b.CurrentUser(ctx, "user-2")
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestMockBackendScopesToUser(t *testing.T) {
	b := newMockBackend()
	ctx := context.Background()

	decks, err := b.ListDecks(ctx, "user-2")
	require.NoError(t, err)
	assert.Empty(t, decks)

	_, err = b.ListCards(ctx, "user-2", "deck-1")
	assert.ErrorIs(t, err, store.ErrDeckNotFound)
	assert.ErrorIs(t, b.DeleteDeck(ctx, "user-2", "deck-1"), store.ErrDeckNotFound)
}

func TestMockBackendIgnoresServerManagedSettings(t *testing.T) {
	b := newMockBackend()

	forged := "forged"
	goal := 5
	settings, err := b.UpdateSettings(context.Background(), "user-1", domain.SettingsPatch{
		ID:        &forged,
		UserID:    &forged,
		DailyGoal: domain.OptionalInt{Set: true, Value: &goal},
	})
	require.NoError(t, err)
	assert.Equal(t, "settings-1", settings.ID)
	assert.Equal(t, "user-1", settings.UserID)
	assert.Equal(t, 5, *settings.DailyGoal)
	assert.Equal(t, fixedNow, settings.UpdatedAt)
}

func TestDatasetFromState(t *testing.T) {
	_, ok := DatasetFromState(EmptyState())
	assert.False(t, ok)

	s := newLoggedInStore(t, newMockBackend())
	data, ok := DatasetFromState(s.Snapshot())
	require.True(t, ok)
	assert.Equal(t, "user-1", data.User.ID)
	assert.Len(t, data.Decks, 4)
	assert.NotNil(t, data.Cards)
}

func TestMockBackendContinuesPersistedIDs(t *testing.T) {
	data := DemoDataset()
	data.Cards["deck-1"] = append(data.Cards["deck-1"], domain.Card{ID: "mock-1042", DeckID: "deck-1", Position: 6})

	b := NewMockBackend(data, nil)
	card, err := b.CreateCard(context.Background(), "user-1", "deck-1", domain.CardInput{FrontText: "Q", BackText: "A"}, 7)
	require.NoError(t, err)
	assert.Equal(t, "mock-1043", card.ID)

	exported := b.Dataset()
	assert.Len(t, exported.Cards["deck-1"], 7)
	exported.Cards["deck-1"][0].FrontText = "changed"
	assert.NotEqual(t, "changed", b.Dataset().Cards["deck-1"][0].FrontText)
}
