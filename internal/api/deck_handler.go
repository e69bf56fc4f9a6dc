package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/flashdeck/internal/api/shared"
	"github.com/phrazzld/flashdeck/internal/appstore"
)

// DeckHandler handles deck and card endpoints for the authenticated user.
type DeckHandler struct {
	sessions *appstore.Sessions
	logger   *slog.Logger
}

// NewDeckHandler creates a DeckHandler.
func NewDeckHandler(sessions *appstore.Sessions, logger *slog.Logger) *DeckHandler {
	if sessions == nil {
		panic("sessions cannot be nil for DeckHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DeckHandler{
		sessions: sessions,
		logger:   logger.With(slog.String("component", "deck_handler")),
	}
}

// ListDecks handles GET /api/decks.
func (h *DeckHandler) ListDecks(w http.ResponseWriter, r *http.Request) {
	st, ok := sessionStore(w, r, h.sessions, h.logger)
	if !ok {
		return
	}

	decks, err := st.FetchDecks(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load decks")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, decks)
}

// CreateDeck handles POST /api/decks.
func (h *DeckHandler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	var req DeckRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	st, ok := sessionStore(w, r, h.sessions, h.logger)
	if !ok {
		return
	}

	deck, err := st.CreateDeck(r.Context(), req.Title, req.Description)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create deck")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, deck)
}

// UpdateDeck handles PUT /api/decks/{deckID}.
func (h *DeckHandler) UpdateDeck(w http.ResponseWriter, r *http.Request) {
	deckID, ok := pathParam(w, r, "deckID")
	if !ok {
		return
	}
	var req DeckRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	st, ok := sessionStore(w, r, h.sessions, h.logger)
	if !ok {
		return
	}

	deck, err := st.UpdateDeck(r.Context(), deckID, req.Title, req.Description)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update deck")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, deck)
}

// DeleteDeck handles DELETE /api/decks/{deckID}. The deck's cards go with it.
func (h *DeckHandler) DeleteDeck(w http.ResponseWriter, r *http.Request) {
	deckID, ok := pathParam(w, r, "deckID")
	if !ok {
		return
	}
	st, ok := sessionStore(w, r, h.sessions, h.logger)
	if !ok {
		return
	}

	if err := st.DeleteDeck(r.Context(), deckID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete deck")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListCards handles GET /api/decks/{deckID}/cards.
func (h *DeckHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	deckID, ok := pathParam(w, r, "deckID")
	if !ok {
		return
	}
	st, ok := sessionStore(w, r, h.sessions, h.logger)
	if !ok {
		return
	}

	cards, err := st.FetchCards(r.Context(), deckID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load cards")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, CardsResponse{Cards: cards})
}

// AddCard handles POST /api/decks/{deckID}/cards.
func (h *DeckHandler) AddCard(w http.ResponseWriter, r *http.Request) {
	deckID, ok := pathParam(w, r, "deckID")
	if !ok {
		return
	}
	var req CardRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	st, ok := sessionStore(w, r, h.sessions, h.logger)
	if !ok {
		return
	}

	card, err := st.AddCard(r.Context(), deckID, req.FrontText, req.BackText)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to add card")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, card)
}

// AddGeneratedCards handles POST /api/decks/{deckID}/cards/bulk, which saves
// cards returned by the generate endpoint.
func (h *DeckHandler) AddGeneratedCards(w http.ResponseWriter, r *http.Request) {
	deckID, ok := pathParam(w, r, "deckID")
	if !ok {
		return
	}
	var req BulkCardsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	st, ok := sessionStore(w, r, h.sessions, h.logger)
	if !ok {
		return
	}

	cards, err := st.AddCardsFromAI(r.Context(), deckID, req.Cards)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to save generated cards")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, CardsResponse{Cards: cards})
}

// UpdateCard handles PUT /api/decks/{deckID}/cards/{cardID}.
func (h *DeckHandler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	deckID, ok := pathParam(w, r, "deckID")
	if !ok {
		return
	}
	cardID, ok := pathParam(w, r, "cardID")
	if !ok {
		return
	}
	var req CardRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	st, ok := sessionStore(w, r, h.sessions, h.logger)
	if !ok {
		return
	}

	card, err := st.UpdateCard(r.Context(), deckID, cardID, req.FrontText, req.BackText)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update card")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, card)
}

// DeleteCard handles DELETE /api/decks/{deckID}/cards/{cardID}.
func (h *DeckHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	deckID, ok := pathParam(w, r, "deckID")
	if !ok {
		return
	}
	cardID, ok := pathParam(w, r, "cardID")
	if !ok {
		return
	}
	st, ok := sessionStore(w, r, h.sessions, h.logger)
	if !ok {
		return
	}

	if err := st.DeleteCard(r.Context(), deckID, cardID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete card")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StudyQueue handles GET /api/decks/{deckID}/study.
func (h *DeckHandler) StudyQueue(w http.ResponseWriter, r *http.Request) {
	deckID, ok := pathParam(w, r, "deckID")
	if !ok {
		return
	}
	st, ok := sessionStore(w, r, h.sessions, h.logger)
	if !ok {
		return
	}

	cards, err := st.StudyQueue(r.Context(), deckID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to build study queue")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, CardsResponse{Cards: cards})
}
