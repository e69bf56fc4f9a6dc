package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/phrazzld/flashdeck/internal/api/shared"
	"github.com/phrazzld/flashdeck/internal/domain"
	"github.com/phrazzld/flashdeck/internal/generation"
)

// CardGenerator produces flashcards from study text.
type CardGenerator interface {
	Generate(ctx context.Context, req generation.Request) ([]domain.GeneratedCard, error)
}

// GenerateHandler handles POST /api/generate-cards.
type GenerateHandler struct {
	generator CardGenerator
	logger    *slog.Logger
}

// NewGenerateHandler creates a GenerateHandler.
func NewGenerateHandler(generator CardGenerator, logger *slog.Logger) *GenerateHandler {
	if generator == nil {
		panic("generator cannot be nil for GenerateHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GenerateHandler{
		generator: generator,
		logger:    logger.With(slog.String("component", "generate_handler")),
	}
}

// GenerateCards returns the generated cards without saving them. Clients
// save the ones they keep through the bulk card endpoint.
func (h *GenerateHandler) GenerateCards(w http.ResponseWriter, r *http.Request) {
	var req generation.Request
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	cards, err := h.generator.Generate(r.Context(), req)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate cards")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, GenerateResponse{Cards: cards})
}
