package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/flashdeck/internal/api/shared"
	"github.com/phrazzld/flashdeck/internal/appstore"
	"github.com/phrazzld/flashdeck/internal/domain"
)

// SettingsHandler handles settings, study history and state snapshot endpoints.
type SettingsHandler struct {
	sessions *appstore.Sessions
	logger   *slog.Logger
}

// NewSettingsHandler creates a SettingsHandler.
func NewSettingsHandler(sessions *appstore.Sessions, logger *slog.Logger) *SettingsHandler {
	if sessions == nil {
		panic("sessions cannot be nil for SettingsHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SettingsHandler{
		sessions: sessions,
		logger:   logger.With(slog.String("component", "settings_handler")),
	}
}

// GetSettings handles GET /api/settings.
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	st, ok := sessionStore(w, r, h.sessions, h.logger)
	if !ok {
		return
	}

	settings, err := st.FetchSettings(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load settings")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, settings)
}

// UpdateSettings handles PATCH /api/settings. Fields left out of the body are
// unchanged; daily_goal may be set to null explicitly.
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var patch domain.SettingsPatch
	if err := shared.DecodeJSON(r, &patch); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	st, ok := sessionStore(w, r, h.sessions, h.logger)
	if !ok {
		return
	}

	settings, err := st.UpdateSettings(r.Context(), patch)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update settings")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, settings)
}

// SetTheme handles PUT /api/settings/theme.
func (h *SettingsHandler) SetTheme(w http.ResponseWriter, r *http.Request) {
	var req ThemeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	st, ok := sessionStore(w, r, h.sessions, h.logger)
	if !ok {
		return
	}

	settings, err := st.SetTheme(r.Context(), req.Theme)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update theme")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, settings)
}

// ListStudySessions handles GET /api/study-sessions.
func (h *SettingsHandler) ListStudySessions(w http.ResponseWriter, r *http.Request) {
	st, ok := sessionStore(w, r, h.sessions, h.logger)
	if !ok {
		return
	}

	sessions, err := st.FetchStudySessions(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load study sessions")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, sessions)
}

// CreateStudySession handles POST /api/study-sessions.
func (h *SettingsHandler) CreateStudySession(w http.ResponseWriter, r *http.Request) {
	var req StudySessionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	st, ok := sessionStore(w, r, h.sessions, h.logger)
	if !ok {
		return
	}

	session, err := st.CreateStudySession(r.Context(), req.DeckID, req.KnownCount, req.TotalCount)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to record study session")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, session)
}

// State handles GET /api/state, returning the whole session snapshot.
func (h *SettingsHandler) State(w http.ResponseWriter, r *http.Request) {
	st, ok := sessionStore(w, r, h.sessions, h.logger)
	if !ok {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, st.Snapshot())
}
