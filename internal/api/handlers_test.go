package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apiMiddleware "github.com/phrazzld/flashdeck/internal/api/middleware"
	"github.com/phrazzld/flashdeck/internal/appstore"
	"github.com/phrazzld/flashdeck/internal/config"
	"github.com/phrazzld/flashdeck/internal/domain"
	"github.com/phrazzld/flashdeck/internal/generation"
	"github.com/phrazzld/flashdeck/internal/service/auth"
)

type stubGenerator struct {
	cards []domain.GeneratedCard
	err   error
	got   generation.Request
}

func (s *stubGenerator) Generate(ctx context.Context, req generation.Request) ([]domain.GeneratedCard, error) {
	s.got = req
	return s.cards, s.err
}

type testServer struct {
	router    http.Handler
	sessions  *appstore.Sessions
	jwt       auth.JWTService
	generator *stubGenerator
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	authConfig := &config.AuthConfig{
		JWTSecret:                   "handler-test-secret-that-is-long-enough",
		TokenLifetimeMinutes:        60,
		RefreshTokenLifetimeMinutes: 1440,
		BCryptCost:                  4,
	}
	jwtService, err := auth.NewJWTService(*authConfig)
	require.NoError(t, err)

	backend := appstore.NewMockBackend(appstore.DemoDataset(), nil)
	sessions := appstore.NewSessions(func() *appstore.Store {
		return appstore.New(backend, nil, appstore.WithShuffle(func(int, func(i, j int)) {}))
	}, nil)
	generator := &stubGenerator{}

	r := chi.NewRouter()
	RegisterRoutes(r, Handlers{
		Auth:     NewAuthHandler(sessions, jwtService, authConfig, nil),
		Decks:    NewDeckHandler(sessions, nil),
		Settings: NewSettingsHandler(sessions, nil),
		Generate: NewGenerateHandler(generator, nil),
	}, apiMiddleware.NewAuthMiddleware(jwtService))

	return &testServer{router: r, sessions: sessions, jwt: jwtService, generator: generator}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body == nil {
		req.Body = http.NoBody
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(t *testing.T) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/auth/login", "", LoginRequest{
		Email:    "demo@flashcards.app",
		Password: "anything",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.AccessToken
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestLoginIssuesTokensAndRegistersSession(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/api/auth/login", "", LoginRequest{
		Email:    "demo@flashcards.app",
		Password: "secret1",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[AuthResponse](t, rec)
	require.NotNil(t, resp.User)
	assert.Equal(t, "user-1", resp.User.ID)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.False(t, resp.ExpiresAt.IsZero())
	assert.Equal(t, 1, srv.sessions.Len())

	claims, err := srv.jwt.ValidateToken(context.Background(), resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestLoginValidation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name    string
		body    interface{}
		wantMsg string
	}{
		{name: "malformed json", body: "{", wantMsg: "Invalid request format"},
		{name: "missing email", body: LoginRequest{Password: "secret1"}, wantMsg: "Invalid email: required field"},
		{name: "bad email", body: LoginRequest{Email: "nope", Password: "secret1"}, wantMsg: "Invalid email: invalid email format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := srv.do(t, http.MethodPost, "/api/auth/login", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.wantMsg, decode[map[string]string](t, rec)["error"])
		})
	}
}

func TestSignupNeedsConfirmation(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/api/auth/signup", "", SignupRequest{
		Email:    "New@Example.com",
		Password: "secret1",
		FullName: "New User",
	})
	require.Equal(t, http.StatusAccepted, rec.Code)

	body := decode[map[string]interface{}](t, rec)
	assert.Equal(t, true, body["needs_confirmation"])
	assert.NotContains(t, body, "access_token")
	assert.Equal(t, 0, srv.sessions.Len())
}

func TestSignupRejectsShortPassword(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/api/auth/signup", "", SignupRequest{
		Email:    "new@example.com",
		Password: "12345",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid password: below minimum", decode[map[string]string](t, rec)["error"])
}

func TestVerifyStartsSession(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/api/auth/verify", "", VerifyRequest{TokenHash: "abc", Type: "signup"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode[AuthResponse](t, rec).AccessToken)

	rec = srv.do(t, http.MethodPost, "/api/auth/verify", "", VerifyRequest{TokenHash: "abc", Type: "magic"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefreshToken(t *testing.T) {
	srv := newTestServer(t)

	refresh, err := srv.jwt.GenerateRefreshToken(context.Background(), "user-1")
	require.NoError(t, err)

	rec := srv.do(t, http.MethodPost, "/api/auth/refresh", "", RefreshTokenRequest{RefreshToken: refresh})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[AuthResponse](t, rec)
	assert.Nil(t, resp.User)
	assert.NotEmpty(t, resp.AccessToken)

	access, err := srv.jwt.GenerateToken(context.Background(), "user-1")
	require.NoError(t, err)
	rec = srv.do(t, http.MethodPost, "/api/auth/refresh", "", RefreshTokenRequest{RefreshToken: access})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid refresh token", decode[map[string]string](t, rec)["error"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/api/decks", "/api/settings", "/api/state", "/api/study-sessions"} {
		rec := srv.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestSessionRestoredForValidToken(t *testing.T) {
	srv := newTestServer(t)

	token, err := srv.jwt.GenerateToken(context.Background(), "user-1")
	require.NoError(t, err)

	rec := srv.do(t, http.MethodGet, "/api/state", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	state := decode[appstore.State](t, rec)
	assert.True(t, state.IsAuthenticated)
	assert.Len(t, state.Decks, 4)
	assert.Equal(t, 1, srv.sessions.Len())
}

func TestUnknownUserTokenIsRejected(t *testing.T) {
	srv := newTestServer(t)

	token, err := srv.jwt.GenerateToken(context.Background(), "someone-else")
	require.NoError(t, err)

	rec := srv.do(t, http.MethodGet, "/api/decks", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Not authenticated", decode[map[string]string](t, rec)["error"])
	assert.Equal(t, 0, srv.sessions.Len())
}

func TestDeckLifecycle(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t)

	rec := srv.do(t, http.MethodGet, "/api/decks", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.Deck](t, rec), 4)

	rec = srv.do(t, http.MethodPost, "/api/decks", token, DeckRequest{Title: "  Go  ", Description: "Concurrency"})
	require.Equal(t, http.StatusCreated, rec.Code)
	deck := decode[domain.Deck](t, rec)
	assert.Equal(t, "Go", deck.Title)
	assert.Equal(t, 0, deck.CardCount)

	rec = srv.do(t, http.MethodPut, "/api/decks/"+deck.ID, token, DeckRequest{Title: "Go Basics"})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[domain.Deck](t, rec)
	assert.Equal(t, "Go Basics", updated.Title)
	assert.Nil(t, updated.Description)

	rec = srv.do(t, http.MethodDelete, "/api/decks/"+deck.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = srv.do(t, http.MethodDelete, "/api/decks/"+deck.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Deck not found", decode[map[string]string](t, rec)["error"])
}

func TestCreateDeckValidation(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t)

	rec := srv.do(t, http.MethodPost, "/api/decks", token, DeckRequest{Title: "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid title: is required", decode[map[string]string](t, rec)["error"])
}

func TestCardEndpointsKeepCountInSync(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t)

	rec := srv.do(t, http.MethodGet, "/api/decks/deck-2/cards", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[CardsResponse](t, rec).Cards, 3)

	rec = srv.do(t, http.MethodPost, "/api/decks/deck-2/cards", token, CardRequest{FrontText: "Q", BackText: "A"})
	require.Equal(t, http.StatusCreated, rec.Code)
	card := decode[domain.Card](t, rec)
	assert.Equal(t, 4, card.Position)

	rec = srv.do(t, http.MethodPost, "/api/decks/deck-2/cards/bulk", token, BulkCardsRequest{
		Cards: []domain.GeneratedCard{{FrontText: "Q1", BackText: "A1"}, {FrontText: "Q2", BackText: "A2"}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	bulk := decode[CardsResponse](t, rec).Cards
	require.Len(t, bulk, 2)
	assert.Equal(t, 5, bulk[0].Position)
	assert.Equal(t, 6, bulk[1].Position)

	rec = srv.do(t, http.MethodPut, "/api/decks/deck-2/cards/"+card.ID, token, CardRequest{FrontText: "Q!", BackText: "A!"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Q!", decode[domain.Card](t, rec).FrontText)

	rec = srv.do(t, http.MethodDelete, "/api/decks/deck-2/cards/"+card.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/state", token, nil)
	state := decode[appstore.State](t, rec)
	for _, d := range state.Decks {
		if d.ID == "deck-2" {
			assert.Equal(t, 5, d.CardCount)
			assert.Len(t, state.Cards["deck-2"], 5)
		}
	}
}

func TestAddCardsBeforeListingKeepsEveryCard(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t)

	for _, front := range []string{"Q1", "Q2"} {
		rec := srv.do(t, http.MethodPost, "/api/decks/deck-3/cards", token, CardRequest{FrontText: front, BackText: "A"})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := srv.do(t, http.MethodGet, "/api/decks/deck-3/cards", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cards := decode[CardsResponse](t, rec).Cards
	require.Len(t, cards, 4)
	for i, c := range cards {
		assert.Equal(t, i+1, c.Position)
	}
}

func TestBulkCardsAreCapped(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t)

	cards := make([]domain.GeneratedCard, domain.MaxBulkCards+1)
	for i := range cards {
		cards[i] = domain.GeneratedCard{FrontText: "Q", BackText: "A", Position: i}
	}

	rec := srv.do(t, http.MethodPost, "/api/decks/deck-1/cards/bulk", token, BulkCardsRequest{Cards: cards})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid cards: above maximum", decode[map[string]string](t, rec)["error"])

	rec = srv.do(t, http.MethodPost, "/api/decks/deck-1/cards/bulk", token, BulkCardsRequest{Cards: cards[:domain.MaxBulkCards]})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestCardEndpointsRejectUnknownCard(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t)

	rec := srv.do(t, http.MethodDelete, "/api/decks/deck-1/cards/missing", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Card not found", decode[map[string]string](t, rec)["error"])

	rec = srv.do(t, http.MethodPost, "/api/decks/deck-1/cards", token, CardRequest{FrontText: "Q"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStudyQueueOrdersByPosition(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t)

	rec := srv.do(t, http.MethodGet, "/api/decks/deck-1/study", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	cards := decode[CardsResponse](t, rec).Cards
	require.Len(t, cards, 5)
	for i, c := range cards {
		assert.Equal(t, i+1, c.Position)
	}

	rec = srv.do(t, http.MethodGet, "/api/decks/missing/study", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSettingsEndpoints(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t)

	rec := srv.do(t, http.MethodGet, "/api/settings", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.ThemeOcean, decode[domain.Settings](t, rec).Theme)

	rec = srv.do(t, http.MethodPatch, "/api/settings", token, `{"shuffle_enabled": false, "daily_goal": null}`)
	require.Equal(t, http.StatusOK, rec.Code)
	settings := decode[domain.Settings](t, rec)
	assert.False(t, settings.ShuffleEnabled)
	assert.Nil(t, settings.DailyGoal)
	assert.Equal(t, 10, settings.CardsPerSession)

	rec = srv.do(t, http.MethodPut, "/api/settings/theme", token, ThemeRequest{Theme: domain.ThemeForest})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.ThemeForest, decode[domain.Settings](t, rec).Theme)

	rec = srv.do(t, http.MethodPut, "/api/settings/theme", token, ThemeRequest{Theme: "neon"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStudySessionEndpoints(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t)

	rec := srv.do(t, http.MethodPost, "/api/study-sessions", token, StudySessionRequest{
		DeckID: "deck-3", KnownCount: 1, TotalCount: 2,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[domain.StudySession](t, rec)
	assert.Equal(t, "deck-3", created.DeckID)

	rec = srv.do(t, http.MethodGet, "/api/study-sessions", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sessions := decode[[]domain.StudySession](t, rec)
	require.Len(t, sessions, 3)

	rec = srv.do(t, http.MethodPost, "/api/study-sessions", token, StudySessionRequest{
		DeckID: "deck-3", KnownCount: 3, TotalCount: 2,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogoutDropsSession(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t)
	require.Equal(t, 1, srv.sessions.Len())

	rec := srv.do(t, http.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, srv.sessions.Len())
}

func TestGenerateCards(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{name: "success", wantStatus: http.StatusOK},
		{name: "not configured", err: generation.ErrNotConfigured, wantStatus: http.StatusInternalServerError, wantMsg: msgGenerateConfig},
		{name: "missing text", err: generation.ErrMissingStudyText, wantStatus: http.StatusBadRequest, wantMsg: msgGenerateStudyText},
		{name: "quota", err: generation.NewProviderError(generation.ErrQuotaExceeded, 429, "slow down"), wantStatus: http.StatusTooManyRequests, wantMsg: msgGenerateQuota},
		{name: "upstream", err: generation.NewProviderError(generation.ErrUpstream, 503, "overloaded"), wantStatus: http.StatusBadGateway, wantMsg: "overloaded"},
		{name: "parse", err: generation.ErrParseResponse, wantStatus: http.StatusInternalServerError, wantMsg: msgGenerateParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t)
			token := srv.login(t)
			srv.generator.cards = []domain.GeneratedCard{{FrontText: "Q", BackText: "A", Position: 1}}
			srv.generator.err = tt.err

			rec := srv.do(t, http.MethodPost, "/api/generate-cards", token, `{"studyText":"Go has goroutines","cardCount":"3"}`)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "Go has goroutines", srv.generator.got.StudyText)

			if tt.err == nil {
				assert.Len(t, decode[GenerateResponse](t, rec).Cards, 1)
				return
			}
			assert.Equal(t, tt.wantMsg, decode[map[string]string](t, rec)["error"])
		})
	}
}

func TestGenerateCardsRequiresAuth(t *testing.T) {
	srv := newTestServer(t)
	rec := srv.do(t, http.MethodPost, "/api/generate-cards", "", `{"studyText":"x"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
