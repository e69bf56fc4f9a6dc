package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/flashdeck/internal/api/shared"
	"github.com/phrazzld/flashdeck/internal/appstore"
	"github.com/phrazzld/flashdeck/internal/config"
	"github.com/phrazzld/flashdeck/internal/domain"
	"github.com/phrazzld/flashdeck/internal/platform/logger"
	"github.com/phrazzld/flashdeck/internal/service/auth"
)

// AuthHandler handles account and token endpoints. A successful login,
// signup or verification registers the user's Store in sessions.
type AuthHandler struct {
	sessions   *appstore.Sessions
	jwtService auth.JWTService
	authConfig *config.AuthConfig
	timeFunc   func() time.Time
	logger     *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(
	sessions *appstore.Sessions,
	jwtService auth.JWTService,
	authConfig *config.AuthConfig,
	logger *slog.Logger,
) *AuthHandler {
	if sessions == nil {
		panic("sessions cannot be nil for AuthHandler")
	}
	if jwtService == nil {
		panic("jwtService cannot be nil for AuthHandler")
	}
	if authConfig == nil {
		panic("authConfig cannot be nil for AuthHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &AuthHandler{
		sessions:   sessions,
		jwtService: jwtService,
		authConfig: authConfig,
		timeFunc:   time.Now,
		logger:     logger.With(slog.String("component", "auth_handler")),
	}
}

// Signup handles POST /api/auth/signup. Accounts that need email
// confirmation get 202 and no tokens.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	st := h.sessions.New()
	result, err := st.Signup(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create account")
		return
	}

	if result.NeedsConfirmation {
		shared.RespondWithJSON(w, r, http.StatusAccepted, SignupResponse{
			User:              result.User,
			NeedsConfirmation: true,
		})
		return
	}

	h.sessions.Put(result.User.ID, st)
	tokens, ok := h.issueTokens(w, r, result.User)
	if !ok {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, SignupResponse{
		User:         result.User,
		AuthResponse: tokens,
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	st := h.sessions.New()
	user, err := st.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to authenticate user")
		return
	}

	h.sessions.Put(user.ID, st)
	tokens, ok := h.issueTokens(w, r, user)
	if !ok {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, tokens)
}

// Verify handles POST /api/auth/verify, the target of emailed links.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	st := h.sessions.New()
	user, err := st.Verify(r.Context(), req.TokenHash, domain.VerificationKind(req.Type))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to verify link")
		return
	}

	h.sessions.Put(user.ID, st)
	tokens, ok := h.issueTokens(w, r, user)
	if !ok {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, tokens)
}

// ResendConfirmation handles POST /api/auth/resend-confirmation.
func (h *AuthHandler) ResendConfirmation(w http.ResponseWriter, r *http.Request) {
	var req EmailRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.sessions.New().ResendConfirmation(r.Context(), req.Email); err != nil {
		HandleAPIError(w, r, err, "Failed to send confirmation email")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{
		Message: "If the address has an unconfirmed account, a new link is on its way.",
	})
}

// ResetPassword handles POST /api/auth/reset-password.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req EmailRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.sessions.New().ResetPassword(r.Context(), req.Email); err != nil {
		HandleAPIError(w, r, err, "Failed to send reset email")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{
		Message: "If the address has an account, a reset link is on its way.",
	})
}

// RefreshToken handles POST /api/auth/refresh. Both tokens are rotated.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to refresh token")
		return
	}

	tokens, ok := h.issueTokens(w, r, &domain.User{ID: claims.UserID})
	if !ok {
		return
	}
	tokens.User = nil
	shared.RespondWithJSON(w, r, http.StatusOK, tokens)
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	st, ok := sessionStore(w, r, h.sessions, h.logger)
	if !ok {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, st.Snapshot().User)
}

// UpdatePassword handles PUT /api/auth/password.
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req PasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	st, ok := sessionStore(w, r, h.sessions, h.logger)
	if !ok {
		return
	}

	if err := st.UpdatePassword(r.Context(), req.Password); err != nil {
		HandleAPIError(w, r, err, "Failed to update password")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Message: "Password updated"})
}

// Logout handles POST /api/auth/logout. The session is dropped even though
// already issued tokens stay valid until they expire.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	st, ok := sessionStore(w, r, h.sessions, h.logger)
	if !ok {
		return
	}
	userID := st.UserID()

	if err := st.Logout(r.Context()); err != nil {
		HandleAPIError(w, r, err, "Failed to log out")
		return
	}
	h.sessions.Remove(userID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) issueTokens(w http.ResponseWriter, r *http.Request, user *domain.User) (*AuthResponse, bool) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	accessToken, err := h.jwtService.GenerateToken(r.Context(), user.ID)
	if err != nil {
		log.Error("failed to generate token",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID))
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to generate authentication token")
		return nil, false
	}

	refreshToken, err := h.jwtService.GenerateRefreshToken(r.Context(), user.ID)
	if err != nil {
		log.Error("failed to generate refresh token",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID))
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to generate refresh token")
		return nil, false
	}

	expiresAt := h.timeFunc().UTC().Add(time.Duration(h.authConfig.TokenLifetimeMinutes) * time.Minute)
	return &AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	}, true
}
