package api

import (
	"github.com/go-chi/chi/v5"

	apiMiddleware "github.com/phrazzld/flashdeck/internal/api/middleware"
)

// Handlers groups the route handlers mounted under /api.
type Handlers struct {
	Auth     *AuthHandler
	Decks    *DeckHandler
	Settings *SettingsHandler
	Generate *GenerateHandler
}

// RegisterRoutes mounts the /api routes on r. Everything except sign-in,
// signup, email links and token refresh requires a valid access token.
func RegisterRoutes(r chi.Router, h Handlers, authMiddleware *apiMiddleware.AuthMiddleware) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/signup", h.Auth.Signup)
		r.Post("/auth/login", h.Auth.Login)
		r.Post("/auth/verify", h.Auth.Verify)
		r.Post("/auth/resend-confirmation", h.Auth.ResendConfirmation)
		r.Post("/auth/reset-password", h.Auth.ResetPassword)
		r.Post("/auth/refresh", h.Auth.RefreshToken)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/auth/me", h.Auth.Me)
			r.Put("/auth/password", h.Auth.UpdatePassword)
			r.Post("/auth/logout", h.Auth.Logout)

			r.Get("/state", h.Settings.State)

			r.Get("/decks", h.Decks.ListDecks)
			r.Post("/decks", h.Decks.CreateDeck)
			r.Route("/decks/{deckID}", func(r chi.Router) {
				r.Put("/", h.Decks.UpdateDeck)
				r.Delete("/", h.Decks.DeleteDeck)
				r.Get("/study", h.Decks.StudyQueue)
				r.Get("/cards", h.Decks.ListCards)
				r.Post("/cards", h.Decks.AddCard)
				r.Post("/cards/bulk", h.Decks.AddGeneratedCards)
				r.Put("/cards/{cardID}", h.Decks.UpdateCard)
				r.Delete("/cards/{cardID}", h.Decks.DeleteCard)
			})

			r.Get("/settings", h.Settings.GetSettings)
			r.Patch("/settings", h.Settings.UpdateSettings)
			r.Put("/settings/theme", h.Settings.SetTheme)

			r.Get("/study-sessions", h.Settings.ListStudySessions)
			r.Post("/study-sessions", h.Settings.CreateStudySession)

			r.Post("/generate-cards", h.Generate.GenerateCards)
		})
	})
}
