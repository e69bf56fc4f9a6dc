package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/phrazzld/flashdeck/internal/api"
	apiMiddleware "github.com/phrazzld/flashdeck/internal/api/middleware"
	"github.com/phrazzld/flashdeck/internal/api/shared"
)

// setupRouter builds the HTTP handler with middleware, API routes and /health.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.TraceMiddleware(app.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   app.config.Server.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Accept", "Origin"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)

	api.RegisterRoutes(r, api.Handlers{
		Auth:     api.NewAuthHandler(app.sessions, app.jwtService, &app.config.Auth, app.logger),
		Decks:    api.NewDeckHandler(app.sessions, app.logger),
		Settings: api.NewSettingsHandler(app.sessions, app.logger),
		Generate: api.NewGenerateHandler(app.generator, app.logger),
	}, apiMiddleware.NewAuthMiddleware(app.jwtService))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithJSON(w, r, http.StatusOK, map[string]interface{}{
			"status":           "ok",
			"backend":          app.config.Backend.Mode,
			"generation_ready": app.generator.Configured(),
			"active_sessions":  app.sessions.Len(),
		})
	})

	return r
}
