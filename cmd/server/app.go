package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/phrazzld/flashdeck/internal/appstore"
	"github.com/phrazzld/flashdeck/internal/config"
	"github.com/phrazzld/flashdeck/internal/events"
	"github.com/phrazzld/flashdeck/internal/generation"
	"github.com/phrazzld/flashdeck/internal/platform/gemini"
	"github.com/phrazzld/flashdeck/internal/platform/postgres"
	"github.com/phrazzld/flashdeck/internal/platform/sqlite"
	"github.com/phrazzld/flashdeck/internal/service"
	"github.com/phrazzld/flashdeck/internal/service/auth"
	"github.com/phrazzld/flashdeck/internal/task"
)

// application holds the shared dependencies and releases them on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	// db is set only for the remote backend.
	db *sql.DB
	// stateStore is set only when mock state persistence is enabled.
	stateStore *sqlite.KVStore
	// mailRunner is set only for the remote backend.
	mailRunner *task.Runner

	jwtService auth.JWTService
	generator  *generation.Service
	emitter    *events.InMemoryEventEmitter
	sessions   *appstore.Sessions
}

// newApplication wires every component for the configured backend.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config:  cfg,
		logger:  logger,
		emitter: events.NewInMemoryEventEmitter(logger),
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	app.generator, err = newGenerator(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, err
	}

	var backend appstore.Backend
	var restored *appstore.State
	if cfg.IsRemote() {
		backend, err = app.remoteBackend(ctx)
	} else {
		backend, restored, err = app.mockBackend(ctx)
	}
	if err != nil {
		app.cleanup()
		return nil, err
	}

	base := []appstore.Option{appstore.WithEmitter(app.emitter)}
	if !cfg.IsRemote() {
		base = append(base, appstore.WithAllCards())
	}
	newStore := func(opts ...appstore.Option) *appstore.Store {
		return appstore.New(backend, logger, append(slices.Clone(base), opts...)...)
	}
	app.sessions = appstore.NewSessions(func() *appstore.Store { return newStore() }, logger)
	if restored != nil {
		app.sessions.Put(restored.User.ID, newStore(appstore.WithState(*restored)))
		logger.Info("persisted session restored", slog.String("user_id", restored.User.ID))
	}

	logger.Info("application initialized", slog.String("backend", cfg.Backend.Mode))
	return app, nil
}

// newGenerator builds the card generation service. Without an API key the
// service is still created and every call reports it is not configured.
func newGenerator(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (*generation.Service, error) {
	var completer generation.Completer
	c, err := gemini.NewCompleter(ctx, logger.With(slog.String("component", "gemini_completer")), cfg)
	switch {
	case errors.Is(err, gemini.ErrEmptyAPIKey):
		logger.Warn("Gemini API key not configured, card generation disabled")
	case err != nil:
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	default:
		completer = c
	}

	svc, err := generation.NewService(completer, generation.Options{
		DefaultModel:    cfg.DefaultModel,
		AllowedModels:   cfg.AllowedModels,
		MaxOutputTokens: cfg.MaxOutputTokens,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation service: %w", err)
	}
	return svc, nil
}

// mockBackend serves the demo dataset. When a state file is configured it
// serves the persisted mock data instead and resumes a persisted session.
func (app *application) mockBackend(ctx context.Context) (appstore.Backend, *appstore.State, error) {
	data := appstore.DemoDataset()
	var restored *appstore.State
	var handlers []events.EventHandler

	if file := app.config.Backend.StateFile; file != "" {
		kv, err := sqlite.Open(ctx, file, app.logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open state file: %w", err)
		}
		app.stateStore = kv

		key := app.config.Backend.StateKey
		saved, haveData, err := appstore.RestoreDataset(ctx, kv, key)
		if err != nil {
			app.logger.Warn("ignoring unreadable persisted mock data", slog.String("error", err.Error()))
		} else if haveData {
			data = saved
		}

		st, ok, err := appstore.Restore(ctx, kv, key)
		if err != nil {
			app.logger.Warn("ignoring unreadable persisted state", slog.String("error", err.Error()))
		} else if ok && st.IsAuthenticated && st.User != nil {
			if !haveData {
				// State saved before the mock data had its own key.
				if ds, ok := appstore.DatasetFromState(st); ok {
					data = ds
				}
			}
			if st.User.ID == data.User.ID {
				restored = &st
			}
		}

		handlers = append(handlers, appstore.NewPersistenceHandler(kv, key, app.logger))
	}

	backend := appstore.NewMockBackend(data, app.logger)
	if app.stateStore != nil {
		handlers = append(handlers,
			appstore.NewDatasetPersistenceHandler(app.stateStore, app.config.Backend.StateKey, backend, app.logger))
	}
	for _, h := range handlers {
		app.emitter.RegisterHandler(h)
	}
	return backend, restored, nil
}

// remoteBackend connects to PostgreSQL and wires the account service and row stores.
func (app *application) remoteBackend(ctx context.Context) (appstore.Backend, error) {
	db, err := openDatabase(ctx, app.config.Database.URL, app.logger)
	if err != nil {
		return nil, err
	}
	app.db = db

	taskCfg := app.config.Task
	app.mailRunner = task.NewRunner(task.RunnerConfig{
		WorkerCount: taskCfg.WorkerCount,
		QueueSize:   taskCfg.QueueSize,
		TaskTimeout: time.Duration(taskCfg.TaskTimeoutSeconds) * time.Second,
	}, app.logger)
	app.mailRunner.Start()

	authCfg := app.config.Auth
	passwords := auth.NewBcryptPasswords(authCfg.BCryptCost)
	settings := postgres.NewPostgresSettingsStore(db, app.logger)
	accounts := service.NewAccountService(service.AccountDeps{
		DB:       db,
		Users:    postgres.NewPostgresUserStore(db, app.logger),
		Tokens:   postgres.NewPostgresVerificationTokenStore(db, app.logger),
		Settings: settings,
		Hasher:   passwords,
		Verifier: passwords,
		Mailer:   service.NewQueuedMailer(service.NewLogMailer(app.logger), app.mailRunner, app.logger),
	}, service.AccountOptions{
		RequireConfirmation:  authCfg.RequireEmailConfirmation,
		VerificationLifetime: time.Duration(authCfg.VerificationLifetimeMinutes) * time.Minute,
		PublicURL:            app.config.Server.PublicURL,
	}, app.logger)

	return appstore.NewRemoteBackend(db, accounts, appstore.RemoteStores{
		Decks:    postgres.NewPostgresDeckStore(db, app.logger),
		Cards:    postgres.NewPostgresCardStore(db, app.logger),
		Settings: settings,
		Sessions: postgres.NewPostgresStudySessionStore(db, app.logger),
	}, app.logger), nil
}

// Run serves HTTP until ctx is canceled or a shutdown signal arrives.
func (app *application) Run(ctx context.Context) error {
	defer app.cleanup()
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup closes the connections opened by newApplication.
func (app *application) cleanup() {
	if app.mailRunner != nil {
		app.mailRunner.Stop()
		app.mailRunner = nil
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database connection", slog.String("error", err.Error()))
		}
		app.db = nil
	}
	if app.stateStore != nil {
		if err := app.stateStore.Close(); err != nil {
			app.logger.Error("failed to close state file", slog.String("error", err.Error()))
		}
		app.stateStore = nil
	}
}
