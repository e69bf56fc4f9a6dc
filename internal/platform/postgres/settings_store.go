package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/flashdeck/internal/domain"
	"github.com/phrazzld/flashdeck/internal/platform/logger"
	"github.com/phrazzld/flashdeck/internal/store"
)

// PostgresSettingsStore implements the store.SettingsStore interface.
type PostgresSettingsStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSettingsStore creates a new PostgreSQL implementation of the SettingsStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresSettingsStore(db store.DBTX, logger *slog.Logger) *PostgresSettingsStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresSettingsStore{
		db:     db,
		logger: logger.With(slog.String("component", "settings_store")),
	}
}

var _ store.SettingsStore = (*PostgresSettingsStore)(nil)

// WithTx implements store.SettingsStore.WithTx
func (s *PostgresSettingsStore) WithTx(tx *sql.Tx) store.SettingsStore {
	return &PostgresSettingsStore{db: tx, logger: s.logger}
}

const settingsColumns = `id, user_id, shuffle_enabled, daily_goal, default_ai_card_count,
	default_ai_style, ai_model, cards_per_session, theme, updated_at`

func scanSettings(row rowScanner) (domain.Settings, error) {
	var (
		st        domain.Settings
		dailyGoal sql.NullInt64
	)
	err := row.Scan(
		&st.ID,
		&st.UserID,
		&st.ShuffleEnabled,
		&dailyGoal,
		&st.DefaultAICardCount,
		&st.DefaultAIStyle,
		&st.AIModel,
		&st.CardsPerSession,
		&st.Theme,
		&st.UpdatedAt,
	)
	if err != nil {
		return domain.Settings{}, err
	}
	if dailyGoal.Valid {
		goal := int(dailyGoal.Int64)
		st.DailyGoal = &goal
	}
	return st, nil
}

// GetByUser implements store.SettingsStore.GetByUser
func (s *PostgresSettingsStore) GetByUser(ctx context.Context, userID string) (*domain.Settings, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+settingsColumns+` FROM user_settings WHERE user_id = $1`, userID)
	st, err := scanSettings(row)
	if err != nil {
		return nil, mapEntityError(err, store.ErrSettingsNotFound)
	}
	return &st, nil
}

// Create implements store.SettingsStore.Create
func (s *PostgresSettingsStore) Create(ctx context.Context, st *domain.Settings) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_settings (`+settingsColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		st.ID,
		st.UserID,
		st.ShuffleEnabled,
		st.DailyGoal,
		st.DefaultAICardCount,
		st.DefaultAIStyle,
		st.AIModel,
		st.CardsPerSession,
		st.Theme,
		st.UpdatedAt,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create settings",
			slog.String("error", err.Error()),
			slog.String("user_id", st.UserID))
		return MapError(err)
	}
	return nil
}

// settingsAssignments builds the SET list for the fields present in patch.
// Server-managed fields are never written from a patch.
func settingsAssignments(patch domain.SettingsPatch) ([]string, []any) {
	var (
		sets []string
		args []any
	)
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.ShuffleEnabled != nil {
		add("shuffle_enabled", *patch.ShuffleEnabled)
	}
	if patch.DailyGoal.Set {
		add("daily_goal", patch.DailyGoal.Value)
	}
	if patch.DefaultAICardCount != nil {
		add("default_ai_card_count", *patch.DefaultAICardCount)
	}
	if patch.DefaultAIStyle != nil {
		add("default_ai_style", *patch.DefaultAIStyle)
	}
	if patch.AIModel != nil {
		add("ai_model", *patch.AIModel)
	}
	if patch.CardsPerSession != nil {
		add("cards_per_session", *patch.CardsPerSession)
	}
	if patch.Theme != nil {
		add("theme", *patch.Theme)
	}
	sets = append(sets, "updated_at = NOW()")
	return sets, args
}

// Update implements store.SettingsStore.Update
func (s *PostgresSettingsStore) Update(
	ctx context.Context,
	userID string,
	patch domain.SettingsPatch,
) (*domain.Settings, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	sets, args := settingsAssignments(patch.StripServerManaged())
	args = append(args, userID)
	query := fmt.Sprintf(
		"UPDATE user_settings SET %s WHERE user_id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args), settingsColumns,
	)

	st, err := scanSettings(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		mapped := mapEntityError(err, store.ErrSettingsNotFound)
		log.Warn("failed to update settings",
			slog.String("error", err.Error()),
			slog.String("user_id", userID))
		return nil, mapped
	}

	log.Debug("settings updated", slog.String("user_id", userID), slog.Int("fields", len(sets)-1))
	return &st, nil
}

// PostgresStudySessionStore implements the store.StudySessionStore interface.
type PostgresStudySessionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresStudySessionStore creates a study session store.
func NewPostgresStudySessionStore(db store.DBTX, logger *slog.Logger) *PostgresStudySessionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresStudySessionStore{
		db:     db,
		logger: logger.With(slog.String("component", "study_session_store")),
	}
}

var _ store.StudySessionStore = (*PostgresStudySessionStore)(nil)

// WithTx implements store.StudySessionStore.WithTx
func (s *PostgresStudySessionStore) WithTx(tx *sql.Tx) store.StudySessionStore {
	return &PostgresStudySessionStore{db: tx, logger: s.logger}
}

// ListByUser implements store.StudySessionStore.ListByUser
func (s *PostgresStudySessionStore) ListByUser(ctx context.Context, userID string) ([]domain.StudySession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, deck_id, started_at, ended_at, known_count, total_count
		FROM study_sessions
		WHERE user_id = $1
		ORDER BY started_at DESC, id
	`, userID)
	if err != nil {
		log.Error("failed to list study sessions",
			slog.String("error", err.Error()),
			slog.String("user_id", userID))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	sessions := []domain.StudySession{}
	for rows.Next() {
		var (
			ss      domain.StudySession
			endedAt sql.NullTime
		)
		if err := rows.Scan(&ss.ID, &ss.UserID, &ss.DeckID, &ss.StartedAt, &endedAt,
			&ss.KnownCount, &ss.TotalCount); err != nil {
			log.Error("failed to scan study session row", slog.String("error", err.Error()))
			return nil, err
		}
		if endedAt.Valid {
			t := endedAt.Time
			ss.EndedAt = &t
		}
		sessions = append(sessions, ss)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// Create implements store.StudySessionStore.Create
func (s *PostgresStudySessionStore) Create(ctx context.Context, ss *domain.StudySession) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO study_sessions (id, user_id, deck_id, started_at, ended_at, known_count, total_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, ss.ID, ss.UserID, ss.DeckID, ss.StartedAt, ss.EndedAt, ss.KnownCount, ss.TotalCount)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create study session",
			slog.String("error", err.Error()),
			slog.String("user_id", ss.UserID))
		return MapError(err)
	}
	return nil
}
