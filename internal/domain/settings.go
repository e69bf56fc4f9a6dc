package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"slices"
	"time"
)

// Card styles understood by AI generation.
const (
	StyleConcise  = "concise"
	StyleDetailed = "detailed"
	StyleSimple   = "simple"
	StyleAcademic = "academic"
)

// Styles lists every card style in display order.
var Styles = []string{StyleConcise, StyleDetailed, StyleSimple, StyleAcademic}

// Color themes.
const (
	ThemeOcean    = "ocean"
	ThemeSunset   = "sunset"
	ThemeForest   = "forest"
	ThemeLavender = "lavender"
	ThemeMidnight = "midnight"
)

// Themes lists every color theme in display order.
var Themes = []string{ThemeOcean, ThemeSunset, ThemeForest, ThemeLavender, ThemeMidnight}

// AI card count bounds shared by settings and generation.
const (
	MinAICardCount     = 1
	MaxAICardCount     = 30
	DefaultAICardCount = 10
)

// Settings validation errors
var (
	ErrInvalidTheme           = errors.New("unknown theme")
	ErrInvalidStyle           = errors.New("unknown card style")
	ErrInvalidAICardCount     = errors.New("default AI card count must be between 1 and 30")
	ErrInvalidCardsPerSession = errors.New("cards per session must be positive")
	ErrInvalidDailyGoal       = errors.New("daily goal must be positive")
	ErrEmptyAIModel           = errors.New("AI model cannot be empty")
)

// Settings is the per-user preferences singleton.
type Settings struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"user_id"`
	ShuffleEnabled     bool      `json:"shuffle_enabled"`
	DailyGoal          *int      `json:"daily_goal"`
	DefaultAICardCount int       `json:"default_ai_card_count"`
	DefaultAIStyle     string    `json:"default_ai_style"`
	AIModel            string    `json:"ai_model"`
	CardsPerSession    int       `json:"cards_per_session"`
	Theme              string    `json:"theme"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// DefaultSettings returns the settings used before a fetch completes and
// after logout, and the values a newly created account starts with.
func DefaultSettings(userID string) Settings {
	goal := 20
	return Settings{
		UserID:             userID,
		ShuffleEnabled:     true,
		DailyGoal:          &goal,
		DefaultAICardCount: DefaultAICardCount,
		DefaultAIStyle:     StyleConcise,
		AIModel:            "gemini-2.5-flash-lite",
		CardsPerSession:    10,
		Theme:              ThemeOcean,
		UpdatedAt:          time.Now().UTC(),
	}
}

// OptionalInt distinguishes an absent JSON field from an explicit null.
type OptionalInt struct {
	Set   bool
	Value *int
}

// UnmarshalJSON marks the field as present, accepting null.
func (o *OptionalInt) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// SettingsPatch is a partial settings update. Nil fields are left unchanged.
//
// ID, UserID and UpdatedAt are accepted so a full settings object can be sent
// back as a patch, but they are server-managed: Apply never copies them and
// StripServerManaged removes them before a remote write.
type SettingsPatch struct {
	ID                 *string     `json:"id,omitempty"`
	UserID             *string     `json:"user_id,omitempty"`
	UpdatedAt          *time.Time  `json:"updated_at,omitempty"`
	ShuffleEnabled     *bool       `json:"shuffle_enabled,omitempty"`
	DailyGoal          OptionalInt `json:"daily_goal"`
	DefaultAICardCount *int        `json:"default_ai_card_count,omitempty"`
	DefaultAIStyle     *string     `json:"default_ai_style,omitempty"`
	AIModel            *string     `json:"ai_model,omitempty"`
	CardsPerSession    *int        `json:"cards_per_session,omitempty"`
	Theme              *string     `json:"theme,omitempty"`
}

// StripServerManaged returns a copy without id, user_id and updated_at.
func (p SettingsPatch) StripServerManaged() SettingsPatch {
	p.ID = nil
	p.UserID = nil
	p.UpdatedAt = nil
	return p
}

// IsEmpty reports whether the patch changes no user-editable field.
func (p SettingsPatch) IsEmpty() bool {
	return p.ShuffleEnabled == nil && !p.DailyGoal.Set && p.DefaultAICardCount == nil &&
		p.DefaultAIStyle == nil && p.AIModel == nil && p.CardsPerSession == nil && p.Theme == nil
}

// Validate checks every field present in the patch.
func (p SettingsPatch) Validate() error {
	if p.DailyGoal.Set && p.DailyGoal.Value != nil && *p.DailyGoal.Value <= 0 {
		return NewValidationError("daily_goal", "must be positive", ErrInvalidDailyGoal)
	}
	if p.DefaultAICardCount != nil &&
		(*p.DefaultAICardCount < MinAICardCount || *p.DefaultAICardCount > MaxAICardCount) {
		return NewValidationError("default_ai_card_count", "is out of range", ErrInvalidAICardCount)
	}
	if p.DefaultAIStyle != nil && !slices.Contains(Styles, *p.DefaultAIStyle) {
		return NewValidationError("default_ai_style", "is not a known style", ErrInvalidStyle)
	}
	if p.AIModel != nil && *p.AIModel == "" {
		return NewValidationError("ai_model", "is required", ErrEmptyAIModel)
	}
	if p.CardsPerSession != nil && *p.CardsPerSession <= 0 {
		return NewValidationError("cards_per_session", "must be positive", ErrInvalidCardsPerSession)
	}
	if p.Theme != nil && !IsTheme(*p.Theme) {
		return NewValidationError("theme", "is not a known theme", ErrInvalidTheme)
	}
	return nil
}

// Apply merges the patch into s and stamps updatedAt.
func (p SettingsPatch) Apply(s Settings, updatedAt time.Time) Settings {
	if p.ShuffleEnabled != nil {
		s.ShuffleEnabled = *p.ShuffleEnabled
	}
	if p.DailyGoal.Set {
		if p.DailyGoal.Value == nil {
			s.DailyGoal = nil
		} else {
			v := *p.DailyGoal.Value
			s.DailyGoal = &v
		}
	}
	if p.DefaultAICardCount != nil {
		s.DefaultAICardCount = *p.DefaultAICardCount
	}
	if p.DefaultAIStyle != nil {
		s.DefaultAIStyle = *p.DefaultAIStyle
	}
	if p.AIModel != nil {
		s.AIModel = *p.AIModel
	}
	if p.CardsPerSession != nil {
		s.CardsPerSession = *p.CardsPerSession
	}
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	s.UpdatedAt = updatedAt
	return s
}

// IsTheme reports whether name is a known color theme.
func IsTheme(name string) bool {
	return slices.Contains(Themes, name)
}
