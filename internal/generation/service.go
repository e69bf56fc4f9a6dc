package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/flashdeck/internal/domain"
	"github.com/phrazzld/flashdeck/internal/platform/logger"
	"github.com/phrazzld/flashdeck/internal/redact"
)

// Temperature is the fixed sampling temperature for card generation.
const Temperature float32 = 0.7

// CompletionRequest is a single prompt sent to a text-completion provider.
type CompletionRequest struct {
	Model           string
	Prompt          string
	Temperature     float32
	MaxOutputTokens int
}

// Completer is the boundary to an external text-completion provider.
// Implementations return the generated text (empty when the provider returned
// nothing) or an error wrapping ErrQuotaExceeded, ErrInvalidRequest or ErrUpstream.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Request mirrors the loosely typed JSON body of a generation call.
// Values are resolved with the package's fallback rules, so any JSON type is accepted.
type Request struct {
	StudyText any `json:"studyText"`
	CardCount any `json:"cardCount"`
	Style     any `json:"style"`
	Model     any `json:"model"`
}

// Options configures model selection and output size.
type Options struct {
	DefaultModel    string
	AllowedModels   []string
	MaxOutputTokens int
}

// Service generates flashcards. It keeps no state between calls.
type Service struct {
	completer Completer
	opts      Options
	logger    *slog.Logger
}

// NewService creates a generation Service. A nil completer is allowed and
// makes every Generate call fail with ErrNotConfigured.
func NewService(completer Completer, opts Options, logger *slog.Logger) (*Service, error) {
	if opts.DefaultModel == "" {
		return nil, fmt.Errorf("%w: default model cannot be empty", ErrInvalidConfig)
	}
	if opts.MaxOutputTokens <= 0 {
		return nil, fmt.Errorf("%w: max output tokens must be positive", ErrInvalidConfig)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		completer: completer,
		opts:      opts,
		logger:    logger.With(slog.String("component", "generation_service")),
	}, nil
}

// Configured reports whether a provider is available.
func (s *Service) Configured() bool {
	return s.completer != nil
}

// Generate resolves the request, calls the provider once and parses its reply.
func (s *Service) Generate(ctx context.Context, req Request) ([]domain.GeneratedCard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if s.completer == nil {
		log.Error("card generation requested without a configured provider")
		return nil, ErrNotConfigured
	}

	studyText, ok := req.StudyText.(string)
	if !ok || studyText == "" {
		return nil, ErrMissingStudyText
	}

	count := ResolveCardCount(req.CardCount)
	style, styleDesc := ResolveStyle(req.Style)
	model := ResolveModel(req.Model, s.opts.AllowedModels, s.opts.DefaultModel)

	log.Debug("generating cards",
		slog.Int("card_count", count),
		slog.String("style", style),
		slog.String("model", model),
		slog.Int("study_text_length", len(studyText)))

	raw, err := s.completer.Complete(ctx, CompletionRequest{
		Model:           model,
		Prompt:          BuildPrompt(count, styleDesc, studyText),
		Temperature:     Temperature,
		MaxOutputTokens: s.opts.MaxOutputTokens,
	})
	if err != nil {
		if !isProviderError(err) {
			err = fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		level := slog.LevelError
		if errors.Is(err, ErrQuotaExceeded) {
			level = slog.LevelWarn
		}
		log.Log(ctx, level, "provider call failed",
			slog.String("model", model),
			slog.String("error", redact.Error(err)))
		return nil, err
	}

	cards, err := ParseCards(raw)
	if err != nil {
		log.Error("failed to parse provider reply",
			slog.String("model", model),
			slog.Int("reply_length", len(raw)),
			slog.String("error", err.Error()))
		return nil, err
	}

	log.Info("cards generated",
		slog.String("model", model),
		slog.Int("requested", count),
		slog.Int("returned", len(cards)))
	return cards, nil
}

func isProviderError(err error) bool {
	return errors.Is(err, ErrQuotaExceeded) ||
		errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrUpstream)
}
