package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/flashdeck/internal/config"
	"github.com/phrazzld/flashdeck/internal/generation"
	"github.com/phrazzld/flashdeck/internal/platform/logger"
	"github.com/phrazzld/flashdeck/internal/redact"
	"google.golang.org/genai"
)

// contentGenerator is the subset of *genai.Models used by Completer.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Completer implements generation.Completer using the Gemini API.
type Completer struct {
	models contentGenerator
	logger *slog.Logger
}

var _ generation.Completer = (*Completer)(nil)

// NewCompleter creates a Gemini-backed completer from the LLM configuration.
// Returns ErrEmptyAPIKey if no API key is configured.
func NewCompleter(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Completer, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, ErrEmptyAPIKey
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.GeminiBaseURL != "" {
		clientConfig.HTTPOptions.BaseURL = cfg.GeminiBaseURL
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	return newCompleter(client.Models, logger), nil
}

func newCompleter(models contentGenerator, logger *slog.Logger) *Completer {
	return &Completer{
		models: models,
		logger: logger.With(slog.String("component", "gemini_completer")),
	}
}

// Complete sends a single prompt and returns the first candidate's text.
// A response without candidates or text yields an empty string.
func (c *Completer) Complete(ctx context.Context, req generation.CompletionRequest) (string, error) {
	log := logger.FromContextOrDefault(ctx, c.logger)

	temperature := req.Temperature
	genConfig := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: int32(req.MaxOutputTokens),
	}

	log.Debug("calling Gemini API",
		slog.String("model", req.Model),
		slog.Int("prompt_length", len(req.Prompt)))

	resp, err := c.models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), genConfig)
	if err != nil {
		mapped := mapAPIError(err)
		log.Warn("Gemini API call failed",
			slog.String("model", req.Model),
			slog.String("error", redact.Error(err)),
			slog.String("mapped_error", mapped.Error()))
		return "", mapped
	}

	text := responseText(resp)
	log.Debug("Gemini API call succeeded",
		slog.String("model", req.Model),
		slog.Int("reply_length", len(text)))
	return text, nil
}

// responseText concatenates the non-thought text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		b.WriteString(part.Text)
	}
	return b.String()
}
