package generation

import (
	"encoding/json"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/phrazzld/flashdeck/internal/domain"
)

var styleGuide = map[string]string{
	domain.StyleConcise:  "short, punchy questions with brief answers (1-2 sentences max)",
	domain.StyleDetailed: "thorough questions with comprehensive answers (3-5 sentences)",
	domain.StyleSimple:   "very simple, beginner-friendly questions with plain-language answers",
	domain.StyleAcademic: "formal academic-style questions with precise, technical answers",
}

// ResolveCardCount converts a loosely typed requested count into [1, 30].
// Numbers and numeric strings are clamped to the nearest bound and truncated;
// absent, zero and non-numeric values yield the default of 10.
func ResolveCardCount(v any) int {
	n, ok := toNumber(v)
	if !ok || n == 0 || math.IsNaN(n) {
		return domain.DefaultAICardCount
	}
	n = math.Max(math.Min(n, domain.MaxAICardCount), domain.MinAICardCount)
	return int(n)
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, true
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// ResolveStyle returns the known style name for v, falling back to concise,
// together with its prompt description.
func ResolveStyle(v any) (string, string) {
	if s, ok := v.(string); ok {
		if desc, known := styleGuide[s]; known {
			return s, desc
		}
	}
	return domain.StyleConcise, styleGuide[domain.StyleConcise]
}

// ResolveModel returns v when it names an allowed model, else fallback.
func ResolveModel(v any, allowed []string, fallback string) string {
	if s, ok := v.(string); ok && slices.Contains(allowed, s) {
		return s
	}
	return fallback
}
