package generation

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveCardCount(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  int
	}{
		{name: "missing", input: nil, want: 10},
		{name: "zero", input: float64(0), want: 10},
		{name: "in range", input: float64(5), want: 5},
		{name: "lower bound", input: float64(1), want: 1},
		{name: "upper bound", input: float64(30), want: 30},
		{name: "above range", input: float64(100), want: 30},
		{name: "negative", input: float64(-4), want: 1},
		{name: "fraction truncated", input: 7.9, want: 7},
		{name: "small fraction clamps up", input: 0.4, want: 1},
		{name: "numeric string", input: "12", want: 12},
		{name: "padded numeric string", input: " 8 ", want: 8},
		{name: "empty string", input: "", want: 10},
		{name: "non-numeric string", input: "lots", want: 10},
		{name: "true", input: true, want: 1},
		{name: "false", input: false, want: 10},
		{name: "int", input: 3, want: 3},
		{name: "json number", input: json.Number("40"), want: 30},
		{name: "infinity", input: math.Inf(1), want: 30},
		{name: "nan", input: math.NaN(), want: 10},
		{name: "object", input: map[string]any{"n": 3}, want: 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ResolveCardCount(tc.input))
		})
	}
}

func TestResolveCardCountAlwaysInRange(t *testing.T) {
	for _, v := range []float64{-1e9, -1, 0.0001, 29.999, 31, 1e9} {
		got := ResolveCardCount(v)
		assert.GreaterOrEqual(t, got, 1)
		assert.LessOrEqual(t, got, 30)
	}
}

func TestResolveStyle(t *testing.T) {
	for _, style := range []string{"concise", "detailed", "simple", "academic"} {
		name, desc := ResolveStyle(style)
		assert.Equal(t, style, name)
		assert.Equal(t, styleGuide[style], desc)
	}

	for _, unknown := range []any{nil, "", "poetic", "CONCISE", 3} {
		name, desc := ResolveStyle(unknown)
		assert.Equal(t, "concise", name)
		assert.Equal(t, "short, punchy questions with brief answers (1-2 sentences max)", desc)
	}
}

func TestResolveModel(t *testing.T) {
	allowed := []string{"gemini-2.5-flash-lite", "gemma-3-4b-it"}
	fallback := "gemini-2.5-flash-lite"

	assert.Equal(t, "gemma-3-4b-it", ResolveModel("gemma-3-4b-it", allowed, fallback))
	assert.Equal(t, fallback, ResolveModel("gpt-4o", allowed, fallback))
	assert.Equal(t, fallback, ResolveModel(nil, allowed, fallback))
	assert.Equal(t, fallback, ResolveModel(42, allowed, fallback))
}
