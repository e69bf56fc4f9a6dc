package generation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/phrazzld/flashdeck/internal/domain"
)

const promptTemplate = `You are a flashcard generation expert. Given the study material below, generate exactly %d high-quality flashcards.

Style: %s

Rules:
- Each card must have a clear "front" (question/term) and "back" (answer/definition)
- Do NOT number the cards
- Cover the most important concepts in the text
- Avoid duplicate or trivial cards
- Respond ONLY with a valid JSON array (no markdown, no explanation, no code fences)

Output format:
[
  { "front_text": "...", "back_text": "..." },
  ...
]

Study Material:
%s`

// BuildPrompt renders the instruction prompt sent to the provider.
func BuildPrompt(count int, styleDescription, studyText string) string {
	return fmt.Sprintf(promptTemplate, count, styleDescription, studyText)
}

var (
	leadingJSONFence = regexp.MustCompile("(?i)^```json\\s*")
	leadingFence     = regexp.MustCompile("^```\\s*")
	trailingFence    = regexp.MustCompile("```\\s*$")
)

// StripCodeFences removes Markdown code-fence markers the model may wrap
// around its reply and trims the remainder.
func StripCodeFences(raw string) string {
	s := strings.TrimSpace(raw)
	s = leadingJSONFence.ReplaceAllString(s, "")
	s = leadingFence.ReplaceAllString(s, "")
	s = trailingFence.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// ParseCards strips fences from raw and decodes it as a JSON array of
// {front_text, back_text} objects. Positions are the zero-based array index.
// Elements are not validated: a missing side is empty, a non-string side
// keeps its JSON text and an element that is not an object yields an empty card.
func ParseCards(raw string) ([]domain.GeneratedCard, error) {
	cleaned := StripCodeFences(raw)

	var parsed []json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseResponse, err)
	}
	if parsed == nil {
		return nil, fmt.Errorf("%w: reply is not an array", ErrParseResponse)
	}

	cards := make([]domain.GeneratedCard, len(parsed))
	for i, element := range parsed {
		var fields map[string]json.RawMessage
		// Non-object elements leave fields nil.
		_ = json.Unmarshal(element, &fields)
		cards[i] = domain.GeneratedCard{
			FrontText: fieldText(fields["front_text"]),
			BackText:  fieldText(fields["back_text"]),
			Position:  i,
		}
	}
	return cards, nil
}

// fieldText renders a JSON value as card text.
func fieldText(value json.RawMessage) string {
	if len(value) == 0 || string(value) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(value, &s); err == nil {
		return s
	}
	return string(value)
}
