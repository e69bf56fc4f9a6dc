// Package gemini implements generation.Completer on top of Google's Gemini API
// using the google.golang.org/genai client.
//
// It is an infrastructure adapter: it sends one prompt per call with the
// requested model, temperature and output limit, extracts the text of the
// first candidate, and translates provider failures into the generation
// package's error taxonomy (quota exceeded, invalid request, upstream failure).
// No retries are performed.
package gemini
