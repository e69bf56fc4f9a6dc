// Package generation turns free-form study text into flashcards using an
// external text-completion provider. It resolves the card count, style and
// model, builds the prompt and parses the provider's reply, which may arrive
// wrapped in code fences. The provider sits behind the Completer interface.
package generation
