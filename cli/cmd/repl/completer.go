package repl

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/efpl/lang"
)

// ctrlCommands are the completion candidates offered after a ':' prefix.
var ctrlCommands = []string{"help", "list", "clear", "quit"}

// builtinIdents are always offered alongside the loaded definition names.
var builtinIdents = []string{
	string(lang.Truth),
	string(lang.Falsehood),
}

// isWordBoundary reports whether r terminates an identifier. Identifiers
// are CNAME tokens, so every operator, delimiter, and space rune bounds a
// word.
func isWordBoundary(r rune) bool {
	if unicode.IsSpace(r) {
		return true
	}

	return strings.ContainsRune("()[]{},|=<>+-*/@\"#:", r)
}

// wordBounds locates the identifier surrounding the cursor and returns the
// word along with its byte offsets in input.
func wordBounds(input string, cursor int) (word string, start, end int) {
	if cursor > len(input) {
		cursor = len(input)
	}

	start = cursor
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor
	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// computeMatches returns fuzzy completion candidates for the word under the
// cursor, along with the word's byte offsets. A line beginning with ':'
// completes against control commands; anything else completes against the
// loaded definition names and the boolean identifiers.
func computeMatches(
	prog *lang.Program, input string, cursor int,
) (matches fuzzy.Matches, start, end int) {
	word, start, end := wordBounds(input, cursor)
	if word == "" {
		return nil, start, end
	}

	candidates := append(prog.Names(), builtinIdents...)

	if rest, ok := strings.CutPrefix(input, ":"); ok {
		// Only the command word itself completes, not its arguments.
		if strings.TrimSpace(rest) != word {
			return nil, start, end
		}

		candidates = ctrlCommands
	}

	return fuzzy.Find(word, candidates), start, end
}

// renderCandidateBar renders the completion candidates as a single line,
// highlighting the selected one when tab-cycling. Candidates that would
// overflow the terminal width are elided.
func renderCandidateBar(
	matches fuzzy.Matches, selected int, tabActive bool, width int,
) string {
	const sep = "  "

	parts := make([]string, 0, len(matches))
	cols := 0

	for i, match := range matches {
		cols += lipgloss.Width(match.Str) + len(sep)
		if cols > width && len(parts) > 0 {
			parts = append(parts, hintStyle.Render("…"))

			break
		}

		if tabActive && i == selected {
			parts = append(parts, selectedStyle.Render(match.Str))
		} else {
			parts = append(parts, suggestionStyle.Render(match.Str))
		}
	}

	return strings.Join(parts, sep)
}
