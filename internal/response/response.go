// Package response extracts JSON from free-form model output.
//
// Unfence and Decode are separate so that "no fence found" and "not JSON"
// stay distinguishable; Parse composes them.
package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// PreviewLimit bounds the raw text quoted in a ParseError.
const PreviewLimit = 300

// ParseErrorTitle is the placeholder title carried by a parse failure.
const ParseErrorTitle = "Error: AI Response Parsing Failed"

// fencePattern matches a fenced block spanning the entire input, with an
// optional language tag after the opening fence.
var fencePattern = regexp.MustCompile("(?s)^```(\\w*)?\\s*\\n?(.*?)\\n?\\s*```$")

// Unfence trims text and, when the whole of it is a fenced block, returns
// the trimmed interior and true. Otherwise it returns the trimmed text and
// false.
func Unfence(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	m := fencePattern.FindStringSubmatch(trimmed)
	if m == nil {
		return trimmed, false
	}
	return strings.TrimSpace(m[2]), true
}

// Decode strictly decodes candidate as a single JSON value.
func Decode(candidate string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(candidate))

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after JSON value")
	}
	return v, nil
}

// ParseError reports model output that could not be decoded.
type ParseError struct {
	Message string
	Title   string
	Err     error
}

func (e *ParseError) Error() string { return e.Message }

func (e *ParseError) Unwrap() error { return e.Err }

// Envelope returns the failure in the same shape as a generated path so
// that consumers can render it without special-casing.
func (e *ParseError) Envelope() map[string]any {
	return map[string]any{
		"error":     e.Message,
		"pathTitle": e.Title,
		"phases":    []any{},
	}
}

// Parse unfences raw and decodes the result. The decoded value is returned
// as-is; its shape is the caller's concern.
func Parse(raw string) (any, error) {
	candidate, _ := Unfence(raw)
	v, err := Decode(candidate)
	if err != nil {
		return nil, &ParseError{
			Message: "Failed to parse AI response. Raw text might be incomplete or not valid JSON. Preview: " + Preview(raw),
			Title:   ParseErrorTitle,
			Err:     err,
		}
	}
	return v, nil
}

// Preview returns at most PreviewLimit characters of text.
func Preview(text string) string {
	r := []rune(text)
	if len(r) <= PreviewLimit {
		return text
	}
	return string(r[:PreviewLimit])
}
