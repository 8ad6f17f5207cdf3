// Package gift holds the types shared by the GIFT grammar engine, the error
// recovery core and everything that reports on their results.
package gift

import (
	"fmt"
	"strconv"
	"unicode/utf8"
)

// Position is a point in a text. Lines and columns are 1-based, offsets are
// 0-based byte offsets from the start of the text the position belongs to.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
	Offset int `json:"offset"`
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Advance returns the position just after s, assuming s starts at p.
func (p Position) Advance(s string) Position {
	for _, r := range s {
		p.Offset += utf8.RuneLen(r)
		if r == '\n' {
			p.Line++
			p.Column = 1
		} else {
			p.Column++
		}
	}
	return p
}

type Span struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// SyntaxError is a single error reported by a Grammar.
type SyntaxError struct {
	// Found is the unexpected character at Span.Start. It is empty when the
	// parser ran out of input, which leaves nothing to recover from.
	Found    string   `json:"found,omitempty"`
	Expected []string `json:"expected,omitempty"`
	Message  string   `json:"message"`
	Hint     string   `json:"hint,omitempty"`
	Span     Span     `json:"span"`
}

func (e SyntaxError) Error() string {
	return fmt.Sprintf("%s: %s", e.Span.Start, e.Message)
}

// HasFound reports whether the error names an offending character.
func (e SyntaxError) HasFound() bool {
	return e.Found != ""
}

// FoundString describes Found the way error messages spell it.
func (e SyntaxError) FoundString() string {
	if !e.HasFound() {
		return "end of input"
	}
	return strconv.Quote(e.Found)
}

// Outcome is the result of one Grammar run. An outcome with errors is a
// failure; Questions is only meaningful on success.
type Outcome struct {
	Questions []Question
	Errors    []SyntaxError
}

func Success(questions ...Question) Outcome {
	return Outcome{Questions: questions}
}

func Failure(errs ...SyntaxError) Outcome {
	return Outcome{Errors: errs}
}

func (o Outcome) Failed() bool {
	return len(o.Errors) > 0
}

// Chunk is one isolated region of a document, normally a single question
// block. Text uses "\n" line separators regardless of the document's own
// line endings.
type Chunk struct {
	Text      string `json:"text"`
	StartLine int    `json:"startLine"`
}

// Grammar parses a chunk of text. On a text it has not seen before, a failed
// Outcome carries exactly one SyntaxError: the first one encountered.
type Grammar interface {
	Parse(text string) Outcome
}

// GrammarFunc adapts a function to the Grammar interface.
type GrammarFunc func(text string) Outcome

func (f GrammarFunc) Parse(text string) Outcome {
	return f(text)
}
