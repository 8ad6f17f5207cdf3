package diagnose

import (
	"fmt"
	"time"

	"github.com/dhamidi/giftlint/gift"
	"github.com/dhamidi/giftlint/recovery"
)

// Report holds every diagnostic found in one document, in document order.
type Report struct {
	File        string        `json:"file"`
	LineEnding  string        `json:"lineEnding"`
	Chunks      int           `json:"chunks"`
	Diagnostics []Diagnostic  `json:"diagnostics"`
	Elapsed     time.Duration `json:"elapsed"`

	// Source is the normalized document text, kept for excerpts.
	Source string `json:"-"`
}

func (r Report) HasErrors() bool {
	return len(r.Diagnostics) > 0
}

// Diagnostic is a syntax error in document coordinates.
type Diagnostic struct {
	Message  string    `json:"message"`
	Found    string    `json:"found,omitempty"`
	Expected []string  `json:"expected,omitempty"`
	Span     gift.Span `json:"span"`
	Notes    []string  `json:"notes,omitempty"`
	// Incomplete is set on diagnostics of a chunk whose recovery stopped
	// early; the chunk may hold more errors than were reported.
	Incomplete bool `json:"incomplete,omitempty"`
}

// ChunkResult is what checking a single chunk produced.
type ChunkResult struct {
	Chunk    gift.Chunk
	Recovery recovery.Result
	// Errors are in document coordinates. Empty for a clean chunk.
	Errors []gift.SyntaxError
}

// Diagnostics converts the chunk's errors for presentation.
func (r ChunkResult) Diagnostics() []Diagnostic {
	if len(r.Errors) == 0 {
		return nil
	}
	incomplete := r.Recovery.Incomplete()
	out := make([]Diagnostic, len(r.Errors))
	for i, e := range r.Errors {
		d := Diagnostic{
			Message:    e.Message,
			Found:      e.Found,
			Expected:   e.Expected,
			Span:       e.Span,
			Incomplete: incomplete,
		}
		if e.Hint != "" {
			d.Notes = append(d.Notes, e.Hint)
		}
		out[i] = d
	}
	last := &out[len(out)-1]
	switch {
	case incomplete:
		last.Notes = append(last.Notes, stoppedNote(r.Recovery))
	case r.Recovery.State == recovery.Unrecovered:
		last.Notes = append(last.Notes, fmt.Sprintf("positions are relative to the question starting on line %d", r.Chunk.StartLine))
	}
	return out
}

func stoppedNote(res recovery.Result) string {
	return fmt.Sprintf("checking stopped here (%v), later errors in this question may be missing", res.Cause)
}
