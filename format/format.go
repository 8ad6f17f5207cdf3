// Package format renders diagnose reports for people and tools.
package format

import (
	"encoding"
	"fmt"
	"io"

	"github.com/dhamidi/giftlint/diagnose"
)

type Encoder interface {
	encoding.TextMarshaler
	Encode(report diagnose.Report) error
}

const (
	Text = "text"
	Line = "line"
	JSON = "json"
)

var Names = []string{Text, Line, JSON}

// Options are shared by the encoders that print for terminals.
type Options struct {
	Color bool
	// Wrap is the width messages are wrapped at. Zero disables wrapping.
	Wrap int
}

// New returns the encoder registered under name.
func New(name string, w io.Writer, opts Options) (Encoder, error) {
	switch name {
	case Text, "":
		return NewTextEncoder(w, opts), nil
	case Line:
		return NewLineEncoder(w), nil
	case JSON:
		return NewJSONEncoder(w), nil
	default:
		return nil, fmt.Errorf("unknown format %q", name)
	}
}
