package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/giftlint/diagnose"
)

// LineEncoder prints one diagnostic per line, for grep and editor quickfix
// lists.
type LineEncoder struct {
	w      io.Writer
	report diagnose.Report
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) Encode(report diagnose.Report) error {
	e.report = report
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *LineEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	for _, d := range e.report.Diagnostics {
		fmt.Fprintf(&sb, "%s:%d:%d: %s\n",
			fileName(e.report.File),
			d.Span.Start.Line,
			d.Span.Start.Column,
			d.Message,
		)
	}
	return []byte(sb.String()), nil
}

func fileName(name string) string {
	if name == "" {
		return "<stdin>"
	}
	return name
}
