package format

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dekarrin/rosed"

	"github.com/dhamidi/giftlint/diagnose"
)

// TextEncoder prints diagnostics with a source excerpt and a caret under the
// offending character.
type TextEncoder struct {
	w      io.Writer
	opts   Options
	report diagnose.Report
}

func NewTextEncoder(w io.Writer, opts Options) *TextEncoder {
	return &TextEncoder{w: w, opts: opts}
}

func (e *TextEncoder) Encode(report diagnose.Report) error {
	e.report = report
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *TextEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	lines := strings.Split(e.report.Source, "\n")
	for _, d := range e.report.Diagnostics {
		e.writeDiagnostic(&sb, d, lines)
	}
	return []byte(sb.String()), nil
}

func (e *TextEncoder) writeDiagnostic(sb *strings.Builder, d diagnose.Diagnostic, lines []string) {
	start := d.Span.Start
	fmt.Fprintf(sb, "%s %s\n",
		e.paint("1;39", fmt.Sprintf("%s:%d:%d:", fileName(e.report.File), start.Line, start.Column)),
		e.paint("1;31", "error:"),
	)
	for _, l := range strings.Split(e.wrap(d.Message), "\n") {
		fmt.Fprintf(sb, "  %s\n", l)
	}

	if start.Line >= 1 && start.Line <= len(lines) && e.report.Source != "" {
		line := lines[start.Line-1]
		num := strconv.Itoa(start.Line)
		gutter := strings.Repeat(" ", len(num))
		fmt.Fprintf(sb, " %s %s\n", e.paint("90", num+" |"), line)
		fmt.Fprintf(sb, " %s %s%s\n",
			e.paint("90", gutter+" |"),
			padding(line, start.Column),
			e.paint("1;31", markers(d, line)),
		)
	}

	for _, note := range d.Notes {
		fmt.Fprintf(sb, "  %s %s\n", e.paint("36", "note:"), e.wrap(note))
	}
	sb.WriteString("\n")
}

func (e *TextEncoder) wrap(s string) string {
	if e.opts.Wrap <= 0 || utf8.RuneCountInString(s) <= e.opts.Wrap {
		return s
	}
	return rosed.Edit(s).Wrap(e.opts.Wrap).String()
}

func (e *TextEncoder) paint(code, s string) string {
	if !e.opts.Color {
		return s
	}
	return "\x1b[" + code + "m" + s + "\x1b[0m"
}

// padding returns the blanks that put a marker under column col of line.
// Tabs are kept so the marker lines up however wide the terminal draws them.
func padding(line string, col int) string {
	var sb strings.Builder
	i := 1
	for _, r := range line {
		if i >= col {
			break
		}
		if r == '\t' {
			sb.WriteRune('\t')
		} else {
			sb.WriteRune(' ')
		}
		i++
	}
	for ; i < col; i++ {
		sb.WriteRune(' ')
	}
	return sb.String()
}

func markers(d diagnose.Diagnostic, line string) string {
	start, end := d.Span.Start, d.Span.End
	if end.Line != start.Line {
		// runs to the end of the line
		n := utf8.RuneCountInString(line) - start.Column + 1
		return strings.Repeat("^", max(n, 1))
	}
	return strings.Repeat("^", max(end.Column-start.Column, 1))
}
