package recovery

import (
	"strings"

	"github.com/dhamidi/giftlint/gift"
)

// LineTable maps document line numbers to the byte offset they start at in
// the original document, whose real line ending may be longer than the "\n"
// the chunks were parsed with. It is read-only once built.
type LineTable struct {
	base int
	// ends[i] is the offset just past line i+1 and its line ending.
	ends []int
}

// NewLineTable builds the table from normalized text (lines separated by
// "\n") and the line ending the document actually uses. base is the number
// of document bytes in front of the first line, such as a byte order mark.
func NewLineTable(normalized, lineEnding string, base int) *LineTable {
	lines := strings.Split(normalized, "\n")
	t := &LineTable{base: base, ends: make([]int, len(lines))}
	total := base
	for i, line := range lines {
		total += len(line) + len(lineEnding)
		t.ends[i] = total
	}
	return t
}

// OffsetOf returns the document offset at which the 1-based line starts.
func (t *LineTable) OffsetOf(line int) int {
	if t == nil {
		return 0
	}
	i := line - 2
	if i < 0 || len(t.ends) == 0 {
		return t.base
	}
	if i >= len(t.ends) {
		i = len(t.ends) - 1
	}
	return t.ends[i]
}

// Correct applies both correction passes to errors collected from chunk and
// returns them in document coordinates. The input slice is not modified.
func Correct(errs []gift.SyntaxError, chunk gift.Chunk, lines *LineTable) []gift.SyntaxError {
	return CorrectChunk(CorrectTokens(errs), chunk.StartLine, lines)
}

// sameLine is the fold accumulator of CorrectTokens: the line of the previous
// error and how many errors in a row have been found on it.
type sameLine struct {
	line  int
	count int
}

func (s sameLine) next(line int) sameLine {
	if line == s.line {
		return sameLine{line: line, count: s.count + 1}
	}
	return sameLine{line: line}
}

// CorrectTokens removes the drift introduced by escape markers. The i-th
// error was found after i markers were inserted, so its offsets move back
// by i. Columns move back by the number of errors found just before it on
// the same line; for an error spanning lines only the start column moves.
func CorrectTokens(errs []gift.SyntaxError) []gift.SyntaxError {
	if len(errs) == 0 {
		return nil
	}
	out := make([]gift.SyntaxError, len(errs))
	acc := sameLine{line: -1}
	for i, e := range errs {
		acc = acc.next(e.Span.Start.Line)
		e.Span.Start.Column -= acc.count
		if e.Span.End.Line <= e.Span.Start.Line {
			e.Span.End.Column -= acc.count
		}
		e.Span.Start.Offset -= i
		e.Span.End.Offset -= i
		out[i] = e
	}
	return out
}

// CorrectChunk moves chunk-relative errors into document space: lines shift
// by the chunk's start line and offsets by the document offset of that line.
// Columns are already relative to a line start and are left alone.
func CorrectChunk(errs []gift.SyntaxError, startLine int, lines *LineTable) []gift.SyntaxError {
	if len(errs) == 0 {
		return nil
	}
	lineDelta := startLine - 1
	offsetDelta := lines.OffsetOf(startLine)
	out := make([]gift.SyntaxError, len(errs))
	for i, e := range errs {
		e.Span.Start.Line += lineDelta
		e.Span.End.Line += lineDelta
		e.Span.Start.Offset += offsetDelta
		e.Span.End.Offset += offsetDelta
		out[i] = e
	}
	return out
}
