package recovery

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/giftlint/gift"
)

func span(line, col, offset, endLine, endCol, endOffset int) gift.Span {
	return gift.Span{
		Start: gift.Position{Line: line, Column: col, Offset: offset},
		End:   gift.Position{Line: endLine, Column: endCol, Offset: endOffset},
	}
}

func spans(errs []gift.SyntaxError) []gift.Span {
	out := make([]gift.Span, len(errs))
	for i, e := range errs {
		out[i] = e.Span
	}
	return out
}

func TestCorrectTokens(t *testing.T) {
	tests := []struct {
		name string
		in   []gift.Span
		want []gift.Span
	}{
		{
			name: "same line drift",
			in: []gift.Span{
				span(1, 5, 4, 1, 6, 5),
				span(1, 8, 8, 1, 9, 9),
				span(1, 12, 13, 1, 13, 14),
			},
			want: []gift.Span{
				span(1, 5, 4, 1, 6, 5),
				span(1, 7, 7, 1, 8, 8),
				span(1, 10, 11, 1, 11, 12),
			},
		},
		{
			name: "multi-line span keeps end column",
			in: []gift.Span{
				span(1, 3, 2, 1, 4, 3),
				span(1, 6, 6, 2, 2, 9),
			},
			want: []gift.Span{
				span(1, 3, 2, 1, 4, 3),
				span(1, 5, 5, 2, 2, 8),
			},
		},
		{
			name: "new line resets column drift",
			in: []gift.Span{
				span(1, 5, 4, 1, 6, 5),
				span(2, 4, 12, 2, 5, 13),
				span(2, 7, 16, 2, 8, 17),
			},
			want: []gift.Span{
				span(1, 5, 4, 1, 6, 5),
				span(2, 4, 11, 2, 5, 12),
				span(2, 6, 14, 2, 7, 15),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := make([]gift.SyntaxError, len(tt.in))
			for i, s := range tt.in {
				in[i] = gift.SyntaxError{Found: ":", Span: s}
			}
			got := CorrectTokens(in)
			assert.Equal(t, tt.want, spans(got))
			// the input is left untouched
			assert.Equal(t, tt.in, spans(in))
		})
	}

	assert.Nil(t, CorrectTokens(nil))
}

func TestCorrectChunk(t *testing.T) {
	doc := strings.Repeat("aaaaaaaaa\n", 4) + "Q1 : x\n"

	t.Run("lf", func(t *testing.T) {
		lines := NewLineTable(doc, "\n", 0)
		errs := []gift.SyntaxError{{Found: ":", Span: span(1, 4, 3, 1, 5, 4)}}
		got := CorrectChunk(errs, 5, lines)
		require.Len(t, got, 1)
		assert.Equal(t, span(5, 4, 43, 5, 5, 44), got[0].Span)
	})

	t.Run("crlf", func(t *testing.T) {
		lines := NewLineTable(doc, "\r\n", 0)
		errs := []gift.SyntaxError{{Found: ":", Span: span(1, 4, 3, 1, 5, 4)}}
		got := CorrectChunk(errs, 5, lines)
		require.Len(t, got, 1)
		assert.Equal(t, 47, got[0].Span.Start.Offset)
		assert.Equal(t, 5, got[0].Span.Start.Line)
	})

	t.Run("base offset", func(t *testing.T) {
		lines := NewLineTable(doc, "\r\n", 3)
		errs := []gift.SyntaxError{{Found: ":", Span: span(1, 4, 3, 1, 5, 4)}}
		got := CorrectChunk(errs, 5, lines)
		assert.Equal(t, 50, got[0].Span.Start.Offset)

		got = CorrectChunk(errs, 1, lines)
		assert.Equal(t, 6, got[0].Span.Start.Offset)
		assert.Equal(t, 4, got[0].Span.Start.Column)
	})

	t.Run("first line is unchanged", func(t *testing.T) {
		lines := NewLineTable(doc, "\n", 0)
		errs := []gift.SyntaxError{{Found: ":", Span: span(1, 4, 3, 1, 5, 4)}}
		got := CorrectChunk(errs, 1, lines)
		assert.Equal(t, errs[0].Span, got[0].Span)
	})
}

func TestCorrect(t *testing.T) {
	doc := "// header\n\nQ1 : a : b {}\n"
	lines := NewLineTable(doc, "\n", 0)
	chunk := gift.Chunk{Text: "Q1 : a : b {}", StartLine: 3}

	// as collected from "Q1 : a : b {}" then "Q1 \: a : b {}"
	errs := []gift.SyntaxError{
		{Found: ":", Span: span(1, 4, 3, 1, 5, 4)},
		{Found: ":", Span: span(1, 9, 8, 1, 10, 9)},
	}
	got := Correct(errs, chunk, lines)
	assert.Equal(t, []gift.Span{
		span(3, 4, 14, 3, 5, 15),
		span(3, 8, 18, 3, 9, 19),
	}, spans(got))
	assert.Equal(t, ":", doc[14:15])
	assert.Equal(t, ":", doc[18:19])
}

func TestLineTableOffsetOf(t *testing.T) {
	lines := NewLineTable("ab\ncde\n\nf", "\n", 0)
	assert.Equal(t, 0, lines.OffsetOf(1))
	assert.Equal(t, 3, lines.OffsetOf(2))
	assert.Equal(t, 7, lines.OffsetOf(3))
	assert.Equal(t, 8, lines.OffsetOf(4))
	assert.Equal(t, 0, lines.OffsetOf(0))

	withBOM := NewLineTable("ab\ncde", "\r\n", 3)
	assert.Equal(t, 3, withBOM.OffsetOf(1))
	assert.Equal(t, 7, withBOM.OffsetOf(2))

	var empty *LineTable
	assert.Equal(t, 0, empty.OffsetOf(7))
}
