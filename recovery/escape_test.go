package recovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeAt(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		offset int
		want   string
	}{
		{"colon", "a:b", 1, `a\:b`},
		{"first character", ":b", 0, `\:b`},
		{"every token", "~=#{}", 2, `~=\#{}`},
		{"newline marks next line", "a\nb", 1, "a\n\\b"},
		{"trailing newline", "a\n", 1, "a\n\\"},
		{"colon after answer", "Q1 ~ A : B", 7, `Q1 ~ A \: B`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EscapeAt(tt.text, tt.offset)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEscapeAtRejects(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		offset int
		err    error
	}{
		{"already escaped", `a\:b`, 2, ErrAlreadyEscaped},
		{"already escaped newline", "a\n\\b", 1, ErrAlreadyEscaped},
		{"plain letter", "abc", 1, ErrNotEscapable},
		{"negative offset", "a:b", -1, ErrNotEscapable},
		{"offset past end", "a:b", 3, ErrNotEscapable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EscapeAt(tt.text, tt.offset)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestEscapeTwice(t *testing.T) {
	once, err := EscapeAt("x = y", 2)
	require.NoError(t, err)
	assert.Equal(t, `x \= y`, once)

	// the token moved one to the right
	_, err = EscapeAt(once, 3)
	assert.ErrorIs(t, err, ErrAlreadyEscaped)

	once, err = EscapeAt("x\ny", 1)
	require.NoError(t, err)
	_, err = EscapeAt(once, 1)
	assert.ErrorIs(t, err, ErrAlreadyEscaped)
}
