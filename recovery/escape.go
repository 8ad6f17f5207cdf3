package recovery

import (
	"errors"
	"fmt"
	"strings"
)

// EscapeMarker makes the character after it literal text.
const EscapeMarker = '\\'

// Escapable lists the characters the grammar gives meaning to and that
// EscapeAt knows how to neutralise.
const Escapable = ":~=#{}\n"

var (
	ErrAlreadyEscaped = errors.New("token already escaped")
	ErrNotEscapable   = errors.New("token cannot be escaped")
)

// EscapeAt returns a copy of text with an escape marker placed next to the
// token at offset. For a newline the marker goes right after it, at the start
// of the next line; for every other token it goes right before. Escaping a
// token that already has its marker returns ErrAlreadyEscaped.
func EscapeAt(text string, offset int) (string, error) {
	if offset < 0 || offset >= len(text) {
		return "", fmt.Errorf("%w: offset %d outside text of length %d", ErrNotEscapable, offset, len(text))
	}
	c := text[offset]
	if !strings.ContainsRune(Escapable, rune(c)) {
		return "", fmt.Errorf("%w: %q at offset %d", ErrNotEscapable, c, offset)
	}

	at := offset
	if c == '\n' {
		at = offset + 1
		if at < len(text) && text[at] == EscapeMarker {
			return "", fmt.Errorf("%w: newline at offset %d", ErrAlreadyEscaped, offset)
		}
	} else if offset > 0 && text[offset-1] == EscapeMarker {
		return "", fmt.Errorf("%w: %q at offset %d", ErrAlreadyEscaped, c, offset)
	}

	var b strings.Builder
	b.Grow(len(text) + 1)
	b.WriteString(text[:at])
	b.WriteByte(EscapeMarker)
	b.WriteString(text[at:])
	return b.String(), nil
}
