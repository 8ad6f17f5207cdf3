// Package recovery turns a parser that stops at its first syntax error into
// one that reports every error in a chunk.
//
// The Engine escapes the offending token, re-parses, and repeats until the
// chunk parses, the token can no longer be found or escaped, or the
// iteration limit is hit. Whatever was collected up to that point is the
// result; recovery failures are never returned as errors.
//
// Errors found this way are relative to the escaped chunk text. Correct
// undoes the drift the escape markers introduce and moves the errors into
// document coordinates.
package recovery

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultRadius is how far either side of the reported offset Locate looks.
const DefaultRadius = 1

var (
	ErrNullToken     = errors.New("no token to locate")
	ErrTokenNotFound = errors.New("token not found")
)

// Locate finds token in text as close to hint as possible, looking at most
// radius bytes either side. At each distance the earlier position is tried
// first, so ties resolve towards the start of the text.
func Locate(text, token string, hint, radius int) (int, error) {
	if token == "" {
		return -1, ErrNullToken
	}
	for r := 0; r <= radius; r++ {
		if at := hint - r; matchAt(text, token, at) {
			return at, nil
		}
		if r == 0 {
			continue
		}
		if at := hint + r; matchAt(text, token, at) {
			return at, nil
		}
	}
	return -1, fmt.Errorf("%w: %q within %d of offset %d", ErrTokenNotFound, token, radius, hint)
}

func matchAt(text, token string, at int) bool {
	return at >= 0 && at < len(text) && strings.HasPrefix(text[at:], token)
}
