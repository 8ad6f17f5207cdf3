// Package segment turns raw GIFT documents into the chunks the grammar
// parses one at a time.
package segment

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/dhamidi/giftlint/gift"
)

const (
	LF   = "\n"
	CRLF = "\r\n"
	CR   = "\r"
)

// UTF8BOM is the byte order mark some editors put in front of UTF-8 files.
const UTF8BOM = "\xef\xbb\xbf"

// Decode returns raw as UTF-8 text. A UTF-8 byte order mark is stripped and
// UTF-16 input with a byte order mark is converted.
//
// base is the number of raw bytes in front of the returned text, so that
// base plus an offset into the text is an offset into raw. It is non-zero
// only for a stripped UTF-8 byte order mark; offsets into converted UTF-16
// text count bytes of the UTF-8 form and have no raw equivalent.
func Decode(raw []byte) (text string, base int, err error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(dec, raw)
	if err != nil {
		return "", 0, fmt.Errorf("decoding document: %w", err)
	}
	if bytes.HasPrefix(raw, []byte(UTF8BOM)) {
		base = len(UTF8BOM)
	}
	return string(out), base, nil
}

// DetectLineEnding returns the first line ending used in text, or LF if it
// has none.
func DetectLineEnding(text string) string {
	i := strings.IndexAny(text, "\r\n")
	switch {
	case i < 0:
		return LF
	case text[i] == '\n':
		return LF
	case strings.HasPrefix(text[i:], CRLF):
		return CRLF
	default:
		return CR
	}
}

var normalizer = strings.NewReplacer(CRLF, LF, CR, LF)

// Normalize converts every line ending in text to LF.
func Normalize(text string) string {
	return normalizer.Replace(text)
}

// Split cuts normalized text into question blocks: runs of lines separated
// by at least one blank line. Lines holding only whitespace count as blank.
func Split(normalized string) []gift.Chunk {
	var (
		chunks []gift.Chunk
		block  []string
		start  int
	)
	flush := func() {
		if len(block) > 0 {
			chunks = append(chunks, gift.Chunk{
				Text:      strings.Join(block, LF),
				StartLine: start,
			})
			block = nil
		}
	}

	for i, line := range strings.Split(normalized, LF) {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if len(block) == 0 {
			start = i + 1
		}
		block = append(block, line)
	}
	flush()
	return chunks
}
