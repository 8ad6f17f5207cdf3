package parser

import (
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/dhamidi/giftlint/gift"
)

type Option func(*Parser)

// WithFile sets the file name recorded in token positions.
func WithFile(path string) Option {
	return func(p *Parser) {
		p.file = path
	}
}

// Parser is the GIFT grammar engine. It stops at the first syntax error and
// reports only that one, which is what the recovery engine builds on.
type Parser struct {
	file string
}

var _ gift.Grammar = (*Parser)(nil)

func New(opts ...Option) *Parser {
	p := &Parser{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses one question block.
func (p *Parser) Parse(text string) gift.Outcome {
	toks, err := tokenize(p.file, text)
	if err != nil {
		return gift.Failure(gift.SyntaxError{
			Message: fmt.Sprintf("lex: %v", err),
			Span:    gift.Span{Start: gift.Position{Line: 1, Column: 1}, End: gift.Position{Line: 1, Column: 1}},
		})
	}
	st := &state{toks: toks}
	q, serr := st.question()
	if serr != nil {
		return gift.Failure(*serr)
	}
	return gift.Success(q)
}

var formats = []string{"html", "markdown", "moodle", "plain"}

// Formats lists the text format markers a question may carry.
func Formats() []string {
	return slices.Clone(formats)
}

type state struct {
	toks []lexer.Token
	pos  int
}

func (s *state) peek() lexer.Token {
	return s.toks[s.pos]
}

func (s *state) peekAt(n int) lexer.Token {
	if s.pos+n >= len(s.toks) {
		return s.toks[len(s.toks)-1]
	}
	return s.toks[s.pos+n]
}

func (s *state) next() lexer.Token {
	tok := s.toks[s.pos]
	if !tok.EOF() {
		s.pos++
	}
	return tok
}

func isPunct(tok lexer.Token, chars string) bool {
	return tok.Type == tokPunct && strings.Contains(chars, tok.Value)
}

// atLineStart reports whether only whitespace precedes the current token on
// its line.
func (s *state) atLineStart() bool {
	for i := s.pos - 1; i >= 0; i-- {
		switch s.toks[i].Type {
		case tokWhitespace:
			continue
		case tokNewline:
			return true
		default:
			return false
		}
	}
	return true
}

func (s *state) isComment() bool {
	return s.peek().Type == tokComment && s.atLineStart()
}

// skipBlank skips whitespace, newlines and whole-line comments.
func (s *state) skipBlank() {
	for {
		tok := s.peek()
		switch {
		case tok.Type == tokWhitespace, tok.Type == tokNewline:
			s.next()
		case s.isComment():
			s.next()
		default:
			return
		}
	}
}

func (s *state) skipSpace() {
	for t := s.peek().Type; t == tokWhitespace || t == tokNewline; t = s.peek().Type {
		s.next()
	}
}

func textOf(tok lexer.Token) string {
	if tok.Type == tokEscape {
		return tok.Value[1:]
	}
	return tok.Value
}

func (s *state) errorAt(tok lexer.Token, expected ...string) *gift.SyntaxError {
	found := ""
	if !tok.EOF() {
		for _, r := range tok.Value {
			found = string(r)
			break
		}
	}
	sort.Strings(expected)
	start := position(tok.Pos)
	serr := &gift.SyntaxError{
		Found:    found,
		Expected: expected,
		Span:     gift.Span{Start: start, End: start.Advance(found)},
	}
	serr.Message = fmt.Sprintf("Expected %s but %s found.", describe(expected), serr.FoundString())
	return serr
}

func describe(expected []string) string {
	switch len(expected) {
	case 0:
		return "nothing"
	case 1:
		return expected[0]
	default:
		return strings.Join(expected[:len(expected)-1], ", ") + " or " + expected[len(expected)-1]
	}
}

func (s *state) question() (gift.Question, *gift.SyntaxError) {
	s.skipBlank()
	if s.peek().EOF() {
		return gift.Question{Kind: gift.KindEmpty}, nil
	}
	if s.isCategory() {
		return s.category()
	}

	var q gift.Question
	if isPunct(s.peek(), ":") {
		title, err := s.title()
		if err != nil {
			return q, err
		}
		q.Title = title
		s.skipSpace()
	}
	if isPunct(s.peek(), "[") {
		format, err := s.format()
		if err != nil {
			return q, err
		}
		q.Format = format
	}

	stem, err := s.freeText(`"{"`, "question text")
	if err != nil {
		return q, err
	}
	q.Stem = strings.TrimSpace(stem)
	if s.peek().EOF() {
		q.Kind = gift.KindDescription
		return q, nil
	}

	s.next() // {
	if err := s.answers(&q); err != nil {
		return q, err
	}

	trailer, err := s.freeText("end of question", "text")
	if err != nil {
		return q, err
	}
	if !s.peek().EOF() {
		return q, s.errorAt(s.peek(), "end of question", "text")
	}
	q.Trailer = strings.TrimSpace(trailer)
	return q, nil
}

func (s *state) isCategory() bool {
	return isPunct(s.peek(), "$") &&
		s.peekAt(1).Type == tokText && s.peekAt(1).Value == "CATEGORY" &&
		isPunct(s.peekAt(2), ":")
}

func (s *state) category() (gift.Question, *gift.SyntaxError) {
	s.next()
	s.next()
	s.next()
	var b strings.Builder
	for tok := s.peek(); !tok.EOF() && tok.Type != tokNewline; tok = s.peek() {
		b.WriteString(textOf(s.next()))
	}
	s.skipBlank()
	if !s.peek().EOF() {
		return gift.Question{}, s.errorAt(s.peek(), "end of question")
	}
	return gift.Question{Kind: gift.KindCategory, Category: strings.TrimSpace(b.String())}, nil
}

func (s *state) title() (string, *gift.SyntaxError) {
	s.next()
	if !isPunct(s.peek(), ":") {
		return "", s.errorAt(s.peek(), `":"`)
	}
	s.next()

	var b strings.Builder
	for {
		tok := s.peek()
		switch {
		case isPunct(tok, ":"):
			if !isPunct(s.peekAt(1), ":") {
				return "", s.errorAt(tok, `"::"`, "title text")
			}
			s.next()
			s.next()
			return strings.TrimSpace(b.String()), nil
		case tok.EOF(), tok.Type == tokNewline:
			return "", s.errorAt(tok, `"::"`, "title text")
		default:
			b.WriteString(textOf(s.next()))
		}
	}
}

func (s *state) format() (string, *gift.SyntaxError) {
	s.next()
	tok := s.peek()
	if tok.Type != tokText {
		return "", s.errorAt(tok, "format name")
	}
	name := tok.Value
	if !slices.Contains(formats, name) {
		serr := s.errorAt(tok, "format name")
		serr.Message = fmt.Sprintf("Unknown text format %q.", name)
		serr.Hint = suggestFormat(name)
		return "", serr
	}
	s.next()
	if !isPunct(s.peek(), "]") {
		return "", s.errorAt(s.peek(), `"]"`)
	}
	s.next()
	return name, nil
}

func suggestFormat(name string) string {
	best, bestDist := "", 3
	for _, f := range formats {
		if d := levenshtein.ComputeDistance(strings.ToLower(name), f); d < bestDist {
			best, bestDist = f, d
		}
	}
	if best == "" {
		return ""
	}
	return fmt.Sprintf("did you mean [%s]?", best)
}

// freeText reads question text up to an answer block or the end of input.
// The tokens that introduce answers must be escaped in free text.
func (s *state) freeText(expected ...string) (string, *gift.SyntaxError) {
	var b strings.Builder
	for {
		tok := s.peek()
		switch {
		case tok.EOF(), isPunct(tok, "{"):
			return b.String(), nil
		case isPunct(tok, "~=#}:"):
			return "", s.errorAt(tok, expected...)
		case s.isComment():
			s.next()
		default:
			b.WriteString(textOf(s.next()))
		}
	}
}

func (s *state) answers(q *gift.Question) *gift.SyntaxError {
	s.skipSpace()
	tok := s.peek()
	switch {
	case isPunct(tok, "}"):
		s.next()
		q.Kind = gift.KindEssay
		return nil
	case tok.Type == tokText && isTruth(tok.Value):
		return s.trueFalse(q)
	case isPunct(tok, "#"):
		s.next()
		return s.numerical(q)
	case isPunct(tok, "=~"):
		return s.choices(q)
	default:
		return s.errorAt(tok, `"#"`, `"="`, `"}"`, `"~"`, `"TRUE"`, `"FALSE"`)
	}
}

func isTruth(v string) bool {
	switch v {
	case "T", "TRUE", "F", "FALSE":
		return true
	}
	return false
}

func (s *state) trueFalse(q *gift.Question) *gift.SyntaxError {
	v := s.next().Value
	q.Kind = gift.KindTrueFalse
	q.Truth = v == "T" || v == "TRUE"
	s.skipSpace()
	for isPunct(s.peek(), "#") {
		if len(q.Feedback) == 2 {
			return s.errorAt(s.peek(), `"}"`)
		}
		s.next()
		text, err := s.answerText("#}", "feedback text", `"#"`, `"}"`)
		if err != nil {
			return err
		}
		q.Feedback = append(q.Feedback, strings.TrimSpace(text))
	}
	return s.closeAnswers()
}

func (s *state) closeAnswers() *gift.SyntaxError {
	s.skipSpace()
	if !isPunct(s.peek(), "}") {
		return s.errorAt(s.peek(), `"}"`)
	}
	s.next()
	return nil
}

func (s *state) answerText(stop string, expected ...string) (string, *gift.SyntaxError) {
	return s.readAnswer(stop, false, expected...)
}

// readAnswer reads text inside an answer block until one of the stop
// characters or, when arrow is true, a matching arrow.
func (s *state) readAnswer(stop string, arrow bool, expected ...string) (string, *gift.SyntaxError) {
	var b strings.Builder
	for {
		tok := s.peek()
		switch {
		case tok.EOF():
			return "", s.errorAt(tok, expected...)
		case isPunct(tok, stop):
			return b.String(), nil
		case arrow && tok.Type == tokArrow:
			return b.String(), nil
		case isPunct(tok, "~=#{}:"):
			return "", s.errorAt(tok, expected...)
		default:
			b.WriteString(textOf(s.next()))
		}
	}
}

func (s *state) weight() (*float64, *gift.SyntaxError) {
	if !isPunct(s.peek(), "%") {
		return nil, nil
	}
	s.next()
	start := s.peek()
	var raw strings.Builder
	for tok := s.peek(); tok.Type == tokText; tok = s.peek() {
		raw.WriteString(s.next().Value)
	}
	w, err := strconv.ParseFloat(raw.String(), 64)
	if err != nil {
		return nil, s.errorAt(start, "weight")
	}
	if !isPunct(s.peek(), "%") {
		return nil, s.errorAt(s.peek(), `"%"`)
	}
	s.next()
	return &w, nil
}

func (s *state) choices(q *gift.Question) *gift.SyntaxError {
	var correct, wrong, matches int
	for {
		s.skipSpace()
		tok := s.peek()
		if isPunct(tok, "}") {
			s.next()
			break
		}
		if !isPunct(tok, "=~") {
			return s.errorAt(tok, `"="`, `"}"`, `"~"`)
		}
		s.next()
		ans := gift.Answer{Correct: tok.Value == "="}
		w, err := s.weight()
		if err != nil {
			return err
		}
		ans.Weight = w

		text, err := s.readAnswer("=~#}", true, "answer text", `"}"`)
		if err != nil {
			return err
		}
		ans.Text = strings.TrimSpace(text)
		if s.peek().Type == tokArrow {
			s.next()
			match, err := s.answerText("=~#}", "answer text", `"}"`)
			if err != nil {
				return err
			}
			ans.Match = strings.TrimSpace(match)
			matches++
		}
		if ans.Text == "" && ans.Match == "" {
			return s.errorAt(s.peek(), "answer text")
		}
		if isPunct(s.peek(), "#") {
			s.next()
			fb, err := s.answerText("=~}", "feedback text", `"="`, `"}"`, `"~"`)
			if err != nil {
				return err
			}
			ans.Feedback = strings.TrimSpace(fb)
		}

		if ans.Correct {
			correct++
		} else {
			wrong++
		}
		q.Answers = append(q.Answers, ans)
	}

	switch {
	case matches > 0:
		q.Kind = gift.KindMatching
	case wrong == 0:
		q.Kind = gift.KindShortAnswer
	default:
		q.Kind = gift.KindMultipleChoice
	}
	return nil
}

func (s *state) numerical(q *gift.Question) *gift.SyntaxError {
	q.Kind = gift.KindNumerical
	s.skipSpace()
	if !isPunct(s.peek(), "=~") {
		ans, err := s.numericAnswer(true)
		if err != nil {
			return err
		}
		q.Answers = append(q.Answers, ans)
		return s.closeAnswers()
	}
	for {
		s.skipSpace()
		tok := s.peek()
		if isPunct(tok, "}") {
			s.next()
			return nil
		}
		if !isPunct(tok, "=~") {
			return s.errorAt(tok, `"="`, `"}"`, `"~"`)
		}
		s.next()
		w, err := s.weight()
		if err != nil {
			return err
		}
		ans, err := s.numericAnswer(tok.Value == "=")
		if err != nil {
			return err
		}
		ans.Weight = w
		q.Answers = append(q.Answers, ans)
	}
}

func (s *state) numericAnswer(correct bool) (gift.Answer, *gift.SyntaxError) {
	s.skipSpace()
	start := s.peek()
	var raw strings.Builder
	for tok := s.peek(); tok.Type == tokText || isPunct(tok, ":"); tok = s.peek() {
		raw.WriteString(s.next().Value)
	}
	if !validNumber(raw.String()) {
		return gift.Answer{}, s.errorAt(start, "number")
	}
	ans := gift.Answer{Text: raw.String(), Correct: correct}
	s.skipSpace()
	if isPunct(s.peek(), "#") {
		s.next()
		fb, err := s.answerText("=~}", "feedback text", `"="`, `"}"`, `"~"`)
		if err != nil {
			return ans, err
		}
		ans.Feedback = strings.TrimSpace(fb)
	}
	return ans, nil
}

// validNumber accepts "v", "v:tolerance" and "min..max".
func validNumber(raw string) bool {
	if raw == "" {
		return false
	}
	parts := strings.SplitN(raw, ":", 2)
	if len(parts) == 1 {
		parts = strings.SplitN(raw, "..", 2)
	}
	for _, p := range parts {
		if _, err := strconv.ParseFloat(p, 64); err != nil {
			return false
		}
	}
	return true
}
