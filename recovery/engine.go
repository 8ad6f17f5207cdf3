package recovery

import (
	"errors"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/giftlint/gift"
)

// DefaultLimit is the number of re-parses the Engine allows per chunk.
const DefaultLimit = 50

var ErrIterationsExhausted = errors.New("recovery iteration limit reached")

var log = commonlog.GetLogger("giftlint.recovery")

// State says how a recovery run ended.
type State int

const (
	// Clean: the last escaped variant parsed without errors.
	Clean State = iota
	// Aborted: the offending token could not be located or escaped.
	Aborted
	// Exhausted: the iteration limit was reached.
	Exhausted
	// Unrecovered: the first outcome did not carry exactly one error, so
	// recovery was not attempted and the outcome is returned as is.
	Unrecovered
)

func (s State) String() string {
	switch s {
	case Clean:
		return "clean"
	case Aborted:
		return "aborted"
	case Exhausted:
		return "exhausted"
	case Unrecovered:
		return "unrecovered"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Result is what a recovery run collected. All terminal states share it.
type Result struct {
	// Errors in discovery order, relative to the variant they were found in.
	Errors []gift.SyntaxError
	// Variants is the stack of texts parsed, the original chunk text first.
	Variants   []string
	Iterations int
	State      State
	// Cause is the error that ended an Aborted or Exhausted run.
	Cause error
}

// Incomplete reports whether more errors may exist than were collected.
func (r Result) Incomplete() bool {
	return r.State == Aborted || r.State == Exhausted
}

type Option func(*Engine)

func WithLimit(n int) Option {
	return func(e *Engine) {
		e.limit = n
	}
}

func WithRadius(n int) Option {
	return func(e *Engine) {
		e.radius = n
	}
}

// Engine drives the locate, escape, re-parse loop over a single chunk. It
// holds no per-chunk state and may be shared between goroutines as long as
// its Grammar can.
type Engine struct {
	grammar gift.Grammar
	limit   int
	radius  int
}

func NewEngine(g gift.Grammar, opts ...Option) *Engine {
	e := &Engine{
		grammar: g,
		limit:   DefaultLimit,
		radius:  DefaultRadius,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Recover collects every error it can find in text, starting from first,
// the outcome of parsing text. A successful first outcome yields a Clean
// result without errors.
func (e *Engine) Recover(text string, first gift.Outcome) Result {
	res := Result{Variants: []string{text}}
	if !first.Failed() {
		return res
	}
	res.Errors = append(res.Errors, first.Errors...)
	if len(first.Errors) != 1 {
		res.State = Unrecovered
		return res
	}

	for res.Iterations < e.limit {
		current := res.Variants[len(res.Variants)-1]
		last := res.Errors[len(res.Errors)-1]
		if !last.HasFound() {
			return e.abort(res, ErrNullToken)
		}

		offset, err := Locate(current, last.Found, last.Span.Start.Offset, e.radius)
		if err != nil {
			return e.abort(res, err)
		}
		escaped, err := EscapeAt(current, offset)
		if err != nil {
			return e.abort(res, err)
		}
		res.Variants = append(res.Variants, escaped)

		out := e.grammar.Parse(escaped)
		if !out.Failed() {
			res.State = Clean
			return res
		}
		res.Errors = append(res.Errors, out.Errors...)
		res.Iterations++
	}

	res.State = Exhausted
	res.Cause = ErrIterationsExhausted
	log.Debugf("recovery stopped after %d iterations with %d errors", res.Iterations, len(res.Errors))
	return res
}

func (e *Engine) abort(res Result, cause error) Result {
	res.State = Aborted
	res.Cause = cause
	log.Debugf("recovery aborted after %d iterations: %v", res.Iterations, cause)
	return res
}
