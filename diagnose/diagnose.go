// Package diagnose checks whole GIFT documents: it splits them into
// questions, recovers every syntax error of each question and reports the
// errors in document coordinates.
package diagnose

import (
	"context"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/giftlint/gift"
	"github.com/dhamidi/giftlint/recovery"
	"github.com/dhamidi/giftlint/segment"
)

var log = commonlog.GetLogger("giftlint.diagnose")

type Option func(*Checker)

func WithIterationLimit(n int) Option {
	return func(c *Checker) {
		c.limit = n
	}
}

func WithSearchRadius(n int) Option {
	return func(c *Checker) {
		c.radius = n
	}
}

// WithWorkers sets how many chunks are checked concurrently. Values below
// one mean one.
func WithWorkers(n int) Option {
	return func(c *Checker) {
		c.workers = n
	}
}

// WithLineEnding fixes the line ending offsets are computed with instead of
// detecting it per document. The empty string means detect.
func WithLineEnding(ending string) Option {
	return func(c *Checker) {
		c.lineEnding = ending
	}
}

type Checker struct {
	grammar    gift.Grammar
	engine     *recovery.Engine
	limit      int
	radius     int
	workers    int
	lineEnding string
}

func New(grammar gift.Grammar, opts ...Option) *Checker {
	c := &Checker{
		grammar: grammar,
		limit:   recovery.DefaultLimit,
		radius:  recovery.DefaultRadius,
		workers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.workers < 1 {
		c.workers = 1
	}
	c.engine = recovery.NewEngine(grammar, recovery.WithLimit(c.limit), recovery.WithRadius(c.radius))
	return c
}

// Check reports every syntax error found in text. Errors in the document
// itself end up in the report; the returned error is only ever ctx.Err().
func (c *Checker) Check(ctx context.Context, name, text string) (Report, error) {
	return c.check(ctx, name, text, 0)
}

// CheckRaw decodes raw file content and checks it. Offsets in the report
// are offsets into raw, counting any byte order mark in front of the text.
func (c *Checker) CheckRaw(ctx context.Context, name string, raw []byte) (Report, error) {
	text, base, err := segment.Decode(raw)
	if err != nil {
		return Report{}, err
	}
	return c.check(ctx, name, text, base)
}

func (c *Checker) check(ctx context.Context, name, text string, base int) (Report, error) {
	start := time.Now()

	ending := c.lineEnding
	if ending == "" {
		ending = segment.DetectLineEnding(text)
	}
	normalized := segment.Normalize(text)
	chunks := segment.Split(normalized)
	lines := recovery.NewLineTable(normalized, ending, base)

	results, err := c.checkAll(ctx, chunks, lines)
	if err != nil {
		return Report{}, err
	}

	report := Report{
		File:       name,
		LineEnding: ending,
		Chunks:     len(chunks),
		Source:     normalized,
	}
	for _, res := range results {
		report.Diagnostics = append(report.Diagnostics, res.Diagnostics()...)
	}
	report.Elapsed = time.Since(start)
	log.Infof("checked %s: %d questions, %d errors in %s", name, len(chunks), len(report.Diagnostics), report.Elapsed)
	return report, nil
}

// checkAll hands chunks to the worker pool and returns the results in chunk
// order. Each chunk is owned by exactly one worker.
func (c *Checker) checkAll(ctx context.Context, chunks []gift.Chunk, lines *recovery.LineTable) ([]ChunkResult, error) {
	results := make([]ChunkResult, len(chunks))
	workers := min(c.workers, len(chunks))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i], _ = c.CheckChunk(chunks[i], lines)
			}
		}()
	}

	var err error
feed:
	for i := range chunks {
		if err = ctx.Err(); err != nil {
			break
		}
		select {
		case jobs <- i:
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err != nil {
		return nil, err
	}
	return results, nil
}

// CheckChunk checks a single chunk. It returns false for a blank chunk,
// which is skipped without running the grammar.
func (c *Checker) CheckChunk(chunk gift.Chunk, lines *recovery.LineTable) (ChunkResult, bool) {
	if strings.TrimSpace(chunk.Text) == "" {
		return ChunkResult{}, false
	}

	res := ChunkResult{Chunk: chunk}
	first := c.grammar.Parse(chunk.Text)
	if !first.Failed() {
		res.Recovery = recovery.Result{Variants: []string{chunk.Text}, State: recovery.Clean}
		return res, true
	}

	res.Recovery = c.engine.Recover(chunk.Text, first)
	if res.Recovery.State == recovery.Unrecovered {
		res.Errors = res.Recovery.Errors
	} else {
		res.Errors = recovery.Correct(res.Recovery.Errors, chunk, lines)
	}
	return res, true
}
