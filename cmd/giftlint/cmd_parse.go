package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/dhamidi/giftlint/gift"
	"github.com/dhamidi/giftlint/gift/parser"
	"github.com/dhamidi/giftlint/recovery"
	"github.com/dhamidi/giftlint/segment"
)

func newParseCmd(g *globalOptions) *cobra.Command {
	var trace bool
	var dump bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse each question of a GIFT file and show the result",
		Long: `Parse each question of a GIFT file on its own and show what the
grammar made of it.

With --trace the recovery steps are shown for questions that fail: every
escaped variant that was parsed and the error it produced.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := args[0]
			raw, err := os.ReadFile(filename)
			if err != nil {
				return fmt.Errorf("read file: %w", err)
			}
			text, _, err := segment.Decode(raw)
			if err != nil {
				return err
			}

			p := parser.New(parser.WithFile(filename))
			engine := recovery.NewEngine(p,
				recovery.WithLimit(g.cfg.IterationLimit),
				recovery.WithRadius(g.cfg.SearchRadius),
			)
			out := cmd.OutOrStdout()

			var outcomes []gift.Outcome
			for _, chunk := range segment.Split(segment.Normalize(text)) {
				outcome := p.Parse(chunk.Text)
				outcomes = append(outcomes, outcome)
				if asJSON {
					continue
				}
				if dump {
					fmt.Fprintf(out, "# line %d\n", chunk.StartLine)
					spew.Fdump(out, outcome)
					continue
				}
				printOutcome(out, chunk, outcome)
				if trace && outcome.Failed() {
					printTrace(out, engine.Recover(chunk.Text, outcome))
				}
			}

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(outcomes)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&trace, "trace", false, "show recovery steps for failing questions")
	cmd.Flags().BoolVar(&dump, "dump", false, "dump the raw parse outcomes")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the parse outcomes as JSON")

	return cmd
}

func printOutcome(w io.Writer, chunk gift.Chunk, outcome gift.Outcome) {
	if outcome.Failed() {
		e := outcome.Errors[0]
		fmt.Fprintf(w, "line %d: error at %s: %s\n", chunk.StartLine, e.Span.Start, e.Message)
		return
	}
	for _, q := range outcome.Questions {
		fmt.Fprintf(w, "line %d: %s", chunk.StartLine, q.Kind)
		if q.Title != "" {
			fmt.Fprintf(w, " %q", q.Title)
		}
		if len(q.Answers) > 0 {
			fmt.Fprintf(w, ", %d answers", len(q.Answers))
		}
		fmt.Fprintln(w)
	}
}

func printTrace(w io.Writer, res recovery.Result) {
	for i, variant := range res.Variants {
		if i == 0 {
			continue
		}
		fmt.Fprintf(w, "  variant %d: %q\n", i, variant)
		if i < len(res.Errors) {
			e := res.Errors[i]
			fmt.Fprintf(w, "    error at %s: %s\n", e.Span.Start, e.Message)
		}
	}
	fmt.Fprintf(w, "  %s after %d iterations, %d errors", res.State, res.Iterations, len(res.Errors))
	if res.Cause != nil {
		fmt.Fprintf(w, " (%v)", res.Cause)
	}
	fmt.Fprintln(w)
}
