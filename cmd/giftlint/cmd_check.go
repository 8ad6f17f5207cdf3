package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dhamidi/giftlint/codebase"
	"github.com/dhamidi/giftlint/diagnose"
	"github.com/dhamidi/giftlint/format"
)

func newCheckCmd(g *globalOptions) *cobra.Command {
	var flags checkFlags
	var summary bool

	cmd := &cobra.Command{
		Use:   "check [file|dir...]",
		Short: "Report every syntax error in GIFT files",
		Long: `Check GIFT files and report every syntax error they contain.

Directories are searched for .gift files. Without arguments the document is
read from stdin.

Exits with status 1 when syntax errors were found and 2 when a file could
not be read.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.apply(cmd.Flags(), g.cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			enc, err := format.New(cfg.Format, out, format.Options{
				Color: useColor(cfg.Color, out),
				Wrap:  cfg.Wrap,
			})
			if err != nil {
				return err
			}

			checker := newChecker(cfg)
			var reports []diagnose.Report
			failed := false

			check := func(name string, raw []byte) error {
				report, err := checker.CheckRaw(cmd.Context(), name, raw)
				if err != nil {
					return err
				}
				reports = append(reports, report)
				return enc.Encode(report)
			}

			if len(args) == 0 {
				raw, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return &exitError{code: exitFailure, err: fmt.Errorf("read stdin: %w", err)}
				}
				if err := check("", raw); err != nil {
					return &exitError{code: exitFailure, err: err}
				}
			}

			for _, path := range expandArgs(args) {
				raw, err := os.ReadFile(path)
				if err == nil {
					err = check(path, raw)
				}
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "giftlint: %v\n", err)
					failed = true
				}
			}

			if summary && cfg.Format != format.JSON {
				fmt.Fprintln(out, format.Summary(reports, cfg.Wrap))
			}

			switch {
			case failed:
				return &exitError{code: exitFailure}
			case hasErrors(reports):
				return &exitError{code: exitFindings}
			}
			return nil
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().BoolVar(&summary, "summary", false, "print a table of results per file")

	return cmd
}

// expandArgs replaces directories with the GIFT files below them.
func expandArgs(args []string) []string {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
			if err == nil && !info.IsDir() && filepath.Ext(path) == codebase.Ext {
				paths = append(paths, path)
			}
			return nil
		})
	}
	return paths
}

func hasErrors(reports []diagnose.Report) bool {
	for _, r := range reports {
		if r.HasErrors() {
			return true
		}
	}
	return false
}

// useColor resolves a color mode against the writer output goes to.
func useColor(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) && os.Getenv("NO_COLOR") == ""
}
