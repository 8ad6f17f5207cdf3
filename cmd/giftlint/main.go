package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/dhamidi/giftlint/config"
	"github.com/dhamidi/giftlint/diagnose"
	"github.com/dhamidi/giftlint/gift/parser"
)

var version = "0.1.0"

// exitError carries the process exit status out of a command. A nil err
// means the command already reported everything it had to say.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

const (
	exitFindings = 1
	exitFailure  = 2
)

type globalOptions struct {
	verbose    int
	configPath string
	logFile    string
	cfg        config.Config
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{cfg: config.Default()}

	rootCmd := &cobra.Command{
		Use:           "giftlint",
		Short:         "Find every syntax error in GIFT quiz files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var logPath *string
			if g.logFile != "" {
				logPath = &g.logFile
			}
			commonlog.Configure(g.verbose, logPath)
			return g.loadConfig()
		},
	}

	rootCmd.PersistentFlags().CountVarP(&g.verbose, "verbose", "v", "log more, repeat for more detail")
	rootCmd.PersistentFlags().StringVar(&g.configPath, "config", "", "config file (default: nearest "+config.FileName+")")
	rootCmd.PersistentFlags().StringVar(&g.logFile, "log-file", "", "write logs to this file instead of stderr")

	rootCmd.AddCommand(newCheckCmd(g))
	rootCmd.AddCommand(newParseCmd(g))
	rootCmd.AddCommand(newWatchCmd(g))
	rootCmd.AddCommand(newLSPCmd(g))
	rootCmd.AddCommand(newServeCmd(g))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func (g *globalOptions) loadConfig() error {
	var err error
	if g.configPath != "" {
		g.cfg, err = config.Load(g.configPath)
	} else {
		g.cfg, _, err = config.Discover(".")
	}
	return err
}

func newChecker(cfg config.Config) *diagnose.Checker {
	opts := []diagnose.Option{
		diagnose.WithIterationLimit(cfg.IterationLimit),
		diagnose.WithSearchRadius(cfg.SearchRadius),
		diagnose.WithLineEnding(cfg.Ending()),
	}
	// zero keeps the default of one worker per CPU
	if cfg.Workers > 0 {
		opts = append(opts, diagnose.WithWorkers(cfg.Workers))
	}
	return diagnose.New(parser.New(), opts...)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}

	code := exitFailure
	var ee *exitError
	if errors.As(err, &ee) {
		code = ee.code
		err = ee.err
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "giftlint: %v\n", err)
	}
	os.Exit(code)
}
