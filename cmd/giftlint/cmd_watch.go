package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhamidi/giftlint/codebase"
	"github.com/dhamidi/giftlint/format"
)

func newWatchCmd(g *globalOptions) *cobra.Command {
	var flags checkFlags
	var summary bool

	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Re-check GIFT files whenever they change",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.apply(cmd.Flags(), g.cfg)
			if err != nil {
				return err
			}
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			out := cmd.OutOrStdout()
			enc, err := format.New(cfg.Format, out, format.Options{
				Color: useColor(cfg.Color, out),
				Wrap:  cfg.Wrap,
			})
			if err != nil {
				return err
			}

			cb := codebase.New(dir, newChecker(cfg))
			cb.Subscribe(func(path string) {
				file := cb.GetFile(path)
				switch {
				case file == nil:
					fmt.Fprintf(out, "%s: removed\n", path)
				case file.Err != nil:
					fmt.Fprintf(out, "%s: %v\n", path, file.Err)
				case !file.Report.HasErrors():
					fmt.Fprintf(out, "%s: ok\n", path)
				default:
					if err := enc.Encode(file.Report); err != nil {
						fmt.Fprintf(cmd.ErrOrStderr(), "giftlint: %v\n", err)
					}
				}
				if summary {
					fmt.Fprintln(out, format.Summary(cb.Reports(), cfg.Wrap))
				}
			})

			w := codebase.NewFileWatcher(cb, codebase.WithInterval(cfg.WatchInterval()))
			w.Start()
			defer w.Stop()

			fmt.Fprintf(cmd.ErrOrStderr(), "watching %s for %s files\n", dir, codebase.Ext)
			<-cmd.Context().Done()
			return nil
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().BoolVar(&summary, "summary", false, "print a table of all files after each change")

	return cmd
}
