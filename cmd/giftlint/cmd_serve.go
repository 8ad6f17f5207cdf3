package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dhamidi/giftlint/store"
	"github.com/dhamidi/giftlint/store/inmem"
	"github.com/dhamidi/giftlint/store/sqlite"
	"github.com/dhamidi/giftlint/ui"
)

func newServeCmd(g *globalOptions) *cobra.Command {
	var addr string
	var storeLoc string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := g.cfg
			if cmd.Flags().Changed("addr") {
				cfg.Serve.Addr = addr
			}
			if cmd.Flags().Changed("store") {
				cfg.Serve.Store = storeLoc
			}

			repo, err := openStore(cfg.Serve.Store)
			if err != nil {
				return err
			}
			defer repo.Close()

			server, err := ui.NewServer(newChecker(cfg), repo)
			if err != nil {
				return fmt.Errorf("create server: %w", err)
			}

			displayAddr := cfg.Serve.Addr
			if strings.HasPrefix(displayAddr, ":") {
				displayAddr = "localhost" + displayAddr
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Starting server at http://%s\n", displayAddr)

			srv := &http.Server{Addr: cfg.Serve.Addr, Handler: server}
			go func() {
				<-cmd.Context().Done()
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(ctx)
			}()

			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "address to listen on (default from config, localhost:8080)")
	cmd.Flags().StringVar(&storeLoc, "store", "", `where reports are kept: "memory" or a SQLite file`)

	return cmd
}

func openStore(loc string) (store.Repository, error) {
	if loc == "" || loc == "memory" {
		return inmem.NewReportsRepository(), nil
	}
	repo, err := sqlite.Open(loc)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", loc, err)
	}
	return repo, nil
}
