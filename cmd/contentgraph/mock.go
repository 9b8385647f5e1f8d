package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/llehouerou/go-contentgraph-client/internal/config"
	"github.com/llehouerou/go-contentgraph-client/internal/mockserver"
)

func newMockCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mock",
		Short: "serve a local mock content API using the configured credentials",
		Long: `mock serves a small sample content API on --addr at ` + mockserver.Path + `.
Requests must carry the Authorization header of the configured auth mode.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.cfg.ValidateAuth(); err != nil {
				return err
			}
			srv, err := mockserver.New(a.cfg.Settings(), mockserver.WithLogger(a.log))
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.ListenAndServe(ctx, a.cfg.Mock.Addr)
		},
	}
	cmd.Flags().String("addr", "", "listen address (default from config, 127.0.0.1:8089)")
	_ = a.v.BindPFlag(config.KeyMockAddr, cmd.Flags().Lookup("addr"))
	return cmd
}
