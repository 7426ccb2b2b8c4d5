package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/docflow/internal/httpapi"
	"github.com/mesh-intelligence/docflow/internal/links"
	"github.com/mesh-intelligence/docflow/pkg/types"
)

func (a *app) newServeCmd() *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the link graph over HTTP",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr := a.settings.ListenAddr
			if listen != "" {
				addr = listen
			}
			if addr == "" {
				return fmt.Errorf("%w: no listen address", errUsage)
			}

			return a.withStore(func(store types.Store) error {
				linkSvc := links.NewService(store, store, links.WithLogger(a.logger))
				srv := httpapi.NewServer(store, linkSvc, a.flowService(store), a.logger)
				return srv.ListenAndServe(cmd.Context(), addr)
			})
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default from config, :8080)")
	return cmd
}
