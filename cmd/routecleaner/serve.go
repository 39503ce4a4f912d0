package main

import (
	"github.com/spf13/cobra"

	"routecleaner/internal/app"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the cleaning API over HTTP",
		Long: `Serve the cleaning API until interrupted.

  POST /api/v1/clean   multipart upload ("file", optional "rows", "format")
  GET  /api/health     health, /ready and /live probes
  GET  /metrics        Prometheus metrics`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("port") {
				root.cfg.Server.Port = port
			}

			application, err := app.NewApplication(root.cfg, root.logger)
			if err != nil {
				return err
			}
			return application.Run(cmd.Context())
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (default from config, 8080)")
	return cmd
}
