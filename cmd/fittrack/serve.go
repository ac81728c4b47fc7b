package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sakif/fittrack/internal/config"
	"github.com/sakif/fittrack/internal/server"
)

func (c *cli) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web app",
		Long: `Run the web app until interrupted (Ctrl+C or SIGTERM). In-flight
requests get 30 seconds to finish before the database is closed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if c.cfg.GeneratedSecret {
				c.logger.Warn("session_secret not set, using a random one; sessions end on restart")
			}
			if c.cfg.ConfigFile != "" {
				c.logger.Info("config loaded", slog.String("file", c.cfg.ConfigFile))
			}

			srv, err := server.New(c.serverConfig(), c.logger)
			if err != nil {
				return err
			}
			return srv.Start(cmd.Context())
		},
	}

	cmd.Flags().Int("port", 0, "port to listen on (default 8080)")
	_ = c.v.BindPFlag(config.KeyPort, cmd.Flags().Lookup("port"))
	return cmd
}
