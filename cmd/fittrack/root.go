package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sakif/fittrack/internal/config"
	"github.com/sakif/fittrack/internal/logging"
	"github.com/sakif/fittrack/internal/server"
)

// cli is the state shared by all subcommands of one invocation.
type cli struct {
	v          *viper.Viper
	configFile string
	cfg        *config.Config
	logger     *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{v: config.New()}

	root := &cobra.Command{
		Use:   "fittrack",
		Short: "Personal fitness tracker",
		Long: `Fittrack records body stats, running routes and activities, and shows
them as tables and charts in the browser.

QUICK START:

  $ fittrack serve                      # Start the web app on :8080
  $ fittrack user add alice             # Create a user from the shell
  $ fittrack export alice --format json # Dump alice's data

CONFIGURATION:

  Settings come from fittrack.yaml (or --config), then FITTRACK_* environment
  variables, then flags. For example FITTRACK_SESSION_SECRET sets the key used
  to sign session cookies.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.load,
	}

	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (default: ./fittrack.yaml)")
	root.PersistentFlags().String("db", "", "path of the SQLite database (default data/fittrack.db)")
	root.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	_ = c.v.BindPFlag(config.KeyDBPath, root.PersistentFlags().Lookup("db"))
	_ = c.v.BindPFlag(config.KeyLogLevel, root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(
		c.newServeCmd(),
		c.newUserCmd(),
		c.newExportCmd(),
		c.newSessionsCmd(),
	)
	return root
}

// load resolves the configuration and logger before any subcommand runs.
func (c *cli) load(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(c.v, c.configFile)
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Writer: cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}

	c.cfg = cfg
	c.logger = logger
	return nil
}

func (c *cli) serverConfig() server.Config {
	return server.Config{
		Port:               c.cfg.Port,
		DBPath:             c.cfg.DBPath,
		SessionSecret:      c.cfg.SessionSecret,
		SessionTTL:         c.cfg.SessionTTL,
		SecureCookies:      c.cfg.SecureCookies,
		PBKDF2Iterations:   c.cfg.PBKDF2Iterations,
		LoginRatePerMinute: c.cfg.LoginRatePerMinute,
		GitHub:             c.cfg.GitHubProvider(),
	}
}

// openApp opens the store for the admin subcommands. The caller closes it.
func (c *cli) openApp() (*server.App, error) {
	return server.NewApp(c.serverConfig(), c.logger)
}
