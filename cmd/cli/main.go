package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/pocket/internal/app"
	"github.com/MrJamesThe3rd/pocket/internal/config"
	"github.com/MrJamesThe3rd/pocket/internal/logging"
)

type cli struct {
	verbose bool
	cfg     *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "pocket",
		Short:         "Pocket personal finance ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			level := cfg.LogLevel()
			if c.verbose {
				level = slog.LevelDebug
			}

			slog.SetDefault(logging.NewTerminal(cmd.ErrOrStderr(), "pocket", level))
			c.cfg = cfg

			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		c.summaryCmd(),
		c.accountsCmd(),
		c.addCmd(),
		c.transferCmd(),
		c.importCmd(),
		c.exportCmd(),
		c.migrateCmd(),
	)

	return root
}

// open assembles the services for the loaded config. Callers must Close the App.
func (c *cli) open() (*app.App, error) {
	return app.New(c.cfg, nil)
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
