package app

import (
	"github.com/spf13/cobra"

	"github.com/confstore/confstore/internal/daemon"
	"github.com/confstore/confstore/internal/logger"
)

func init() { //nolint: gochecknoinits
	startCmd.Flags().BoolVar(&devMode, "dev", false, "Enable dev mode")
	startCmd.Flags().BoolVar(&withEvents, "events", false, "Consume config.set/config.unset events even if disabled in main.toml")

	rootCmd.AddCommand(startCmd)
}

var (
	devMode    bool
	withEvents bool

	startCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the confstore http api and event consumer",
		PreRunE: func(_ *cobra.Command, _ []string) error {
			if err := loadConfig(); err != nil {
				return err
			}

			if devMode {
				cfg.DevMode = true
			}

			if withEvents {
				cfg.Events.Enabled = true
			}

			return logger.Init(cfg.Log) //nolint:wrapcheck
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := daemon.New(&cfg)
			if err != nil {
				return err //nolint:wrapcheck
			}

			return d.Start(cmd.Context())
		},
	}
)
