// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"

	"github.com/confstore/confstore/internal/config"
)

var (
	configPath string        // directory holding main.toml
	cfg        config.Config // loaded by loadConfig
)

var rootCmd = &cobra.Command{
	Use:   "confstore",
	Short: "confstore is a multi-tenant key/value configuration store",
	Long: `confstore stores configuration values per key and owner.
Values are served over a JSON http api and replicated through NATS events.`,
	Args:          cobra.OnlyValidArgs,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./etc/", "directory containing main.toml")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads the configuration once for every sub command.
func loadConfig() error {
	var err error

	cfg, err = config.ReadConfig(configPath)

	return err //nolint:wrapcheck
}
