// Package cmd holds the librisctl command tree.
package cmd

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/libris-app/libris/config"
	applog "github.com/libris-app/libris/log"
)

var cfg *config.ServerConfig

var rootCmd = &cobra.Command{
	Use:   "librisctl",
	Short: "librisctl is a CLI tool for operating a Libris deployment",
	Long:  `A command-line interface for inspecting and maintaining sessions of a Libris catalog server. It talks directly to the backing MongoDB instance.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		applog.Setup("warn", true)
		var err error
		cfg, err = config.LoadConfig()
		return err
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
