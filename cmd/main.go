package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssovee/Open-Data-API/config"
	"github.com/ssovee/Open-Data-API/database"
	"github.com/ssovee/Open-Data-API/logging"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "open-data-api",
	Short: "Open Data API server",
	Long: `Serves mock users, movies, jobs and products over REST and GraphQL, short-lived notes,
image uploads, currency and weather lookups, and a socket.io file relay.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (default: search for config.yaml)")
	rootCmd.AddCommand(serveCmd(), seedCmd(), purgeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// bootstrap loads config into config.C, builds the logger and connects the
// migrated database into database.DB.
func bootstrap() (*slog.Logger, error) {
	if err := config.LoadConfig(configPath); err != nil {
		return nil, err
	}
	logger, err := logging.New(config.C.Log.Level, config.C.Log.Format)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	if err := database.Connect(); err != nil {
		return nil, err
	}
	if err := database.RunMigrations(database.DB); err != nil {
		return nil, err
	}
	return logger, nil
}
