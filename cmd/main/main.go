package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configPath string

// rootCmd runs the proxy server when no subcommand is given
var rootCmd = &cobra.Command{
	Use:   "series-proxy",
	Short: "Concurrent, rate-aware proxy for FRED time series",
	Long: `series-proxy fetches the latest observations of FRED economic series
on behalf of browser clients, keeping the upstream API key on the server.

Available subcommands:
  serve  - Run the HTTP proxy and the watchlist refresher (default)
  fetch  - Fetch series once and print the JSON result
  config - Manage the configuration file`,
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP proxy and the watchlist refresher",
	RunE:  runServe,
}

var fetchCmd = &cobra.Command{
	Use:   "fetch <series_id>...",
	Short: "Fetch the latest observations once and print them",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFetch,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init <path>",
	Short: "Write a default configuration file",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigInit,
}

// -----------------------------------------------------------------------------

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config/default.yaml", "path to config file")

	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(configCmd)
}

// -----------------------------------------------------------------------------

func main() {
	// Credentials may live in a local .env file
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
