package main

import (
	"catalog_server/config"
	"catalog_server/structs"
	"fmt"
	"os"

	"github.com/MonkyMars/gecho"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var logger *gecho.Logger
var cfg *structs.Config

var rootCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Product catalog server and client",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		envErr := godotenv.Load()

		cfg = config.GetConfig()
		logger = config.InitializeLogger()

		if envErr != nil {
			logger.Debug("No .env file found, proceeding with system environment variables")
		}
	},
	SilenceUsage: true,
}

func init() {
	// Server
	rootCmd.AddCommand(serveCmd)

	// Database
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)

	// Client
	rootCmd.AddCommand(productsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
