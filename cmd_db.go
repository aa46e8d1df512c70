package main

import (
	"catalog_server/database"
	"fmt"

	"github.com/spf13/cobra"
)

var seedForce bool

// bootDB opens the configured database.
func bootDB() (*database.DB, error) {
	if err := database.Initialize(); err != nil {
		return nil, err
	}
	return database.GetInstance(), nil
}

// catalog migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the catalog tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := bootDB()
		if err != nil {
			return err
		}
		defer database.CloseInstance()

		fmt.Println("Running migrations...")
		return database.Migrate(cmd.Context(), db)
	},
}

// catalog seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the sample products",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := bootDB()
		if err != nil {
			return err
		}
		defer database.CloseInstance()

		if err := database.Migrate(cmd.Context(), db); err != nil {
			return err
		}

		n, err := database.Seed(cmd.Context(), db, seedForce)
		if err != nil {
			return err
		}
		if n == 0 {
			fmt.Println("Products already present, nothing seeded (use --force to seed anyway)")
			return nil
		}
		fmt.Printf("Seeded %d products\n", n)
		return nil
	},
}

func init() {
	seedCmd.Flags().BoolVar(&seedForce, "force", false, "seed even when products exist")
}
