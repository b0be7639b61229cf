package cmd

import (
	"fmt"
	"os"

	"github.com/haierkeys/fast-asset-delivery/internal/upgrade"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long: `Create or update the user, product and purchase tables, then apply the
versioned data migrations recorded in schema_version.

It is safe to run this command multiple times. The server runs the same
migration on startup unless database.auto-migrate is false.`,
	Run: func(cmd *cobra.Command, args []string) {
		env, err := openCommandEnv(cmd)
		if err != nil {
			fmt.Printf("Failed to start: %v\n", err)
			os.Exit(1)
		}
		defer env.close()

		applied, err := upgrade.Execute(cmd.Context(), env.app.DB, env.logger)
		if err != nil {
			fmt.Printf("Migration failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Schema of %s database is up to date, %d migration(s) applied.\n", env.config.Database.Type, applied)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().StringP("config", "c", "", "config file path")
}
