package main

import (
	"log"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{Use: "formctl"}

func init() {
	rootCmd.PersistentFlags().String("api-url", "", "Form API base URL")
	rootCmd.PersistentFlags().String("token", "", "Bearer token for the Form API")
	rootCmd.PersistentFlags().String("tenant", "", "Tenant ID sent with each request")
	rootCmd.PersistentFlags().String("profile", "", "Profile name in config (overrides active)")
	rootCmd.PersistentFlags().String("output", "table", "Output format (table|json)")

	rootCmd.AddCommand(newSchemasCmd())
	rootCmd.AddCommand(newSubmissionsCmd())
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newConfigCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
