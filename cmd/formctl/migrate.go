package main

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/faciam-dev/gforms/pkg/migrator"
	"github.com/faciam-dev/gforms/pkg/util"
)

func newMigrateCmd() *cobra.Command {
	var dsn, driver, prefix string
	var target int
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the engine tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			if driver == "" {
				d, err := util.DetectDriver(dsn)
				if err != nil {
					return err
				}
				driver = d
			}
			db, err := sql.Open(driver, dsn)
			if err != nil {
				return err
			}
			defer db.Close()

			m := migrator.New(driver, prefix)
			cur, err := m.Current(cmd.Context(), db)
			if err != nil {
				return err
			}
			if err := m.Up(cmd.Context(), db, target); err != nil {
				return err
			}
			now, err := m.Current(cmd.Context(), db)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Migrated %d -> %d\n", cur, now)
			return nil
		},
	}
	cmd.Flags().StringVar(&dsn, "db", "", "database DSN")
	cmd.Flags().StringVar(&driver, "driver", "", "database driver (detected from DSN when empty)")
	cmd.Flags().StringVar(&prefix, "table-prefix", util.GetEnv("TABLE_PREFIX", "gform_"), "table name prefix")
	cmd.Flags().IntVar(&target, "target", 0, "target version (0 = latest)")
	return cmd
}
