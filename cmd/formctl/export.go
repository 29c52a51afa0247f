package main

import (
	"database/sql"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/faciam-dev/gforms/internal/export"
	schemasrepo "github.com/faciam-dev/gforms/internal/repository/schemas"
	submissionsrepo "github.com/faciam-dev/gforms/internal/repository/submissions"
	"github.com/faciam-dev/gforms/pkg/util"
)

func newExportCmd() *cobra.Command {
	var dsn, driver, prefix, tenantID, dir, bucket, keyPrefix string
	var withSubmissions bool
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Dump schemas (and optionally submissions) as a YAML archive",
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

			dialect := util.DialectFromDriver(driver)
			schemas := &schemasrepo.Repo{DB: db, Dialect: dialect, TablePrefix: prefix}
			var subs submissionsrepo.Store
			if withSubmissions {
				subs = submissionsrepo.NewSQLStore(db, driver, dialect, prefix)
			}

			var dest export.Dest
			if bucket != "" {
				s3dest, err := export.NewS3(cmd.Context(), bucket, keyPrefix)
				if err != nil {
					return err
				}
				dest = s3dest
			} else {
				dest = export.LocalDir{Path: dir}
			}
			return export.Export(cmd.Context(), tenantID, schemas, subs, dest)
		},
	}
	cmd.Flags().StringVar(&dsn, "db", "", "database DSN")
	cmd.Flags().StringVar(&driver, "driver", "", "database driver (detected from DSN when empty)")
	cmd.Flags().StringVar(&prefix, "table-prefix", util.GetEnv("TABLE_PREFIX", "gform_"), "table name prefix")
	cmd.Flags().StringVar(&tenantID, "tenant", "default", "tenant id")
	cmd.Flags().StringVar(&dir, "out", ".", "output directory")
	cmd.Flags().StringVar(&bucket, "s3-bucket", "", "write to this S3 bucket instead of a local directory")
	cmd.Flags().StringVar(&keyPrefix, "s3-prefix", "", "S3 key prefix")
	cmd.Flags().BoolVar(&withSubmissions, "submissions", false, "include submissions")
	return cmd
}
