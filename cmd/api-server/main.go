package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	"github.com/go-co-op/gocron"

	"github.com/faciam-dev/gforms/internal/config"
	"github.com/faciam-dev/gforms/internal/logger"
	submissionsrepo "github.com/faciam-dev/gforms/internal/repository/submissions"
	"github.com/faciam-dev/gforms/internal/server"
	"github.com/faciam-dev/gforms/pkg/metrics"
	"github.com/faciam-dev/gforms/pkg/util"
)

func main() {
	dsn := flag.String("dsn", "", "database DSN")
	driver := flag.String("driver", "postgres", "database driver")
	tblPrefix := flag.String("table-prefix", util.GetEnv("TABLE_PREFIX", "gform_"), "table prefix (default gform_)")
	onDelete := flag.String("on-schema-delete", util.GetEnv("GF_ON_SCHEMA_DELETE", "orphan"), "submission policy when a schema is deleted: cascade, orphan or block")
	addr := flag.String("addr", ":8080", "listen address")
	openapi := flag.String("openapi", "", "write OpenAPI JSON and exit")
	flag.Parse()

	logger.Set(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	driverProvided := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "driver" {
			driverProvided = true
		}
	})

	if *dsn != "" {
		if detected, err := util.DetectDriver(*dsn); err != nil {
			if !driverProvided || *driver == "" {
				logger.L.Error("detect driver", "dsn", *dsn, "err", err)
				os.Exit(1)
			}
		} else {
			if !driverProvided || *driver == "" {
				*driver = detected
			} else if detected != "" && *driver != detected {
				logger.L.Error("driver mismatch", "driver", *driver, "dsn", *dsn, "expected", detected)
				os.Exit(1)
			}
		}
	}

	var db *sql.DB
	var err error
	dialect := util.DialectFromDriver(*driver)
	if *dsn != "" {
		db, err = sql.Open(*driver, *dsn)
		if err != nil {
			logger.L.Error("db open", "err", err)
			os.Exit(1)
		}
		if err := config.CheckPrefix(context.Background(), db, dialect, *tblPrefix); err != nil {
			logger.L.Error("prefix check", "err", err)
			os.Exit(1)
		}
		defer db.Close()
	}

	dbCfg := server.DBConfig{Driver: *driver, DSN: *dsn, TablePrefix: *tblPrefix, OnSchemaDelete: *onDelete}
	api := server.New(db, dbCfg)

	if db != nil {
		store := submissionsrepo.NewSQLStore(db, dbCfg.Driver, dialect, dbCfg.TablePrefix)
		s := gocron.NewScheduler(time.UTC)
		// Nightly orphan sweep: count submissions whose schema is gone so
		// the gauge reflects the orphan delete policy's leftovers.
		if _, err := s.Cron("0 3 * * *").Do(func() {
			n, err := store.CountOrphans(context.Background())
			if err != nil {
				logger.L.Error("count orphans", "err", err)
				return
			}
			metrics.OrphanedSubmissions.Set(float64(n))
		}); err != nil {
			logger.L.Error("schedule orphan sweep", "err", err)
		}
		s.StartAsync()
	}

	if *openapi != "" {
		data, err := json.MarshalIndent(api.OpenAPI(), "", "  ")
		if err != nil {
			logger.L.Error("marshal openapi", "err", err)
			os.Exit(1)
		}
		p := filepath.Clean(*openapi)
		if err := os.WriteFile(p, data, 0o600); err != nil {
			logger.L.Error("write openapi", "err", err)
			os.Exit(1)
		}
		return
	}

	logger.L.Info("listening", "addr", *addr)
	srv := &http.Server{
		Addr:         *addr,
		Handler:      api.Adapter(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.L.Error("server error", "err", err)
		os.Exit(1)
	}
}
