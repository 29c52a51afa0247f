// Package migrator creates and upgrades the engine's tables from embedded
// SQL. The default prefix gform_ is rewritten when a custom one is set.
package migrator

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// Migration holds the up and down scripts of one schema version.
type Migration struct {
	Version int
	UpSQL   string
	DownSQL string
}

// Migrator applies migrations for the engine schema.
type Migrator struct {
	migrations  []Migration
	TablePrefix string
	Driver      string
}

// New returns a Migrator for the driver with the given table prefix.
func New(driver, prefix string) *Migrator {
	migs := mysqlMigrations
	if driver == "postgres" {
		migs = postgresMigrations
	}
	if prefix == "" {
		prefix = "gform_"
	}
	res := make([]Migration, len(migs))
	for i, m := range migs {
		m.UpSQL = strings.ReplaceAll(m.UpSQL, "gform_", prefix)
		m.DownSQL = strings.ReplaceAll(m.DownSQL, "gform_", prefix)
		res[i] = m
	}
	return &Migrator{migrations: res, TablePrefix: prefix, Driver: driver}
}

func (m *Migrator) versionTable() string { return m.TablePrefix + "schema_version" }

func (m *Migrator) quoteTable() string {
	if m.Driver == "postgres" {
		return pq.QuoteIdentifier(m.versionTable())
	}
	return "`" + m.versionTable() + "`"
}

func (m *Migrator) ensureVersionTable(ctx context.Context, db *sql.DB) error {
	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
        version INT PRIMARY KEY,
        applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
    )`, m.quoteTable())
	_, err := db.ExecContext(ctx, stmt)
	return err
}

// Current returns the highest applied version, zero for a fresh database.
func (m *Migrator) Current(ctx context.Context, db *sql.DB) (int, error) {
	if err := m.ensureVersionTable(ctx, db); err != nil {
		return 0, err
	}
	row := db.QueryRowContext(ctx, fmt.Sprintf("SELECT MAX(version) FROM %s", m.quoteTable()))
	var v sql.NullInt64
	if err := row.Scan(&v); err != nil {
		return 0, err
	}
	if !v.Valid {
		return 0, nil
	}
	return int(v.Int64), nil
}

// Up migrates the schema up to target. target=0 means latest.
func (m *Migrator) Up(ctx context.Context, db *sql.DB, target int) error {
	if target == 0 {
		target = len(m.migrations)
	}
	cur, err := m.Current(ctx, db)
	if err != nil {
		return err
	}
	if cur >= target {
		return nil
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for i := cur; i < target; i++ {
		if err := execAll(ctx, tx, m.migrations[i].UpSQL); err != nil {
			return rollback(tx, err)
		}
		if err := m.record(ctx, tx, m.migrations[i].Version); err != nil {
			return rollback(tx, err)
		}
	}
	return tx.Commit()
}

// Down migrates the schema down to target version.
func (m *Migrator) Down(ctx context.Context, db *sql.DB, target int) error {
	cur, err := m.Current(ctx, db)
	if err != nil {
		return err
	}
	if target >= cur {
		return nil
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for i := cur - 1; i >= target; i-- {
		if err := execAll(ctx, tx, m.migrations[i].DownSQL); err != nil {
			return rollback(tx, err)
		}
		if err := m.unrecord(ctx, tx, m.migrations[i].Version); err != nil {
			return rollback(tx, err)
		}
	}
	return tx.Commit()
}

func (m *Migrator) record(ctx context.Context, tx *sql.Tx, version int) error {
	var stmt string
	if m.Driver == "postgres" {
		stmt = fmt.Sprintf("INSERT INTO %s(version) VALUES ($1)", m.quoteTable())
	} else {
		stmt = fmt.Sprintf("INSERT INTO %s(version) VALUES (?)", m.quoteTable())
	}
	_, err := tx.ExecContext(ctx, stmt, version)
	return err
}

func (m *Migrator) unrecord(ctx context.Context, tx *sql.Tx, version int) error {
	var stmt string
	if m.Driver == "postgres" {
		stmt = fmt.Sprintf("DELETE FROM %s WHERE version = $1", m.quoteTable())
	} else {
		stmt = fmt.Sprintf("DELETE FROM %s WHERE version = ?", m.quoteTable())
	}
	_, err := tx.ExecContext(ctx, stmt, version)
	return err
}

func rollback(tx *sql.Tx, err error) error {
	if rbErr := tx.Rollback(); rbErr != nil {
		return fmt.Errorf("rollback: %v: %w", rbErr, err)
	}
	return err
}

// splitSQL breaks a script into statements on semicolons outside quotes.
func splitSQL(src string) []string {
	var (
		res      []string
		buf      strings.Builder
		inSingle bool
		inDouble bool
	)
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch c {
		case '\'':
			inSingle = !inSingle
		case '"':
			inDouble = !inDouble
		case ';':
			if !inSingle && !inDouble {
				if s := strings.TrimSpace(buf.String()); s != "" {
					res = append(res, s)
				}
				buf.Reset()
				continue
			}
		}
		buf.WriteByte(c)
	}
	if s := strings.TrimSpace(buf.String()); s != "" {
		res = append(res, s)
	}
	return res
}

func execAll(ctx context.Context, tx *sql.Tx, src string) error {
	for _, stmt := range splitSQL(src) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt, err)
		}
	}
	return nil
}
