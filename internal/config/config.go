// Package config holds engine-wide settings shared by the server, the SDK
// and the CLI.
package config

import (
	"context"
	"database/sql"
	"fmt"

	ormdriver "github.com/faciam-dev/goquent/orm/driver"
	"github.com/faciam-dev/goquent/orm/query"
)

// Config carries the settings every storage component needs.
type Config struct {
	TablePrefix string `env:"TABLE_PREFIX,default=gform_"`
}

// T returns the physical table name for a logical one.
func (c *Config) T(name string) string {
	return c.TablePrefix + name
}

// CheckPrefix fails fast when the connected database has no tables under
// the configured prefix, which almost always means migrations were never
// run or TABLE_PREFIX points at the wrong installation.
func CheckPrefix(ctx context.Context, db *sql.DB, dialect ormdriver.Dialect, prefix string) error {
	var res struct{ Cnt int }
	err := query.New(db, "information_schema.tables", dialect).
		SelectRaw("COUNT(*) AS cnt").
		WhereRaw("table_name LIKE :p", map[string]any{"p": prefix + "%"}).
		WithContext(ctx).
		First(&res)
	if err != nil {
		return err
	}
	if res.Cnt == 0 {
		return fmt.Errorf("no tables with prefix %q found; run formctl migrate or fix TABLE_PREFIX", prefix)
	}
	return nil
}
