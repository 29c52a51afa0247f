package util

import (
	"fmt"
	"net/url"

	ormdriver "github.com/faciam-dev/goquent/orm/driver"
)

// DetectDriver infers the database driver from a DSN's URL scheme so that
// callers only have to pass -driver when the DSN is ambiguous.
func DetectDriver(dsn string) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "mysql":
		return "mysql", nil
	case "postgres", "postgresql":
		return "postgres", nil
	case "mongodb", "mongodb+srv":
		return "mongo", nil
	}
	return "", fmt.Errorf("cannot detect driver from scheme %q", u.Scheme)
}

// fallbackDialect keeps goquent callers working for drivers without a
// dedicated dialect. It quotes nothing and uses ? placeholders.
type fallbackDialect struct{}

func (fallbackDialect) Placeholder(int) string { return "?" }

func (fallbackDialect) QuoteIdent(ident string) string { return ident }

// DialectFromDriver maps a database/sql driver name to its goquent dialect.
func DialectFromDriver(driver string) ormdriver.Dialect {
	switch driver {
	case "mysql":
		return ormdriver.MySQLDialect{}
	case "postgres":
		return ormdriver.PostgresDialect{}
	}
	return fallbackDialect{}
}
