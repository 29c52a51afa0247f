package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	ormdriver "github.com/faciam-dev/goquent/orm/driver"
	"github.com/faciam-dev/goquent/orm/query"
)

// User is one row of the users table. Usernames are unique per tenant, not
// globally.
type User struct {
	ID           uint64 `db:"id"`
	TenantID     string `db:"tenant_id"`
	Username     string `db:"username"`
	PasswordHash string `db:"password_hash"`
	Role         string `db:"role"`
}

// UserRepo reads users for credential checks.
type UserRepo struct {
	DB          *sql.DB
	Dialect     ormdriver.Dialect
	TablePrefix string
}

// GetByUsername returns the named user within a tenant, or nil when absent.
func (r *UserRepo) GetByUsername(ctx context.Context, tenantID, name string) (*User, error) {
	if r == nil || r.DB == nil {
		return nil, fmt.Errorf("repo not initialized")
	}
	var u User
	q := query.New(r.DB, r.TablePrefix+"users", r.Dialect).
		Select("id", "tenant_id", "username", "password_hash", "role").
		Where("tenant_id", tenantID).
		Where("username", name).
		WithContext(ctx)
	if err := q.First(&u); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}
