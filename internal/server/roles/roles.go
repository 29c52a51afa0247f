package roles

import (
	"context"
	"database/sql"
	"fmt"
)

// OfUser returns role names for the given user within a tenant. The user
// parameter may be either a numeric ID or a username; the role join is
// hand-written because it spans three tables.
func OfUser(ctx context.Context, db *sql.DB, driver, prefix, user, tenantID string) ([]string, error) {
	if db == nil {
		return nil, nil
	}
	isID := true
	for _, c := range user {
		if c < '0' || c > '9' {
			isID = false
			break
		}
	}
	ur := prefix + "user_roles"
	users := prefix + "users"
	rolesTbl := prefix + "roles"
	userCol := "u.username"
	if isID {
		userCol = "ur.user_id"
	}
	var q string
	if driver == "mysql" {
		q = fmt.Sprintf("SELECT r.name FROM %s ur JOIN %s u ON u.id = ur.user_id JOIN %s r ON r.id = ur.role_id WHERE %s = ? AND u.tenant_id = ? ORDER BY r.name", ur, users, rolesTbl, userCol)
	} else {
		q = fmt.Sprintf("SELECT r.name FROM %s ur JOIN %s u ON u.id = ur.user_id JOIN %s r ON r.id = ur.role_id WHERE %s = $1 AND u.tenant_id = $2 ORDER BY r.name", ur, users, rolesTbl, userCol)
	}
	rows, err := db.QueryContext(ctx, q, user, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
