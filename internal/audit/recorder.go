package audit

import (
	"context"
	"database/sql"
	"encoding/json"

	ormdriver "github.com/faciam-dev/goquent/orm/driver"
	"github.com/faciam-dev/goquent/orm/query"

	pkgaudit "github.com/faciam-dev/gforms/pkg/audit"
	"github.com/faciam-dev/gforms/pkg/formschema"
)

// Recorder writes schema change audit logs to the database.
type Recorder struct {
	DB          *sql.DB
	Dialect     ormdriver.Dialect
	TablePrefix string
}

func (r *Recorder) table() string { return r.TablePrefix + "audit_logs" }

// Write records a single schema change. Either old or new may be nil for
// create and delete respectively.
func (r *Recorder) Write(ctx context.Context, actor, tenant string, old, new *formschema.Schema) error {
	if r == nil || r.DB == nil {
		return nil
	}
	var action string
	switch {
	case old == nil && new != nil:
		action = "add"
	case old != nil && new == nil:
		action = "delete"
	default:
		action = "update"
	}
	var before, after []byte
	var err error
	if old != nil {
		if before, err = json.Marshal(old.Definition); err != nil {
			return err
		}
	}
	if new != nil {
		if after, err = json.Marshal(new.Definition); err != nil {
			return err
		}
	}
	diff, added, removed := pkgaudit.UnifiedDiff(before, after)
	id := ""
	if new != nil {
		id = new.ID
	} else if old != nil {
		id = old.ID
	}
	data := map[string]any{
		"tenant_id":      tenant,
		"actor":          actor,
		"action":         action,
		"form_schema_id": id,
		"diff":           diff,
		"added_count":    added,
		"removed_count":  removed,
	}
	_, err = query.New(r.DB, r.table(), r.Dialect).WithContext(ctx).InsertGetId(data)
	return err
}
