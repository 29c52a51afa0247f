// Package schemasrepo persists form schema definitions.
package schemasrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	ormdriver "github.com/faciam-dev/goquent/orm/driver"
	"github.com/faciam-dev/goquent/orm/query"

	"github.com/faciam-dev/gforms/pkg/formschema"
)

// ErrNotFound is returned when no schema matches the requested id.
var ErrNotFound = errors.New("form schema not found")

// Repo provides access to the form schema table.
type Repo struct {
	DB          *sql.DB
	Dialect     ormdriver.Dialect
	TablePrefix string
}

func (r *Repo) table() string { return r.TablePrefix + "form_schemas" }

type row struct {
	ID          string         `db:"id"`
	TenantID    string         `db:"tenant_id"`
	Name        string         `db:"name"`
	Description sql.NullString `db:"description"`
	TableName   string         `db:"table_name"`
	Definition  []byte         `db:"definition"`
	CreatedBy   sql.NullString `db:"created_by"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

var columns = []string{"id", "tenant_id", "name", "description", "table_name", "definition", "created_by", "created_at", "updated_at"}

func (r row) toSchema() (formschema.Schema, error) {
	s := formschema.Schema{
		ID:        r.ID,
		TenantID:  r.TenantID,
		Name:      r.Name,
		TableName: r.TableName,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.Description.Valid {
		s.Description = r.Description.String
	}
	if r.CreatedBy.Valid {
		s.CreatedBy = r.CreatedBy.String
	}
	if err := json.Unmarshal(r.Definition, &s.Definition); err != nil {
		return s, fmt.Errorf("decode definition: %w", err)
	}
	return s, nil
}

// Create inserts a new schema. Timestamps are set here; the id must already
// be assigned by the caller.
func (r *Repo) Create(ctx context.Context, s *formschema.Schema) error {
	if r == nil || r.DB == nil {
		return fmt.Errorf("repo not initialized")
	}
	def, err := json.Marshal(s.Definition)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	s.CreatedAt, s.UpdatedAt = now, now
	data := map[string]any{
		"id":          s.ID,
		"tenant_id":   s.TenantID,
		"name":        s.Name,
		"description": s.Description,
		"table_name":  s.TableName,
		"definition":  def,
		"created_by":  s.CreatedBy,
		"created_at":  s.CreatedAt,
		"updated_at":  s.UpdatedAt,
	}
	_, err = query.New(r.DB, r.table(), r.Dialect).WithContext(ctx).InsertGetId(data)
	return err
}

// Get fetches a schema by tenant and id.
func (r *Repo) Get(ctx context.Context, tenant, id string) (formschema.Schema, error) {
	if r == nil || r.DB == nil {
		return formschema.Schema{}, fmt.Errorf("repo not initialized")
	}
	var rw row
	q := query.New(r.DB, r.table(), r.Dialect).
		Select(columns...).
		Where("tenant_id", tenant).
		Where("id", id).
		WithContext(ctx)
	if err := q.First(&rw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return formschema.Schema{}, ErrNotFound
		}
		return formschema.Schema{}, err
	}
	return rw.toSchema()
}

// List returns all schemas of a tenant, newest first.
func (r *Repo) List(ctx context.Context, tenant string) ([]formschema.Schema, error) {
	if r == nil || r.DB == nil {
		return nil, fmt.Errorf("repo not initialized")
	}
	var rows []row
	q := query.New(r.DB, r.table(), r.Dialect).
		Select(columns...).
		Where("tenant_id", tenant).
		OrderBy("created_at", "desc").
		WithContext(ctx)
	if err := q.Get(&rows); err != nil {
		return nil, err
	}
	out := make([]formschema.Schema, 0, len(rows))
	for _, rw := range rows {
		s, err := rw.toSchema()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Update replaces a schema's metadata and definition wholesale. The id and
// created_at are immutable.
func (r *Repo) Update(ctx context.Context, s *formschema.Schema) error {
	if r == nil || r.DB == nil {
		return fmt.Errorf("repo not initialized")
	}
	def, err := json.Marshal(s.Definition)
	if err != nil {
		return err
	}
	s.UpdatedAt = time.Now().UTC()
	data := map[string]any{
		"name":        s.Name,
		"description": s.Description,
		"table_name":  s.TableName,
		"definition":  def,
		"updated_at":  s.UpdatedAt,
	}
	q := query.New(r.DB, r.table(), r.Dialect).
		Where("tenant_id", s.TenantID).
		Where("id", s.ID).
		WithContext(ctx)
	res, err := q.Update(data)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a schema. Existing submissions are not touched here; the
// handler applies the configured on-delete policy.
func (r *Repo) Delete(ctx context.Context, tenant, id string) error {
	if r == nil || r.DB == nil {
		return fmt.Errorf("repo not initialized")
	}
	q := query.New(r.DB, r.table(), r.Dialect).
		Where("tenant_id", tenant).
		Where("id", id).
		WithContext(ctx)
	res, err := q.Delete()
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the total number of schemas across tenants.
func (r *Repo) Count(ctx context.Context) (int64, error) {
	if r == nil || r.DB == nil {
		return 0, fmt.Errorf("repo not initialized")
	}
	return query.New(r.DB, r.table(), r.Dialect).WithContext(ctx).Count("*")
}
