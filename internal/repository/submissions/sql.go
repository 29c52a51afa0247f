package submissionsrepo

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

// SQLStore implements Store on top of PostgreSQL or MySQL.
type SQLStore struct {
	DB          *sql.DB
	Driver      string
	Dialect     ormdriver.Dialect
	TablePrefix string
}

// NewSQLStore creates a SQLStore.
func NewSQLStore(db *sql.DB, driver string, dialect ormdriver.Dialect, prefix string) *SQLStore {
	return &SQLStore{DB: db, Driver: driver, Dialect: dialect, TablePrefix: prefix}
}

func (s *SQLStore) table() string { return s.TablePrefix + "form_submissions" }

type row struct {
	ID          string         `db:"id"`
	TenantID    string         `db:"tenant_id"`
	SchemaID    string         `db:"form_schema_id"`
	Data        []byte         `db:"data"`
	Revision    int64          `db:"revision"`
	SubmittedBy sql.NullString `db:"submitted_by"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

var columns = []string{"id", "tenant_id", "form_schema_id", "data", "revision", "submitted_by", "created_at", "updated_at"}

func (r row) toSubmission() (formschema.Submission, error) {
	sub := formschema.Submission{
		ID:        r.ID,
		TenantID:  r.TenantID,
		SchemaID:  r.SchemaID,
		Revision:  r.Revision,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.SubmittedBy.Valid {
		sub.SubmittedBy = r.SubmittedBy.String
	}
	if err := json.Unmarshal(r.Data, &sub.Data); err != nil {
		return sub, fmt.Errorf("decode data: %w", err)
	}
	return sub, nil
}

func (s *SQLStore) Insert(ctx context.Context, sub *formschema.Submission) error {
	if s == nil || s.DB == nil {
		return fmt.Errorf("store not initialized")
	}
	payload, err := json.Marshal(sub.Data)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	sub.CreatedAt, sub.UpdatedAt = now, now
	sub.Revision = 1
	data := map[string]any{
		"id":             sub.ID,
		"tenant_id":      sub.TenantID,
		"form_schema_id": sub.SchemaID,
		"data":           payload,
		"revision":       sub.Revision,
		"submitted_by":   sub.SubmittedBy,
		"created_at":     sub.CreatedAt,
		"updated_at":     sub.UpdatedAt,
	}
	_, err = query.New(s.DB, s.table(), s.Dialect).WithContext(ctx).InsertGetId(data)
	return err
}

func (s *SQLStore) Get(ctx context.Context, tenant, id string) (formschema.Submission, error) {
	if s == nil || s.DB == nil {
		return formschema.Submission{}, fmt.Errorf("store not initialized")
	}
	var rw row
	q := query.New(s.DB, s.table(), s.Dialect).
		Select(columns...).
		Where("tenant_id", tenant).
		Where("id", id).
		WithContext(ctx)
	if err := q.First(&rw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return formschema.Submission{}, ErrNotFound
		}
		return formschema.Submission{}, err
	}
	return rw.toSubmission()
}

func (s *SQLStore) ListBySchema(ctx context.Context, tenant, schemaID string) ([]formschema.Submission, error) {
	if s == nil || s.DB == nil {
		return nil, fmt.Errorf("store not initialized")
	}
	var rows []row
	q := query.New(s.DB, s.table(), s.Dialect).
		Select(columns...).
		Where("tenant_id", tenant).
		Where("form_schema_id", schemaID).
		OrderBy("created_at", "asc").
		WithContext(ctx)
	if err := q.Get(&rows); err != nil {
		return nil, err
	}
	out := make([]formschema.Submission, 0, len(rows))
	for _, rw := range rows {
		sub, err := rw.toSubmission()
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, nil
}

func (s *SQLStore) Update(ctx context.Context, tenant, id string, data map[string]any, expectedRev int64) (formschema.Submission, error) {
	if s == nil || s.DB == nil {
		return formschema.Submission{}, fmt.Errorf("store not initialized")
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return formschema.Submission{}, err
	}
	now := time.Now().UTC()
	q := query.New(s.DB, s.table(), s.Dialect).
		Where("tenant_id", tenant).
		Where("id", id).
		Where("revision", expectedRev).
		WithContext(ctx)
	res, err := q.Update(map[string]any{
		"data":       payload,
		"revision":   expectedRev + 1,
		"updated_at": now,
	})
	if err != nil {
		return formschema.Submission{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return formschema.Submission{}, err
	}
	if affected == 0 {
		// Distinguish a missing row from a stale revision.
		if _, err := s.Get(ctx, tenant, id); errors.Is(err, ErrNotFound) {
			return formschema.Submission{}, ErrNotFound
		}
		return formschema.Submission{}, ErrConflict
	}
	return s.Get(ctx, tenant, id)
}

func (s *SQLStore) Delete(ctx context.Context, tenant, id string) error {
	if s == nil || s.DB == nil {
		return fmt.Errorf("store not initialized")
	}
	q := query.New(s.DB, s.table(), s.Dialect).
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

func (s *SQLStore) DeleteBySchema(ctx context.Context, tenant, schemaID string) (int64, error) {
	if s == nil || s.DB == nil {
		return 0, fmt.Errorf("store not initialized")
	}
	q := query.New(s.DB, s.table(), s.Dialect).
		Where("tenant_id", tenant).
		Where("form_schema_id", schemaID).
		WithContext(ctx)
	res, err := q.Delete()
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *SQLStore) CountBySchema(ctx context.Context, tenant, schemaID string) (int64, error) {
	if s == nil || s.DB == nil {
		return 0, fmt.Errorf("store not initialized")
	}
	q := query.New(s.DB, s.table(), s.Dialect).
		Where("tenant_id", tenant).
		Where("form_schema_id", schemaID).
		WithContext(ctx)
	return q.Count("*")
}

// CountOrphans returns the number of submissions whose owning schema no
// longer exists, across all tenants. Used by the nightly sweep.
func (s *SQLStore) CountOrphans(ctx context.Context) (int64, error) {
	if s == nil || s.DB == nil {
		return 0, fmt.Errorf("store not initialized")
	}
	sub := s.table()
	sch := s.TablePrefix + "form_schemas"
	stmt := fmt.Sprintf(
		"SELECT COUNT(*) FROM %s sub LEFT JOIN %s sch ON sub.form_schema_id = sch.id WHERE sch.id IS NULL",
		sub, sch,
	)
	var n int64
	if err := s.DB.QueryRowContext(ctx, stmt).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// CountSubmissionsBySchema returns submission counts keyed by schema id,
// across all tenants. Used by the engine gauges.
func (s *SQLStore) CountSubmissionsBySchema(ctx context.Context) (map[string]int64, error) {
	if s == nil || s.DB == nil {
		return nil, fmt.Errorf("store not initialized")
	}
	stmt := fmt.Sprintf("SELECT form_schema_id, COUNT(*) FROM %s GROUP BY form_schema_id", s.table())
	rows, err := s.DB.QueryContext(ctx, stmt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]int64{}
	for rows.Next() {
		var id string
		var n int64
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		out[id] = n
	}
	return out, rows.Err()
}
