package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/danielgtaylor/huma/v2"
	ormdriver "github.com/faciam-dev/goquent/orm/driver"

	"github.com/faciam-dev/gforms/internal/api/schema"
	schemasrepo "github.com/faciam-dev/gforms/internal/repository/schemas"
	submissionsrepo "github.com/faciam-dev/gforms/internal/repository/submissions"
	"github.com/faciam-dev/gforms/internal/tenant"
	"github.com/faciam-dev/gforms/pkg/formschema"
)

// stubStore is an in-memory submission store for handler tests.
type stubStore struct {
	subs     map[string]formschema.Submission
	count    int64
	deleted  int64
	updErr   error
	inserted []formschema.Submission
}

func (s *stubStore) Insert(_ context.Context, sub *formschema.Submission) error {
	sub.Revision = 1
	s.inserted = append(s.inserted, *sub)
	return nil
}

func (s *stubStore) Get(_ context.Context, _, id string) (formschema.Submission, error) {
	sub, ok := s.subs[id]
	if !ok {
		return formschema.Submission{}, submissionsrepo.ErrNotFound
	}
	return sub, nil
}

func (s *stubStore) ListBySchema(_ context.Context, _, schemaID string) ([]formschema.Submission, error) {
	var out []formschema.Submission
	for _, sub := range s.subs {
		if sub.SchemaID == schemaID {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (s *stubStore) Update(_ context.Context, _, id string, data map[string]any, expectedRev int64) (formschema.Submission, error) {
	if s.updErr != nil {
		return formschema.Submission{}, s.updErr
	}
	sub, ok := s.subs[id]
	if !ok {
		return formschema.Submission{}, submissionsrepo.ErrNotFound
	}
	if sub.Revision != expectedRev {
		return formschema.Submission{}, submissionsrepo.ErrConflict
	}
	sub.Data = data
	sub.Revision++
	s.subs[id] = sub
	return sub, nil
}

func (s *stubStore) Delete(_ context.Context, _, id string) error {
	if _, ok := s.subs[id]; !ok {
		return submissionsrepo.ErrNotFound
	}
	delete(s.subs, id)
	return nil
}

func (s *stubStore) DeleteBySchema(_ context.Context, _, _ string) (int64, error) {
	s.deleted++
	return s.deleted, nil
}

func (s *stubStore) CountBySchema(_ context.Context, _, _ string) (int64, error) {
	return s.count, nil
}

func newSchemaRepo(t *testing.T) (*schemasrepo.Repo, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	repo := &schemasrepo.Repo{DB: db, Dialect: ormdriver.PostgresDialect{}, TablePrefix: "gform_"}
	return repo, mock, func() { db.Close() }
}

func schemaRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "tenant_id", "name", "description", "table_name", "definition", "created_by", "created_at", "updated_at"})
}

const qtyDefinition = `{"formatVersion":"1.0.0","fields":[{"name":"qty","type":"number","required":true,"validation":{"min":0,"max":100}}]}`

func testTime() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var se huma.StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected status error, got %v", err)
	}
	return se.GetStatus()
}

func TestCreateSchemaRejectsInvalidJSON(t *testing.T) {
	repo, mock, done := newSchemaRepo(t)
	defer done()

	h := &FormSchemaHandler{Repo: repo, Subs: &stubStore{}}
	ctx := tenant.WithTenant(context.Background(), "default")
	_, err := h.create(ctx, &schemaCreateInput{Body: schema.FormSchemaInput{Name: "orders", Schema: `{"fields": [`}})
	if got := statusOf(t, err); got != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d", got)
	}
	if !strings.Contains(err.Error(), "Invalid JSON schema") {
		t.Fatalf("unexpected message: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no write should have happened: %v", err)
	}
}

func TestCreateSchemaRejectsBadPattern(t *testing.T) {
	repo, _, done := newSchemaRepo(t)
	defer done()

	h := &FormSchemaHandler{Repo: repo, Subs: &stubStore{}}
	ctx := tenant.WithTenant(context.Background(), "default")
	raw := `{"fields":[{"name":"code","type":"text","validation":{"pattern":"(unclosed"}}]}`
	_, err := h.create(ctx, &schemaCreateInput{Body: schema.FormSchemaInput{Name: "orders", Schema: raw}})
	if got := statusOf(t, err); got != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d", got)
	}
	if !strings.Contains(err.Error(), "code") {
		t.Fatalf("error should name the field: %v", err)
	}
}

func TestUpdateSchemaNotFound(t *testing.T) {
	repo, mock, done := newSchemaRepo(t)
	defer done()

	mock.ExpectQuery(`SELECT .* FROM "gform_form_schemas"`).
		WillReturnError(sql.ErrNoRows)

	h := &FormSchemaHandler{Repo: repo, Subs: &stubStore{}}
	ctx := tenant.WithTenant(context.Background(), "default")
	_, err := h.update(ctx, &schemaUpdateInput{ID: "missing", Body: schema.FormSchemaInput{Name: "orders", Schema: qtyDefinition}})
	if got := statusOf(t, err); got != http.StatusNotFound {
		t.Fatalf("status=%d", got)
	}
}

func TestGetSchemaNotFound(t *testing.T) {
	repo, mock, done := newSchemaRepo(t)
	defer done()

	mock.ExpectQuery(`SELECT .* FROM "gform_form_schemas"`).
		WillReturnError(sql.ErrNoRows)

	h := &FormSchemaHandler{Repo: repo, Subs: &stubStore{}}
	ctx := tenant.WithTenant(context.Background(), "default")
	_, err := h.get(ctx, &schemaGetInput{ID: "missing"})
	if got := statusOf(t, err); got != http.StatusNotFound {
		t.Fatalf("status=%d", got)
	}
}

func TestDeleteSchemaBlockedBySubmissions(t *testing.T) {
	repo, mock, done := newSchemaRepo(t)
	defer done()

	mock.ExpectQuery(`SELECT .* FROM "gform_form_schemas"`).
		WillReturnRows(schemaRows().AddRow("s1", "default", "orders", nil, "orders", []byte(qtyDefinition), nil, testTime(), testTime()))

	h := &FormSchemaHandler{Repo: repo, Subs: &stubStore{count: 3}, OnSchemaDelete: DeleteBlock}
	ctx := tenant.WithTenant(context.Background(), "default")
	_, err := h.delete(ctx, &schemaDeleteInput{ID: "s1"})
	if got := statusOf(t, err); got != http.StatusConflict {
		t.Fatalf("status=%d", got)
	}
}

func TestDeleteSchemaCascades(t *testing.T) {
	repo, mock, done := newSchemaRepo(t)
	defer done()

	mock.ExpectQuery(`SELECT .* FROM "gform_form_schemas"`).
		WillReturnRows(schemaRows().AddRow("s1", "default", "orders", nil, "orders", []byte(qtyDefinition), nil, testTime(), testTime()))
	mock.ExpectExec(`DELETE FROM "gform_form_schemas"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	st := &stubStore{}
	h := &FormSchemaHandler{Repo: repo, Subs: st, OnSchemaDelete: DeleteCascade}
	ctx := tenant.WithTenant(context.Background(), "default")
	if _, err := h.delete(ctx, &schemaDeleteInput{ID: "s1"}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if st.deleted != 1 {
		t.Fatalf("cascade must delete submissions, calls=%d", st.deleted)
	}
}

func TestRenderPrefillsFromSubmission(t *testing.T) {
	repo, mock, done := newSchemaRepo(t)
	defer done()

	mock.ExpectQuery(`SELECT .* FROM "gform_form_schemas"`).
		WillReturnRows(schemaRows().AddRow("s1", "default", "orders", nil, "orders", []byte(qtyDefinition), nil, testTime(), testTime()))

	st := &stubStore{subs: map[string]formschema.Submission{
		"sub1": {ID: "sub1", SchemaID: "s1", Data: map[string]any{"qty": "7"}, Revision: 1},
	}}
	h := &FormSchemaHandler{Repo: repo, Subs: st, Format: formschema.DefaultFormat()}
	ctx := tenant.WithTenant(context.Background(), "default")
	out, err := h.render(ctx, &renderInput{ID: "s1", SubmissionID: "sub1"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(out.Body.Controls) != 1 {
		t.Fatalf("controls=%d", len(out.Body.Controls))
	}
	ctl := out.Body.Controls[0]
	if ctl.Widget != "core://number-input" {
		t.Fatalf("widget=%q", ctl.Widget)
	}
	if v, ok := ctl.Value.(float64); !ok || v != 7 {
		t.Fatalf("prefill value=%#v", ctl.Value)
	}
}
