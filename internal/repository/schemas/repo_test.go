package schemasrepo

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	ormdriver "github.com/faciam-dev/goquent/orm/driver"

	"github.com/faciam-dev/gforms/pkg/formschema"
)

func newRepo(t *testing.T) (*Repo, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	r := &Repo{DB: db, Dialect: ormdriver.PostgresDialect{}, TablePrefix: "gform_"}
	return r, mock, func() { db.Close() }
}

func repoRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "tenant_id", "name", "description", "table_name", "definition", "created_by", "created_at", "updated_at"})
}

func fixedTime() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func TestGetDecodesDefinition(t *testing.T) {
	r, mock, done := newRepo(t)
	defer done()

	def := `{"formatVersion":"1.0.0","fields":[{"name":"qty","type":"number"}]}`
	mock.ExpectQuery(`SELECT .* FROM "gform_form_schemas"`).
		WithArgs("default", "s1").
		WillReturnRows(repoRows().AddRow("s1", "default", "orders", "purchase orders", "orders", []byte(def), "alice", fixedTime(), fixedTime()))

	s, err := r.Get(context.Background(), "default", "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if s.Name != "orders" || s.Description != "purchase orders" || s.CreatedBy != "alice" {
		t.Fatalf("schema=%+v", s)
	}
	if len(s.Definition.Fields) != 1 || s.Definition.Fields[0].Name != "qty" {
		t.Fatalf("definition=%+v", s.Definition)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetNotFound(t *testing.T) {
	r, mock, done := newRepo(t)
	defer done()

	mock.ExpectQuery(`SELECT .* FROM "gform_form_schemas"`).
		WillReturnError(sql.ErrNoRows)

	if _, err := r.Get(context.Background(), "default", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err=%v", err)
	}
}

func TestUpdateMissingRowIsNotFound(t *testing.T) {
	r, mock, done := newRepo(t)
	defer done()

	mock.ExpectExec(`UPDATE "gform_form_schemas"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	sc := formschema.Schema{ID: "missing", TenantID: "default", Name: "orders", TableName: "orders"}
	if err := r.Update(context.Background(), &sc); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err=%v", err)
	}
}

func TestDeleteMissingRowIsNotFound(t *testing.T) {
	r, mock, done := newRepo(t)
	defer done()

	mock.ExpectExec(`DELETE FROM "gform_form_schemas"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := r.Delete(context.Background(), "default", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err=%v", err)
	}
}
