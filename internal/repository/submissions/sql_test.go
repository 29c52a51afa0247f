package submissionsrepo

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	ormdriver "github.com/faciam-dev/goquent/orm/driver"
)

func newStore(t *testing.T) (*SQLStore, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	s := NewSQLStore(db, "postgres", ormdriver.PostgresDialect{}, "gform_")
	return s, mock, func() { db.Close() }
}

func subRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "tenant_id", "form_schema_id", "data", "revision", "submitted_by", "created_at", "updated_at"})
}

func fixedTime() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func TestGetDecodesPayload(t *testing.T) {
	s, mock, done := newStore(t)
	defer done()

	mock.ExpectQuery(`SELECT .* FROM "gform_form_submissions"`).
		WithArgs("default", "sub1").
		WillReturnRows(subRows().AddRow("sub1", "default", "s1", []byte(`{"qty":5}`), 2, nil, fixedTime(), fixedTime()))

	sub, err := s.Get(context.Background(), "default", "sub1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if sub.Revision != 2 {
		t.Fatalf("revision=%d", sub.Revision)
	}
	if v, ok := sub.Data["qty"].(float64); !ok || v != 5 {
		t.Fatalf("data=%#v", sub.Data)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetNotFound(t *testing.T) {
	s, mock, done := newStore(t)
	defer done()

	mock.ExpectQuery(`SELECT .* FROM "gform_form_submissions"`).
		WillReturnError(sql.ErrNoRows)

	if _, err := s.Get(context.Background(), "default", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err=%v", err)
	}
}

func TestUpdateBumpsRevision(t *testing.T) {
	s, mock, done := newStore(t)
	defer done()

	mock.ExpectExec(`UPDATE "gform_form_submissions"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT .* FROM "gform_form_submissions"`).
		WillReturnRows(subRows().AddRow("sub1", "default", "s1", []byte(`{"qty":6}`), 3, nil, fixedTime(), fixedTime()))

	sub, err := s.Update(context.Background(), "default", "sub1", map[string]any{"qty": 6}, 2)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if sub.Revision != 3 {
		t.Fatalf("revision=%d", sub.Revision)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpdateStaleRevisionIsConflict(t *testing.T) {
	s, mock, done := newStore(t)
	defer done()

	mock.ExpectExec(`UPDATE "gform_form_submissions"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	// The row exists at a different revision, so the failure is a conflict.
	mock.ExpectQuery(`SELECT .* FROM "gform_form_submissions"`).
		WillReturnRows(subRows().AddRow("sub1", "default", "s1", []byte(`{"qty":5}`), 4, nil, fixedTime(), fixedTime()))

	if _, err := s.Update(context.Background(), "default", "sub1", map[string]any{"qty": 6}, 2); !errors.Is(err, ErrConflict) {
		t.Fatalf("err=%v", err)
	}
}

func TestUpdateMissingRowIsNotFound(t *testing.T) {
	s, mock, done := newStore(t)
	defer done()

	mock.ExpectExec(`UPDATE "gform_form_submissions"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT .* FROM "gform_form_submissions"`).
		WillReturnError(sql.ErrNoRows)

	if _, err := s.Update(context.Background(), "default", "gone", map[string]any{"qty": 6}, 2); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err=%v", err)
	}
}

func TestDeleteMissingSubmissionIsNotFound(t *testing.T) {
	s, mock, done := newStore(t)
	defer done()

	mock.ExpectExec(`DELETE FROM "gform_form_submissions"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.Delete(context.Background(), "default", "gone"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err=%v", err)
	}
}

func TestDeleteBySchemaReportsCount(t *testing.T) {
	s, mock, done := newStore(t)
	defer done()

	mock.ExpectExec(`DELETE FROM "gform_form_submissions"`).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := s.DeleteBySchema(context.Background(), "default", "s1")
	if err != nil {
		t.Fatalf("delete by schema: %v", err)
	}
	if n != 4 {
		t.Fatalf("n=%d", n)
	}
}

func TestCountOrphans(t *testing.T) {
	s, mock, done := newStore(t)
	defer done()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM gform_form_submissions sub LEFT JOIN gform_form_schemas sch`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	n, err := s.CountOrphans(context.Background())
	if err != nil {
		t.Fatalf("count orphans: %v", err)
	}
	if n != 7 {
		t.Fatalf("n=%d", n)
	}
}
