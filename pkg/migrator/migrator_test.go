package migrator

import (
	"strings"
	"testing"
)

func TestSplitSQL(t *testing.T) {
	src := `CREATE TABLE a (x TEXT DEFAULT 'semi;colon');
CREATE TABLE b (y INT);`
	got := splitSQL(src)
	if len(got) != 2 {
		t.Fatalf("statements=%d: %q", len(got), got)
	}
	if !strings.Contains(got[0], "semi;colon") {
		t.Fatalf("quoted semicolon was split: %q", got[0])
	}
}

func TestNewRewritesPrefix(t *testing.T) {
	m := New("postgres", "acme_")
	if len(m.migrations) != 1 {
		t.Fatalf("migrations=%d", len(m.migrations))
	}
	up := m.migrations[0].UpSQL
	if strings.Contains(up, "gform_") {
		t.Fatal("default prefix left in rewritten SQL")
	}
	if !strings.Contains(up, "acme_form_schemas") {
		t.Fatal("custom prefix missing")
	}
	if m.versionTable() != "acme_schema_version" {
		t.Fatalf("version table=%q", m.versionTable())
	}
}
