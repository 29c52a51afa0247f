package formschema

import (
	"errors"
	"testing"
)

func TestParseDefinitionInvalidJSON(t *testing.T) {
	_, err := ParseDefinition([]byte("{invalid json"))
	if !errors.Is(err, ErrInvalidJSON) {
		t.Fatalf("expected ErrInvalidJSON, got %v", err)
	}
	if err.Error() != "Invalid JSON schema" {
		t.Fatalf("message: %q", err.Error())
	}
}

func TestParseDefinitionRoundTrip(t *testing.T) {
	raw := []byte(`{"fields":[{"name":"qty","type":"number","label":"Quantity","required":true,"validation":{"min":0,"max":10}}]}`)
	def, err := ParseDefinition(raw)
	if err != nil {
		t.Fatalf("ParseDefinition: %v", err)
	}
	f, ok := def.Field("qty")
	if !ok || f.Type != TypeNumber || !f.Required {
		t.Fatalf("field: %+v", f)
	}
	if f.Validation == nil || *f.Validation.Min != 0 || *f.Validation.Max != 10 {
		t.Fatalf("constraints: %+v", f.Validation)
	}
}

func TestParseDefinitionFormatVersion(t *testing.T) {
	if _, err := ParseDefinition([]byte(`{"formatVersion":"1.0.0","fields":[]}`)); err != nil {
		t.Fatalf("current version must be accepted: %v", err)
	}
	if _, err := ParseDefinition([]byte(`{"formatVersion":"2.0.0","fields":[]}`)); err == nil {
		t.Fatal("future major version must be rejected")
	}
	if _, err := ParseDefinition([]byte(`{"formatVersion":"banana","fields":[]}`)); err == nil {
		t.Fatal("non-semver version must be rejected")
	}
}

func TestDefaultTableName(t *testing.T) {
	cases := map[string]string{
		"Purchase Order": "purchase_orders",
		"supplier":       "suppliers",
		"Warehouse Box":  "warehouse_boxes",
	}
	for in, want := range cases {
		if got := DefaultTableName(in); got != want {
			t.Errorf("DefaultTableName(%q) = %q, want %q", in, got, want)
		}
	}
}
