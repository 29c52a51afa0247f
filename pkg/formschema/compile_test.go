package formschema

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func fptr(f float64) *float64 { return &f }
func iptr(i int) *int         { return &i }

func mustCompile(t *testing.T, def Definition) *Validator {
	t.Helper()
	v, err := Compile(def)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return v
}

func TestRequiredField(t *testing.T) {
	v := mustCompile(t, Definition{Fields: []FieldSpec{
		{Name: "title", Type: TypeText, Label: "Title", Required: true},
	}})

	if _, errs := v.Validate(map[string]any{}); errs["title"] == nil {
		t.Fatalf("expected error for absent required field, got %v", errs)
	}
	if _, errs := v.Validate(map[string]any{"title": ""}); errs["title"] == nil {
		t.Fatalf("expected error for empty required field, got %v", errs)
	}
	out, errs := v.Validate(map[string]any{"title": "hello"})
	if errs != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if out["title"] != "hello" {
		t.Fatalf("normalized record: %v", out)
	}
}

func TestOptionalFieldPassThrough(t *testing.T) {
	v := mustCompile(t, Definition{Fields: []FieldSpec{
		{Name: "note", Type: TypeText, Label: "Note", Validation: &Constraints{MinLength: iptr(5)}},
	}})
	out, errs := v.Validate(map[string]any{})
	if errs != nil {
		t.Fatalf("optional absent field must not error: %v", errs)
	}
	if _, ok := out["note"]; ok {
		t.Fatalf("absent optional field must not appear in record: %v", out)
	}
	// Once a value is entered, constraints apply.
	if _, errs := v.Validate(map[string]any{"note": "hi"}); errs["note"] == nil {
		t.Fatalf("expected minLength violation, got %v", errs)
	}
}

func TestNumberRangeInclusive(t *testing.T) {
	v := mustCompile(t, Definition{Fields: []FieldSpec{
		{Name: "score", Type: TypeNumber, Label: "Score", Required: true, Validation: &Constraints{Min: fptr(0), Max: fptr(100)}},
	}})
	for _, bad := range []float64{-1, 101} {
		if _, errs := v.Validate(map[string]any{"score": bad}); errs["score"] == nil {
			t.Fatalf("value %v must be rejected", bad)
		}
	}
	for _, ok := range []float64{0, 100} {
		if _, errs := v.Validate(map[string]any{"score": ok}); errs != nil {
			t.Fatalf("boundary value %v must be accepted: %v", ok, errs)
		}
	}
}

func TestNumberCoercion(t *testing.T) {
	v := mustCompile(t, Definition{Fields: []FieldSpec{
		{Name: "qty", Type: TypeNumber, Label: "Quantity", Required: true, Validation: &Constraints{Min: fptr(0), Max: fptr(10)}},
	}})
	if _, errs := v.Validate(map[string]any{"qty": 15}); errs["qty"] == nil {
		t.Fatalf("out-of-range value must be rejected")
	}
	out, errs := v.Validate(map[string]any{"qty": "5"})
	if errs != nil {
		t.Fatalf("numeric string must coerce: %v", errs)
	}
	if got, ok := out["qty"].(float64); !ok || got != 5 {
		t.Fatalf("qty must be stored as a number, got %T %v", out["qty"], out["qty"])
	}
	if _, errs := v.Validate(map[string]any{"qty": "abc"}); errs["qty"] == nil {
		t.Fatalf("non-numeric value must be rejected")
	}
}

func TestCheckboxDefaultsFalse(t *testing.T) {
	v := mustCompile(t, Definition{Fields: []FieldSpec{
		{Name: "done", Type: TypeCheckbox, Label: "Done", Required: true},
	}})
	out, errs := v.Validate(map[string]any{})
	if errs != nil {
		t.Fatalf("absent checkbox is never an error: %v", errs)
	}
	if got, ok := out["done"].(bool); !ok || got {
		t.Fatalf("absent checkbox must normalize to false, got %v", out["done"])
	}
	out, _ = v.Validate(map[string]any{"done": "on"})
	if out["done"] != true {
		t.Fatalf("checkbox coercion: %v", out["done"])
	}
}

func TestDateRequiresNonEmptyStringOnly(t *testing.T) {
	v := mustCompile(t, Definition{Fields: []FieldSpec{
		{Name: "due", Type: TypeDate, Label: "Due", Required: true},
	}})
	if _, errs := v.Validate(map[string]any{"due": ""}); errs["due"] == nil {
		t.Fatalf("empty required date must be rejected")
	}
	// No calendar validation beyond non-emptiness.
	if _, errs := v.Validate(map[string]any{"due": "not-a-date"}); errs != nil {
		t.Fatalf("date format is not validated: %v", errs)
	}
}

func TestAllFieldsEvaluated(t *testing.T) {
	v := mustCompile(t, Definition{Fields: []FieldSpec{
		{Name: "a", Type: TypeText, Label: "A", Required: true},
		{Name: "b", Type: TypeNumber, Label: "B", Required: true},
		{Name: "c", Type: TypeText, Label: "C"},
	}})
	_, errs := v.Validate(map[string]any{"c": "fine"})
	if len(errs) != 2 || errs["a"] == nil || errs["b"] == nil {
		t.Fatalf("expected both a and b to report, got %v", errs)
	}
}

func TestMultipleRulesDistinctMessages(t *testing.T) {
	v := mustCompile(t, Definition{Fields: []FieldSpec{
		{Name: "code", Type: TypeText, Label: "Code", Required: true,
			Validation: &Constraints{MinLength: iptr(5), Pattern: "^[0-9]+$"}},
	}})
	_, errs := v.Validate(map[string]any{"code": "ab"})
	want := []string{"Code must be at least 5 characters", "Code has an invalid format"}
	if diff := cmp.Diff(want, errs["code"]); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestInvalidPatternFailsAtCompile(t *testing.T) {
	_, err := Compile(Definition{Fields: []FieldSpec{
		{Name: "x", Type: TypeText, Label: "X", Validation: &Constraints{Pattern: "("}},
	}})
	var ce *CompileError
	if !errors.As(err, &ce) {
		t.Fatalf("expected CompileError, got %v", err)
	}
	if ce.Field != "x" {
		t.Fatalf("compile error must name the field: %v", ce)
	}
}

func TestCompileRejectsStructuralErrors(t *testing.T) {
	cases := map[string]Definition{
		"duplicate name": {Fields: []FieldSpec{
			{Name: "a", Type: TypeText, Label: "A"},
			{Name: "a", Type: TypeNumber, Label: "A2"},
		}},
		"unknown type": {Fields: []FieldSpec{{Name: "a", Type: "color", Label: "A"}}},
		"select without options": {Fields: []FieldSpec{
			{Name: "a", Type: TypeSelect, Label: "A"},
		}},
		"options on non-select": {Fields: []FieldSpec{
			{Name: "a", Type: TypeText, Label: "A", Options: []Option{{Value: "1", Label: "One"}}},
		}},
	}
	for name, def := range cases {
		if _, err := Compile(def); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
