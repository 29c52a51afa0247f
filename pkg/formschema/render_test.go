package formschema

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func testDef() Definition {
	return Definition{Fields: []FieldSpec{
		{Name: "name", Type: TypeText, Label: "Name", Required: true},
		{Name: "qty", Type: TypeNumber, Label: "Quantity", Validation: &Constraints{Min: fptr(0), Max: fptr(10)}},
		{Name: "color", Type: TypeSelect, Label: "Color", Options: []Option{{Value: "r", Label: "Red"}, {Value: "b", Label: "Blue"}}},
		{Name: "active", Type: TypeCheckbox, Label: "Active"},
	}}
}

func TestRenderOrderAndKeys(t *testing.T) {
	plan := Render(testDef(), nil, nil, DefaultFormat(), nil)
	var keys []string
	for _, c := range plan.Controls {
		keys = append(keys, c.Key)
	}
	if diff := cmp.Diff([]string{"name", "qty", "color", "active"}, keys); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderWidgetsAndOptions(t *testing.T) {
	plan := Render(testDef(), nil, nil, DefaultFormat(), nil)
	if plan.Controls[1].Widget != "core://number-input" {
		t.Fatalf("number widget: %s", plan.Controls[1].Widget)
	}
	sel := plan.Controls[2]
	if sel.Widget != "core://select" {
		t.Fatalf("select widget: %s", sel.Widget)
	}
	want := []Option{{Value: "r", Label: "Red"}, {Value: "b", Label: "Blue"}}
	if diff := cmp.Diff(want, sel.Options); diff != "" {
		t.Fatalf("options must come verbatim from the spec (-want +got):\n%s", diff)
	}
	if sel.Value != nil {
		t.Fatalf("select must have no default selection, got %v", sel.Value)
	}
}

func TestRenderPrefillCoercion(t *testing.T) {
	plan := Render(testDef(), map[string]any{"qty": "7", "active": true, "name": "x"}, nil, DefaultFormat(), nil)
	if got, ok := plan.Controls[1].Value.(float64); !ok || got != 7 {
		t.Fatalf("number prefill must be numeric, got %T %v", plan.Controls[1].Value, plan.Controls[1].Value)
	}
	if plan.Controls[3].Value != true {
		t.Fatalf("checkbox prefill: %v", plan.Controls[3].Value)
	}
}

func TestRenderAttachesErrors(t *testing.T) {
	errs := FieldErrors{"qty": {"Quantity must be at most 10"}}
	plan := Render(testDef(), nil, errs, DefaultFormat(), nil)
	if len(plan.Controls[1].Errors) != 1 {
		t.Fatalf("error not attached: %+v", plan.Controls[1])
	}
	if plan.Controls[0].Errors != nil {
		t.Fatalf("errors leaked onto other controls: %+v", plan.Controls[0])
	}
}

func TestRenderResolverOverride(t *testing.T) {
	resolve := func(spec FieldSpec) (string, map[string]any) {
		if spec.Type == TypeNumber {
			return "plugin://slider", map[string]any{"orientation": "horizontal"}
		}
		return "", nil
	}
	plan := Render(testDef(), nil, nil, DefaultFormat(), resolve)
	if plan.Controls[1].Widget != "plugin://slider" {
		t.Fatalf("resolver override lost: %s", plan.Controls[1].Widget)
	}
	if plan.Controls[1].Config["orientation"] != "horizontal" {
		t.Fatalf("resolver config lost: %v", plan.Controls[1].Config)
	}
	if plan.Controls[0].Widget != "core://text-input" {
		t.Fatalf("unclaimed field must keep default: %s", plan.Controls[0].Widget)
	}
}

func TestRenderConstraintConfig(t *testing.T) {
	plan := Render(testDef(), nil, nil, DefaultFormat(), nil)
	cfg := plan.Controls[1].Config
	if cfg["min"] != float64(0) || cfg["max"] != float64(10) {
		t.Fatalf("constraints not propagated: %v", cfg)
	}
}
