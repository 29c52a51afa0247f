package formschema

// Default widget per field type. A renderpolicy resolver may override the
// choice per field; anything it does not claim falls back to this table.
var defaultWidgets = map[string]string{
	TypeText:     "core://text-input",
	TypeNumber:   "core://number-input",
	TypeTextarea: "core://textarea",
	TypeSelect:   "core://select",
	TypeCheckbox: "core://checkbox",
	TypeDate:     "core://date-picker",
}

// DefaultWidget returns the built-in widget for a field type.
func DefaultWidget(typ string) string {
	if w, ok := defaultWidgets[typ]; ok {
		return w
	}
	return "core://text-input"
}

// WidgetResolver picks a widget and widget configuration for a field spec.
// Returning an empty id leaves the default in place.
type WidgetResolver func(spec FieldSpec) (widget string, config map[string]any)

// Control is one bound input control of a render plan.
type Control struct {
	Key      string         `json:"key"`
	Type     string         `json:"type"`
	Widget   string         `json:"widget"`
	Label    string         `json:"label"`
	Required bool           `json:"required"`
	Options  []Option       `json:"options,omitempty"`
	Value    any            `json:"value,omitempty"`
	Errors   []string       `json:"errors,omitempty"`
	Config   map[string]any `json:"config,omitempty"`
}

// RenderPlan is a fully resolved data-entry form: one control per field, in
// the definition's field order.
type RenderPlan struct {
	Controls []Control    `json:"controls"`
	Format   FormatConfig `json:"format"`
}

func constraintConfig(spec FieldSpec) map[string]any {
	c := spec.Validation
	if c == nil {
		return nil
	}
	cfg := map[string]any{}
	if c.MinLength != nil {
		cfg["minLength"] = *c.MinLength
	}
	if c.MaxLength != nil {
		cfg["maxLength"] = *c.MaxLength
	}
	if c.Pattern != "" {
		cfg["pattern"] = c.Pattern
	}
	if c.Min != nil {
		cfg["min"] = *c.Min
	}
	if c.Max != nil {
		cfg["max"] = *c.Max
	}
	if c.Step != nil {
		cfg["step"] = *c.Step
	}
	if len(cfg) == 0 {
		return nil
	}
	return cfg
}

// Render produces the plan for a definition. prefill carries an existing
// submission's data when editing; errs attaches validator output to the
// matching controls. Controls keep the definition's field order and are
// keyed by field name. Number prefills are coerced to numbers so edits
// round-trip without type drift; select controls carry their options
// verbatim and get no default selection.
func Render(def Definition, prefill map[string]any, errs FieldErrors, format FormatConfig, resolve WidgetResolver) RenderPlan {
	plan := RenderPlan{Controls: make([]Control, 0, len(def.Fields)), Format: format}
	for _, f := range def.Fields {
		ctl := Control{
			Key:      f.Name,
			Type:     f.Type,
			Widget:   DefaultWidget(f.Type),
			Label:    f.Label,
			Required: f.Required,
			Options:  f.Options,
			Config:   constraintConfig(f),
		}
		if resolve != nil {
			if w, cfg := resolve(f); w != "" {
				ctl.Widget = w
				for k, v := range cfg {
					if ctl.Config == nil {
						ctl.Config = map[string]any{}
					}
					ctl.Config[k] = v
				}
			}
		}
		if raw, ok := prefill[f.Name]; ok && raw != nil {
			switch f.Type {
			case TypeNumber:
				if n, ok := coerceNumber(raw); ok {
					ctl.Value = n
				}
			case TypeCheckbox:
				if b, ok := coerceBool(raw); ok {
					ctl.Value = b
				}
			default:
				ctl.Value = raw
			}
		}
		if es, ok := errs[f.Name]; ok {
			ctl.Errors = es
		}
		plan.Controls = append(plan.Controls, ctl)
	}
	return plan
}
