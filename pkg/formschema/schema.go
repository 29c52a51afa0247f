// Package formschema defines the form schema data model, compiles schema
// definitions into runtime validators and produces render plans for data
// entry forms.
package formschema

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/iancoleman/strcase"
	"github.com/jinzhu/inflection"
)

// Supported field types.
const (
	TypeText     = "text"
	TypeNumber   = "number"
	TypeTextarea = "textarea"
	TypeSelect   = "select"
	TypeCheckbox = "checkbox"
	TypeDate     = "date"
)

// FormatVersion is the schema document format produced by this release.
const FormatVersion = "1.0.0"

// Option is one selectable value of a select field.
type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// Constraints holds type-dependent validation limits. Length and pattern
// constraints apply to text-like fields, min/max/step to number fields.
type Constraints struct {
	MinLength *int     `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Pattern   string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Min       *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max       *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Step      *float64 `json:"step,omitempty" yaml:"step,omitempty"`
}

// FieldSpec describes one field of a form. Name is the payload key and must
// be unique within a definition.
type FieldSpec struct {
	Name       string       `json:"name" yaml:"name"`
	Type       string       `json:"type" yaml:"type"`
	Label      string       `json:"label" yaml:"label"`
	Required   bool         `json:"required,omitempty" yaml:"required,omitempty"`
	Validation *Constraints `json:"validation,omitempty" yaml:"validation,omitempty"`
	Options    []Option     `json:"options,omitempty" yaml:"options,omitempty"`
}

// Definition is the persisted JSON document describing a form's fields.
type Definition struct {
	FormatVersion string      `json:"formatVersion,omitempty" yaml:"formatVersion,omitempty"`
	Fields        []FieldSpec `json:"fields" yaml:"fields"`
}

// Schema is a named, persisted form definition.
type Schema struct {
	ID          string     `json:"id" yaml:"id"`
	TenantID    string     `json:"-" yaml:"-"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	TableName   string     `json:"table_name" yaml:"tableName"`
	Definition  Definition `json:"schema" yaml:"schema"`
	CreatedBy   string     `json:"created_by,omitempty" yaml:"createdBy,omitempty"`
	CreatedAt   time.Time  `json:"created_at" yaml:"createdAt"`
	UpdatedAt   time.Time  `json:"updated_at" yaml:"updatedAt"`
}

// Submission is one persisted record entered against a schema. Revision is
// compared on update so that concurrent edits surface as conflicts instead
// of silently overwriting each other.
type Submission struct {
	ID          string         `json:"id" yaml:"id"`
	TenantID    string         `json:"-" yaml:"-"`
	SchemaID    string         `json:"form_schema_id" yaml:"formSchemaId"`
	Data        map[string]any `json:"data" yaml:"data"`
	Revision    int64          `json:"revision" yaml:"revision"`
	SubmittedBy string         `json:"submitted_by,omitempty" yaml:"submittedBy,omitempty"`
	CreatedAt   time.Time      `json:"created_at" yaml:"createdAt"`
	UpdatedAt   time.Time      `json:"updated_at" yaml:"updatedAt"`
}

func knownType(t string) bool {
	switch t {
	case TypeText, TypeNumber, TypeTextarea, TypeSelect, TypeCheckbox, TypeDate:
		return true
	}
	return false
}

// ParseDefinition decodes and checks a raw schema document. A syntactically
// invalid document yields ErrInvalidJSON; structural violations yield a
// *SpecError naming the offending field.
func ParseDefinition(raw []byte) (Definition, error) {
	var def Definition
	if err := json.Unmarshal(raw, &def); err != nil {
		return Definition{}, ErrInvalidJSON
	}
	if err := def.Check(); err != nil {
		return Definition{}, err
	}
	return def, nil
}

// Check verifies the definition's structural invariants: supported format
// version, non-empty unique field names, known types, and options present
// iff the field is a select.
func (d Definition) Check() error {
	if d.FormatVersion != "" {
		v, err := semver.NewVersion(d.FormatVersion)
		if err != nil {
			return &SpecError{Msg: fmt.Sprintf("invalid formatVersion %q", d.FormatVersion)}
		}
		cur := semver.MustParse(FormatVersion)
		if v.Major() > cur.Major() {
			return &SpecError{Msg: fmt.Sprintf("unsupported formatVersion %q (supported up to %s)", d.FormatVersion, FormatVersion)}
		}
	}
	seen := make(map[string]struct{}, len(d.Fields))
	for _, f := range d.Fields {
		if f.Name == "" {
			return &SpecError{Msg: "field name must not be empty"}
		}
		if _, dup := seen[f.Name]; dup {
			return &SpecError{Field: f.Name, Msg: "duplicate field name"}
		}
		seen[f.Name] = struct{}{}
		if !knownType(f.Type) {
			return &SpecError{Field: f.Name, Msg: fmt.Sprintf("unknown field type %q", f.Type)}
		}
		if f.Type == TypeSelect && len(f.Options) == 0 {
			return &SpecError{Field: f.Name, Msg: "select field requires options"}
		}
		if f.Type != TypeSelect && len(f.Options) > 0 {
			return &SpecError{Field: f.Name, Msg: "options are only allowed on select fields"}
		}
	}
	return nil
}

// Field returns the spec with the given name, if present.
func (d Definition) Field(name string) (FieldSpec, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// DefaultTableName derives the logical entity label for a schema from its
// display name, e.g. "Purchase Order" -> "purchase_orders".
func DefaultTableName(name string) string {
	return inflection.Plural(strcase.ToSnake(name))
}
