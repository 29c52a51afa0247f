package formschema

import (
	"sort"
	"strings"
)

// FieldErrors maps a field name to the messages of its violated rules.
type FieldErrors map[string][]string

func (e FieldErrors) Error() string {
	names := make([]string, 0, len(e))
	for n := range e {
		names = append(names, n)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, n := range names {
		parts = append(parts, n+": "+strings.Join(e[n], "; "))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Validate evaluates a candidate record against every compiled field and
// returns either the accepted, normalized record or the full set of
// per-field errors. Rejection is whole-record: a single violated field
// rejects the submission, but all fields are still evaluated so that the
// renderer can surface every error at once.
func (v *Validator) Validate(data map[string]any) (map[string]any, FieldErrors) {
	out := make(map[string]any, len(v.fields))
	errs := FieldErrors{}
	for _, f := range v.fields {
		raw, present := data[f.spec.Name]
		norm, include, fieldErrs := f.check(raw, present)
		if len(fieldErrs) > 0 {
			errs[f.spec.Name] = fieldErrs
			continue
		}
		if include {
			out[f.spec.Name] = norm
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return out, nil
}
