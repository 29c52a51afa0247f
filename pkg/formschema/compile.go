package formschema

import (
	"fmt"
	"regexp"
	"strconv"
)

// fieldCheck validates a single field's raw value. present reports whether
// the payload contained the key at all. include reports whether the
// normalized value belongs in the accepted record.
type fieldCheck func(raw any, present bool) (norm any, include bool, errs []string)

type compiledField struct {
	spec  FieldSpec
	check fieldCheck
}

// Validator is a compiled definition. It evaluates every field of a
// candidate record and reports all violations at once; it never stops at
// the first failing field.
type Validator struct {
	fields []compiledField
}

// compiler synthesizes the check for one field type.
type compiler func(spec FieldSpec) (fieldCheck, error)

// compilers maps a field type to its compiler. Types without an entry use
// the string compiler. Adding a field type is one entry here plus one in
// the widget table.
var compilers = map[string]compiler{
	TypeNumber:   compileNumber,
	TypeCheckbox: compileCheckbox,
	TypeDate:     compileDate,
}

// Compile synthesizes a Validator from a definition. Structural problems
// and unparsable patterns are reported here, before the definition can
// reach a renderer or accept data.
func Compile(def Definition) (*Validator, error) {
	if err := def.Check(); err != nil {
		return nil, err
	}
	v := &Validator{fields: make([]compiledField, 0, len(def.Fields))}
	for _, f := range def.Fields {
		c := compilers[f.Type]
		if c == nil {
			c = compileString
		}
		check, err := c(f)
		if err != nil {
			return nil, err
		}
		v.fields = append(v.fields, compiledField{spec: f, check: check})
	}
	return v, nil
}

// isEmpty reports whether a raw value counts as "not entered".
func isEmpty(raw any, present bool) bool {
	if !present || raw == nil {
		return true
	}
	s, ok := raw.(string)
	return ok && s == ""
}

func coerceNumber(raw any) (float64, bool) {
	switch n := raw.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

func coerceBool(raw any) (bool, bool) {
	switch b := raw.(type) {
	case bool:
		return b, true
	case string:
		switch b {
		case "true", "1", "on":
			return true, true
		case "false", "0", "off", "":
			return false, true
		}
	}
	return false, false
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func compileNumber(spec FieldSpec) (fieldCheck, error) {
	var min, max *float64
	if spec.Validation != nil {
		min, max = spec.Validation.Min, spec.Validation.Max
	}
	return func(raw any, present bool) (any, bool, []string) {
		if isEmpty(raw, present) {
			if spec.Required {
				return nil, false, []string{fmt.Sprintf("%s is required", spec.Label)}
			}
			return nil, false, nil
		}
		n, ok := coerceNumber(raw)
		if !ok {
			return nil, false, []string{fmt.Sprintf("%s must be a number", spec.Label)}
		}
		var errs []string
		if min != nil && n < *min {
			errs = append(errs, fmt.Sprintf("%s must be at least %s", spec.Label, formatNumber(*min)))
		}
		if max != nil && n > *max {
			errs = append(errs, fmt.Sprintf("%s must be at most %s", spec.Label, formatNumber(*max)))
		}
		if len(errs) > 0 {
			return nil, false, errs
		}
		return n, true, nil
	}, nil
}

func compileCheckbox(spec FieldSpec) (fieldCheck, error) {
	return func(raw any, present bool) (any, bool, []string) {
		// Unchecked and never-touched are indistinguishable: both are false.
		if isEmpty(raw, present) {
			return false, true, nil
		}
		b, ok := coerceBool(raw)
		if !ok {
			return nil, false, []string{fmt.Sprintf("%s must be a boolean", spec.Label)}
		}
		return b, true, nil
	}, nil
}

func compileDate(spec FieldSpec) (fieldCheck, error) {
	return func(raw any, present bool) (any, bool, []string) {
		if isEmpty(raw, present) {
			if spec.Required {
				return nil, false, []string{fmt.Sprintf("%s is required", spec.Label)}
			}
			return nil, false, nil
		}
		s, ok := raw.(string)
		if !ok {
			return nil, false, []string{fmt.Sprintf("%s must be a string", spec.Label)}
		}
		return s, true, nil
	}, nil
}

// compileString covers text, textarea and select. Length and pattern
// constraints apply only here.
func compileString(spec FieldSpec) (fieldCheck, error) {
	var minLen, maxLen *int
	var rx *regexp.Regexp
	if spec.Validation != nil {
		minLen, maxLen = spec.Validation.MinLength, spec.Validation.MaxLength
		if spec.Validation.Pattern != "" {
			var err error
			rx, err = regexp.Compile(spec.Validation.Pattern)
			if err != nil {
				return nil, &CompileError{Field: spec.Name, Msg: fmt.Sprintf("invalid pattern %q", spec.Validation.Pattern), Err: err}
			}
		}
	}
	return func(raw any, present bool) (any, bool, []string) {
		if isEmpty(raw, present) {
			if spec.Required {
				return nil, false, []string{fmt.Sprintf("%s is required", spec.Label)}
			}
			return nil, false, nil
		}
		s, ok := raw.(string)
		if !ok {
			return nil, false, []string{fmt.Sprintf("%s must be a string", spec.Label)}
		}
		var errs []string
		if minLen != nil && len([]rune(s)) < *minLen {
			errs = append(errs, fmt.Sprintf("%s must be at least %d characters", spec.Label, *minLen))
		}
		if maxLen != nil && len([]rune(s)) > *maxLen {
			errs = append(errs, fmt.Sprintf("%s must be at most %d characters", spec.Label, *maxLen))
		}
		if rx != nil && !rx.MatchString(s) {
			errs = append(errs, fmt.Sprintf("%s has an invalid format", spec.Label))
		}
		if len(errs) > 0 {
			return nil, false, errs
		}
		return s, true, nil
	}, nil
}
