// Package audit provides helpers for producing stable diffs of schema
// documents for the audit trail.
package audit

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// NormalizeJSON formats and sorts keys so that JSON diffs are stable.
func NormalizeJSON(b []byte) string {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return string(b)
	}
	v = sortKeys(v)
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
	return strings.TrimRight(buf.String(), "\n")
}

func sortKeys(v any) any {
	switch m := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		res := make(map[string]any, len(m))
		for _, k := range keys {
			res[k] = sortKeys(m[k])
		}
		return res
	case []any:
		for i := range m {
			m[i] = sortKeys(m[i])
		}
		return m
	default:
		return v
	}
}

// UnifiedDiff returns a unified diff of two JSON documents and counts of
// added and removed key lines. Only lines containing '":' are counted.
func UnifiedDiff(beforeJSON, afterJSON []byte) (unified string, added, removed int) {
	a := difflib.SplitLines(NormalizeJSON(beforeJSON) + "\n")
	b := difflib.SplitLines(NormalizeJSON(afterJSON) + "\n")
	diff := difflib.UnifiedDiff{
		A:        a,
		B:        b,
		FromFile: "before",
		ToFile:   "after",
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", 0, 0
	}
	for _, line := range strings.Split(text, "\n") {
		if !strings.Contains(line, `":`) {
			continue
		}
		switch {
		case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
			added++
		case strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---"):
			removed++
		}
	}
	return text, added, removed
}
