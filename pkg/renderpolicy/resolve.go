package renderpolicy

import "strings"

// Ctx is the field selection a rule is matched against.
type Ctx struct {
	Type     string
	Name     string
	Required bool
	Options  int
}

// Resolve returns the widget and config of the first matching rule, or
// empty when no rule claims the field so the renderer keeps its default.
func (p *Policy) Resolve(ctx Ctx) (id string, cfg map[string]any) {
	for _, r := range p.Rules {
		if match(r.When, ctx) {
			return r.Widget, r.Config
		}
	}
	return "", nil
}

// Suggest lists candidate widgets for a field, most specific first.
func (p *Policy) Suggest(ctx Ctx) []string {
	seen := map[string]bool{}
	var out []string
	for _, r := range p.Rules {
		if !match(r.When, ctx) {
			continue
		}
		if !seen[r.Widget] {
			out = append(out, r.Widget)
			seen[r.Widget] = true
		}
		if r.Stop && len(out) >= p.SuggestTop {
			break
		}
	}
	return out
}

func match(w When, c Ctx) bool {
	if len(w.Types) > 0 {
		t := strings.ToLower(c.Type)
		found := false
		for _, x := range w.Types {
			if x == t {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if w.Required != nil && *w.Required != c.Required {
		return false
	}
	if w.MinOptions != nil && c.Options < *w.MinOptions {
		return false
	}
	if w.MaxOptions != nil && c.Options > *w.MaxOptions {
		return false
	}
	if w.rx != nil && !w.rx.MatchString(c.Name) {
		return false
	}
	return true
}
