// Package renderpolicy maps form field specs to concrete widgets through an
// operator-editable rule file. Rules are evaluated in order; the first match
// wins unless the matched rule allows further suggestions.
package renderpolicy

import (
	"fmt"
	"regexp"
	"strings"
)

type Policy struct {
	Version    int    `yaml:"version" json:"version"`
	SuggestTop int    `yaml:"suggest_top" json:"suggest_top"`
	Rules      []Rule `yaml:"rules" json:"rules"`
}

type Rule struct {
	ID     string         `yaml:"id" json:"id"`
	When   When           `yaml:"when" json:"when"`
	Widget string         `yaml:"widget" json:"widget"`
	Config map[string]any `yaml:"config" json:"config"`
	Stop   bool           `yaml:"stop" json:"stop"`
}

type When struct {
	Types      []string `yaml:"types" json:"types"`
	Required   *bool    `yaml:"required" json:"required"`
	MinOptions *int     `yaml:"min_options" json:"min_options"`
	MaxOptions *int     `yaml:"max_options" json:"max_options"`
	NameRegex  string   `yaml:"name_regex" json:"name_regex"`

	rx *regexp.Regexp
}

// Normalize trims and lowercases rule matchers and compiles name patterns.
// A rule with a broken name_regex fails the whole document so a reload
// never half-applies an edited file.
func (p *Policy) Normalize() error {
	for i := range p.Rules {
		r := &p.Rules[i]
		r.Widget = strings.TrimSpace(r.Widget)
		for j, t := range r.When.Types {
			r.When.Types[j] = strings.ToLower(strings.TrimSpace(t))
		}
		if r.When.NameRegex != "" {
			rx, err := regexp.Compile(r.When.NameRegex)
			if err != nil {
				return fmt.Errorf("rule %q: invalid name_regex: %w", r.ID, err)
			}
			r.When.rx = rx
		}
	}
	return nil
}
