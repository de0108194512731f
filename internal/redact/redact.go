// Package redact strips credentials from text before it is persisted.
package redact

import (
	_ "embed"
	"regexp"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/rcliao/recall/internal/errs"
)

//go:embed rules.yml
var rulesYAML []byte

// Rule is a named secret pattern.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
}

// Match reports how often a rule fired. The matched text is never kept.
type Match struct {
	Rule  string `json:"rule"`
	Count int    `json:"count"`
}

// Result is the outcome of redacting one text.
type Result struct {
	RedactedText string  `json:"redacted_text"`
	HadSecrets   bool    `json:"had_secrets"`
	Matches      []Match `json:"matches,omitempty"`
}

type rulesFile struct {
	Rules []struct {
		Name  string `yaml:"name"`
		Regex string `yaml:"regex"`
	} `yaml:"rules"`
}

var (
	defaultOnce  sync.Once
	defaultRules []Rule
	defaultErr   error
)

// DefaultRules returns the built-in rule set, compiled once.
func DefaultRules() ([]Rule, error) {
	defaultOnce.Do(func() {
		defaultRules, defaultErr = ParseRules(rulesYAML)
	})
	return defaultRules, defaultErr
}

// ParseRules compiles a YAML rule document of the form
// {rules: [{name, regex}]}.
func ParseRules(data []byte) ([]Rule, error) {
	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errs.Wrap(err, errs.CodeRedactRulesInvalid, "parse redaction rules")
	}
	rules := make([]Rule, 0, len(f.Rules))
	for i, r := range f.Rules {
		if r.Name == "" {
			return nil, errs.Errorf(errs.CodeRedactRulesInvalid, "rule %d has empty name", i)
		}
		re, err := regexp.Compile(r.Regex)
		if err != nil {
			return nil, errs.Wrap(err, errs.CodeRedactRulesInvalid, "compile redaction rule",
				errs.Field("rule", r.Name))
		}
		rules = append(rules, Rule{Name: r.Name, Pattern: re})
	}
	return rules, nil
}

// Redactor replaces secrets matched by its rules.
type Redactor struct {
	rules []Rule
}

// New returns a Redactor over rules. A nil slice selects DefaultRules.
func New(rules []Rule) (*Redactor, error) {
	if rules == nil {
		var err error
		if rules, err = DefaultRules(); err != nil {
			return nil, err
		}
	}
	return &Redactor{rules: rules}, nil
}

// invisible strips zero-width characters that would split a secret and
// evade the patterns.
var invisible = strings.NewReplacer(
	"\u200b", "", // zero-width space
	"\u200c", "", // zero-width non-joiner
	"\u200d", "", // zero-width joiner
	"\ufeff", "", // BOM
	"\u00ad", "", // soft hyphen
	"\u2060", "", // word joiner
)

// Redact replaces each secret occurrence with [REDACTED:<rule>]. Text
// without secrets is returned unchanged.
func (r *Redactor) Redact(text string) Result {
	clean := invisible.Replace(text)

	type span struct {
		start, end int
		rule       string
	}
	var spans []span
	for _, rule := range r.rules {
		for _, loc := range rule.Pattern.FindAllStringIndex(clean, -1) {
			spans = append(spans, span{loc[0], loc[1], rule.Name})
		}
	}
	if len(spans) == 0 {
		return Result{RedactedText: text}
	}

	// Earlier start wins; on a tie the longer match wins.
	slices.SortStableFunc(spans, func(a, b span) int {
		if a.start != b.start {
			return a.start - b.start
		}
		return b.end - a.end
	})

	var b strings.Builder
	b.Grow(len(clean))
	counts := map[string]int{}
	var order []string
	pos := 0
	for _, s := range spans {
		if s.start < pos {
			if s.end > pos {
				pos = s.end
			}
			continue
		}
		b.WriteString(clean[pos:s.start])
		b.WriteString("[REDACTED:" + s.rule + "]")
		pos = s.end
		if counts[s.rule] == 0 {
			order = append(order, s.rule)
		}
		counts[s.rule]++
	}
	b.WriteString(clean[pos:])

	matches := make([]Match, len(order))
	for i, name := range order {
		matches[i] = Match{Rule: name, Count: counts[name]}
	}
	return Result{RedactedText: b.String(), HadSecrets: true, Matches: matches}
}
