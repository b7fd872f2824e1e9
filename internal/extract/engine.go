// Package extract turns acquired document text into typed field records.
//
// One rule engine serves all four document types; each type contributes an
// ordered rule table. A rule never overwrites a field set by an earlier rule,
// so primary structural patterns can be followed by looser fallbacks.
package extract

import "regexp"

// Fields accumulates rule output keyed by flat field name. Values are string
// or bool.
type Fields map[string]any

func (f Fields) has(key string) bool {
	_, ok := f[key]
	return ok
}

// str returns the field as a nullable string for record building.
func (f Fields) str(key string) *string {
	if v, ok := f[key].(string); ok {
		return &v
	}
	return nil
}

func (f Fields) flag(key string) bool {
	v, _ := f[key].(bool)
	return v
}

// Rule is one step of an extraction table, applied in table order.
type Rule interface {
	apply(text string, out Fields)
}

// Apply runs the rule table over the active text view.
func Apply(text string, rules []Rule) Fields {
	out := Fields{}
	for _, r := range rules {
		r.apply(text, out)
	}
	return out
}

// Capture maps one regexp group to a field, with optional post-processing.
type Capture struct {
	Field string
	Group int
	Post  []func(string) string
}

// PatternRule extracts fields from the first match of Pattern. Captures with
// empty matched text are skipped so optional groups (units, currencies) only
// materialize when present.
type PatternRule struct {
	Pattern  *regexp.Regexp
	Captures []Capture
}

func (r PatternRule) apply(text string, out Fields) {
	pending := false
	for _, c := range r.Captures {
		if !out.has(c.Field) {
			pending = true
		}
	}
	if !pending {
		return
	}
	m := r.Pattern.FindStringSubmatch(text)
	if m == nil {
		return
	}
	for _, c := range r.Captures {
		if out.has(c.Field) || c.Group >= len(m) {
			continue
		}
		v := m[c.Group]
		for _, post := range c.Post {
			v = post(v)
		}
		if v == "" {
			continue
		}
		out[c.Field] = v
	}
}

// VocabTerm is one entry of a keyword fallback vocabulary. Value overrides
// the stored text; when empty the term itself is stored.
type VocabTerm struct {
	Match string
	Value string
}

// VocabRule scans a fixed vocabulary when the structural pattern left the
// field unset; the first hit wins.
type VocabRule struct {
	Field string
	Terms []VocabTerm
}

func (r VocabRule) apply(text string, out Fields) {
	if out.has(r.Field) {
		return
	}
	lower := lowercase(text)
	for _, t := range r.Terms {
		if containsFold(lower, t.Match) {
			v := t.Value
			if v == "" {
				v = t.Match
			}
			out[r.Field] = v
			return
		}
	}
}

// FlagRule derives a boolean from pattern presence. Compliance fields are
// typically checkbox-adjacent text ("... Yes") rather than key/value pairs.
type FlagRule struct {
	Field string
	Any   []*regexp.Regexp
}

func (r FlagRule) apply(text string, out Fields) {
	if out.has(r.Field) {
		return
	}
	for _, p := range r.Any {
		if p.MatchString(text) {
			out[r.Field] = true
			return
		}
	}
}

// ConstRule stores a fixed value when the pattern matches, for fields whose
// presence in the text matters more than their wording.
type ConstRule struct {
	Field   string
	Value   string
	Pattern *regexp.Regexp
}

func (r ConstRule) apply(text string, out Fields) {
	if out.has(r.Field) {
		return
	}
	if r.Pattern.MatchString(text) {
		out[r.Field] = r.Value
	}
}

// rule builds a single-capture PatternRule on group 1.
func rule(field, expr string, post ...func(string) string) Rule {
	return PatternRule{
		Pattern:  regexp.MustCompile(`(?i)` + expr),
		Captures: []Capture{{Field: field, Group: 1, Post: post}},
	}
}

// multi builds a PatternRule with explicit captures.
func multi(expr string, caps ...Capture) Rule {
	return PatternRule{Pattern: regexp.MustCompile(`(?i)` + expr), Captures: caps}
}

func capture(field string, group int, post ...func(string) string) Capture {
	return Capture{Field: field, Group: group, Post: post}
}

func constant(field, expr, value string) Rule {
	return ConstRule{Field: field, Value: value, Pattern: regexp.MustCompile(`(?i)` + expr)}
}

func flag(field string, exprs ...string) Rule {
	ps := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		ps = append(ps, regexp.MustCompile(`(?i)`+e))
	}
	return FlagRule{Field: field, Any: ps}
}
