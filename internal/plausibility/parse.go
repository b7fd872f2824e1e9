package plausibility

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// normalizeNumber maps decimal commas and the Unicode minus onto their
// ASCII forms before parsing.
func normalizeNumber(s string) string {
	s = strings.ReplaceAll(s, ",", ".")
	s = strings.ReplaceAll(s, "−", "-")
	return s
}

func parseSigned(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(normalizeNumber(s)), 64)
	if err != nil {
		return 0, fmt.Errorf("number %q: %w", s, err)
	}
	return v, nil
}

// embeddedLimit pulls the numeric value out of a contract CI clause such as
// "≤ -49.5 gCO2/MJ". The number is the second-to-last whitespace token.
func embeddedLimit(s string) (float64, error) {
	fields := strings.Fields(s)
	if len(fields) < 2 {
		return 0, fmt.Errorf("CI clause %q has no embedded number", s)
	}
	return parseSigned(fields[len(fields)-2])
}

func stripThousands(s string) string {
	return strings.ReplaceAll(s, ",", "")
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: %w", s, err)
	}
	return t, nil
}

// extractSchemes finds the certification schemes named in free text. The EU
// variants swallow their base names: text naming "ISCC EU" yields only
// {"ISCC EU"}, never {"ISCC EU", "ISCC"}.
func extractSchemes(text string) map[string]struct{} {
	upper := strings.ToUpper(text)
	schemes := make(map[string]struct{})

	if strings.Contains(upper, "ISCC EU") || strings.Contains(upper, "ISCC-EU") {
		schemes["ISCC EU"] = struct{}{}
	} else if strings.Contains(upper, "ISCC") {
		schemes["ISCC"] = struct{}{}
	}

	if strings.Contains(upper, "REDCERT EU") || strings.Contains(upper, "REDCERT-EU") {
		schemes["REDcert EU"] = struct{}{}
	} else if strings.Contains(upper, "REDCERT") {
		schemes["REDcert"] = struct{}{}
	}

	return schemes
}

func intersect(a, b map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{})
	for k := range a {
		if _, ok := b[k]; ok {
			out[k] = struct{}{}
		}
	}
	return out
}

// schemeSet renders a scheme set deterministically for check output.
func schemeSet(m map[string]struct{}) string {
	if len(m) == 0 {
		return "{}"
	}
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return "{" + strings.Join(names, ", ") + "}"
}
