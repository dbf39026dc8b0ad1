package bulletin

import (
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// hyphenBreak matches a word broken across a line wrap, e.g. "PHILIP- PINES".
var hyphenBreak = regexp.MustCompile(`(\w)-\s*(\w)`)

// trailingAsterisks matches footnote markers at the end of a category cell.
var trailingAsterisks = regexp.MustCompile(`\*+$`)

// CleanText normalizes a raw text fragment: unicode decomposition (NFKD),
// soft hyphens stripped, every run of unicode whitespace (including
// non-breaking spaces) collapsed to a single ASCII space, and the result
// trimmed. Idempotent.
func CleanText(raw string) string {
	s := norm.NFKD.String(raw)
	s = strings.ReplaceAll(s, "\u00ad", "")
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

// dehyphenate joins words broken by a hyphen and optional whitespace, so
// line-wrapped headers like "PHILIP- PINES" match their keyword rules.
func dehyphenate(s string) string {
	return hyphenBreak.ReplaceAllString(s, "$1$2")
}

// dateLayouts for priority date cells, tried in order. Bulletins use
// two-digit years ("01FEB23"); a few older documents spell out four.
var dateLayouts = []string{"02Jan06", "02Jan2006"}

// ParseDateToken converts a raw priority date cell to its canonical form:
// the Current/Unavailable sentinels, an ISO date for parseable tokens, or
// the cleaned uppercased original when nothing matches. It never fails --
// an unparsed passthrough is a data quality signal for the caller, not an
// error.
func ParseDateToken(raw string) string {
	s := strings.ToUpper(CleanText(raw))
	switch s {
	case "C", "CURRENT":
		return Current
	case "U", "UNAVAILABLE":
		return Unavailable
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}

	return s
}

// textRule maps a predicate over lowercased text to a canonical value.
// Rules are evaluated top to bottom; the first match wins.
type textRule struct {
	match func(lowered string) bool
	value string
}

func contains(substrs ...string) func(string) bool {
	return func(s string) bool {
		for _, sub := range substrs {
			if strings.Contains(s, sub) {
				return true
			}
		}
		return false
	}
}

func containsAll(substrs ...string) func(string) bool {
	return func(s string) bool {
		for _, sub := range substrs {
			if !strings.Contains(s, sub) {
				return false
			}
		}
		return true
	}
}

func oneOf(values ...string) func(string) bool {
	return func(s string) bool {
		for _, v := range values {
			if s == v {
				return true
			}
		}
		return false
	}
}

// countryRules canonicalize column headers. Note the first rule: some
// bulletins abbreviate "All Chargeability Areas Except Those Listed" enough
// that only "charge" and "except" survive.
var countryRules = []textRule{
	{func(s string) bool {
		return strings.Contains(s, "chargeability") ||
			(strings.Contains(s, "charge") && strings.Contains(s, "except"))
	}, "All Chargeability Areas"},
	{contains("china"), "China"},
	{contains("india"), "India"},
	{contains("mexico"), "Mexico"},
	{contains("philip"), "Philippines"},
}

// countryAbbrevs covers the two-letter column headers in older bulletins.
var countryAbbrevs = map[string]string{
	"CH": "China",
	"IN": "India",
	"ME": "Mexico",
	"MX": "Mexico",
	"PH": "Philippines",
}

// NormalizeCountry canonicalizes a country column header. Unrecognized
// countries pass through as cleaned text.
func NormalizeCountry(raw string) string {
	cleaned := CleanText(raw)
	lowered := strings.ToLower(dehyphenate(cleaned))

	for _, rule := range countryRules {
		if rule.match(lowered) {
			return rule.value
		}
	}

	if name, ok := countryAbbrevs[strings.ToUpper(cleaned)]; ok {
		return name
	}

	return cleaned
}

var familyRules = []textRule{
	{oneOf("f1", "1st", "1st preference"), "F1"},
	{oneOf("f2a", "2a"), "F2A"},
	{oneOf("f2b", "2b"), "F2B"},
	{oneOf("f3", "3rd", "3rd preference"), "F3"},
	{oneOf("f4", "4th", "4th preference"), "F4"},
}

var employmentRules = []textRule{
	{oneOf("1st", "1st preference"), "EB-1"},
	{oneOf("2nd", "2nd preference"), "EB-2"},
	{oneOf("3rd", "3rd preference"), "EB-3"},
	{contains("other worker"), "EB-3 Other Workers"},
	{oneOf("4th", "4th preference"), "EB-4"},
	{containsAll("religious", "worker"), "EB-4 Religious Workers"},
}

// eb5Rules disambiguate the EB-5 set-asides once a cell is known to mention
// the fifth preference. Wording has churned across set-aside eras.
var eb5Rules = []textRule{
	{contains("unreserved"), "EB-5 Unreserved"},
	{contains("rural"), "EB-5 Rural"},
	{contains("high unemployment"), "EB-5 High Unemployment"},
	{contains("infrastructure"), "EB-5 Infrastructure"},
	{contains("targeted", "regional"), "EB-5 Targeted"},
}

var employmentTailRules = []textRule{
	// Pre-2022 bulletins label the set-aside "Targeted Employment Areas"
	// without mentioning the fifth preference.
	{containsAll("targeted", "employment"), "EB-5 Targeted"},
	{contains("schedule a"), "Schedule A Workers"},
	{contains("iraqi", "afghani", "translator"), "Iraqi/Afghani Translators"},
}

// NormalizeCategory canonicalizes a category cell for the given visa type.
// Unrecognized categories pass through as cleaned text, except that short
// unmatched family cells are uppercased as best-effort codes.
func NormalizeCategory(raw, visaType string) string {
	cleaned := CleanText(raw)
	cleaned = strings.TrimSpace(trailingAsterisks.ReplaceAllString(cleaned, ""))
	lowered := strings.ToLower(dehyphenate(cleaned))

	if visaType == VisaFamily {
		for _, rule := range familyRules {
			if rule.match(lowered) {
				return rule.value
			}
		}
		if utf8.RuneCountInString(cleaned) <= 4 {
			return strings.ToUpper(cleaned)
		}
		return cleaned
	}

	for _, rule := range employmentRules {
		if rule.match(lowered) {
			return rule.value
		}
	}
	if strings.Contains(lowered, "5th") || strings.Contains(lowered, "fifth") {
		for _, rule := range eb5Rules {
			if rule.match(lowered) {
				return rule.value
			}
		}
		return "EB-5"
	}
	for _, rule := range employmentTailRules {
		if rule.match(lowered) {
			return rule.value
		}
	}
	return cleaned
}
