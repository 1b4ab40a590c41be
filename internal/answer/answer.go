// Package answer validates multiple-choice and free-text submissions.
package answer

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/tg383520/geo-quiz/internal/domain"
)

// MatchChoice reports whether a selected option equals the canonical answer exactly.
func MatchChoice(selected, canonical string) bool {
	return selected == canonical
}

// Normalize trims, case-folds and NFC-composes a string for comparison.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	// cases.Caser keeps state, so a fresh one is used per call.
	return norm.NFC.String(cases.Fold().String(s))
}

// Set is a set of accepted normalized answers.
type Set map[string]struct{}

// NewSet normalizes and collects the non-empty values.
func NewSet(values ...string) Set {
	s := make(Set, len(values))
	s.Add(values...)
	return s
}

// Add inserts more accepted values.
func (s Set) Add(values ...string) {
	for _, v := range values {
		if n := Normalize(v); n != "" {
			s[n] = struct{}{}
		}
	}
}

// Match normalizes input and checks membership. An empty input yields ErrEmptyAnswer.
func (s Set) Match(input string) (bool, error) {
	n := Normalize(input)
	if n == "" {
		return false, domain.ErrEmptyAnswer
	}
	_, ok := s[n]
	return ok, nil
}

// Aliases is a hand-curated table of extra accepted spellings. Keys are
// lowercase country codes for names and "capital:<code>" for capitals.
type Aliases map[string][]string

func (a Aliases) names(code string) []string {
	return a[strings.ToLower(code)]
}

func (a Aliases) capitals(code string) []string {
	return a["capital:"+strings.ToLower(code)]
}

// NameSet lists every accepted way to write a country's name.
func NameSet(c domain.Country, aliases Aliases) Set {
	s := NewSet(c.Name.Common, c.Name.Official)
	s.Add(c.AltSpellings...)
	for _, t := range c.Translations {
		s.Add(t.Common, t.Official)
	}
	s.Add(aliases.names(c.CCA2)...)
	return s
}

// CapitalSet lists every accepted way to write a country's capital.
func CapitalSet(c domain.Country, aliases Aliases) Set {
	s := NewSet(c.Capitals...)
	s.Add(aliases.capitals(c.CCA2)...)
	return s
}
