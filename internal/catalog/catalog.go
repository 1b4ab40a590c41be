// Package catalog filters raw country records into the pools quizzes draw from.
package catalog

import (
	"time"

	"github.com/tg383520/geo-quiz/internal/domain"
)

// Build keeps the countries a quiz can ask about: a capital, both codes, and
// a translation for lang when lang is set.
func Build(raw []domain.Country, lang string, now time.Time) domain.Catalog {
	kept := make([]domain.Country, 0, len(raw))
	for _, c := range raw {
		if usable(c, lang) {
			kept = append(kept, c)
		}
	}
	return domain.Catalog{Language: lang, Countries: kept, FetchedAt: now.UTC()}
}

func usable(c domain.Country, lang string) bool {
	if c.Capital() == "" || c.CCA2 == "" || c.CCA3 == "" {
		return false
	}
	if lang == "" {
		return true
	}
	_, ok := c.Translations[lang]
	return ok
}

// Territories is the subset of a map the catalog needs.
type Territories interface {
	Has(id string) bool
}

// MapCountries returns the countries that have a territory on the map.
func MapCountries(cat domain.Catalog, m Territories) []domain.Country {
	out := make([]domain.Country, 0, len(cat.Countries))
	for _, c := range cat.Countries {
		if m.Has(c.Code()) {
			out = append(out, c)
		}
	}
	return out
}

// Names lists display names in catalog order.
func Names(countries []domain.Country, lang string) []string {
	out := make([]string, 0, len(countries))
	for _, c := range countries {
		out = append(out, c.DisplayName(lang))
	}
	return out
}

// Capitals lists first capitals in catalog order.
func Capitals(countries []domain.Country) []string {
	out := make([]string, 0, len(countries))
	for _, c := range countries {
		out = append(out, c.Capital())
	}
	return out
}
