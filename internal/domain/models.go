package domain

import (
	"strings"
	"time"
)

// CountryName holds the common and official display names of a country.
type CountryName struct {
	Common   string `json:"common"`
	Official string `json:"official"`
}

// Flag references the flag images of a country.
type Flag struct {
	SVG string `json:"svg"`
	PNG string `json:"png"`
	Alt string `json:"alt,omitempty"`
}

// Country is one record of the country data source.
type Country struct {
	CCA2         string                 `json:"cca2"`
	CCA3         string                 `json:"cca3"`
	Name         CountryName            `json:"name"`
	Capitals     []string               `json:"capital"`
	Flag         Flag                   `json:"flags"`
	AltSpellings []string               `json:"altSpellings,omitempty"`
	Translations map[string]CountryName `json:"translations,omitempty"`
}

// Code returns the lowercase two-letter code used as the territory id on the map.
func (c Country) Code() string {
	return strings.ToLower(c.CCA2)
}

// DisplayName returns the translated common name for lang, falling back to the English common name.
func (c Country) DisplayName(lang string) string {
	if lang != "" {
		if t, ok := c.Translations[lang]; ok && t.Common != "" {
			return t.Common
		}
	}
	return c.Name.Common
}

// Capital returns the first listed capital or "".
func (c Country) Capital() string {
	if len(c.Capitals) == 0 {
		return ""
	}
	return c.Capitals[0]
}

// Catalog is the filtered set of countries a quiz draws from.
type Catalog struct {
	Language  string    `json:"language"`
	Countries []Country `json:"countries"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// Mode selects what a quiz asks about.
type Mode string

const (
	ModeFlag     Mode = "flag"
	ModeCapital  Mode = "capital"
	ModeMapFind  Mode = "map-find"
	ModeMapGuess Mode = "map-guess"
)

// UsesMap reports whether questions of this mode mount the interactive map.
func (m Mode) UsesMap() bool {
	return m == ModeMapFind || m == ModeMapGuess
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeFlag, ModeCapital, ModeMapFind, ModeMapGuess:
		return true
	}
	return false
}

// Style selects how answers are entered.
type Style string

const (
	StyleChoice Style = "choice"
	StyleText   Style = "text"
)

// Screen is the visible stage of a quiz session.
type Screen string

const (
	ScreenStart   Screen = "start"
	ScreenQuiz    Screen = "quiz"
	ScreenResults Screen = "results"
)

// Mark values applied to options and territories.
const (
	MarkCorrect   = "correct"
	MarkIncorrect = "incorrect"
	MarkDisabled  = "disabled"
	MarkHighlight = "highlight"
)

// Progress describes the position within a quiz.
type Progress struct {
	Index   int     `json:"index"` // 1-based
	Total   int     `json:"total"`
	Label   string  `json:"label"`
	Percent float64 `json:"percent"`
	Score   int     `json:"score"`
}

// Rect is a rectangle in map coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// MapView is the map state a client needs to draw a question.
type MapView struct {
	ViewBox Rect              `json:"viewBox"`
	Marks   map[string]string `json:"marks,omitempty"`
	Arrow   string            `json:"arrow,omitempty"`
	Zoomed  bool              `json:"zoomed"`
	Locked  bool              `json:"locked"`
}

// QuestionView is the client-facing rendering of the current question.
type QuestionView struct {
	Mode        Mode     `json:"mode"`
	Style       Style    `json:"style"`
	Prompt      string   `json:"prompt"`
	Instruction string   `json:"instruction,omitempty"`
	FlagURL     string   `json:"flagUrl,omitempty"`
	Options     []string `json:"options,omitempty"`
	Progress    Progress `json:"progress"`
	Map         *MapView `json:"map,omitempty"`
}

// Feedback is the outcome of answering one question plus the markup to show it.
type Feedback struct {
	Correct       bool              `json:"correct"`
	Given         string            `json:"given"`
	Answer        string            `json:"answer"`
	OptionMarks   map[string]string `json:"optionMarks,omitempty"`
	Territories   map[string]string `json:"territories,omitempty"`
	Score         int               `json:"score"`
	NextAvailable bool              `json:"nextAvailable"`
}

// Result is the final summary of a finished quiz.
type Result struct {
	Mode    Mode   `json:"mode"`
	Score   int    `json:"score"`
	Total   int    `json:"total"`
	Label   string `json:"label"`
	Message string `json:"message"`
}
