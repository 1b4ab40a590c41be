package answer

import (
	"errors"
	"testing"

	"github.com/tg383520/geo-quiz/internal/domain"
)

func TestFreeTextTrimsAndFolds(t *testing.T) {
	set := NewSet("seoul")

	ok, err := set.Match(" Seoul ")
	if err != nil || !ok {
		t.Fatalf("expected match for padded input, got ok=%v err=%v", ok, err)
	}
	ok, err = set.Match("Seol")
	if err != nil || ok {
		t.Fatalf("expected mismatch for misspelling, got ok=%v err=%v", ok, err)
	}
	ok, err = set.Match("SEOUL")
	if err != nil || !ok {
		t.Fatalf("expected case-insensitive match, got ok=%v err=%v", ok, err)
	}
}

func TestEmptySubmissionIsRejected(t *testing.T) {
	set := NewSet("Paris")
	for _, in := range []string{"", "   ", "\t\n"} {
		if _, err := set.Match(in); !errors.Is(err, domain.ErrEmptyAnswer) {
			t.Fatalf("input %q: expected ErrEmptyAnswer, got %v", in, err)
		}
	}
}

func TestNormalizeComposesUnicode(t *testing.T) {
	// "Bogotá" with a combining acute accent versus the precomposed form.
	decomposed := "Bogota\u0301"
	if Normalize(decomposed) != Normalize("BOGOTÁ") {
		t.Fatalf("expected composed and decomposed forms to normalize equally")
	}
	if Normalize("Straße") != Normalize("STRASSE") {
		t.Fatalf("expected full case folding")
	}
}

func TestNameSetIncludesAllSources(t *testing.T) {
	korea := domain.Country{
		CCA2:         "KR",
		Name:         domain.CountryName{Common: "South Korea", Official: "Republic of Korea"},
		AltSpellings: []string{"KR", "Korea"},
		Translations: map[string]domain.CountryName{
			"kor": {Common: "대한민국", Official: "대한민국"},
		},
		Capitals: []string{"Seoul"},
	}
	aliases := Aliases{"kr": {"한국", "남한"}, "capital:kr": {"서울"}}

	names := NameSet(korea, aliases)
	for _, in := range []string{"south korea", "Republic of Korea", "korea", "대한민국", " 한국 ", "남한"} {
		if ok, _ := names.Match(in); !ok {
			t.Fatalf("expected %q to be accepted", in)
		}
	}
	if ok, _ := names.Match("North Korea"); ok {
		t.Fatalf("expected North Korea to be rejected")
	}

	capitals := CapitalSet(korea, aliases)
	for _, in := range []string{"seoul", "서울"} {
		if ok, _ := capitals.Match(in); !ok {
			t.Fatalf("expected capital %q to be accepted", in)
		}
	}
}

func TestMatchChoiceIsExact(t *testing.T) {
	if !MatchChoice("Seoul", "Seoul") {
		t.Fatalf("expected exact match")
	}
	if MatchChoice("seoul", "Seoul") || MatchChoice("Seoul ", "Seoul") {
		t.Fatalf("multiple choice compares exactly")
	}
}
