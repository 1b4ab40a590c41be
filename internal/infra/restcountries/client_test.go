package restcountries

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func newTestClient(rt http.RoundTripper) *Client {
	return NewClient(&http.Client{Transport: rt}, "https://countries.test/v3.1/")
}

func respond(status int, body string) (*http.Response, error) {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
		Header:     make(http.Header),
	}, nil
}

func TestFetchAllRequestsQuizFields(t *testing.T) {
	var seen *http.Request
	client := newTestClient(roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		seen = r
		return respond(http.StatusOK, `[{
			"cca2":"KR","cca3":"KOR",
			"name":{"common":"South Korea","official":"Republic of Korea"},
			"capital":["Seoul"],
			"flags":{"svg":"https://flags.test/kr.svg","png":"https://flags.test/kr.png"},
			"altSpellings":["Korea"],
			"translations":{"kor":{"common":"대한민국","official":"대한민국"}}
		}]`)
	}))

	countries, err := client.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll returned error: %v", err)
	}
	if seen.URL.Path != "/v3.1/all" {
		t.Fatalf("unexpected path %q", seen.URL.Path)
	}
	if got := seen.URL.Query().Get("fields"); got != fields {
		t.Fatalf("expected fields %q, got %q", fields, got)
	}
	if len(countries) != 1 {
		t.Fatalf("expected one country, got %d", len(countries))
	}
	kr := countries[0]
	if kr.Capital() != "Seoul" || kr.Flag.SVG != "https://flags.test/kr.svg" || kr.DisplayName("kor") != "대한민국" {
		t.Fatalf("unexpected decoded country: %+v", kr)
	}
}

func TestFetchAllPropagatesNonOKStatus(t *testing.T) {
	client := newTestClient(roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		return respond(http.StatusBadGateway, "")
	}))
	if _, err := client.FetchAll(context.Background()); err == nil {
		t.Fatalf("expected error for non-200 status")
	}
}

func TestFetchAllJSONDecodeError(t *testing.T) {
	client := newTestClient(roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		return respond(http.StatusOK, "not-json")
	}))
	if _, err := client.FetchAll(context.Background()); err == nil {
		t.Fatalf("expected JSON decode error")
	}
}

func TestFetchAllHonoursContext(t *testing.T) {
	client := newTestClient(roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		return nil, r.Context().Err()
	}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := client.FetchAll(ctx); err == nil {
		t.Fatalf("expected error for cancelled context")
	}
}

func TestLoaderFiltersByLanguage(t *testing.T) {
	client := newTestClient(roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		return respond(http.StatusOK, `[
			{"cca2":"KR","cca3":"KOR","name":{"common":"South Korea"},"capital":["Seoul"],"translations":{"kor":{"common":"대한민국"}}},
			{"cca2":"JP","cca3":"JPN","name":{"common":"Japan"},"capital":["Tokyo"],"translations":{"fra":{"common":"Japon"}}},
			{"cca2":"AQ","cca3":"ATA","name":{"common":"Antarctica"},"capital":[],"translations":{"kor":{"common":"남극"}}}
		]`)
	}))
	loader := NewLoader(client)

	cat, err := loader.LoadCatalog(context.Background(), "kor")
	if err != nil {
		t.Fatalf("LoadCatalog returned error: %v", err)
	}
	if cat.Language != "kor" || len(cat.Countries) != 1 || cat.Countries[0].CCA2 != "KR" {
		t.Fatalf("unexpected catalog %+v", cat)
	}
	if cat.FetchedAt.IsZero() {
		t.Fatalf("expected a fetch timestamp")
	}
}
