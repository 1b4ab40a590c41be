// Package restcountries fetches the country list from the REST Countries API.
package restcountries

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/tg383520/geo-quiz/internal/domain"
)

const (
	DefaultBaseURL = "https://restcountries.com/v3.1"
	fields         = "name,capital,flags,cca2,cca3,translations,altSpellings"
)

// Client talks to a REST Countries compatible endpoint.
type Client struct {
	http    *http.Client
	baseURL string
}

// NewClient returns a client for baseURL. Empty values fall back to the
// public endpoint and http.DefaultClient.
func NewClient(httpClient *http.Client, baseURL string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{http: httpClient, baseURL: strings.TrimRight(baseURL, "/")}
}

// FetchAll downloads every country with the fields the quiz needs.
func (c *Client) FetchAll(ctx context.Context) ([]domain.Country, error) {
	reqURL := c.baseURL + "/all?fields=" + url.QueryEscape(fields)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch countries: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("restcountries returned status %d", resp.StatusCode)
	}

	var countries []domain.Country
	if err := json.NewDecoder(resp.Body).Decode(&countries); err != nil {
		return nil, fmt.Errorf("decode countries: %w", err)
	}
	return countries, nil
}
