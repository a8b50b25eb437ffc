// Package geocode turns free-text addresses into coordinates using a
// Nominatim-compatible service, and debounces as-you-type lookups.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// MaxResults caps the suggestions returned for a query.
const MaxResults = 5

const userAgent = "invaders-client/1.0"

type Suggestion struct {
	DisplayName string
	Lat         float64
	Lon         float64
}

type nominatimPlace struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

type Client struct {
	baseURL string
	hc      *http.Client
}

// NewClient queries the service rooted at baseURL. hc may be nil.
func NewClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), hc: hc}
}

// Search returns up to MaxResults places for query, unique by display name
// and in the service's ranking order. A blank query makes no request.
func (c *Client) Search(ctx context.Context, query string) ([]Suggestion, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	q := url.Values{
		"format": {"json"},
		"q":      {query},
		"limit":  {strconv.Itoa(MaxResults)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	// Nominatim's usage policy asks for an identifying agent
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("geocode failed: %s; body: %s", resp.Status, string(b))
	}

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, fmt.Errorf("decode geocode response: %w", err)
	}

	return dedupe(places), nil
}

func dedupe(places []nominatimPlace) []Suggestion {
	seen := make(map[string]struct{}, len(places))
	out := make([]Suggestion, 0, min(len(places), MaxResults))

	for _, p := range places {
		if len(out) == MaxResults {
			break
		}
		if _, dup := seen[p.DisplayName]; dup {
			continue
		}
		lat, err := strconv.ParseFloat(p.Lat, 64)
		if err != nil {
			continue
		}
		lon, err := strconv.ParseFloat(p.Lon, 64)
		if err != nil {
			continue
		}
		seen[p.DisplayName] = struct{}{}
		out = append(out, Suggestion{DisplayName: p.DisplayName, Lat: lat, Lon: lon})
	}
	return out
}
