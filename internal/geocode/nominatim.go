package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"carpool/internal/domain"
)

const DefaultNominatimEndpoint = "https://nominatim.openstreetmap.org"

// NominatimClient geocodes place names against an OpenStreetMap Nominatim server.
type NominatimClient struct {
	Endpoint    string
	UserAgent   string
	CountryCode string
	Client      *http.Client
}

// NewNominatimClient creates a client restricted to countryCode (empty for worldwide).
func NewNominatimClient(endpoint, userAgent, countryCode string) *NominatimClient {
	if endpoint == "" {
		endpoint = DefaultNominatimEndpoint
	}
	return &NominatimClient{
		Endpoint:    endpoint,
		UserAgent:   userAgent,
		CountryCode: countryCode,
		Client:      &http.Client{Timeout: 5 * time.Second},
	}
}

// Geocode returns the best match for place. found is false when Nominatim
// has no result.
func (n *NominatimClient) Geocode(ctx context.Context, place string) (domain.Coordinate, bool, error) {
	q := url.Values{}
	q.Set("q", place)
	q.Set("format", "jsonv2")
	q.Set("limit", "1")
	if n.CountryCode != "" {
		q.Set("countrycodes", n.CountryCode)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.Endpoint+"/search?"+q.Encode(), nil)
	if err != nil {
		return domain.Coordinate{}, false, err
	}
	if n.UserAgent != "" {
		req.Header.Set("User-Agent", n.UserAgent)
	}

	resp, err := n.Client.Do(req)
	if err != nil {
		return domain.Coordinate{}, false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Coordinate{}, false, fmt.Errorf("nominatim status %d", resp.StatusCode)
	}

	var out []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.Coordinate{}, false, err
	}
	if len(out) == 0 {
		return domain.Coordinate{}, false, nil
	}

	lat, err := strconv.ParseFloat(out[0].Lat, 64)
	if err != nil {
		return domain.Coordinate{}, false, fmt.Errorf("nominatim lat: %w", err)
	}
	lng, err := strconv.ParseFloat(out[0].Lon, 64)
	if err != nil {
		return domain.Coordinate{}, false, fmt.Errorf("nominatim lon: %w", err)
	}
	return domain.Coordinate{Lat: lat, Lng: lng}, true, nil
}
