package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/i474232898/krishimitra-sync/internal/domain"
)

const userAgent = "KrishiMitraSync/1.0" // Required by Nominatim ToS

// Nominatim geocodes through an OpenStreetMap Nominatim search endpoint.
type Nominatim struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewNominatim creates a geocoder for baseURL. A nil client gets a 10s timeout.
func NewNominatim(baseURL string, client *http.Client) *Nominatim {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	// Nominatim allows 1 req/sec.
	return &Nominatim{baseURL: baseURL, httpClient: client, limiter: rate.NewLimiter(rate.Every(time.Second), 1)}
}

type nominatimResponse struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocode resolves place to the first matching coordinate in India.
func (g *Nominatim) Geocode(ctx context.Context, place string) (domain.Coordinate, error) {
	place = strings.TrimSpace(place)
	if place == "" {
		return domain.Coordinate{}, fmt.Errorf("place cannot be empty")
	}

	params := url.Values{}
	params.Add("format", "json")
	params.Add("limit", "1")
	params.Add("countrycodes", "in")
	params.Add("q", place)
	reqURL := fmt.Sprintf("%s?%s", g.baseURL, params.Encode())

	if err := g.limiter.Wait(ctx); err != nil {
		return domain.Coordinate{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Coordinate{}, fmt.Errorf("nominatim API returned status %d", resp.StatusCode)
	}

	var results []nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return domain.Coordinate{}, fmt.Errorf("decoding response: %w", err)
	}
	if len(results) == 0 {
		return domain.Coordinate{}, fmt.Errorf("%w for %q", ErrNoResult, place)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("parsing latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("parsing longitude: %w", err)
	}
	return domain.Coordinate{Lat: lat, Lon: lon}, nil
}
