package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// NominatimGeocoder resolves free text with the OpenStreetMap Nominatim search
// API. Requests are spaced MinInterval apart as the public instance requires.
type NominatimGeocoder struct {
	BaseURL     string
	UserAgent   string
	Language    string
	MinInterval time.Duration
	Client      *http.Client

	mu        sync.Mutex
	lastReqAt time.Time
}

type nominatimItem struct {
	DisplayName string           `json:"display_name"`
	Address     nominatimAddress `json:"address"`
}

type nominatimAddress struct {
	CityDistrict  string `json:"city_district"`
	District      string `json:"district"`
	Suburb        string `json:"suburb"`
	County        string `json:"county"`
	Road          string `json:"road"`
	Pedestrian    string `json:"pedestrian"`
	Neighbourhood string `json:"neighbourhood"`
}

func (g *NominatimGeocoder) Resolve(ctx context.Context, query string) (Place, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Place{}, ErrNotFound
	}
	if g.Client == nil {
		g.Client = &http.Client{Timeout: 10 * time.Second}
	}
	if g.BaseURL == "" {
		g.BaseURL = "https://nominatim.openstreetmap.org"
	}
	if g.UserAgent == "" {
		g.UserAgent = "govhotline-backend"
	}
	if g.Language == "" {
		g.Language = "zh-CN"
	}
	if g.MinInterval <= 0 {
		g.MinInterval = time.Second
	}

	if err := g.wait(ctx); err != nil {
		return Place{}, err
	}

	endpoint := fmt.Sprintf("%s/search?q=%s&format=json&addressdetails=1&limit=1&accept-language=%s",
		strings.TrimRight(g.BaseURL, "/"), url.QueryEscape(query), url.QueryEscape(g.Language))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Place{}, err
	}
	req.Header.Set("User-Agent", g.UserAgent)

	resp, err := g.Client.Do(req)
	if err != nil {
		return Place{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Place{}, fmt.Errorf("nominatim http error: %s", resp.Status)
	}

	var items []nominatimItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return Place{}, err
	}
	return parseNominatimItems(items)
}

// wait reserves the next request slot, giving up when ctx ends first.
func (g *NominatimGeocoder) wait(ctx context.Context) error {
	g.mu.Lock()
	next := g.lastReqAt.Add(g.MinInterval)
	now := time.Now()
	if next.Before(now) {
		next = now
	}
	g.lastReqAt = next
	g.mu.Unlock()

	delay := time.Until(next)
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func parseNominatimItems(items []nominatimItem) (Place, error) {
	if len(items) == 0 {
		return Place{}, ErrNotFound
	}
	a := items[0].Address
	place := Place{
		District:    firstNonEmpty(a.CityDistrict, a.District, a.Suburb, a.County),
		Street:      firstNonEmpty(a.Road, a.Pedestrian, a.Neighbourhood),
		DisplayName: items[0].DisplayName,
	}
	if place.District == "" && place.Street == "" && place.DisplayName == "" {
		return Place{}, ErrNotFound
	}
	return place, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
