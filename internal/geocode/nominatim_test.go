package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestParseNominatimItems(t *testing.T) {
	items := []nominatimItem{
		{
			DisplayName: "幸福路, 朝阳区, 北京市",
			Address:     nominatimAddress{Suburb: "朝阳区", Road: "幸福路"},
		},
	}
	res, err := parseNominatimItems(items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.District != "朝阳区" || res.Street != "幸福路" {
		t.Fatalf("unexpected place: %+v", res)
	}
}

func TestParseNominatimItemsPrefersCityDistrict(t *testing.T) {
	items := []nominatimItem{{Address: nominatimAddress{CityDistrict: "东城区", Suburb: "东华门街道"}}}
	res, err := parseNominatimItems(items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.District != "东城区" {
		t.Fatalf("unexpected district: %s", res.District)
	}
}

func TestParseNominatimItemsEmpty(t *testing.T) {
	if _, err := parseNominatimItems(nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResolveAgainstServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" || r.URL.Query().Get("q") != "北京市 幸福路" {
			t.Errorf("unexpected request: %s", r.URL)
		}
		if r.Header.Get("User-Agent") != "hotline-test" {
			t.Errorf("unexpected user agent: %s", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"display_name":"幸福路","address":{"district":"朝阳区","road":"幸福路"}}]`))
	}))
	defer srv.Close()

	g := &NominatimGeocoder{BaseURL: srv.URL, UserAgent: "hotline-test", MinInterval: time.Millisecond}
	place, err := g.Resolve(context.Background(), BuildGeocodeQuery("北京市", "幸福路"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if place.District != "朝阳区" || place.Street != "幸福路" {
		t.Fatalf("unexpected place: %+v", place)
	}
}

func TestResolveHonoursContextWhileThrottled(t *testing.T) {
	g := &NominatimGeocoder{BaseURL: "http://127.0.0.1:1", MinInterval: time.Hour}
	g.lastReqAt = time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := g.Resolve(ctx, "幸福路"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
