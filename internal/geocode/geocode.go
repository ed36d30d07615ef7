package geocode

import (
	"context"
	"errors"
	"strings"
)

var ErrNotFound = errors.New("geocode not found")

// Place is the administrative breakdown of a free-text location.
type Place struct {
	District    string
	Street      string
	DisplayName string
}

type Resolver interface {
	Resolve(ctx context.Context, query string) (Place, error)
}

// BuildGeocodeQuery prefixes the location text with the configured city so
// that short local names ("幸福路") resolve inside the right area.
func BuildGeocodeQuery(city string, location string) string {
	city = strings.TrimSpace(city)
	location = strings.TrimSpace(location)
	switch {
	case location == "":
		return ""
	case city == "" || strings.HasPrefix(location, city):
		return location
	}
	return city + " " + location
}
