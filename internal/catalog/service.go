// Package catalog loads the studio's bookable services from the remote API
// and coerces each loosely typed record into a canonical Service. Any failure
// degrades to a configured static fallback catalog.
package catalog

import "strings"

// Category is the canonical service category.
type Category string

const (
	CategoryPhotography Category = "photography"
	CategoryVideography Category = "videography"
	CategoryCombo       Category = "combo"
)

// FilterAll selects every category.
const FilterAll = "all"

// Service is a canonical catalog entry. Values are immutable once loaded.
type Service struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    Category `json:"category"`
	Price       string   `json:"price"`
	PriceType   string   `json:"price_type"`
	Description string   `json:"description"`
	Includes    []string `json:"includes"`
	Image       string   `json:"image"`
}

// IsHourly reports whether the service is priced per hour. It only affects
// presentation; totals are computed by the server.
func (s Service) IsHourly() bool {
	return s.PriceType == "hourly"
}

// Source says where a loaded catalog came from.
type Source string

const (
	SourceRemote   Source = "remote"
	SourceCache    Source = "cache"
	SourceFallback Source = "fallback"
)

// Catalog is the result of a load. Services is never empty.
type Catalog struct {
	Services []Service `json:"services"`
	Source   Source    `json:"source"`
	// Warning is set when the static fallback was served.
	Warning string `json:"warning,omitempty"`
}

// Find returns the service with the given id.
func (c Catalog) Find(id string) (Service, bool) {
	for _, s := range c.Services {
		if s.ID == id {
			return cloneService(s), true
		}
	}
	return Service{}, false
}

// Filter returns services in the given category; "all" or "" returns every
// service. Unknown categories (including "custom") match nothing.
func (c Catalog) Filter(category string) []Service {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" || category == FilterAll {
		return cloneServices(c.Services)
	}
	out := make([]Service, 0, len(c.Services))
	for _, s := range c.Services {
		if string(s.Category) == category {
			out = append(out, cloneService(s))
		}
	}
	return out
}

// CoerceCategory maps free text onto a Category by substring matching.
// Unrecognized input is photography.
func CoerceCategory(raw string) Category {
	v := strings.ToLower(raw)
	hasPhoto := strings.Contains(v, "photo")
	hasVideo := strings.Contains(v, "video")
	switch {
	case strings.Contains(v, "combo"), hasPhoto && hasVideo:
		return CategoryCombo
	case hasVideo:
		return CategoryVideography
	default:
		return CategoryPhotography
	}
}

func cloneService(s Service) Service {
	s.Includes = append([]string(nil), s.Includes...)
	return s
}

func cloneServices(in []Service) []Service {
	out := make([]Service, len(in))
	for i, s := range in {
		out[i] = cloneService(s)
	}
	return out
}
