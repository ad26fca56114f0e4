package catalog

import (
	"fmt"
	"os"
)

// DefaultFallback is the built-in static catalog served when the remote list
// cannot be used.
func DefaultFallback() []Service {
	return []Service{
		{
			ID:          "wedding-photo",
			Name:        "Wedding Photography",
			Category:    CategoryPhotography,
			Price:       "R8500",
			PriceType:   "fixed",
			Description: "Full-day coverage of your ceremony and reception.",
			Includes:    []string{"8 hours coverage", "Online gallery", "300+ edited images"},
			Image:       "/images/services/wedding-photo.jpg",
		},
		{
			ID:          "portrait-session",
			Name:        "Portrait Session",
			Category:    CategoryPhotography,
			Price:       "R950",
			PriceType:   "hourly",
			Description: "Studio or on-location portraits for individuals and families.",
			Includes:    []string{"Studio lighting", "15 edited images"},
			Image:       "/images/services/portrait.jpg",
		},
		{
			ID:          "event-video",
			Name:        "Event Videography",
			Category:    CategoryVideography,
			Price:       "R1200",
			PriceType:   "hourly",
			Description: "Multi-camera coverage of corporate and private events.",
			Includes:    []string{"Two camera operators", "Highlight reel"},
			Image:       "/images/services/event-video.jpg",
		},
		{
			ID:          "music-video",
			Name:        "Music Video Production",
			Category:    CategoryVideography,
			Price:       "R6000",
			PriceType:   "fixed",
			Description: "Concept, shoot and edit for a single track.",
			Includes:    []string{"Creative treatment", "Colour grade", "4K master"},
			Image:       "/images/services/music-video.jpg",
		},
		{
			ID:          "wedding-combo",
			Name:        "Wedding Photo & Video",
			Category:    CategoryCombo,
			Price:       "R14000",
			PriceType:   "fixed",
			Description: "Photography and film for the whole day from one team.",
			Includes:    []string{"Full-day photo coverage", "Cinematic highlight film", "Online gallery"},
			Image:       "/images/services/wedding-combo.jpg",
		},
		{
			ID:          "brand-content",
			Name:        "Brand Content Package",
			Category:    CategoryCombo,
			Price:       "R4500",
			PriceType:   "fixed",
			Description: "Product stills and short-form video for social channels.",
			Includes:    []string{"20 product images", "3 short videos"},
			Image:       "/images/services/brand-content.jpg",
		},
	}
}

// LoadFallbackFile reads a JSON services list from path and normalizes it the
// same way a remote response is normalized.
func LoadFallbackFile(path string, n *Normalizer) ([]Service, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read fallback file: %w", err)
	}
	services, err := n.Normalize(data)
	if err != nil {
		return nil, fmt.Errorf("catalog: fallback file %s: %w", path, err)
	}
	return services, nil
}

// ResolveImages returns a copy of services with image paths made absolute.
func ResolveImages(services []Service, opts Options) []Service {
	out := cloneServices(services)
	for i := range out {
		out[i].Image = ResolveImage(out[i].Image, opts.BaseURL, opts.PlaceholderImage)
	}
	return out
}
