package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/sadonamonday/crtvsite/pkg/logging"
)

const (
	DefaultDescription = "A professional studio session tailored to your project."
	DefaultPriceText   = "Price on request"
	DefaultPriceType   = "fixed"
	placeholderName    = "Studio Service"
)

// DefaultIncludes is used when a record lists no inclusions.
var DefaultIncludes = []string{"Professional equipment and crew", "Edited digital delivery"}

var (
	ErrUnexpectedShape = errors.New("catalog: unexpected response shape")
	ErrUnsuccessful    = errors.New("catalog: response reported success=false")
	ErrEmptyCatalog    = errors.New("catalog: no services in response")
	ErrInvalidRecord   = errors.New("catalog: record is not an object")
)

var includesSplitter = regexp.MustCompile(`[,|\n]`)

// Options control per-field fallbacks during normalization.
type Options struct {
	// BaseURL is the API origin relative image paths resolve against.
	BaseURL string
	// PlaceholderImage is used when a record has no usable image.
	PlaceholderImage string
	// CurrencySymbol prefixes numeric prices.
	CurrencySymbol string
}

// Normalizer turns raw services-list bodies into canonical services.
type Normalizer struct {
	opts   Options
	logger *logging.Logger
}

// NewNormalizer creates a Normalizer.
func NewNormalizer(opts Options, logger *logging.Logger) *Normalizer {
	if logger == nil {
		logger = logging.Default()
	}
	return &Normalizer{opts: opts, logger: logger}
}

// Normalize accepts a bare array, {data: [...]} or {success, data: [...]}.
// Items that cannot be normalized are replaced with a placeholder so one bad
// record does not discard the batch. Ids are made unique within the result.
func (n *Normalizer) Normalize(raw json.RawMessage) ([]Service, error) {
	items, err := unwrap(raw)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCatalog
	}

	services := make([]Service, 0, len(items))
	seen := make(map[string]int, len(items))
	for i, item := range items {
		svc, err := NormalizeRecord(i, item, n.opts)
		if err != nil {
			n.logger.Warn("catalog record replaced with placeholder", "index", i, "error", err)
			svc = Placeholder(i, n.opts)
		}
		svc.ID = uniqueID(svc.ID, seen)
		services = append(services, svc)
	}
	return services, nil
}

func unwrap(raw json.RawMessage) ([]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var body any
	if err := dec.Decode(&body); err != nil {
		return nil, fmt.Errorf("catalog: decode body: %w", err)
	}

	switch v := body.(type) {
	case []any:
		return v, nil
	case map[string]any:
		if ok, present := v["success"].(bool); present && !ok {
			return nil, ErrUnsuccessful
		}
		data, ok := v["data"].([]any)
		if !ok {
			return nil, ErrUnexpectedShape
		}
		return data, nil
	default:
		return nil, ErrUnexpectedShape
	}
}

// NormalizeRecord maps one untyped record onto a Service. index is the
// record's zero-based position and seeds the generated id.
func NormalizeRecord(index int, record any, opts Options) (Service, error) {
	rec, ok := record.(map[string]any)
	if !ok {
		return Service{}, fmt.Errorf("%w: index %d has type %T", ErrInvalidRecord, index, record)
	}

	svc := Service{
		ID:          firstString(rec, "id", "slug"),
		Name:        firstString(rec, "name", "title"),
		Category:    CoerceCategory(firstString(rec, "category", "type")),
		Price:       priceText(firstValue(rec, "price", "amount"), opts.CurrencySymbol),
		PriceType:   strings.ToLower(firstString(rec, "price_type", "priceType")),
		Description: firstString(rec, "description", "desc"),
		Includes:    includesList(firstValue(rec, "includes", "included", "features")),
		Image:       ResolveImage(firstString(rec, "image", "image_url", "thumbnail"), opts.BaseURL, opts.PlaceholderImage),
	}
	if svc.ID == "" {
		svc.ID = generatedID(index)
	}
	if svc.Name == "" {
		svc.Name = placeholderName
	}
	if svc.PriceType == "" {
		svc.PriceType = DefaultPriceType
	}
	if svc.Description == "" {
		svc.Description = DefaultDescription
	}
	if len(svc.Includes) == 0 {
		svc.Includes = append([]string(nil), DefaultIncludes...)
	}
	return svc, nil
}

// Placeholder is the minimal service substituted for an unusable record.
func Placeholder(index int, opts Options) Service {
	return Service{
		ID:          generatedID(index),
		Name:        placeholderName,
		Category:    CategoryPhotography,
		Price:       DefaultPriceText,
		PriceType:   DefaultPriceType,
		Description: DefaultDescription,
		Includes:    append([]string(nil), DefaultIncludes...),
		Image:       ResolveImage("", opts.BaseURL, opts.PlaceholderImage),
	}
}

// ResolveImage returns an absolute image URL. http(s) URLs are kept,
// scheme-relative ones get https, and paths are resolved against the origin of
// baseURL. Anything unresolvable yields the placeholder.
func ResolveImage(raw, baseURL, placeholder string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return resolvePlaceholder(baseURL, placeholder)
	}
	if strings.HasPrefix(raw, "//") {
		return "https:" + raw
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return resolvePlaceholder(baseURL, placeholder)
	}
	if ref.IsAbs() {
		if (ref.Scheme == "http" || ref.Scheme == "https") && ref.Host != "" {
			return ref.String()
		}
		return resolvePlaceholder(baseURL, placeholder)
	}
	origin, ok := originOf(baseURL)
	if !ok {
		return resolvePlaceholder(baseURL, placeholder)
	}
	return origin.ResolveReference(ref).String()
}

func resolvePlaceholder(baseURL, placeholder string) string {
	ref, err := url.Parse(strings.TrimSpace(placeholder))
	if err != nil || placeholder == "" || ref.IsAbs() {
		return placeholder
	}
	origin, ok := originOf(baseURL)
	if !ok {
		return placeholder
	}
	return origin.ResolveReference(ref).String()
}

func originOf(baseURL string) (*url.URL, bool) {
	base, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, false
	}
	return &url.URL{Scheme: base.Scheme, Host: base.Host, Path: "/"}, true
}

func firstValue(rec map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := rec[k]; ok && v != nil {
			if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
				continue
			}
			return v
		}
	}
	return nil
}

func firstString(rec map[string]any, keys ...string) string {
	return stringify(firstValue(rec, keys...))
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

func priceText(v any, symbol string) string {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return t.String()
		}
		return FormatAmount(f, symbol)
	case float64:
		return FormatAmount(t, symbol)
	case string:
		if s := strings.TrimSpace(t); s != "" {
			return s
		}
	}
	return DefaultPriceText
}

// FormatAmount renders a numeric price for display, e.g. R1500 or R1499.50.
func FormatAmount(amount float64, symbol string) string {
	if amount == math.Trunc(amount) {
		return symbol + strconv.FormatFloat(amount, 'f', 0, 64)
	}
	return symbol + strconv.FormatFloat(amount, 'f', 2, 64)
}

func includesList(v any) []string {
	var parts []string
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			parts = append(parts, stringify(item))
		}
	case []string:
		parts = t
	case string:
		parts = includesSplitter.Split(t, -1)
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func generatedID(index int) string {
	return "service-" + strconv.Itoa(index+1)
}

func uniqueID(id string, seen map[string]int) string {
	seen[id]++
	if seen[id] == 1 {
		return id
	}
	for {
		candidate := id + "-" + strconv.Itoa(seen[id])
		if _, taken := seen[candidate]; !taken {
			seen[candidate] = 1
			return candidate
		}
		seen[id]++
	}
}
