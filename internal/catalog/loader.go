package catalog

import (
	"context"
	"encoding/json"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/sadonamonday/crtvsite/pkg/logging"
)

var catalogTracer = otel.Tracer("crtvsite.internal.catalog")

const fallbackWarning = "Live service list is unavailable; showing our standard services."

// Fetcher reads the raw services list.
type Fetcher interface {
	ListServices(ctx context.Context) (json.RawMessage, error)
}

// LoadObserver receives one call per completed load.
type LoadObserver interface {
	ObserveCatalogLoad(source string)
}

// LoaderConfig wires optional collaborators into a Loader.
type LoaderConfig struct {
	Options Options
	// Fallback is served when the remote list is unusable. Empty means DefaultFallback.
	Fallback []Service
	Cache    Cache
	Observer LoadObserver
}

// Loader produces a catalog and never fails.
type Loader struct {
	fetcher    Fetcher
	normalizer *Normalizer
	fallback   []Service
	cache      Cache
	observer   LoadObserver
	logger     *logging.Logger
}

// NewLoader creates a Loader. fetcher may be nil, in which case every load
// serves the fallback.
func NewLoader(fetcher Fetcher, cfg LoaderConfig, logger *logging.Logger) *Loader {
	if logger == nil {
		logger = logging.Default()
	}
	fallback := cfg.Fallback
	if len(fallback) == 0 {
		fallback = DefaultFallback()
	}
	return &Loader{
		fetcher:    fetcher,
		normalizer: NewNormalizer(cfg.Options, logger),
		fallback:   ResolveImages(fallback, cfg.Options),
		cache:      cfg.Cache,
		observer:   cfg.Observer,
		logger:     logger,
	}
}

// Load returns a fresh cached catalog, else the normalized remote catalog,
// else the static fallback. Cancelling ctx abandons the remote read.
func (l *Loader) Load(ctx context.Context) Catalog {
	ctx, span := catalogTracer.Start(ctx, "catalog.load")
	defer span.End()

	cat := l.load(ctx)
	span.SetAttributes(
		attribute.String("crtv.catalog.source", string(cat.Source)),
		attribute.Int("crtv.catalog.size", len(cat.Services)),
	)
	if cat.Source == SourceFallback {
		span.SetStatus(codes.Error, "fallback catalog served")
	}
	if l.observer != nil {
		l.observer.ObserveCatalogLoad(string(cat.Source))
	}
	return cat
}

func (l *Loader) load(ctx context.Context) Catalog {
	if l.cache != nil {
		services, ok, err := l.cache.Get(ctx)
		if err != nil {
			l.logger.Warn("catalog cache read failed", "error", err)
		}
		if ok {
			return Catalog{Services: services, Source: SourceCache}
		}
	}

	services, err := l.fetchRemote(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			l.logger.Debug("catalog load abandoned", "error", err)
		} else {
			l.logger.Warn("catalog load failed, serving fallback", "error", err)
		}
		return Catalog{
			Services: cloneServices(l.fallback),
			Source:   SourceFallback,
			Warning:  fallbackWarning,
		}
	}

	if l.cache != nil {
		if err := l.cache.Set(ctx, services); err != nil {
			l.logger.Warn("catalog cache write failed", "error", err)
		}
	}
	return Catalog{Services: services, Source: SourceRemote}
}

func (l *Loader) fetchRemote(ctx context.Context) ([]Service, error) {
	if l.fetcher == nil {
		return nil, errors.New("catalog: no remote fetcher configured")
	}
	raw, err := l.fetcher.ListServices(ctx)
	if err != nil {
		return nil, err
	}
	return l.normalizer.Normalize(raw)
}
