package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/sadonamonday/crtvsite/internal/catalog"
	"github.com/sadonamonday/crtvsite/pkg/logging"
)

// CatalogLoader returns the current service catalog. It never fails.
type CatalogLoader interface {
	Load(ctx context.Context) catalog.Catalog
}

var catalogFilters = map[string]bool{
	catalog.FilterAll:                   true,
	string(catalog.CategoryPhotography): true,
	string(catalog.CategoryVideography): true,
	string(catalog.CategoryCombo):       true,
}

// CatalogHandler serves the normalized service list.
type CatalogHandler struct {
	loader CatalogLoader
	logger *logging.Logger
}

func NewCatalogHandler(loader CatalogLoader, logger *logging.Logger) *CatalogHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &CatalogHandler{loader: loader, logger: logger}
}

type catalogResponse struct {
	Category string            `json:"category"`
	Source   catalog.Source    `json:"source"`
	Warning  string            `json:"warning,omitempty"`
	Services []catalog.Service `json:"services"`
}

// List returns the catalog, optionally filtered by category.
// GET /api/catalog?category=
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	category := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("category")))
	if category == "" {
		category = catalog.FilterAll
	}
	if !catalogFilters[category] {
		jsonError(w, "unknown category", http.StatusBadRequest)
		return
	}

	cat := h.loader.Load(r.Context())
	writeJSON(w, http.StatusOK, catalogResponse{
		Category: category,
		Source:   cat.Source,
		Warning:  cat.Warning,
		Services: cat.Filter(category),
	})
}
