package handlers

import (
	"net/http"

	"flowbuilder/application/queries"
	"flowbuilder/application/queries/bus"
	"flowbuilder/pkg/common"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CatalogHandler serves the static catalogs: report templates and per-kind
// config field schemas. Both are immutable, so the query bus cache layer
// makes repeat reads free.
type CatalogHandler struct {
	queryBus *bus.QueryBus
	logger   *zap.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(queryBus *bus.QueryBus, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		queryBus: queryBus,
		logger:   logger,
	}
}

// ListTemplates processes GET /api/v1/templates
func (h *CatalogHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.ListTemplatesQuery{})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// ListSchemas processes GET /api/v1/schemas
func (h *CatalogHandler) ListSchemas(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.ListSchemasQuery{})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// GetSchema processes GET /api/v1/schemas/{kind}
func (h *CatalogHandler) GetSchema(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")

	result, err := h.queryBus.Ask(r.Context(), queries.GetSchemaQuery{Kind: kind})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}
