package v1

import (
	"net/http"
	"strings"
	"time"

	"storefront-backend/internal/domain"
	"storefront-backend/internal/usecase"
	"storefront-backend/pkg/cache"
	"storefront-backend/pkg/utils"
)

const rulesCacheKey = "catalog:rules"

// DiagnosticsHandler exposes how the engine sees names, images and rules.
type DiagnosticsHandler struct {
	cache     cache.CacheService
	catalogUC *usecase.CatalogUsecase
}

func NewDiagnosticsHandler(c cache.CacheService, uc *usecase.CatalogUsecase) *DiagnosticsHandler {
	return &DiagnosticsHandler{cache: c, catalogUC: uc}
}

// GET /api/v1/catalog/inspect?name=
func (h *DiagnosticsHandler) Inspect(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if strings.TrimSpace(name) == "" {
		utils.WriteError(w, http.StatusBadRequest, "name is required")
		return
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{Success: true, Data: h.catalogUC.Inspect(name)})
}

// GET /api/v1/catalog/images
func (h *DiagnosticsHandler) Images(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	utils.WriteJSON(w, http.StatusOK, domain.Response{Success: true, Data: h.catalogUC.ImageStats()})
}

// GET /api/v1/catalog/rules
// The rule set is fixed for the life of the process.
func (h *DiagnosticsHandler) Rules(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=3600")

	if val, found := h.cache.Get(rulesCacheKey); found {
		utils.WriteJSON(w, http.StatusOK, val)
		return
	}

	response := domain.Response{Success: true, Data: h.catalogUC.Rules()}
	h.cache.Set(rulesCacheKey, response, time.Hour)
	utils.WriteJSON(w, http.StatusOK, response)
}
