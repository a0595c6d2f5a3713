package v1

import (
	"errors"
	"net/http"
	"strings"

	"storefront-backend/internal/domain"
	"storefront-backend/internal/usecase"
	"storefront-backend/pkg/logger"
	"storefront-backend/pkg/utils"
)

type CatalogHandler struct {
	catalogUC *usecase.CatalogUsecase
}

func NewCatalogHandler(uc *usecase.CatalogUsecase) *CatalogHandler {
	return &CatalogHandler{catalogUC: uc}
}

// GET /api/v1/products?q=&sort=&page=&limit=&store=
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	q := domain.ProductQuery{
		Query:   strings.TrimSpace(query.Get("q")),
		Sort:    query.Get("sort"),
		Page:    utils.ParseInt(query.Get("page"), 1),
		Limit:   utils.ParseInt(query.Get("limit"), 0),
		StoreID: utils.ParseInt64(query.Get("store"), 0),
	}

	groups, pagination, err := h.catalogUC.ListProducts(r.Context(), q)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, domain.Response{
		Success: true,
		Data:    groups,
		Meta:    &pagination,
	})
}

// GET /api/v1/products/{base}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	base := r.PathValue("base")
	if strings.TrimSpace(base) == "" {
		utils.WriteError(w, http.StatusBadRequest, "Product is required")
		return
	}

	group, err := h.catalogUC.GetProduct(r.Context(), base, utils.ParseInt64(r.URL.Query().Get("store"), 0))
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, domain.Response{Success: true, Data: group})
}

// GET /api/v1/stores
func (h *CatalogHandler) ListStores(w http.ResponseWriter, r *http.Request) {
	stores, err := h.catalogUC.ListStores(r.Context())
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	if stores == nil {
		stores = []domain.Store{}
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{Success: true, Data: stores})
}

// writeUsecaseError maps domain sentinels to status codes. Anything else is
// logged and reported as a 500 without its message.
func writeUsecaseError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		utils.WriteError(w, http.StatusNotFound, "Product not found")
	case errors.Is(err, domain.ErrInvalidArgument):
		utils.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrSearchDisabled):
		utils.WriteError(w, http.StatusServiceUnavailable, err.Error())
	default:
		logger.WithContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Catalog request failed")
		utils.WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}
