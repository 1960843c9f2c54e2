package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cheatloop/storefront/internal/domain"
	"github.com/cheatloop/storefront/internal/pkg/httputil"
	"github.com/cheatloop/storefront/internal/service/catalog"
)

// ListProducts returns the catalog. Pass include_hidden=true for admin views.
func (h *Handlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	includeHidden := false
	if v := r.URL.Query().Get("include_hidden"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			httputil.BadRequest(w, "include_hidden must be a boolean")
			return
		}
		includeHidden = b
	}

	products, err := h.catalog.ListProducts(r.Context(), includeHidden)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, map[string]any{"products": products, "count": len(products)})
}

// GetProduct returns one product.
func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.GetProduct(r.Context(), chi.URLParam(r, "productId"))
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	httputil.OK(w, p)
}

// CreateProduct adds a product to the catalog.
func (h *Handlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var p domain.Product
	if !httputil.Decode(w, r, &p) {
		return
	}
	if err := h.catalog.AddProduct(r.Context(), &p); err != nil {
		writeCatalogError(w, err)
		return
	}
	httputil.Created(w, p)
}

// UpdateProduct rewrites a product.
func (h *Handlers) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var p domain.Product
	if !httputil.Decode(w, r, &p) {
		return
	}
	p.ID = chi.URLParam(r, "productId")
	if err := h.catalog.UpdateProduct(r.Context(), &p); err != nil {
		writeCatalogError(w, err)
		return
	}
	httputil.OK(w, p)
}

// DeleteProduct removes a product. Its keys cascade away with it.
func (h *Handlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteProduct(r.Context(), chi.URLParam(r, "productId")); err != nil {
		writeCatalogError(w, err)
		return
	}
	httputil.NoContent(w)
}

// ListCategories returns all categories.
func (h *Handlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, map[string]any{"categories": categories, "count": len(categories)})
}

type createCategoryRequest struct {
	Name string `json:"name"`
}

// CreateCategory adds a category; the slug is derived from the name.
func (h *Handlers) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	c, err := h.catalog.AddCategory(r.Context(), req.Name)
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	httputil.Created(w, c)
}

// DeleteCategory removes a category.
func (h *Handlers) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteCategory(r.Context(), chi.URLParam(r, "categoryId")); err != nil {
		writeCatalogError(w, err)
		return
	}
	httputil.NoContent(w)
}

// GetSettings returns all site settings.
func (h *Handlers) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.catalog.GetSettings(r.Context())
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, settings)
}

type updateSettingsRequest struct {
	Settings []domain.SiteSetting `json:"settings"`
}

// UpdateSettings upserts site settings.
func (h *Handlers) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req updateSettingsRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if len(req.Settings) == 0 {
		httputil.BadRequest(w, "settings is required")
		return
	}
	if err := h.catalog.UpdateSettings(r.Context(), req.Settings); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	httputil.NoContent(w)
}

func writeCatalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrProductNotFound):
		httputil.NotFound(w, "product not found")
	case errors.Is(err, catalog.ErrCategoryNotFound):
		httputil.NotFound(w, "category not found")
	case errors.Is(err, catalog.ErrInvalid):
		httputil.BadRequest(w, err.Error())
	default:
		httputil.InternalError(w, err)
	}
}
