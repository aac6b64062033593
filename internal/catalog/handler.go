package catalog

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/celtis-pos/internal/money"
	"github.com/odyssey-erp/celtis-pos/internal/platform/httpx"
)

// Handler exposes the catalog as a JSON API.
type Handler struct {
	logger *slog.Logger
	store  *Store
	binder *httpx.Binder
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, store *Store) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, store: store, binder: httpx.NewBinder()}
}

// MountRoutes registers catalog routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/catalog", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/reset", h.reset)
		r.Post("/products", h.createProduct)
		r.Get("/products/{id}", h.showProduct)
		r.Patch("/products/{id}", h.updateProduct)
		r.Delete("/products/{id}", h.deleteProduct)
		r.Post("/products/{id}/addons", h.createAddon)
		r.Patch("/products/{id}/addons/{addonID}", h.updateAddon)
		r.Delete("/products/{id}/addons/{addonID}", h.deleteAddon)
	})
}

type productRequest struct {
	Name     string `json:"name" validate:"required,max=80"`
	SKU      string `json:"sku" validate:"max=40"`
	Price    string `json:"price" validate:"required"`
	Category string `json:"category" validate:"max=40"`
}

type productPatchRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=80"`
	SKU      *string `json:"sku" validate:"omitempty,max=40"`
	Price    *string `json:"price"`
	Category *string `json:"category" validate:"omitempty,max=40"`
}

type addonRequest struct {
	Name  string `json:"name" validate:"required,max=80"`
	Price string `json:"price" validate:"required"`
}

type addonPatchRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=80"`
	Price *string `json:"price"`
}

type categoryGroup struct {
	Name     string    `json:"name"`
	Products []Product `json:"products"`
}

type catalogResponse struct {
	Products   []Product       `json:"products"`
	Categories []categoryGroup `json:"categories"`
}

func parsePrice(field, raw string, allowNegative bool) (int64, error) {
	cents, err := money.ParseCents(raw)
	if err != nil {
		return 0, &httpx.ValidationError{Fields: map[string]string{field: "is not a valid amount"}}
	}
	if cents < 0 && !allowNegative {
		return 0, &httpx.ValidationError{Fields: map[string]string{field: "must not be negative"}}
	}
	return cents, nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	grouped := h.store.ByCategory()
	resp := catalogResponse{Products: h.store.Products()}
	for _, name := range h.store.Categories() {
		resp.Categories = append(resp.Categories, categoryGroup{Name: name, Products: grouped[name]})
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) reset(w http.ResponseWriter, r *http.Request) {
	h.store.ResetToDefault(r.Context())
	h.logger.Info("catalog reset to defaults")
	httpx.JSON(w, http.StatusOK, h.store.Products())
}

func (h *Handler) productOr404(w http.ResponseWriter, id string) (Product, bool) {
	p, ok := h.store.Product(id)
	if !ok {
		httpx.RespondError(w, fmt.Errorf("product %s: %w", id, httpx.ErrNotFound))
	}
	return p, ok
}

func (h *Handler) showProduct(w http.ResponseWriter, r *http.Request) {
	if p, ok := h.productOr404(w, chi.URLParam(r, "id")); ok {
		httpx.JSON(w, http.StatusOK, p)
	}
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := h.binder.Bind(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	cents, err := parsePrice("price", req.Price, false)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	p := h.store.AddProduct(r.Context(), NewProduct{
		Name:       req.Name,
		SKU:        req.SKU,
		PriceCents: cents,
		Category:   req.Category,
	})
	httpx.JSON(w, http.StatusCreated, p)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.productOr404(w, id); !ok {
		return
	}
	var req productPatchRequest
	if err := h.binder.Bind(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	patch := ProductPatch{Name: req.Name, SKU: req.SKU, Category: req.Category}
	if req.Price != nil {
		cents, err := parsePrice("price", *req.Price, false)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		patch.PriceCents = &cents
	}
	h.store.UpdateProduct(r.Context(), id, patch)
	h.showProduct(w, r)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.productOr404(w, id); !ok {
		return
	}
	h.store.DeleteProduct(r.Context(), id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) createAddon(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req addonRequest
	if err := h.binder.Bind(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	cents, err := parsePrice("price", req.Price, true)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	addon, ok := h.store.AddAddon(r.Context(), id, NewAddon{Name: req.Name, PriceCents: cents})
	if !ok {
		httpx.RespondError(w, fmt.Errorf("product %s: %w", id, httpx.ErrNotFound))
		return
	}
	httpx.JSON(w, http.StatusCreated, addon)
}

func (h *Handler) addonOr404(w http.ResponseWriter, productID, addonID string) bool {
	p, ok := h.productOr404(w, productID)
	if !ok {
		return false
	}
	if _, ok := p.Addon(addonID); !ok {
		httpx.RespondError(w, fmt.Errorf("addon %s: %w", addonID, httpx.ErrNotFound))
		return false
	}
	return true
}

func (h *Handler) updateAddon(w http.ResponseWriter, r *http.Request) {
	id, addonID := chi.URLParam(r, "id"), chi.URLParam(r, "addonID")
	if !h.addonOr404(w, id, addonID) {
		return
	}
	var req addonPatchRequest
	if err := h.binder.Bind(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	patch := AddonPatch{Name: req.Name}
	if req.Price != nil {
		cents, err := parsePrice("price", *req.Price, true)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		patch.PriceCents = &cents
	}
	h.store.UpdateAddon(r.Context(), id, addonID, patch)
	p, _ := h.store.Product(id)
	addon, _ := p.Addon(addonID)
	httpx.JSON(w, http.StatusOK, addon)
}

func (h *Handler) deleteAddon(w http.ResponseWriter, r *http.Request) {
	id, addonID := chi.URLParam(r, "id"), chi.URLParam(r, "addonID")
	if !h.addonOr404(w, id, addonID) {
		return
	}
	h.store.DeleteAddon(r.Context(), id, addonID)
	w.WriteHeader(http.StatusNoContent)
}
