package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/celtis-pos/internal/catalog"
	"github.com/odyssey-erp/celtis-pos/internal/i18n"
	"github.com/odyssey-erp/celtis-pos/internal/platform/httpx"
	"github.com/odyssey-erp/celtis-pos/internal/pos"
)

type addLineRequest struct {
	ProductID string   `json:"productId" validate:"required"`
	AddonIDs  []string `json:"addonIds" validate:"dive,required"`
}

type quantityRequest struct {
	Qty *float64 `json:"qty" validate:"required"`
}

type noteRequest struct {
	Note string `json:"note" validate:"max=200"`
}

type payRequest struct {
	Method string `json:"method" validate:"required,oneof=cash card"`
}

type localeRequest struct {
	Locale string `json:"locale" validate:"required,oneof=en ar"`
}

type saleResponse struct {
	Sale       pos.Sale   `json:"sale"`
	Totals     pos.Totals `json:"totals"`
	TaxRateBps int        `json:"taxRateBps"`
}

type historyResponse struct {
	Sales      []pos.Sale       `json:"sales"`
	Pagination httpx.Pagination `json:"pagination"`
}

type bundleResponse struct {
	Locale   i18n.Locale       `json:"locale"`
	Dir      i18n.Direction    `json:"dir"`
	Messages map[string]string `json:"messages"`
}

// resolveModifiers keeps catalog order and drops duplicates.
func resolveModifiers(product catalog.Product, ids []string) ([]catalog.Addon, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := product.Addon(id); !ok {
			return nil, &httpx.ValidationError{Fields: map[string]string{"addonIds": fmt.Sprintf("unknown addon %s", id)}}
		}
		wanted[id] = true
	}
	mods := make([]catalog.Addon, 0, len(wanted))
	for _, a := range product.Addons {
		if wanted[a.ID] {
			mods = append(mods, a)
		}
	}
	return mods, nil
}

func (h *Handler) activeSale() saleResponse {
	st := h.sales.Snapshot()
	return saleResponse{Sale: st.ActiveSale, Totals: st.Totals(), TaxRateBps: st.TaxRateBps}
}

func (h *Handler) getSale(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.activeSale())
}

func (h *Handler) addLine(w http.ResponseWriter, r *http.Request) {
	var req addLineRequest
	if err := h.binder.Bind(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	product, ok := h.catalog.Product(req.ProductID)
	if !ok {
		httpx.RespondError(w, fmt.Errorf("product %s: %w", req.ProductID, httpx.ErrNotFound))
		return
	}
	mods, err := resolveModifiers(product, req.AddonIDs)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.sales.AddLine(r.Context(), product, mods)
	httpx.JSON(w, http.StatusOK, h.activeSale())
}

func (h *Handler) lineOr404(w http.ResponseWriter, lineID string) bool {
	if _, ok := h.sales.ActiveSale().Line(lineID); !ok {
		httpx.RespondError(w, fmt.Errorf("line %s: %w", lineID, httpx.ErrNotFound))
		return false
	}
	return true
}

func (h *Handler) setQuantity(w http.ResponseWriter, r *http.Request) {
	lineID := chi.URLParam(r, "lineID")
	if !h.lineOr404(w, lineID) {
		return
	}
	var req quantityRequest
	if err := h.binder.Bind(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.sales.SetLineQuantity(r.Context(), lineID, *req.Qty)
	httpx.JSON(w, http.StatusOK, h.activeSale())
}

func (h *Handler) removeLine(w http.ResponseWriter, r *http.Request) {
	lineID := chi.URLParam(r, "lineID")
	if !h.lineOr404(w, lineID) {
		return
	}
	h.sales.RemoveLine(r.Context(), lineID)
	httpx.JSON(w, http.StatusOK, h.activeSale())
}

func (h *Handler) setNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := h.binder.Bind(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.sales.SetNote(r.Context(), req.Note)
	httpx.JSON(w, http.StatusOK, h.activeSale())
}

func (h *Handler) startNewSale(w http.ResponseWriter, r *http.Request) {
	h.sales.StartNewSale(r.Context())
	httpx.JSON(w, http.StatusOK, h.activeSale())
}

func (h *Handler) park(w http.ResponseWriter, r *http.Request) {
	if !h.sales.ParkActiveSale(r.Context()) {
		httpx.RespondError(w, fmt.Errorf("nothing to park: %w", httpx.ErrConflict))
		return
	}
	httpx.JSON(w, http.StatusOK, h.sales.Drafts())
}

func (h *Handler) pay(w http.ResponseWriter, r *http.Request) {
	var req payRequest
	if err := h.binder.Bind(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	paid, ok := h.sales.PayActiveSale(r.Context(), pos.PaymentMethod(req.Method))
	if !ok {
		httpx.RespondError(w, fmt.Errorf("nothing to pay: %w", httpx.ErrConflict))
		return
	}
	httpx.JSON(w, http.StatusOK, paid)
}

func (h *Handler) listDrafts(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.sales.Drafts())
}

func (h *Handler) draftOr404(w http.ResponseWriter, saleID string) (pos.Sale, bool) {
	sale, ok := h.sales.Draft(saleID)
	if !ok {
		httpx.RespondError(w, fmt.Errorf("draft %s: %w", saleID, httpx.ErrNotFound))
	}
	return sale, ok
}

func (h *Handler) getDraft(w http.ResponseWriter, r *http.Request) {
	if sale, ok := h.draftOr404(w, chi.URLParam(r, "saleID")); ok {
		httpx.JSON(w, http.StatusOK, sale)
	}
}

func (h *Handler) resumeDraft(w http.ResponseWriter, r *http.Request) {
	saleID := chi.URLParam(r, "saleID")
	if _, ok := h.draftOr404(w, saleID); !ok {
		return
	}
	h.sales.ResumeDraft(r.Context(), saleID)
	httpx.JSON(w, http.StatusOK, h.activeSale())
}

func (h *Handler) deleteDraft(w http.ResponseWriter, r *http.Request) {
	saleID := chi.URLParam(r, "saleID")
	if _, ok := h.draftOr404(w, saleID); !ok {
		return
	}
	h.sales.DeleteDraft(r.Context(), saleID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listHistory(w http.ResponseWriter, r *http.Request) {
	history := h.sales.History()
	page := httpx.PaginationFromQuery(r, len(history), pos.HistoryLimit)
	start, end := page.Bounds()
	httpx.JSON(w, http.StatusOK, historyResponse{Sales: history[start:end], Pagination: page})
}

func (h *Handler) clearAll(w http.ResponseWriter, r *http.Request) {
	h.sales.ClearAllData(r.Context())
	h.logger.Info("pos data cleared")
	httpx.JSON(w, http.StatusOK, h.activeSale())
}

// getBundle serves ?locale= when valid, then the Accept-Language match, then
// the active locale.
func (h *Handler) getBundle(w http.ResponseWriter, r *http.Request) {
	l := h.locale()
	if q, ok := i18n.Parse(r.URL.Query().Get("locale")); ok {
		l = q
	} else if accept := r.Header.Get("Accept-Language"); accept != "" {
		l = i18n.Match(accept)
	}
	httpx.JSON(w, http.StatusOK, bundleResponse{Locale: l, Dir: l.Dir(), Messages: i18n.Bundle(l)})
}

func (h *Handler) setLocale(w http.ResponseWriter, r *http.Request) {
	var req localeRequest
	if err := h.binder.Bind(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if h.translator == nil {
		httpx.RespondError(w, fmt.Errorf("translator not configured"))
		return
	}
	if err := h.translator.SetLocale(r.Context(), i18n.Locale(req.Locale)); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	l := h.translator.Locale()
	httpx.JSON(w, http.StatusOK, bundleResponse{Locale: l, Dir: l.Dir(), Messages: i18n.Bundle(l)})
}

func (h *Handler) listToasts(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.toasts.List())
}

func (h *Handler) dismissToast(w http.ResponseWriter, r *http.Request) {
	h.toasts.Dismiss(chi.URLParam(r, "toastID"))
	w.WriteHeader(http.StatusNoContent)
}
