package http

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/celtis-pos/internal/i18n"
	"github.com/odyssey-erp/celtis-pos/internal/navigation"
	"github.com/odyssey-erp/celtis-pos/internal/pos"
	"github.com/odyssey-erp/celtis-pos/internal/view"
)

var navLabels = map[navigation.Route]string{
	navigation.RouteSell:    "navSell",
	navigation.RouteParked:  "navParked",
	navigation.RouteHistory: "navHistory",
}

func (h *Handler) navLinks(current navigation.Route) []view.NavLink {
	l := h.locale()
	var leavePrompt string
	if h.sales.HasActiveItems() {
		prompt := navigation.LeaveSalePrompt(localeTranslator(l))
		leavePrompt = prompt.Title + "\n" + prompt.Message
	}
	links := make([]view.NavLink, 0, len(navLabels))
	for _, route := range navigation.Routes() {
		link := view.NavLink{
			Path:   string(route),
			Label:  h.t(navLabels[route], nil),
			Active: route == current,
		}
		if navigation.LeavesOpenSale(h.sales, current, route) {
			link.Confirm = leavePrompt
		}
		links = append(links, link)
	}
	return links
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, route navigation.Route, name, titleKey string, data any) {
	l := h.locale()
	td := view.TemplateData{
		Title:       h.t(titleKey, nil),
		Locale:      string(l),
		Dir:         string(l.Dir()),
		CurrentPath: string(route),
		Nav:         h.navLinks(route),
		Toasts:      h.toasts.List(),
		Data:        data,
		T:           func(key string) string { return i18n.Translate(l, key, nil) },
		Money:       h.formatMoney,
	}
	if err := h.templates.Render(w, name, td); err != nil {
		h.logger.Error("render template", slog.String("template", name), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) redirectHome(w http.ResponseWriter, r *http.Request) {
	redirect(w, r, string(navigation.RouteSell))
}

func (h *Handler) showSell(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, navigation.RouteSell, "sell", "navSell", h.buildSellView())
}

func (h *Handler) showParked(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, navigation.RouteParked, "parked", "navParked", h.buildParkedView())
}

func (h *Handler) showHistory(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, navigation.RouteHistory, "history", "navHistory", h.buildHistoryView())
}

func (h *Handler) backToSell(w http.ResponseWriter, r *http.Request) {
	redirect(w, r, string(navigation.RouteSell))
}

func (h *Handler) submitAddLine(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	product, ok := h.catalog.Product(r.PostForm.Get("productId"))
	if !ok {
		http.Error(w, "unknown product", http.StatusNotFound)
		return
	}
	mods, err := resolveModifiers(product, r.PostForm["addon"])
	if err != nil {
		http.Error(w, "unknown addon", http.StatusBadRequest)
		return
	}
	h.sales.AddLine(r.Context(), product, mods)
	h.backToSell(w, r)
}

func (h *Handler) submitQuantity(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	qty, err := strconv.ParseFloat(strings.TrimSpace(r.PostForm.Get("qty")), 64)
	if err != nil {
		// leave the line alone; the browser resubmits on the next change
		h.backToSell(w, r)
		return
	}
	h.sales.SetLineQuantity(r.Context(), chi.URLParam(r, "lineID"), qty)
	h.backToSell(w, r)
}

func (h *Handler) submitRemoveLine(w http.ResponseWriter, r *http.Request) {
	h.sales.RemoveLine(r.Context(), chi.URLParam(r, "lineID"))
	h.backToSell(w, r)
}

func (h *Handler) submitNote(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	h.sales.SetNote(r.Context(), r.PostForm.Get("note"))
	h.backToSell(w, r)
}

func (h *Handler) submitPark(w http.ResponseWriter, r *http.Request) {
	if !h.sales.ParkActiveSale(r.Context()) {
		h.toasts.Danger(h.t("nothingToPark", nil))
		h.backToSell(w, r)
		return
	}
	h.toasts.Success(h.t("saleParked", nil))
	redirect(w, r, string(navigation.RouteParked))
}

func (h *Handler) submitPay(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	method := pos.PaymentMethod(r.PostForm.Get("method"))
	if !method.Valid() {
		http.Error(w, "unknown payment method", http.StatusBadRequest)
		return
	}
	paid, ok := h.sales.PayActiveSale(r.Context(), method)
	if !ok {
		h.toasts.Danger(h.t("nothingToPay", nil))
		h.backToSell(w, r)
		return
	}
	h.toasts.Success(h.t("salePaid", i18n.Vars{"amount": h.formatMoney(paid.Payment.AmountCents)}))
	h.backToSell(w, r)
}

func (h *Handler) submitNewSale(w http.ResponseWriter, r *http.Request) {
	h.sales.StartNewSale(r.Context())
	h.backToSell(w, r)
}

func (h *Handler) submitClear(w http.ResponseWriter, r *http.Request) {
	h.sales.ClearAllData(r.Context())
	h.toasts.Show(h.t("dataCleared", nil))
	h.backToSell(w, r)
}

func (h *Handler) submitResetCatalog(w http.ResponseWriter, r *http.Request) {
	h.catalog.ResetToDefault(r.Context())
	h.toasts.Success(h.t("catalogReset", nil))
	h.backToSell(w, r)
}

func (h *Handler) submitResume(w http.ResponseWriter, r *http.Request) {
	saleID := chi.URLParam(r, "saleID")
	if _, ok := h.sales.Draft(saleID); !ok {
		redirect(w, r, string(navigation.RouteParked))
		return
	}
	h.sales.ResumeDraft(r.Context(), saleID)
	h.toasts.Success(h.t("draftResumed", nil))
	h.backToSell(w, r)
}

func (h *Handler) submitDeleteDraft(w http.ResponseWriter, r *http.Request) {
	saleID := chi.URLParam(r, "saleID")
	if _, ok := h.sales.Draft(saleID); ok {
		h.sales.DeleteDraft(r.Context(), saleID)
		h.toasts.Show(h.t("draftDeleted", nil))
	}
	redirect(w, r, string(navigation.RouteParked))
}

func (h *Handler) submitLocale(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	if h.translator != nil {
		if err := h.translator.SetLocale(r.Context(), i18n.Locale(r.PostForm.Get("locale"))); err != nil {
			h.logger.Warn("locale switch rejected", slog.Any("error", err))
		}
	}
	back, err := navigation.Resolve(r.PostForm.Get("return"))
	if err != nil {
		back = navigation.RouteSell
	}
	redirect(w, r, string(back))
}

func (h *Handler) submitDismissToast(w http.ResponseWriter, r *http.Request) {
	h.toasts.Dismiss(chi.URLParam(r, "toastID"))
	back := navigation.RouteSell
	if ref, err := url.Parse(r.Header.Get("Referer")); err == nil && ref.Path != "" {
		if route, err := navigation.Resolve(ref.Path); err == nil {
			back = route
		}
	}
	redirect(w, r, string(back))
}
