// Package http serves the register: a JSON API under /api and the
// server-rendered sell, parked and history screens.
package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/celtis-pos/internal/catalog"
	"github.com/odyssey-erp/celtis-pos/internal/i18n"
	"github.com/odyssey-erp/celtis-pos/internal/money"
	"github.com/odyssey-erp/celtis-pos/internal/platform/httpx"
	"github.com/odyssey-erp/celtis-pos/internal/pos"
	"github.com/odyssey-erp/celtis-pos/internal/toast"
	"github.com/odyssey-erp/celtis-pos/internal/view"
)

// Deps groups the collaborators of Handler.
type Deps struct {
	Logger     *slog.Logger
	Sales      *pos.Store
	Catalog    *catalog.Store
	Translator *i18n.Translator
	Toasts     *toast.Center
	Templates  *view.Engine
	Currency   string
}

// Handler wires register endpoints.
type Handler struct {
	logger     *slog.Logger
	sales      *pos.Store
	catalog    *catalog.Store
	translator *i18n.Translator
	toasts     *toast.Center
	templates  *view.Engine
	currency   string
	binder     *httpx.Binder
}

// NewHandler builds Handler instance.
func NewHandler(deps Deps) *Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	currency := deps.Currency
	if currency == "" {
		currency = money.DefaultCurrency
	}
	toasts := deps.Toasts
	if toasts == nil {
		toasts = toast.NewCenter()
	}
	return &Handler{
		logger:     logger,
		sales:      deps.Sales,
		catalog:    deps.Catalog,
		translator: deps.Translator,
		toasts:     toasts,
		templates:  deps.Templates,
		currency:   currency,
		binder:     httpx.NewBinder(),
	}
}

// MountRoutes registers the screens and their form actions.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.redirectHome)
	r.Get("/sell", h.showSell)
	r.Get("/parked", h.showParked)
	r.Get("/history", h.showHistory)

	r.Route("/sell", func(r chi.Router) {
		r.Post("/lines", h.submitAddLine)
		r.Post("/lines/{lineID}/qty", h.submitQuantity)
		r.Post("/lines/{lineID}/remove", h.submitRemoveLine)
		r.Post("/note", h.submitNote)
		r.Post("/park", h.submitPark)
		r.Post("/pay", h.submitPay)
		r.Post("/new", h.submitNewSale)
		r.Post("/clear", h.submitClear)
		r.Post("/catalog/reset", h.submitResetCatalog)
	})
	r.Post("/parked/{saleID}/resume", h.submitResume)
	r.Post("/parked/{saleID}/delete", h.submitDeleteDraft)
	r.Post("/locale", h.submitLocale)
	r.Post("/toasts/{toastID}/dismiss", h.submitDismissToast)
}

// MountAPI registers the JSON endpoints.
func (h *Handler) MountAPI(r chi.Router) {
	r.Get("/sale", h.getSale)
	r.Post("/sale/lines", h.addLine)
	r.Patch("/sale/lines/{lineID}", h.setQuantity)
	r.Delete("/sale/lines/{lineID}", h.removeLine)
	r.Put("/sale/note", h.setNote)
	r.Post("/sale/new", h.startNewSale)
	r.Post("/sale/park", h.park)
	r.Post("/sale/pay", h.pay)

	r.Get("/drafts", h.listDrafts)
	r.Get("/drafts/{saleID}", h.getDraft)
	r.Post("/drafts/{saleID}/resume", h.resumeDraft)
	r.Delete("/drafts/{saleID}", h.deleteDraft)

	r.Get("/history", h.listHistory)
	r.Post("/reset", h.clearAll)

	r.Get("/i18n", h.getBundle)
	r.Put("/locale", h.setLocale)

	r.Get("/toasts", h.listToasts)
	r.Delete("/toasts/{toastID}", h.dismissToast)
}

func (h *Handler) locale() i18n.Locale {
	if h.translator == nil {
		return i18n.DefaultLocale
	}
	return h.translator.Locale()
}

func (h *Handler) t(key string, vars i18n.Vars) string {
	return i18n.Translate(h.locale(), key, vars)
}

func (h *Handler) formatMoney(cents int64) string {
	return money.Format(cents, string(h.locale()), h.currency)
}

func redirect(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusSeeOther)
}
