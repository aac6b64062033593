package http

import (
	"time"

	"github.com/odyssey-erp/celtis-pos/internal/catalog"
	"github.com/odyssey-erp/celtis-pos/internal/i18n"
	"github.com/odyssey-erp/celtis-pos/internal/money"
	"github.com/odyssey-erp/celtis-pos/internal/pos"
)

type categoryView struct {
	Name     string
	Products []catalog.Product
}

type summaryView struct {
	Totals   pos.Totals
	TaxLabel string
}

type sellView struct {
	Categories   []categoryView
	Sale         pos.Sale
	ItemsLabel   string
	Summary      summaryView
	ClearConfirm string
}

type draftRow struct {
	ID         string
	Updated    string
	ItemsLabel string
	TotalCents int64
	Note       string
}

type parkedView struct {
	Drafts        []draftRow
	DeleteConfirm string
}

type historyRow struct {
	ID         string
	PaidAt     time.Time
	ItemsLabel string
	PaidLabel  string
	Note       string
}

type historyView struct {
	Sales []historyRow
}

// localeTranslator adapts a fixed locale to navigation.Translator.
type localeTranslator i18n.Locale

func (l localeTranslator) T(key string, vars i18n.Vars) string {
	return i18n.Translate(i18n.Locale(l), key, vars)
}

func (h *Handler) itemsLabel(count int) string {
	return h.t("items", i18n.Vars{"count": count})
}

func (h *Handler) taxLabel(bps int) string {
	return h.t("tax", i18n.Vars{"rate": money.Decimal(int64(bps))})
}

func (h *Handler) methodLabel(method pos.PaymentMethod) string {
	if method == pos.PaymentMethodCard {
		return h.t("methodCard", nil)
	}
	return h.t("methodCash", nil)
}

func (h *Handler) buildSellView() sellView {
	st := h.sales.Snapshot()
	totals := st.Totals()

	grouped := h.catalog.ByCategory()
	categories := make([]categoryView, 0, len(grouped))
	for _, name := range h.catalog.Categories() {
		label := name
		if name == catalog.UncategorizedBucket {
			label = h.t("uncategorized", nil)
		}
		categories = append(categories, categoryView{Name: label, Products: grouped[name]})
	}

	return sellView{
		Categories:   categories,
		Sale:         st.ActiveSale,
		ItemsLabel:   h.itemsLabel(totals.ItemCount),
		Summary:      summaryView{Totals: totals, TaxLabel: h.taxLabel(st.TaxRateBps)},
		ClearConfirm: h.t("clearAllConfirm", nil) + "\n" + h.t("clearAllMessage", nil),
	}
}

func (h *Handler) buildParkedView() parkedView {
	drafts := h.sales.Drafts()
	bps := h.sales.TaxRateBps()
	rows := make([]draftRow, 0, len(drafts))
	for _, d := range drafts {
		totals := d.Totals(bps)
		rows = append(rows, draftRow{
			ID:         d.ID,
			Updated:    h.t("updatedAt", i18n.Vars{"time": d.UpdatedAt.Format("02 Jan 15:04")}),
			ItemsLabel: h.itemsLabel(totals.ItemCount),
			TotalCents: totals.TotalCents,
			Note:       d.Note,
		})
	}
	return parkedView{Drafts: rows, DeleteConfirm: h.t("deleteDraftConfirm", nil)}
}

func (h *Handler) buildHistoryView() historyView {
	history := h.sales.History()
	bps := h.sales.TaxRateBps()
	rows := make([]historyRow, 0, len(history))
	for _, s := range history {
		row := historyRow{
			ID:         s.ID,
			ItemsLabel: h.itemsLabel(s.Totals(bps).ItemCount),
			Note:       s.Note,
		}
		if s.Payment != nil {
			row.PaidAt = s.Payment.PaidAt
			row.PaidLabel = h.t("paidWith", i18n.Vars{
				"amount": h.formatMoney(s.Payment.AmountCents),
				"method": h.methodLabel(s.Payment.Method),
			})
		}
		rows = append(rows, row)
	}
	return historyView{Sales: rows}
}
