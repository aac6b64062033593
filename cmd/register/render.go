package main

import (
	"strings"

	"github.com/odyssey-erp/celtis-pos/internal/catalog"
	"github.com/odyssey-erp/celtis-pos/internal/i18n"
	"github.com/odyssey-erp/celtis-pos/internal/money"
	"github.com/odyssey-erp/celtis-pos/internal/navigation"
	"github.com/odyssey-erp/celtis-pos/internal/pos"
)

func (r *Register) render() {
	if r.Translator.Dir() == i18n.RTL {
		r.printf("\u200f")
	}
	switch r.router.Current() {
	case navigation.RouteParked:
		r.renderParked()
	case navigation.RouteHistory:
		r.renderHistory()
	default:
		r.renderSell()
	}
}

func (r *Register) renderSell() {
	r.printf("== %s ==\n", r.t("navSell", nil))
	for _, category := range r.Catalog.Categories() {
		label := category
		if label == catalog.UncategorizedBucket {
			label = r.t("uncategorized", nil)
		}
		r.printf("%s\n", label)
		for _, p := range r.Catalog.ByCategory()[category] {
			r.printf("  %-14s %-20s %s", p.ID, p.Name, r.money(p.PriceCents))
			if len(p.Addons) > 0 {
				ids := make([]string, 0, len(p.Addons))
				for _, a := range p.Addons {
					ids = append(ids, a.ID)
				}
				r.printf("  [%s]", strings.Join(ids, " "))
			}
			r.printf("\n")
		}
	}

	st := r.Sales.Snapshot()
	totals := st.Totals()
	r.printf("-- %s (%s) --\n", r.t("currentSale", nil), r.t("items", i18n.Vars{"count": totals.ItemCount}))
	if len(st.ActiveSale.Items) == 0 {
		r.printf("%s\n", r.t("emptySale", nil))
	}
	for i, item := range st.ActiveSale.Items {
		name := item.Name
		if len(item.Modifiers) > 0 {
			mods := make([]string, 0, len(item.Modifiers))
			for _, m := range item.Modifiers {
				mods = append(mods, m.Name)
			}
			name += " + " + strings.Join(mods, ", ")
		}
		r.printf("%2d. %-32s x%-3d %s\n", i+1, name, item.Qty, r.money(item.LineTotalCents()))
	}
	if st.ActiveSale.Note != "" {
		r.printf("%s: %s\n", r.t("note", nil), st.ActiveSale.Note)
	}
	r.printTotals(totals, st.TaxRateBps)
}

func (r *Register) printTotals(totals pos.Totals, bps int) {
	r.printf("%s: %s\n", r.t("subtotal", nil), r.money(totals.SubtotalCents))
	r.printf("%s: %s\n", r.t("tax", i18n.Vars{"rate": money.Decimal(int64(bps))}), r.money(totals.TaxCents))
	r.printf("%s: %s\n", r.t("total", nil), r.money(totals.TotalCents))
}

func (r *Register) renderParked() {
	r.printf("== %s ==\n", r.t("navParked", nil))
	drafts := r.Sales.Drafts()
	if len(drafts) == 0 {
		r.printf("%s\n", r.t("noDrafts", nil))
		return
	}
	bps := r.Sales.TaxRateBps()
	for i, d := range drafts {
		totals := d.Totals(bps)
		r.printf("%2d. %s  %s  %s",
			i+1,
			r.t("updatedAt", i18n.Vars{"time": d.UpdatedAt.Format("02 Jan 15:04")}),
			r.t("items", i18n.Vars{"count": totals.ItemCount}),
			r.money(totals.TotalCents))
		if d.Note != "" {
			r.printf("  (%s)", d.Note)
		}
		r.printf("\n")
	}
}

func (r *Register) renderHistory() {
	r.printf("== %s ==\n", r.t("navHistory", nil))
	history := r.Sales.History()
	if len(history) == 0 {
		r.printf("%s\n", r.t("noHistory", nil))
		return
	}
	for _, s := range history {
		if s.Payment == nil {
			continue
		}
		method := r.t("methodCash", nil)
		if s.Payment.Method == pos.PaymentMethodCard {
			method = r.t("methodCard", nil)
		}
		r.printf("%s  %s\n",
			s.Payment.PaidAt.Format("02 Jan 2006 15:04"),
			r.t("paidWith", i18n.Vars{"amount": r.money(s.Payment.AmountCents), "method": method}))
	}
}
