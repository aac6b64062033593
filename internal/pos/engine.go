package pos

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/odyssey-erp/celtis-pos/internal/catalog"
	"github.com/odyssey-erp/celtis-pos/internal/money"
)

// engine holds the pure state transitions. Every method takes the current
// State and returns the next one without touching the input.
type engine struct {
	now   func() time.Time
	newID func(prefix string) string
}

func (e engine) newSale() Sale {
	at := e.now()
	return Sale{
		ID:        e.newID("sale"),
		Status:    SaleStatusDraft,
		CreatedAt: at,
		UpdatedAt: at,
		Items:     []LineItem{},
	}
}

func (e engine) touch(sale Sale) Sale {
	sale.UpdatedAt = e.now()
	return sale
}

// modifierSignature identifies a modifier set independent of selection order.
// Ids are quoted so an id containing the separator cannot collide with a
// pair of ids.
func modifierSignature(modifiers []catalog.Addon) string {
	if len(modifiers) == 0 {
		return ""
	}
	ids := make([]string, len(modifiers))
	for i, m := range modifiers {
		ids[i] = m.ID
	}
	sort.Strings(ids)
	for i, id := range ids {
		ids[i] = strconv.Quote(id)
	}
	return strings.Join(ids, ",")
}

func priceWithModifiers(product catalog.Product, modifiers []catalog.Addon) int64 {
	price := product.PriceCents
	for _, m := range modifiers {
		price += m.PriceCents
	}
	return price
}

func computeTotals(items []LineItem, taxRateBps int) Totals {
	var t Totals
	for _, item := range items {
		t.ItemCount += item.Qty
		t.SubtotalCents += item.LineTotalCents()
	}
	t.TaxCents = money.ApplyBasisPoints(t.SubtotalCents, taxRateBps)
	t.TotalCents = t.SubtotalCents + t.TaxCents
	return t
}

func (e engine) upsertLine(items []LineItem, product catalog.Product, modifiers []catalog.Addon) []LineItem {
	signature := modifierSignature(modifiers)
	out := append([]LineItem(nil), items...)
	for i, item := range out {
		if item.ProductID == product.ID && modifierSignature(item.Modifiers) == signature {
			out[i].Qty = item.Qty + 1
			return out
		}
	}
	line := LineItem{
		ID:             e.newID("line"),
		ProductID:      product.ID,
		Name:           product.Name,
		UnitPriceCents: priceWithModifiers(product, modifiers),
		Qty:            1,
	}
	if len(modifiers) > 0 {
		line.Modifiers = append([]catalog.Addon(nil), modifiers...)
	}
	return append(out, line)
}

func (e engine) addLine(st State, product catalog.Product, modifiers []catalog.Addon) State {
	active := st.ActiveSale
	active.Items = e.upsertLine(active.Items, product, modifiers)
	st.ActiveSale = e.touch(active)
	return st
}

func (e engine) setLineQuantity(st State, lineID string, qty float64) State {
	normalized := money.ClampInt(qty, 0, MaxLineQuantity)
	active := st.ActiveSale
	items := make([]LineItem, 0, len(active.Items))
	for _, item := range active.Items {
		if item.ID == lineID {
			if normalized <= 0 {
				continue
			}
			item.Qty = normalized
		}
		items = append(items, item)
	}
	active.Items = items
	st.ActiveSale = e.touch(active)
	return st
}

func (e engine) removeLine(st State, lineID string) State {
	active := st.ActiveSale
	items := make([]LineItem, 0, len(active.Items))
	for _, item := range active.Items {
		if item.ID != lineID {
			items = append(items, item)
		}
	}
	active.Items = items
	st.ActiveSale = e.touch(active)
	return st
}

func (e engine) setNote(st State, note string) State {
	st.ActiveSale.Note = strings.TrimSpace(note)
	st.ActiveSale = e.touch(st.ActiveSale)
	return st
}

func (e engine) startNewSale(st State) State {
	st.ActiveSale = e.newSale()
	return st
}

// park reports false when there is nothing to park.
func (e engine) park(st State) (State, bool) {
	if len(st.ActiveSale.Items) == 0 {
		return st, false
	}
	drafts := make([]Sale, 0, len(st.Drafts)+1)
	drafts = append(drafts, e.touch(st.ActiveSale))
	st.Drafts = append(drafts, st.Drafts...)
	st.ActiveSale = e.newSale()
	return st, true
}

func (e engine) resume(st State, saleID string) (State, bool) {
	idx := indexOfSale(st.Drafts, saleID)
	if idx < 0 {
		return st, false
	}
	sale := st.Drafts[idx]
	st.Drafts = removeSaleAt(st.Drafts, idx)
	st.ActiveSale = e.touch(sale)
	return st, true
}

func (e engine) deleteDraft(st State, saleID string) State {
	if idx := indexOfSale(st.Drafts, saleID); idx >= 0 {
		st.Drafts = removeSaleAt(st.Drafts, idx)
	}
	return st
}

func (e engine) pay(st State, method PaymentMethod) (State, bool) {
	if len(st.ActiveSale.Items) == 0 {
		return st, false
	}
	totals := st.Totals()
	paid := e.touch(st.ActiveSale)
	paid.Status = SaleStatusPaid
	paid.Payment = &Payment{
		Method:      method,
		AmountCents: totals.TotalCents,
		PaidAt:      e.now(),
	}
	history := make([]Sale, 0, len(st.History)+1)
	history = append(history, paid)
	history = append(history, st.History...)
	if len(history) > HistoryLimit {
		history = history[:HistoryLimit]
	}
	st.History = history
	st.ActiveSale = e.newSale()
	return st, true
}

func (e engine) clearAll(st State) State {
	st.ActiveSale = e.newSale()
	st.Drafts = []Sale{}
	st.History = []Sale{}
	return st
}

func indexOfSale(sales []Sale, id string) int {
	for i, s := range sales {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func removeSaleAt(sales []Sale, idx int) []Sale {
	out := make([]Sale, 0, len(sales)-1)
	out = append(out, sales[:idx]...)
	return append(out, sales[idx+1:]...)
}
