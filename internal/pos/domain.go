package pos

import (
	"time"

	"github.com/odyssey-erp/celtis-pos/internal/catalog"
)

const (
	// HistoryLimit caps the number of paid sales kept in history.
	HistoryLimit = 50
	// MaxLineQuantity is the largest quantity a single line may carry.
	MaxLineQuantity = 999
	// DefaultTaxRateBps is the flat demo tax rate (8.00%).
	DefaultTaxRateBps = 800
)

// SaleStatus is the lifecycle state of a sale.
type SaleStatus string

const (
	SaleStatusDraft SaleStatus = "draft"
	SaleStatusPaid  SaleStatus = "paid"
)

// PaymentMethod is how a sale was settled.
type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "cash"
	PaymentMethodCard PaymentMethod = "card"
)

// Valid reports whether m is a supported payment method.
func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodCash || m == PaymentMethodCard
}

// LineItem is one product (with its modifier set) inside a sale. Name and
// price are captured when the line is first added.
type LineItem struct {
	ID             string          `json:"id"`
	ProductID      string          `json:"productId"`
	Name           string          `json:"name"`
	UnitPriceCents int64           `json:"unitPriceCents"`
	Qty            int             `json:"qty"`
	Modifiers      []catalog.Addon `json:"modifiers,omitempty"`
}

// LineTotalCents is unit price times quantity.
func (l LineItem) LineTotalCents() int64 {
	return l.UnitPriceCents * int64(l.Qty)
}

// Payment settles a sale.
type Payment struct {
	Method      PaymentMethod `json:"method"`
	AmountCents int64         `json:"amountCents"`
	PaidAt      time.Time     `json:"paidAt"`
}

// Sale is an in-progress, parked or paid ticket.
type Sale struct {
	ID        string     `json:"id"`
	Status    SaleStatus `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	Items     []LineItem `json:"items"`
	Payment   *Payment   `json:"payment,omitempty"`
	Note      string     `json:"note,omitempty"`
}

// Line looks up a line item by id.
func (s Sale) Line(id string) (LineItem, bool) {
	for _, item := range s.Items {
		if item.ID == id {
			return item, true
		}
	}
	return LineItem{}, false
}

// Totals returns the derived amounts of the sale at the given tax rate.
func (s Sale) Totals(taxRateBps int) Totals {
	return computeTotals(s.Items, taxRateBps)
}

func (s Sale) clone() Sale {
	items := make([]LineItem, len(s.Items))
	for i, item := range s.Items {
		if item.Modifiers != nil {
			item.Modifiers = append([]catalog.Addon(nil), item.Modifiers...)
		}
		items[i] = item
	}
	s.Items = items
	if s.Payment != nil {
		p := *s.Payment
		s.Payment = &p
	}
	return s
}

func cloneSales(sales []Sale) []Sale {
	out := make([]Sale, len(sales))
	for i, sale := range sales {
		out[i] = sale.clone()
	}
	return out
}

// State is the aggregate persisted as one unit.
type State struct {
	ActiveSale Sale
	Drafts     []Sale
	History    []Sale
	TaxRateBps int
}

// Totals returns the derived amounts of the active sale.
func (s State) Totals() Totals {
	return s.ActiveSale.Totals(s.TaxRateBps)
}

// Clone deep-copies the state so callers can hold it without sharing slices.
func (s State) Clone() State {
	return State{
		ActiveSale: s.ActiveSale.clone(),
		Drafts:     cloneSales(s.Drafts),
		History:    cloneSales(s.History),
		TaxRateBps: s.TaxRateBps,
	}
}

// Totals are computed from line items, never stored.
type Totals struct {
	ItemCount     int   `json:"itemCount"`
	SubtotalCents int64 `json:"subtotalCents"`
	TaxCents      int64 `json:"taxCents"`
	TotalCents    int64 `json:"totalCents"`
}
