package catalog

// UncategorizedBucket groups products that carry no category.
const UncategorizedBucket = "Uncategorized"

// Addon is an optional modifier sold together with a product.
type Addon struct {
	ID         string `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	PriceCents int64  `json:"priceCents" yaml:"priceCents"`
}

// Product is a sellable catalog entry.
type Product struct {
	ID         string  `json:"id" yaml:"id"`
	Name       string  `json:"name" yaml:"name"`
	SKU        string  `json:"sku" yaml:"sku"`
	PriceCents int64   `json:"priceCents" yaml:"priceCents"`
	Category   string  `json:"category,omitempty" yaml:"category,omitempty"`
	Addons     []Addon `json:"addons,omitempty" yaml:"addons,omitempty"`
}

// Addon looks up an addon of the product by id.
func (p Product) Addon(id string) (Addon, bool) {
	for _, a := range p.Addons {
		if a.ID == id {
			return a, true
		}
	}
	return Addon{}, false
}

// NewProduct carries the fields of a product before an id is assigned.
type NewProduct struct {
	Name       string
	SKU        string
	PriceCents int64
	Category   string
	Addons     []Addon
}

// ProductPatch is a shallow merge: nil fields are left untouched.
type ProductPatch struct {
	Name       *string
	SKU        *string
	PriceCents *int64
	Category   *string
	Addons     *[]Addon
}

// NewAddon carries the fields of an addon before an id is assigned.
type NewAddon struct {
	Name       string
	PriceCents int64
}

// AddonPatch is a shallow merge: nil fields are left untouched.
type AddonPatch struct {
	Name       *string
	PriceCents *int64
}

func (p Product) clone() Product {
	if p.Addons != nil {
		p.Addons = append([]Addon(nil), p.Addons...)
	}
	return p
}

func cloneProducts(products []Product) []Product {
	out := make([]Product, len(products))
	for i, p := range products {
		out[i] = p.clone()
	}
	return out
}

func (patch ProductPatch) apply(p Product) Product {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.SKU != nil {
		p.SKU = *patch.SKU
	}
	if patch.PriceCents != nil {
		p.PriceCents = *patch.PriceCents
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Addons != nil {
		p.Addons = normalizeAddons(*patch.Addons)
	}
	return p
}

func (patch AddonPatch) apply(a Addon) Addon {
	if patch.Name != nil {
		a.Name = *patch.Name
	}
	if patch.PriceCents != nil {
		a.PriceCents = *patch.PriceCents
	}
	return a
}

// normalizeAddons collapses an empty list to nil so that "no addons" has a
// single in-memory representation.
func normalizeAddons(addons []Addon) []Addon {
	if len(addons) == 0 {
		return nil
	}
	return append([]Addon(nil), addons...)
}
