// Package catalog owns the list of sellable products and their add-ons.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/odyssey-erp/celtis-pos/internal/platform/kv"
)

// StorageKey is the key-value entry holding the catalog document.
const StorageKey = "celtis.catalog.v1"

// FailureRecorder counts storage faults for operators.
type FailureRecorder interface {
	RecordStorageFailure(store, op string)
}

// Options tunes a Store.
type Options struct {
	Logger   *slog.Logger
	Recorder FailureRecorder
	// Timeout bounds each storage call. Zero means no extra deadline.
	Timeout time.Duration
	// NewID overrides id generation, mainly for tests.
	NewID func(prefix string) string
}

// Store is the catalog provider. All methods are safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	products []Product
	kv       kv.Store
	logger   *slog.Logger
	recorder FailureRecorder
	timeout  time.Duration
	newID    func(prefix string) string
}

// NewStore loads the persisted catalog, falling back to the built-in defaults
// when it is missing, unreadable or empty.
func NewStore(ctx context.Context, store kv.Store, opts Options) *Store {
	s := &Store{
		kv:       store,
		logger:   opts.Logger,
		recorder: opts.Recorder,
		timeout:  opts.Timeout,
		newID:    opts.NewID,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.newID == nil {
		s.newID = func(prefix string) string { return prefix + "_" + uuid.NewString() }
	}
	s.products = s.load(ctx)
	return s
}

func (s *Store) load(ctx context.Context) []Product {
	if s.kv == nil {
		return DefaultProducts()
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	raw, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			s.logger.Warn("catalog load failed, using defaults", slog.Any("error", err))
		}
		return DefaultProducts()
	}
	var products []Product
	if err := json.Unmarshal(raw, &products); err != nil {
		s.logger.Warn("catalog document corrupt, using defaults", slog.Any("error", err))
		return DefaultProducts()
	}
	if len(products) == 0 {
		return DefaultProducts()
	}
	for i := range products {
		products[i].Addons = normalizeAddons(products[i].Addons)
	}
	return products
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout > 0 {
		return context.WithTimeout(ctx, s.timeout)
	}
	return ctx, func() {}
}

// persist writes the catalog; callers hold s.mu.
func (s *Store) persist(ctx context.Context) {
	if s.kv == nil {
		return
	}
	payload, err := json.Marshal(s.products)
	if err != nil {
		s.logger.Error("failed to encode catalog", slog.Any("error", err))
		return
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := s.kv.Set(ctx, StorageKey, payload); err != nil {
		s.logger.Error("failed to save catalog", slog.Any("error", err))
		if s.recorder != nil {
			s.recorder.RecordStorageFailure("catalog", "save")
		}
	}
}

func (s *Store) indexOf(id string) int {
	for i, p := range s.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// Products returns a copy of the catalog in display order.
func (s *Store) Products() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneProducts(s.products)
}

// Product looks up a product by id.
func (s *Store) Product(id string) (Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx := s.indexOf(id); idx >= 0 {
		return s.products[idx].clone(), true
	}
	return Product{}, false
}

// AddProduct appends a product with a fresh id and returns it.
func (s *Store) AddProduct(ctx context.Context, in NewProduct) Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	product := Product{
		ID:         s.newID("p"),
		Name:       in.Name,
		SKU:        in.SKU,
		PriceCents: in.PriceCents,
		Category:   in.Category,
		Addons:     normalizeAddons(in.Addons),
	}
	s.products = append(cloneProducts(s.products), product)
	s.persist(ctx)
	return product.clone()
}

// UpdateProduct merges patch into the product. Unknown ids are ignored.
func (s *Store) UpdateProduct(ctx context.Context, id string, patch ProductPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateLocked(ctx, id, func(p Product) Product { return patch.apply(p) })
}

func (s *Store) updateLocked(ctx context.Context, id string, fn func(Product) Product) {
	idx := s.indexOf(id)
	if idx < 0 {
		return
	}
	updated := cloneProducts(s.products)
	updated[idx] = fn(updated[idx])
	s.products = updated
	s.persist(ctx)
}

// DeleteProduct removes the product with the given id.
func (s *Store) DeleteProduct(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		if p.ID != id {
			kept = append(kept, p.clone())
		}
	}
	s.products = kept
	s.persist(ctx)
}

// AddAddon appends an addon with a fresh id to the product. It returns false
// when the product does not exist.
func (s *Store) AddAddon(ctx context.Context, productID string, in NewAddon) (Addon, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(productID) < 0 {
		return Addon{}, false
	}
	addon := Addon{ID: s.newID("a"), Name: in.Name, PriceCents: in.PriceCents}
	s.updateLocked(ctx, productID, func(p Product) Product {
		p.Addons = append(p.Addons, addon)
		return p
	})
	return addon, true
}

// UpdateAddon merges patch into one addon of the product.
func (s *Store) UpdateAddon(ctx context.Context, productID, addonID string, patch AddonPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(productID)
	if idx < 0 || len(s.products[idx].Addons) == 0 {
		return
	}
	s.updateLocked(ctx, productID, func(p Product) Product {
		for i := range p.Addons {
			if p.Addons[i].ID == addonID {
				p.Addons[i] = patch.apply(p.Addons[i])
			}
		}
		return p
	})
}

// DeleteAddon removes one addon of the product. Removing the last addon
// leaves the product without an addon list.
func (s *Store) DeleteAddon(ctx context.Context, productID, addonID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(productID)
	if idx < 0 || len(s.products[idx].Addons) == 0 {
		return
	}
	s.updateLocked(ctx, productID, func(p Product) Product {
		kept := make([]Addon, 0, len(p.Addons))
		for _, a := range p.Addons {
			if a.ID != addonID {
				kept = append(kept, a)
			}
		}
		p.Addons = normalizeAddons(kept)
		return p
	})
}

// ResetToDefault replaces the catalog with the built-in demo products.
func (s *Store) ResetToDefault(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = DefaultProducts()
	s.persist(ctx)
}

// ByCategory groups products by category, keeping catalog order inside each
// group. Products without a category land in UncategorizedBucket.
func (s *Store) ByCategory() map[string][]Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	grouped := make(map[string][]Product)
	for _, p := range s.products {
		cat := p.Category
		if cat == "" {
			cat = UncategorizedBucket
		}
		grouped[cat] = append(grouped[cat], p.clone())
	}
	return grouped
}

// Categories returns the category names of ByCategory in sorted order.
func (s *Store) Categories() []string {
	grouped := s.ByCategory()
	names := make([]string, 0, len(grouped))
	for name := range grouped {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
