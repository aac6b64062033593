package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/celtis-pos/internal/platform/kv"
)

type failingKV struct {
	kv.Store
	setErr error
}

func (f failingKV) Set(ctx context.Context, key string, value []byte) error {
	return f.setErr
}

type recorderStub struct {
	calls []string
}

func (r *recorderStub) RecordStorageFailure(store, op string) {
	r.calls = append(r.calls, store+":"+op)
}

func sequentialIDs() func(string) string {
	n := 0
	return func(prefix string) string {
		n++
		return fmt.Sprintf("%s_%d", prefix, n)
	}
}

func newTestStore(t *testing.T, backing kv.Store) *Store {
	t.Helper()
	return NewStore(context.Background(), backing, Options{NewID: sequentialIDs()})
}

func persisted(t *testing.T, backing kv.Store) []Product {
	t.Helper()
	raw, err := backing.Get(context.Background(), StorageKey)
	require.NoError(t, err)
	var products []Product
	require.NoError(t, json.Unmarshal(raw, &products))
	return products
}

func TestNewStoreFallsBackToDefaults(t *testing.T) {
	ctx := context.Background()

	t.Run("missing", func(t *testing.T) {
		store := newTestStore(t, kv.NewMemory())
		assert.Len(t, store.Products(), 8)
	})

	t.Run("corrupt", func(t *testing.T) {
		backing := kv.NewMemory()
		require.NoError(t, backing.Set(ctx, StorageKey, []byte("{not json")))
		store := newTestStore(t, backing)
		assert.Equal(t, DefaultProducts(), store.Products())
	})

	t.Run("empty list", func(t *testing.T) {
		backing := kv.NewMemory()
		require.NoError(t, backing.Set(ctx, StorageKey, []byte("[]")))
		store := newTestStore(t, backing)
		assert.Len(t, store.Products(), 8)
	})

	t.Run("persisted", func(t *testing.T) {
		backing := kv.NewMemory()
		require.NoError(t, backing.Set(ctx, StorageKey, []byte(`[{"id":"p1","name":"Tea","sku":"T","priceCents":300}]`)))
		store := newTestStore(t, backing)
		require.Len(t, store.Products(), 1)
		assert.Equal(t, "Tea", store.Products()[0].Name)
	})
}

func TestDefaultProductsContents(t *testing.T) {
	products := DefaultProducts()
	require.NotEmpty(t, products)
	assert.Equal(t, "p_espresso", products[0].ID)
	assert.Equal(t, int64(900), products[0].PriceCents)
	addon, ok := products[0].Addon("a_extra_shot")
	require.True(t, ok)
	assert.Equal(t, int64(300), addon.PriceCents)

	products[0].Name = "mutated"
	assert.Equal(t, "Espresso", DefaultProducts()[0].Name)
}

func TestAddUpdateDeleteProduct(t *testing.T) {
	ctx := context.Background()
	backing := kv.NewMemory()
	store := newTestStore(t, backing)

	created := store.AddProduct(ctx, NewProduct{Name: "Muffin", SKU: "BKE-MUF", PriceCents: 650, Category: "Bakery"})
	assert.Equal(t, "p_1", created.ID)
	assert.Nil(t, created.Addons)
	assert.Len(t, persisted(t, backing), 9)

	name := "Blueberry Muffin"
	price := int64(700)
	store.UpdateProduct(ctx, created.ID, ProductPatch{Name: &name, PriceCents: &price})
	got, ok := store.Product(created.ID)
	require.True(t, ok)
	assert.Equal(t, "Blueberry Muffin", got.Name)
	assert.Equal(t, int64(700), got.PriceCents)
	assert.Equal(t, "BKE-MUF", got.SKU)

	store.UpdateProduct(ctx, "unknown", ProductPatch{Name: &name})
	assert.Len(t, store.Products(), 9)

	store.DeleteProduct(ctx, created.ID)
	_, ok = store.Product(created.ID)
	assert.False(t, ok)
	assert.Len(t, persisted(t, backing), 8)
}

func TestAddonLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, kv.NewMemory())
	product := store.AddProduct(ctx, NewProduct{Name: "Tea", SKU: "DRK-TEA", PriceCents: 400})

	addon, ok := store.AddAddon(ctx, product.ID, NewAddon{Name: "Honey", PriceCents: 50})
	require.True(t, ok)
	got, _ := store.Product(product.ID)
	require.Len(t, got.Addons, 1)
	assert.Equal(t, addon, got.Addons[0])

	_, ok = store.AddAddon(ctx, "missing", NewAddon{Name: "Honey"})
	assert.False(t, ok)

	price := int64(75)
	store.UpdateAddon(ctx, product.ID, addon.ID, AddonPatch{PriceCents: &price})
	got, _ = store.Product(product.ID)
	assert.Equal(t, int64(75), got.Addons[0].PriceCents)
	assert.Equal(t, "Honey", got.Addons[0].Name)

	store.DeleteAddon(ctx, product.ID, addon.ID)
	got, _ = store.Product(product.ID)
	assert.Nil(t, got.Addons)
}

func TestReadsReturnCopies(t *testing.T) {
	store := newTestStore(t, kv.NewMemory())
	products := store.Products()
	products[0].Addons[0].Name = "mutated"
	products[0].Name = "mutated"

	again := store.Products()
	assert.Equal(t, "Espresso", again[0].Name)
	assert.Equal(t, "Extra shot", again[0].Addons[0].Name)
}

func TestResetToDefault(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, kv.NewMemory())
	store.DeleteProduct(ctx, "p_espresso")
	require.Len(t, store.Products(), 7)

	store.ResetToDefault(ctx)
	assert.Equal(t, DefaultProducts(), store.Products())
}

func TestByCategory(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, kv.NewMemory())
	store.AddProduct(ctx, NewProduct{Name: "Gift card", SKU: "GFT", PriceCents: 2500})

	grouped := store.ByCategory()
	assert.Len(t, grouped["Coffee"], 3)
	assert.Len(t, grouped["Drinks"], 2)
	require.Len(t, grouped[UncategorizedBucket], 1)
	assert.Equal(t, "Gift card", grouped[UncategorizedBucket][0].Name)
	assert.Equal(t, []string{"Bakery", "Coffee", "Drinks", "Food", UncategorizedBucket}, store.Categories())
}

func TestSaveFailureKeepsMemoryState(t *testing.T) {
	ctx := context.Background()
	recorder := &recorderStub{}
	store := NewStore(ctx, failingKV{Store: kv.NewMemory(), setErr: errors.New("quota exceeded")}, Options{
		Recorder: recorder,
		NewID:    sequentialIDs(),
	})

	store.AddProduct(ctx, NewProduct{Name: "Tea", SKU: "T", PriceCents: 300})
	assert.Len(t, store.Products(), 9)
	assert.Equal(t, []string{"catalog:save"}, recorder.calls)
}

func TestParseSeed(t *testing.T) {
	products, err := ParseSeed([]byte("products:\n  - {id: p1, name: Tea, sku: T, priceCents: 300, addons: []}\n"))
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Nil(t, products[0].Addons)

	_, err = ParseSeed([]byte("products: [unterminated"))
	assert.Error(t, err)
}
