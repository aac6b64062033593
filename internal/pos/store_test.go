package pos

import (
	"context"
	"encoding/json"
	"math"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/celtis-pos/internal/catalog"
	"github.com/odyssey-erp/celtis-pos/internal/platform/kv"
)

func TestAddLineMergesByModifierSignature(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, kv.NewMemory())

	store.AddLine(ctx, productP1, []catalog.Addon{addonA1, addonA2})
	store.AddLine(ctx, productP1, []catalog.Addon{addonA2, addonA1})

	items := store.ActiveSale().Items
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Qty)
	assert.Equal(t, int64(750), items[0].UnitPriceCents)
	assert.Equal(t, []catalog.Addon{addonA1, addonA2}, items[0].Modifiers)
}

func TestAddLineKeepsDistinctModifierSets(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, kv.NewMemory())

	store.AddLine(ctx, productP1, nil)
	store.AddLine(ctx, productP1, []catalog.Addon{addonA1})
	store.AddLine(ctx, productP1, []catalog.Addon{})
	store.AddLine(ctx, productP2, nil)

	items := store.ActiveSale().Items
	require.Len(t, items, 3)
	assert.Equal(t, 2, items[0].Qty)
	assert.Nil(t, items[0].Modifiers)
	assert.Equal(t, int64(650), items[1].UnitPriceCents)
	assert.Equal(t, "p2", items[2].ProductID)
	assert.Equal(t, "Cookie", items[2].Name)
}

func TestAddLineSeparatorInAddonID(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, kv.NewMemory())
	a := catalog.Addon{ID: "a", Name: "A", PriceCents: 10}
	b := catalog.Addon{ID: "b", Name: "B", PriceCents: 20}
	joined := catalog.Addon{ID: "a,b", Name: "A and B", PriceCents: 5}

	assert.NotEqual(t, modifierSignature([]catalog.Addon{a, b}), modifierSignature([]catalog.Addon{joined}))

	store.AddLine(ctx, productP2, []catalog.Addon{a, b})
	store.AddLine(ctx, productP2, []catalog.Addon{joined})
	store.AddLine(ctx, productP2, []catalog.Addon{b, a})

	items := store.ActiveSale().Items
	require.Len(t, items, 2)
	assert.Equal(t, 2, items[0].Qty)
	assert.Equal(t, int64(280), items[0].UnitPriceCents)
	assert.Equal(t, 1, items[1].Qty)
	assert.Equal(t, int64(255), items[1].UnitPriceCents)
}

func TestAddLineKeepsCapturedPrice(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, kv.NewMemory())

	store.AddLine(ctx, productP2, nil)
	repriced := productP2
	repriced.PriceCents = 999
	repriced.Name = "Big cookie"
	store.AddLine(ctx, repriced, nil)

	items := store.ActiveSale().Items
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Qty)
	assert.Equal(t, int64(250), items[0].UnitPriceCents)
	assert.Equal(t, "Cookie", items[0].Name)
}

func TestAddLineBumpsUpdatedAt(t *testing.T) {
	store := newTestStore(t, kv.NewMemory())
	before := store.ActiveSale()

	store.AddLine(context.Background(), productP2, nil)

	after := store.ActiveSale()
	assert.Equal(t, before.ID, after.ID)
	assert.True(t, after.UpdatedAt.After(before.UpdatedAt))
	assert.Equal(t, before.CreatedAt, after.CreatedAt)
}

func TestSetLineQuantity(t *testing.T) {
	cases := []struct {
		name    string
		qty     float64
		wantQty int
		removed bool
	}{
		{name: "replace", qty: 5, wantQty: 5},
		{name: "truncate", qty: 2.7, wantQty: 2},
		{name: "clamp high", qty: 1000, wantQty: 999},
		{name: "zero removes", qty: 0, removed: true},
		{name: "negative removes", qty: -5, removed: true},
		{name: "fraction below one removes", qty: 0.4, removed: true},
		{name: "nan removes", qty: math.NaN(), removed: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			store := newTestStore(t, kv.NewMemory())
			store.AddLine(ctx, productP2, nil)
			lineID := store.ActiveSale().Items[0].ID

			store.SetLineQuantity(ctx, lineID, tc.qty)

			items := store.ActiveSale().Items
			if tc.removed {
				assert.Empty(t, items)
				return
			}
			require.Len(t, items, 1)
			assert.Equal(t, tc.wantQty, items[0].Qty)
		})
	}
}

func TestSetLineQuantityUnknownLine(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, kv.NewMemory())
	store.AddLine(ctx, productP2, nil)
	before := store.ActiveSale()

	store.SetLineQuantity(ctx, "line_missing", 3)

	after := store.ActiveSale()
	assert.Equal(t, before.Items, after.Items)
	assert.True(t, after.UpdatedAt.After(before.UpdatedAt))
}

func TestRemoveLine(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, kv.NewMemory())
	store.AddLine(ctx, productP1, nil)
	store.AddLine(ctx, productP2, nil)
	first := store.ActiveSale().Items[0].ID

	store.RemoveLine(ctx, first)
	store.RemoveLine(ctx, "line_missing")

	items := store.ActiveSale().Items
	require.Len(t, items, 1)
	assert.Equal(t, "p2", items[0].ProductID)
}

func TestTotalsExample(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, kv.NewMemory())
	product := catalog.Product{ID: "p1", Name: "Latte", PriceCents: 600, Addons: []catalog.Addon{{ID: "a1", Name: "Oat", PriceCents: 50}}}

	store.AddLine(ctx, product, product.Addons)
	store.AddLine(ctx, product, product.Addons)

	items := store.ActiveSale().Items
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Qty)
	assert.Equal(t, int64(650), items[0].UnitPriceCents)
	assert.Equal(t, Totals{ItemCount: 2, SubtotalCents: 1300, TaxCents: 104, TotalCents: 1404}, store.Totals())
}

func TestTotalsRoundHalfUp(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, kv.NewMemory(), func(o *Options) { o.TaxRateBps = 50 })
	store.AddLine(ctx, catalog.Product{ID: "p", Name: "Gum", PriceCents: 100}, nil)

	totals := store.Totals()
	assert.Equal(t, int64(1), totals.TaxCents)
	assert.Equal(t, int64(101), totals.TotalCents)
	assert.Equal(t, 50, store.TaxRateBps())
}

func TestTotalsEmptySale(t *testing.T) {
	store := newTestStore(t, kv.NewMemory())
	assert.Equal(t, Totals{}, store.Totals())
	assert.Equal(t, DefaultTaxRateBps, store.TaxRateBps())
}

func TestParkActiveSale(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, kv.NewMemory())

	t.Run("empty sale is a no-op", func(t *testing.T) {
		before := store.Snapshot()
		assert.False(t, store.ParkActiveSale(ctx))
		assert.Equal(t, before, store.Snapshot())
	})

	store.AddLine(ctx, productP2, nil)
	parkedID := store.ActiveSale().ID
	assert.True(t, store.ParkActiveSale(ctx))

	drafts := store.Drafts()
	require.Len(t, drafts, 1)
	assert.Equal(t, parkedID, drafts[0].ID)
	assert.Equal(t, SaleStatusDraft, drafts[0].Status)
	assert.False(t, store.HasActiveItems())
	assert.NotEqual(t, parkedID, store.ActiveSale().ID)

	store.AddLine(ctx, productP1, nil)
	second := store.ActiveSale().ID
	store.ParkActiveSale(ctx)

	drafts = store.Drafts()
	require.Len(t, drafts, 2)
	assert.Equal(t, second, drafts[0].ID, "most recent draft first")
}

func TestResumeDraft(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, kv.NewMemory())
	store.AddLine(ctx, productP2, nil)
	parked := store.ActiveSale()
	store.ParkActiveSale(ctx)
	store.AddLine(ctx, productP1, nil)

	store.ResumeDraft(ctx, "sale_missing")
	assert.Len(t, store.Drafts(), 1)

	store.ResumeDraft(ctx, parked.ID)

	active := store.ActiveSale()
	assert.Equal(t, parked.ID, active.ID)
	assert.Equal(t, parked.Items, active.Items)
	assert.True(t, active.UpdatedAt.After(parked.UpdatedAt))
	assert.Empty(t, store.Drafts())
	_, ok := store.Draft(parked.ID)
	assert.False(t, ok)
}

func TestDeleteDraft(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, kv.NewMemory())
	store.AddLine(ctx, productP2, nil)
	id := store.ActiveSale().ID
	store.ParkActiveSale(ctx)

	got, ok := store.Draft(id)
	require.True(t, ok)
	assert.Len(t, got.Items, 1)

	store.DeleteDraft(ctx, "sale_missing")
	assert.Len(t, store.Drafts(), 1)
	store.DeleteDraft(ctx, id)
	assert.Empty(t, store.Drafts())
}

func TestPayActiveSale(t *testing.T) {
	ctx := context.Background()
	rec := &recorderStub{}
	store := newTestStore(t, kv.NewMemory(), func(o *Options) { o.Recorder = rec })

	_, ok := store.PayActiveSale(ctx, PaymentMethodCash)
	assert.False(t, ok)
	assert.Empty(t, store.History(), "empty sale cannot be paid")

	store.AddLine(ctx, productP1, []catalog.Addon{addonA1})
	store.AddLine(ctx, productP1, []catalog.Addon{addonA1})
	saleID := store.ActiveSale().ID
	total := store.Totals().TotalCents

	returned, ok := store.PayActiveSale(ctx, PaymentMethodCard)
	require.True(t, ok)

	history := store.History()
	require.Len(t, history, 1)
	paid := history[0]
	assert.Equal(t, paid, returned)
	assert.Equal(t, saleID, paid.ID)
	assert.Equal(t, SaleStatusPaid, paid.Status)
	require.NotNil(t, paid.Payment)
	assert.Equal(t, PaymentMethodCard, paid.Payment.Method)
	assert.Equal(t, int64(1404), total)
	assert.Equal(t, total, paid.Payment.AmountCents)
	assert.False(t, paid.Payment.PaidAt.IsZero())
	assert.False(t, store.HasActiveItems())
	assert.NotEqual(t, saleID, store.ActiveSale().ID)
	assert.Equal(t, []string{"card:1404"}, rec.paid)
}

func TestHistoryIsCapped(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, kv.NewMemory())
	var paidIDs []string
	for i := 0; i < HistoryLimit; i++ {
		store.AddLine(ctx, productP2, nil)
		sale, ok := store.PayActiveSale(ctx, PaymentMethodCash)
		require.True(t, ok)
		paidIDs = append(paidIDs, sale.ID)
	}
	require.Len(t, store.History(), HistoryLimit)
	assert.Equal(t, paidIDs[0], store.History()[HistoryLimit-1].ID)

	store.AddLine(ctx, productP2, nil)
	newest, ok := store.PayActiveSale(ctx, PaymentMethodCash)
	require.True(t, ok)

	history := store.History()
	require.Len(t, history, HistoryLimit)
	assert.Equal(t, newest.ID, history[0].ID)
	assert.Equal(t, paidIDs[1], history[HistoryLimit-1].ID)
	for _, sale := range history {
		assert.NotEqual(t, paidIDs[0], sale.ID, "oldest paid sale must be evicted")
	}
}

func TestConcurrentPayPaysOnce(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, kv.NewMemory())
	store.AddLine(ctx, productP2, nil)

	const callers = 16
	var (
		wg   sync.WaitGroup
		paid atomic.Int32
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := store.PayActiveSale(ctx, PaymentMethodCash); ok {
				paid.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), paid.Load())
	assert.Len(t, store.History(), 1)
}

func TestStartNewSaleAndClearAllData(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, kv.NewMemory())
	store.AddLine(ctx, productP2, nil)
	store.ParkActiveSale(ctx)
	store.AddLine(ctx, productP2, nil)
	store.PayActiveSale(ctx, PaymentMethodCash)
	store.AddLine(ctx, productP1, nil)

	before := store.ActiveSale().ID
	store.StartNewSale(ctx)
	assert.NotEqual(t, before, store.ActiveSale().ID)
	assert.False(t, store.HasActiveItems())
	assert.Len(t, store.Drafts(), 1)
	assert.Len(t, store.History(), 1)

	store.ClearAllData(ctx)
	st := store.Snapshot()
	assert.Empty(t, st.ActiveSale.Items)
	assert.Empty(t, st.Drafts)
	assert.Empty(t, st.History)
	assert.Equal(t, DefaultTaxRateBps, st.TaxRateBps)
}

func TestSetNote(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, kv.NewMemory())

	store.SetNote(ctx, "  table 4  ")
	assert.Equal(t, "table 4", store.ActiveSale().Note)

	store.SetNote(ctx, "   ")
	assert.Empty(t, store.ActiveSale().Note)
}

func TestSnapshotIsACopy(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, kv.NewMemory())
	store.AddLine(ctx, productP1, []catalog.Addon{addonA1})

	st := store.Snapshot()
	st.ActiveSale.Items[0].Qty = 42
	st.ActiveSale.Items[0].Modifiers[0].Name = "changed"

	item := store.ActiveSale().Items[0]
	assert.Equal(t, 1, item.Qty)
	assert.Equal(t, "Oat milk", item.Modifiers[0].Name)
}

func TestStoreRestoresPersistedState(t *testing.T) {
	ctx := context.Background()
	backing := kv.NewMemory()
	first := newTestStore(t, backing)
	first.AddLine(ctx, productP2, nil)
	first.ParkActiveSale(ctx)
	first.AddLine(ctx, productP1, []catalog.Addon{addonA2})
	first.PayActiveSale(ctx, PaymentMethodCash)
	first.AddLine(ctx, productP1, nil)
	first.SetNote(ctx, "to go")
	want := first.Snapshot()

	second := NewStore(ctx, NewRepository(backing), Options{})
	got := second.Snapshot()

	assert.Equal(t, want.ActiveSale.ID, got.ActiveSale.ID)
	assert.Equal(t, want.ActiveSale.Items, got.ActiveSale.Items)
	assert.Equal(t, "to go", got.ActiveSale.Note)
	require.Len(t, got.Drafts, 1)
	assert.Equal(t, want.Drafts[0].ID, got.Drafts[0].ID)
	require.Len(t, got.History, 1)
	assert.Equal(t, want.History[0].Payment.AmountCents, got.History[0].Payment.AmountCents)
	assert.True(t, want.History[0].Payment.PaidAt.Equal(got.History[0].Payment.PaidAt))
	assert.Equal(t, DefaultTaxRateBps, got.TaxRateBps)
}

func TestStoreStartsFreshOnUnusableSnapshot(t *testing.T) {
	cases := map[string]string{
		"future version": `{"version":2,"activeSale":null,"drafts":[{"id":"sale_x","status":"draft","items":[]}],"history":[]}`,
		"malformed":      `{"version":1,"activeSale":`,
		"not an object":  `[]`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			backing := kv.NewMemory()
			require.NoError(t, backing.Set(context.Background(), StorageKey, []byte(raw)))

			st := newTestStore(t, backing).Snapshot()

			assert.Empty(t, st.ActiveSale.Items)
			assert.Equal(t, SaleStatusDraft, st.ActiveSale.Status)
			assert.Empty(t, st.Drafts)
			assert.Empty(t, st.History)
		})
	}
}

func TestStoreNullActiveSaleKeepsDrafts(t *testing.T) {
	backing := kv.NewMemory()
	raw := `{"version":1,"activeSale":null,"drafts":[{"id":"sale_x","status":"draft","createdAt":"2024-03-01T09:00:00Z","updatedAt":"2024-03-01T09:00:00Z","items":[]}],"history":[]}`
	require.NoError(t, backing.Set(context.Background(), StorageKey, []byte(raw)))

	st := newTestStore(t, backing).Snapshot()

	assert.NotEmpty(t, st.ActiveSale.ID)
	require.Len(t, st.Drafts, 1)
	assert.Equal(t, "sale_x", st.Drafts[0].ID)
}

func TestHydrationDoesNotWrite(t *testing.T) {
	backing := kv.NewMemory()
	repo := &countingRepo{Repository: NewRepository(backing)}

	store := NewStore(context.Background(), repo, Options{})

	assert.Zero(t, repo.saves)
	_, err := backing.Get(context.Background(), StorageKey)
	assert.ErrorIs(t, err, kv.ErrNotFound)

	store.StartNewSale(context.Background())
	assert.Equal(t, 1, repo.saves)
}

func TestNoOpOperationsDoNotWrite(t *testing.T) {
	ctx := context.Background()
	repo := &countingRepo{Repository: NewRepository(kv.NewMemory())}
	store := NewStore(ctx, repo, Options{})

	store.ParkActiveSale(ctx)
	store.PayActiveSale(ctx, PaymentMethodCash)
	store.ResumeDraft(ctx, "sale_missing")

	assert.Zero(t, repo.saves)
}

func TestSaveFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	rec := &recorderStub{}
	repo := &countingRepo{Repository: NewRepository(kv.NewMemory()), saveErr: errDiskFull}
	store := NewStore(ctx, repo, Options{Recorder: rec})

	store.AddLine(ctx, productP2, nil)

	assert.True(t, store.HasActiveItems())
	assert.Equal(t, []string{"pos:save"}, rec.failures)
}

func TestSnapshotDocumentShape(t *testing.T) {
	ctx := context.Background()
	backing := kv.NewMemory()
	store := newTestStore(t, backing)
	store.AddLine(ctx, productP2, nil)

	raw, err := backing.Get(ctx, StorageKey)
	require.NoError(t, err)
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &doc))

	assert.JSONEq(t, `1`, string(doc["version"]))
	assert.JSONEq(t, `[]`, string(doc["drafts"]))
	assert.JSONEq(t, `[]`, string(doc["history"]))
	assert.Contains(t, doc, "activeSale")
	assert.NotContains(t, doc, "taxRateBps")
}
