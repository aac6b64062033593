package pos

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/odyssey-erp/celtis-pos/internal/catalog"
	"github.com/odyssey-erp/celtis-pos/internal/platform/kv"
)

var (
	addonA1 = catalog.Addon{ID: "a1", Name: "Oat milk", PriceCents: 50}
	addonA2 = catalog.Addon{ID: "a2", Name: "Extra shot", PriceCents: 100}
	productP1 = catalog.Product{
		ID: "p1", Name: "Latte", SKU: "LAT", PriceCents: 600,
		Addons: []catalog.Addon{addonA1, addonA2},
	}
	productP2 = catalog.Product{ID: "p2", Name: "Cookie", SKU: "COO", PriceCents: 250}
)

type stepClock struct {
	at time.Time
}

func newStepClock() *stepClock {
	return &stepClock{at: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.at = c.at.Add(time.Second)
	return c.at
}

func sequentialIDs() func(string) string {
	n := 0
	return func(prefix string) string {
		n++
		return fmt.Sprintf("%s_%d", prefix, n)
	}
}

type countingRepo struct {
	Repository
	saves   int
	saveErr error
}

func (r *countingRepo) Save(ctx context.Context, snap Snapshot) error {
	r.saves++
	if r.saveErr != nil {
		return r.saveErr
	}
	return r.Repository.Save(ctx, snap)
}

type recorderStub struct {
	failures []string
	paid     []string
}

func (r *recorderStub) RecordStorageFailure(store, op string) {
	r.failures = append(r.failures, store+":"+op)
}

func (r *recorderStub) RecordSalePaid(method string, amountCents int64) {
	r.paid = append(r.paid, fmt.Sprintf("%s:%d", method, amountCents))
}

var errDiskFull = errors.New("disk full")

func newTestStore(t *testing.T, backing kv.Store, mutate ...func(*Options)) *Store {
	t.Helper()
	opts := Options{Clock: newStepClock().Now, NewID: sequentialIDs()}
	for _, fn := range mutate {
		fn(&opts)
	}
	return NewStore(context.Background(), NewRepository(backing), opts)
}
