// Package pos implements the sale-state engine: the active sale, parked
// drafts and paid history, persisted as one versioned snapshot.
package pos

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/odyssey-erp/celtis-pos/internal/catalog"
)

// Recorder receives operational signals from the store.
type Recorder interface {
	RecordStorageFailure(store, op string)
	RecordSalePaid(method string, amountCents int64)
}

// Options tunes a Store.
type Options struct {
	Logger   *slog.Logger
	Recorder Recorder
	// TaxRateBps overrides DefaultTaxRateBps when positive.
	TaxRateBps int
	// Timeout bounds each storage call. Zero means no extra deadline.
	Timeout time.Duration
	Clock   func() time.Time
	NewID   func(prefix string) string
}

// Store owns the POS state. Each operation is applied to the in-memory state
// and then written through the repository. All methods are safe for
// concurrent use.
type Store struct {
	mu       sync.Mutex
	state    State
	hydrated bool

	engine   engine
	repo     Repository
	logger   *slog.Logger
	recorder Recorder
	timeout  time.Duration
}

// NewStore hydrates the state from repo. A missing or unusable snapshot
// yields a fresh state; no write happens until the first mutation.
func NewStore(ctx context.Context, repo Repository, opts Options) *Store {
	s := &Store{
		repo:     repo,
		logger:   opts.Logger,
		recorder: opts.Recorder,
		timeout:  opts.Timeout,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	now := opts.Clock
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	newID := opts.NewID
	if newID == nil {
		newID = func(prefix string) string { return prefix + "_" + uuid.NewString() }
	}
	s.engine = engine{now: now, newID: newID}

	taxRate := opts.TaxRateBps
	if taxRate <= 0 {
		taxRate = DefaultTaxRateBps
	}
	s.state = s.hydrate(ctx, taxRate)
	s.hydrated = true
	return s
}

func (s *Store) hydrate(ctx context.Context, taxRate int) State {
	fresh := State{
		ActiveSale: s.engine.newSale(),
		Drafts:     []Sale{},
		History:    []Sale{},
		TaxRateBps: taxRate,
	}
	if s.repo == nil {
		return fresh
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	snap, err := s.repo.Load(ctx)
	if err != nil {
		if errors.Is(err, ErrNoSnapshot) {
			s.logger.Debug("starting with fresh pos state", slog.Any("reason", err))
		} else {
			s.logger.Warn("pos snapshot load failed, starting fresh", slog.Any("error", err))
		}
		return fresh
	}
	st := fresh
	if snap.ActiveSale != nil {
		st.ActiveSale = snap.ActiveSale.clone()
		if st.ActiveSale.Items == nil {
			st.ActiveSale.Items = []LineItem{}
		}
	}
	if snap.Drafts != nil {
		st.Drafts = cloneSales(snap.Drafts)
	}
	if snap.History != nil {
		st.History = cloneSales(snap.History)
	}
	return st
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout > 0 {
		return context.WithTimeout(ctx, s.timeout)
	}
	return ctx, func() {}
}

// persist writes the current state; callers hold s.mu.
func (s *Store) persist(ctx context.Context) {
	if !s.hydrated || s.repo == nil {
		return
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := s.repo.Save(ctx, SnapshotOf(s.state)); err != nil {
		s.logger.Error("failed to save pos snapshot", slog.Any("error", err))
		if s.recorder != nil {
			s.recorder.RecordStorageFailure("pos", "save")
		}
	}
}

func (s *Store) apply(ctx context.Context, fn func(State) State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = fn(s.state)
	s.persist(ctx)
}

// AddLine adds one unit of product with the given modifiers. A line with the
// same product and modifier set is incremented instead.
func (s *Store) AddLine(ctx context.Context, product catalog.Product, modifiers []catalog.Addon) {
	s.apply(ctx, func(st State) State { return s.engine.addLine(st, product, modifiers) })
}

// SetLineQuantity sets the quantity of a line, clamped to 0..MaxLineQuantity.
// Zero removes the line.
func (s *Store) SetLineQuantity(ctx context.Context, lineID string, qty float64) {
	s.apply(ctx, func(st State) State { return s.engine.setLineQuantity(st, lineID, qty) })
}

// RemoveLine drops a line from the active sale.
func (s *Store) RemoveLine(ctx context.Context, lineID string) {
	s.apply(ctx, func(st State) State { return s.engine.removeLine(st, lineID) })
}

// SetNote replaces the note of the active sale. Blank clears it.
func (s *Store) SetNote(ctx context.Context, note string) {
	s.apply(ctx, func(st State) State { return s.engine.setNote(st, note) })
}

// StartNewSale discards the active sale.
func (s *Store) StartNewSale(ctx context.Context) {
	s.apply(ctx, s.engine.startNewSale)
}

// ParkActiveSale moves a non-empty active sale to the front of the drafts.
// It reports false, changing nothing, when the active sale was empty.
func (s *Store) ParkActiveSale(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, ok := s.engine.park(s.state)
	if !ok {
		return false
	}
	s.state = next
	s.persist(ctx)
	return true
}

// ResumeDraft makes a parked sale active again, discarding the current
// active sale. Unknown ids are ignored.
func (s *Store) ResumeDraft(ctx context.Context, saleID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, ok := s.engine.resume(s.state, saleID)
	if !ok {
		return
	}
	s.state = next
	s.persist(ctx)
}

// DeleteDraft discards a parked sale.
func (s *Store) DeleteDraft(ctx context.Context, saleID string) {
	s.apply(ctx, func(st State) State { return s.engine.deleteDraft(st, saleID) })
}

// PayActiveSale settles a non-empty active sale for its current total and
// moves it to the front of the history. It returns the paid sale, or false
// when the active sale was empty.
func (s *Store) PayActiveSale(ctx context.Context, method PaymentMethod) (Sale, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, ok := s.engine.pay(s.state, method)
	if !ok {
		return Sale{}, false
	}
	s.state = next
	s.persist(ctx)
	paid := s.state.History[0]
	if s.recorder != nil {
		s.recorder.RecordSalePaid(string(method), paid.Payment.AmountCents)
	}
	s.logger.Info("sale paid",
		slog.String("sale_id", paid.ID),
		slog.String("method", string(method)),
		slog.Int64("amount_cents", paid.Payment.AmountCents),
	)
	return paid.clone(), true
}

// ClearAllData resets the active sale and empties drafts and history.
func (s *Store) ClearAllData(ctx context.Context) {
	s.apply(ctx, s.engine.clearAll)
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// ActiveSale returns a copy of the active sale.
func (s *Store) ActiveSale() Sale {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.ActiveSale.clone()
}

// Drafts returns the parked sales, most recent first.
func (s *Store) Drafts() []Sale {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneSales(s.state.Drafts)
}

// History returns the paid sales, most recent first.
func (s *Store) History() []Sale {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneSales(s.state.History)
}

// Draft looks up a parked sale by id.
func (s *Store) Draft(id string) (Sale, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := indexOfSale(s.state.Drafts, id); idx >= 0 {
		return s.state.Drafts[idx].clone(), true
	}
	return Sale{}, false
}

// HasActiveItems reports whether the active sale has any lines.
func (s *Store) HasActiveItems() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.ActiveSale.Items) > 0
}

// Totals returns the derived amounts of the active sale.
func (s *Store) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Totals()
}

// TaxRateBps returns the configured tax rate.
func (s *Store) TaxRateBps() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.TaxRateBps
}
