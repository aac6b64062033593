package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/singleflight"

	jobmetrics "github.com/odyssey-erp/celtis-pos/internal/jobs"
	"github.com/odyssey-erp/celtis-pos/internal/platform/kv"
	"github.com/odyssey-erp/celtis-pos/internal/pos"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// SummaryKeyPrefix prefixes the key-value entry of each daily summary.
const SummaryKeyPrefix = "celtis.pos.summary."

// SummaryKey returns the storage key of the summary for date.
func SummaryKey(date string) string {
	return SummaryKeyPrefix + date
}

// MethodTotals aggregates the sales settled with one payment method.
type MethodTotals struct {
	Sales       int   `json:"sales"`
	AmountCents int64 `json:"amountCents"`
}

// SalesSummary is one day of paid sales.
type SalesSummary struct {
	Date          string                             `json:"date"`
	Sales         int                                `json:"sales"`
	Items         int                                `json:"items"`
	SubtotalCents int64                              `json:"subtotalCents"`
	AmountCents   int64                              `json:"amountCents"`
	ByMethod      map[pos.PaymentMethod]MethodTotals `json:"byMethod"`
	GeneratedAt   time.Time                          `json:"generatedAt"`
}

// Methods returns the payment methods present in the summary, sorted.
func (s SalesSummary) Methods() []pos.PaymentMethod {
	methods := make([]pos.PaymentMethod, 0, len(s.ByMethod))
	for m := range s.ByMethod {
		methods = append(methods, m)
	}
	sort.Slice(methods, func(i, j int) bool { return methods[i] < methods[j] })
	return methods
}

// Summarize aggregates the sales in history paid on day (UTC).
func Summarize(history []pos.Sale, day time.Time) SalesSummary {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)
	summary := SalesSummary{
		Date:     start.Format(DateLayout),
		ByMethod: map[pos.PaymentMethod]MethodTotals{},
	}
	for _, sale := range history {
		if sale.Status != pos.SaleStatusPaid || sale.Payment == nil {
			continue
		}
		paidAt := sale.Payment.PaidAt.UTC()
		if paidAt.Before(start) || !paidAt.Before(end) {
			continue
		}
		totals := sale.Totals(0)
		summary.Sales++
		summary.Items += totals.ItemCount
		summary.SubtotalCents += totals.SubtotalCents
		summary.AmountCents += sale.Payment.AmountCents
		m := summary.ByMethod[sale.Payment.Method]
		m.Sales++
		m.AmountCents += sale.Payment.AmountCents
		summary.ByMethod[sale.Payment.Method] = m
	}
	return summary
}

// SalesSummaryJob builds and stores daily sales summaries from the persisted
// POS snapshot.
type SalesSummaryJob struct {
	Repo    pos.Repository
	Store   kv.Store
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
	group   singleflight.Group
}

// NewSalesSummaryJob wires dependencies for the summary handler.
func NewSalesSummaryJob(repo pos.Repository, store kv.Store, logger *slog.Logger, metrics *jobmetrics.Metrics) *SalesSummaryJob {
	return &SalesSummaryJob{
		Repo:    repo,
		Store:   store,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes sales summary tasks.
func (j *SalesSummaryJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("sales summary: handler not configured")
	}
	var payload SalesSummaryPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	day, err := j.resolveDay(payload.Date)
	if err != nil {
		j.logger().Warn("invalid summary date", slog.String("date", payload.Date), slog.Any("error", err))
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskSalesSummary)
	summary, err := j.Build(ctx, day)
	if err != nil {
		return tracker.End(err)
	}
	j.logger().Info("completed sales summary",
		slog.String("date", summary.Date),
		slog.Int("sales", summary.Sales),
		slog.Int64("amount_cents", summary.AmountCents),
	)
	return tracker.End(nil)
}

func (j *SalesSummaryJob) resolveDay(date string) (time.Time, error) {
	if date == "" {
		return j.now().AddDate(0, 0, -1), nil
	}
	return time.Parse(DateLayout, date)
}

// Build computes and stores the summary for day. Concurrent calls for the
// same day share one computation.
func (j *SalesSummaryJob) Build(ctx context.Context, day time.Time) (SalesSummary, error) {
	date := day.UTC().Format(DateLayout)
	v, err, shared := j.group.Do(date, func() (any, error) {
		return j.build(ctx, day)
	})
	if err != nil {
		return SalesSummary{}, err
	}
	if shared {
		j.logger().Debug("sales summary shared", slog.String("date", date))
	}
	return v.(SalesSummary), nil
}

func (j *SalesSummaryJob) build(ctx context.Context, day time.Time) (SalesSummary, error) {
	if j.Repo == nil || j.Store == nil {
		return SalesSummary{}, errors.New("sales summary: storage not configured")
	}
	var history []pos.Sale
	snap, err := j.Repo.Load(ctx)
	switch {
	case err == nil:
		history = snap.History
	case errors.Is(err, pos.ErrNoSnapshot):
		j.logger().Info("no pos snapshot, summary will be empty", slog.Any("reason", err))
	default:
		return SalesSummary{}, fmt.Errorf("sales summary: %w", err)
	}

	summary := Summarize(history, day)
	summary.GeneratedAt = j.now()
	payload, err := json.Marshal(summary)
	if err != nil {
		return SalesSummary{}, fmt.Errorf("sales summary: encode: %w", err)
	}
	if err := j.Store.Set(ctx, SummaryKey(summary.Date), payload); err != nil {
		return SalesSummary{}, fmt.Errorf("sales summary: save: %w", err)
	}
	for _, method := range []pos.PaymentMethod{pos.PaymentMethodCash, pos.PaymentMethodCard} {
		totals := summary.ByMethod[method]
		j.metrics().SetSummarisedSales(string(method), totals.Sales, totals.AmountCents)
	}
	return summary, nil
}

// LoadSummary reads a stored summary.
func LoadSummary(ctx context.Context, store kv.Store, date string) (SalesSummary, error) {
	raw, err := store.Get(ctx, SummaryKey(date))
	if err != nil {
		return SalesSummary{}, err
	}
	var summary SalesSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return SalesSummary{}, fmt.Errorf("sales summary: decode %s: %w", date, err)
	}
	return summary, nil
}

func (j *SalesSummaryJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskSalesSummary))
	}
	return slog.Default().With(slog.String("job", TaskSalesSummary))
}

func (j *SalesSummaryJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *SalesSummaryJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
