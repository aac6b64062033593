package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/celtis-pos/internal/app"
	"github.com/odyssey-erp/celtis-pos/internal/catalog"
	"github.com/odyssey-erp/celtis-pos/internal/i18n"
	jobmetrics "github.com/odyssey-erp/celtis-pos/internal/jobs"
	"github.com/odyssey-erp/celtis-pos/internal/observability"
	"github.com/odyssey-erp/celtis-pos/internal/platform/kv"
	"github.com/odyssey-erp/celtis-pos/internal/pos"
	poshttp "github.com/odyssey-erp/celtis-pos/internal/pos/http"
	"github.com/odyssey-erp/celtis-pos/internal/toast"
	"github.com/odyssey-erp/celtis-pos/internal/view"
	"github.com/odyssey-erp/celtis-pos/jobs"
	_ "github.com/odyssey-erp/celtis-pos/testing"
)

type register struct {
	router  http.Handler
	backing kv.Store
	metrics *observability.Metrics
}

func newRegister(t *testing.T, backing kv.Store) *register {
	t.Helper()
	ctx := context.Background()
	metrics := observability.NewMetrics()
	sales := pos.NewStore(ctx, pos.NewRepository(backing), pos.Options{Recorder: metrics})
	products := catalog.NewStore(ctx, backing, catalog.Options{Recorder: metrics})
	engine, err := view.NewEngine()
	require.NoError(t, err)
	toasts := toast.NewCenter()
	t.Cleanup(toasts.Close)

	router := app.NewRouter(app.RouterParams{
		Config: &app.Config{RateLimitPerMinute: 1000},
		RegisterHandler: poshttp.NewHandler(poshttp.Deps{
			Sales:      sales,
			Catalog:    products,
			Translator: i18n.NewTranslator(ctx, backing, i18n.Options{}),
			Toasts:     toasts,
			Templates:  engine,
		}),
		CatalogHandler: catalog.NewHandler(nil, products),
		JobHandler:     jobs.NewHandler(nil, backing, nil),
		Metrics:        metrics,
	})
	return &register{router: router, backing: backing, metrics: metrics}
}

func (r *register) call(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.router.ServeHTTP(rec, req)
	return rec
}

func TestSaleSurvivesRestart(t *testing.T) {
	backing := kv.NewMemory()
	first := newRegister(t, backing)

	rec := first.call(t, http.MethodPost, "/api/catalog/products", `{"name":"Tea","sku":"DRK-TEA","price":"3.50","category":"Drinks"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var tea catalog.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tea))

	require.Equal(t, http.StatusOK, first.call(t, http.MethodPost, "/api/sale/lines", `{"productId":"`+tea.ID+`"}`).Code)
	require.Equal(t, http.StatusOK, first.call(t, http.MethodPut, "/api/sale/note", `{"note":"to go"}`).Code)
	require.Equal(t, http.StatusOK, first.call(t, http.MethodPost, "/api/sale/park", "").Code)
	require.Equal(t, http.StatusOK, first.call(t, http.MethodPost, "/api/sale/lines", `{"productId":"p_cookie"}`).Code)

	second := newRegister(t, backing)
	rec = second.call(t, http.MethodGet, "/api/sale", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Chocolate Cookie")

	rec = second.call(t, http.MethodGet, "/api/drafts", "")
	var drafts []pos.Sale
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &drafts))
	require.Len(t, drafts, 1)
	assert.Equal(t, "to go", drafts[0].Note)
	assert.Equal(t, int64(350), drafts[0].Items[0].UnitPriceCents)
}

func TestPaidSalesFeedDailySummary(t *testing.T) {
	backing := kv.NewMemory()
	reg := newRegister(t, backing)

	reg.call(t, http.MethodPost, "/api/sale/lines", `{"productId":"p_espresso","addonIds":["a_extra_shot"]}`)
	require.Equal(t, http.StatusOK, reg.call(t, http.MethodPost, "/api/sale/pay", `{"method":"card"}`).Code)
	reg.call(t, http.MethodPost, "/api/sale/lines", `{"productId":"p_water"}`)
	reg.call(t, http.MethodPatch, "/api/sale/lines/missing", `{"qty":3}`)
	require.Equal(t, http.StatusOK, reg.call(t, http.MethodPost, "/api/sale/pay", `{"method":"cash"}`).Code)

	today := time.Now().UTC().Format(jobs.DateLayout)
	rec := reg.call(t, http.MethodGet, "/jobs/summaries/"+today, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	promReg := prometheus.NewRegistry()
	job := jobs.NewSalesSummaryJob(pos.NewRepository(backing), backing, nil, jobmetrics.NewMetrics(promReg))
	task, err := jobs.NewSalesSummaryTask(today)
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	rec = reg.call(t, http.MethodGet, "/jobs/summaries/"+today, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var summary jobs.SalesSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 2, summary.Sales)
	assert.Equal(t, int64(1296+540), summary.AmountCents)
	assert.Equal(t, jobs.MethodTotals{Sales: 1, AmountCents: 1296}, summary.ByMethod[pos.PaymentMethodCard])
	assert.Equal(t, jobs.MethodTotals{Sales: 1, AmountCents: 540}, summary.ByMethod[pos.PaymentMethodCash])

	scrape := httptest.NewRecorder()
	reg.metrics.Handler().ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, scrape.Body.String(), `celtis_pos_sales_paid_total{method="card"} 1`)
	assert.Contains(t, scrape.Body.String(), `celtis_pos_sales_paid_cents_total{method="cash"} 540`)

	families, err := promReg.Gather()
	require.NoError(t, err)
	var runs float64
	for _, fam := range families {
		if fam.GetName() != "celtis_jobs_total" {
			continue
		}
		for _, m := range fam.GetMetric() {
			runs += m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, float64(1), runs)
}
