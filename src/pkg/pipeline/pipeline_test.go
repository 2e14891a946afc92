package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"sales-report/src/pkg/config"
	"sales-report/src/pkg/fetch"
	"sales-report/src/pkg/mockapi"
	"sales-report/src/pkg/report"
	"sales-report/src/pkg/sales"
)

func apiSettings(baseURL string) config.Settings {
	return config.Settings{
		APIBaseURL:     baseURL,
		APIKey:         "test-key",
		APITimeout:     5 * time.Second,
		ReportCurrency: "EUR",
		EmailProvider:  "smtp",
	}
}

func newMockAPI(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(mockapi.NewServer(mockapi.Options{APIKey: "test-key", RequestsPerSecond: 100, Burst: 100}))
	t.Cleanup(server.Close)
	return server
}

func TestParseEmailMode(t *testing.T) {
	for raw, want := range map[string]EmailMode{"": EmailAuto, "AUTO": EmailAuto, "require": EmailRequire, " off ": EmailOff} {
		mode, err := ParseEmailMode(raw)
		require.NoError(t, err)
		assert.Equal(t, want, mode)
	}

	_, err := ParseEmailMode("always")
	assert.Error(t, err)
}

func TestRunAgainstMockAPI(t *testing.T) {
	server := newMockAPI(t)
	outputDir := filepath.Join(t.TempDir(), "nested", "outputs")

	fixed := time.Date(2025, 1, 8, 12, 0, 0, 0, time.UTC)
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = time.Now })

	result, e := Run(context.Background(), apiSettings(server.URL), Options{
		StartDate: "2025-01-01",
		EndDate:   "2025-01-07",
		TopN:      5,
		EmailMode: EmailAuto,
		OutputDir: outputDir,
	})
	require.Nil(t, e)

	assert.Equal(t, filepath.Join(outputDir, report.Cfg.FilePrefix+"_2025-01-01_to_2025-01-07.xlsx"), result.ReportPath)
	assert.FileExists(t, result.ReportPath)
	assert.False(t, result.EmailSent)
	assert.Equal(t, fixed, result.GeneratedAt)

	assert.Positive(t, result.Fetched)
	assert.Equal(t, result.Fetched/25, result.Dropped)
	assert.Equal(t, result.Fetched-result.Dropped, result.Summary.KPIs.TotalOrders)
	assert.LessOrEqual(t, len(result.Summary.TopProducts), 5)
	assert.Len(t, result.Summary.ByDay, 7)

	workbook, err := excelize.OpenFile(result.ReportPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = workbook.Close() })
	assert.Equal(t, []string{report.SheetSummary, report.SheetByDay, report.SheetByChannel, report.SheetTopProducts}, workbook.GetSheetList())
}

func TestRunRequireEmailFailsBeforeFetch(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(server.Close)

	outputDir := filepath.Join(t.TempDir(), "outputs")
	_, e := Run(context.Background(), apiSettings(server.URL), Options{
		StartDate: "2025-01-01",
		EndDate:   "2025-01-07",
		EmailMode: EmailRequire,
		OutputDir: outputDir,
	})
	assert.NotNil(t, e)
	assert.Equal(t, int32(0), calls.Load())
	assert.NoDirExists(t, outputDir)
}

func TestRunSchemaErrorWritesNothing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"order_id":"A1","order_date":"2025-01-01"}]`))
	}))
	t.Cleanup(server.Close)

	outputDir := filepath.Join(t.TempDir(), "outputs")
	_, e := Run(context.Background(), apiSettings(server.URL), Options{
		StartDate: "2025-01-01",
		EndDate:   "2025-01-01",
		EmailMode: EmailOff,
		OutputDir: outputDir,
	})
	assert.NotNil(t, e)
	assert.NoDirExists(t, outputDir)
}

func TestRunFetchErrorWritesNothing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	outputDir := filepath.Join(t.TempDir(), "outputs")
	_, e := Run(context.Background(), apiSettings(server.URL), Options{
		StartDate: "2025-01-01",
		EndDate:   "2025-01-01",
		EmailMode: EmailOff,
		OutputDir: outputDir,
	})
	assert.NotNil(t, e)

	_, statErr := os.Stat(outputDir)
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestRunRejectsReversedPeriod(t *testing.T) {
	_, e := Run(context.Background(), apiSettings("http://127.0.0.1:1"), Options{StartDate: "2025-01-07", EndDate: "2025-01-01"})
	assert.NotNil(t, e)
}

func TestDecideEmail(t *testing.T) {
	complete := config.Settings{
		EmailProvider: "smtp",
		SMTPHost:      "smtp.example.com",
		SMTPPort:      587,
		SMTPUsername:  "user",
		SMTPPassword:  "pass",
		EmailFrom:     "reports@example.com",
		EmailTo:       "a@example.com",
	}

	send, e := decideEmail(complete, EmailAuto)
	require.Nil(t, e)
	assert.True(t, send)

	send, e = decideEmail(complete, EmailOff)
	require.Nil(t, e)
	assert.False(t, send)

	send, e = decideEmail(config.Settings{EmailProvider: "smtp"}, EmailAuto)
	require.Nil(t, e)
	assert.False(t, send)

	_, e = decideEmail(config.Settings{EmailProvider: "smtp"}, EmailRequire)
	assert.NotNil(t, e)
}

func TestSubjectAndBody(t *testing.T) {
	params := fetch.Params{StartDate: "2025-01-01", EndDate: "2025-01-07"}
	kpis := sales.KPISet{
		TotalOrders:     3,
		TotalCustomers:  2,
		TotalNetRevenue: decimal.RequireFromString("120.5"),
		AvgOrderValue:   decimal.RequireFromString("40.1666"),
	}

	assert.Equal(t, "Sales report 2025-01-01 to 2025-01-07", Subject(params))

	body := Body(params, kpis, "USD")
	assert.Contains(t, body, "Total orders: 3\n")
	assert.Contains(t, body, "Total customers: 2\n")
	assert.Contains(t, body, "Total net revenue: 120.50 USD\n")
	assert.Contains(t, body, "Average order value: 40.17 USD\n")
}
