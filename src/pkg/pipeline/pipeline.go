// Package pipeline runs one report cycle: fetch, normalize, aggregate, render, notify.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"sales-report/src/pkg/config"
	"sales-report/src/pkg/email"
	"sales-report/src/pkg/fetch"
	"sales-report/src/pkg/report"
	"sales-report/src/pkg/sales"
)

// EmailMode decides what happens to the finished report.
type EmailMode string

const (
	// EmailAuto sends when the provider's settings are complete and skips otherwise.
	EmailAuto EmailMode = "auto"
	// EmailRequire fails the run up front when the settings are incomplete.
	EmailRequire EmailMode = "require"
	EmailOff     EmailMode = "off"
)

func ParseEmailMode(raw string) (mode EmailMode, err error) {
	switch EmailMode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", EmailAuto:
		return EmailAuto, nil
	case EmailRequire:
		return EmailRequire, nil
	case EmailOff:
		return EmailOff, nil
	}
	return mode, fmt.Errorf("unknown email mode '%s' (want auto, require or off)", raw)
}

type Options struct {
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	TopN      int       `json:"top_n"`
	EmailMode EmailMode `json:"email_mode"`
	OutputDir string    `json:"output_dir"`
}

// Result describes a finished run.
type Result struct {
	ReportPath  string        `json:"report_path"`
	Summary     sales.Summary `json:"summary"`
	Fetched     int           `json:"fetched"`
	Dropped     int           `json:"dropped"`
	EmailSent   bool          `json:"email_sent"`
	GeneratedAt time.Time     `json:"generated_at"`
}

// now is replaced in tests.
var now = time.Now

/*
Run executes the whole cycle for options.StartDate..options.EndDate.

Any failure aborts the run before the report is written or mailed:
  - missing email settings when EmailMode is require (checked before fetching)
  - fetch errors (wrapping fetch.ErrFetch)
  - schema errors (wrapping *sales.SchemaError)
  - workbook or email delivery errors
*/
func Run(ctx context.Context, settings config.Settings, options Options) (result Result, e *xerr.Error) {
	params := fetch.Params{StartDate: options.StartDate, EndDate: options.EndDate}
	if err := params.Validate(); err != nil {
		return result, xerr.NewError(err, "Invalid report period", params)
	}

	sendEmail, e := decideEmail(settings, options.EmailMode)
	if e != nil {
		return result, e
	}

	client := fetch.NewClient(settings.APIBaseURL, settings.APIKey, settings.APITimeout)
	records, e := client.FetchSales(ctx, params)
	if e != nil {
		return result, e
	}
	result.Fetched = len(records)

	orders, dropped, err := sales.Normalize(records)
	if err != nil {
		return result, xerr.NewError(err, "API payload does not match the expected schema", len(records))
	}
	result.Dropped = dropped
	if dropped > 0 {
		tl.Log(tl.Warning, palette.YellowDim, "Dropped %v of %v orders with a missing id, date, quantity or unit price", dropped, len(records))
	}

	topN := options.TopN
	if topN <= 0 {
		topN = report.Cfg.TopProducts
	}
	result.Summary = sales.Summarize(orders, topN)
	result.GeneratedAt = now().UTC()
	logKPIs(result.Summary.KPIs, settings.ReportCurrency)

	outputDir := options.OutputDir
	if outputDir == "" {
		outputDir = report.Cfg.OutputDir
	}
	e = report.EnsureOutputDir(outputDir)
	if e != nil {
		return result, e
	}

	result.ReportPath, e = report.BuildWorkbook(report.OutputPath(outputDir, params.StartDate, params.EndDate), report.Input{
		Summary:     result.Summary,
		StartDate:   params.StartDate,
		EndDate:     params.EndDate,
		Currency:    settings.ReportCurrency,
		GeneratedAt: result.GeneratedAt,
	})
	if e != nil {
		return result, e
	}

	if !sendEmail {
		return result, nil
	}

	subject := Subject(params)
	body := Body(params, result.Summary.KPIs, settings.ReportCurrency)
	e = email.SendReport(ctx, settings, subject, body, result.ReportPath)
	if e != nil {
		return result, e
	}
	result.EmailSent = true

	return result, nil
}

func decideEmail(settings config.Settings, mode EmailMode) (sendEmail bool, e *xerr.Error) {
	switch mode {
	case EmailOff:
		tl.Log(tl.Info, palette.Purple, "Email is %s", "turned off")
		return false, nil
	case EmailRequire:
		err := email.CheckSettings(settings)
		if err != nil {
			return false, xerr.NewError(err, "Email is required but cannot be sent", settings.EmailProvider)
		}
		return true, nil
	}

	err := email.CheckSettings(settings)
	if err != nil {
		var configErr *config.ConfigurationError
		if errors.As(err, &configErr) {
			tl.Log(tl.Info, palette.Purple, "Email is %s, missing %s", "skipped", strings.Join(configErr.Settings, ", "))
		}
		return false, nil
	}
	return true, nil
}

func logKPIs(kpis sales.KPISet, currency string) {
	tl.Log(
		tl.Notice, palette.GreenBold, "Orders: %v, customers: %v, net revenue: %s %s, average order: %s %s",
		kpis.TotalOrders, kpis.TotalCustomers,
		kpis.TotalNetRevenue.StringFixed(2), currency,
		kpis.AvgOrderValue.StringFixed(2), currency,
	)
}
