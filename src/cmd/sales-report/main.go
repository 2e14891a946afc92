package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"time"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"sales-report/src/pkg/config"
	"sales-report/src/pkg/pipeline"
	"sales-report/src/pkg/util"
)

/*
main fetches sales for a date range and writes the Excel report.

Without -start/-end the period is the last -days days ending today (UTC).
The report is mailed when the email settings are complete (-email auto),
always (-email require, fails early otherwise) or never (-email off).

Example:

	go run ./src/cmd/sales-report -start 2025-01-01 -end 2025-01-07 -email off
*/
func main() {
	config.LoadDotEnv()
	config.CheckIfEnvVarsPresent(config.EnvAPIBaseURL, config.EnvAPIKey)

	// common flags
	configPath := flag.String("config", "./cfg/config.json", "Path to your configuration file.")

	// program's custom flags
	startDate := flag.String("start", "", "First day of the report period, YYYY-MM-DD.")
	endDate := flag.String("end", "", "Last day of the report period, YYYY-MM-DD.")
	days := flag.Int("days", 7, "Length of the default period when -start and -end are omitted.")
	topN := flag.Int("top", 0, "Number of products in the Top Products sheet. 0 uses the config value.")
	outputDir := flag.String("out", "", "Directory for the report. Empty uses the config value.")
	emailModeFlag := flag.String("email", string(pipeline.EmailAuto), "Email delivery: auto, require or off.")

	// parse and init config
	flag.Parse()
	config.InitializeConfig(*configPath).QuitIf("error")

	if *startDate == "" && *endDate == "" {
		*startDate, *endDate = util.DefaultDateRange(time.Now(), util.Clamp(*days, 1, 366))
	}
	util.RequiredFlag(startDate, "start")
	util.RequiredFlag(endDate, "end")
	util.EnsureFlags()

	emailMode, err := pipeline.ParseEmailMode(*emailModeFlag)
	xerr.QuitIfError(err, "Invalid -email flag")

	settings, err := config.LoadSettings()
	xerr.QuitIfError(err, "Unable to load settings")

	if *topN != 0 {
		*topN = util.Clamp(*topN, 1, 100)
	}

	tl.Log(
		tl.Notice, palette.BlueBold, "%s for %s to %s. Config path: '%s'",
		"Building sales report", *startDate, *endDate, *configPath,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, e := pipeline.Run(ctx, settings, pipeline.Options{
		StartDate: *startDate,
		EndDate:   *endDate,
		TopN:      *topN,
		EmailMode: emailMode,
		OutputDir: *outputDir,
	})
	e.QuitIf("error")

	tl.Log(
		tl.Notice, palette.GreenBold, "%s '%s' (top %v products, email sent: %v)",
		"Report written to", result.ReportPath, len(result.Summary.TopProducts), result.EmailSent,
	)
}
