// Package report renders an aggregated sales summary into an .xlsx workbook.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"
	"github.com/xuri/excelize/v2"

	"sales-report/src/pkg/sales"
)

// Sheet names, in workbook order.
const (
	SheetSummary     = "Summary"
	SheetByDay       = "Revenue by Day"
	SheetByChannel   = "Revenue by Channel"
	SheetTopProducts = "Top Products"
)

// UnspecifiedLabel replaces empty channel or product names in tables and charts.
const UnspecifiedLabel = "(unspecified)"

const (
	builtinFormatCount = 3 // #,##0
	builtinFormatMoney = 4 // #,##0.00
	dayFormat          = "yyyy-mm-dd"
)

// Input is everything the workbook shows.
type Input struct {
	Summary     sales.Summary `json:"summary"`
	StartDate   string        `json:"start_date"`
	EndDate     string        `json:"end_date"`
	Currency    string        `json:"currency"`
	GeneratedAt time.Time     `json:"generated_at"`
}

// chartSpec describes the chart drawn next to a table.
type chartSpec struct {
	chartType excelize.ChartType
	title     string
}

type cellStyles struct {
	header int
	count  int
	money  int
	day    int
}

/*
OutputPath builds the report file path for a date range.

Example:

	outputs/sales-report_2025-01-01_to_2025-01-07.xlsx
*/
func OutputPath(outputDir string, startDate string, endDate string) string {
	fileName := fmt.Sprintf("%s_%s_to_%s.xlsx", Cfg.FilePrefix, startDate, endDate)
	return filepath.Join(outputDir, fileName)
}

/*
BuildWorkbook lays out the summary into four sheets and writes it to outputPath.

Sheets:
  - Summary: KPI name/value pairs plus period, currency and generation time
  - Revenue by Day: table and line chart
  - Revenue by Channel: table and bar chart
  - Top Products: table

The file is written through a temporary sibling and renamed into place,
so a failed run never leaves a partial report at outputPath.
*/
func BuildWorkbook(outputPath string, input Input) (path string, e *xerr.Error) {
	tl.Log(tl.Info, palette.Blue, "%s workbook '%s'", "Building", outputPath)

	workbook := excelize.NewFile()
	defer func() {
		_ = workbook.Close()
	}()

	styles, e := newCellStyles(workbook)
	if e != nil {
		return "", e
	}

	e = writeSummarySheet(workbook, styles, input)
	if e != nil {
		return "", e
	}

	e = writeDaySheet(workbook, styles, input.Summary.ByDay)
	if e != nil {
		return "", e
	}

	e = writeRankingSheet(workbook, styles, SheetByChannel, "Channel", input.Summary.ByChannel, &chartSpec{chartType: excelize.Col, title: "Net Revenue by Channel"})
	if e != nil {
		return "", e
	}

	e = writeRankingSheet(workbook, styles, SheetTopProducts, "Product", input.Summary.TopProducts, nil)
	if e != nil {
		return "", e
	}

	e = saveWorkbook(workbook, outputPath)
	if e != nil {
		return "", e
	}

	tl.Log(tl.Info1, palette.Green, "Saved workbook to '%s'", outputPath)
	return outputPath, nil
}

func newCellStyles(workbook *excelize.File) (styles cellStyles, e *xerr.Error) {
	var err error
	dayFormatText := dayFormat

	styles.header, err = workbook.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err == nil {
		styles.count, err = workbook.NewStyle(&excelize.Style{NumFmt: builtinFormatCount})
	}
	if err == nil {
		styles.money, err = workbook.NewStyle(&excelize.Style{NumFmt: builtinFormatMoney})
	}
	if err == nil {
		styles.day, err = workbook.NewStyle(&excelize.Style{CustomNumFmt: &dayFormatText})
	}
	if err != nil {
		e = xerr.NewError(err, "create workbook cell styles", nil)
		return styles, e
	}

	return styles, nil
}

func writeSummarySheet(workbook *excelize.File, styles cellStyles, input Input) (e *xerr.Error) {
	// a new workbook starts with a single default sheet
	defaultSheet := workbook.GetSheetName(0)
	err := workbook.SetSheetName(defaultSheet, SheetSummary)
	if err != nil {
		return xerr.NewError(err, "rename default sheet", SheetSummary)
	}

	kpis := input.Summary.KPIs
	rows := [][]any{
		{"Total Orders", float64(kpis.TotalOrders)},
		{"Total Customers", float64(kpis.TotalCustomers)},
		{fmt.Sprintf("Total Net Revenue (%s)", input.Currency), kpis.TotalNetRevenue.InexactFloat64()},
		{fmt.Sprintf("Average Order Value (%s)", input.Currency), kpis.AvgOrderValue.InexactFloat64()},
	}

	lastRow, e := writeTable(workbook, styles, SheetSummary, []string{"KPI", "Value"}, rows)
	if e != nil {
		return e
	}

	e = applyStyle(workbook, SheetSummary, "B2", "B3", styles.count)
	if e != nil {
		return e
	}
	e = applyStyle(workbook, SheetSummary, "B4", "B5", styles.money)
	if e != nil {
		return e
	}

	// run details below the KPIs, separated by an empty row
	details := [][]any{
		{"Report Period", fmt.Sprintf("%s to %s", input.StartDate, input.EndDate)},
		{"Currency", input.Currency},
		{"Generated At (UTC)", input.GeneratedAt.UTC().Format("2006-01-02T15:04:05Z")},
	}
	for index, detail := range details {
		e = setRow(workbook, SheetSummary, lastRow+2+index, detail)
		if e != nil {
			return e
		}
	}

	return setColumnWidths(workbook, SheetSummary, 28, 24)
}

func writeDaySheet(workbook *excelize.File, styles cellStyles, byDay []sales.DayRevenue) (e *xerr.Error) {
	_, err := workbook.NewSheet(SheetByDay)
	if err != nil {
		return xerr.NewError(err, "create sheet", SheetByDay)
	}

	rows := make([][]any, 0, len(byDay))
	for _, day := range byDay {
		rows = append(rows, []any{day.Day, day.NetRevenue.InexactFloat64()})
	}

	lastRow, e := writeTable(workbook, styles, SheetByDay, []string{"Day", "Net Revenue"}, rows)
	if e != nil {
		return e
	}

	if len(rows) > 0 {
		e = applyStyle(workbook, SheetByDay, "A2", cellName(1, lastRow), styles.day)
		if e != nil {
			return e
		}
		e = applyStyle(workbook, SheetByDay, "B2", cellName(2, lastRow), styles.money)
		if e != nil {
			return e
		}
		e = addChart(workbook, SheetByDay, excelize.Line, "Net Revenue by Day", "Day", lastRow)
		if e != nil {
			return e
		}
	}

	return setColumnWidths(workbook, SheetByDay, 14, 16)
}

/*
writeRankingSheet writes a key/revenue table for channels or products.

A nil chart means the sheet gets no chart.
*/
func writeRankingSheet(workbook *excelize.File, styles cellStyles, sheet string, keyHeader string, ranking []sales.KeyRevenue, chart *chartSpec) (e *xerr.Error) {
	_, err := workbook.NewSheet(sheet)
	if err != nil {
		return xerr.NewError(err, "create sheet", sheet)
	}

	rows := make([][]any, 0, len(ranking))
	for _, row := range ranking {
		rows = append(rows, []any{displayKey(row.Key), row.NetRevenue.InexactFloat64()})
	}

	lastRow, e := writeTable(workbook, styles, sheet, []string{keyHeader, "Net Revenue"}, rows)
	if e != nil {
		return e
	}

	if len(rows) > 0 {
		e = applyStyle(workbook, sheet, "B2", cellName(2, lastRow), styles.money)
		if e != nil {
			return e
		}
		if chart != nil {
			e = addChart(workbook, sheet, chart.chartType, chart.title, keyHeader, lastRow)
			if e != nil {
				return e
			}
		}
	}

	return setColumnWidths(workbook, sheet, 28, 16)
}

/*
writeTable writes a bold, centered header row at row 1 followed by rows.

It returns the index of the last written row (1 when rows is empty).
*/
func writeTable(workbook *excelize.File, styles cellStyles, sheet string, headers []string, rows [][]any) (lastRow int, e *xerr.Error) {
	headerValues := make([]any, 0, len(headers))
	for _, header := range headers {
		headerValues = append(headerValues, header)
	}

	e = setRow(workbook, sheet, 1, headerValues)
	if e != nil {
		return 0, e
	}
	e = applyStyle(workbook, sheet, "A1", cellName(len(headers), 1), styles.header)
	if e != nil {
		return 0, e
	}

	for index, row := range rows {
		e = setRow(workbook, sheet, index+2, row)
		if e != nil {
			return 0, e
		}
	}

	return len(rows) + 1, nil
}

func setRow(workbook *excelize.File, sheet string, row int, values []any) (e *xerr.Error) {
	for column, value := range values {
		cell := cellName(column+1, row)
		err := workbook.SetCellValue(sheet, cell, value)
		if err != nil {
			return xerr.NewErrorECOL(err, "set cell value", "cell", fmt.Sprintf("%s!%s", sheet, cell))
		}
	}
	return nil
}

func applyStyle(workbook *excelize.File, sheet string, topLeft string, bottomRight string, style int) (e *xerr.Error) {
	err := workbook.SetCellStyle(sheet, topLeft, bottomRight, style)
	if err != nil {
		return xerr.NewErrorECOL(err, "set cell style", "range", fmt.Sprintf("%s!%s:%s", sheet, topLeft, bottomRight))
	}
	return nil
}

func setColumnWidths(workbook *excelize.File, sheet string, keyWidth float64, valueWidth float64) (e *xerr.Error) {
	err := workbook.SetColWidth(sheet, "A", "A", keyWidth)
	if err == nil {
		err = workbook.SetColWidth(sheet, "B", "B", valueWidth)
	}
	if err != nil {
		return xerr.NewError(err, "set column widths", sheet)
	}
	return nil
}

// addChart plots column B against the categories in column A, anchored at D2.
func addChart(workbook *excelize.File, sheet string, chartType excelize.ChartType, title string, categoryTitle string, lastRow int) (e *xerr.Error) {
	chart := &excelize.Chart{
		Type: chartType,
		Series: []excelize.ChartSeries{
			{
				Name:       fmt.Sprintf("'%s'!$B$1", sheet),
				Categories: fmt.Sprintf("'%s'!$A$2:$A$%d", sheet, lastRow),
				Values:     fmt.Sprintf("'%s'!$B$2:$B$%d", sheet, lastRow),
			},
		},
		Title:     []excelize.RichTextRun{{Text: title}},
		XAxis:     excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: categoryTitle}}},
		YAxis:     excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: "Net Revenue"}}},
		Dimension: excelize.ChartDimension{Width: 640, Height: 320},
	}

	err := workbook.AddChart(sheet, "D2", chart)
	if err != nil {
		return xerr.NewError(err, "add chart", sheet)
	}
	return nil
}

/*
saveWorkbook writes the workbook to a temporary file next to outputPath and renames it.

The temporary file is closed on every path and removed when anything fails.
*/
func saveWorkbook(workbook *excelize.File, outputPath string) (e *xerr.Error) {
	temporaryPath := outputPath + ".tmp"

	file, createErr := os.Create(temporaryPath)
	if createErr != nil {
		return xerr.NewError(createErr, "create report file", temporaryPath)
	}

	writeErr := workbook.Write(file)
	closeErr := file.Close()
	if writeErr != nil || closeErr != nil {
		_ = os.Remove(temporaryPath)
		if writeErr != nil {
			return xerr.NewError(writeErr, "write report file", temporaryPath)
		}
		return xerr.NewError(closeErr, "close report file", temporaryPath)
	}

	renameErr := os.Rename(temporaryPath, outputPath)
	if renameErr != nil {
		_ = os.Remove(temporaryPath)
		return xerr.NewError(renameErr, "move report file into place", outputPath)
	}

	return nil
}

func cellName(column int, row int) string {
	// column and row are always >= 1 here, which is the only failure case
	name, _ := excelize.CoordinatesToCellName(column, row)
	return name
}

func displayKey(key string) string {
	if key == "" {
		return UnspecifiedLabel
	}
	return key
}
