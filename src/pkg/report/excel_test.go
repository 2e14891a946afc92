package report

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"sales-report/src/pkg/sales"
)

func sampleInput() Input {
	return Input{
		Summary: sales.Summary{
			KPIs: sales.KPISet{
				TotalOrders:     2,
				TotalCustomers:  1,
				TotalNetRevenue: decimal.NewFromInt(30),
				AvgOrderValue:   decimal.NewFromInt(15),
			},
			ByDay: []sales.DayRevenue{
				{Day: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), NetRevenue: decimal.NewFromInt(19)},
				{Day: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), NetRevenue: decimal.NewFromInt(11)},
			},
			ByChannel: []sales.KeyRevenue{
				{Key: "web", NetRevenue: decimal.NewFromInt(19)},
				{Key: "", NetRevenue: decimal.NewFromInt(11)},
			},
			TopProducts: []sales.KeyRevenue{
				{Key: "Bag", NetRevenue: decimal.RequireFromString("19.5")},
			},
		},
		StartDate:   "2025-01-01",
		EndDate:     "2025-01-02",
		Currency:    "EUR",
		GeneratedAt: time.Date(2025, 1, 3, 8, 0, 0, 0, time.UTC),
	}
}

func cellValue(t *testing.T, workbook *excelize.File, sheet string, cell string) string {
	t.Helper()
	value, err := workbook.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	return value
}

// chartParts maps every xl/charts/chartN.xml entry of the saved file to its XML.
func chartParts(t *testing.T, path string) map[string]string {
	t.Helper()
	archive, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer archive.Close()

	parts := make(map[string]string)
	for _, file := range archive.File {
		matched, _ := filepath.Match("xl/charts/chart*.xml", file.Name)
		if !matched {
			continue
		}
		reader, err := file.Open()
		require.NoError(t, err)
		content, err := io.ReadAll(reader)
		_ = reader.Close()
		require.NoError(t, err)
		parts[file.Name] = string(content)
	}
	return parts
}

func TestBuildWorkbookCharts(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "report.xlsx")

	_, e := BuildWorkbook(outputPath, sampleInput())
	require.Nil(t, e)

	parts := chartParts(t, outputPath)
	require.Len(t, parts, 2)

	dayChart := parts["xl/charts/chart1.xml"]
	assert.Contains(t, dayChart, "lineChart")
	assert.Contains(t, dayChart, "Revenue by Day")

	channelChart := parts["xl/charts/chart2.xml"]
	assert.Contains(t, channelChart, "barChart")
	assert.Contains(t, channelChart, `barDir val="col"`)
	assert.Contains(t, channelChart, "Revenue by Channel")
}

func TestBuildWorkbook(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "report.xlsx")

	path, e := BuildWorkbook(outputPath, sampleInput())
	require.Nil(t, e)
	assert.Equal(t, outputPath, path)

	workbook, err := excelize.OpenFile(outputPath)
	require.NoError(t, err)
	defer workbook.Close()

	assert.Equal(t, []string{SheetSummary, SheetByDay, SheetByChannel, SheetTopProducts}, workbook.GetSheetList())

	assert.Equal(t, "KPI", cellValue(t, workbook, SheetSummary, "A1"))
	assert.Equal(t, "Total Orders", cellValue(t, workbook, SheetSummary, "A2"))
	assert.Equal(t, "2", cellValue(t, workbook, SheetSummary, "B2"))
	assert.Equal(t, "Total Net Revenue (EUR)", cellValue(t, workbook, SheetSummary, "A4"))
	assert.Equal(t, "30", cellValue(t, workbook, SheetSummary, "B4"))
	assert.Equal(t, "15", cellValue(t, workbook, SheetSummary, "B5"))
	assert.Equal(t, "2025-01-01 to 2025-01-02", cellValue(t, workbook, SheetSummary, "B7"))
	assert.Equal(t, "EUR", cellValue(t, workbook, SheetSummary, "B8"))

	assert.Equal(t, "Net Revenue", cellValue(t, workbook, SheetByDay, "B1"))
	assert.Equal(t, "11", cellValue(t, workbook, SheetByDay, "B3"))

	assert.Equal(t, "web", cellValue(t, workbook, SheetByChannel, "A2"))
	assert.Equal(t, UnspecifiedLabel, cellValue(t, workbook, SheetByChannel, "A3"))

	assert.Equal(t, "Product", cellValue(t, workbook, SheetTopProducts, "A1"))
	assert.Equal(t, "19.5", cellValue(t, workbook, SheetTopProducts, "B2"))

	_, statErr := os.Stat(outputPath + ".tmp")
	assert.True(t, os.IsNotExist(statErr))
}

func TestBuildWorkbookEmptySummary(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "empty.xlsx")

	_, e := BuildWorkbook(outputPath, Input{StartDate: "2025-01-01", EndDate: "2025-01-01", Currency: "USD"})
	require.Nil(t, e)

	workbook, err := excelize.OpenFile(outputPath)
	require.NoError(t, err)
	defer workbook.Close()

	assert.Len(t, workbook.GetSheetList(), 4)
	assert.Equal(t, "0", cellValue(t, workbook, SheetSummary, "B2"))
	assert.Equal(t, "", cellValue(t, workbook, SheetByDay, "A2"))

	assert.Empty(t, chartParts(t, outputPath))
}

func TestBuildWorkbookUnwritableDirectory(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "missing-dir", "report.xlsx")

	_, e := BuildWorkbook(outputPath, sampleInput())
	assert.NotNil(t, e)

	_, statErr := os.Stat(outputPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestOutputPathAndEnsureOutputDir(t *testing.T) {
	outputDir := filepath.Join(t.TempDir(), "nested", "outputs")

	require.Nil(t, EnsureOutputDir(outputDir))
	info, err := os.Stat(outputDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	assert.Equal(t,
		filepath.Join(outputDir, "sales-report_2025-01-01_to_2025-01-07.xlsx"),
		OutputPath(outputDir, "2025-01-01", "2025-01-07"),
	)
}
