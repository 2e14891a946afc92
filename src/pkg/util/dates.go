package util

import (
	"fmt"
	"runtime"
	"strings"
	"time"
)

// DayLayout is the calendar-date format used on the command line and in API queries.
const DayLayout = "2006-01-02"

/*
DefaultDateRange returns the inclusive range of the last days days ending on now's date.

Example (now = 2025-01-10, days = 7): "2025-01-04", "2025-01-10"
*/
func DefaultDateRange(now time.Time, days int) (startDate string, endDate string) {
	if days < 1 {
		days = 1
	}
	end := now.UTC()
	start := end.AddDate(0, 0, -(days - 1))
	return start.Format(DayLayout), end.Format(DayLayout)
}

// ParseDay parses a YYYY-MM-DD string strictly.
func ParseDay(raw string) (day time.Time, err error) {
	day, err = time.Parse(DayLayout, strings.TrimSpace(raw))
	if err != nil {
		return day, fmt.Errorf("'%s' is not a YYYY-MM-DD date", raw)
	}
	return day, nil
}

/*
GetPackageName returns the short name of the package that called it.

Used in log lines so each package names itself without hardcoding.
*/
func GetPackageName() string {
	programCounter, _, _, ok := runtime.Caller(1)
	if !ok {
		return "unknown"
	}

	// e.g. "sales-report/src/pkg/report.InitializeConfig"
	fullName := runtime.FuncForPC(programCounter).Name()
	lastSlash := strings.LastIndex(fullName, "/")
	name := fullName[lastSlash+1:]
	if dot := strings.Index(name, "."); dot >= 0 {
		name = name[:dot]
	}
	return name
}
