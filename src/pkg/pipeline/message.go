package pipeline

import (
	"fmt"
	"strings"

	"sales-report/src/pkg/fetch"
	"sales-report/src/pkg/sales"
)

func Subject(params fetch.Params) string {
	return fmt.Sprintf("Sales report %s to %s", params.StartDate, params.EndDate)
}

/*
Body is the plain-text email body: the period followed by the KPIs.

Example:

	Sales report for 2025-01-01 to 2025-01-07.

	Total orders: 3
	Total customers: 2
	Total net revenue: 120.50 USD
	Average order value: 40.17 USD

	The full report is attached.
*/
func Body(params fetch.Params, kpis sales.KPISet, currency string) string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "Sales report for %s to %s.\n\n", params.StartDate, params.EndDate)
	fmt.Fprintf(&builder, "Total orders: %d\n", kpis.TotalOrders)
	fmt.Fprintf(&builder, "Total customers: %d\n", kpis.TotalCustomers)
	fmt.Fprintf(&builder, "Total net revenue: %s %s\n", kpis.TotalNetRevenue.StringFixed(2), currency)
	fmt.Fprintf(&builder, "Average order value: %s %s\n", kpis.AvgOrderValue.StringFixed(2), currency)
	builder.WriteString("\nThe full report is attached.\n")
	return builder.String()
}
