package sales

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultTopN is how many products TopProducts keeps when the caller has no preference.
const DefaultTopN = 10

/*
BuildKPIs computes the scalar report figures.

Orders and customers are counted by distinct id; orders without a customer id are
not counted as customers. AvgOrderValue is zero when there are no orders.
*/
func BuildKPIs(orders []Order) KPISet {
	orderIDs := make(map[string]struct{})
	customerIDs := make(map[string]struct{})
	totalNetRevenue := decimal.Zero

	for _, order := range orders {
		orderIDs[order.OrderID] = struct{}{}
		if order.CustomerID != "" {
			customerIDs[order.CustomerID] = struct{}{}
		}
		totalNetRevenue = totalNetRevenue.Add(order.NetRevenue)
	}

	kpis := KPISet{
		TotalOrders:     len(orderIDs),
		TotalCustomers:  len(customerIDs),
		TotalNetRevenue: totalNetRevenue,
		AvgOrderValue:   decimal.Zero,
	}
	if kpis.TotalOrders > 0 {
		kpis.AvgOrderValue = totalNetRevenue.Div(decimal.NewFromInt(int64(kpis.TotalOrders)))
	}

	return kpis
}

// RevenueByDay sums net revenue per calendar day, oldest day first.
func RevenueByDay(orders []Order) []DayRevenue {
	revenueByDay := make(map[time.Time]decimal.Decimal)
	for _, order := range orders {
		day := calendarDay(order.OrderDate)
		revenueByDay[day] = revenueByDay[day].Add(order.NetRevenue)
	}

	rows := make([]DayRevenue, 0, len(revenueByDay))
	for day, netRevenue := range revenueByDay {
		rows = append(rows, DayRevenue{Day: day, NetRevenue: netRevenue})
	}

	sort.Slice(rows, func(firstIndex int, secondIndex int) bool {
		return rows[firstIndex].Day.Before(rows[secondIndex].Day)
	})

	return rows
}

// RevenueByChannel sums net revenue per channel, highest revenue first.
func RevenueByChannel(orders []Order) []KeyRevenue {
	return rankByKey(orders, func(order Order) string { return order.Channel })
}

/*
TopProducts sums net revenue per product and keeps the n best, highest revenue first.

n <= 0 yields an empty list.
*/
func TopProducts(orders []Order, n int) []KeyRevenue {
	if n <= 0 {
		return []KeyRevenue{}
	}

	rows := rankByKey(orders, func(order Order) string { return order.Product })
	if len(rows) > n {
		rows = rows[:n]
	}
	return rows
}

// Summarize runs every aggregation over the same orders.
func Summarize(orders []Order, topN int) Summary {
	return Summary{
		KPIs:        BuildKPIs(orders),
		ByDay:       RevenueByDay(orders),
		ByChannel:   RevenueByChannel(orders),
		TopProducts: TopProducts(orders, topN),
	}
}

/*
rankByKey sums net revenue per key and sorts descending by revenue.

Equal revenues are ordered by key ascending so the output is deterministic.
*/
func rankByKey(orders []Order, keyOf func(Order) string) []KeyRevenue {
	revenueByKey := make(map[string]decimal.Decimal)
	for _, order := range orders {
		key := keyOf(order)
		revenueByKey[key] = revenueByKey[key].Add(order.NetRevenue)
	}

	rows := make([]KeyRevenue, 0, len(revenueByKey))
	for key, netRevenue := range revenueByKey {
		rows = append(rows, KeyRevenue{Key: key, NetRevenue: netRevenue})
	}

	sort.Slice(rows, func(firstIndex int, secondIndex int) bool {
		first, second := rows[firstIndex], rows[secondIndex]
		comparison := first.NetRevenue.Cmp(second.NetRevenue)
		if comparison != 0 {
			return comparison > 0
		}
		return first.Key < second.Key
	})

	return rows
}

func calendarDay(moment time.Time) time.Time {
	return time.Date(moment.Year(), moment.Month(), moment.Day(), 0, 0, 0, 0, time.UTC)
}
