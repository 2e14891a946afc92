// Package sales turns raw order payloads into normalized orders and aggregates them into report figures.
package sales

import (
	"time"

	"github.com/shopspring/decimal"
)

// Column names of the order payload returned by the sales API.
const (
	ColumnOrderID    = "order_id"
	ColumnOrderDate  = "order_date"
	ColumnCustomerID = "customer_id"
	ColumnCountry    = "country"
	ColumnChannel    = "channel"
	ColumnProduct    = "product"
	ColumnQuantity   = "quantity"
	ColumnUnitPrice  = "unit_price"
	ColumnDiscount   = "discount"
	ColumnShipping   = "shipping"
)

// RequiredColumns must each appear in at least one record of a payload.
var RequiredColumns = []string{
	ColumnOrderID,
	ColumnOrderDate,
	ColumnCustomerID,
	ColumnCountry,
	ColumnChannel,
	ColumnProduct,
	ColumnQuantity,
	ColumnUnitPrice,
	ColumnDiscount,
	ColumnShipping,
}

/*
RawOrder is a single order object exactly as decoded from the API.

Nothing is guaranteed about it: any field may be missing, null, or of the wrong type.
Numbers are expected to be decoded as json.Number, but plain Go numbers work too.
*/
type RawOrder map[string]any

/*
Order is a normalized order.

OrderID, OrderDate, Quantity and UnitPrice are always set. Discount and Shipping
may be invalid (null), in which case they count as zero in NetRevenue.
Text fields are trimmed; a missing value becomes an empty string.
*/
type Order struct {
	OrderID    string    `json:"order_id"`
	OrderDate  time.Time `json:"order_date"`
	CustomerID string    `json:"customer_id"`
	Country    string    `json:"country"`
	Channel    string    `json:"channel"`
	Product    string    `json:"product"`

	Quantity  decimal.Decimal     `json:"quantity"`
	UnitPrice decimal.Decimal     `json:"unit_price"`
	Discount  decimal.NullDecimal `json:"discount"`
	Shipping  decimal.NullDecimal `json:"shipping"`

	GrossRevenue decimal.Decimal `json:"gross_revenue"`
	NetRevenue   decimal.Decimal `json:"net_revenue"`
}

// KPISet holds the scalar figures of a report.
type KPISet struct {
	TotalOrders     int             `json:"total_orders"`
	TotalCustomers  int             `json:"total_customers"`
	TotalNetRevenue decimal.Decimal `json:"total_net_revenue"`
	AvgOrderValue   decimal.Decimal `json:"avg_order_value"`
}

// DayRevenue is the net revenue of one calendar day. Day is midnight UTC.
type DayRevenue struct {
	Day        time.Time       `json:"day"`
	NetRevenue decimal.Decimal `json:"net_revenue"`
}

// KeyRevenue is the net revenue of one channel or product.
type KeyRevenue struct {
	Key        string          `json:"key"`
	NetRevenue decimal.Decimal `json:"net_revenue"`
}

// Summary bundles everything the report renders.
type Summary struct {
	KPIs        KPISet       `json:"kpis"`
	ByDay       []DayRevenue `json:"by_day"`
	ByChannel   []KeyRevenue `json:"by_channel"`
	TopProducts []KeyRevenue `json:"top_products"`
}
