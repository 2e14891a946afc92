package sales

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// order_date layouts tried in order. Layouts without a zone are read as UTC.
var orderDateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02",
}

/*
Normalize validates the payload schema and converts every usable record into an Order.

It fails with *SchemaError when a required column is missing from all records.
A record is dropped (and counted in dropped) when order_id, order_date, quantity or
unit_price is missing or cannot be parsed. Dropping is not an error.
*/
func Normalize(records []RawOrder) (orders []Order, dropped int, err error) {
	missing := missingColumns(records)
	if len(missing) > 0 {
		return nil, 0, &SchemaError{Missing: missing}
	}

	orders = make([]Order, 0, len(records))
	for _, record := range records {
		order, ok := normalizeRecord(record)
		if !ok {
			dropped += 1
			continue
		}
		orders = append(orders, order)
	}

	return orders, dropped, nil
}

/*
missingColumns returns required columns that no record carries, in RequiredColumns order.

A key holding null still counts as present.
*/
func missingColumns(records []RawOrder) []string {
	present := make(map[string]bool, len(RequiredColumns))
	for _, record := range records {
		for column := range record {
			present[column] = true
		}
	}

	missing := make([]string, 0)
	for _, column := range RequiredColumns {
		if !present[column] {
			missing = append(missing, column)
		}
	}
	return missing
}

func normalizeRecord(record RawOrder) (order Order, ok bool) {
	orderID, hasOrderID := parseOrderID(record[ColumnOrderID])
	orderDate, hasOrderDate := parseOrderDate(record[ColumnOrderDate])
	quantity, hasQuantity := parseNumber(record[ColumnQuantity])
	unitPrice, hasUnitPrice := parseNumber(record[ColumnUnitPrice])
	if !hasOrderID || !hasOrderDate || !hasQuantity || !hasUnitPrice {
		return order, false
	}

	discount := parseNullNumber(record[ColumnDiscount])
	shipping := parseNullNumber(record[ColumnShipping])

	// invalid NullDecimal carries a zero Decimal, so missing discount/shipping count as 0
	grossRevenue := quantity.Mul(unitPrice)
	netRevenue := grossRevenue.Sub(discount.Decimal).Add(shipping.Decimal)

	order = Order{
		OrderID:      orderID,
		OrderDate:    orderDate,
		CustomerID:   parseText(record[ColumnCustomerID]),
		Country:      parseText(record[ColumnCountry]),
		Channel:      parseText(record[ColumnChannel]),
		Product:      parseText(record[ColumnProduct]),
		Quantity:     quantity,
		UnitPrice:    unitPrice,
		Discount:     discount,
		Shipping:     shipping,
		GrossRevenue: grossRevenue,
		NetRevenue:   netRevenue,
	}
	return order, true
}

// parseOrderID keeps strings as-is and stringifies scalars. Only a missing value is null.
func parseOrderID(value any) (orderID string, ok bool) {
	switch typed := value.(type) {
	case nil:
		return "", false
	case float64:
		if math.IsNaN(typed) {
			return "", false
		}
	}
	return stringify(value), true
}

func parseOrderDate(value any) (orderDate time.Time, ok bool) {
	raw, isString := value.(string)
	if !isString {
		return orderDate, false
	}

	trimmed := strings.TrimSpace(raw)
	for _, layout := range orderDateLayouts {
		parsed, parseErr := time.Parse(layout, trimmed)
		if parseErr == nil {
			return parsed, true
		}
	}

	return orderDate, false
}

/*
parseNumber coerces a payload value into a decimal.

Accepted: json.Number, every Go integer kind, float32/float64, and numeric strings.
NaN, infinities, booleans and anything else are treated as null.
*/
func parseNumber(value any) (number decimal.Decimal, ok bool) {
	switch typed := value.(type) {
	case json.Number:
		return parseNumericString(typed.String())
	case string:
		return parseNumericString(typed)
	case float64:
		return parseFloat(typed)
	case float32:
		return parseFloat(float64(typed))
	case int:
		return decimal.NewFromInt(int64(typed)), true
	case int32:
		return decimal.NewFromInt(int64(typed)), true
	case int64:
		return decimal.NewFromInt(typed), true
	case int8:
		return decimal.NewFromInt(int64(typed)), true
	case int16:
		return decimal.NewFromInt(int64(typed)), true
	case uint:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(typed)), 0), true
	case uint8:
		return decimal.NewFromInt(int64(typed)), true
	case uint16:
		return decimal.NewFromInt(int64(typed)), true
	case uint32:
		return decimal.NewFromInt(int64(typed)), true
	case uint64:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(typed), 0), true
	}
	return number, false
}

func parseNullNumber(value any) decimal.NullDecimal {
	number, ok := parseNumber(value)
	return decimal.NullDecimal{Decimal: number, Valid: ok}
}

func parseNumericString(raw string) (number decimal.Decimal, ok bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return number, false
	}

	parsed, parseErr := decimal.NewFromString(trimmed)
	if parseErr != nil {
		return number, false
	}
	return parsed, true
}

func parseFloat(raw float64) (number decimal.Decimal, ok bool) {
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return number, false
	}
	return decimal.NewFromFloat(raw), true
}

// parseText trims a text field. A missing value becomes an empty string.
func parseText(value any) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(stringify(value))
}

func stringify(value any) string {
	switch typed := value.(type) {
	case string:
		return typed
	case json.Number:
		return typed.String()
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(typed)
	}
	return fmt.Sprint(value)
}
