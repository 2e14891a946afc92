package mockapi

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"sales-report/src/pkg/sales"
	"sales-report/src/pkg/util"
)

type catalogItem struct {
	name      string
	unitPrice float64
}

var catalog = []catalogItem{
	{"Backpack", 79.99},
	{"Water Bottle", 19.50},
	{"Running Shoes", 129.00},
	{"Yoga Mat", 35.25},
	{"Rain Jacket", 149.90},
	{"Beanie", 14.99},
	{"Trail Socks", 12.00},
	{"Headlamp", 42.75},
	{"Camping Mug", 9.95},
	{"Sunglasses", 89.00},
	{"Duffel Bag", 99.99},
	{"Fleece Hoodie", 64.50},
	{"Gloves", 24.90},
	{"Compass", 18.25},
}

var (
	channels  = []string{"web", "store", "marketplace", "app"}
	countries = []string{"US", "CA", "GB", "DE", "FR", "MX"}
)

// every brokenRowEvery-th generated order has an unusable quantity
const brokenRowEvery = 25

/*
GenerateOrders builds a deterministic set of raw orders for every day in [start, end].

The same day always yields the same orders, so repeated runs of a report match.
A few rows are deliberately malformed the way real payloads sometimes are.
*/
func GenerateOrders(start time.Time, end time.Time) []sales.RawOrder {
	orders := make([]sales.RawOrder, 0)
	sequence := 0

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		random := rand.New(rand.NewSource(day.Unix()))
		ordersToday := 3 + random.Intn(6)

		for index := 0; index < ordersToday; index += 1 {
			sequence += 1
			orders = append(orders, generateOrder(random, day, index, sequence))
		}
	}

	return orders
}

func generateOrder(random *rand.Rand, day time.Time, index int, sequence int) sales.RawOrder {
	item := catalog[random.Intn(len(catalog))]
	channel := channels[random.Intn(len(channels))]
	quantity := 1 + random.Intn(4)

	discount := 0.0
	if random.Intn(3) == 0 {
		discount = roundCents(item.unitPrice * float64(quantity) * 0.1)
	}

	shipping := 0.0
	if channel == "web" || channel == "app" {
		shipping = 4.99
	}

	order := sales.RawOrder{
		sales.ColumnOrderID:    fmt.Sprintf("A%s-%03d", day.Format("20060102"), index+1),
		sales.ColumnOrderDate:  day.Format(util.DayLayout),
		sales.ColumnCustomerID: fmt.Sprintf("C%03d", 1+random.Intn(40)),
		sales.ColumnCountry:    countries[random.Intn(len(countries))],
		sales.ColumnChannel:    channel,
		sales.ColumnProduct:    item.name,
		sales.ColumnQuantity:   quantity,
		sales.ColumnUnitPrice:  item.unitPrice,
		sales.ColumnDiscount:   discount,
		sales.ColumnShipping:   shipping,
	}

	if sequence%brokenRowEvery == 0 {
		order[sales.ColumnQuantity] = "n/a"
	}

	return order
}

func roundCents(amount float64) float64 {
	return math.Round(amount*100) / 100
}
