package report

import (
	"sort"
	"time"

	"github.com/gofrs/uuid"
	"github.com/vasiliy-maslov/foodtruck-service/internal/order"
)

const (
	DefaultTopProducts  = 5
	DefaultRecentOrders = 10
)

type Bucket struct {
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

type Summary struct {
	Today     Bucket `json:"today"`
	Last7Days Bucket `json:"last_7_days"`
	AllTime   Bucket `json:"all_time"`
}

// SoldLine is a line item joined with its order and product, as read for reporting.
type SoldLine struct {
	OrderID      uuid.UUID    `json:"order_id" db:"order_id"`
	ProductID    uuid.UUID    `json:"product_id" db:"product_id"`
	ProductName  string       `json:"product_name" db:"product_name"`
	UnitCost     *float64     `json:"unit_cost,omitempty" db:"unit_cost"`
	Quantity     int          `json:"quantity" db:"quantity"`
	LineSubtotal float64      `json:"line_subtotal" db:"line_subtotal"`
	OrderStatus  order.Status `json:"order_status" db:"order_status"`
	PlacedAt     time.Time    `json:"placed_at" db:"placed_at"`
}

type ProductSales struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	Revenue     float64   `json:"revenue"`
}

func midnight(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// Summarize buckets orders by local calendar day. The seven-day window covers
// today and the six calendar days before it.
func Summarize(orders []order.Order, now time.Time, loc *time.Location) Summary {
	if loc == nil {
		loc = time.Local
	}
	todayStart := midnight(now, loc)
	tomorrow := todayStart.AddDate(0, 0, 1)
	weekStart := todayStart.AddDate(0, 0, -6)

	var s Summary
	for _, o := range orders {
		s.AllTime.Count++
		s.AllTime.Revenue += o.TotalAmount

		placed := o.PlacedAt.In(loc)
		if placed.Before(weekStart) || !placed.Before(tomorrow) {
			continue
		}
		s.Last7Days.Count++
		s.Last7Days.Revenue += o.TotalAmount

		if !placed.Before(todayStart) {
			s.Today.Count++
			s.Today.Revenue += o.TotalAmount
		}
	}
	return s
}

// TopProducts ranks products by quantity sold. Ties keep the order in which
// products first appear in lines.
func TopProducts(lines []SoldLine, n int) []ProductSales {
	if n <= 0 {
		n = DefaultTopProducts
	}

	index := make(map[uuid.UUID]int)
	ranked := make([]ProductSales, 0)
	for _, line := range lines {
		i, ok := index[line.ProductID]
		if !ok {
			i = len(ranked)
			index[line.ProductID] = i
			ranked = append(ranked, ProductSales{ProductID: line.ProductID, ProductName: line.ProductName})
		}
		ranked[i].Quantity += line.Quantity
		ranked[i].Revenue += line.LineSubtotal
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Quantity > ranked[j].Quantity
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// RecentOrders returns the n most recently placed orders, newest first.
func RecentOrders(orders []order.Order, n int) []order.Order {
	if n <= 0 {
		n = DefaultRecentOrders
	}

	sorted := make([]order.Order, len(orders))
	copy(sorted, orders)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PlacedAt.After(sorted[j].PlacedAt)
	})

	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
