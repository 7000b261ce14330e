package report

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/vasiliy-maslov/foodtruck-service/internal/order"
)

type Granularity string

const (
	GranularityDay    Granularity = "day"
	GranularityEvent  Granularity = "event"
	GranularityCustom Granularity = "custom"
)

func (g Granularity) Valid() bool {
	return g == GranularityDay || g == GranularityEvent || g == GranularityCustom
}

type ProfitSnapshot struct {
	ID              uuid.UUID   `json:"id" db:"id"`
	AccountID       uuid.UUID   `json:"account_id" db:"account_id"`
	Granularity     Granularity `json:"granularity" db:"granularity"`
	Label           string      `json:"label,omitempty" db:"label"`
	StartAt         time.Time   `json:"start_at" db:"start_at"`
	EndAt           time.Time   `json:"end_at" db:"end_at"`
	GrossSales      float64     `json:"gross_sales" db:"gross_sales"`
	Discounts       float64     `json:"discounts" db:"discounts"`
	Refunds         float64     `json:"refunds" db:"refunds"`
	NetSales        float64     `json:"net_sales" db:"net_sales"`
	CostOfGoodsSold float64     `json:"cost_of_goods_sold" db:"cost_of_goods_sold"`
	// OtherExpenses includes SupplierExpenses.
	OtherExpenses    float64   `json:"other_expenses" db:"other_expenses"`
	SupplierExpenses float64   `json:"supplier_expenses" db:"supplier_expenses"`
	Profit           float64   `json:"profit" db:"profit"`
	GeneratedAt      time.Time `json:"generated_at" db:"generated_at"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

func inRange(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}

// ComputeProfit fills the money fields of snap from the orders and lines placed
// within [snap.StartAt, snap.EndAt). Canceled orders are ignored. Refunded orders
// count as sales and as refunds but contribute no cost of goods.
func ComputeProfit(snap *ProfitSnapshot, orders []order.Order, lines []SoldLine) {
	snap.GrossSales, snap.Discounts, snap.Refunds, snap.CostOfGoodsSold = 0, 0, 0, 0

	for _, o := range orders {
		if !inRange(o.PlacedAt, snap.StartAt, snap.EndAt) || o.Status == order.StatusCanceled {
			continue
		}
		snap.GrossSales += o.SubtotalAmount
		snap.Discounts += o.DiscountAmount
		if o.Status == order.StatusRefunded {
			snap.Refunds += o.TotalAmount
		}
	}

	for _, line := range lines {
		if !inRange(line.PlacedAt, snap.StartAt, snap.EndAt) {
			continue
		}
		if line.OrderStatus == order.StatusCanceled || line.OrderStatus == order.StatusRefunded {
			continue
		}
		if line.UnitCost != nil {
			snap.CostOfGoodsSold += float64(line.Quantity) * *line.UnitCost
		}
	}

	snap.NetSales = snap.GrossSales - snap.Discounts - snap.Refunds
	snap.Profit = snap.NetSales - snap.CostOfGoodsSold - snap.OtherExpenses
}
