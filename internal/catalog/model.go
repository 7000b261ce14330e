package catalog

import (
	"time"

	"github.com/gofrs/uuid"
)

type MenuType string

const (
	MenuFood    MenuType = "food"
	MenuDrink   MenuType = "drink"
	MenuMerch   MenuType = "merch"
	MenuService MenuType = "service"
)

type StockUnit string

const (
	UnitEach  StockUnit = "each"
	UnitLb    StockUnit = "lb"
	UnitOz    StockUnit = "oz"
	UnitLiter StockUnit = "liter"
	UnitPack  StockUnit = "pack"
)

type Product struct {
	ID              uuid.UUID `json:"id"`
	AccountID       uuid.UUID `json:"account_id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	Category        string    `json:"category,omitempty"`
	MenuType        MenuType  `json:"menu_type"`
	SKU             string    `json:"sku,omitempty"`
	IsActive        bool      `json:"is_active"`
	Price           float64   `json:"price"`
	Cost            *float64  `json:"cost,omitempty"`
	CurrentStock    *float64  `json:"current_stock,omitempty"`
	StockUnit       StockUnit `json:"stock_unit"`
	PrepTimeSeconds *int      `json:"prep_time_seconds,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type InventoryEventType string

const (
	InventoryPurchase   InventoryEventType = "purchase"
	InventorySale       InventoryEventType = "sale"
	InventoryWaste      InventoryEventType = "waste"
	InventoryAdjustment InventoryEventType = "adjustment"
)

// InventoryEvent is a signed stock movement for a product.
type InventoryEvent struct {
	ID            uuid.UUID          `json:"id"`
	AccountID     uuid.UUID          `json:"account_id"`
	ProductID     uuid.UUID          `json:"product_id"`
	Type          InventoryEventType `json:"type"`
	QuantityDelta float64            `json:"quantity_delta"`
	UnitCost      *float64           `json:"unit_cost,omitempty"`
	Reason        string             `json:"reason,omitempty"`
	OccurredAt    time.Time          `json:"occurred_at"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}
