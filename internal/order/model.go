package order

import (
	"time"

	"github.com/gofrs/uuid"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusCompleted Status = "completed"
	StatusCanceled  Status = "canceled"
	StatusRefunded  Status = "refunded"
)

func (s Status) String() string {
	return string(s)
}

type Channel string

const (
	ChannelSMS      Channel = "sms"
	ChannelWebForm  Channel = "web_form"
	ChannelQRCode   Channel = "qr_code"
	ChannelInPerson Channel = "in_person"
	ChannelPhone    Channel = "phone"
	ChannelOther    Channel = "other"
)

func (c Channel) Valid() bool {
	switch c {
	case ChannelSMS, ChannelWebForm, ChannelQRCode, ChannelInPerson, ChannelPhone, ChannelOther:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
	PaymentPartial  PaymentStatus = "partial"
)

type LineItemStatus string

const (
	ItemPending   LineItemStatus = "pending"
	ItemPreparing LineItemStatus = "preparing"
	ItemReady     LineItemStatus = "ready"
	ItemServed    LineItemStatus = "served"
	ItemCanceled  LineItemStatus = "canceled"
)

type LineItem struct {
	ID                  uuid.UUID      `json:"id" db:"id"`
	OrderID             uuid.UUID      `json:"order_id" db:"order_id"`
	AccountID           uuid.UUID      `json:"account_id" db:"account_id"`
	ProductID           uuid.UUID      `json:"product_id" db:"product_id"`
	LineNumber          int            `json:"line_number" db:"line_number"`
	Quantity            int            `json:"quantity" db:"quantity"`
	UnitPrice           float64        `json:"unit_price" db:"unit_price"`
	LineSubtotal        float64        `json:"line_subtotal" db:"line_subtotal"`
	Status              LineItemStatus `json:"status" db:"status"`
	SpecialInstructions string         `json:"special_instructions,omitempty" db:"special_instructions"`
	CreatedAt           time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at" db:"updated_at"`
}

type Order struct {
	ID                      uuid.UUID     `json:"id" db:"id"`
	AccountID               uuid.UUID     `json:"account_id" db:"account_id"`
	CustomerID              *uuid.UUID    `json:"customer_id,omitempty" db:"customer_id"`
	LocationID              *uuid.UUID    `json:"location_id,omitempty" db:"location_id"`
	Channel                 Channel       `json:"channel" db:"channel"`
	Status                  Status        `json:"status" db:"status"`
	PickupCode              string        `json:"pickup_code" db:"pickup_code"`
	PlacedAt                time.Time     `json:"placed_at" db:"placed_at"`
	AcceptedAt              *time.Time    `json:"accepted_at,omitempty" db:"accepted_at"`
	ReadyAt                 *time.Time    `json:"ready_at,omitempty" db:"ready_at"`
	CompletedAt             *time.Time    `json:"completed_at,omitempty" db:"completed_at"`
	CanceledAt              *time.Time    `json:"canceled_at,omitempty" db:"canceled_at"`
	RefundedAt              *time.Time    `json:"refunded_at,omitempty" db:"refunded_at"`
	PrepTimeEstimateSeconds *int          `json:"prep_time_estimate_seconds,omitempty" db:"prep_time_estimate_seconds"`
	PrepTimeActualSeconds   *int          `json:"prep_time_actual_seconds,omitempty" db:"prep_time_actual_seconds"`
	SubtotalAmount          float64       `json:"subtotal_amount" db:"subtotal_amount"`
	TaxAmount               float64       `json:"tax_amount" db:"tax_amount"`
	DiscountAmount          float64       `json:"discount_amount" db:"discount_amount"`
	TotalAmount             float64       `json:"total_amount" db:"total_amount"`
	Currency                string        `json:"currency" db:"currency"`
	PaymentStatus           PaymentStatus `json:"payment_status" db:"payment_status"`
	PaymentMethod           string        `json:"payment_method,omitempty" db:"payment_method"`
	Notes                   string        `json:"notes,omitempty" db:"notes"`
	LineItems               []LineItem    `json:"line_items,omitempty" db:"-"`
	CreatedAt               time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt               time.Time     `json:"updated_at" db:"updated_at"`
}

// ItemInput is one requested line; a nil UnitPrice takes the catalog price.
type ItemInput struct {
	ProductID           uuid.UUID
	Quantity            int
	UnitPrice           *float64
	SpecialInstructions string
}

type CreateInput struct {
	AccountID     uuid.UUID
	CustomerID    *uuid.UUID
	LocationID    *uuid.UUID
	Channel       Channel
	PaymentMethod string
	Notes         string
	Items         []ItemInput
}

type ListFilter struct {
	Status Status
	Since  *time.Time
	Until  *time.Time
	Limit  int
}
