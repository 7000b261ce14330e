package supplier

import (
	"time"

	"github.com/gofrs/uuid"
)

type TransactionType string

const (
	TypeInventory TransactionType = "inventory"
	TypeEquipment TransactionType = "equipment"
	TypeFees      TransactionType = "fees"
	TypeOther     TransactionType = "other"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TypeInventory, TypeEquipment, TypeFees, TypeOther:
		return true
	}
	return false
}

// Transaction is money an account paid to a supplier. Totals in a period feed
// the other-expenses line of profit snapshots.
type Transaction struct {
	ID              uuid.UUID       `json:"id"`
	AccountID       uuid.UUID       `json:"account_id"`
	SupplierName    string          `json:"supplier_name"`
	TransactionDate time.Time       `json:"transaction_date"`
	TotalAmount     float64         `json:"total_amount"`
	Currency        string          `json:"currency,omitempty"`
	TransactionType TransactionType `json:"transaction_type"`
	ReceiptImageURL string          `json:"receipt_image_url,omitempty"`
	OCRText         string          `json:"ocr_text,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type ListFilter struct {
	Since *time.Time
	Until *time.Time
}
