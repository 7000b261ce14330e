package message

import (
	"time"

	"github.com/gofrs/uuid"
)

type Direction string

const (
	DirectionOutbound Direction = "outbound"
	DirectionInbound  Direction = "inbound"
)

func (d Direction) Valid() bool {
	return d == DirectionOutbound || d == DirectionInbound
}

type Channel string

const (
	ChannelSMS         Channel = "sms"
	ChannelWhatsApp    Channel = "whatsapp"
	ChannelInstagramDM Channel = "instagram_dm"
	ChannelOther       Channel = "other"
)

func (c Channel) Valid() bool {
	switch c {
	case ChannelSMS, ChannelWhatsApp, ChannelInstagramDM, ChannelOther:
		return true
	}
	return false
}

type Purpose string

const (
	PurposeOrderUpdate Purpose = "order_update"
	PurposePromo       Purpose = "promo"
	PurposeLoyalty     Purpose = "loyalty"
	PurposeSupport     Purpose = "support"
	PurposeOther       Purpose = "other"
)

func (p Purpose) Valid() bool {
	switch p {
	case PurposeOrderUpdate, PurposePromo, PurposeLoyalty, PurposeSupport, PurposeOther:
		return true
	}
	return false
}

type Status string

const (
	StatusQueued    Status = "queued"
	StatusSending   Status = "sending"
	StatusSent      Status = "sent"
	StatusDelivered Status = "delivered"
	StatusFailed    Status = "failed"
)

// Message is one entry in an account's customer conversation log. Outbound
// messages start queued; delivery is left to an external sender.
type Message struct {
	ID                uuid.UUID  `json:"id"`
	AccountID         uuid.UUID  `json:"account_id"`
	UserID            *uuid.UUID `json:"user_id,omitempty"`
	CustomerID        *uuid.UUID `json:"customer_id,omitempty"`
	OrderID           *uuid.UUID `json:"order_id,omitempty"`
	Direction         Direction  `json:"direction"`
	Channel           Channel    `json:"channel"`
	Purpose           Purpose    `json:"purpose"`
	TemplateKey       string     `json:"template_key,omitempty"`
	Body              string     `json:"body"`
	Status            Status     `json:"status"`
	ProviderMessageID string     `json:"provider_message_id,omitempty"`
	SentAt            *time.Time `json:"sent_at,omitempty"`
	DeliveredAt       *time.Time `json:"delivered_at,omitempty"`
	FailedAt          *time.Time `json:"failed_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

type ListFilter struct {
	CustomerID *uuid.UUID
	Limit      int
}
