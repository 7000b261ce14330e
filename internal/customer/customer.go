package customer

import (
	"time"

	"github.com/gofrs/uuid"
)

type Channel string

const (
	ChannelSMS         Channel = "sms"
	ChannelWhatsApp    Channel = "whatsapp"
	ChannelInstagramDM Channel = "instagram_dm"
	ChannelNone        Channel = "none"
)

// Customer is an optional contact captured at order time; customers never authenticate.
type Customer struct {
	ID               uuid.UUID `json:"id"`
	AccountID        uuid.UUID `json:"account_id"`
	Name             string    `json:"name,omitempty"`
	Phone            string    `json:"phone,omitempty"`
	Email            string    `json:"email,omitempty"`
	Notes            string    `json:"notes,omitempty"`
	PreferredChannel Channel   `json:"preferred_channel"`
	MarketingOptIn   bool      `json:"marketing_opt_in"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
