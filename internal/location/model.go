package location

import (
	"time"

	"github.com/gofrs/uuid"
)

type Location struct {
	ID              uuid.UUID `json:"id"`
	AccountID       uuid.UUID `json:"account_id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	Address1        string    `json:"address1,omitempty"`
	Address2        string    `json:"address2,omitempty"`
	City            string    `json:"city,omitempty"`
	State           string    `json:"state,omitempty"`
	PostalCode      string    `json:"postal_code,omitempty"`
	Country         string    `json:"country,omitempty"`
	Latitude        *float64  `json:"latitude,omitempty"`
	Longitude       *float64  `json:"longitude,omitempty"`
	IsTruckLocation bool      `json:"is_truck_location"`
	IsPublic        bool      `json:"is_public"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type PingSource string

const (
	SourceGPS    PingSource = "gps"
	SourceManual PingSource = "manual"
	SourceImport PingSource = "import"
)

type Ping struct {
	ID         uuid.UUID  `json:"id"`
	AccountID  uuid.UUID  `json:"account_id"`
	LocationID *uuid.UUID `json:"location_id,omitempty"`
	Latitude   float64    `json:"latitude"`
	Longitude  float64    `json:"longitude"`
	Source     PingSource `json:"source"`
	RecordedAt time.Time  `json:"recorded_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

type Coords struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// PublicTruck is a public truck location as shown to customers browsing trucks.
type PublicTruck struct {
	Location
	AccountName string   `json:"account_name"`
	DistanceKm  *float64 `json:"distance_km"`
}
