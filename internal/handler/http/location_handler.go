package http

import (
	"net/http"
	"time"

	"github.com/vasiliy-maslov/foodtruck-service/internal/location"
)

type LocationRequest struct {
	Name            string   `json:"name" validate:"required,min=1,max=200"`
	Description     string   `json:"description,omitempty"`
	Address1        string   `json:"address1,omitempty"`
	Address2        string   `json:"address2,omitempty"`
	City            string   `json:"city,omitempty"`
	State           string   `json:"state,omitempty"`
	PostalCode      string   `json:"postal_code,omitempty"`
	Country         string   `json:"country,omitempty"`
	Latitude        *float64 `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude       *float64 `json:"longitude,omitempty" validate:"omitempty,longitude"`
	IsTruckLocation *bool    `json:"is_truck_location,omitempty"`
	IsPublic        bool     `json:"is_public"`
}

type PingRequest struct {
	LocationID string     `json:"location_id,omitempty" validate:"omitempty,uuid"`
	Latitude   float64    `json:"latitude" validate:"latitude"`
	Longitude  float64    `json:"longitude" validate:"longitude"`
	Source     string     `json:"source,omitempty" validate:"omitempty,oneof=gps manual import"`
	RecordedAt *time.Time `json:"recorded_at,omitempty"`
}

func (h *Handler) handleListLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.locations.ListLocations(r.Context(), accountIDFrom(r))
	if err != nil {
		respondWithServiceError(w, err, "Failed to list locations")
		return
	}
	respondWithJSON(w, http.StatusOK, locations)
}

func (h *Handler) handleCreateLocation(w http.ResponseWriter, r *http.Request) {
	var req LocationRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	truck := true
	if req.IsTruckLocation != nil {
		truck = *req.IsTruckLocation
	}
	l := location.Location{
		AccountID:       accountIDFrom(r),
		Name:            req.Name,
		Description:     req.Description,
		Address1:        req.Address1,
		Address2:        req.Address2,
		City:            req.City,
		State:           req.State,
		PostalCode:      req.PostalCode,
		Country:         req.Country,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		IsTruckLocation: truck,
		IsPublic:        req.IsPublic,
	}

	created, err := h.locations.CreateLocation(r.Context(), &l)
	if err != nil {
		respondWithServiceError(w, err, "Failed to create location")
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleRecordPing(w http.ResponseWriter, r *http.Request) {
	var req PingRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	locationID, err := parseOptionalUUID(req.LocationID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid location_id")
		return
	}

	p := location.Ping{
		AccountID:  accountIDFrom(r),
		LocationID: locationID,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		Source:     location.PingSource(req.Source),
	}
	if req.RecordedAt != nil {
		p.RecordedAt = req.RecordedAt.UTC()
	}

	ping, err := h.locations.RecordPing(r.Context(), &p)
	if err != nil {
		respondWithServiceError(w, err, "Failed to record location ping")
		return
	}
	respondWithJSON(w, http.StatusCreated, ping)
}
