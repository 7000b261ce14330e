package http

import (
	"net/http"

	"github.com/vasiliy-maslov/foodtruck-service/internal/customer"
)

type CustomerRequest struct {
	Name             string `json:"name,omitempty" validate:"omitempty,max=200"`
	Phone            string `json:"phone,omitempty" validate:"omitempty,max=40"`
	Email            string `json:"email,omitempty" validate:"omitempty,email"`
	Notes            string `json:"notes,omitempty"`
	PreferredChannel string `json:"preferred_channel,omitempty" validate:"omitempty,oneof=sms whatsapp instagram_dm none"`
	MarketingOptIn   bool   `json:"marketing_opt_in"`
}

func (req CustomerRequest) toCustomer() customer.Customer {
	return customer.Customer{
		Name:             req.Name,
		Phone:            req.Phone,
		Email:            req.Email,
		Notes:            req.Notes,
		PreferredChannel: customer.Channel(req.PreferredChannel),
		MarketingOptIn:   req.MarketingOptIn,
	}
}

func (h *Handler) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customers.ListCustomers(r.Context(), accountIDFrom(r))
	if err != nil {
		respondWithServiceError(w, err, "Failed to list customers")
		return
	}
	respondWithJSON(w, http.StatusOK, customers)
}

func (h *Handler) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req CustomerRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	c := req.toCustomer()
	c.AccountID = accountIDFrom(r)

	created, err := h.customers.CreateCustomer(r.Context(), &c)
	if err != nil {
		respondWithServiceError(w, err, "Failed to create customer")
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, ok := uuidParam(w, r, "customerID")
	if !ok {
		return
	}

	c, err := h.customers.GetCustomer(r.Context(), accountIDFrom(r), customerID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get customer")
		return
	}
	respondWithJSON(w, http.StatusOK, c)
}
