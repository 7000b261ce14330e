package http

import (
	"net/http"
	"strconv"

	"github.com/vasiliy-maslov/foodtruck-service/internal/message"
)

type MessageRequest struct {
	CustomerID  string `json:"customer_id,omitempty" validate:"omitempty,uuid"`
	OrderID     string `json:"order_id,omitempty" validate:"omitempty,uuid"`
	Direction   string `json:"direction,omitempty" validate:"omitempty,oneof=outbound inbound"`
	Channel     string `json:"channel" validate:"required,oneof=sms whatsapp instagram_dm other"`
	Purpose     string `json:"purpose,omitempty" validate:"omitempty,oneof=order_update promo loyalty support other"`
	TemplateKey string `json:"template_key,omitempty" validate:"max=100"`
	Body        string `json:"body" validate:"required,max=1600"`
}

func (h *Handler) handleListMessages(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var (
		filter message.ListFilter
		err    error
	)
	if filter.CustomerID, err = parseOptionalUUID(query.Get("customer_id")); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid customer_id parameter")
		return
	}
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			respondWithError(w, http.StatusBadRequest, "Invalid limit parameter")
			return
		}
		filter.Limit = limit
	}

	messages, err := h.messages.ListMessages(r.Context(), accountIDFrom(r), filter)
	if err != nil {
		respondWithServiceError(w, err, "Failed to list messages")
		return
	}
	respondWithJSON(w, http.StatusOK, messages)
}

func (h *Handler) handleCreateMessage(w http.ResponseWriter, r *http.Request) {
	var req MessageRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	m := &message.Message{
		AccountID:   accountIDFrom(r),
		Direction:   message.Direction(req.Direction),
		Channel:     message.Channel(req.Channel),
		Purpose:     message.Purpose(req.Purpose),
		TemplateKey: req.TemplateKey,
		Body:        req.Body,
	}
	var err error
	if m.CustomerID, err = parseOptionalUUID(req.CustomerID); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id in request payload")
		return
	}
	if m.OrderID, err = parseOptionalUUID(req.OrderID); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id in request payload")
		return
	}

	created, err := h.messages.QueueMessage(r.Context(), m)
	if err != nil {
		respondWithServiceError(w, err, "Failed to queue message")
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}
