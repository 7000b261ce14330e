package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/foodtruck-service/internal/order"
)

type OrderItemRequest struct {
	ProductID           string   `json:"product_id" validate:"required,uuid"`
	Quantity            int      `json:"quantity"`
	UnitPrice           *float64 `json:"unit_price,omitempty" validate:"omitempty,gte=0"`
	SpecialInstructions string   `json:"special_instructions,omitempty" validate:"max=500"`
}

type CreateOrderRequest struct {
	CustomerID    string             `json:"customer_id,omitempty" validate:"omitempty,uuid"`
	LocationID    string             `json:"location_id,omitempty" validate:"omitempty,uuid"`
	Channel       string             `json:"channel,omitempty" validate:"omitempty,oneof=sms web_form qr_code in_person phone other"`
	PaymentMethod string             `json:"payment_method,omitempty"`
	Notes         string             `json:"notes,omitempty" validate:"max=1000"`
	Items         []OrderItemRequest `json:"items" validate:"dive"`
}

type AdvanceStatusRequest struct {
	Status string `json:"status,omitempty" validate:"omitempty,oneof=pending accepted preparing ready completed canceled refunded"`
}

func (req CreateOrderRequest) toInput(accountID uuid.UUID) (order.CreateInput, error) {
	input := order.CreateInput{
		AccountID:     accountID,
		Channel:       order.Channel(req.Channel),
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
		Items:         make([]order.ItemInput, 0, len(req.Items)),
	}

	var err error
	if input.CustomerID, err = parseOptionalUUID(req.CustomerID); err != nil {
		return input, err
	}
	if input.LocationID, err = parseOptionalUUID(req.LocationID); err != nil {
		return input, err
	}
	for _, item := range req.Items {
		productID, err := uuid.FromString(item.ProductID)
		if err != nil {
			return input, err
		}
		input.Items = append(input.Items, order.ItemInput{
			ProductID:           productID,
			Quantity:            item.Quantity,
			UnitPrice:           item.UnitPrice,
			SpecialInstructions: item.SpecialInstructions,
		})
	}
	return input, nil
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request, input order.CreateInput) {
	created, err := h.orders.CreateOrder(r.Context(), input)
	if err != nil {
		respondWithServiceError(w, err, "Failed to create order")
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	input, err := req.toInput(accountIDFrom(r))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id in request payload")
		return
	}
	h.createOrder(w, r, input)
}

func parseTimeParam(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := order.ListFilter{Status: order.Status(query.Get("status"))}

	var err error
	if filter.Since, err = parseTimeParam(query.Get("since")); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid since parameter, expected RFC3339")
		return
	}
	if filter.Until, err = parseTimeParam(query.Get("until")); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid until parameter, expected RFC3339")
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

	orders, err := h.orders.ListOrders(r.Context(), accountIDFrom(r), filter)
	if err != nil {
		respondWithServiceError(w, err, "Failed to list orders")
		return
	}
	respondWithJSON(w, http.StatusOK, orders)
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := uuidParam(w, r, "orderID")
	if !ok {
		return
	}

	o, err := h.orders.GetOrder(r.Context(), accountIDFrom(r), orderID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get order")
		return
	}
	respondWithJSON(w, http.StatusOK, o)
}

// handleAdvanceStatus accepts an empty body, which moves the order to its next stage.
func (h *Handler) handleAdvanceStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := uuidParam(w, r, "orderID")
	if !ok {
		return
	}

	var req AdvanceStatusRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		log.Warn().Err(err).Msg("Failed to decode status request")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			respondWithJSON(w, http.StatusBadRequest, ValidationErrorResponse{
				Error:   "Validation failed",
				Details: formatValidationErrors(validationErrors),
			})
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Internal validation error")
		return
	}

	o, err := h.orders.AdvanceStatus(r.Context(), accountIDFrom(r), orderID, order.Status(req.Status))
	if err != nil {
		respondWithServiceError(w, err, "Failed to update order status")
		return
	}
	respondWithJSON(w, http.StatusOK, o)
}
