package http

import (
	"net/http"
	"time"

	"github.com/vasiliy-maslov/foodtruck-service/internal/catalog"
)

type ProductRequest struct {
	Name            string   `json:"name" validate:"required,min=1,max=200"`
	Description     string   `json:"description,omitempty"`
	Category        string   `json:"category,omitempty"`
	MenuType        string   `json:"menu_type,omitempty" validate:"omitempty,oneof=food drink merch service"`
	SKU             string   `json:"sku,omitempty"`
	IsActive        *bool    `json:"is_active,omitempty"`
	Price           float64  `json:"price" validate:"gte=0"`
	Cost            *float64 `json:"cost,omitempty" validate:"omitempty,gte=0"`
	StockUnit       string   `json:"stock_unit,omitempty" validate:"omitempty,oneof=each lb oz liter pack"`
	PrepTimeSeconds *int     `json:"prep_time_seconds,omitempty" validate:"omitempty,gte=0"`
}

type InventoryEventRequest struct {
	Type          string     `json:"type" validate:"required,oneof=purchase sale waste adjustment"`
	QuantityDelta float64    `json:"quantity_delta" validate:"required"`
	UnitCost      *float64   `json:"unit_cost,omitempty" validate:"omitempty,gte=0"`
	Reason        string     `json:"reason,omitempty"`
	OccurredAt    *time.Time `json:"occurred_at,omitempty"`
}

func (req ProductRequest) toProduct() catalog.Product {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return catalog.Product{
		Name:            req.Name,
		Description:     req.Description,
		Category:        req.Category,
		MenuType:        catalog.MenuType(req.MenuType),
		SKU:             req.SKU,
		IsActive:        active,
		Price:           req.Price,
		Cost:            req.Cost,
		StockUnit:       catalog.StockUnit(req.StockUnit),
		PrepTimeSeconds: req.PrepTimeSeconds,
	}
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"

	products, err := h.catalog.ListProducts(r.Context(), accountIDFrom(r), activeOnly)
	if err != nil {
		respondWithServiceError(w, err, "Failed to list products")
		return
	}
	respondWithJSON(w, http.StatusOK, products)
}

func (h *Handler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	p := req.toProduct()
	p.AccountID = accountIDFrom(r)

	created, err := h.catalog.CreateProduct(r.Context(), &p)
	if err != nil {
		respondWithServiceError(w, err, "Failed to create product")
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := uuidParam(w, r, "productID")
	if !ok {
		return
	}

	p, err := h.catalog.GetProduct(r.Context(), accountIDFrom(r), productID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get product")
		return
	}
	respondWithJSON(w, http.StatusOK, p)
}

func (h *Handler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := uuidParam(w, r, "productID")
	if !ok {
		return
	}

	var req ProductRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	p := req.toProduct()
	p.ID = productID
	p.AccountID = accountIDFrom(r)

	updated, err := h.catalog.UpdateProduct(r.Context(), &p)
	if err != nil {
		respondWithServiceError(w, err, "Failed to update product")
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleRecordInventoryEvent(w http.ResponseWriter, r *http.Request) {
	productID, ok := uuidParam(w, r, "productID")
	if !ok {
		return
	}

	var req InventoryEventRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	e := catalog.InventoryEvent{
		AccountID:     accountIDFrom(r),
		ProductID:     productID,
		Type:          catalog.InventoryEventType(req.Type),
		QuantityDelta: req.QuantityDelta,
		UnitCost:      req.UnitCost,
		Reason:        req.Reason,
	}
	if req.OccurredAt != nil {
		e.OccurredAt = req.OccurredAt.UTC()
	}

	product, err := h.catalog.RecordInventoryEvent(r.Context(), &e)
	if err != nil {
		respondWithServiceError(w, err, "Failed to record inventory event")
		return
	}
	respondWithJSON(w, http.StatusCreated, product)
}
