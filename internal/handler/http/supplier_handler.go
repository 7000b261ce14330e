package http

import (
	"net/http"
	"time"

	"github.com/vasiliy-maslov/foodtruck-service/internal/supplier"
)

type SupplierTransactionRequest struct {
	SupplierName    string    `json:"supplier_name" validate:"required,max=200"`
	TransactionDate time.Time `json:"transaction_date"`
	TotalAmount     float64   `json:"total_amount" validate:"gte=0"`
	Currency        string    `json:"currency,omitempty" validate:"omitempty,len=3"`
	TransactionType string    `json:"transaction_type,omitempty" validate:"omitempty,oneof=inventory equipment fees other"`
	ReceiptImageURL string    `json:"receipt_image_url,omitempty" validate:"omitempty,url"`
	OCRText         string    `json:"ocr_text,omitempty"`
	Notes           string    `json:"notes,omitempty" validate:"max=1000"`
}

func (h *Handler) handleListSupplierTransactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var (
		filter supplier.ListFilter
		err    error
	)
	if filter.Since, err = parseTimeParam(query.Get("since")); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid since parameter, expected RFC3339")
		return
	}
	if filter.Until, err = parseTimeParam(query.Get("until")); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid until parameter, expected RFC3339")
		return
	}

	transactions, err := h.suppliers.ListTransactions(r.Context(), accountIDFrom(r), filter)
	if err != nil {
		respondWithServiceError(w, err, "Failed to list supplier transactions")
		return
	}
	respondWithJSON(w, http.StatusOK, transactions)
}

func (h *Handler) handleCreateSupplierTransaction(w http.ResponseWriter, r *http.Request) {
	var req SupplierTransactionRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	created, err := h.suppliers.RecordTransaction(r.Context(), &supplier.Transaction{
		AccountID:       accountIDFrom(r),
		SupplierName:    req.SupplierName,
		TransactionDate: req.TransactionDate,
		TotalAmount:     req.TotalAmount,
		Currency:        req.Currency,
		TransactionType: supplier.TransactionType(req.TransactionType),
		ReceiptImageURL: req.ReceiptImageURL,
		OCRText:         req.OCRText,
		Notes:           req.Notes,
	})
	if err != nil {
		respondWithServiceError(w, err, "Failed to record supplier transaction")
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}
