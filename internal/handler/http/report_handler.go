package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/vasiliy-maslov/foodtruck-service/internal/report"
)

type ProfitSnapshotRequest struct {
	Granularity   string    `json:"granularity,omitempty" validate:"omitempty,oneof=day event custom"`
	Label         string    `json:"label,omitempty" validate:"max=200"`
	StartAt       time.Time `json:"start_at" validate:"required"`
	EndAt         time.Time `json:"end_at" validate:"required,gtfield=StartAt"`
	OtherExpenses float64   `json:"other_expenses" validate:"gte=0"`
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := h.reports.Dashboard(r.Context(), accountIDFrom(r))
	if err != nil {
		respondWithServiceError(w, err, "Failed to load dashboard")
		return
	}
	respondWithJSON(w, http.StatusOK, dash)
}

func (h *Handler) handleTopProducts(w http.ResponseWriter, r *http.Request) {
	limit := report.DefaultTopProducts
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondWithError(w, http.StatusBadRequest, "Invalid limit parameter")
			return
		}
		limit = n
	}

	top, err := h.reports.TopProducts(r.Context(), accountIDFrom(r), limit)
	if err != nil {
		respondWithServiceError(w, err, "Failed to load top products")
		return
	}
	respondWithJSON(w, http.StatusOK, top)
}

func (h *Handler) handleCreateProfitSnapshot(w http.ResponseWriter, r *http.Request) {
	var req ProfitSnapshotRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	snap, err := h.reports.CreateProfitSnapshot(r.Context(), report.SnapshotRequest{
		AccountID:     accountIDFrom(r),
		Granularity:   report.Granularity(req.Granularity),
		Label:         req.Label,
		StartAt:       req.StartAt,
		EndAt:         req.EndAt,
		OtherExpenses: req.OtherExpenses,
	})
	if err != nil {
		respondWithServiceError(w, err, "Failed to create profit snapshot")
		return
	}
	respondWithJSON(w, http.StatusCreated, snap)
}

func (h *Handler) handleListProfitSnapshots(w http.ResponseWriter, r *http.Request) {
	snaps, err := h.reports.ListProfitSnapshots(r.Context(), accountIDFrom(r))
	if err != nil {
		respondWithServiceError(w, err, "Failed to list profit snapshots")
		return
	}
	respondWithJSON(w, http.StatusOK, snaps)
}
