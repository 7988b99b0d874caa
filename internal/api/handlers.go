package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lisdrive/repasse/internal/domain"
	"github.com/lisdrive/repasse/internal/repository"
	"github.com/lisdrive/repasse/internal/settlement"
)

// Handlers groups all HTTP handler methods and their dependencies.
type Handlers struct {
	engine    *settlement.Engine
	settRepo  *repository.SettlementRepo
	entryRepo *repository.EntryRepo
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[api] encode error: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return def
	}
	return v
}

// --- ProcessWeek ---

func (h *Handlers) ProcessWeek(w http.ResponseWriter, r *http.Request) {
	weekID := chi.URLParam(r, "weekID")
	if weekID == "" {
		writeError(w, http.StatusBadRequest, "weekID is required")
		return
	}

	q := r.URL.Query()
	opts := settlement.Options{
		DriverID:     q.Get("driverId"),
		ForceRefresh: q.Get("forceRefresh") == "true",
	}

	result, err := h.engine.ProcessWeek(weekID, opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// --- ListWeekSettlements ---

func (h *Handlers) ListWeekSettlements(w http.ResponseWriter, r *http.Request) {
	weekID := chi.URLParam(r, "weekID")

	settlements, total, err := h.settRepo.List(repository.SettlementFilter{
		WeekID: weekID,
		Page:   parseIntDefault(r.URL.Query().Get("page"), 1),
		Limit:  parseIntDefault(r.URL.Query().Get("limit"), 50),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"settlements": settlements,
		"total":       total,
	})
}

// --- GetWeekSummary ---

func (h *Handlers) GetWeekSummary(w http.ResponseWriter, r *http.Request) {
	weekID := chi.URLParam(r, "weekID")

	totals, err := h.settRepo.TotalsByWeek(weekID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, totals)
}

// --- ListSettlements ---

func (h *Handlers) ListSettlements(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.SettlementFilter{
		WeekID:   q.Get("week"),
		DriverID: q.Get("driverId"),
		Status:   q.Get("status"),
		Page:     parseIntDefault(q.Get("page"), 1),
		Limit:    parseIntDefault(q.Get("limit"), 50),
	}

	settlements, total, err := h.settRepo.List(filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"settlements": settlements,
		"total":       total,
		"page":        filter.Page,
		"limit":       filter.Limit,
	})
}

// --- GetSettlement ---

func (h *Handlers) GetSettlement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s, err := h.settRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "settlement not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, s)
}

// --- GetSettlementDisplay ---

// GetSettlementDisplay returns the dual-source view: live platform figures
// merged with the stored fixed-cost snapshot. Never writes.
func (h *Handlers) GetSettlementDisplay(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	stored, err := h.settRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "settlement not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	derived, err := h.engine.DeriveForDisplay(stored.DriverID, stored.WeekID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, derived)
}

// --- MarkSettlementPaid ---

type markPaidRequest struct {
	Proof string `json:"proof"`
}

func (h *Handlers) MarkSettlementPaid(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req markPaidRequest
	if r.Body != nil {
		// Proof metadata is optional.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	err := h.settRepo.MarkPaid(id, req.Proof)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "settlement not found")
		return
	case errors.Is(err, repository.ErrPaidImmutable):
		writeError(w, http.StatusConflict, "settlement is not pending")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s, err := h.settRepo.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// --- ImportEntries ---

func (h *Handlers) ImportEntries(w http.ResponseWriter, r *http.Request) {
	var entries []domain.NormalizedWeeklyEntry
	if err := json.NewDecoder(r.Body).Decode(&entries); err != nil {
		writeError(w, http.StatusBadRequest, "invalid entries payload: "+err.Error())
		return
	}

	for i := range entries {
		e := &entries[i]
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if e.WeekID == "" {
			writeError(w, http.StatusBadRequest, "entry missing week_id")
			return
		}
		if e.TotalValue < 0 {
			writeError(w, http.StatusBadRequest, "entry total_value must be >= 0")
			return
		}
	}

	inserted, err := h.entryRepo.BulkInsert(entries)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	log.Printf("[api] imported %d/%d entries", inserted, len(entries))
	writeJSON(w, http.StatusOK, map[string]int{
		"received": len(entries),
		"inserted": inserted,
		"skipped":  len(entries) - inserted,
	})
}
