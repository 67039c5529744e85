package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"raffledash/internal/models"
	"raffledash/internal/raffle"
)

// ListRaffles returns the raffle set as JSON. Without filter parameters the
// set is returned exactly as stored; with any of them it is filtered and
// sorted most recent first.
func (h *Handler) ListRaffles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	criteria, err := raffle.ParseCriteria(q)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	ctx, cancel := h.fetchContext(r)
	defer cancel()

	raffles, err := h.store.ListRaffles(ctx)
	if err != nil {
		slog.Error("list raffles", "error", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: msgDatabase})
		return
	}

	if hasCriteria(q) {
		raffles = raffle.NewSnapshot(raffles, h.now()).Derive(criteria).Raffles
	}
	if raffles == nil {
		raffles = []models.Raffle{}
	}
	writeJSON(w, http.StatusOK, raffles)
}

// ListBuyers returns the purchase records the store holds for a raffle
func (h *Handler) ListBuyers(w http.ResponseWriter, r *http.Request) {
	raffleID := chi.URLParam(r, "raffleId")

	ctx, cancel := h.fetchContext(r)
	defer cancel()

	buyers, err := h.store.ListBuyers(ctx, raffleID)
	if err != nil {
		slog.Error("list buyers", "raffle_id", raffleID, "error", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: msgDatabase})
		return
	}
	if buyers == nil {
		buyers = []models.Buyer{}
	}
	writeJSON(w, http.StatusOK, buyers)
}

func hasCriteria(q url.Values) bool {
	for _, key := range []string{raffle.ParamStart, raffle.ParamEnd, raffle.ParamCreator, raffle.ParamMinFloor} {
		if len(q[key]) > 0 {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// criteriaMessage turns a criteria parse failure into the text shown inline
func criteriaMessage(err error) string {
	var ce *raffle.CriteriaError
	if errors.As(err, &ce) {
		return fmt.Sprintf("Invalid %s value %q.", ce.Field, ce.Value)
	}
	return err.Error()
}
