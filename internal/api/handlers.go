// Package api serves the coffee-shop reports over HTTP.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/golang-sql/civil"
	"github.com/leapstack-labs/roastery/pkg/core"
)

// Reports is the subset of report.Reader the handlers need.
type Reports interface {
	Birthdays(ctx context.Context, day *civil.Date) ([]core.Birthday, error)
	TopSellingProducts(ctx context.Context, year int) ([]core.TopSellingProduct, error)
	LastOrderPerCustomer(ctx context.Context) ([]core.LastOrder, error)
}

type handlers struct {
	reports Reports
	logger  *slog.Logger
}

type customersResponse[T any] struct {
	Customers []T `json:"customers"`
}

type productsResponse struct {
	Products []core.TopSellingProduct `json:"products"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// birthdays answers GET /customers/birthday. An optional ?date=YYYY-MM-DD
// replaces today.
func (h *handlers) birthdays(w http.ResponseWriter, r *http.Request) {
	var day *civil.Date
	if raw := r.URL.Query().Get("date"); raw != "" {
		d, err := civil.ParseDate(raw)
		if err != nil {
			h.writeError(w, r, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		day = &d
	}

	out, err := h.reports.Birthdays(r.Context(), day)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, customersResponse[core.Birthday]{Customers: out})
}

func (h *handlers) topSellingProducts(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, "year must be an integer")
		return
	}

	out, err := h.reports.TopSellingProducts(r.Context(), year)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, productsResponse{Products: out})
}

func (h *handlers) lastOrderPerCustomer(w http.ResponseWriter, r *http.Request) {
	out, err := h.reports.LastOrderPerCustomer(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, customersResponse[core.LastOrder]{Customers: out})
}

func (h *handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("report request failed", "path", r.URL.Path, "error", err)
	h.writeError(w, r, http.StatusInternalServerError, "report failed")
}

func (h *handlers) writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	h.writeJSON(w, r, status, errorResponse{Error: msg})
}

func (h *handlers) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Debug("failed to write response", "path", r.URL.Path, "error", err)
	}
}
