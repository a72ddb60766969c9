package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"costbook/internal/core"
	applog "costbook/internal/log"
)

type costDraftRequest struct {
	Sum         float64 `json:"sum"`
	Currency    string  `json:"currency"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
}

func (s *Server) handleAddCost(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req costDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.ErrorContext(r.Context(), "Parse cost request error", "error", err)
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	draft := core.CostDraft{
		Sum:         req.Sum,
		Currency:    core.Currency(strings.TrimSpace(req.Currency)),
		Category:    strings.TrimSpace(req.Category),
		Description: strings.TrimSpace(req.Description),
	}

	record, err := s.costs.AddCost(r.Context(), draft)
	if err != nil {
		var verr *core.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusUnprocessableEntity, verr)
			return
		}
		slog.ErrorContext(r.Context(), "Failed to save cost", "error", err)
		writeError(w, http.StatusInternalServerError, errors.New("error saving cost"))
		return
	}

	writeJSON(w, http.StatusCreated, record)
}

func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	year, month, err := parseYearMonth(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	currency, err := parseCurrency(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	table, _ := s.rateCache.Rates(r.Context())
	report, err := s.aggregator.MonthlyReport(r.Context(), year, month, currency, table)
	if err != nil {
		fields := applog.NewFields().WithOperation(applog.OpReport).WithPeriod(year, month).WithError(err)
		slog.ErrorContext(r.Context(), "Monthly report failed", fields.ToSlice()...)
		writeError(w, http.StatusInternalServerError, errors.New("error building report"))
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleCategoryTotals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	year, month, err := parseYearMonth(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	currency, err := parseCurrency(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	table, _ := s.rateCache.Rates(r.Context())
	totals, err := s.aggregator.CategoryTotals(r.Context(), year, month, currency, table)
	if err != nil {
		fields := applog.NewFields().WithOperation(applog.OpReport).WithPeriod(year, month).WithError(err)
		slog.ErrorContext(r.Context(), "Category totals failed", fields.ToSlice()...)
		writeError(w, http.StatusInternalServerError, errors.New("error building report"))
		return
	}

	writeJSON(w, http.StatusOK, totals)
}

func (s *Server) handleMonthlyTotals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	year, _, err := parseYearMonth(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	currency, err := parseCurrency(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	table, _ := s.rateCache.Rates(r.Context())
	totals, err := s.aggregator.MonthlyTotals(r.Context(), year, currency, table)
	if err != nil {
		fields := applog.NewFields().WithOperation(applog.OpReport).WithError(err)
		fields[applog.FieldYear] = year
		slog.ErrorContext(r.Context(), "Monthly totals failed", fields.ToSlice()...)
		writeError(w, http.StatusInternalServerError, errors.New("error building report"))
		return
	}

	writeJSON(w, http.StatusOK, totals)
}

// parseYearMonth extracts year and month from query parameters, defaulting to
// the current year and month. A value that is present but not a usable period
// is rejected rather than silently mapped to today.
func parseYearMonth(r *http.Request) (year, month int, err error) {
	now := time.Now()
	year = now.Year()
	month = int(now.Month())

	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		y, convErr := strconv.Atoi(v)
		if convErr != nil || y < 1 {
			return 0, 0, &core.ValidationError{Field: "year", Reason: "invalid value " + strconv.Quote(v)}
		}
		year = y
	}
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		m, convErr := strconv.Atoi(v)
		if convErr != nil || m < 1 || m > 12 {
			return 0, 0, &core.ValidationError{Field: "month", Reason: "invalid value " + strconv.Quote(v)}
		}
		month = m
	}

	return year, month, nil
}

// parseCurrency extracts the display currency, defaulting to USD.
func parseCurrency(r *http.Request) (core.Currency, error) {
	v := strings.TrimSpace(r.URL.Query().Get("currency"))
	if v == "" {
		return core.USD, nil
	}
	currency := core.Currency(strings.ToUpper(v))
	if !currency.Supported() {
		return "", &core.ValidationError{Field: "currency", Reason: "unsupported code " + strconv.Quote(v)}
	}
	return currency, nil
}
