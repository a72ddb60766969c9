package core

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	USD  Currency = "USD"
	ILS  Currency = "ILS"
	GBP  Currency = "GBP"
	EURO Currency = "EURO"
)

type (
	Currency string

	// Date is the calendar date a cost was recorded on. It is stamped by the
	// store from the system clock at insertion and never supplied by callers.
	Date struct {
		Year  int
		Month int // 1-12
		Day   int
	}

	// CostDraft is the caller-supplied part of a cost record.
	CostDraft struct {
		Sum         float64
		Currency    Currency
		Category    string
		Description string
	}

	// CostRecord is a persisted expenditure entry. Records are immutable once
	// stored; there is no update or delete surface.
	CostRecord struct {
		ID          int64
		Sum         float64
		Currency    Currency
		Category    string
		Description string
		Date        Date
		CreatedAt   time.Time
	}
)

// Currencies lists the supported currency codes. USD is the base currency.
var Currencies = []Currency{USD, ILS, GBP, EURO}

// ValidationError reports the first invalid field of a cost draft.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (c Currency) Supported() bool {
	switch c {
	case USD, ILS, GBP, EURO:
		return true
	}
	return false
}

// DateOf extracts the calendar date from an instant.
func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}

// Validate checks every field constraint; a draft that fails is never persisted.
func (d CostDraft) Validate() error {
	if math.IsNaN(d.Sum) || math.IsInf(d.Sum, 0) {
		return &ValidationError{Field: "sum", Reason: "must be a finite number"}
	}
	if d.Sum <= 0 {
		return &ValidationError{Field: "sum", Reason: "must be positive"}
	}
	if d.Currency == "" {
		return &ValidationError{Field: "currency", Reason: "is required"}
	}
	if !d.Currency.Supported() {
		return &ValidationError{Field: "currency", Reason: fmt.Sprintf("unsupported code %q", string(d.Currency))}
	}
	if strings.TrimSpace(d.Category) == "" {
		return &ValidationError{Field: "category", Reason: "is required"}
	}
	if strings.TrimSpace(d.Description) == "" {
		return &ValidationError{Field: "description", Reason: "is required"}
	}
	return nil
}
