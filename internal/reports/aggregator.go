// Package reports composes cost-store queries with currency conversion to
// produce time-scoped, currency-normalized spending reports.
package reports

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"costbook/internal/core"
	applog "costbook/internal/log"
)

// CostSource is the slice of the store the aggregator needs.
type CostSource interface {
	CostsByMonth(ctx context.Context, year, month int) ([]core.CostRecord, error)
	CostsByYear(ctx context.Context, year int) ([]core.CostRecord, error)
}

type (
	// MonthlyReport lists one month's records with their total converted into
	// the display currency. Unconverted counts records whose conversion was
	// impossible (no rate table, or the table lacks their currency); those
	// contribute zero to the total rather than a silently wrong number.
	MonthlyReport struct {
		Year        int
		Month       int
		Currency    core.Currency
		Costs       []core.CostRecord
		Total       float64
		Unconverted int
	}

	CategoryTotal struct {
		Category string
		Total    float64
		Currency core.Currency
	}

	MonthTotal struct {
		Month    int // 1-12
		Total    float64
		Currency core.Currency
	}
)

// Aggregator is the only component that combines raw records with conversion.
type Aggregator struct {
	source CostSource
}

func NewAggregator(source CostSource) *Aggregator {
	return &Aggregator{source: source}
}

// convertOrZero converts one record's sum into the display currency.
// Same-currency records convert by identity regardless of the table; a record
// that cannot be converted contributes zero and is reported as such.
func convertOrZero(ctx context.Context, r core.CostRecord, currency core.Currency, rates core.RateTable) (float64, bool) {
	v, err := core.Convert(r.Sum, r.Currency, currency, rates)
	if err != nil {
		fields := applog.NewFields().
			WithComponent(applog.ComponentReports).
			WithOperation(applog.OpConvert).
			WithError(err)
		fields[applog.FieldCostID] = r.ID
		slog.DebugContext(ctx, "Cost left unconverted", fields.ToSlice()...)
		return 0, false
	}
	return v, true
}

// MonthlyReport returns the month's records and their converted total.
func (a *Aggregator) MonthlyReport(ctx context.Context, year, month int, currency core.Currency, rates core.RateTable) (MonthlyReport, error) {
	costs, err := a.source.CostsByMonth(ctx, year, month)
	if err != nil {
		return MonthlyReport{}, fmt.Errorf("monthly report: %w", err)
	}

	report := MonthlyReport{Year: year, Month: month, Currency: currency, Costs: costs}
	for _, c := range costs {
		v, ok := convertOrZero(ctx, c, currency, rates)
		if !ok {
			report.Unconverted++
			continue
		}
		report.Total += v
	}
	return report, nil
}

// CategoryTotals groups one month's records by category and sums converted
// amounts per group. Categories without records are omitted; output is sorted
// by category name so repeated calls are deterministic.
func (a *Aggregator) CategoryTotals(ctx context.Context, year, month int, currency core.Currency, rates core.RateTable) ([]CategoryTotal, error) {
	costs, err := a.source.CostsByMonth(ctx, year, month)
	if err != nil {
		return nil, fmt.Errorf("category totals: %w", err)
	}

	byCategory := make(map[string]float64)
	for _, c := range costs {
		v, _ := convertOrZero(ctx, c, currency, rates)
		byCategory[c.Category] += v
	}

	totals := make([]CategoryTotal, 0, len(byCategory))
	for category, total := range byCategory {
		totals = append(totals, CategoryTotal{Category: category, Total: total, Currency: currency})
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Category < totals[j].Category })
	return totals, nil
}

// MonthlyTotals returns exactly twelve entries for the year, one per month,
// with zero totals for months without activity.
func (a *Aggregator) MonthlyTotals(ctx context.Context, year int, currency core.Currency, rates core.RateTable) ([]MonthTotal, error) {
	costs, err := a.source.CostsByYear(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("monthly totals: %w", err)
	}

	totals := make([]MonthTotal, 12)
	for i := range totals {
		totals[i] = MonthTotal{Month: i + 1, Currency: currency}
	}
	for _, c := range costs {
		m := c.Date.Month
		if m < 1 || m > 12 {
			continue
		}
		v, _ := convertOrZero(ctx, c, currency, rates)
		totals[m-1].Total += v
	}
	return totals, nil
}
