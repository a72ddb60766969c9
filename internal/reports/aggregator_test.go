package reports

import (
	"context"
	"math"
	"testing"

	"costbook/internal/core"
)

// memSource is an in-memory CostSource for aggregation tests.
type memSource struct {
	records []core.CostRecord
}

func (m *memSource) CostsByMonth(_ context.Context, year, month int) ([]core.CostRecord, error) {
	var out []core.CostRecord
	for _, r := range m.records {
		if r.Date.Year == year && r.Date.Month == month {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memSource) CostsByYear(_ context.Context, year int) ([]core.CostRecord, error) {
	var out []core.CostRecord
	for _, r := range m.records {
		if r.Date.Year == year {
			out = append(out, r)
		}
	}
	return out, nil
}

func record(id int64, sum float64, currency core.Currency, category string, year, month, day int) core.CostRecord {
	return core.CostRecord{
		ID: id, Sum: sum, Currency: currency, Category: category,
		Description: "x", Date: core.Date{Year: year, Month: month, Day: day},
	}
}

func testRates() core.RateTable {
	return core.RateTable{core.USD: 1, core.ILS: 3.4, core.GBP: 0.6, core.EURO: 0.7}
}

func TestMonthlyReportConvertsTotal(t *testing.T) {
	source := &memSource{records: []core.CostRecord{
		record(1, 100, core.GBP, "Travel", 2025, 3, 10),
	}}
	agg := NewAggregator(source)

	report, err := agg.MonthlyReport(context.Background(), 2025, 3, core.USD, testRates())
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if len(report.Costs) != 1 {
		t.Fatalf("expected one record, got %d", len(report.Costs))
	}
	if math.Abs(report.Total-166.6666666667) > 1e-6 {
		t.Fatalf("expected ~166.67, got %v", report.Total)
	}
	if report.Unconverted != 0 {
		t.Fatalf("expected full conversion, got %d unconverted", report.Unconverted)
	}
}

func TestMonthlyReportNoRatesIdentityStillCounts(t *testing.T) {
	// Same-currency conversion is the identity and needs no rate table.
	source := &memSource{records: []core.CostRecord{
		record(1, 100, core.USD, "Food", 2025, 3, 5),
	}}
	agg := NewAggregator(source)

	report, err := agg.MonthlyReport(context.Background(), 2025, 3, core.USD, nil)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.Total != 100 {
		t.Fatalf("expected identity total 100, got %v", report.Total)
	}
	if report.Unconverted != 0 {
		t.Fatalf("expected no unconverted records, got %d", report.Unconverted)
	}
}

func TestMonthlyReportNoRatesCrossCurrencyIsExplicitZero(t *testing.T) {
	source := &memSource{records: []core.CostRecord{
		record(1, 100, core.GBP, "Travel", 2025, 3, 5),
		record(2, 50, core.USD, "Food", 2025, 3, 6),
	}}
	agg := NewAggregator(source)

	report, err := agg.MonthlyReport(context.Background(), 2025, 3, core.USD, nil)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	// The GBP record cannot be converted and contributes zero, flagged.
	if report.Total != 50 {
		t.Fatalf("expected 50, got %v", report.Total)
	}
	if report.Unconverted != 1 {
		t.Fatalf("expected one unconverted record, got %d", report.Unconverted)
	}
}

func TestCategoryTotalsMatchMonthlyReport(t *testing.T) {
	source := &memSource{records: []core.CostRecord{
		record(1, 100, core.GBP, "Travel", 2025, 3, 1),
		record(2, 40, core.USD, "Food", 2025, 3, 2),
		record(3, 85, core.ILS, "Food", 2025, 3, 3),
		record(4, 12, core.EURO, "Fun", 2025, 3, 4),
	}}
	agg := NewAggregator(source)
	ctx := context.Background()
	rates := testRates()

	report, err := agg.MonthlyReport(ctx, 2025, 3, core.ILS, rates)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	totals, err := agg.CategoryTotals(ctx, 2025, 3, core.ILS, rates)
	if err != nil {
		t.Fatalf("category totals: %v", err)
	}

	if len(totals) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(totals))
	}
	// Deterministic order: sorted by category name.
	if totals[0].Category != "Food" || totals[1].Category != "Fun" || totals[2].Category != "Travel" {
		t.Fatalf("unexpected order %+v", totals)
	}

	var sum float64
	for _, ct := range totals {
		sum += ct.Total
	}
	if math.Abs(sum-report.Total) > 1e-9 {
		t.Fatalf("category sum %v != monthly total %v", sum, report.Total)
	}
}

func TestCategoryTotalsEmptyMonth(t *testing.T) {
	agg := NewAggregator(&memSource{})
	totals, err := agg.CategoryTotals(context.Background(), 2025, 1, core.USD, testRates())
	if err != nil {
		t.Fatalf("category totals: %v", err)
	}
	if len(totals) != 0 {
		t.Fatalf("expected no entries, got %+v", totals)
	}
}

func TestMonthlyTotalsAlwaysTwelveEntries(t *testing.T) {
	source := &memSource{records: []core.CostRecord{
		record(1, 10, core.USD, "Food", 2025, 2, 1),
		record(2, 20, core.USD, "Food", 2025, 2, 15),
		record(3, 5, core.USD, "Fun", 2025, 11, 3),
	}}
	agg := NewAggregator(source)

	totals, err := agg.MonthlyTotals(context.Background(), 2025, core.USD, testRates())
	if err != nil {
		t.Fatalf("monthly totals: %v", err)
	}
	if len(totals) != 12 {
		t.Fatalf("expected 12 entries, got %d", len(totals))
	}
	for i, mt := range totals {
		if mt.Month != i+1 {
			t.Fatalf("entry %d has month %d", i, mt.Month)
		}
		switch mt.Month {
		case 2:
			if mt.Total != 30 {
				t.Fatalf("february: expected 30, got %v", mt.Total)
			}
		case 11:
			if mt.Total != 5 {
				t.Fatalf("november: expected 5, got %v", mt.Total)
			}
		default:
			if mt.Total != 0 {
				t.Fatalf("month %d: expected 0, got %v", mt.Month, mt.Total)
			}
		}
	}
}

func TestMonthlyTotalsEmptyYear(t *testing.T) {
	agg := NewAggregator(&memSource{})
	totals, err := agg.MonthlyTotals(context.Background(), 1999, core.EURO, nil)
	if err != nil {
		t.Fatalf("monthly totals: %v", err)
	}
	if len(totals) != 12 {
		t.Fatalf("expected 12 entries, got %d", len(totals))
	}
	for _, mt := range totals {
		if mt.Total != 0 {
			t.Fatalf("month %d: expected 0, got %v", mt.Month, mt.Total)
		}
	}
}
