package core

import (
	"errors"
	"math"
	"testing"
)

func TestCostDraftValidate(t *testing.T) {
	good := CostDraft{Sum: 12.5, Currency: USD, Category: "Food", Description: "lunch"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name  string
		draft CostDraft
		field string
	}{
		{"zero sum", CostDraft{Sum: 0, Currency: USD, Category: "c", Description: "d"}, "sum"},
		{"negative sum", CostDraft{Sum: -3, Currency: USD, Category: "c", Description: "d"}, "sum"},
		{"nan sum", CostDraft{Sum: math.NaN(), Currency: USD, Category: "c", Description: "d"}, "sum"},
		{"inf sum", CostDraft{Sum: math.Inf(1), Currency: USD, Category: "c", Description: "d"}, "sum"},
		{"empty currency", CostDraft{Sum: 1, Currency: "", Category: "c", Description: "d"}, "currency"},
		{"unsupported currency", CostDraft{Sum: 1, Currency: "CHF", Category: "c", Description: "d"}, "currency"},
		{"empty category", CostDraft{Sum: 1, Currency: USD, Category: "", Description: "d"}, "category"},
		{"blank category", CostDraft{Sum: 1, Currency: USD, Category: "  ", Description: "d"}, "category"},
		{"empty description", CostDraft{Sum: 1, Currency: USD, Category: "c", Description: ""}, "description"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.draft.Validate()
			if err == nil {
				t.Fatalf("expected error")
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %T", err)
			}
			if verr.Field != tc.field {
				t.Fatalf("expected field %q, got %q", tc.field, verr.Field)
			}
		})
	}
}

func TestCurrencySupported(t *testing.T) {
	for _, c := range Currencies {
		if !c.Supported() {
			t.Fatalf("%s should be supported", c)
		}
	}
	if Currency("JPY").Supported() {
		t.Fatalf("JPY should not be supported")
	}
}
