package model

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestPricePerML(t *testing.T) {
	got := PricePerML(decimal.NewFromInt(150), 100)
	if !got.Equal(decimal.RequireFromString("1.5")) {
		t.Fatalf("PricePerML(150, 100) = %s, want 1.5", got)
	}
	if !PricePerML(decimal.NewFromInt(150), 0).IsZero() {
		t.Fatal("zero volume should give zero")
	}
	if !PricePerML(decimal.Zero, 50).IsZero() {
		t.Fatal("missing price should give zero")
	}
}

func TestDataIntegrityError_Message(t *testing.T) {
	err := &DataIntegrityError{Sheet: "Wears for 2023", Row: 7, Column: "mL", Value: "abc", Reason: "volume must be a positive number"}
	want := `Wears for 2023 row 7 column "mL": volume must be a positive number (got "abc")`
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}

	bare := &DataIntegrityError{Reason: "remaining volume is not a finite number"}
	if bare.Error() != "record: remaining volume is not a finite number" {
		t.Fatalf("Error() = %q", bare.Error())
	}
}
