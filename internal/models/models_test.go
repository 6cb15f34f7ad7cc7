package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestClassifySettlement(t *testing.T) {
	tests := []struct {
		name string
		paid string
		debt string
		want SettlementState
	}{
		{"fully paid", "100.00", "100.00", SettlementPaid},
		{"overpaid", "150.00", "100.00", SettlementPaid},
		{"underpaid", "99.99", "100.00", SettlementPending},
		{"unpaid", "0", "100.00", SettlementPending},
		{"zero debt zero paid", "0", "0", SettlementPaid},
		{"zero debt with payment", "10.00", "0", SettlementPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paid := decimal.RequireFromString(tt.paid)
			debt := decimal.RequireFromString(tt.debt)
			if got := ClassifySettlement(paid, debt); got != tt.want {
				t.Errorf("ClassifySettlement(%s, %s) = %s, want %s", tt.paid, tt.debt, got, tt.want)
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"100.50", "100.5", true},
		{"  100.50  ", "100.5", true},
		{"$1500", "1500", true},
		{"S/ 250.00", "250", true},
		{"1.234,56", "1234.56", true},
		{"1234,56", "1234.56", true},
		{"-45.10", "-45.1", true},
		{"0", "0", true},
		{"", "0", false},
		{"abc", "0", false},
		{"12x3", "0", false},
	}

	for _, tt := range tests {
		got, ok := ParseAmount(tt.input)
		if ok != tt.ok {
			t.Errorf("ParseAmount(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			continue
		}
		if got.String() != tt.want {
			t.Errorf("ParseAmount(%q) = %s, want %s", tt.input, got.String(), tt.want)
		}
	}
}

func TestParseAmountNonBreakingSpace(t *testing.T) {
	got, ok := ParseAmount("1\u00a0500.00")
	if !ok {
		t.Fatal("expected NBSP-separated amount to parse")
	}
	if got.String() != "1500" {
		t.Errorf("got %s, want 1500", got.String())
	}
}

func TestParseDateDayFirst(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"15/01/2024", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"5/3/2024", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"15-01-2024", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"2024-01-15", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"15/01/2024 10:30:00", time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		got, err := ParseDateDayFirst(tt.input)
		if err != nil {
			t.Errorf("ParseDateDayFirst(%q) error: %v", tt.input, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseDateDayFirst(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseDateDayFirstInvalid(t *testing.T) {
	for _, input := range []string{"", "not a date", "45/13/2024"} {
		if _, err := ParseDateDayFirst(input); err == nil {
			t.Errorf("ParseDateDayFirst(%q) expected error", input)
		}
	}
}

func TestPeriodOf(t *testing.T) {
	d := time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC)
	if got := PeriodOf(d); got != "2024-03" {
		t.Errorf("PeriodOf = %s, want 2024-03", got)
	}
}

func TestNormalizeKey(t *testing.T) {
	if got := NormalizeKey("  00123  "); got != "00123" {
		t.Errorf("NormalizeKey should preserve leading zeros, got %q", got)
	}
}

func TestFormatMoney(t *testing.T) {
	amount := decimal.RequireFromString("1234.5")

	if got := FormatMoney(amount, false); got != "1234.50" {
		t.Errorf("FormatMoney dot = %q, want 1234.50", got)
	}
	if got := FormatMoney(amount, true); got != "1234,50" {
		t.Errorf("FormatMoney comma = %q, want 1234,50", got)
	}
}

func TestDebtRecordValidate(t *testing.T) {
	record := NewDebtRecord("C001", "2024-01", decimal.NewFromInt(100), "CREDITO")
	if err := record.Validate(); err != nil {
		t.Errorf("valid record failed validation: %v", err)
	}

	empty := NewDebtRecord("   ", "2024-01", decimal.NewFromInt(100), "CREDITO")
	if err := empty.Validate(); err == nil {
		t.Error("expected error for empty collection ID")
	}

	negative := NewDebtRecord("C001", "", decimal.NewFromInt(-5), "CREDITO")
	if err := negative.Validate(); err == nil {
		t.Error("expected error for negative debt amount")
	}
}

func TestDebtRecordClone(t *testing.T) {
	original := NewDebtRecord("C001", "2024-01", decimal.NewFromInt(100), "CREDITO")
	clone := original.Clone()

	clone.CollectionID = "C999"
	clone.DebtAmount = decimal.NewFromInt(1)

	if original.CollectionID != "C001" {
		t.Error("mutating the clone changed the original ID")
	}
	if !original.DebtAmount.Equal(decimal.NewFromInt(100)) {
		t.Error("mutating the clone changed the original amount")
	}
}

func TestContactRecordHasPeriod(t *testing.T) {
	with := &ContactRecord{Code: "C001", Period: "2024-01"}
	without := &ContactRecord{Code: "C002"}

	if !with.HasPeriod() {
		t.Error("expected HasPeriod true when period is set")
	}
	if without.HasPeriod() {
		t.Error("expected HasPeriod false when period is empty")
	}
}
