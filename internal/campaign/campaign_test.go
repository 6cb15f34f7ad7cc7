package campaign

import (
	"fmt"
	"testing"

	"collections-reconciliation-service/internal/models"

	"github.com/shopspring/decimal"
)

func contact(code, category, period string) *models.ContactRecord {
	return &models.ContactRecord{
		Code:     code,
		Category: category,
		Period:   period,
		Amount:   decimal.NewFromInt(100),
	}
}

func payment(id, period, amount string) *models.PaymentRecord {
	return models.NewPaymentRecord(id, period, decimal.RequireFromString(amount))
}

func TestFilterConfigValidate(t *testing.T) {
	bad := &FilterConfig{Periods: []string{"2024-01"}, AllPeriods: true}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for periods with all-periods")
	}

	bad = &FilterConfig{Categories: []string{"MORA"}, AllCategories: true}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for categories with all-categories")
	}

	if err := DefaultFilterConfig().Validate(); err != nil {
		t.Errorf("default config failed validation: %v", err)
	}
}

func TestFilterByPeriod(t *testing.T) {
	contacts := []*models.ContactRecord{
		contact("C001", "CREDITO", "2024-01"),
		contact("C002", "CREDITO", "2024-02"),
		contact("C003", "CREDITO", ""), // date never parsed
	}

	filter, err := NewFilter(&FilterConfig{
		Periods:       []string{"2024-01"},
		AllCategories: true,
	})
	if err != nil {
		t.Fatalf("NewFilter failed: %v", err)
	}

	selected := filter.Apply(contacts, nil)
	if len(selected) != 1 || selected[0].Code != "C001" {
		t.Errorf("selected = %v, want only C001", selected)
	}
}

func TestFilterEmptySelectionMatchesNothing(t *testing.T) {
	contacts := []*models.ContactRecord{
		contact("C001", "CREDITO", "2024-01"),
	}

	// No periods listed and AllPeriods unset: nothing qualifies
	filter, _ := NewFilter(&FilterConfig{AllCategories: true})
	if selected := filter.Apply(contacts, nil); len(selected) != 0 {
		t.Errorf("empty period selection matched %d contacts, want 0", len(selected))
	}

	// No categories listed and AllCategories unset: nothing qualifies
	filter, _ = NewFilter(&FilterConfig{AllPeriods: true})
	if selected := filter.Apply(contacts, nil); len(selected) != 0 {
		t.Errorf("empty category selection matched %d contacts, want 0", len(selected))
	}
}

func TestFilterAllPeriodsIncludesUnparsedDates(t *testing.T) {
	contacts := []*models.ContactRecord{
		contact("C001", "CREDITO", "2024-01"),
		contact("C002", "CREDITO", ""),
	}

	filter, _ := NewFilter(&FilterConfig{AllPeriods: true, AllCategories: true})
	selected := filter.Apply(contacts, nil)
	if len(selected) != 2 {
		t.Errorf("all-periods selected %d contacts, want 2", len(selected))
	}
}

func TestFilterByCategory(t *testing.T) {
	contacts := []*models.ContactRecord{
		contact("C001", "CREDITO", "2024-01"),
		contact("C002", "MORA", "2024-01"),
		contact("C003", "CASTIGADA", "2024-01"),
	}

	filter, _ := NewFilter(&FilterConfig{
		AllPeriods: true,
		Categories: []string{"MORA", "CASTIGADA"},
	})

	selected := filter.Apply(contacts, nil)
	if len(selected) != 2 {
		t.Fatalf("selected = %d, want 2", len(selected))
	}
	if selected[0].Code != "C002" || selected[1].Code != "C003" {
		t.Error("category filter should preserve input order")
	}
}

func TestFilterPurgePaid(t *testing.T) {
	contacts := []*models.ContactRecord{
		contact("C001", "CREDITO", "2024-01"),
		contact("C002", "CREDITO", "2024-01"),
		contact("C003", "CREDITO", "2024-01"),
	}
	payments := []*models.PaymentRecord{
		payment("C001", "2024-01", "50.00"), // paid in scope: purged
		payment("C002", "2024-02", "50.00"), // paid out of scope: kept
		payment("C003", "2024-01", "0"),     // zero payment: kept
	}

	filter, _ := NewFilter(&FilterConfig{
		Periods:       []string{"2024-01"},
		AllCategories: true,
		PurgePaid:     true,
	})

	selected := filter.Apply(contacts, payments)
	if len(selected) != 2 {
		t.Fatalf("selected = %d, want 2", len(selected))
	}
	if selected[0].Code != "C002" || selected[1].Code != "C003" {
		t.Errorf("selected = %s, %s", selected[0].Code, selected[1].Code)
	}
}

func TestFilterPurgePeriodlessPayments(t *testing.T) {
	contacts := []*models.ContactRecord{
		contact("C001", "CREDITO", "2024-01"),
		contact("C002", "CREDITO", "2024-01"),
	}
	// Payments file without a PERIODO column: every row has an empty period
	payments := []*models.PaymentRecord{
		payment("C001", "", "50.00"),
	}

	filter, _ := NewFilter(&FilterConfig{
		Periods:       []string{"2024-01"},
		AllCategories: true,
		PurgePaid:     true,
	})

	selected := filter.Apply(contacts, payments)
	if len(selected) != 1 {
		t.Fatalf("selected = %d, want 1", len(selected))
	}
	if selected[0].Code != "C002" {
		t.Errorf("paying contact should be purged even without payment periods, got %s", selected[0].Code)
	}
}

func TestFilterPurgeDisabled(t *testing.T) {
	contacts := []*models.ContactRecord{contact("C001", "CREDITO", "2024-01")}
	payments := []*models.PaymentRecord{payment("C001", "2024-01", "50.00")}

	filter, _ := NewFilter(&FilterConfig{
		Periods:       []string{"2024-01"},
		AllCategories: true,
		PurgePaid:     false,
	})

	if selected := filter.Apply(contacts, payments); len(selected) != 1 {
		t.Error("purge disabled should keep the paying contact")
	}
}

func TestFilterNilConfigUsesDefaults(t *testing.T) {
	filter, err := NewFilter(nil)
	if err != nil {
		t.Fatalf("NewFilter(nil) failed: %v", err)
	}
	// Default has no period selection, so nothing matches
	if selected := filter.Apply([]*models.ContactRecord{contact("C001", "M", "2024-01")}, nil); len(selected) != 0 {
		t.Error("default config should select no periods")
	}
}

func makeContacts(n int) []*models.ContactRecord {
	contacts := make([]*models.ContactRecord, n)
	for i := range contacts {
		contacts[i] = contact(fmt.Sprintf("C%03d", i), "CREDITO", "2024-01")
	}
	return contacts
}

func TestPartitionSizes(t *testing.T) {
	batches, err := Partition(makeContacts(23), 5)
	if err != nil {
		t.Fatalf("Partition failed: %v", err)
	}

	want := []int{5, 5, 5, 5, 3}
	if len(batches) != len(want) {
		t.Fatalf("batches = %d, want %d", len(batches), len(want))
	}
	for i, size := range want {
		if len(batches[i]) != size {
			t.Errorf("batch %d size = %d, want %d", i, len(batches[i]), size)
		}
	}
}

func TestPartitionReconstruction(t *testing.T) {
	contacts := makeContacts(17)
	batches, err := Partition(contacts, 4)
	if err != nil {
		t.Fatalf("Partition failed: %v", err)
	}

	var rebuilt []*models.ContactRecord
	for _, batch := range batches {
		rebuilt = append(rebuilt, batch...)
	}

	if len(rebuilt) != len(contacts) {
		t.Fatalf("rebuilt %d contacts, want %d", len(rebuilt), len(contacts))
	}
	for i := range contacts {
		if rebuilt[i] != contacts[i] {
			t.Fatalf("order broken at index %d", i)
		}
	}
}

func TestPartitionFewerContactsThanBatches(t *testing.T) {
	batches, err := Partition(makeContacts(3), 10)
	if err != nil {
		t.Fatalf("Partition failed: %v", err)
	}
	// Empty batches are dropped, not padded
	if len(batches) != 3 {
		t.Errorf("batches = %d, want 3", len(batches))
	}
	for i, batch := range batches {
		if len(batch) != 1 {
			t.Errorf("batch %d size = %d, want 1", i, len(batch))
		}
	}
}

func TestPartitionEmptyInput(t *testing.T) {
	batches, err := Partition(nil, 5)
	if err != nil {
		t.Fatalf("Partition failed: %v", err)
	}
	if batches != nil {
		t.Errorf("expected nil batches for empty input, got %d", len(batches))
	}
}

func TestPartitionInvalidCount(t *testing.T) {
	contacts := makeContacts(5)
	if _, err := Partition(contacts, 0); err == nil {
		t.Error("expected error for k=0")
	}
	if _, err := Partition(contacts, MaxBatches+1); err == nil {
		t.Error("expected error for k beyond the cap")
	}
}
