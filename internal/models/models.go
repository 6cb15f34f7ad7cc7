package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SettlementState classifies a reconciled debt row
type SettlementState string

const (
	// SettlementPaid means the aggregated payments cover the debt amount
	SettlementPaid SettlementState = "PAID"
	// SettlementPending means an outstanding balance remains
	SettlementPending SettlementState = "PENDING"
)

// String returns the string representation of SettlementState
func (s SettlementState) String() string {
	return string(s)
}

// IsValid checks if the settlement state is valid
func (s SettlementState) IsValid() bool {
	return s == SettlementPaid || s == SettlementPending
}

// ClassifySettlement returns PAID iff the paid total covers the debt amount.
// The threshold is the amount comparison itself, never a derived balance,
// so classification and balance arithmetic cannot disagree.
func ClassifySettlement(totalPaid, debtAmount decimal.Decimal) SettlementState {
	if totalPaid.GreaterThanOrEqual(debtAmount) {
		return SettlementPaid
	}
	return SettlementPending
}

// DebtRecord is one row of the debt ledger (cartera)
type DebtRecord struct {
	CollectionID string          `json:"collection_id"`
	Period       string          `json:"period,omitempty"`
	DebtAmount   decimal.Decimal `json:"debt_amount"`
	DebtType     string          `json:"debt_type"`
}

// NewDebtRecord creates a new DebtRecord instance
func NewDebtRecord(collectionID, period string, amount decimal.Decimal, debtType string) *DebtRecord {
	return &DebtRecord{
		CollectionID: collectionID,
		Period:       period,
		DebtAmount:   amount,
		DebtType:     debtType,
	}
}

// Validate performs basic validation on the DebtRecord
func (d *DebtRecord) Validate() error {
	if strings.TrimSpace(d.CollectionID) == "" {
		return fmt.Errorf("collection ID cannot be empty")
	}

	if d.DebtAmount.IsNegative() {
		return fmt.Errorf("debt amount cannot be negative: %s", d.DebtAmount.String())
	}

	return nil
}

// Clone returns an independent copy of the record
func (d *DebtRecord) Clone() *DebtRecord {
	c := *d
	return &c
}

// String returns a string representation of the DebtRecord
func (d *DebtRecord) String() string {
	return fmt.Sprintf("DebtRecord{ID: %s, Period: %s, Debt: %s, Type: %s}",
		d.CollectionID, d.Period, d.DebtAmount.String(), d.DebtType)
}

// PaymentRecord is one row of the payments ledger
type PaymentRecord struct {
	CollectionID string          `json:"collection_id"`
	Period       string          `json:"period,omitempty"`
	AmountPaid   decimal.Decimal `json:"amount_paid"`
	PaymentDate  time.Time       `json:"payment_date,omitempty"`
}

// NewPaymentRecord creates a new PaymentRecord instance
func NewPaymentRecord(collectionID, period string, amount decimal.Decimal) *PaymentRecord {
	return &PaymentRecord{
		CollectionID: collectionID,
		Period:       period,
		AmountPaid:   amount,
	}
}

// Validate performs basic validation on the PaymentRecord
func (p *PaymentRecord) Validate() error {
	if strings.TrimSpace(p.CollectionID) == "" {
		return fmt.Errorf("collection ID cannot be empty")
	}

	if p.AmountPaid.IsNegative() {
		return fmt.Errorf("paid amount cannot be negative: %s", p.AmountPaid.String())
	}

	return nil
}

// String returns a string representation of the PaymentRecord
func (p *PaymentRecord) String() string {
	return fmt.Sprintf("PaymentRecord{ID: %s, Period: %s, Paid: %s}",
		p.CollectionID, p.Period, p.AmountPaid.String())
}

// AggregatedPayment is the sum of payments for one key tuple. Period is
// empty when aggregation ran on the collection key alone.
type AggregatedPayment struct {
	CollectionID string          `json:"collection_id"`
	Period       string          `json:"period,omitempty"`
	TotalPaid    decimal.Decimal `json:"total_paid"`
}

// ReconciledRecord is a DebtRecord joined with its aggregated payments
type ReconciledRecord struct {
	DebtRecord
	TotalPaid      decimal.Decimal `json:"total_paid"`
	PendingBalance decimal.Decimal `json:"pending_balance"`
	State          SettlementState `json:"settlement_state"`
}

// IsPaid returns true if the record is fully settled
func (r *ReconciledRecord) IsPaid() bool {
	return r.State == SettlementPaid
}

// String returns a string representation of the ReconciledRecord
func (r *ReconciledRecord) String() string {
	return fmt.Sprintf("ReconciledRecord{ID: %s, Debt: %s, Paid: %s, Pending: %s, State: %s}",
		r.CollectionID, r.DebtAmount.String(), r.TotalPaid.String(),
		r.PendingBalance.String(), r.State)
}

// ContactRecord is a subscriber entry for the messaging campaign
type ContactRecord struct {
	Code        string          `json:"code"`
	Category    string          `json:"category"`
	PhoneNumber string          `json:"phone_number"`
	Name        string          `json:"name"`
	ContactDate time.Time       `json:"contact_date,omitempty"`
	RawDate     string          `json:"raw_date"`
	Period      string          `json:"period,omitempty"`
	Amount      decimal.Decimal `json:"campaign_amount"`
}

// HasPeriod reports whether the contact date parsed into a period bucket
func (c *ContactRecord) HasPeriod() bool {
	return c.Period != ""
}

// Validate performs basic validation on the ContactRecord
func (c *ContactRecord) Validate() error {
	if strings.TrimSpace(c.Code) == "" {
		return fmt.Errorf("contact code cannot be empty")
	}
	return nil
}

// String returns a string representation of the ContactRecord
func (c *ContactRecord) String() string {
	return fmt.Sprintf("ContactRecord{Code: %s, Number: %s, Period: %s, Category: %s}",
		c.Code, c.PhoneNumber, c.Period, c.Category)
}

// Coercion helpers. The pipeline favors completing a reconciliation over
// halting on a single bad cell: unparsable amounts become zero and
// unparsable dates become an empty period, with the caller counting the
// fallbacks.

// NormalizeKey coerces a join-key cell to its canonical string form.
// Leading zeros are preserved; only surrounding whitespace is removed.
func NormalizeKey(s string) string {
	return strings.TrimSpace(s)
}

// ParseAmount parses a monetary cell permissively. It strips currency
// symbols, spaces, and thousands separators before parsing. The second
// return value is false when the cell could not be parsed and the zero
// fallback applies.
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "S/", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\u00a0", "")

	// "1.234,56" style: dot as thousands separator, comma as decimal mark
	if strings.Contains(s, ",") {
		if strings.Contains(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
		}
		s = strings.Replace(s, ",", ".", 1)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}

	return d, true
}

// dayFirstFormats are the date layouts accepted for contact and payment
// dates, tried in order. The locale convention is day-first.
var dayFirstFormats = []string{
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"2006-01-02",
	"2006-01-02 15:04:05",
}

// ParseDateDayFirst parses a date cell with day-first convention
func ParseDateDayFirst(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("date string cannot be empty")
	}

	var lastErr error
	for _, format := range dayFirstFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date '%s': %w", s, lastErr)
}

// PeriodOf returns the YYYY-MM bucket for a date
func PeriodOf(t time.Time) string {
	return t.Format("2006-01")
}

// FormatMoney renders an amount with two fraction digits and a configurable
// decimal separator. Semicolon-delimited CSV exports use the comma
// separator so default-locale spreadsheet imports read them correctly.
func FormatMoney(d decimal.Decimal, commaDecimal bool) string {
	s := d.StringFixed(2)
	if commaDecimal {
		s = strings.Replace(s, ".", ",", 1)
	}
	return s
}
