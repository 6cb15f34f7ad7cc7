package engine

import (
	"sort"

	"collections-reconciliation-service/internal/models"

	"github.com/shopspring/decimal"
)

// Summary is the executive overview of one reconciliation run
type Summary struct {
	RecordCount  int             `json:"record_count"`
	PaidCount    int             `json:"paid_count"`
	PendingCount int             `json:"pending_count"`
	TotalDebt    decimal.Decimal `json:"total_debt"`
	TotalPaid    decimal.Decimal `json:"total_paid"`
	TotalPending decimal.Decimal `json:"total_pending"`
}

// Summarize computes the overview totals for a reconciled set
func Summarize(records []*models.ReconciledRecord) *Summary {
	summary := &Summary{
		TotalDebt:    decimal.Zero,
		TotalPaid:    decimal.Zero,
		TotalPending: decimal.Zero,
	}

	for _, r := range records {
		summary.RecordCount++
		if r.IsPaid() {
			summary.PaidCount++
		} else {
			summary.PendingCount++
		}
		summary.TotalDebt = summary.TotalDebt.Add(r.DebtAmount)
		summary.TotalPaid = summary.TotalPaid.Add(r.TotalPaid)
		summary.TotalPending = summary.TotalPending.Add(r.PendingBalance)
	}

	return summary
}

// GroupAggregate is a per-category or per-period rollup of a reconciled set
type GroupAggregate struct {
	Group   string          `json:"group"`
	Count   int             `json:"count"`
	Debt    decimal.Decimal `json:"debt"`
	Paid    decimal.Decimal `json:"paid"`
	Pending decimal.Decimal `json:"pending"`
}

func aggregateBy(records []*models.ReconciledRecord, keyOf func(*models.ReconciledRecord) string) []*GroupAggregate {
	groups := make(map[string]*GroupAggregate)
	var order []string

	for _, r := range records {
		key := keyOf(r)
		agg, ok := groups[key]
		if !ok {
			agg = &GroupAggregate{
				Group:   key,
				Debt:    decimal.Zero,
				Paid:    decimal.Zero,
				Pending: decimal.Zero,
			}
			groups[key] = agg
			order = append(order, key)
		}
		agg.Count++
		agg.Debt = agg.Debt.Add(r.DebtAmount)
		agg.Paid = agg.Paid.Add(r.TotalPaid)
		agg.Pending = agg.Pending.Add(r.PendingBalance)
	}

	sort.Strings(order)
	result := make([]*GroupAggregate, 0, len(order))
	for _, key := range order {
		result = append(result, groups[key])
	}
	return result
}

// AggregateByCategory rolls the reconciled set up by debt type
func AggregateByCategory(records []*models.ReconciledRecord) []*GroupAggregate {
	return aggregateBy(records, func(r *models.ReconciledRecord) string { return r.DebtType })
}

// AggregateByPeriod rolls the reconciled set up by period
func AggregateByPeriod(records []*models.ReconciledRecord) []*GroupAggregate {
	return aggregateBy(records, func(r *models.ReconciledRecord) string { return r.Period })
}

// PendingOnly returns the subset with an outstanding balance, preserving
// input order. The result shares record pointers but never the slice.
func PendingOnly(records []*models.ReconciledRecord) []*models.ReconciledRecord {
	var pending []*models.ReconciledRecord
	for _, r := range records {
		if !r.IsPaid() {
			pending = append(pending, r)
		}
	}
	return pending
}

// ForPeriod returns the subset belonging to one period, preserving order
func ForPeriod(records []*models.ReconciledRecord, period string) []*models.ReconciledRecord {
	var matched []*models.ReconciledRecord
	for _, r := range records {
		if r.Period == period {
			matched = append(matched, r)
		}
	}
	return matched
}

// Periods returns the sorted distinct periods in a reconciled set
func Periods(records []*models.ReconciledRecord) []string {
	seen := make(map[string]bool)
	var periods []string
	for _, r := range records {
		if r.Period != "" && !seen[r.Period] {
			seen[r.Period] = true
			periods = append(periods, r.Period)
		}
	}
	sort.Strings(periods)
	return periods
}

// TopOutstanding returns the n records with the largest pending balance,
// without mutating the input order.
func TopOutstanding(records []*models.ReconciledRecord, n int) []*models.ReconciledRecord {
	if n <= 0 {
		return nil
	}

	sorted := make([]*models.ReconciledRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PendingBalance.GreaterThan(sorted[j].PendingBalance)
	})

	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}
