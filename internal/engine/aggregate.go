// Package engine implements the reconciliation core: payment aggregation,
// the debt/payment left join with settlement classification, summary
// aggregates, and the session cache for the debt ledger.
package engine

import (
	"fmt"

	"collections-reconciliation-service/internal/models"

	"github.com/shopspring/decimal"
)

// Granularity selects the grouping key for payment aggregation and, by the
// same value, the join key of the reconciliation. A single pipeline always
// uses one granularity for both: aggregating by key alone while joining
// per period silently overstates payment coverage for multi-period
// debtors.
type Granularity string

const (
	// GranularityKey groups payments by collection key alone
	GranularityKey Granularity = "key"
	// GranularityKeyPeriod groups payments by (collection key, period)
	GranularityKeyPeriod Granularity = "key_period"
)

// String returns the string representation of Granularity
func (g Granularity) String() string {
	return string(g)
}

// IsValid checks if the granularity is valid
func (g Granularity) IsValid() bool {
	return g == GranularityKey || g == GranularityKeyPeriod
}

// ParseGranularity parses a granularity from its flag representation
func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(s) {
	case GranularityKey:
		return GranularityKey, nil
	case GranularityKeyPeriod:
		return GranularityKeyPeriod, nil
	default:
		return "", fmt.Errorf("invalid granularity '%s': must be %s or %s",
			s, GranularityKey, GranularityKeyPeriod)
	}
}

// groupKey is the aggregation/join key tuple. Period stays empty under
// GranularityKey.
type groupKey struct {
	id     string
	period string
}

func (g Granularity) keyOf(id, period string) groupKey {
	if g == GranularityKeyPeriod {
		return groupKey{id: id, period: period}
	}
	return groupKey{id: id}
}

// AggregatePayments collapses a payments set to one total per distinct key
// tuple. The sum is commutative and associative over input order; output
// rows appear in first-seen key order so repeated runs over the same file
// produce identical output.
func AggregatePayments(payments []*models.PaymentRecord, g Granularity) []*models.AggregatedPayment {
	totals := make(map[groupKey]decimal.Decimal)
	var order []groupKey

	for _, p := range payments {
		key := g.keyOf(p.CollectionID, p.Period)
		if _, seen := totals[key]; !seen {
			order = append(order, key)
		}
		totals[key] = totals[key].Add(p.AmountPaid)
	}

	aggregated := make([]*models.AggregatedPayment, 0, len(order))
	for _, key := range order {
		aggregated = append(aggregated, &models.AggregatedPayment{
			CollectionID: key.id,
			Period:       key.period,
			TotalPaid:    totals[key],
		})
	}

	return aggregated
}

// paymentIndex builds the lookup map the join reads from
func paymentIndex(aggregated []*models.AggregatedPayment, g Granularity) map[groupKey]decimal.Decimal {
	index := make(map[groupKey]decimal.Decimal, len(aggregated))
	for _, a := range aggregated {
		index[g.keyOf(a.CollectionID, a.Period)] = a.TotalPaid
	}
	return index
}

// PayerKeys returns the set of collection keys that made a qualifying
// positive payment, optionally scoped to a period set (keys paid in ANY of
// the given periods qualify; an empty scope means any period). A payment
// row without a period always qualifies: the common payments extract
// carries no PERIODO column at all, and a period scope must not turn the
// purge into a no-op against it.
func PayerKeys(payments []*models.PaymentRecord, periods map[string]bool) map[string]bool {
	payers := make(map[string]bool)
	for _, p := range payments {
		if !p.AmountPaid.IsPositive() {
			continue
		}
		if len(periods) > 0 && p.Period != "" && !periods[p.Period] {
			continue
		}
		payers[p.CollectionID] = true
	}
	return payers
}
