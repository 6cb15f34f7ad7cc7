// Package parsers builds typed domain records from validated tables,
// applying the permissive coercion policy: unparsable amounts coerce to
// zero, unparsable dates to an empty period, and the fallback counts are
// reported back to the caller.
package parsers

import (
	"collections-reconciliation-service/internal/models"
	"collections-reconciliation-service/internal/tabular"
	"collections-reconciliation-service/pkg/logger"
)

// DebtParser builds DebtRecords from a debt ledger table
type DebtParser struct {
	schema *tabular.Schema
	logger logger.Logger
}

// NewDebtParser creates a new DebtParser. A nil schema uses the default
// debt contract.
func NewDebtParser(schema *tabular.Schema) *DebtParser {
	if schema == nil {
		schema = DebtSchema()
	}
	return &DebtParser{
		schema: schema,
		logger: logger.GetGlobalLogger().WithComponent("debt_parser"),
	}
}

// Parse validates the table against the debt schema and coerces each row.
// Schema failure is fatal and short-circuits; cell-level failures are
// absorbed with safe defaults and counted in the returned stats.
func (p *DebtParser) Parse(t *tabular.Table) ([]*models.DebtRecord, *CoercionStats, error) {
	binding, err := p.schema.Resolve(t)
	if err != nil {
		return nil, nil, err
	}

	stats := &CoercionStats{}
	records := make([]*models.DebtRecord, 0, t.Len())

	for _, row := range t.Rows {
		stats.RowsParsed++

		key := models.NormalizeKey(binding.Cell(row, ColCollectionID))
		if key == "" {
			stats.EmptyKeys++
			continue
		}

		amount, ok := models.ParseAmount(binding.Cell(row, ColDebt))
		if !ok {
			stats.AmountFallbacks++
		}
		if amount.IsNegative() {
			amount = amount.Abs()
			stats.NegativeAmounts++
		}

		record := models.NewDebtRecord(
			key,
			binding.Cell(row, ColPeriod),
			amount,
			binding.Cell(row, ColType),
		)

		records = append(records, record)
		stats.RowsKept++
	}

	p.logger.WithFields(logger.Fields{
		"source": t.Source,
		"stats":  stats.String(),
	}).Info("Debt ledger parsed")

	if stats.HasFallbacks() {
		p.logger.WithField("stats", stats.String()).Warn("Coercion fallbacks applied to debt ledger")
	}

	return records, stats, nil
}

// HasPeriods reports whether the table carries the optional period column,
// which decides the join granularity available downstream.
func (p *DebtParser) HasPeriods(t *tabular.Table) bool {
	binding, err := p.schema.Resolve(t)
	if err != nil {
		return false
	}
	return binding.Has(ColPeriod)
}
