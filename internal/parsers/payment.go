package parsers

import (
	"collections-reconciliation-service/internal/models"
	"collections-reconciliation-service/internal/tabular"
	"collections-reconciliation-service/pkg/logger"
)

// PaymentParser builds PaymentRecords from a payments table
type PaymentParser struct {
	schema *tabular.Schema
	logger logger.Logger
}

// NewPaymentParser creates a new PaymentParser. A nil schema uses the
// default payments contract.
func NewPaymentParser(schema *tabular.Schema) *PaymentParser {
	if schema == nil {
		schema = PaymentSchema()
	}
	return &PaymentParser{
		schema: schema,
		logger: logger.GetGlobalLogger().WithComponent("payment_parser"),
	}
}

// Parse validates the table against the payments schema and coerces each
// row. A payment row whose amount fails to parse contributes zero rather
// than aborting the batch.
func (p *PaymentParser) Parse(t *tabular.Table) ([]*models.PaymentRecord, *CoercionStats, error) {
	binding, err := p.schema.Resolve(t)
	if err != nil {
		return nil, nil, err
	}

	stats := &CoercionStats{}
	records := make([]*models.PaymentRecord, 0, t.Len())

	for _, row := range t.Rows {
		stats.RowsParsed++

		key := models.NormalizeKey(binding.Cell(row, ColCollectionID))
		if key == "" {
			stats.EmptyKeys++
			continue
		}

		amount, ok := models.ParseAmount(binding.Cell(row, ColAmount))
		if !ok {
			stats.AmountFallbacks++
		}
		if amount.IsNegative() {
			amount = amount.Abs()
			stats.NegativeAmounts++
		}

		record := models.NewPaymentRecord(key, binding.Cell(row, ColPeriod), amount)

		if binding.Has(ColDate) {
			if raw := binding.Cell(row, ColDate); raw != "" {
				if date, err := models.ParseDateDayFirst(raw); err == nil {
					record.PaymentDate = date
				} else {
					stats.DateFallbacks++
				}
			}
		}

		records = append(records, record)
		stats.RowsKept++
	}

	p.logger.WithFields(logger.Fields{
		"source": t.Source,
		"stats":  stats.String(),
	}).Info("Payments file parsed")

	if stats.HasFallbacks() {
		p.logger.WithField("stats", stats.String()).Warn("Coercion fallbacks applied to payments file")
	}

	return records, stats, nil
}
