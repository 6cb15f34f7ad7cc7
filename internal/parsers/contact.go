package parsers

import (
	"sort"

	"collections-reconciliation-service/internal/models"
	"collections-reconciliation-service/internal/tabular"
	"collections-reconciliation-service/pkg/logger"
)

// ContactParser builds ContactRecords from a subscriber base table
type ContactParser struct {
	schema *tabular.Schema
	logger logger.Logger
}

// NewContactParser creates a new ContactParser. A nil schema uses the
// default contact contract.
func NewContactParser(schema *tabular.Schema) *ContactParser {
	if schema == nil {
		schema = ContactSchema()
	}
	return &ContactParser{
		schema: schema,
		logger: logger.GetGlobalLogger().WithComponent("contact_parser"),
	}
}

// Parse validates the table against the contact schema and coerces each
// row. The period bucket derives from the contact date (day-first); a row
// whose date does not parse keeps an empty period and is excluded from
// period-scoped filtering rather than failing the batch.
func (p *ContactParser) Parse(t *tabular.Table) ([]*models.ContactRecord, *CoercionStats, error) {
	binding, err := p.schema.Resolve(t)
	if err != nil {
		return nil, nil, err
	}

	stats := &CoercionStats{}
	records := make([]*models.ContactRecord, 0, t.Len())

	for _, row := range t.Rows {
		stats.RowsParsed++

		code := models.NormalizeKey(binding.Cell(row, ColCode))
		if code == "" {
			stats.EmptyKeys++
			continue
		}

		amount, ok := models.ParseAmount(binding.Cell(row, ColAmount))
		if !ok {
			stats.AmountFallbacks++
		}

		record := &models.ContactRecord{
			Code:        code,
			Category:    binding.Cell(row, ColType),
			PhoneNumber: binding.Cell(row, ColNumber),
			Name:        binding.Cell(row, ColName),
			RawDate:     binding.Cell(row, ColDate),
			Amount:      amount,
		}

		if date, err := models.ParseDateDayFirst(record.RawDate); err == nil {
			record.ContactDate = date
			record.Period = models.PeriodOf(date)
		} else {
			stats.DateFallbacks++
		}

		records = append(records, record)
		stats.RowsKept++
	}

	p.logger.WithFields(logger.Fields{
		"source": t.Source,
		"stats":  stats.String(),
	}).Info("Subscriber base parsed")

	if stats.AllDatesFailed() {
		p.logger.WithField("source", t.Source).
			Warn("Entire date column failed to parse; period filtering will match nothing")
	} else if stats.HasFallbacks() {
		p.logger.WithField("stats", stats.String()).Warn("Coercion fallbacks applied to subscriber base")
	}

	return records, stats, nil
}

// Periods returns the sorted distinct periods present in a contact set,
// skipping rows whose date never parsed.
func Periods(contacts []*models.ContactRecord) []string {
	seen := make(map[string]bool)
	var periods []string
	for _, c := range contacts {
		if c.HasPeriod() && !seen[c.Period] {
			seen[c.Period] = true
			periods = append(periods, c.Period)
		}
	}
	sort.Strings(periods)
	return periods
}

// Categories returns the sorted distinct categories present in a contact set
func Categories(contacts []*models.ContactRecord) []string {
	seen := make(map[string]bool)
	var categories []string
	for _, c := range contacts {
		if c.Category != "" && !seen[c.Category] {
			seen[c.Category] = true
			categories = append(categories, c.Category)
		}
	}
	sort.Strings(categories)
	return categories
}
