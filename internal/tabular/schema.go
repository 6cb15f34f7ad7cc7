package tabular

import (
	"collections-reconciliation-service/pkg/errors"
	"collections-reconciliation-service/pkg/logger"
)

// Column declares one required or optional schema column. Aliases list the
// acceptable header names (already in normalized form); the first alias
// found in the table wins and becomes the binding for the canonical name.
type Column struct {
	Canonical string
	Aliases   []string
	Optional  bool
}

// Schema is the required-column contract for one record role (debt,
// payments, contacts). Alias resolution happens exactly once, at
// validation time; downstream code reads cells through the resolved
// binding and never repeats alias checks.
type Schema struct {
	Role    string
	Columns []Column
}

// Binding maps canonical column names to concrete column indices in one
// validated table.
type Binding struct {
	table   *Table
	indices map[string]int
}

// Resolve validates the table against the schema. On failure it returns a
// schema error naming every missing required column (not just the first)
// plus the detected column list.
func (s *Schema) Resolve(t *Table) (*Binding, error) {
	log := logger.GetGlobalLogger().WithComponent("schema")

	binding := &Binding{
		table:   t,
		indices: make(map[string]int, len(s.Columns)),
	}

	var missing []string
	for _, col := range s.Columns {
		idx := -1
		for _, alias := range col.Aliases {
			if i := t.ColumnIndex(NormalizeHeader(alias)); i >= 0 {
				idx = i
				break
			}
		}

		if idx < 0 {
			if !col.Optional {
				missing = append(missing, col.Canonical)
			}
			continue
		}
		binding.indices[col.Canonical] = idx
	}

	if len(missing) > 0 {
		log.WithFields(logger.Fields{
			"role":             s.Role,
			"missing_columns":  missing,
			"detected_columns": t.Headers,
		}).Error("Schema validation failed")

		return nil, errors.SchemaError(s.Role, missing, t.Headers)
	}

	log.WithFields(logger.Fields{
		"role":    s.Role,
		"columns": len(binding.indices),
	}).Debug("Schema resolved")

	return binding, nil
}

// Index returns the column index bound to a canonical name, or -1 when the
// column is absent (possible only for optional columns).
func (b *Binding) Index(canonical string) int {
	if idx, ok := b.indices[canonical]; ok {
		return idx
	}
	return -1
}

// Has reports whether an optional column was present in the table
func (b *Binding) Has(canonical string) bool {
	_, ok := b.indices[canonical]
	return ok
}

// Cell reads the cell bound to a canonical name from one row
func (b *Binding) Cell(row []string, canonical string) string {
	return b.table.Cell(row, b.Index(canonical))
}
