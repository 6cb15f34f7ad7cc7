package parsers

import (
	"fmt"

	"collections-reconciliation-service/internal/tabular"
)

// Canonical column names used throughout the pipeline. Input files bind to
// these once, at schema resolution; no downstream step repeats alias
// lookups.
const (
	ColCollectionID = "collection_id"
	ColDebt         = "debt"
	ColAmount       = "amount"
	ColType         = "type"
	ColPeriod       = "period"
	ColDate         = "date"
	ColCode         = "code"
	ColNumber       = "number"
	ColName         = "name"
)

// DebtSchema returns the required-column contract for the debt (cartera)
// ledger. The key column is aliased because extracts disagree on its name.
func DebtSchema() *tabular.Schema {
	return &tabular.Schema{
		Role: "debt",
		Columns: []tabular.Column{
			{Canonical: ColCollectionID, Aliases: []string{"ID_COBRANZA", "CODIGO", "ID"}},
			{Canonical: ColDebt, Aliases: []string{"DEUDA", "IMPORTE"}},
			{Canonical: ColType, Aliases: []string{"TIPO"}},
			{Canonical: ColPeriod, Aliases: []string{"PERIODO"}, Optional: true},
		},
	}
}

// PaymentSchema returns the required-column contract for the payments file
func PaymentSchema() *tabular.Schema {
	return &tabular.Schema{
		Role: "payments",
		Columns: []tabular.Column{
			{Canonical: ColCollectionID, Aliases: []string{"ID_COBRANZA", "CODIGO"}},
			{Canonical: ColAmount, Aliases: []string{"IMPORTE", "MONTO"}},
			{Canonical: ColPeriod, Aliases: []string{"PERIODO"}, Optional: true},
			{Canonical: ColDate, Aliases: []string{"FECHA", "FECHA_PAGO"}, Optional: true},
		},
	}
}

// ContactSchema returns the required-column contract for the subscriber
// (SMS) base
func ContactSchema() *tabular.Schema {
	return &tabular.Schema{
		Role: "contacts",
		Columns: []tabular.Column{
			{Canonical: ColCode, Aliases: []string{"CODIGO"}},
			{Canonical: ColType, Aliases: []string{"TIPO"}},
			{Canonical: ColNumber, Aliases: []string{"NUMERO", "TELEFONO", "CELULAR"}},
			{Canonical: ColName, Aliases: []string{"NOMBRE"}},
			{Canonical: ColDate, Aliases: []string{"FECHA"}},
			{Canonical: ColAmount, Aliases: []string{"MONTO", "IMPORTE"}},
		},
	}
}

// CoercionStats counts the permissive-coercion fallbacks applied while
// building records from a validated table. These are surfaced to the
// caller for transparency, never silently dropped.
type CoercionStats struct {
	RowsParsed      int
	RowsKept        int
	AmountFallbacks int
	DateFallbacks   int
	NegativeAmounts int
	EmptyKeys       int
}

// HasFallbacks returns true if any cell needed a safe-default coercion
func (cs *CoercionStats) HasFallbacks() bool {
	return cs.AmountFallbacks > 0 || cs.DateFallbacks > 0 ||
		cs.NegativeAmounts > 0 || cs.EmptyKeys > 0
}

// AllDatesFailed reports that the entire date column failed to parse,
// which callers report as "unparsed date" instead of period filtering.
func (cs *CoercionStats) AllDatesFailed() bool {
	return cs.RowsKept > 0 && cs.DateFallbacks == cs.RowsKept
}

// String returns a human-readable summary of the coercion statistics
func (cs *CoercionStats) String() string {
	return fmt.Sprintf("parsed %d rows (%d kept): %d amount fallbacks, %d date fallbacks, %d negative amounts normalized, %d empty keys skipped",
		cs.RowsParsed, cs.RowsKept, cs.AmountFallbacks, cs.DateFallbacks,
		cs.NegativeAmounts, cs.EmptyKeys)
}
