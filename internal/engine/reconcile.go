package engine

import (
	"fmt"

	"collections-reconciliation-service/internal/models"
	"collections-reconciliation-service/pkg/logger"

	"github.com/shopspring/decimal"
)

// Options holds configuration for the reconciliation engine
type Options struct {
	// Granularity drives BOTH payment aggregation and the join key.
	Granularity Granularity

	// ClampOverpayment forces negative pending balances (overpayments) to
	// zero. Classification happens before clamping, so the PAID/PENDING
	// outcome is identical either way.
	ClampOverpayment bool
}

// DefaultOptions returns the default engine options
func DefaultOptions() *Options {
	return &Options{
		Granularity:      GranularityKey,
		ClampOverpayment: false,
	}
}

// Validate validates the engine options
func (o *Options) Validate() error {
	if !o.Granularity.IsValid() {
		return fmt.Errorf("invalid granularity: %s", o.Granularity)
	}
	return nil
}

// Engine performs the debt-against-payments reconciliation. It is a pure
// computation over its inputs: no state is mutated, and re-running with a
// fresh payments file against a cached debt ledger is always safe.
type Engine struct {
	opts   *Options
	logger logger.Logger
}

// NewEngine creates a reconciliation engine
func NewEngine(opts *Options) (*Engine, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine options: %w", err)
	}

	return &Engine{
		opts:   opts,
		logger: logger.GetGlobalLogger().WithComponent("engine"),
	}, nil
}

// Options returns the engine's configuration
func (e *Engine) Options() *Options {
	return e.opts
}

// Reconcile left-joins every debt row against the payment aggregate at the
// engine's granularity. Every debt row survives: an unmatched row gets a
// zero total. Duplicate debt rows for the same key tuple each keep their
// own identity through the join. Absence of a matching payment is valid
// domain state, never an error.
func (e *Engine) Reconcile(debts []*models.DebtRecord, payments []*models.PaymentRecord) ([]*models.ReconciledRecord, error) {
	aggregated := AggregatePayments(payments, e.opts.Granularity)
	index := paymentIndex(aggregated, e.opts.Granularity)

	reconciled := make([]*models.ReconciledRecord, 0, len(debts))

	for _, debt := range debts {
		totalPaid, ok := index[e.opts.Granularity.keyOf(debt.CollectionID, debt.Period)]
		if !ok {
			totalPaid = decimal.Zero
		}

		pending := debt.DebtAmount.Sub(totalPaid)
		state := models.ClassifySettlement(totalPaid, debt.DebtAmount)

		if e.opts.ClampOverpayment && pending.IsNegative() {
			pending = decimal.Zero
		}

		reconciled = append(reconciled, &models.ReconciledRecord{
			DebtRecord:     *debt,
			TotalPaid:      totalPaid,
			PendingBalance: pending,
			State:          state,
		})
	}

	paid := 0
	for _, r := range reconciled {
		if r.IsPaid() {
			paid++
		}
	}

	e.logger.WithFields(logger.Fields{
		"granularity":     e.opts.Granularity,
		"debt_rows":       len(debts),
		"payment_rows":    len(payments),
		"payment_groups":  len(aggregated),
		"paid_records":    paid,
		"pending_records": len(reconciled) - paid,
	}).Info("Reconciliation completed")

	return reconciled, nil
}

// ReconcileSession runs the reconciliation against the ledger cached in a
// session. The engine always receives a defensive copy of the ledger, so
// the cached original is never touched by an in-flight computation.
func (e *Engine) ReconcileSession(session *Session, payments []*models.PaymentRecord) ([]*models.ReconciledRecord, error) {
	if !session.HasLedger() {
		return nil, fmt.Errorf("session has no cached debt ledger")
	}
	return e.Reconcile(session.Ledger(), payments)
}
