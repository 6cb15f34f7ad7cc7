// Package campaign derives the outbound contact subset for a messaging
// campaign from the subscriber base and payment evidence, and splits it
// into contiguous batches for export.
package campaign

import (
	"fmt"

	"collections-reconciliation-service/internal/engine"
	"collections-reconciliation-service/internal/models"
	"collections-reconciliation-service/pkg/logger"
)

// FilterConfig selects which contacts enter the campaign.
//
// Selection semantics are explicit, never inferred from absence: an empty
// period selection matches NOTHING unless AllPeriods is set, and the same
// rule applies to categories. Callers that want "everything" say so.
type FilterConfig struct {
	Periods       []string
	AllPeriods    bool
	Categories    []string
	AllCategories bool

	// PurgePaid drops contacts whose code has any qualifying positive
	// payment within the selected period scope.
	PurgePaid bool
}

// DefaultFilterConfig mirrors the operator defaults: every category
// selected, purge enabled, periods chosen explicitly per run.
func DefaultFilterConfig() *FilterConfig {
	return &FilterConfig{
		AllCategories: true,
		PurgePaid:     true,
	}
}

// Validate validates the filter configuration
func (c *FilterConfig) Validate() error {
	if c.AllPeriods && len(c.Periods) > 0 {
		return fmt.Errorf("periods and all-periods are mutually exclusive")
	}
	if c.AllCategories && len(c.Categories) > 0 {
		return fmt.Errorf("categories and all-categories are mutually exclusive")
	}
	return nil
}

// Filter applies the campaign selection rules
type Filter struct {
	config *FilterConfig
	logger logger.Logger
}

// NewFilter creates a campaign filter
func NewFilter(config *FilterConfig) (*Filter, error) {
	if config == nil {
		config = DefaultFilterConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid filter configuration: %w", err)
	}

	return &Filter{
		config: config,
		logger: logger.GetGlobalLogger().WithComponent("campaign_filter"),
	}, nil
}

// Apply returns the contacts eligible for the campaign, preserving input
// order. Contacts whose date never parsed carry no period and are excluded
// from any period-scoped selection.
func (f *Filter) Apply(contacts []*models.ContactRecord, payments []*models.PaymentRecord) []*models.ContactRecord {
	periodSet := toSet(f.config.Periods)
	categorySet := toSet(f.config.Categories)

	var payers map[string]bool
	if f.config.PurgePaid {
		scope := periodSet
		if f.config.AllPeriods {
			scope = nil
		}
		payers = engine.PayerKeys(payments, scope)
	}

	var selected []*models.ContactRecord
	for _, c := range contacts {
		if !f.config.AllCategories && !categorySet[c.Category] {
			continue
		}
		if !f.config.AllPeriods {
			if !c.HasPeriod() || !periodSet[c.Period] {
				continue
			}
		}
		if f.config.PurgePaid && payers[c.Code] {
			continue
		}
		selected = append(selected, c)
	}

	f.logger.WithFields(logger.Fields{
		"contacts":   len(contacts),
		"selected":   len(selected),
		"purge_paid": f.config.PurgePaid,
		"periods":    f.config.Periods,
		"all":        f.config.AllPeriods,
	}).Info("Campaign filter applied")

	return selected
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
