// Package config assembles component configurations from CLI flag values.
package config

import (
	"fmt"

	"collections-reconciliation-service/internal/campaign"
	"collections-reconciliation-service/internal/engine"
	"collections-reconciliation-service/internal/exporter"
)

// CreateEngineOptions builds engine options from flag values
func CreateEngineOptions(granularity string, clampOverpayment bool) (*engine.Options, error) {
	opts := engine.DefaultOptions()

	if granularity != "" {
		g, err := engine.ParseGranularity(granularity)
		if err != nil {
			return nil, err
		}
		opts.Granularity = g
	}
	opts.ClampOverpayment = clampOverpayment

	return opts, nil
}

// CreateFilterConfig builds the campaign filter configuration from flag
// values. An empty --types selection means every category (the operator
// default); an empty --periods selection selects nothing unless
// --all-periods is passed.
func CreateFilterConfig(periods, categories []string, allPeriods, purgePaid bool) *campaign.FilterConfig {
	cfg := campaign.DefaultFilterConfig()
	cfg.Periods = periods
	cfg.AllPeriods = allPeriods
	cfg.PurgePaid = purgePaid

	if len(categories) > 0 {
		cfg.Categories = categories
		cfg.AllCategories = false
	}

	return cfg
}

// CreateWorkbookConfig builds the report layout from flag values
func CreateWorkbookConfig(perPeriodSheets bool, topOutstanding int) *exporter.WorkbookConfig {
	cfg := exporter.DefaultWorkbookConfig()
	cfg.PerPeriodSheets = perPeriodSheets
	cfg.TopOutstanding = topOutstanding
	return cfg
}

// CreateBatchConfig builds the campaign CSV export configuration from flag
// values. Delimiter is "comma" or "semicolon"; the semicolon variant
// renders amounts with the comma decimal separator.
func CreateBatchConfig(delimiter, outputDir, prefix string, includeCategory bool) (*exporter.BatchConfig, error) {
	cfg := exporter.DefaultBatchConfig()

	switch delimiter {
	case "", "comma":
		cfg.Delimiter = ','
	case "semicolon":
		cfg.Delimiter = ';'
	default:
		return nil, fmt.Errorf("invalid delimiter '%s': must be comma or semicolon", delimiter)
	}

	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	if prefix != "" {
		cfg.FilePrefix = prefix
	}
	cfg.IncludeCategory = includeCategory

	return cfg, nil
}
