// Package exporter serializes reconciliation results to operator-facing
// artifacts: a multi-sheet spreadsheet report and per-batch contact CSVs.
// Exports never mutate their inputs and preserve input row and column
// order.
package exporter

import (
	"fmt"

	"collections-reconciliation-service/internal/engine"
	"collections-reconciliation-service/internal/models"
	"collections-reconciliation-service/pkg/errors"
	"collections-reconciliation-service/pkg/logger"

	"github.com/xuri/excelize/v2"
)

// maxSheetName is the sheet name limit of the xlsx format
const maxSheetName = 31

// WorkbookConfig selects which sections the spreadsheet report carries
type WorkbookConfig struct {
	IncludePending    bool
	IncludeByCategory bool
	IncludeByPeriod   bool
	PerPeriodSheets   bool
	TopOutstanding    int
}

// DefaultWorkbookConfig returns the default report layout
func DefaultWorkbookConfig() *WorkbookConfig {
	return &WorkbookConfig{
		IncludePending:    true,
		IncludeByCategory: true,
		IncludeByPeriod:   true,
		PerPeriodSheets:   false,
		TopOutstanding:    10,
	}
}

// WorkbookExporter writes the reconciled result and its derived aggregates
// to an xlsx workbook, one sheet per section.
type WorkbookExporter struct {
	config *WorkbookConfig
	logger logger.Logger
}

// NewWorkbookExporter creates a workbook exporter
func NewWorkbookExporter(config *WorkbookConfig) *WorkbookExporter {
	if config == nil {
		config = DefaultWorkbookConfig()
	}
	return &WorkbookExporter{
		config: config,
		logger: logger.GetGlobalLogger().WithComponent("workbook_exporter"),
	}
}

// Export writes the workbook to path. An empty reconciled set yields an
// empty-result warning instead of a misleading empty artifact.
func (w *WorkbookExporter) Export(records []*models.ReconciledRecord, path string) error {
	if len(records) == 0 {
		return errors.EmptyResultWarning("report export")
	}

	f := excelize.NewFile()
	defer f.Close()

	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.ExportError(errors.CodeWriteFailed, path, err)
	}
	// Built-in format 2 renders "0.00"
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return errors.ExportError(errors.CodeWriteFailed, path, err)
	}

	styles := sheetStyles{header: boldStyle, money: moneyStyle}
	names := newSheetNamer()

	if err := w.writeReconciledSheet(f, names.name("RESULTADO"), records, styles, true); err != nil {
		return errors.ExportError(errors.CodeWriteFailed, path, err)
	}

	if err := w.writeSummarySheet(f, names.name("RESUMEN"), records, styles); err != nil {
		return errors.ExportError(errors.CodeWriteFailed, path, err)
	}

	if w.config.IncludePending {
		pending := engine.PendingOnly(records)
		if len(pending) > 0 {
			if err := w.writeReconciledSheet(f, names.name("PENDIENTES"), pending, styles, false); err != nil {
				return errors.ExportError(errors.CodeWriteFailed, path, err)
			}
		}
	}

	if w.config.IncludeByCategory {
		if err := w.writeAggregateSheet(f, names.name("RESUMEN_TIPO"), "TIPO",
			engine.AggregateByCategory(records), styles); err != nil {
			return errors.ExportError(errors.CodeWriteFailed, path, err)
		}
	}

	if w.config.IncludeByPeriod {
		if err := w.writeAggregateSheet(f, names.name("RESUMEN_PERIODO"), "PERIODO",
			engine.AggregateByPeriod(records), styles); err != nil {
			return errors.ExportError(errors.CodeWriteFailed, path, err)
		}
	}

	if w.config.TopOutstanding > 0 {
		top := engine.TopOutstanding(records, w.config.TopOutstanding)
		if err := w.writeReconciledSheet(f, names.name("TOP_PENDIENTES"), top, styles, false); err != nil {
			return errors.ExportError(errors.CodeWriteFailed, path, err)
		}
	}

	if w.config.PerPeriodSheets {
		for _, period := range engine.Periods(records) {
			pending := engine.PendingOnly(engine.ForPeriod(records, period))
			if len(pending) == 0 {
				continue
			}
			if err := w.writeReconciledSheet(f, names.name("PEND_"+period), pending, styles, false); err != nil {
				return errors.ExportError(errors.CodeWriteFailed, path, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.ExportError(errors.CodeWriteFailed, path, err)
	}

	w.logger.WithFields(logger.Fields{
		"path":    path,
		"records": len(records),
		"sheets":  len(names.used),
	}).Info("Workbook report written")

	return nil
}

type sheetStyles struct {
	header int
	money  int
}

// ensureSheet creates a sheet, reusing the workbook's default first sheet
// for the first section.
func ensureSheet(f *excelize.File, name string, first bool) error {
	if first {
		return f.SetSheetName(f.GetSheetName(0), name)
	}
	_, err := f.NewSheet(name)
	return err
}

func (w *WorkbookExporter) writeReconciledSheet(f *excelize.File, name string, records []*models.ReconciledRecord, styles sheetStyles, first bool) error {
	if err := ensureSheet(f, name, first); err != nil {
		return err
	}

	headers := []string{"ID_COBRANZA", "PERIODO", "TIPO", "DEUDA", "IMPORTE", "PENDIENTE", "ESTADO"}
	if err := writeHeaderRow(f, name, headers, styles.header); err != nil {
		return err
	}

	for i, r := range records {
		row := i + 2
		values := []interface{}{
			r.CollectionID,
			r.Period,
			r.DebtType,
			r.DebtAmount.InexactFloat64(),
			r.TotalPaid.InexactFloat64(),
			r.PendingBalance.InexactFloat64(),
			r.State.String(),
		}
		if err := writeRow(f, name, row, values); err != nil {
			return err
		}
	}

	return styleMoneyColumns(f, name, []int{4, 5, 6}, len(records), styles.money)
}

func (w *WorkbookExporter) writeSummarySheet(f *excelize.File, name string, records []*models.ReconciledRecord, styles sheetStyles) error {
	if err := ensureSheet(f, name, false); err != nil {
		return err
	}

	summary := engine.Summarize(records)

	if err := writeHeaderRow(f, name, []string{"CONCEPTO", "VALOR"}, styles.header); err != nil {
		return err
	}

	rows := []struct {
		label string
		value interface{}
		money bool
	}{
		{"REGISTROS", summary.RecordCount, false},
		{"PAGADOS", summary.PaidCount, false},
		{"PENDIENTES", summary.PendingCount, false},
		{"DEUDA_TOTAL", summary.TotalDebt.InexactFloat64(), true},
		{"PAGADO_TOTAL", summary.TotalPaid.InexactFloat64(), true},
		{"PENDIENTE_TOTAL", summary.TotalPending.InexactFloat64(), true},
	}

	for i, r := range rows {
		if err := writeRow(f, name, i+2, []interface{}{r.label, r.value}); err != nil {
			return err
		}
		if r.money {
			cell, err := excelize.CoordinatesToCellName(2, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellStyle(name, cell, cell, styles.money); err != nil {
				return err
			}
		}
	}

	return nil
}

func (w *WorkbookExporter) writeAggregateSheet(f *excelize.File, name, groupHeader string, aggregates []*engine.GroupAggregate, styles sheetStyles) error {
	if err := ensureSheet(f, name, false); err != nil {
		return err
	}

	headers := []string{groupHeader, "REGISTROS", "DEUDA", "IMPORTE", "PENDIENTE"}
	if err := writeHeaderRow(f, name, headers, styles.header); err != nil {
		return err
	}

	for i, a := range aggregates {
		row := i + 2
		values := []interface{}{
			a.Group,
			a.Count,
			a.Debt.InexactFloat64(),
			a.Paid.InexactFloat64(),
			a.Pending.InexactFloat64(),
		}
		if err := writeRow(f, name, row, values); err != nil {
			return err
		}
	}

	return styleMoneyColumns(f, name, []int{3, 4, 5}, len(aggregates), styles.money)
}

func writeHeaderRow(f *excelize.File, sheet string, headers []string, style int) error {
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

func styleMoneyColumns(f *excelize.File, sheet string, cols []int, rows int, style int) error {
	if rows == 0 {
		return nil
	}
	for _, col := range cols {
		start, err := excelize.CoordinatesToCellName(col, 2)
		if err != nil {
			return err
		}
		end, err := excelize.CoordinatesToCellName(col, rows+1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, start, end, style); err != nil {
			return err
		}
	}
	return nil
}

// sheetNamer truncates section names to the 31-character sheet limit and
// disambiguates truncation collisions deterministically, so two distinct
// periods can never claim the same sheet.
type sheetNamer struct {
	used map[string]bool
}

func newSheetNamer() *sheetNamer {
	return &sheetNamer{used: make(map[string]bool)}
}

func (sn *sheetNamer) name(s string) string {
	name := TruncateSheetName(s)
	if !sn.used[name] {
		sn.used[name] = true
		return name
	}

	for i := 2; ; i++ {
		suffix := fmt.Sprintf("_%d", i)
		base := name
		if runes := []rune(base); len(runes)+len(suffix) > maxSheetName {
			base = string(runes[:maxSheetName-len(suffix)])
		}
		candidate := base + suffix
		if !sn.used[candidate] {
			sn.used[candidate] = true
			return candidate
		}
	}
}

// TruncateSheetName prefix-truncates a sheet name to the format limit.
// The limit counts characters, so truncation never splits a multi-byte
// rune.
func TruncateSheetName(s string) string {
	runes := []rune(s)
	if len(runes) <= maxSheetName {
		return s
	}
	return string(runes[:maxSheetName])
}
