package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"collections-reconciliation-service/internal/models"
	"collections-reconciliation-service/pkg/errors"
	"collections-reconciliation-service/pkg/logger"
)

// BatchConfig controls the per-batch contact CSV export
type BatchConfig struct {
	// Delimiter is ',' or ';'. The semicolon variant targets
	// default-locale spreadsheet imports and switches amounts to the
	// comma decimal separator.
	Delimiter rune

	// IncludeCategory appends the TIPO column to each row
	IncludeCategory bool

	OutputDir  string
	FilePrefix string
}

// DefaultBatchConfig returns the default batch export configuration
func DefaultBatchConfig() *BatchConfig {
	return &BatchConfig{
		Delimiter:       ',',
		IncludeCategory: true,
		OutputDir:       ".",
		FilePrefix:      "SMS",
	}
}

// Validate validates the batch export configuration
func (c *BatchConfig) Validate() error {
	if c.Delimiter != ',' && c.Delimiter != ';' {
		return fmt.Errorf("delimiter must be ',' or ';', got %q", c.Delimiter)
	}
	if c.FilePrefix == "" {
		return fmt.Errorf("file prefix cannot be empty")
	}
	return nil
}

// commaDecimal reports whether amounts render with a comma decimal mark
func (c *BatchConfig) commaDecimal() bool {
	return c.Delimiter == ';'
}

// BatchExporter writes one delimited file per non-empty campaign batch
type BatchExporter struct {
	config *BatchConfig
	logger logger.Logger
}

// NewBatchExporter creates a batch exporter
func NewBatchExporter(config *BatchConfig) (*BatchExporter, error) {
	if config == nil {
		config = DefaultBatchConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid batch export configuration: %w", err)
	}

	return &BatchExporter{
		config: config,
		logger: logger.GetGlobalLogger().WithComponent("batch_exporter"),
	}, nil
}

// Export writes every batch to <prefix>_<n>.csv under the output
// directory and returns the written paths. An empty batch set yields an
// empty-result warning and no files.
func (b *BatchExporter) Export(batches [][]*models.ContactRecord) ([]string, error) {
	if len(batches) == 0 {
		return nil, errors.EmptyResultWarning("campaign batch export")
	}

	if err := os.MkdirAll(b.config.OutputDir, 0o755); err != nil {
		return nil, errors.ExportError(errors.CodeWriteFailed, b.config.OutputDir, err)
	}

	var written []string
	for i, batch := range batches {
		if len(batch) == 0 {
			continue
		}

		path := filepath.Join(b.config.OutputDir,
			fmt.Sprintf("%s_%d.csv", b.config.FilePrefix, i+1))

		file, err := os.Create(path)
		if err != nil {
			return written, errors.ExportError(errors.CodeWriteFailed, path, err)
		}

		if err := b.WriteBatch(file, batch); err != nil {
			file.Close()
			return written, errors.ExportError(errors.CodeWriteFailed, path, err)
		}

		if err := file.Close(); err != nil {
			return written, errors.ExportError(errors.CodeWriteFailed, path, err)
		}

		written = append(written, path)
	}

	if len(written) == 0 {
		return nil, errors.EmptyResultWarning("campaign batch export")
	}

	b.logger.WithFields(logger.Fields{
		"files":     len(written),
		"delimiter": string(b.config.Delimiter),
		"directory": b.config.OutputDir,
	}).Info("Campaign batches written")

	return written, nil
}

// WriteBatch serializes one batch to a writer. Column order is
// NUMERO, NOMBRE, FECHA, CODIGO, MONTO and optionally TIPO; the date cell
// carries the original upload value verbatim.
func (b *BatchExporter) WriteBatch(w io.Writer, batch []*models.ContactRecord) error {
	writer := csv.NewWriter(w)
	writer.Comma = b.config.Delimiter

	headers := []string{"NUMERO", "NOMBRE", "FECHA", "CODIGO", "MONTO"}
	if b.config.IncludeCategory {
		headers = append(headers, "TIPO")
	}
	if err := writer.Write(headers); err != nil {
		return err
	}

	for _, c := range batch {
		row := []string{
			c.PhoneNumber,
			c.Name,
			c.RawDate,
			c.Code,
			models.FormatMoney(c.Amount, b.config.commaDecimal()),
		}
		if b.config.IncludeCategory {
			row = append(row, c.Category)
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
