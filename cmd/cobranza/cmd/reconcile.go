package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"collections-reconciliation-service/cmd/cobranza/config"
	"collections-reconciliation-service/internal/engine"
	"collections-reconciliation-service/internal/exporter"
	"collections-reconciliation-service/internal/models"
	"collections-reconciliation-service/internal/parsers"
	"collections-reconciliation-service/internal/tabular"
	"collections-reconciliation-service/pkg/errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the reconcile command
var (
	debtFile         string
	paymentsFile     string
	reportFile       string
	granularity      string
	clampOverpayment bool
	perPeriodSheets  bool
	topOutstanding   int
	csvDelimiter     string
)

// reconcileCmd represents the reconcile command
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile the debt ledger against a payments file",
	Long: `Reconcile joins every debt record against the payments file, sums the
payments per collection key, and computes each record's pending balance
and settlement state (PAID/PENDING).

This command requires:
- A debt ledger file (cartera), CSV or XLSX
- A payments file (pagos), CSV or XLSX

Examples:
  # Basic reconciliation with console summary
  cobranza reconcile --debt-file cartera.xlsx --payments-file pagos.xlsx

  # Write the spreadsheet report
  cobranza reconcile --debt-file cartera.csv --payments-file pagos.csv -o reporte.xlsx

  # Match payments per collection key AND period
  cobranza reconcile --debt-file cartera.xlsx --payments-file pagos.xlsx \
    --granularity key_period -o reporte.xlsx

  # One pending sheet per period, overpayments clamped to zero
  cobranza reconcile --debt-file cartera.xlsx --payments-file pagos.xlsx \
    -o reporte.xlsx --per-period-sheets --clamp-overpayment`,

	PreRunE: validateReconcileFlags,
	RunE:    runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)

	// Required flags
	reconcileCmd.Flags().StringVarP(&debtFile, "debt-file", "d", "", "path to the debt ledger file, CSV or XLSX (required)")
	reconcileCmd.Flags().StringVarP(&paymentsFile, "payments-file", "p", "", "path to the payments file, CSV or XLSX (required)")

	// Output flags
	reconcileCmd.Flags().StringVarP(&reportFile, "output", "o", "", "spreadsheet report path (default: console summary only)")
	reconcileCmd.Flags().BoolVar(&perPeriodSheets, "per-period-sheets", false, "add one pending sheet per period to the report")
	reconcileCmd.Flags().IntVar(&topOutstanding, "top", 10, "rows in the top outstanding balances sheet (0 disables)")

	// Matching configuration flags
	reconcileCmd.Flags().StringVarP(&granularity, "granularity", "g", "key", "payment matching granularity: key, key_period")
	reconcileCmd.Flags().BoolVar(&clampOverpayment, "clamp-overpayment", false, "report overpaid balances as zero instead of negative")

	// Input format flags
	reconcileCmd.Flags().StringVar(&csvDelimiter, "csv-delimiter", "comma", "delimiter of CSV inputs: comma, semicolon")

	// Mark required flags
	reconcileCmd.MarkFlagRequired("debt-file")
	reconcileCmd.MarkFlagRequired("payments-file")

	// Bind flags to viper
	viper.BindPFlag("debt-file", reconcileCmd.Flags().Lookup("debt-file"))
	viper.BindPFlag("payments-file", reconcileCmd.Flags().Lookup("payments-file"))
	viper.BindPFlag("output", reconcileCmd.Flags().Lookup("output"))
	viper.BindPFlag("granularity", reconcileCmd.Flags().Lookup("granularity"))
	viper.BindPFlag("clamp-overpayment", reconcileCmd.Flags().Lookup("clamp-overpayment"))
	viper.BindPFlag("per-period-sheets", reconcileCmd.Flags().Lookup("per-period-sheets"))
	viper.BindPFlag("top", reconcileCmd.Flags().Lookup("top"))
	viper.BindPFlag("csv-delimiter", reconcileCmd.Flags().Lookup("csv-delimiter"))
}

func validateReconcileFlags(cmd *cobra.Command, args []string) error {
	// Get values from viper (allows override from config file)
	debtFile = viper.GetString("debt-file")
	paymentsFile = viper.GetString("payments-file")
	reportFile = viper.GetString("output")
	granularity = viper.GetString("granularity")
	clampOverpayment = viper.GetBool("clamp-overpayment")
	perPeriodSheets = viper.GetBool("per-period-sheets")
	topOutstanding = viper.GetInt("top")
	csvDelimiter = viper.GetString("csv-delimiter")

	// Validate required flags
	if debtFile == "" {
		return fmt.Errorf("debt-file is required")
	}
	if paymentsFile == "" {
		return fmt.Errorf("payments-file is required")
	}

	// Validate file existence
	if err := validateFileExists(debtFile, "debt ledger file"); err != nil {
		return err
	}
	if err := validateFileExists(paymentsFile, "payments file"); err != nil {
		return err
	}

	if _, err := engine.ParseGranularity(granularity); err != nil {
		return err
	}

	if topOutstanding < 0 {
		return fmt.Errorf("top cannot be negative")
	}

	if _, err := parseDelimiterFlag(csvDelimiter); err != nil {
		return err
	}

	// Validate output file directory exists if specified
	if reportFile != "" {
		dir := filepath.Dir(reportFile)
		if dir != "." {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				return fmt.Errorf("output directory does not exist: %s", dir)
			}
		}
	}

	return nil
}

func validateFileExists(filePath, description string) error {
	if filePath == "" {
		return fmt.Errorf("%s path cannot be empty", description)
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist: %s", description, filePath)
	}
	if err != nil {
		return fmt.Errorf("error accessing %s: %w", description, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%s is a directory, expected a file: %s", description, filePath)
	}

	// Check if file is readable
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("%s is not readable: %w", description, err)
	}
	file.Close()

	return nil
}

func parseDelimiterFlag(s string) (rune, error) {
	switch s {
	case "", "comma":
		return ',', nil
	case "semicolon":
		return ';', nil
	default:
		return 0, fmt.Errorf("invalid csv-delimiter '%s'. Valid values: comma, semicolon", s)
	}
}

func runReconcile(cmd *cobra.Command, args []string) error {
	delim, _ := parseDelimiterFlag(csvDelimiter)

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Starting reconciliation...\n")
		fmt.Fprintf(os.Stderr, "Debt ledger: %s\n", debtFile)
		fmt.Fprintf(os.Stderr, "Payments file: %s\n", paymentsFile)
		if reportFile != "" {
			fmt.Fprintf(os.Stderr, "Report file: %s\n", reportFile)
		}
	}

	// Load and parse the debt ledger
	debtTable, err := tabular.LoadFile(debtFile, delim)
	if err != nil {
		return err
	}
	debts, debtStats, err := parsers.NewDebtParser(nil).Parse(debtTable)
	if err != nil {
		return err
	}
	reportCoercions(debtTable.Source, debtStats)

	// Load and parse the payments file
	paymentTable, err := tabular.LoadFile(paymentsFile, delim)
	if err != nil {
		return err
	}
	payments, paymentStats, err := parsers.NewPaymentParser(nil).Parse(paymentTable)
	if err != nil {
		return err
	}
	reportCoercions(paymentTable.Source, paymentStats)

	// Reconcile
	engineOpts, err := config.CreateEngineOptions(granularity, clampOverpayment)
	if err != nil {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "granularity", granularity, err)
	}
	eng, err := engine.NewEngine(engineOpts)
	if err != nil {
		return err
	}

	session := engine.NewSession()
	session.Load(debtFile, debts)

	records, err := eng.ReconcileSession(session, payments)
	if err != nil {
		return err
	}

	printSummary(records)

	// Export the spreadsheet report if requested
	if reportFile != "" {
		workbookConfig := config.CreateWorkbookConfig(perPeriodSheets, topOutstanding)
		if err := exporter.NewWorkbookExporter(workbookConfig).Export(records, reportFile); err != nil {
			return err
		}
		fmt.Printf("\nReport written to %s\n", reportFile)
	}

	return nil
}

// reportCoercions surfaces non-fatal parse fallbacks on stderr so silent
// data quality problems stay visible.
func reportCoercions(source string, stats *parsers.CoercionStats) {
	if stats == nil || !stats.HasFallbacks() {
		return
	}
	fmt.Fprintf(os.Stderr, "Warning: %s: %s\n", source, stats.String())
}

func printSummary(records []*models.ReconciledRecord) {
	summary := engine.Summarize(records)

	fmt.Println("Reconciliation Summary")
	fmt.Println("======================")
	fmt.Printf("Records:         %d\n", summary.RecordCount)
	fmt.Printf("Paid:            %d\n", summary.PaidCount)
	fmt.Printf("Pending:         %d\n", summary.PendingCount)
	fmt.Printf("Total debt:      %s\n", summary.TotalDebt.StringFixed(2))
	fmt.Printf("Total paid:      %s\n", summary.TotalPaid.StringFixed(2))
	fmt.Printf("Total pending:   %s\n", summary.TotalPending.StringFixed(2))

	byCategory := engine.AggregateByCategory(records)
	if len(byCategory) > 1 {
		fmt.Println("\nBy type:")
		for _, agg := range byCategory {
			fmt.Printf("  %-20s %6d records, pending %s\n",
				agg.Group, agg.Count, agg.Pending.StringFixed(2))
		}
	}
}
