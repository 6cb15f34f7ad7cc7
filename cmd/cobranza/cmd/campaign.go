package cmd

import (
	"fmt"
	"os"
	"strings"

	"collections-reconciliation-service/cmd/cobranza/config"
	"collections-reconciliation-service/internal/campaign"
	"collections-reconciliation-service/internal/exporter"
	"collections-reconciliation-service/internal/models"
	"collections-reconciliation-service/internal/parsers"
	"collections-reconciliation-service/internal/tabular"
	"collections-reconciliation-service/pkg/errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the campaign command
var (
	contactsFile    string
	campaignPayFile string
	periodFilter    []string
	allPeriods      bool
	categoryFilter  []string
	purgePaid       bool
	batchCount      int
	batchDelimiter  string
	outputDir       string
	filePrefix      string
	includeCategory bool
	listPeriods     bool
)

// campaignCmd represents the campaign command
var campaignCmd = &cobra.Command{
	Use:   "campaign",
	Short: "Filter the contact base and export batched messaging lists",
	Long: `Campaign filters the contact base by billing period and debt type,
optionally purges contacts who already paid in the selected periods, and
partitions the survivors into numbered CSV batches for the messaging
provider.

This command requires:
- A contact base file, CSV or XLSX
- A payments file when --purge-paid is active

Examples:
  # One period, ten batches, paid contacts removed
  cobranza campaign --contacts-file base.xlsx --payments-file pagos.xlsx \
    --periods 2024-01 --batches 10

  # Every period, only two debt types
  cobranza campaign --contacts-file base.xlsx --payments-file pagos.xlsx \
    --all-periods --types CREDITO,MORA

  # Semicolon-delimited batches with comma decimals
  cobranza campaign --contacts-file base.xlsx --payments-file pagos.xlsx \
    --periods 2024-02 --delimiter semicolon --output-dir lotes --prefix SMS_FEB

  # Inspect the periods and types present in the contact base
  cobranza campaign --contacts-file base.xlsx --list`,

	PreRunE: validateCampaignFlags,
	RunE:    runCampaign,
}

func init() {
	rootCmd.AddCommand(campaignCmd)

	// Required flags
	campaignCmd.Flags().StringVarP(&contactsFile, "contacts-file", "c", "", "path to the contact base file, CSV or XLSX (required)")
	campaignCmd.Flags().StringVarP(&campaignPayFile, "payments-file", "p", "", "path to the payments file (required with --purge-paid)")

	// Selection flags
	campaignCmd.Flags().StringSliceVar(&periodFilter, "periods", []string{}, "comma-separated billing periods to include (YYYY-MM)")
	campaignCmd.Flags().BoolVar(&allPeriods, "all-periods", false, "include every period in the contact base")
	campaignCmd.Flags().StringSliceVar(&categoryFilter, "types", []string{}, "comma-separated debt types to include (default: all)")
	campaignCmd.Flags().BoolVar(&purgePaid, "purge-paid", true, "drop contacts with a positive payment in the selected periods")
	campaignCmd.Flags().BoolVar(&listPeriods, "list", false, "list the periods and types in the contact base and exit")

	// Output flags
	campaignCmd.Flags().IntVarP(&batchCount, "batches", "n", 10, "number of CSV batches to split the campaign into (1-50)")
	campaignCmd.Flags().StringVar(&batchDelimiter, "delimiter", "comma", "batch file delimiter: comma, semicolon")
	campaignCmd.Flags().StringVar(&outputDir, "output-dir", ".", "directory for the batch files")
	campaignCmd.Flags().StringVar(&filePrefix, "prefix", "SMS", "batch file name prefix")
	campaignCmd.Flags().BoolVar(&includeCategory, "include-type", true, "append the TIPO column to batch rows")

	campaignCmd.MarkFlagRequired("contacts-file")

	// Bind flags to viper
	viper.BindPFlag("contacts-file", campaignCmd.Flags().Lookup("contacts-file"))
	viper.BindPFlag("campaign-payments-file", campaignCmd.Flags().Lookup("payments-file"))
	viper.BindPFlag("periods", campaignCmd.Flags().Lookup("periods"))
	viper.BindPFlag("all-periods", campaignCmd.Flags().Lookup("all-periods"))
	viper.BindPFlag("types", campaignCmd.Flags().Lookup("types"))
	viper.BindPFlag("purge-paid", campaignCmd.Flags().Lookup("purge-paid"))
	viper.BindPFlag("batches", campaignCmd.Flags().Lookup("batches"))
	viper.BindPFlag("delimiter", campaignCmd.Flags().Lookup("delimiter"))
	viper.BindPFlag("output-dir", campaignCmd.Flags().Lookup("output-dir"))
	viper.BindPFlag("prefix", campaignCmd.Flags().Lookup("prefix"))
	viper.BindPFlag("include-type", campaignCmd.Flags().Lookup("include-type"))
}

func validateCampaignFlags(cmd *cobra.Command, args []string) error {
	contactsFile = viper.GetString("contacts-file")
	campaignPayFile = viper.GetString("campaign-payments-file")
	periodFilter = viper.GetStringSlice("periods")
	allPeriods = viper.GetBool("all-periods")
	categoryFilter = viper.GetStringSlice("types")
	purgePaid = viper.GetBool("purge-paid")
	batchCount = viper.GetInt("batches")
	batchDelimiter = viper.GetString("delimiter")
	outputDir = viper.GetString("output-dir")
	filePrefix = viper.GetString("prefix")
	includeCategory = viper.GetBool("include-type")

	if contactsFile == "" {
		return fmt.Errorf("contacts-file is required")
	}
	if err := validateFileExists(contactsFile, "contact base file"); err != nil {
		return err
	}

	if listPeriods {
		return nil
	}

	if len(periodFilter) > 0 && allPeriods {
		return fmt.Errorf("periods and all-periods are mutually exclusive")
	}
	if len(periodFilter) == 0 && !allPeriods {
		return fmt.Errorf("select periods with --periods or pass --all-periods")
	}

	if purgePaid {
		if campaignPayFile == "" {
			return fmt.Errorf("payments-file is required when purge-paid is active")
		}
		if err := validateFileExists(campaignPayFile, "payments file"); err != nil {
			return err
		}
	}

	if batchCount < 1 || batchCount > campaign.MaxBatches {
		return fmt.Errorf("batches must be between 1 and %d", campaign.MaxBatches)
	}

	if _, err := parseDelimiterFlag(batchDelimiter); err != nil {
		return fmt.Errorf("invalid delimiter '%s'. Valid values: comma, semicolon", batchDelimiter)
	}

	return nil
}

func runCampaign(cmd *cobra.Command, args []string) error {
	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Starting campaign export...\n")
		fmt.Fprintf(os.Stderr, "Contact base: %s\n", contactsFile)
		if campaignPayFile != "" {
			fmt.Fprintf(os.Stderr, "Payments file: %s\n", campaignPayFile)
		}
	}

	// Load and parse the contact base
	contactTable, err := tabular.LoadFile(contactsFile, ',')
	if err != nil {
		return err
	}
	contacts, contactStats, err := parsers.NewContactParser(nil).Parse(contactTable)
	if err != nil {
		return err
	}
	reportCoercions(contactTable.Source, contactStats)

	if listPeriods {
		printContactBase(contacts)
		return nil
	}

	// Load payments only when the purge needs them
	paymentRecords, err := loadCampaignPayments()
	if err != nil {
		return err
	}

	// Filter
	filterConfig := config.CreateFilterConfig(periodFilter, categoryFilter, allPeriods, purgePaid)
	filter, err := campaign.NewFilter(filterConfig)
	if err != nil {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "campaign filter",
			strings.Join(periodFilter, ","), err)
	}

	selected := filter.Apply(contacts, paymentRecords)
	if len(selected) == 0 {
		fmt.Println("No contacts match the selected periods and types; nothing exported.")
		return nil
	}

	// Partition and export
	batches, err := campaign.Partition(selected, batchCount)
	if err != nil {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "batches", batchCount, err)
	}

	batchConfig, err := config.CreateBatchConfig(batchDelimiter, outputDir, filePrefix, includeCategory)
	if err != nil {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "delimiter", batchDelimiter, err)
	}
	batchExporter, err := exporter.NewBatchExporter(batchConfig)
	if err != nil {
		return err
	}

	written, err := batchExporter.Export(batches)
	if err != nil {
		return err
	}

	fmt.Printf("Selected %d of %d contacts into %d batches:\n",
		len(selected), len(contacts), len(written))
	for _, path := range written {
		fmt.Printf("  %s\n", path)
	}

	return nil
}

func loadCampaignPayments() ([]*models.PaymentRecord, error) {
	if !purgePaid {
		return nil, nil
	}

	table, err := tabular.LoadFile(campaignPayFile, ',')
	if err != nil {
		return nil, err
	}
	payments, stats, err := parsers.NewPaymentParser(nil).Parse(table)
	if err != nil {
		return nil, err
	}
	reportCoercions(table.Source, stats)
	return payments, nil
}

func printContactBase(contacts []*models.ContactRecord) {
	fmt.Printf("Contacts: %d\n", len(contacts))

	periods := parsers.Periods(contacts)
	fmt.Printf("Periods (%d): %s\n", len(periods), strings.Join(periods, ", "))

	types := parsers.Categories(contacts)
	fmt.Printf("Types (%d): %s\n", len(types), strings.Join(types, ", "))
}
