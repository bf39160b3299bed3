package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/vietlabs/cryptotax/config"
	"github.com/vietlabs/cryptotax/csv"
	csvParsers "github.com/vietlabs/cryptotax/csv/parsers"
	dbTypes "github.com/vietlabs/cryptotax/db"
	"github.com/vietlabs/cryptotax/price"
	"github.com/vietlabs/cryptotax/tax"
	"github.com/vietlabs/cryptotax/util"
	"gorm.io/gorm"
)

var (
	calculateConfig       config.CalculateConfig
	calculateDbConnection *gorm.DB
)

func init() {
	config.SetupLogFlags(&calculateConfig.Log, calculateCmd)
	config.SetupDatabaseFlags(&calculateConfig.Database, calculateCmd)
	config.SetupTaxFlags(&calculateConfig.Tax, calculateCmd)
	config.SetupPricesFlags(&calculateConfig.Prices, calculateCmd)
	config.SetupCalculateSpecificFlags(validParserKeys, &calculateConfig, calculateCmd)
	rootCmd.AddCommand(calculateCmd)
}

var calculateCmd = &cobra.Command{
	Use:   "calculate",
	Short: "Calculates the tax owed on the imported transactions.",
	Long: `Runs the tax engine over the stored transaction history (or directly over a
	transaction CSV file) and prints a summary of the tax owed per regime, per
	token and per filing period. With --output set, the full per-transaction,
	per-period and per-token reports are written as CSV files.`,
	PreRunE: setupCalculate,
	Run: func(cmd *cobra.Command, args []string) {
		transactions, err := loadTransactions(cmd.Context())
		if err != nil {
			config.Log.Fatal("Error loading transactions", err)
		}
		if len(transactions) == 0 {
			config.Log.Info("No transactions in the selected window, nothing to calculate")
			return
		}

		engine := tax.NewEngine(tax.Rates{
			Transfer:    decimal.NewFromFloat(calculateConfig.Tax.TransferRate),
			OtherIncome: decimal.NewFromFloat(calculateConfig.Tax.OtherIncomeRate),
		})

		results := engine.Calculate(transactions)
		summary := tax.Summarize(results)

		periods, err := tax.ByPeriod(results, tax.Granularity(calculateConfig.Base.Granularity))
		if err != nil {
			config.Log.Fatal("Error building the period breakdown", err)
		}

		printSummary(summary, periods)

		if calculateConfig.Base.Output != "" {
			writeReports(results, summary, periods)
		}
	},
}

func setupCalculate(cmd *cobra.Command, args []string) error {
	if len(validParserKeys) == 0 {
		return errors.New("error during setup, no CSV parsers found")
	}

	bindFlags(cmd, viperConf)
	err := calculateConfig.Validate(validParserKeys)
	if err != nil {
		return err
	}

	ignoredKeys := config.CheckSuperfluousCalculateKeys(viperConf.AllKeys())

	if len(ignoredKeys) > 0 {
		config.Log.Warnf("Warning, the following invalid keys will be ignored: %v", ignoredKeys)
	}

	setupLogger(calculateConfig.Log.Level, calculateConfig.Log.Path, calculateConfig.Log.Pretty)

	// calculating straight from a file needs no database at all
	if util.StrNotSet(calculateConfig.Base.File) {
		db, err := connectToDBAndMigrate(calculateConfig.Database)
		if err != nil {
			config.Log.Fatal("Could not establish connection to the database", err)
		}
		calculateDbConnection = db
	}

	return nil
}

func loadTransactions(ctx context.Context) ([]tax.Transaction, error) {
	if !util.StrNotSet(calculateConfig.Base.File) {
		opts := csvParsers.Options{}

		// USD-quoted formats need the conversion rate to produce VND values
		rateSource := price.NewExchangeRateClient(
			calculateConfig.Prices.ExchangeRateURL,
			decimal.NewFromFloat(calculateConfig.Prices.FallbackUsdVnd),
		)
		rate, err := rateSource.UsdVndRate(ctx)
		if err != nil {
			config.Log.Warn("Could not resolve the USD/VND rate, USD-quoted files will fail to parse", err)
		} else {
			opts.UsdVndRate = rate
		}

		return csv.ParseFile(calculateConfig.Base.File, calculateConfig.Base.Format, opts)
	}

	var startDate *time.Time
	var endDate *time.Time
	if calculateConfig.Base.StartDate != "" {
		parsedDate, _ := time.Parse(config.TimeLayout, calculateConfig.Base.StartDate)
		startDate = &parsedDate
	}
	if calculateConfig.Base.EndDate != "" {
		parsedDate, _ := time.Parse(config.TimeLayout, calculateConfig.Base.EndDate)
		endDate = &parsedDate
	}

	return dbTypes.GetTransactions(calculateDbConnection, startDate, endDate)
}

func printSummary(summary tax.Summary, periods []tax.PeriodSummary) {
	currency := calculateConfig.Tax.Currency

	fmt.Printf("Transactions processed: %d\n", summary.TransactionCount)
	fmt.Printf("Transfer tax:           %s %s\n", summary.TransferTaxFiat.String(), currency)
	fmt.Printf("Other income tax:       %s %s\n", summary.OtherIncomeTaxFiat.String(), currency)
	fmt.Printf("Total tax owed:         %s %s\n", summary.TotalTaxFiat.String(), currency)
	fmt.Printf("Total profit/loss:      %s %s\n", summary.TotalProfitLossFiat.String(), currency)

	fmt.Printf("\nPer %s:\n", calculateConfig.Base.Granularity)
	for _, period := range periods {
		fmt.Printf("  %-8s tax %s, profit/loss %s\n", period.PeriodKey, period.TaxAmountFiat.String(), period.ProfitLossFiat.String())
	}
}

func writeReports(results []tax.ResultRow, summary tax.Summary, periods []tax.PeriodSummary) {
	dir := calculateConfig.Base.Output

	if err := csv.WriteFile(dir, "transactions.csv", csv.TaxReportRows(results), csv.TaxReportHeaders); err != nil {
		config.Log.Fatal("Error writing the transaction report", err)
	}
	if err := csv.WriteFile(dir, "periods.csv", csv.PeriodReportRows(periods), csv.PeriodReportHeaders); err != nil {
		config.Log.Fatal("Error writing the period report", err)
	}
	if err := csv.WriteFile(dir, "tokens.csv", csv.TokenReportRows(summary), csv.TokenReportHeaders); err != nil {
		config.Log.Fatal("Error writing the token report", err)
	}
}
