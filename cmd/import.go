package cmd

import (
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/vietlabs/cryptotax/config"
	"github.com/vietlabs/cryptotax/csv"
	csvParsers "github.com/vietlabs/cryptotax/csv/parsers"
	dbTypes "github.com/vietlabs/cryptotax/db"
	"github.com/vietlabs/cryptotax/price"
	"gorm.io/gorm"
)

var (
	importConfig       config.ImportConfig
	importDbConnection *gorm.DB
	validParserKeys    = csvParsers.GetParserKeys()
)

func init() {
	config.SetupLogFlags(&importConfig.Log, importCmd)
	config.SetupDatabaseFlags(&importConfig.Database, importCmd)
	config.SetupRedisFlags(&importConfig.Redis, importCmd)
	config.SetupPricesFlags(&importConfig.Prices, importCmd)
	config.SetupImportSpecificFlags(validParserKeys, &importConfig, importCmd)
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Imports a transaction CSV file into the database.",
	Long: `Parses a transaction export in one of the supported formats, validates every
	row and stores the normalized transactions. Rows already imported (matched on
	their transaction hash or order id) are skipped, so re-importing an overlapping
	export is safe.`,
	PreRunE: setupImport,
	Run: func(cmd *cobra.Command, args []string) {
		prices := buildPriceService()

		opts := csvParsers.Options{
			WalletAddress: importConfig.Base.WalletAddress,
			ExchangeName:  importConfig.Base.ExchangeName,
		}

		// exchange exports are USD-quoted, so they need the conversion rate up front
		rate, err := prices.UsdVndRate(cmd.Context())
		if err != nil {
			config.Log.Warn("Could not resolve the USD/VND rate, USD-quoted files will fail to parse", err)
		} else {
			opts.UsdVndRate = rate
		}

		transactions, err := csv.ParseFile(importConfig.Base.File, importConfig.Base.Format, opts)
		if err != nil {
			config.Log.Fatal("Error parsing the transaction file", err)
		}

		if importConfig.Base.DryRun {
			config.Log.Infof("Dry run, validated %d transactions without storing them", len(transactions))
			return
		}

		stored, err := dbTypes.StoreTransactions(importDbConnection, transactions)
		if err != nil {
			config.Log.Fatal("Error storing transactions", err)
		}

		config.Log.Infof("Stored %d new transactions (%d duplicates skipped)", stored, int64(len(transactions))-stored)
	},
}

func setupImport(cmd *cobra.Command, args []string) error {
	if len(validParserKeys) == 0 {
		return errors.New("error during setup, no CSV parsers found")
	}

	bindFlags(cmd, viperConf)
	err := importConfig.Validate(validParserKeys)
	if err != nil {
		return err
	}

	ignoredKeys := config.CheckSuperfluousImportKeys(viperConf.AllKeys())

	if len(ignoredKeys) > 0 {
		config.Log.Warnf("Warning, the following invalid keys will be ignored: %v", ignoredKeys)
	}

	setupLogger(importConfig.Log.Level, importConfig.Log.Path, importConfig.Log.Pretty)

	if !importConfig.Base.DryRun {
		db, err := connectToDBAndMigrate(importConfig.Database)
		if err != nil {
			config.Log.Fatal("Could not establish connection to the database", err)
		}
		importDbConnection = db
	}

	return nil
}

// buildPriceService assembles the price resolution chain from the config:
// CoinGecko over the exchange rate API, wrapped in the redis cache when a
// redis address is configured.
func buildPriceService() price.Service {
	rateSource := price.NewExchangeRateClient(
		importConfig.Prices.ExchangeRateURL,
		decimal.NewFromFloat(importConfig.Prices.FallbackUsdVnd),
	)

	var svc price.Service = price.NewCoinGecko(
		importConfig.Prices.CoingeckoURL,
		importConfig.Prices.CoingeckoAPIKey,
		rateSource,
	)

	if importConfig.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     importConfig.Redis.Addr,
			Password: importConfig.Redis.Password,
		})
		ttl := time.Duration(importConfig.Prices.CacheTTLMinutes) * time.Minute
		svc = price.NewCache(svc, rdb, ttl)
	}

	return svc
}
