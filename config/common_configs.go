package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vietlabs/cryptotax/util"
)

// These configs are used across multiple commands, and are not specific to a single command
type log struct {
	Level  string
	Path   string
	Pretty bool
}

type Database struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string
	LogLevel string `mapstructure:"log-level"`
}

type RedisConf struct {
	Addr     string
	Password string
}

// Tax holds the tax regime rates. Rates are fractions of the taxed value,
// e.g. 0.001 means 0.1%. The futures rates are carried for completeness but
// no command computes futures tax yet.
type Tax struct {
	TransferRate    float64 `mapstructure:"transfer-rate"`
	OtherIncomeRate float64 `mapstructure:"other-income-rate"`
	FuturesMinRate  float64 `mapstructure:"futures-min-rate"`
	FuturesMaxRate  float64 `mapstructure:"futures-max-rate"`
	Currency        string  `mapstructure:"currency"`
}

type Prices struct {
	CoingeckoURL    string  `mapstructure:"coingecko-url"`
	CoingeckoAPIKey string  `mapstructure:"coingecko-api-key"`
	ExchangeRateURL string  `mapstructure:"exchange-rate-url"`
	FallbackUsdVnd  float64 `mapstructure:"fallback-usd-vnd"`
	CacheTTLMinutes int     `mapstructure:"cache-ttl-minutes"`
}

func SetupLogFlags(logConf *log, cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&logConf.Level, "log.level", "info", "log level")
	cmd.PersistentFlags().BoolVar(&logConf.Pretty, "log.pretty", false, "pretty logs")
	cmd.PersistentFlags().StringVar(&logConf.Path, "log.path", "", "log path (default is $HOME/.cryptotax/logs.txt)")
}

func SetupDatabaseFlags(databaseConf *Database, cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&databaseConf.Host, "database.host", "", "database host")
	cmd.PersistentFlags().StringVar(&databaseConf.Port, "database.port", "5432", "database port")
	cmd.PersistentFlags().StringVar(&databaseConf.Database, "database.database", "", "database name")
	cmd.PersistentFlags().StringVar(&databaseConf.User, "database.user", "", "database user")
	cmd.PersistentFlags().StringVar(&databaseConf.Password, "database.password", "", "database password")
	cmd.PersistentFlags().StringVar(&databaseConf.LogLevel, "database.log-level", "", "database loglevel")
}

func SetupRedisFlags(redisConf *RedisConf, cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&redisConf.Addr, "redis.addr", "", "redis address, blank disables the price cache")
	cmd.PersistentFlags().StringVar(&redisConf.Password, "redis.password", "", "redis password")
}

func SetupTaxFlags(taxConf *Tax, cmd *cobra.Command) {
	cmd.PersistentFlags().Float64Var(&taxConf.TransferRate, "tax.transfer-rate", 0.001, "tax rate applied to buy/sell/swap disposal value")
	cmd.PersistentFlags().Float64Var(&taxConf.OtherIncomeRate, "tax.other-income-rate", 0.10, "tax rate applied to staking/airdrop/farming receipts")
	cmd.PersistentFlags().Float64Var(&taxConf.FuturesMinRate, "tax.futures-min-rate", 0.05, "minimum progressive rate for futures positions (unused)")
	cmd.PersistentFlags().Float64Var(&taxConf.FuturesMaxRate, "tax.futures-max-rate", 0.35, "maximum progressive rate for futures positions (unused)")
	cmd.PersistentFlags().StringVar(&taxConf.Currency, "tax.currency", "VND", "reporting currency")
}

func SetupPricesFlags(pricesConf *Prices, cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&pricesConf.CoingeckoURL, "prices.coingecko-url", "https://api.coingecko.com/api/v3", "CoinGecko API base URL")
	cmd.PersistentFlags().StringVar(&pricesConf.CoingeckoAPIKey, "prices.coingecko-api-key", "", "CoinGecko API key")
	cmd.PersistentFlags().StringVar(&pricesConf.ExchangeRateURL, "prices.exchange-rate-url", "https://open.er-api.com/v6/latest/USD", "USD exchange rate API URL")
	cmd.PersistentFlags().Float64Var(&pricesConf.FallbackUsdVnd, "prices.fallback-usd-vnd", 25000, "USD/VND rate used when the exchange rate API is unreachable")
	cmd.PersistentFlags().IntVar(&pricesConf.CacheTTLMinutes, "prices.cache-ttl-minutes", 15, "how long cached prices stay fresh")
}

func validateDatabaseConf(dbConf Database) error {
	if util.StrNotSet(dbConf.Host) {
		return errors.New("database host must be set")
	}
	if util.StrNotSet(dbConf.Port) {
		return errors.New("database port must be set")
	}
	if util.StrNotSet(dbConf.Database) {
		return errors.New("database name (i.e. database) must be set")
	}
	if util.StrNotSet(dbConf.User) {
		return errors.New("database user must be set")
	}
	if util.StrNotSet(dbConf.Password) {
		return errors.New("database password must be set")
	}

	return nil
}

func validateTaxConf(taxConf Tax) error {
	if taxConf.TransferRate < 0 || taxConf.TransferRate >= 1 {
		return fmt.Errorf("transfer rate %v must be in [0, 1)", taxConf.TransferRate)
	}
	if taxConf.OtherIncomeRate < 0 || taxConf.OtherIncomeRate >= 1 {
		return fmt.Errorf("other income rate %v must be in [0, 1)", taxConf.OtherIncomeRate)
	}
	if util.StrNotSet(taxConf.Currency) {
		return errors.New("reporting currency must be set")
	}
	return nil
}

func validatePricesConf(pricesConf Prices) error {
	if pricesConf.FallbackUsdVnd <= 0 {
		return errors.New("fallback USD/VND rate must be a positive number")
	}
	if pricesConf.CacheTTLMinutes < 0 {
		return errors.New("price cache TTL must be a positive number or 0")
	}
	return nil
}

// Reads the Viper mapstructure tag to get the valid keys for a given config struct
func getValidConfigKeys(section any, baseName string) (keys []string) {
	v := reflect.ValueOf(section)
	typeOfS := v.Type()

	if baseName == "" {
		baseName = strings.ToLower(typeOfS.Name())
	}

	for i := 0; i < v.NumField(); i++ {
		field := typeOfS.Field(i)

		if !strings.HasPrefix(field.Type.String(), "config.") {
			name := field.Tag.Get("mapstructure")
			if name == "" {
				name = field.Name
			}

			key := fmt.Sprintf("%v.%v", baseName, strings.ReplaceAll(strings.ToLower(name), " ", ""))
			keys = append(keys, key)
		}
	}
	return
}

func addDatabaseConfigKeys(validKeys map[string]struct{}) {
	for _, key := range getValidConfigKeys(Database{}, "") {
		validKeys[key] = struct{}{}
	}
}

func addLogConfigKeys(validKeys map[string]struct{}) {
	for _, key := range getValidConfigKeys(log{}, "") {
		validKeys[key] = struct{}{}
	}
}

func addRedisConfigKeys(validKeys map[string]struct{}) {
	for _, key := range getValidConfigKeys(RedisConf{}, "redis") {
		validKeys[key] = struct{}{}
	}
}

func addTaxConfigKeys(validKeys map[string]struct{}) {
	for _, key := range getValidConfigKeys(Tax{}, "") {
		validKeys[key] = struct{}{}
	}
}

func addPricesConfigKeys(validKeys map[string]struct{}) {
	for _, key := range getValidConfigKeys(Prices{}, "") {
		validKeys[key] = struct{}{}
	}
}
