package config

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vietlabs/cryptotax/util"
)

type ImportConfig struct {
	Database Database
	Log      log
	Redis    RedisConf
	Prices   Prices
	Base     importBase
}

type importBase struct {
	File          string `mapstructure:"file"`
	Format        string `mapstructure:"format"`
	WalletAddress string `mapstructure:"wallet-address"`
	ExchangeName  string `mapstructure:"exchange-name"`
	DryRun        bool   `mapstructure:"dry-run"`
}

func SetupImportSpecificFlags(validParserKeys []string, conf *ImportConfig, cmd *cobra.Command) {
	cmd.Flags().StringVar(&conf.Base.File, "file", "", "The transaction CSV file to import")
	cmd.Flags().StringVar(&conf.Base.WalletAddress, "wallet-address", "", "Wallet address attached to rows that do not carry their own provenance")
	cmd.Flags().StringVar(&conf.Base.ExchangeName, "exchange-name", "", "Exchange name attached to rows that do not carry their own provenance")
	cmd.Flags().BoolVar(&conf.Base.DryRun, "dry-run", false, "Parse and validate the file without writing to the database")
	cmd.Flags().StringVar(&conf.Base.Format, "format", "",
		fmt.Sprintf("The transaction file format to import, one of %s. Blank detects the format from the header row", validParserKeys))
}

func (conf *ImportConfig) Validate(validCsvParsers []string) error {
	if util.StrNotSet(conf.Base.File) {
		return errors.New("a file to import must be set")
	}

	// a blank format is detected from the file's header row at parse time
	if !util.StrNotSet(conf.Base.Format) {
		found := false
		for _, v := range validCsvParsers {
			if v == conf.Base.Format {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("invalid format %s, valid formats are %s", conf.Base.Format, validCsvParsers)
		}
	}

	if err := validatePricesConf(conf.Prices); err != nil {
		return err
	}

	if !conf.Base.DryRun {
		return validateDatabaseConf(conf.Database)
	}

	return nil
}

func CheckSuperfluousImportKeys(keys []string) []string {
	validKeys := make(map[string]struct{})

	addDatabaseConfigKeys(validKeys)
	addLogConfigKeys(validKeys)
	addRedisConfigKeys(validKeys)
	addPricesConfigKeys(validKeys)

	for _, key := range getValidConfigKeys(importBase{}, "base") {
		validKeys[key] = struct{}{}
	}

	ignoredKeys := make([]string, 0)
	for _, key := range keys {
		if _, ok := validKeys[key]; !ok {
			ignoredKeys = append(ignoredKeys, key)
		}
	}

	return ignoredKeys
}
