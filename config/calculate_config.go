package config

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/vietlabs/cryptotax/util"
)

type CalculateConfig struct {
	Database Database
	Log      log
	Tax      Tax
	Prices   Prices
	Base     calculateBase
}

type calculateBase struct {
	File        string `mapstructure:"file"`
	Format      string `mapstructure:"format"`
	Granularity string `mapstructure:"granularity"`
	StartDate   string `mapstructure:"start-date"`
	EndDate     string `mapstructure:"end-date"`
	Output      string `mapstructure:"output"`
}

// TimeLayout is the expected layout for the start/end date flags
const TimeLayout = "2006-01-02:15:04:05"

func SetupCalculateSpecificFlags(validParserKeys []string, conf *CalculateConfig, cmd *cobra.Command) {
	cmd.Flags().StringVar(&conf.Base.File, "file", "", "Calculate directly from a transaction CSV file instead of the database")
	cmd.Flags().StringVar(&conf.Base.Granularity, "granularity", "month", "Period granularity for the breakdown (month, quarter or year)")
	cmd.Flags().StringVar(&conf.Base.StartDate, "start-date", "", "If set, tx before this date will be ignored. (Dates must be specified in the format 'YYYY-MM-DD:HH:MM:SS' in UTC)")
	cmd.Flags().StringVar(&conf.Base.EndDate, "end-date", "", "If set, tx on or after this date will be ignored. (Dates must be specified in the format 'YYYY-MM-DD:HH:MM:SS' in UTC)")
	cmd.Flags().StringVar(&conf.Base.Output, "output", "", "Directory to write the CSV reports into. Blank prints the summary only")
	cmd.Flags().StringVar(&conf.Base.Format, "format", "",
		fmt.Sprintf("The transaction file format, one of %s, only used together with --file. Blank detects the format from the header row", validParserKeys))
}

func (conf *CalculateConfig) Validate(validCsvParsers []string) error {
	if err := validateTaxConf(conf.Tax); err != nil {
		return err
	}

	switch conf.Base.Granularity {
	case "month", "quarter", "year":
	default:
		return fmt.Errorf("invalid granularity %s, valid granularities are month, quarter and year", conf.Base.Granularity)
	}

	if !util.StrNotSet(conf.Base.File) {
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
		// file mode converts USD-quoted formats itself, so the rate config
		// has to hold up
		if err := validatePricesConf(conf.Prices); err != nil {
			return err
		}
	} else if err := validateDatabaseConf(conf.Database); err != nil {
		return err
	}

	if conf.Base.StartDate != "" {
		if _, err := time.Parse(TimeLayout, conf.Base.StartDate); err != nil {
			return fmt.Errorf("invalid start date '%v'", conf.Base.StartDate)
		}
	}
	if conf.Base.EndDate != "" {
		if _, err := time.Parse(TimeLayout, conf.Base.EndDate); err != nil {
			return fmt.Errorf("invalid end date '%v'", conf.Base.EndDate)
		}
	}

	return nil
}

func CheckSuperfluousCalculateKeys(keys []string) []string {
	validKeys := make(map[string]struct{})

	addDatabaseConfigKeys(validKeys)
	addLogConfigKeys(validKeys)
	addTaxConfigKeys(validKeys)
	addPricesConfigKeys(validKeys)

	for _, key := range getValidConfigKeys(calculateBase{}, "base") {
		validKeys[key] = struct{}{}
	}

	// Check keys
	ignoredKeys := make([]string, 0)
	for _, key := range keys {
		if _, ok := validKeys[key]; !ok {
			ignoredKeys = append(ignoredKeys, key)
		}
	}

	return ignoredKeys
}
