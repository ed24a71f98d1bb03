package main

import (
	"errors"
	"os"

	"github.com/scopenco/netblock-tools/constant"

	"github.com/spf13/cobra"
)

var countriesCommand = &cobra.Command{
	Use:   "countries",
	Short: "List country codes",
	Run: func(cmd *cobra.Command, args []string) {
		err := listCountries(os.Stdout, paramCountryDB)
		if err != nil {
			if !errors.Is(err, errDatabaseMissing) {
				newStderrLogger().Fatal(err)
			}
			os.Exit(1)
		}
	},
}

var paramCountryDB string

func init() {
	countriesCommand.Flags().StringVar(&paramCountryDB, "countrydb", constant.CountryTXT, "path to country_names_and_code_elements_txt with country codes")
	mainCommand.AddCommand(countriesCommand)
}
