package main

import (
	"fmt"
	"io"
	"net/netip"
	"os"

	"github.com/scopenco/netblock-tools/geoip"
	"github.com/scopenco/netblock-tools/log"

	"github.com/spf13/cobra"
)

var lookupCommand = &cobra.Command{
	Use:   "lookup --mmdb <DATABASE> ip1 ip2 ...",
	Short: "Print the country of addresses from a mmdb database",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runLookup(paramLookupMMDB, args, os.Stdout, newStderrLogger()))
	},
}

var paramLookupMMDB string

func init() {
	lookupCommand.Flags().StringVar(&paramLookupMMDB, "mmdb", "", "path to a GeoLite2-Country or sing-geoip database")
	mainCommand.AddCommand(lookupCommand)
}

func runLookup(path string, args []string, stdout io.Writer, logger log.Logger) int {
	if !isFile(path) {
		logger.Fatal(fmt.Sprintf("mmdb database %q not found", path))
		return 1
	}
	reader, err := geoip.Open(path)
	if err != nil {
		logger.Fatal(fmt.Sprintf("open %s fail: %s", path, err))
		return 1
	}
	defer reader.Close()
	code := 0
	for _, arg := range args {
		addr, err := netip.ParseAddr(arg)
		if err != nil {
			logger.Error(fmt.Sprintf("invalid address %s: %s", arg, err))
			code = 1
			continue
		}
		country, err := reader.Lookup(addr)
		if err != nil {
			logger.Error(fmt.Sprintf("lookup %s fail: %s", addr, err))
			code = 1
			continue
		}
		cc := country.Code
		if cc == "" {
			cc = "-"
		}
		fmt.Fprintf(stdout, "%s\t%s\t%s\n", addr, cc, country.Name)
	}
	return code
}
