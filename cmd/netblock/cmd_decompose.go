package main

import (
	"fmt"
	"io"
	"net/netip"
	"os"

	"github.com/scopenco/netblock-tools/cidr"
	"github.com/scopenco/netblock-tools/log"

	"github.com/spf13/cobra"
)

var decomposeCommand = &cobra.Command{
	Use:   "decompose START END",
	Short: "Print the minimal CIDR list covering an address range",
	Example: `  netblock decompose 1.0.0.1 1.0.0.6
  netblock decompose 16777216 16777471`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runDecompose(args[0], args[1], os.Stdout, newStderrLogger()))
	},
}

func init() {
	mainCommand.AddCommand(decomposeCommand)
}

func runDecompose(start, end string, stdout io.Writer, logger log.Logger) int {
	from, errFrom := cidr.ParseUint32(start)
	to, errTo := cidr.ParseUint32(end)
	if errFrom == nil && errTo == nil {
		blocks, err := cidr.Decompose(from, to)
		if err != nil {
			logger.Fatal(err)
			return 1
		}
		for _, b := range blocks {
			fmt.Fprintln(stdout, b)
		}
		return 0
	}
	// ipv6 ranges
	fromAddr, err := netip.ParseAddr(start)
	if err != nil {
		logger.Fatal(fmt.Sprintf("invalid start address %s: %s", start, err))
		return 1
	}
	toAddr, err := netip.ParseAddr(end)
	if err != nil {
		logger.Fatal(fmt.Sprintf("invalid end address %s: %s", end, err))
		return 1
	}
	prefixes, err := cidr.DecomposeAddrs(fromAddr, toAddr)
	if err != nil {
		logger.Fatal(err)
		return 1
	}
	for _, p := range prefixes {
		fmt.Fprintln(stdout, p)
	}
	return 0
}
