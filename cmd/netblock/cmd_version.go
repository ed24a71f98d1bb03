package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/scopenco/netblock-tools/adapter"
	"github.com/scopenco/netblock-tools/constant"

	"github.com/spf13/cobra"
)

var versionCommand = &cobra.Command{
	Use:   "version",
	Short: "Show version",
	Run: func(cmd *cobra.Command, args []string) {
		printVersion(os.Stdout)
	},
}

func init() {
	mainCommand.AddCommand(versionCommand)
}

func printVersion(w io.Writer) {
	fmt.Fprintln(w, constant.GetVersion())
	fmt.Fprintf(w, "actions: %s\n", strings.Join(adapter.GetAllAction(), ", "))
}
