package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/scopenco/netblock-tools/log"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var mainCommand = &cobra.Command{
	Use:   "netblock",
	Short: "Block abusive networks in the firewall",
	Long: `netblock turns web server access logs and geo-ip country ranges
into firewall, ipset/nftables or blackhole route entries.`,
	SilenceUsage: true,
}

var (
	paramDebug   bool
	paramNoColor bool
)

func init() {
	mainCommand.PersistentFlags().BoolVar(&paramDebug, "debug", false, "verbose output")
	mainCommand.PersistentFlags().BoolVar(&paramNoColor, "no-color", false, "disable colored log levels")
}

func main() {
	err := mainCommand.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// newStderrLogger is the logger of the one-shot commands, stdout stays
// reserved for their output.
func newStderrLogger() log.Logger {
	logger := log.NewLogger()
	logger.SetOutput(os.Stderr)
	logger.SetDebug(paramDebug)
	logger.SetColor(!paramNoColor && !color.NoColor)
	return logger
}

func notifySignal(logger log.Logger, cancel context.CancelFunc) {
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	sig := <-signalChan
	logger.Warn(fmt.Sprintf("receive signal %s, exiting...", sig))
	cancel()
}
