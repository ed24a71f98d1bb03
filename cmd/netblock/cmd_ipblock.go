package main

import (
	"context"
	"os"

	"github.com/scopenco/netblock-tools/core"
	"github.com/scopenco/netblock-tools/log"
	"github.com/scopenco/netblock-tools/option"

	"github.com/spf13/cobra"
)

var ipblockCommand = &cobra.Command{
	Use:   "ipblock <RULES_CONFIG>",
	Short: "Block networks of clients matching drop rules in an access log",
	Example: `  netblock ipblock /etc/netblock/ipblock.yaml -f access_log --debug
  tail -f /var/log/nginx/access.log | netblock ipblock /etc/netblock/ipblock.yaml -f -`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(ipblock(cmd, args[0]))
	},
}

var (
	paramIPBlockFile   string
	paramIPBlockShow   bool
	paramIPBlockFollow bool
	paramIPBlockListen string
)

func init() {
	ipblockCommand.Flags().StringVarP(&paramIPBlockFile, "file", "f", "", "data file or pipe (-)")
	ipblockCommand.Flags().BoolVarP(&paramIPBlockShow, "show", "s", false, "show only")
	ipblockCommand.Flags().BoolVar(&paramIPBlockFollow, "follow", false, "follow the file as it grows")
	ipblockCommand.Flags().StringVar(&paramIPBlockListen, "listen", "", "api listen address")
	mainCommand.AddCommand(ipblockCommand)
}

// applyFlags lets explicitly set flags override the config file.
func applyFlags(cmd *cobra.Command, options *option.Option) {
	flags := cmd.Flags()
	if flags.Changed("file") {
		options.File = paramIPBlockFile
	}
	if flags.Changed("show") {
		options.Show = paramIPBlockShow
	}
	if flags.Changed("follow") {
		options.Follow = paramIPBlockFollow
	}
	if flags.Changed("listen") {
		options.APIOptions.Listen = paramIPBlockListen
	}
	if flags.Changed("debug") {
		options.Debug = paramDebug
	}
	if paramNoColor {
		noColor := false
		options.LogOptions.Color = &noColor
	}
}

func ipblock(cmd *cobra.Command, configFile string) int {
	options, err := option.ReadFile(configFile)
	if err != nil {
		log.DefaultSimpleLogger.Fatal(err)
		return 1
	}
	applyFlags(cmd, options)
	logger, logCloser, err := core.NewLogger(options.LogOptions, options.Debug, os.Stdout)
	if err != nil {
		log.DefaultSimpleLogger.Fatal(err)
		return 1
	}
	defer logCloser.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c, err := core.New(ctx, logger, options, os.Stdout)
	if err != nil {
		logger.Fatal(err)
		return 1
	}
	go notifySignal(logger, cancel)
	err = c.Run()
	if err != nil {
		logger.Fatal(err)
		return 1
	}
	return 0
}
