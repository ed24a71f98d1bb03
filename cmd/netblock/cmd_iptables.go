package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/scopenco/netblock-tools/action"
	"github.com/scopenco/netblock-tools/constant"
	"github.com/scopenco/netblock-tools/emit"
	"github.com/scopenco/netblock-tools/log"

	"github.com/spf13/cobra"
)

var iptablesCommand = &cobra.Command{
	Use:   "iptables [flags] country1 country2 ...",
	Short: "Create iptables rules that block or allow networks by country code",
	Long: `Create iptables rules that block or allow networks by country code
(ex: RU CN). Needs the GeoIP country database and the ISO country list.`,
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(iptables(cmd, args, os.Stdout))
	},
}

type iptablesOptions struct {
	geo       geoOptions
	chain     string
	iface     string
	protocol  string
	dport     string
	allowOnly bool
	apply     string
	set       string
	table     string
}

var paramIptables iptablesOptions

func init() {
	paramIptables.geo.bind(iptablesCommand)
	flags := iptablesCommand.Flags()
	flags.StringVarP(&paramIptables.chain, "chain", "c", constant.DefaultChain, "iptables chain")
	flags.StringVarP(&paramIptables.iface, "interface", "i", constant.DefaultInterface, "iptables interface")
	flags.StringVarP(&paramIptables.protocol, "protocol", "p", "", "iptables protocol, choose from (icmp, tcp, udp, all)")
	flags.StringVarP(&paramIptables.dport, "dport", "d", "", "iptables destination port")
	flags.BoolVarP(&paramIptables.allowOnly, "allow-only", "a", false, "generate iptables rules that allow only selected countries")
	flags.StringVar(&paramIptables.apply, "apply", "", "add the networks to a set instead of printing rules (nftset, ipset)")
	flags.StringVar(&paramIptables.set, "set", "", "set name for --apply")
	flags.StringVar(&paramIptables.table, "table", "filter", "nftables table for --apply nftset")
	mainCommand.AddCommand(iptablesCommand)
}

func (o iptablesOptions) actionArgs() (map[string]any, error) {
	if o.set == "" {
		return nil, fmt.Errorf("--set is required with --apply")
	}
	switch o.apply {
	case constant.ActionNftSet:
		return map[string]any{"table": o.table, "set": o.set}, nil
	case constant.ActionIPSet:
		return map[string]any{"name": o.set, "create": true}, nil
	default:
		return nil, fmt.Errorf("invalid --apply %s, choose from (nftset, ipset)", o.apply)
	}
}

func iptables(cmd *cobra.Command, args []string, stdout io.Writer) int {
	return runIptables(cmd, paramIptables, args, stdout, newStderrLogger())
}

func runIptables(cmd *cobra.Command, options iptablesOptions, args []string, stdout io.Writer, logger log.Logger) int {
	if options.geo.cc {
		err := listCountries(stdout, options.geo.countryDB)
		if err != nil {
			if !errors.Is(err, errDatabaseMissing) {
				logger.Fatal(err)
			}
			return 1
		}
		return 0
	}
	codes := normalizeCodes(args)
	if len(codes) == 0 {
		cmd.Help()
		return 1
	}
	base, rule, err := emit.Iptables(emit.IptablesOptions{
		Chain:     options.chain,
		Interface: options.iface,
		Protocol:  options.protocol,
		DPort:     options.dport,
		AllowOnly: options.allowOnly,
	})
	if err != nil {
		logger.Fatal(err)
		return 1
	}
	show, err := action.NewShow(stdout, rule)
	if err != nil {
		logger.Fatal(err)
		return 1
	}
	dispatcher := &countBlocks{Dispatcher: &action.Switch{Show: show}}
	dryRun := options.apply == ""
	if !dryRun {
		if options.allowOnly {
			logger.Fatal("--allow-only can not be used with --apply")
			return 1
		}
		actionArgs, err := options.actionArgs()
		if err != nil {
			logger.Fatal(err)
			return 1
		}
		enforce, release, err := startAction(logger, options.apply, actionArgs)
		if err != nil {
			logger.Fatal(err)
			return 1
		}
		defer release()
		dispatcher.Dispatcher = &action.Switch{Show: show, Enforce: enforce}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	err = dispatchCountries(ctx, stdout, logger, options.geo, codes, dispatcher, dryRun)
	if err != nil {
		if !errors.Is(err, errDatabaseMissing) {
			logger.Fatal(err)
		}
		return 1
	}
	if options.allowOnly {
		fmt.Fprintln(stdout, emit.IptablesClose(base))
	}
	if !dryRun {
		logger.Info(fmt.Sprintf("%d networks added to %s %s", dispatcher.n, options.apply, options.set))
	}
	return 0
}
