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

var nullrouteCommand = &cobra.Command{
	Use:   "nullroute [flags] country1 country2 ...",
	Short: "Create blackhole routes for networks by country code",
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(nullroute(cmd, args, os.Stdout))
	},
}

type nullrouteOptions struct {
	geo    geoOptions
	remove bool
	apply  bool
	table  int
}

var paramNullroute nullrouteOptions

func init() {
	paramNullroute.geo.bind(nullrouteCommand)
	flags := nullrouteCommand.Flags()
	flags.BoolVarP(&paramNullroute.remove, "remove", "r", false, "remove routes instead of adding them")
	flags.BoolVar(&paramNullroute.apply, "apply", false, "install the routes through netlink instead of printing commands")
	flags.IntVar(&paramNullroute.table, "table", 0, "routing table for --apply, 0 is main")
	mainCommand.AddCommand(nullrouteCommand)
}

func nullroute(cmd *cobra.Command, args []string, stdout io.Writer) int {
	return runNullroute(cmd, paramNullroute, args, stdout, newStderrLogger())
}

func runNullroute(cmd *cobra.Command, options nullrouteOptions, args []string, stdout io.Writer, logger log.Logger) int {
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
	show, err := action.NewShow(stdout, emit.Route(options.remove))
	if err != nil {
		logger.Fatal(err)
		return 1
	}
	dispatcher := &countBlocks{Dispatcher: &action.Switch{Show: show}}
	if options.apply {
		enforce, release, err := startAction(logger, constant.ActionBlackhole, map[string]any{
			"remove": options.remove,
			"table":  options.table,
		})
		if err != nil {
			logger.Fatal(err)
			return 1
		}
		defer release()
		dispatcher.Dispatcher = &action.Switch{Show: show, Enforce: enforce}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	err = dispatchCountries(ctx, stdout, logger, options.geo, codes, dispatcher, !options.apply)
	if err != nil {
		if !errors.Is(err, errDatabaseMissing) {
			logger.Fatal(err)
		}
		return 1
	}
	if options.apply {
		verb := "added"
		if options.remove {
			verb = "removed"
		}
		logger.Info(fmt.Sprintf("%d blackhole routes %s", dispatcher.n, verb))
	}
	return 0
}
