package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/scopenco/netblock-tools/adapter"
	"github.com/scopenco/netblock-tools/constant"
	"github.com/scopenco/netblock-tools/geoip"
	"github.com/scopenco/netblock-tools/log"

	"github.com/spf13/cobra"
)

var errDatabaseMissing = errors.New("database not found")

type geoOptions struct {
	geoipDB   string
	mmdb      string
	countryDB string
	cc        bool
}

func (o *geoOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.geoipDB, "geoipdb", constant.GeoIPCSV, "path to GeoIPCountryWhois.csv with GeoIP data")
	cmd.Flags().StringVar(&o.mmdb, "mmdb", "", "path to a GeoLite2-Country or sing-geoip database, used instead of --geoipdb")
	cmd.Flags().StringVar(&o.countryDB, "countrydb", constant.CountryTXT, "path to country_names_and_code_elements_txt with country codes")
	cmd.Flags().BoolVar(&o.cc, "cc", false, "list country codes")
}

func isFile(path string) bool {
	stat, err := os.Stat(path)
	return err == nil && !stat.IsDir()
}

// listCountries prints the "CC\tName" list of the ISO country file.
func listCountries(w io.Writer, path string) error {
	if !isFile(path) {
		fmt.Fprintf(w, "%s not found! try command \"wget %s\"\n", path, constant.CountryDB)
		return errDatabaseMissing
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	countries, err := geoip.ReadCountries(f)
	if err != nil {
		return fmt.Errorf("read %s fail: %s", path, err)
	}
	for _, c := range countries {
		fmt.Fprintf(w, "%s\t%s\n", c.Code, c.Name)
	}
	return nil
}

func normalizeCodes(args []string) []string {
	codes := make([]string, 0, len(args))
	for _, a := range args {
		for _, c := range strings.Split(a, ",") {
			c = strings.ToUpper(strings.TrimSpace(c))
			if c != "" {
				codes = append(codes, c)
			}
		}
	}
	return codes
}

// dispatchCountries decomposes every range of the requested countries and
// dispatches the blocks in database order.
func dispatchCountries(ctx context.Context, w io.Writer, logger log.Logger, options geoOptions, codes []string, dispatcher adapter.Dispatcher, dryRun bool) error {
	handle := func(record geoip.Record) error {
		blocks, err := record.Range.Decompose()
		if err != nil {
			logger.Warn(fmt.Sprintf("skip %s range: %s", record.Code, err))
			return nil
		}
		for _, b := range blocks {
			err = dispatcher.Dispatch(ctx, adapter.Request{Network: b, DryRun: dryRun})
			if err != nil {
				return err
			}
		}
		return nil
	}
	if options.mmdb != "" {
		if !isFile(options.mmdb) {
			fmt.Fprintf(w, "%s not found!\n", options.mmdb)
			return errDatabaseMissing
		}
		return geoip.ReadMMDB(options.mmdb, codes, handle)
	}
	if !isFile(options.geoipDB) {
		fmt.Fprintf(w, "%s not found! try command \"wget %s && unzip GeoIPCountryCSV.zip\"\n", options.geoipDB, constant.MaxMindDB)
		return errDatabaseMissing
	}
	f, err := os.Open(options.geoipDB)
	if err != nil {
		return err
	}
	defer f.Close()
	return geoip.ReadCSV(f, codes, handle)
}

// startAction creates, starts and returns an enforce backend for the
// one-shot commands. The returned func releases it.
func startAction(logger log.Logger, typ string, args map[string]any) (adapter.Action, func(), error) {
	a, err := adapter.NewAction(typ, typ, args)
	if err != nil {
		return nil, nil, err
	}
	if wl, ok := a.(adapter.WithLogger); ok {
		wl.WithLogger(log.NewTagLogger(logger, "action/"+a.Tag()))
	}
	if starter, ok := a.(adapter.Starter); ok {
		err = starter.Start()
		if err != nil {
			return nil, nil, fmt.Errorf("action [%s] start fail: %s", a.Tag(), err)
		}
	}
	return a, func() {
		if closer, ok := a.(adapter.Closer); ok {
			err := closer.Close()
			if err != nil {
				logger.Error(fmt.Sprintf("action [%s] close fail: %s", a.Tag(), err))
			}
		}
	}, nil
}

// countBlocks wraps a dispatcher and counts the blocks sent through it.
type countBlocks struct {
	adapter.Dispatcher
	n int
}

func (c *countBlocks) Dispatch(ctx context.Context, req adapter.Request) error {
	c.n++
	return c.Dispatcher.Dispatch(ctx, req)
}
