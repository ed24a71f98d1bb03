package geoip

import (
	"fmt"
	"net"
	"net/netip"
	"strings"

	"github.com/scopenco/netblock-tools/cidr"

	"github.com/oschwald/geoip2-golang"
	"github.com/oschwald/maxminddb-golang"
	"go4.org/netipx"
)

const singGeoIPType = "sing-geoip"

// ReadMMDB walks every IPv4 network of a GeoLite2-Country or sing-geoip
// database and calls fn for the requested countries. Adjacent networks of
// the same country are merged into one range first.
func ReadMMDB(path string, codes []string, fn func(Record) error) error {
	database, err := maxminddb.Open(path)
	if err != nil {
		return err
	}
	defer database.Close()

	set := newCodeSet(codes)
	m := &merger{fn: fn}
	networks := database.Networks(maxminddb.SkipAliasedNetworks)
	for networks.Next() {
		var record any
		ipNet, err := networks.Network(&record)
		if err != nil {
			return fmt.Errorf("decode network fail: %s", err)
		}
		prefix, ok := netipx.FromStdIPNet(ipNet)
		if !ok || !prefix.Addr().Is4() {
			continue
		}
		code := countryCode(record)
		if code == "" || !set.has(code) {
			continue
		}
		err = m.add(prefix, code)
		if err != nil {
			return err
		}
	}
	err = networks.Err()
	if err != nil {
		return err
	}
	return m.flush()
}

// countryCode understands both the plain string records of sing-geoip and
// the nested country.iso_code records of MaxMind databases.
func countryCode(record any) string {
	switch r := record.(type) {
	case string:
		return strings.ToUpper(r)
	case map[string]any:
		for _, key := range []string{"country", "registered_country"} {
			country, ok := r[key].(map[string]any)
			if !ok {
				continue
			}
			if code, ok := country["iso_code"].(string); ok && code != "" {
				return strings.ToUpper(code)
			}
		}
	}
	return ""
}

type merger struct {
	fn      func(Record) error
	pending *Record
}

func (m *merger) add(prefix netip.Prefix, code string) error {
	r := netipx.RangeOfPrefix(prefix)
	start, end := cidr.Uint32FromAddr(r.From()), cidr.Uint32FromAddr(r.To())
	if m.pending != nil && m.pending.Code == code && uint64(m.pending.Range.End)+1 == uint64(start) {
		m.pending.Range.End = end
		return nil
	}
	err := m.flush()
	if err != nil {
		return err
	}
	m.pending = &Record{
		Range: cidr.Range{Start: start, End: end},
		Code:  code,
	}
	return nil
}

func (m *merger) flush() error {
	if m.pending == nil {
		return nil
	}
	record := *m.pending
	m.pending = nil
	return m.fn(record)
}

// Reader answers single address country lookups.
type Reader struct {
	sing    *maxminddb.Reader
	maxmind *geoip2.Reader
}

func Open(path string) (*Reader, error) {
	database, err := maxminddb.Open(path)
	if err != nil {
		return nil, err
	}
	if database.Metadata.DatabaseType == singGeoIPType {
		return &Reader{sing: database}, nil
	}
	database.Close()
	maxmind, err := geoip2.Open(path)
	if err != nil {
		return nil, err
	}
	return &Reader{maxmind: maxmind}, nil
}

// Lookup returns the country of addr, or an empty Country when the database
// has no entry for it.
func (r *Reader) Lookup(addr netip.Addr) (Country, error) {
	ip := net.IP(addr.Unmap().AsSlice())
	if r.sing != nil {
		var code string
		err := r.sing.Lookup(ip, &code)
		if err != nil {
			return Country{}, err
		}
		return Country{Code: strings.ToUpper(code)}, nil
	}
	record, err := r.maxmind.Country(ip)
	if err != nil {
		return Country{}, err
	}
	return Country{
		Code: record.Country.IsoCode,
		Name: record.Country.Names["en"],
	}, nil
}

func (r *Reader) Close() error {
	if r.sing != nil {
		return r.sing.Close()
	}
	return r.maxmind.Close()
}
