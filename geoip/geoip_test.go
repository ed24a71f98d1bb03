package geoip

import (
	"errors"
	"net/netip"
	"strings"
	"testing"

	"github.com/scopenco/netblock-tools/cidr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `"1.0.0.0","1.0.0.255","16777216","16777471","AU","Australia"
"1.0.1.0","1.0.3.255","16777472","16778239","CN","China"
"1.0.4.0","1.0.7.255","16778240","16779263","AU","Australia"
"1.0.8.0","1.0.15.255","16779264","16781311","CN","China"
`

func collect(t *testing.T, data string, codes []string) []Record {
	t.Helper()
	var records []Record
	err := ReadCSV(strings.NewReader(data), codes, func(r Record) error {
		records = append(records, r)
		return nil
	})
	require.NoError(t, err)
	return records
}

func TestReadCSV(t *testing.T) {
	records := collect(t, sampleCSV, []string{"CN"})
	require.Len(t, records, 2)
	assert.Equal(t, Record{Range: cidr.Range{Start: 16777472, End: 16778239}, Code: "CN", Country: "China"}, records[0])
	assert.Equal(t, uint32(16779264), records[1].Range.Start)

	blocks, err := records[0].Range.Decompose()
	require.NoError(t, err)
	assert.Equal(t, []cidr.Block{{Base: 16777472, Bits: 24}, {Base: 16777728, Bits: 23}}, blocks)

	assert.Len(t, collect(t, sampleCSV, []string{"AU", "CN"}), 4)
	assert.Len(t, collect(t, sampleCSV, nil), 4)
	assert.Empty(t, collect(t, sampleCSV, []string{"RU"}))
}

func TestReadCSVErrors(t *testing.T) {
	err := ReadCSV(strings.NewReader(sampleCSV+`"x","y","z"`+"\n"), []string{"CN"}, func(Record) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 5")

	err = ReadCSV(strings.NewReader(`"1.0.0.0","1.0.0.255","abc","16777471","CN","China"`), []string{"CN"}, func(Record) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")

	// rows of other countries are not validated
	err = ReadCSV(strings.NewReader(`"1.0.0.0","1.0.0.255","abc","16777471","AU","Australia"`), []string{"CN"}, func(Record) error { return nil })
	assert.NoError(t, err)

	stop := errors.New("stop")
	err = ReadCSV(strings.NewReader(sampleCSV), nil, func(Record) error { return stop })
	assert.ErrorIs(t, err, stop)
}

func TestReadCSVReversedRange(t *testing.T) {
	records := collect(t, `"","","20","10","CN",""`, []string{"CN"})
	require.Len(t, records, 1)
	_, err := records[0].Range.Decompose()
	assert.ErrorIs(t, err, cidr.ErrInvalidRange)
}

func TestReadCountries(t *testing.T) {
	data := "Country names and code elements\n\nAFGHANISTAN;AF\nKOREA, REPUBLIC OF;KR\nnot a country line\nÅLAND ISLANDS;AX\r\n"
	countries, err := ReadCountries(strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, []Country{
		{Code: "AF", Name: "Afghanistan"},
		{Code: "KR", Name: "Korea, Republic Of"},
		{Code: "AX", Name: "Åland Islands"},
	}, countries)
}

func TestCountryCode(t *testing.T) {
	assert.Equal(t, "CN", countryCode("cn"))
	assert.Equal(t, "DE", countryCode(map[string]any{
		"country": map[string]any{"iso_code": "DE", "names": map[string]any{"en": "Germany"}},
	}))
	assert.Equal(t, "EU", countryCode(map[string]any{
		"registered_country": map[string]any{"iso_code": "EU"},
	}))
	assert.Equal(t, "", countryCode(map[string]any{"continent": map[string]any{"code": "EU"}}))
	assert.Equal(t, "", countryCode(nil))
}

func TestMergerJoinsAdjacentNetworks(t *testing.T) {
	var records []Record
	m := &merger{fn: func(r Record) error {
		records = append(records, r)
		return nil
	}}
	require.NoError(t, m.add(netip.MustParsePrefix("1.0.1.0/24"), "CN"))
	require.NoError(t, m.add(netip.MustParsePrefix("1.0.2.0/23"), "CN"))
	require.NoError(t, m.add(netip.MustParsePrefix("1.0.4.0/22"), "AU"))
	require.NoError(t, m.add(netip.MustParsePrefix("1.0.16.0/20"), "AU"))
	require.NoError(t, m.flush())

	assert.Equal(t, []Record{
		{Range: cidr.Range{Start: 16777472, End: 16778239}, Code: "CN"},
		{Range: cidr.Range{Start: 16778240, End: 16779263}, Code: "AU"},
		{Range: cidr.Range{Start: 16781312, End: 16785407}, Code: "AU"},
	}, records)
}
