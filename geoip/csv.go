package geoip

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/scopenco/netblock-tools/cidr"
)

// Record is one country range of a geo-ip database.
type Record struct {
	Range   cidr.Range
	Code    string
	Country string
}

// column layout of GeoIPCountryWhois.csv:
// "startIP","endIP","startInt","endInt","CC","Country"
const (
	colStart   = 2
	colEnd     = 3
	colCode    = 4
	colCountry = 5
)

type codeSet map[string]struct{}

func newCodeSet(codes []string) codeSet {
	if len(codes) == 0 {
		return nil
	}
	s := make(codeSet, len(codes))
	for _, c := range codes {
		s[c] = struct{}{}
	}
	return s
}

// has reports whether code was requested. An empty set matches every code.
func (s codeSet) has(code string) bool {
	if s == nil {
		return true
	}
	_, ok := s[code]
	return ok
}

// ReadCSV calls fn, in file order, for every row whose country code is in
// codes. Rows with start > end are passed through unchanged.
func ReadCSV(r io.Reader, codes []string, fn func(Record) error) error {
	set := newCodeSet(codes)
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = true
	line := 0
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		line++
		if err != nil {
			return fmt.Errorf("read csv fail: %w", err)
		}
		if len(row) <= colCode {
			return fmt.Errorf("line %d: expected at least %d columns, got %d", line, colCode+1, len(row))
		}
		if !set.has(row[colCode]) {
			continue
		}
		start, err := strconv.ParseUint(row[colStart], 10, 32)
		if err != nil {
			return fmt.Errorf("line %d: invalid range start %q", line, row[colStart])
		}
		end, err := strconv.ParseUint(row[colEnd], 10, 32)
		if err != nil {
			return fmt.Errorf("line %d: invalid range end %q", line, row[colEnd])
		}
		record := Record{
			Range: cidr.Range{Start: uint32(start), End: uint32(end)},
			Code:  row[colCode],
		}
		if len(row) > colCountry {
			record.Country = row[colCountry]
		}
		err = fn(record)
		if err != nil {
			return err
		}
	}
}
