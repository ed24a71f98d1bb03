package geoip

import (
	"bufio"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"
)

type Country struct {
	Code string
	Name string
}

// ReadCountries parses the ISO 3166 "Name;CC" list. The header and lines
// without a separator are skipped.
func ReadCountries(r io.Reader) ([]Country, error) {
	var countries []Country
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "Country ") || !strings.Contains(line, ";") {
			continue
		}
		name, code, _ := strings.Cut(strings.TrimSpace(line), ";")
		countries = append(countries, Country{
			Code: code,
			Name: capitalizeWords(name),
		})
	}
	err := scanner.Err()
	if err != nil {
		return nil, err
	}
	return countries, nil
}

func capitalizeWords(s string) string {
	parts := strings.Split(s, " ")
	for i, part := range parts {
		parts[i] = capitalize(part)
	}
	return strings.Join(parts, " ")
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
