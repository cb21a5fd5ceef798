// Package importer parses holdings files uploaded as CSV or JSON.
package importer

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bobmcallan/navfolio/internal/interfaces"
)

// ErrUnsupportedFormat is returned for files that are neither .csv nor .json.
var ErrUnsupportedFormat = errors.New("unsupported file format, upload CSV or JSON")

var dateLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"02/01/2006",
	time.RFC3339,
}

var headerSpace = regexp.MustCompile(`\s+`)

// Parse dispatches on the file extension. Rows without a scheme code or with
// non-positive units or price are dropped.
func Parse(filename string, data []byte) ([]interfaces.HoldingInput, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return ParseCSV(bytes.NewReader(data))
	case ".json":
		return ParseJSON(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filename)
	}
}

// ParseCSV reads a header row followed by holdings. Recognised columns are
// scheme_code, units, buy_price (or nav) and an optional buy_date; header names
// are trimmed, lower-cased and have inner whitespace replaced by underscores.
func ParseCSV(r io.Reader) ([]interfaces.HoldingInput, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return []interfaces.HoldingInput{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		cols[headerSpace.ReplaceAllString(strings.ToLower(strings.TrimSpace(h)), "_")] = i
	}

	field := func(record []string, names ...string) string {
		for _, name := range names {
			if i, ok := cols[name]; ok && i < len(record) {
				if v := strings.TrimSpace(record[i]); v != "" {
					return v
				}
			}
		}
		return ""
	}

	holdings := []interfaces.HoldingInput{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}

		in, ok := buildInput(
			field(record, "scheme_code"),
			field(record, "units"),
			field(record, "buy_price", "nav"),
			field(record, "buy_date"),
		)
		if ok {
			holdings = append(holdings, in)
		}
	}

	return holdings, nil
}

// ParseJSON accepts a top-level array of holdings, {"holdings": [...]} or
// {"portfolio": {"holdings": [...]}}. Keys may be camelCase or snake_case and
// numeric values may be numbers or strings.
func ParseJSON(data []byte) ([]interfaces.HoldingInput, error) {
	var root interface{}
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	var rows []interface{}
	switch v := root.(type) {
	case []interface{}:
		rows = v
	case map[string]interface{}:
		if hs, ok := v["holdings"].([]interface{}); ok {
			rows = hs
		} else if p, ok := v["portfolio"].(map[string]interface{}); ok {
			rows, _ = p["holdings"].([]interface{})
		}
	}

	holdings := []interfaces.HoldingInput{}
	for _, row := range rows {
		obj, ok := row.(map[string]interface{})
		if !ok {
			continue
		}
		in, ok := buildInput(
			jsonField(obj, "schemeCode", "scheme_code"),
			jsonField(obj, "units"),
			jsonField(obj, "buyPrice", "buy_price", "nav"),
			jsonField(obj, "buyDate", "buy_date"),
		)
		if ok {
			holdings = append(holdings, in)
		}
	}

	return holdings, nil
}

func jsonField(obj map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		switch v := obj[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

func buildInput(code, units, price, date string) (interfaces.HoldingInput, bool) {
	if code == "" {
		return interfaces.HoldingInput{}, false
	}

	u, err := parsePositive(units)
	if err != nil {
		return interfaces.HoldingInput{}, false
	}
	p, err := parsePositive(price)
	if err != nil {
		return interfaces.HoldingInput{}, false
	}

	in := interfaces.HoldingInput{SchemeCode: code, Units: u, BuyPrice: p}
	if date != "" {
		d, err := ParseDate(date)
		if err != nil {
			return interfaces.HoldingInput{}, false
		}
		in.BuyDate = d
	}
	return in, true
}

func parsePositive(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, err
	}
	if !(v > 0) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("value %q must be positive", s)
	}
	return v, nil
}

// ParseDate accepts ISO (2006-01-02), day-first (02-01-2006, 02/01/2006) and RFC3339 dates.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}
