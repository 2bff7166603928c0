package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	enc "github.com/MrJamesThe3rd/frontdesk/internal/encoding"
)

// Header names accepted in a price list export, lower-cased and trimmed.
// Each column lists its aliases; the first header row containing every
// required column is taken as the header.
var columns = []struct {
	key      string
	aliases  []string
	required bool
}{
	{key: "code", aliases: []string{"code", "código", "codigo"}, required: true},
	{key: "name", aliases: []string{"name", "estudio", "nombre"}, required: true},
	{key: "category", aliases: []string{"category", "categoría", "categoria"}},
	{key: "normal", aliases: []string{"normal", "precio normal"}, required: true},
	{key: "social", aliases: []string{"social", "precio social"}},
	{key: "special", aliases: []string{"special", "especial", "precio especial"}},
	{key: "commission", aliases: []string{"commission", "comisión", "comision", "% comisión"}},
}

type colIndex map[string]int

// Parsed is the outcome of reading a price list.
type Parsed struct {
	Charset string
	Studies []*Study
	Skipped []RowError
}

// ParseCSV reads a semicolon separated price list. Preamble lines before the
// header are ignored; data rows that cannot be read are reported in Skipped
// instead of failing the whole file.
func ParseCSV(r io.Reader) (*Parsed, error) {
	decoded, err := enc.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	reader := csv.NewReader(decoded)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	cols, headerIdx, ok := detectHeader(rows)
	if !ok {
		return nil, fmt.Errorf("no price list header found: expected code, name and normal columns")
	}

	out := &Parsed{Charset: decoded.Charset}
	seen := make(map[string]int)

	for i, row := range rows[headerIdx+1:] {
		rowNum := headerIdx + i + 2

		if blank(row) {
			continue
		}

		study, err := parseRow(cols, row)
		if err != nil {
			out.Skipped = append(out.Skipped, RowError{Row: rowNum, Reason: err.Error()})
			continue
		}

		// A later row with the same code wins, as the upsert would.
		if prev, dup := seen[study.Code]; dup {
			out.Studies[prev] = study
			continue
		}

		seen[study.Code] = len(out.Studies)
		out.Studies = append(out.Studies, study)
	}

	return out, nil
}

func detectHeader(rows [][]string) (colIndex, int, bool) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := strings.ToLower(strings.TrimSpace(cell))
			if name == "" {
				continue
			}

			for _, c := range columns {
				for _, alias := range c.aliases {
					if name == alias {
						cols[c.key] = i
					}
				}
			}
		}

		if hasRequired(cols) {
			return cols, rowIdx, true
		}
	}

	return nil, 0, false
}

func hasRequired(cols colIndex) bool {
	for _, c := range columns {
		if _, ok := cols[c.key]; c.required && !ok {
			return false
		}
	}

	return true
}

func parseRow(cols colIndex, row []string) (*Study, error) {
	cell := func(key string) string {
		idx, ok := cols[key]
		if !ok {
			return ""
		}

		return cellValue(row, idx)
	}

	code := strings.ToUpper(cell("code"))
	if code == "" {
		return nil, fmt.Errorf("missing code")
	}

	name := cell("name")
	if name == "" {
		return nil, fmt.Errorf("missing name")
	}

	study := &Study{Code: code, Name: name, Category: cell("category"), Active: true}

	prices := []struct {
		key      string
		dst      *decimal.Decimal
		fallback *decimal.Decimal
	}{
		{key: "normal", dst: &study.PriceNormal},
		{key: "social", dst: &study.PriceSocial, fallback: &study.PriceNormal},
		{key: "special", dst: &study.PriceSpecial, fallback: &study.PriceNormal},
		{key: "commission", dst: &study.CommissionPct},
	}

	for _, p := range prices {
		s := cell(p.key)
		if s == "" {
			if p.key == "normal" {
				return nil, fmt.Errorf("missing normal price")
			}

			if p.fallback != nil {
				*p.dst = *p.fallback
			}

			continue
		}

		d, err := parseAmount(s)
		if err != nil {
			return nil, fmt.Errorf("%s: %q is not an amount", p.key, s)
		}

		if d.IsNegative() {
			return nil, fmt.Errorf("%s: cannot be negative", p.key)
		}

		*p.dst = d
	}

	if study.CommissionPct.GreaterThan(decimal.NewFromInt(100)) {
		return nil, fmt.Errorf("commission: %s exceeds 100", study.CommissionPct)
	}

	return study, nil
}

// parseAmount accepts "1,234.50", "1.234,50", "Q 150" and "10%". When both
// separators appear the last one is the decimal mark; a lone comma is a
// thousands separator only when exactly three digits follow it.
func parseAmount(s string) (decimal.Decimal, error) {
	clean := strings.NewReplacer("Q", "", "q", "", "%", "", " ", "", " ", "").Replace(s)

	dot := strings.LastIndex(clean, ".")
	comma := strings.LastIndex(clean, ",")

	switch {
	case dot >= 0 && comma >= 0 && comma > dot:
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.Replace(clean, ",", ".", 1)
	case dot >= 0 && comma >= 0:
		clean = strings.ReplaceAll(clean, ",", "")
	case comma >= 0 && strings.Count(clean, ",") == 1 && len(clean)-comma != 4:
		clean = strings.Replace(clean, ",", ".", 1)
	case comma >= 0:
		clean = strings.ReplaceAll(clean, ",", "")
	}

	return decimal.NewFromString(clean)
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}

	return true
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
