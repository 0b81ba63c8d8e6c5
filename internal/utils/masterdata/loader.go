// Package masterdata parses the tabular master-data source files (chart of
// accounts, executing units, funding sources, budget categories) used by the
// seed service. The files are CSV exports of the yearly accounting workbook
// and carry Spanish or English headers depending on which tool produced them.
package masterdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chuxolatouz/deu-sisgead-be/internal/core/domain"
)

// AccountRow is one parsed chart-of-accounts line.
type AccountRow struct {
	Code        string
	Description string
	Group       domain.AccountGroup
	IsHeader    bool
	Level       int
	ParentCode  string
}

// UnitRow is one parsed executing-unit line.
type UnitRow struct {
	Code        string
	Description string
	Level       int
	ParentCode  string
}

// CodeDescriptionRow is one parsed line of the flat code/description tables
// (funding sources, budget categories).
type CodeDescriptionRow struct {
	Code        string
	Description string
}

// LoadAccounts parses the accounts CSV. Rows without a code are skipped.
// Group defaults to EGRESO when absent; a row is a header account when the
// es_titular column is truthy or the tipo column is "T".
func LoadAccounts(r io.Reader) ([]AccountRow, error) {
	records, err := readRecords(r)
	if err != nil {
		return nil, err
	}

	rows := make([]AccountRow, 0, len(records))
	for _, rec := range records {
		code := rec.first("código", "codigo", "code")
		if code == "" {
			continue
		}
		group := domain.AccountGroup(strings.ToUpper(rec.first("grupo", "group")))
		if group == "" {
			group = domain.GroupEgreso
		}
		rows = append(rows, AccountRow{
			Code:        code,
			Description: rec.first("descripción", "descripcion", "description"),
			Group:       group,
			IsHeader:    isTruthy(rec.first("es_titular")) || strings.EqualFold(rec.first("tipo"), "T"),
			Level:       parseLevel(rec.first("nivel", "level")),
			ParentCode:  rec.first("padre", "parent_code"),
		})
	}
	return rows, nil
}

// LoadUnits parses the executing-units CSV. Rows without a code are skipped.
func LoadUnits(r io.Reader) ([]UnitRow, error) {
	records, err := readRecords(r)
	if err != nil {
		return nil, err
	}

	rows := make([]UnitRow, 0, len(records))
	for _, rec := range records {
		code := rec.first("codigo", "code")
		if code == "" {
			continue
		}
		rows = append(rows, UnitRow{
			Code:        code,
			Description: rec.first("descripcion", "description"),
			Level:       parseLevel(rec.first("nivel", "level")),
			ParentCode:  rec.first("padre_codigo", "parent_code"),
		})
	}
	return rows, nil
}

// LoadCodeDescriptions parses a flat code/description CSV.
func LoadCodeDescriptions(r io.Reader) ([]CodeDescriptionRow, error) {
	records, err := readRecords(r)
	if err != nil {
		return nil, err
	}

	rows := make([]CodeDescriptionRow, 0, len(records))
	for _, rec := range records {
		code := rec.first("codigo", "code")
		if code == "" {
			continue
		}
		rows = append(rows, CodeDescriptionRow{
			Code:        code,
			Description: rec.first("descripcion", "description"),
		})
	}
	return rows, nil
}

// record maps lowercased header names to trimmed cell values.
type record map[string]string

func (r record) first(headers ...string) string {
	for _, h := range headers {
		if v, ok := r[h]; ok && v != "" {
			return v
		}
	}
	return ""
}

func readRecords(r io.Reader) ([]record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	raw, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	headers := make([]string, len(raw[0]))
	for i, h := range raw[0] {
		// Excel exports prepend a BOM to the first header cell.
		headers[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF")))
	}

	records := make([]record, 0, len(raw)-1)
	for _, line := range raw[1:] {
		rec := record{}
		empty := true
		for i, cell := range line {
			if i >= len(headers) {
				break
			}
			v := strings.TrimSpace(cell)
			if v != "" {
				empty = false
			}
			rec[headers[i]] = v
		}
		if !empty {
			records = append(records, rec)
		}
	}
	return records, nil
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "t", "yes", "si":
		return true
	}
	return false
}

// parseLevel tolerates levels exported as floats ("3.0").
func parseLevel(v string) int {
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return int(f)
}
