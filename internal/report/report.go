// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report turns extracted QC rows into tables and renders them as
// CSV, JSON, YAML, Excel workbooks, or terminal tables.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/cockroachdb/errors"

	"github.com/naccdata/nacc-common/pkg/types"
)

// Table is a named set of rows with an ordered column list.
type Table struct {
	Name    string
	Headers []string
	Rows    []types.Row
}

// Renderer writes a table in one output format.
type Renderer interface {
	SupportedFormat() types.ReportFormat
	Render(w io.Writer, t *Table) error
}

// ErrorTable builds the error report table. Columns follow
// types.ErrorHeaderNames, then any other keys found in rows, sorted.
func ErrorTable(rows []types.Row) *Table {
	headers := append([]string(nil), types.ErrorHeaderNames...)
	seen := map[string]bool{}
	var extra []string
	for _, row := range rows {
		for _, k := range row.Extra(types.ErrorHeaderNames) {
			if !seen[k] {
				seen[k] = true
				extra = append(extra, k)
			}
		}
	}
	sort.Strings(extra)
	return &Table{Name: "errors", Headers: append(headers, extra...), Rows: rows}
}

// StatusTable builds the status report table.
func StatusTable(rows []types.StatusRow) *Table {
	return &Table{
		Name:    "status",
		Headers: append([]string(nil), types.StatusHeaderNames...),
		Rows:    types.StatusRowsToRows(rows),
	}
}

// Records returns the rows as header-ordered string slices, headers first.
func (t *Table) Records() [][]string {
	records := make([][]string, 0, len(t.Rows)+1)
	records = append(records, append([]string(nil), t.Headers...))
	for _, row := range t.Rows {
		record := make([]string, len(t.Headers))
		for i, h := range t.Headers {
			record[i] = Cell(row[h])
		}
		records = append(records, record)
	}
	return records
}

// Cell formats a row value for text output. Missing and null values are
// empty; mappings and lists are written as compact JSON.
func Cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case types.QCStatus:
		return string(x)
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case map[string]any, []any, types.Row:
		data, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(data)
	default:
		return fmt.Sprint(x)
	}
}

// Registry maps output formats to renderers.
type Registry map[types.ReportFormat]Renderer

// DefaultRegistry returns a registry with every built-in renderer.
func DefaultRegistry() Registry {
	r := Registry{}
	for _, renderer := range []Renderer{
		NewCSVRenderer(),
		NewJSONRenderer(),
		NewYAMLRenderer(),
		NewXLSXRenderer(),
		NewTableRenderer(),
	} {
		r[renderer.SupportedFormat()] = renderer
	}
	return r
}

// Render writes t to w in the given format.
func (r Registry) Render(format types.ReportFormat, w io.Writer, t *Table) error {
	renderer, ok := r[format]
	if !ok {
		return errors.WithHint(
			errors.Newf("unsupported report format %q", format),
			fmt.Sprintf("supported formats: %v", types.ReportFormats),
		)
	}
	if err := renderer.Render(w, t); err != nil {
		return errors.Wrapf(err, "rendering %s report", format)
	}
	return nil
}
