// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"encoding/csv"
	"encoding/json"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"go.yaml.in/yaml/v3"

	"github.com/naccdata/nacc-common/pkg/types"
)

// CSVRenderer writes a header line followed by one line per row.
type CSVRenderer struct{}

func NewCSVRenderer() *CSVRenderer {
	return &CSVRenderer{}
}

func (r *CSVRenderer) SupportedFormat() types.ReportFormat {
	return types.FormatCSV
}

func (r *CSVRenderer) Render(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(t.Records()); err != nil {
		return errors.Wrap(err, "writing CSV")
	}
	return nil
}

// JSONRenderer writes the rows as an indented JSON array of objects.
type JSONRenderer struct{}

func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{}
}

func (r *JSONRenderer) SupportedFormat() types.ReportFormat {
	return types.FormatJSON
}

func (r *JSONRenderer) Render(w io.Writer, t *Table) error {
	rows := t.Rows
	if rows == nil {
		rows = []types.Row{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

// YAMLRenderer writes the rows as a YAML sequence of mappings, with keys
// in column order.
type YAMLRenderer struct{}

func NewYAMLRenderer() *YAMLRenderer {
	return &YAMLRenderer{}
}

func (r *YAMLRenderer) SupportedFormat() types.ReportFormat {
	return types.FormatYAML
}

func (r *YAMLRenderer) Render(w io.Writer, t *Table) error {
	doc := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, row := range t.Rows {
		m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, h := range t.Headers {
			v, ok := row[h]
			if !ok {
				continue
			}
			var val yaml.Node
			if err := val.Encode(v); err != nil {
				return errors.Wrapf(err, "encoding %s", h)
			}
			m.Content = append(m.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: h}, &val)
		}
		doc.Content = append(doc.Content, m)
	}
	if len(doc.Content) == 0 {
		doc.Style = yaml.FlowStyle
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return errors.Wrap(err, "writing YAML")
	}
	return enc.Close()
}

// TableRenderer draws a terminal table.
type TableRenderer struct{}

func NewTableRenderer() *TableRenderer {
	return &TableRenderer{}
}

func (r *TableRenderer) SupportedFormat() types.ReportFormat {
	return types.FormatTable
}

func (r *TableRenderer) Render(w io.Writer, t *Table) error {
	out, err := pterm.DefaultTable.
		WithHasHeader().
		WithData(pterm.TableData(t.Records())).
		Srender()
	if err != nil {
		return errors.Wrap(err, "rendering table")
	}
	_, err = io.WriteString(w, out+"\n")
	return err
}
