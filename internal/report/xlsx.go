// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"io"

	"github.com/cockroachdb/errors"
	"github.com/xuri/excelize/v2"

	"github.com/naccdata/nacc-common/pkg/types"
)

const defaultSheet = "Sheet1"

// XLSXRenderer writes a workbook with one sheet named after the table.
// The header row is bold and frozen.
type XLSXRenderer struct{}

func NewXLSXRenderer() *XLSXRenderer {
	return &XLSXRenderer{}
}

func (r *XLSXRenderer) SupportedFormat() types.ReportFormat {
	return types.FormatXLSX
}

func (r *XLSXRenderer) Render(w io.Writer, t *Table) error {
	sheet := t.Name
	if sheet == "" {
		sheet = "report"
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheet)
	if err != nil {
		return errors.Wrapf(err, "creating sheet %s", sheet)
	}
	f.SetActiveSheet(index)
	if sheet != defaultSheet {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			return errors.Wrap(err, "removing default sheet")
		}
	}

	if err := f.SetSheetRow(sheet, "A1", &t.Headers); err != nil {
		return errors.Wrap(err, "writing header row")
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.Wrap(err, "creating header style")
	}
	if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
		return errors.Wrap(err, "styling header row")
	}
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return errors.Wrap(err, "freezing header row")
	}

	for i, row := range t.Rows {
		values := make([]any, len(t.Headers))
		for j, h := range t.Headers {
			values[j] = cellValue(row[h])
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return errors.Wrapf(err, "writing row %d", i+1)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return errors.Wrap(err, "writing workbook")
	}
	return nil
}

// cellValue keeps scalars typed so numbers stay numeric in the sheet.
func cellValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case string, bool, int, int64, float64:
		return x
	default:
		return Cell(x)
	}
}
