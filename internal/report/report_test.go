// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/naccdata/nacc-common/pkg/types"
)

func statusTable() *Table {
	return StatusTable([]types.StatusRow{
		{Name: "a.csv", ID: "f1", Gear: "form-qc-checker", Status: types.StatusFail},
		{Name: "b.csv", ID: "f2", Gear: "identifier-lookup", Status: types.StatusUnset},
	})
}

func TestErrorTable_ExtraColumnsSorted(t *testing.T) {
	table := ErrorTable([]types.Row{
		{"name": "a.csv", "zeta": 1},
		{"name": "b.csv", "alpha": "x", "code": "e1"},
	})
	n := len(types.ErrorHeaderNames)
	require.Len(t, table.Headers, n+2)
	assert.Equal(t, types.ErrorHeaderNames, table.Headers[:n])
	assert.Equal(t, []string{"alpha", "zeta"}, table.Headers[n:])
}

func TestErrorTable_DoesNotAliasHeaderNames(t *testing.T) {
	before := append([]string(nil), types.ErrorHeaderNames...)
	ErrorTable([]types.Row{{"extra": 1}})
	ErrorTable([]types.Row{{"other": 2}})
	assert.Equal(t, before, types.ErrorHeaderNames)
}

func TestCell(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{3, "3"},
		{float64(2), "2"},
		{1.5, "1.5"},
		{true, "true"},
		{types.StatusPass, "pass"},
		{map[string]any{"a": 1}, `{"a":1}`},
		{[]any{"a", 2}, `["a",2]`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Cell(tt.in))
	}
}

func TestCSVRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCSVRenderer().Render(&buf, statusTable()))
	assert.Equal(t,
		"name,id,gear,status\n"+
			"a.csv,f1,form-qc-checker,fail\n"+
			"b.csv,f2,identifier-lookup,\n",
		buf.String())
}

func TestCSVRenderer_EmptyTableWritesHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCSVRenderer().Render(&buf, StatusTable(nil)))
	assert.Equal(t, "name,id,gear,status\n", buf.String())
}

func TestJSONRenderer_UnsetStatusIsNull(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONRenderer().Render(&buf, statusTable()))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "fail", got[0]["status"])
	v, ok := got[1]["status"]
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestJSONRenderer_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONRenderer().Render(&buf, ErrorTable(nil)))
	assert.Equal(t, "[]", strings.TrimSpace(buf.String()))
}

func TestYAMLRenderer_ColumnOrder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewYAMLRenderer().Render(&buf, statusTable()))
	assert.Equal(t,
		"- name: a.csv\n"+
			"  id: f1\n"+
			"  gear: form-qc-checker\n"+
			"  status: fail\n"+
			"- name: b.csv\n"+
			"  id: f2\n"+
			"  gear: identifier-lookup\n"+
			"  status: null\n",
		buf.String())
}

func TestYAMLRenderer_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewYAMLRenderer().Render(&buf, ErrorTable(nil)))
	assert.Equal(t, "[]", strings.TrimSpace(buf.String()))
}

func TestXLSXRenderer(t *testing.T) {
	var buf bytes.Buffer
	table := ErrorTable([]types.Row{
		{"name": "a.csv", "id": "f1", "gear": "g", "code": "e1", "line": 12},
	})
	require.NoError(t, NewXLSXRenderer().Render(&buf, table))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"errors"}, f.GetSheetList())
	rows, err := f.GetRows("errors")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, types.ErrorHeaderNames, rows[0])
	assert.Equal(t, "e1", rows[1][3])
	assert.Equal(t, "12", rows[1][4])
	assert.Equal(t, "f1", rows[1][7])
}

func TestTableRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTableRenderer().Render(&buf, statusTable()))
	out := buf.String()
	for _, s := range []string{"name", "status", "a.csv", "form-qc-checker", "fail"} {
		assert.Contains(t, out, s)
	}
}

func TestRegistry(t *testing.T) {
	reg := DefaultRegistry()
	for _, format := range types.ReportFormats {
		assert.Contains(t, reg, format)
	}

	err := reg.Render("pdf", &bytes.Buffer{}, statusTable())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported report format")
}
