// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for nacc-common: file
// metadata records read from the platform, the flat row shapes produced
// from their QC metadata, and configuration.
package types

import (
	"encoding/json"
	"sort"
	"strings"
)

// ErrorHeaderNames is the canonical column order for error reports. Rows
// may carry keys outside this list; renderers append those as extra columns.
var ErrorHeaderNames = []string{
	"type",
	"ptid",
	"visitnum",
	"code",
	"line",
	"column_name",
	"key_path",
	"id",
	"name",
	"gear",
	"container_id",
	"flywheel_path",
	"value",
	"expected",
	"message",
	"timestamp",
}

// StatusHeaderNames is the column order for status reports.
var StatusHeaderNames = []string{"name", "id", "gear", "status"}

// FileRecord is a file attached to a platform container. Info is the
// opaque custom metadata the platform stores for the file; QC results live
// under info.qc.
type FileRecord struct {
	// ID is the platform file identifier.
	ID string `json:"id" yaml:"id"`

	// Name is the file name within its container.
	Name string `json:"name" yaml:"name"`

	// Info holds the file's custom metadata.
	Info map[string]any `json:"info,omitempty" yaml:"info,omitempty"`
}

// QCStatus is the normalized outcome a gear recorded for a file.
type QCStatus string

const (
	StatusPass  QCStatus = "pass"
	StatusFail  QCStatus = "fail"
	StatusUnset QCStatus = ""
)

// ParseQCStatus normalizes a raw validation state. Comparison is
// case-insensitive; anything other than pass or fail, including a missing
// or non-string value, is StatusUnset.
func ParseQCStatus(raw any) QCStatus {
	s, ok := raw.(string)
	if !ok {
		return StatusUnset
	}
	switch strings.ToLower(s) {
	case string(StatusPass):
		return StatusPass
	case string(StatusFail):
		return StatusFail
	default:
		return StatusUnset
	}
}

// IsSet reports whether the status is pass or fail.
func (s QCStatus) IsSet() bool {
	return s != StatusUnset
}

// Value returns the status as a row value: the status string, or nil when
// unset so that serialized rows carry null rather than an empty string.
func (s QCStatus) Value() any {
	if !s.IsSet() {
		return nil
	}
	return string(s)
}

// MarshalJSON encodes an unset status as null.
func (s QCStatus) MarshalJSON() ([]byte, error) {
	if !s.IsSet() {
		return []byte("null"), nil
	}
	return json.Marshal(string(s))
}

// MarshalYAML encodes an unset status as null.
func (s QCStatus) MarshalYAML() (any, error) {
	return s.Value(), nil
}

// Row is one flat report row keyed by column name.
type Row map[string]any

// Extra returns the row's keys that are not in headers, sorted.
func (r Row) Extra(headers []string) []string {
	known := make(map[string]bool, len(headers))
	for _, h := range headers {
		known[h] = true
	}
	var extra []string
	for k := range r {
		if !known[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return extra
}

// StatusRow is the QC status one gear recorded for one file.
type StatusRow struct {
	Name   string   `json:"name" yaml:"name"`
	ID     string   `json:"id" yaml:"id"`
	Gear   string   `json:"gear" yaml:"gear"`
	Status QCStatus `json:"status" yaml:"status"`
}

// Row converts the status row to its flat form.
func (s StatusRow) Row() Row {
	return Row{
		"name":   s.Name,
		"id":     s.ID,
		"gear":   s.Gear,
		"status": s.Status.Value(),
	}
}

// StatusRowsToRows converts status rows to flat rows.
func StatusRowsToRows(rows []StatusRow) []Row {
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = r.Row()
	}
	return out
}
