// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package qc reads the QC metadata gears attach to platform files and
// flattens it into error and status rows.
//
// QC metadata lives at info.qc on a file and is keyed by gear name:
//
//	info.qc.<gear>.validation.state  pass | fail (any case)
//	info.qc.<gear>.validation.data   list of error entries
//
// Its shape varies across gears and over time, so every accessor here is
// total: a missing or mistyped value reads as empty, never as an error.
package qc

import (
	"sort"

	"github.com/naccdata/nacc-common/pkg/types"
)

const (
	qcKey         = "qc"
	validationKey = "validation"
	stateKey      = "state"
	dataKey       = "data"
	locationKey   = "location"
)

// Section is the QC metadata of one file, keyed by gear name.
type Section map[string]any

// SectionOf returns info.qc for the file, or an empty Section.
func SectionOf(file types.FileRecord) Section {
	return Section(asMap(file.Info[qcKey]))
}

// IsEmpty reports whether no gear has recorded QC metadata.
func (s Section) IsEmpty() bool {
	return len(s) == 0
}

// Gears returns the gear names in the section, sorted.
func (s Section) Gears() []string {
	gears := make([]string, 0, len(s))
	for g := range s {
		gears = append(gears, g)
	}
	sort.Strings(gears)
	return gears
}

// Validation returns <gear>.validation, or an empty Validation.
func (s Section) Validation(gear string) Validation {
	return Validation(asMap(asMap(s[gear])[validationKey]))
}

// Validation is the validation record of one gear.
type Validation map[string]any

// Status returns the normalized validation state.
func (v Validation) Status() types.QCStatus {
	return types.ParseQCStatus(v[stateKey])
}

// Entries returns the error entries in validation.data. Items that are not
// mappings are skipped.
func (v Validation) Entries() []ErrorEntry {
	list := asList(v[dataKey])
	entries := make([]ErrorEntry, 0, len(list))
	for _, item := range list {
		if m := asMap(item); m != nil {
			entries = append(entries, ErrorEntry(m))
		}
	}
	return entries
}

// ErrorEntry is a single error reported by a gear.
type ErrorEntry map[string]any

// Flatten returns a copy of the entry with a nested location mapping
// merged into the top level. Location keys replace same-named entry keys
// and the location key itself is dropped, as is a null location. A
// location that is not a mapping is left in place. The receiver is not
// modified.
func (e ErrorEntry) Flatten() map[string]any {
	out := make(map[string]any, len(e))
	for k, v := range e {
		out[k] = v
	}
	raw, ok := out[locationKey]
	if !ok {
		return out
	}
	if raw == nil {
		delete(out, locationKey)
		return out
	}
	loc, isMap := toMap(raw)
	if !isMap {
		return out
	}
	delete(out, locationKey)
	for k, v := range loc {
		out[k] = v
	}
	return out
}

// asMap returns v as a string-keyed mapping, or nil.
func asMap(v any) map[string]any {
	m, _ := toMap(v)
	return m
}

// asList returns v as a list, or nil.
func asList(v any) []any {
	switch l := v.(type) {
	case []any:
		return l
	case []map[string]any:
		out := make([]any, len(l))
		for i, m := range l {
			out[i] = m
		}
		return out
	default:
		return nil
	}
}

// toMap converts the mapping types produced by JSON and YAML decoders.
func toMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case types.Row:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			key, ok := k.(string)
			if !ok {
				continue
			}
			out[key] = val
		}
		return out, true
	default:
		return nil, false
	}
}
