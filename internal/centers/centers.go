// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package centers resolves ADCIDs to the platform group of each center.
//
// Center information is kept in the custom metadata of a well-known
// record (nacc/metadata) under info.centers, keyed by ADCID:
//
//	info.centers.<adcid>.group
package centers

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/cockroachdb/errors"
)

// DefaultMetadataPath is the lookup path of the record holding center data.
const DefaultMetadataPath = "nacc/metadata"

const (
	centersKey = "centers"
	groupKey   = "group"
)

// MetadataReader reads the current custom metadata of a platform record.
type MetadataReader interface {
	// LookupInfo resolves path and returns the record's info after
	// reloading it. found is false when no record exists at path.
	LookupInfo(ctx context.Context, path string) (info map[string]any, found bool, err error)
}

// CenterError reports that center information could not be resolved.
type CenterError struct {
	msg string
}

func (e *CenterError) Error() string { return e.msg }

func centerErrorf(format string, args ...any) error {
	return errors.WithStack(&CenterError{msg: fmt.Sprintf(format, args...)})
}

// Center is one entry of the centers table.
type Center struct {
	ADCID string `json:"adcid" yaml:"adcid"`
	Group string `json:"group" yaml:"group"`
}

// Lookup resolves ADCIDs against the record at Path.
type Lookup struct {
	Reader MetadataReader
	// Path defaults to DefaultMetadataPath.
	Path string
}

func (l Lookup) path() string {
	if l.Path == "" {
		return DefaultMetadataPath
	}
	return l.Path
}

// GetCenterID returns the group ID of the center with the given ADCID.
func GetCenterID(ctx context.Context, reader MetadataReader, adcid string) (string, error) {
	return Lookup{Reader: reader}.CenterID(ctx, adcid)
}

// CenterID returns the group ID of the center with the given ADCID. It
// fails with a *CenterError when the metadata record is missing, has no
// centers table, or has no entry for adcid.
func (l Lookup) CenterID(ctx context.Context, adcid string) (string, error) {
	table, err := l.centers(ctx)
	if err != nil {
		return "", err
	}
	entry, ok := table[adcid]
	if !ok {
		return "", centerErrorf("no center with ADCID %s in %s", adcid, l.path())
	}
	group, ok := groupOf(entry)
	if !ok {
		return "", centerErrorf("center with ADCID %s in %s has no group", adcid, l.path())
	}
	return group, nil
}

// Centers lists every center with a group, ordered by ADCID.
func (l Lookup) Centers(ctx context.Context) ([]Center, error) {
	table, err := l.centers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Center, 0, len(table))
	for adcid, entry := range table {
		if group, ok := groupOf(entry); ok {
			out = append(out, Center{ADCID: adcid, Group: group})
		}
	}
	sort.Slice(out, func(i, j int) bool { return lessADCID(out[i].ADCID, out[j].ADCID) })
	return out, nil
}

func (l Lookup) centers(ctx context.Context) (map[string]any, error) {
	info, found, err := l.Reader.LookupInfo(ctx, l.path())
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", l.path())
	}
	if !found {
		return nil, centerErrorf("failed to find %s project", l.path())
	}
	table, ok := toMap(info[centersKey])
	if !ok {
		return nil, centerErrorf("no '%s' key in %s", centersKey, l.path())
	}
	return table, nil
}

func groupOf(entry any) (string, bool) {
	m, ok := toMap(entry)
	if !ok {
		return "", false
	}
	group, ok := m[groupKey].(string)
	return group, ok && group != ""
}

// toMap accepts the mapping types produced by JSON and YAML decoders.
// YAML decodes integer keys as ints, so keys are stringified to match
// ADCIDs given on the command line.
func toMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	}
	return nil, false
}

// lessADCID orders numeric ADCIDs numerically and everything else after
// them lexically.
func lessADCID(a, b string) bool {
	na, aerr := strconv.Atoi(a)
	nb, berr := strconv.Atoi(b)
	aok, bok := aerr == nil, berr == nil
	switch {
	case aok && bok:
		return na < nb
	case aok != bok:
		return aok
	default:
		return a < b
	}
}
