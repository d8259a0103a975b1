// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const projectExport = `group: grpA
project: ingest-form
files:
  - id: f1
    name: a.csv
    info:
      qc:
        form-qc-checker:
          validation:
            state: FAIL
            data:
              - code: e1
                message: bad value
                location:
                  key_path: birthyr
  - id: f2
    name: b.csv
    info:
      qc:
        form-qc-checker:
          validation:
            state: PASS
            data:
              - code: w1
`

const metadataExport = `group: nacc
project: metadata
info:
  centers:
    "123":
      group: grpA
    45:
      group: grpB
files: []
`

// execute runs the CLI with args and returns stdout. Flags are reset
// first because cobra keeps flag values between executions.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--secrets-dir", t.TempDir(), "--env-file", filepath.Join(t.TempDir(), ".env")))
	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func writeExport(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestErrorsFromExport(t *testing.T) {
	input := writeExport(t, t.TempDir(), "grpA_ingest-form.yaml", projectExport)

	out, err := execute(t, "errors", "--input", input, "--format", "json")
	require.NoError(t, err)

	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "e1", rows[0]["code"])
	assert.Equal(t, "birthyr", rows[0]["key_path"])
	assert.Equal(t, "a.csv", rows[0]["name"])
}

func TestErrorsIncludePassed(t *testing.T) {
	input := writeExport(t, t.TempDir(), "p.yaml", projectExport)

	out, err := execute(t, "errors", "--input", input, "--format", "csv", "--include-passed")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "type,ptid,visitnum,code,"))
}

func TestStatusFromExport(t *testing.T) {
	input := writeExport(t, t.TempDir(), "p.yaml", projectExport)

	out, err := execute(t, "status", "--input", input, "--format", "csv")
	require.NoError(t, err)
	assert.Equal(t,
		"name,id,gear,status\n"+
			"a.csv,f1,form-qc-checker,fail\n"+
			"b.csv,f2,form-qc-checker,pass\n",
		out)
}

func TestErrorsRequiresProject(t *testing.T) {
	_, err := execute(t, "errors")
	assert.Error(t, err)
}

func TestCenterFromExports(t *testing.T) {
	dir := t.TempDir()
	writeExport(t, dir, "nacc_metadata.yaml", metadataExport)

	out, err := execute(t, "center", "123", "--input-dir", dir)
	require.NoError(t, err)
	assert.Equal(t, "grpA\n", out)

	_, err = execute(t, "center", "999", "--input-dir", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no center with ADCID 999")

	out, err = execute(t, "center", "list", "--input-dir", dir, "--format", "csv")
	require.NoError(t, err)
	assert.Equal(t, "adcid,group\n45,grpB\n123,grpA\n", out)
}

func TestSaveAndHistory(t *testing.T) {
	t.Setenv("NACC_QC_STORE_DIR", filepath.Join(t.TempDir(), "reports"))
	input := writeExport(t, t.TempDir(), "p.yaml", projectExport)

	_, err := execute(t, "status", "--input", input, "--format", "csv", "--save")
	require.NoError(t, err)

	out, err := execute(t, "history", "show", "--project", "grpA/ingest-form", "--kind", "status", "--format", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "a.csv,f1,form-qc-checker,fail")

	out, err = execute(t, "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "grpA/ingest-form")
}

func TestHistoryShowRejectsUnknownStatus(t *testing.T) {
	t.Setenv("NACC_QC_STORE_DIR", filepath.Join(t.TempDir(), "reports"))
	input := writeExport(t, t.TempDir(), "p.yaml", projectExport)

	_, err := execute(t, "status", "--input", input, "--format", "csv", "--save")
	require.NoError(t, err)

	_, err = execute(t, "history", "show", "--project", "grpA/ingest-form", "--kind", "status", "--status", "garbage")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown status "garbage"`)

	out, err := execute(t, "history", "show", "--project", "grpA/ingest-form", "--kind", "status",
		"--status", "FAIL", "--format", "csv")
	require.NoError(t, err)
	assert.Equal(t, "name,id,gear,status\na.csv,f1,form-qc-checker,fail\n", out)
}

// closeErrFs creates files whose Close fails, as a full disk would on flush.
type closeErrFs struct{ afero.Fs }

func (fs closeErrFs) Create(name string) (afero.File, error) {
	f, err := fs.Fs.Create(name)
	if err != nil {
		return nil, err
	}
	return closeErrFile{f}, nil
}

type closeErrFile struct{ afero.File }

func (closeErrFile) Close() error { return errors.New("no space left on device") }

func useFs(t *testing.T, fs afero.Fs) {
	t.Helper()
	orig := osFs
	osFs = fs
	t.Cleanup(func() { osFs = orig })
}

func TestReportToFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	useFs(t, fs)
	require.NoError(t, afero.WriteFile(fs, "/in/p.yaml", []byte(projectExport), 0o644))

	_, err := execute(t, "status", "--input", "/in/p.yaml", "--format", "csv", "--output", "/out/status.csv")
	require.NoError(t, err)

	data, err := afero.ReadFile(fs, "/out/status.csv")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "name,id,gear,status\n"))
}

func TestReportCloseErrorFails(t *testing.T) {
	mem := afero.NewMemMapFs()
	useFs(t, closeErrFs{mem})
	require.NoError(t, afero.WriteFile(mem, "/in/p.yaml", []byte(projectExport), 0o644))

	_, err := execute(t, "status", "--input", "/in/p.yaml", "--format", "csv", "--output", "/out/status.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "closing /out/status.csv")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "nacc-qc dev\n", out)
}
