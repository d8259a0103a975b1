// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(t *testing.T) string
		want   map[string]string
		errMsg string
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, APIKeyFile, "  fw.example.org:abc123  \n")
				writeFile(t, dir, "sandbox-api-key", "dev.example.org:xyz")
				return dir
			},
			want: map[string]string{
				APIKeyFile:        "fw.example.org:abc123",
				"sandbox-api-key": "dev.example.org:xyz",
			},
		},
		{
			name: "returns empty map for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: map[string]string{},
		},
		{
			name: "skips empty files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, APIKeyFile, "valid-key")
				writeFile(t, dir, "empty-key", "")
				writeFile(t, dir, "whitespace-only", "   \n\t  ")
				return dir
			},
			want: map[string]string{
				APIKeyFile: "valid-key",
			},
		},
		{
			name: "skips dotfiles",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden-key", "secret")
				writeFile(t, dir, APIKeyFile, "fw:real")
				return dir
			},
			want: map[string]string{
				APIKeyFile: "fw:real",
			},
		},
		{
			name: "skips subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, APIKeyFile, "fw:123")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
				return dir
			},
			want: map[string]string{
				APIKeyFile: "fw:123",
			},
		},
		{
			name: "returns empty map for empty directory",
			setup: func(t *testing.T) string {
				return t.TempDir()
			},
			want: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := tt.setup(t)
			got, err := Load(dir, nil)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadUnreadableFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good-key", "value123")

	// Create a file then remove read permission.
	badPath := filepath.Join(dir, "bad-key")
	require.NoError(t, os.WriteFile(badPath, []byte("secret"), 0o000))
	t.Cleanup(func() { os.Chmod(badPath, 0o644) })

	core, logs := observer.New(zapcore.WarnLevel)
	got, err := Load(dir, zap.New(core).Sugar())
	require.NoError(t, err)
	// The good file should still be returned; the bad file is skipped with a warning.
	assert.Equal(t, "value123", got["good-key"])
	_, hasBad := got["bad-key"]
	assert.False(t, hasBad, "unreadable file should not appear in result")
	if os.Geteuid() != 0 {
		assert.Equal(t, 1, logs.FilterMessage("could not read secret").Len())
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	writeFile(t, dir, ".env", "NACC_QC_TEST_DOTENV=from-file\nNACC_QC_TEST_PRESET=from-file\n")
	t.Setenv("NACC_QC_TEST_PRESET", "from-env")
	t.Cleanup(func() { os.Unsetenv("NACC_QC_TEST_DOTENV") })

	require.NoError(t, LoadDotEnv(envFile, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "from-file", os.Getenv("NACC_QC_TEST_DOTENV"))
	assert.Equal(t, "from-env", os.Getenv("NACC_QC_TEST_PRESET"))
}

func TestLoadDotEnvMalformed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.env", "BAD-KEY=value\n")
	assert.Error(t, LoadDotEnv(filepath.Join(dir, "bad.env")))
}

func TestAPIKey(t *testing.T) {
	loaded := map[string]string{APIKeyFile: "file:key"}

	t.Setenv(APIKeyEnv, "")
	assert.Equal(t, "flag:key", APIKey("flag:key", loaded))
	assert.Equal(t, "file:key", APIKey("", loaded))
	assert.Equal(t, "", APIKey("", nil))

	t.Setenv(APIKeyEnv, "env:key")
	assert.Equal(t, "env:key", APIKey("", loaded))
	assert.Equal(t, "flag:key", APIKey("flag:key", loaded))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
