// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files
// and from .env files. Each file in the secrets directory represents one
// secret: the filename is the key name and the file contents (trimmed) are
// the value.
//
// Supported key files: flywheel-api-key.
package secrets

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const (
	// APIKeyFile is the secrets file holding the platform API key.
	APIKeyFile = "flywheel-api-key"

	// APIKeyEnv is the environment variable conventionally holding the
	// platform API key.
	APIKeyEnv = "FW_API_KEY"
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files are logged as warnings but do not abort.
func Load(dir string, logger *zap.SugaredLogger) (map[string]string, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, errors.Wrapf(err, "reading secrets directory %s", dir)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warnw("could not read secret", "name", name, "error", err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// LoadDotEnv sets environment variables from the given .env files (".env"
// when none are given). Variables already set are left alone and missing
// files are skipped.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return errors.Wrapf(err, "loading %s", f)
		}
	}
	return nil
}

// APIKey picks the platform API key: explicit wins, then the APIKeyEnv
// environment variable, then the APIKeyFile secret. It returns "" when
// none is set.
func APIKey(explicit string, loaded map[string]string) string {
	if explicit != "" {
		return explicit
	}
	if v := strings.TrimSpace(os.Getenv(APIKeyEnv)); v != "" {
		return v
	}
	return loaded[APIKeyFile]
}
