package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestInitialize(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{name: "JSON output mode", opts: Options{JSON: true}},
		{name: "Console output mode", opts: Options{}},
		{name: "Verbose console", opts: Options{Verbose: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Logger = nil

			if err := Initialize(tt.opts); err != nil {
				t.Fatalf("Initialize() error = %v", err)
			}
			if Logger == nil {
				t.Error("Initialize() did not set Logger")
			}
		})
	}
}

func TestNewConsoleLevels(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	logger.Debugw("hidden")
	logger.Infow("shown", "project", "grp/proj")
	_ = logger.Sync()

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug entry written at info level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "grp/proj") {
		t.Errorf("info entry missing: %q", out)
	}
}

func TestNewVerbose(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Output: &buf, Verbose: true})
	if err != nil {
		t.Fatal(err)
	}
	logger.Debugw("detail")
	_ = logger.Sync()

	if !strings.Contains(buf.String(), "detail") {
		t.Errorf("debug entry missing in verbose mode: %q", buf.String())
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Output: &buf, JSON: true})
	if err != nil {
		t.Fatal(err)
	}
	logger.Infow("loaded", "files", 3)
	_ = logger.Sync()

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["msg"] != "loaded" || entry["files"] != float64(3) {
		t.Errorf("entry = %v", entry)
	}
}
