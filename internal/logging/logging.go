// Package logging builds the process logger. Logs go to stderr so that
// reports written to stdout stay clean.
package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the process-wide logger. It is a no-op until Initialize is
// called.
var Logger *zap.SugaredLogger

func init() {
	Logger = zap.NewNop().Sugar()
}

// Options selects the logger's format and level.
type Options struct {
	// JSON switches from console to structured JSON output.
	JSON bool
	// Verbose lowers the level from info to debug.
	Verbose bool
	// Output defaults to stderr.
	Output io.Writer
}

// Initialize replaces Logger according to opts.
func Initialize(opts Options) error {
	logger, err := New(opts)
	if err != nil {
		return err
	}
	Logger = logger
	return nil
}

// New builds a logger without touching the package state.
func New(opts Options) (*zap.SugaredLogger, error) {
	level := zap.InfoLevel
	if opts.Verbose {
		level = zap.DebugLevel
	}

	if opts.JSON && opts.Output == nil {
		config := zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(level)
		config.OutputPaths = []string{"stderr"}
		config.ErrorOutputPaths = []string{"stderr"}
		logger, err := config.Build()
		if err != nil {
			return nil, err
		}
		return logger.Sugar(), nil
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	var encoder zapcore.Encoder
	if opts.JSON {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.TimeKey = ""
		cfg.CallerKey = ""
		encoder = zapcore.NewConsoleEncoder(cfg)
	}
	return zap.New(zapcore.NewCore(encoder, zapcore.AddSync(out), level)).Sugar(), nil
}

// Sync flushes buffered log entries.
func Sync() {
	_ = Logger.Sync()
}
