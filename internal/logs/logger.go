package logs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options describes where and how verbosely the process logs.
type Options struct {
	Level      string
	FilePath   string
	MaxSize    int
	MaxBackups int
	Compress   bool
	// Hooks are attached before the first line is logged.
	Hooks []logrus.Hook
}

// InitLogger builds a JSON structured logger from opts.
// Without a file path, output goes to stderr so command output on stdout stays clean.
func InitLogger(opts Options) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	output, outErr := buildOutput(opts)
	if outErr != nil {
		fmt.Fprintf(os.Stderr, "logger_fallback: %v\n", outErr)
	}

	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetOutput(output)
	logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	for _, hook := range opts.Hooks {
		logger.AddHook(hook)
	}

	logrus.SetFormatter(logger.Formatter)
	logrus.SetOutput(logger.Out)
	logrus.SetLevel(logger.GetLevel())

	if outErr != nil {
		logger.WithFields(Fields("logger_fallback", opts.FilePath)).Warn(outErr.Error())
	}

	return logger, nil
}

// Discard returns a logger that drops everything. Handy as a default collaborator.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

// buildOutput picks the log writer; on failure it degrades to stderr and reports why.
func buildOutput(opts Options) (io.Writer, error) {
	if opts.FilePath == "" {
		return os.Stderr, nil
	}

	dir := filepath.Dir(opts.FilePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return os.Stderr, fmt.Errorf("create log directory: %w", err)
	}

	return &lumberjack.Logger{
		Filename:   opts.FilePath,
		MaxSize:    opts.MaxSize,
		MaxBackups: opts.MaxBackups,
		Compress:   opts.Compress,
		LocalTime:  true,
	}, nil
}
