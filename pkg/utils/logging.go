package utils

import (
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.Mutex
	logger *zap.Logger
)

// Logger returns the process logger, built from LOG_FILE and LOG_LEVEL on
// first use unless Configure ran before.
func Logger() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	if logger != nil {
		return logger
	}
	logger = build(os.Getenv("LOG_FILE"), os.Getenv("LOG_LEVEL"))
	return logger
}

// Configure replaces the process logger. An empty file logs JSON to stdout
// only; otherwise entries are teed to the file as well.
func Configure(file, level string) *zap.Logger {
	l := build(file, level)
	mu.Lock()
	logger = l
	mu.Unlock()
	return l
}

func build(logFile, level string) *zap.Logger {
	lvl := zapcore.InfoLevel
	if level != "" {
		if err := lvl.Set(level); err != nil {
			lvl = zapcore.InfoLevel
		}
	}
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	enc := zapcore.NewJSONEncoder(encCfg)
	consoleCore := zapcore.NewCore(enc, zapcore.AddSync(os.Stdout), lvl)
	if logFile == "" {
		return zap.New(consoleCore, zap.AddCaller())
	}
	_ = os.MkdirAll(filepath.Dir(logFile), 0o755)
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		l := zap.New(consoleCore, zap.AddCaller())
		l.Warn("log file unavailable, logging to stdout only", zap.String("file", logFile), zap.Error(err))
		return l
	}
	fileCore := zapcore.NewCore(enc, zapcore.AddSync(f), lvl)
	return zap.New(zapcore.NewTee(fileCore, consoleCore), zap.AddCaller())
}
