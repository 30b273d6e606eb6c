package log

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Logger *zap.Logger

const (
	logFileName = "app.log"
	logDirEnv   = "SOUNDBED_LOG_DIR"
)

var getenv = os.Getenv

func InitLogger() {
	logDir := ResolveLogDir()

	if err := os.MkdirAll(logDir, 0o755); err != nil {
		panic("unable to create log directory: " + err.Error())
	}

	logFilePath := filepath.Join(logDir, logFileName)
	file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		panic("unable to open log file: " + err.Error())
	}

	fileSyncer := zapcore.AddSync(file)
	consoleSyncer := zapcore.AddSync(os.Stdout)

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), fileSyncer, zap.DebugLevel),      // file (JSON)
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), consoleSyncer, zap.InfoLevel), // console
	)

	Logger = zap.New(core, zap.AddCaller())
}

// ResolveLogDir returns the directory log files are written to. The
// SOUNDBED_LOG_DIR environment variable overrides the default "logs".
func ResolveLogDir() string {
	if dir := strings.TrimSpace(getenv(logDirEnv)); dir != "" {
		return dir
	}
	return "logs"
}

func ResolveLogFilePath() string {
	return filepath.Join(ResolveLogDir(), logFileName)
}

func GetLogger() *zap.Logger {
	if Logger == nil {
		Logger = zap.NewNop()
	}
	return Logger
}
