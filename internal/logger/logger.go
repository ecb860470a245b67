package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config содержит настройки для логгера.
type Config struct {
	Level      string // Уровень логирования (debug, info, warn, error)
	Encoding   string // Формат вывода (json или console)
	OutputPath string // Путь к файлу лога (если пусто, используется stdout)
}

// New создает новый экземпляр zap.Logger на основе конфигурации.
// Caller и стектрейсы отключены: сервис логирует много и часто.
func New(cfg Config) (*zap.Logger, error) {
	sink, err := openSink(cfg.OutputPath)
	if err != nil {
		return nil, err
	}

	core := zapcore.NewCore(newEncoder(cfg.Encoding), sink, parseLevel(cfg.Level))
	return zap.New(core, zap.ErrorOutput(zapcore.Lock(os.Stderr))), nil
}

// parseLevel разбирает уровень логирования, откатываясь на info.
func parseLevel(raw string) zap.AtomicLevel {
	if raw == "" {
		return zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	level, err := zap.ParseAtomicLevel(strings.ToLower(raw))
	if err != nil {
		// Логгер еще не создан, предупреждаем через stderr
		fmt.Fprintf(os.Stderr, "Invalid log level '%s', using 'info'. Error: %v\n", raw, err)
		return zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return level
}

// newEncoder возвращает кодировщик записей: console по запросу, иначе json.
func newEncoder(encoding string) zapcore.Encoder {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	if strings.ToLower(encoding) == "console" {
		return zapcore.NewConsoleEncoder(encoderCfg)
	}
	return zapcore.NewJSONEncoder(encoderCfg)
}

// openSink открывает место назначения логов: файл или stdout.
func openSink(path string) (zapcore.WriteSyncer, error) {
	if path == "" || path == "stdout" {
		return zapcore.Lock(os.Stdout), nil
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log output %s: %w", path, err)
	}
	return zapcore.Lock(file), nil
}
