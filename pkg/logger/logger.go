// Package logger предоставляет printf-style логгер поверх log/slog
// с фильтрацией по уровню и дублированием вывода в файл.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Logger логгер сервиса
type Logger struct {
	slog *slog.Logger
	file *os.File
}

// New создает логгер. Если filePath пустой, логи пишутся только в stdout.
func New(filePath string, level string) (*Logger, error) {
	var (
		out  io.Writer = os.Stdout
		file *os.File
	)

	if filePath != "" {
		if dir := filepath.Dir(filePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create log dir: %w", err)
			}
		}
		f, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		file = f
		out = io.MultiWriter(os.Stdout, f)
	}

	handler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: ParseLevel(level)})
	return &Logger{slog: slog.New(handler), file: file}, nil
}

// NewWithHandler создает логгер с произвольным slog.Handler (используется в тестах)
func NewWithHandler(h slog.Handler) *Logger {
	return &Logger{slog: slog.New(h)}
}

// NewNop возвращает логгер, который ничего не пишет
func NewNop() *Logger {
	return NewWithHandler(slog.DiscardHandler)
}

// ParseLevel конвертирует строковый уровень в slog.Level (по умолчанию info)
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *Logger) log(level slog.Level, format string, v ...interface{}) {
	if !l.slog.Enabled(context.Background(), level) {
		return
	}
	l.slog.Log(context.Background(), level, fmt.Sprintf(format, v...))
}

// Debug пишет сообщение уровня debug
func (l *Logger) Debug(format string, v ...interface{}) { l.log(slog.LevelDebug, format, v...) }

// Info пишет сообщение уровня info
func (l *Logger) Info(format string, v ...interface{}) { l.log(slog.LevelInfo, format, v...) }

// Warn пишет сообщение уровня warn
func (l *Logger) Warn(format string, v ...interface{}) { l.log(slog.LevelWarn, format, v...) }

// Error пишет сообщение уровня error
func (l *Logger) Error(format string, v ...interface{}) { l.log(slog.LevelError, format, v...) }

// Fatal пишет сообщение уровня error и завершает процесс
func (l *Logger) Fatal(format string, v ...interface{}) {
	l.log(slog.LevelError, format, v...)
	_ = l.Close()
	os.Exit(1)
}

// Close закрывает файл логов, если он был открыт
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
