package health

import "context"

// Pinger проверяет доступность хранилища
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc адаптер функции к Pinger
type PingFunc func(ctx context.Context) error

// Ping вызывает f
func (f PingFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
