// Package scheduler запускает периодические задачи сервиса (обслуживание слотов,
// генерация расписания) по cron-выражениям.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

var (
	// ErrInvalidSpec некорректное cron-выражение
	ErrInvalidSpec = errors.New("scheduler: invalid cron spec")

	// ErrDuplicateJob задача с таким именем уже зарегистрирована
	ErrDuplicateJob = errors.New("scheduler: job already registered")
)

// Job периодическая задача
type Job func(ctx context.Context) error

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Scheduler обертка над cron с таймаутом на каждый запуск
type Scheduler struct {
	cron    *cron.Cron
	parser  cron.Parser
	timeout time.Duration
	logger  Logger

	mu   sync.Mutex
	jobs map[string]cron.EntryID
}

// New создает планировщик. Выражения принимаются с необязательными секундами
// и дескрипторами (@every 1h, @daily). Пересекающиеся запуски одной задачи пропускаются.
func New(timeout time.Duration, logger Logger) *Scheduler {
	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return &Scheduler{
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.Recover(cronLogger{logger}), cron.SkipIfStillRunning(cronLogger{logger})),
		),
		parser:  parser,
		timeout: timeout,
		logger:  logger,
		jobs:    make(map[string]cron.EntryID),
	}
}

// Add регистрирует задачу
func (s *Scheduler) Add(name, spec string, job Job) error {
	if _, err := s.parser.Parse(spec); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidSpec, spec, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateJob, name)
	}

	id, err := s.cron.AddFunc(spec, func() { s.run(name, job) })
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidSpec, spec, err)
	}
	s.jobs[name] = id
	s.logger.Info("Scheduler: job %s scheduled (%s)", name, spec)
	return nil
}

// Next возвращает время следующего запуска задачи
func (s *Scheduler) Next(name string) (time.Time, bool) {
	s.mu.Lock()
	id, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return time.Time{}, false
	}
	return s.cron.Entry(id).Next, true
}

// Start запускает планировщик в фоне
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop останавливает планировщик и ждет завершения выполняющихся задач
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop().Done()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) run(name string, job Job) {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	started := time.Now()
	if err := job(ctx); err != nil {
		s.logger.Error("Scheduler: job %s failed after %s: %v", name, time.Since(started), err)
		return
	}
	s.logger.Info("Scheduler: job %s finished in %s", name, time.Since(started))
}

// cronLogger адаптирует printf-логгер к cron.Logger
type cronLogger struct {
	logger Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info("cron: %s%s", msg, formatKV(keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: %s: %v%s", msg, err, formatKV(keysAndValues))
}

func formatKV(kv []interface{}) string {
	var b strings.Builder
	for i := 0; i+1 < len(kv); i += 2 {
		fmt.Fprintf(&b, " %v=%v", kv[i], kv[i+1])
	}
	return b.String()
}
