// Package migrate применяет SQL миграции через golang-migrate.
package migrate

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
}

var (
	// ErrUnknownCommand неизвестная команда миграции
	ErrUnknownCommand = errors.New("migrate: unknown command")

	// ErrMissingVersion для force не указана версия
	ErrMissingVersion = errors.New("migrate: force requires a version")

	// ErrMigrate ошибка применения миграций
	ErrMigrate = errors.New("migrate: failed")
)

// Run выполняет команду up, down, version или force N.
// source должен содержать .sql файлы в корне.
func Run(logger Logger, databaseURL string, source fs.FS, command string, args []string) error {
	switch command {
	case "up", "down", "version":
	case "force":
		if len(args) == 0 {
			return ErrMissingVersion
		}
	default:
		return fmt.Errorf("%w: %s (use: up, down, version, force)", ErrUnknownCommand, command)
	}

	sourceDriver, err := iofs.New(source, ".")
	if err != nil {
		return fmt.Errorf("%w: source: %v", ErrMigrate, err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", sourceDriver, databaseURL)
	if err != nil {
		return fmt.Errorf("%w: init: %v", ErrMigrate, err)
	}
	defer m.Close()

	m.Log = &migrateLogger{logger: logger}

	switch command {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("%w: up: %v", ErrMigrate, err)
		}
		version, dirty, _ := m.Version()
		logger.Info("Migrate: up complete, version=%d, dirty=%t", version, dirty)

	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("%w: down: %v", ErrMigrate, err)
		}
		logger.Info("Migrate: all migrations rolled back")

	case "version":
		version, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			return fmt.Errorf("%w: version: %v", ErrMigrate, err)
		}
		logger.Info("Migrate: current version=%d, dirty=%t", version, dirty)

	case "force":
		version, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("%w: invalid version %q", ErrMigrate, args[0])
		}
		if err := m.Force(version); err != nil {
			return fmt.Errorf("%w: force: %v", ErrMigrate, err)
		}
		logger.Info("Migrate: forced version=%d", version)
	}

	return nil
}

type migrateLogger struct {
	logger Logger
}

func (l *migrateLogger) Printf(format string, v ...interface{}) {
	l.logger.Info("Migrate: "+format, v...)
}

func (l *migrateLogger) Verbose() bool {
	return false
}
