// Package config загружает конфигурацию сервиса из TOML-файла и переменных окружения.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/m04kA/MHS-BookingService/internal/domain"
	"github.com/m04kA/MHS-BookingService/internal/slotgen"
	"github.com/m04kA/MHS-BookingService/pkg/types"
)

// Драйверы хранилища
const (
	DriverPostgres = "postgres"
	DriverNeo4j    = "neo4j"
)

// ErrInvalidConfig некорректное значение конфигурации
var ErrInvalidConfig = errors.New("config: invalid value")

// Config корневая конфигурация сервиса
type Config struct {
	Server        ServerConfig        `toml:"server"`
	Database      DatabaseConfig      `toml:"database"`
	Graph         GraphConfig         `toml:"graph"`
	Storage       StorageConfig       `toml:"storage"`
	Logs          LogsConfig          `toml:"logs"`
	Metrics       MetricsConfig       `toml:"metrics"`
	Booking       BookingConfig       `toml:"booking"`
	Slots         SlotsConfig         `toml:"slots"`
	Maintenance   MaintenanceConfig   `toml:"maintenance"`
	Notifications NotificationsConfig `toml:"notifications"`
}

// ServerConfig параметры HTTP сервера (таймауты в секундах)
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig параметры PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
}

// GraphConfig параметры Neo4j
type GraphConfig struct {
	URI            string `toml:"uri"`
	Database       string `toml:"database"`
	Username       string `toml:"username"`
	Password       string `toml:"password"`
	MaxConnections int    `toml:"max_connections"`
}

// StorageConfig выбор хранилища
type StorageConfig struct {
	Driver string `toml:"driver"` // postgres | neo4j
}

// LogsConfig параметры логирования
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsConfig параметры prometheus
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	ServiceName string `toml:"service_name"`
	Path        string `toml:"path"`
}

// BookingConfig правила бронирования
type BookingConfig struct {
	MinLeadTimeMinutes int    `toml:"min_lead_time_minutes"`
	CancelPolicy       string `toml:"cancel_policy"` // release | terminal
}

// SlotsConfig расписание генерации слотов
type SlotsConfig struct {
	Timezone     string   `toml:"timezone"`
	WorkdayStart string   `toml:"workday_start"`
	WorkdayEnd   string   `toml:"workday_end"`
	StepMinutes  int      `toml:"step_minutes"`
	Weekdays     []string `toml:"weekdays"`
	HorizonDays  int      `toml:"horizon_days"`
	Strategy     string   `toml:"strategy"` // default | round_robin
}

// MaintenanceConfig периодическое обслуживание
type MaintenanceConfig struct {
	Enabled          bool   `toml:"enabled"`
	Schedule         string `toml:"schedule"`          // cron-выражение очистки и назначения
	GenerateSchedule string `toml:"generate_schedule"` // cron-выражение генерации, пусто - выключено
	TimeoutSeconds   int    `toml:"timeout_seconds"`
}

// NotificationsConfig параметры SMTP
type NotificationsConfig struct {
	Enabled        bool   `toml:"enabled"`
	SMTPHost       string `toml:"smtp_host"`
	SMTPPort       int    `toml:"smtp_port"`
	Username       string `toml:"username"`
	Password       string `toml:"password"`
	From           string `toml:"from"`
	FromName       string `toml:"from_name"`
	Subject        string `toml:"subject"`
	TLS            string `toml:"tls"` // mandatory | opportunistic | none
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Default возвращает конфигурацию со значениями по умолчанию
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     15,
			WriteTimeout:    15,
			IdleTimeout:     60,
			ShutdownTimeout: 30,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			DBName:          "booking",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Graph: GraphConfig{
			URI:            "neo4j://localhost:7687",
			Database:       "neo4j",
			Username:       "neo4j",
			MaxConnections: 50,
		},
		Storage: StorageConfig{Driver: DriverPostgres},
		Logs:    LogsConfig{Level: "info"},
		Metrics: MetricsConfig{
			Enabled:     true,
			ServiceName: "mhs-booking-service",
			Path:        "/metrics",
		},
		Booking: BookingConfig{
			MinLeadTimeMinutes: int(domain.DefaultMinLeadTime / time.Minute),
			CancelPolicy:       string(domain.DefaultCancelPolicy),
		},
		Slots: SlotsConfig{
			Timezone:     "UTC",
			WorkdayStart: domain.DefaultWorkdayStart,
			WorkdayEnd:   domain.DefaultWorkdayEnd,
			StepMinutes:  domain.DefaultStepMinutes,
			HorizonDays:  domain.DefaultHorizonDays,
			Strategy:     "default",
		},
		Maintenance: MaintenanceConfig{
			Enabled:        true,
			Schedule:       "@hourly",
			TimeoutSeconds: 120,
		},
		Notifications: NotificationsConfig{
			SMTPPort:       587,
			TLS:            "mandatory",
			TimeoutSeconds: 15,
		},
	}
}

// Load читает .env (если есть), TOML-файл поверх значений по умолчанию и
// переопределения из окружения. Отсутствующий файл конфигурации не является ошибкой.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("decode %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv переопределяет секреты и адреса из окружения
func (c *Config) applyEnv() {
	overrides := map[string]*string{
		"DB_HOST":        &c.Database.Host,
		"DB_PASSWORD":    &c.Database.Password,
		"GRAPH_URI":      &c.Graph.URI,
		"GRAPH_PASSWORD": &c.Graph.Password,
		"SMTP_PASSWORD":  &c.Notifications.Password,
		"STORAGE_DRIVER": &c.Storage.Driver,
	}
	for key, target := range overrides {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*target = v
		}
	}
}

// Validate проверяет значения конфигурации
func (c *Config) Validate() error {
	if c.Server.HTTPPort < 1 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("%w: server.http_port %d", ErrInvalidConfig, c.Server.HTTPPort)
	}

	switch c.Storage.Driver {
	case DriverPostgres:
		if c.Database.Port < 1 || c.Database.Port > 65535 {
			return fmt.Errorf("%w: database.port %d", ErrInvalidConfig, c.Database.Port)
		}
	case DriverNeo4j:
		if c.Graph.URI == "" {
			return fmt.Errorf("%w: graph.uri is required", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: storage.driver %q", ErrInvalidConfig, c.Storage.Driver)
	}

	if c.Booking.MinLeadTimeMinutes < 0 {
		return fmt.Errorf("%w: booking.min_lead_time_minutes must not be negative", ErrInvalidConfig)
	}
	if !domain.CancelPolicy(c.Booking.CancelPolicy).Valid() {
		return fmt.Errorf("%w: booking.cancel_policy %q", ErrInvalidConfig, c.Booking.CancelPolicy)
	}

	if c.Slots.StepMinutes < domain.MinStepMinutes {
		return fmt.Errorf("%w: slots.step_minutes must be at least %d", ErrInvalidConfig, domain.MinStepMinutes)
	}
	if c.Slots.HorizonDays < 1 || c.Slots.HorizonDays > domain.MaxHorizonDays {
		return fmt.Errorf("%w: slots.horizon_days must be between 1 and %d", ErrInvalidConfig, domain.MaxHorizonDays)
	}
	if c.Slots.Strategy != "default" && c.Slots.Strategy != "round_robin" {
		return fmt.Errorf("%w: slots.strategy %q", ErrInvalidConfig, c.Slots.Strategy)
	}
	if _, err := c.Slots.Policy(); err != nil {
		return err
	}

	if c.Notifications.Enabled {
		if c.Notifications.SMTPHost == "" || c.Notifications.From == "" {
			return fmt.Errorf("%w: notifications.smtp_host and notifications.from are required", ErrInvalidConfig)
		}
		if c.Notifications.SMTPPort < 1 || c.Notifications.SMTPPort > 65535 {
			return fmt.Errorf("%w: notifications.smtp_port %d", ErrInvalidConfig, c.Notifications.SMTPPort)
		}
	}

	if c.Metrics.Enabled && (c.Metrics.Path == "" || c.Metrics.Path[0] != '/') {
		return fmt.Errorf("%w: metrics.path %q", ErrInvalidConfig, c.Metrics.Path)
	}
	return nil
}

// DSN строка подключения lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// URL адрес базы для golang-migrate
func (d DatabaseConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.DBName,
		RawQuery: url.Values{"sslmode": []string{d.SSLMode}}.Encode(),
	}
	return u.String()
}

// MinLeadTime минимальное время между бронированием и консультацией
func (b BookingConfig) MinLeadTime() time.Duration {
	return time.Duration(b.MinLeadTimeMinutes) * time.Minute
}

// Policy политика отмены
func (b BookingConfig) Policy() domain.CancelPolicy {
	return domain.CancelPolicy(b.CancelPolicy)
}

// Location часовой пояс бизнеса
func (s SlotsConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: slots.timezone %q: %v", ErrInvalidConfig, s.Timezone, err)
	}
	return loc, nil
}

// Policy политика генерации слотов
func (s SlotsConfig) Policy() (slotgen.Policy, error) {
	loc, err := s.Location()
	if err != nil {
		return slotgen.Policy{}, err
	}

	start, err := types.NewTimeStringFromString(s.WorkdayStart)
	if err != nil {
		return slotgen.Policy{}, fmt.Errorf("%w: slots.workday_start: %v", ErrInvalidConfig, err)
	}
	end, err := types.NewTimeStringFromString(s.WorkdayEnd)
	if err != nil {
		return slotgen.Policy{}, fmt.Errorf("%w: slots.workday_end: %v", ErrInvalidConfig, err)
	}

	var weekdays []time.Weekday
	if len(s.Weekdays) > 0 {
		weekdays, err = slotgen.ParseWeekdays(s.Weekdays)
		if err != nil {
			return slotgen.Policy{}, fmt.Errorf("%w: slots.weekdays: %v", ErrInvalidConfig, err)
		}
	}

	policy := slotgen.Policy{
		Location:    loc,
		DayStart:    start,
		DayEnd:      end,
		Step:        time.Duration(s.StepMinutes) * time.Minute,
		Weekdays:    weekdays,
		HorizonDays: s.HorizonDays,
	}
	if err := policy.Validate(); err != nil {
		return slotgen.Policy{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return policy, nil
}

// Timeout таймаут одного прогона обслуживания
func (m MaintenanceConfig) Timeout() time.Duration {
	return time.Duration(m.TimeoutSeconds) * time.Second
}

// Timeout таймаут SMTP
func (n NotificationsConfig) Timeout() time.Duration {
	return time.Duration(n.TimeoutSeconds) * time.Second
}
