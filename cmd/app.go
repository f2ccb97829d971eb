package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/m04kA/MHS-BookingService/internal/api/handlers/health"
	"github.com/m04kA/MHS-BookingService/internal/config"
	"github.com/m04kA/MHS-BookingService/internal/domain"
	"github.com/m04kA/MHS-BookingService/internal/infra/graph"
	bookingRepo "github.com/m04kA/MHS-BookingService/internal/infra/storage/booking"
	leadRepo "github.com/m04kA/MHS-BookingService/internal/infra/storage/lead"
	"github.com/m04kA/MHS-BookingService/internal/infra/storage/neo4jstore"
	salesmanRepo "github.com/m04kA/MHS-BookingService/internal/infra/storage/salesman"
	slotRepo "github.com/m04kA/MHS-BookingService/internal/infra/storage/slot"
	"github.com/m04kA/MHS-BookingService/internal/integrations/notifier"
	"github.com/m04kA/MHS-BookingService/internal/service/assignment"
	leadsService "github.com/m04kA/MHS-BookingService/internal/service/leads"
	salesmenService "github.com/m04kA/MHS-BookingService/internal/service/salesmen"
	slotsService "github.com/m04kA/MHS-BookingService/internal/service/slots"
	bookAppointmentUC "github.com/m04kA/MHS-BookingService/internal/usecase/book_appointment"
	cancelBookingUC "github.com/m04kA/MHS-BookingService/internal/usecase/cancel_booking"
	generateSlotsUC "github.com/m04kA/MHS-BookingService/internal/usecase/generate_slots"
	getFreeSlotsUC "github.com/m04kA/MHS-BookingService/internal/usecase/get_free_slots"
	maintenanceUC "github.com/m04kA/MHS-BookingService/internal/usecase/maintenance"
	"github.com/m04kA/MHS-BookingService/pkg/dbmetrics"
	"github.com/m04kA/MHS-BookingService/pkg/logger"
	"github.com/m04kA/MHS-BookingService/pkg/metrics"
	"github.com/m04kA/MHS-BookingService/pkg/txmanager"
)

const connectTimeout = 10 * time.Second

// slotStore методы хранилища слотов, общие для postgres и neo4j
type slotStore interface {
	Upsert(ctx context.Context, slot *domain.Slot) (bool, error)
	GetByID(ctx context.Context, id string) (*domain.Slot, error)
	FindFree(ctx context.Context, filter domain.FreeSlotsFilter) ([]*domain.Slot, error)
	List(ctx context.Context, filter domain.SlotsFilter) ([]*domain.Slot, error)
	Transition(ctx context.Context, id string, from, to domain.SlotStatus) error
	AssignSalesman(ctx context.Context, id string, salesmanID *string) error
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteBySalesman(ctx context.Context, salesmanID string, status domain.SlotStatus) (int64, error)
	DetachSalesman(ctx context.Context, salesmanID string) (int64, error)
}

type bookingStore interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	GetBySlot(ctx context.Context, slotID string) (*domain.Booking, error)
	Delete(ctx context.Context, slotID string) error
	ListByLead(ctx context.Context, leadID string) ([]*domain.Booking, error)
}

type leadStore interface {
	UpsertByEmail(ctx context.Context, lead *domain.Lead) (*domain.Lead, error)
	GetByID(ctx context.Context, id string) (*domain.Lead, error)
	GetByEmail(ctx context.Context, email string) (*domain.Lead, error)
	List(ctx context.Context, filter domain.LeadsFilter) ([]*domain.Lead, error)
	Delete(ctx context.Context, id string) error
}

type salesmanStore interface {
	Create(ctx context.Context, salesman *domain.Salesman) (*domain.Salesman, error)
	GetByID(ctx context.Context, id string) (*domain.Salesman, error)
	List(ctx context.Context, status *domain.SalesmanStatus) ([]*domain.Salesman, error)
	ListActive(ctx context.Context) ([]*domain.Salesman, error)
	Update(ctx context.Context, salesman *domain.Salesman) (*domain.Salesman, error)
	Delete(ctx context.Context, id string) error
}

type transactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// app собранные зависимости процесса
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	metrics *metrics.Metrics

	slots     slotStore
	bookings  bookingStore
	leads     leadStore
	salesmen  salesmanStore
	txManager transactionManager
	pinger    health.Pinger
	graph     graph.Client

	stopMetricsCh chan struct{}
	closers       []func() error
}

// newApp загружает конфигурацию, создает логгер, метрики и подключается к хранилищу
func newApp(ctx context.Context, configPath string, reg prometheus.Registerer) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	a := &app{
		cfg:           cfg,
		log:           log,
		metrics:       metrics.New(cfg.Metrics.ServiceName, reg),
		stopMetricsCh: make(chan struct{}),
	}
	log.Info("Configuration loaded from %s (storage=%s)", configPath, cfg.Storage.Driver)

	switch cfg.Storage.Driver {
	case config.DriverNeo4j:
		err = a.openNeo4j(ctx)
	default:
		err = a.openPostgres(ctx)
	}
	if err != nil {
		log.Error("Failed to open %s storage: %v", cfg.Storage.Driver, err)
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) openPostgres(ctx context.Context) error {
	cfg := a.cfg.Database

	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	a.closers = append(a.closers, db.Close)

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	a.log.Info("Successfully connected to database (host=%s, port=%d, db=%s)", cfg.Host, cfg.Port, cfg.DBName)

	wrapped := dbmetrics.WrapWithDefault(db, a.metrics, a.stopMetricsCh)

	a.slots = slotRepo.NewRepository(wrapped)
	a.bookings = bookingRepo.NewRepository(wrapped)
	a.leads = leadRepo.NewRepository(wrapped)
	a.salesmen = salesmanRepo.NewRepository(wrapped)
	a.txManager = txmanager.NewTransactionManager(wrapped)
	a.pinger = health.PingFunc(wrapped.PingContext)
	return nil
}

func (a *app) openNeo4j(ctx context.Context) error {
	cfg := a.cfg.Graph

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	client, err := graph.NewNeo4jClient(connectCtx, graph.Options{
		URI:            cfg.URI,
		Database:       cfg.Database,
		Username:       cfg.Username,
		Password:       cfg.Password,
		MaxConnections: cfg.MaxConnections,
	})
	if err != nil {
		return err
	}
	a.closers = append(a.closers, func() error {
		closeCtx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		return client.Close(closeCtx)
	})
	a.log.Info("Successfully connected to graph (uri=%s, db=%s)", cfg.URI, cfg.Database)

	a.graph = client
	a.slots = neo4jstore.NewSlotRepository(client)
	a.bookings = neo4jstore.NewBookingRepository(client)
	a.leads = neo4jstore.NewLeadRepository(client)
	a.salesmen = neo4jstore.NewSalesmanRepository(client)
	a.txManager = neo4jstore.NewTransactionManager(client)
	a.pinger = health.PingFunc(client.VerifyConnectivity)
	return nil
}

// Close останавливает сбор метрик пула и закрывает соединения
func (a *app) Close() {
	close(a.stopMetricsCh)
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Error("Failed to close resource: %v", err)
		}
	}
	a.log.Close()
}

// components сервисы и use cases поверх выбранного хранилища
type components struct {
	assigner    *assignment.Service
	slots       *slotsService.Service
	leads       *leadsService.Service
	salesmen    *salesmenService.Service
	book        *bookAppointmentUC.UseCase
	cancel      *cancelBookingUC.UseCase
	freeSlots   *getFreeSlotsUC.UseCase
	generate    *generateSlotsUC.UseCase
	maintenance *maintenanceUC.UseCase
}

func (a *app) buildComponents() (*components, error) {
	policy, err := a.cfg.Slots.Policy()
	if err != nil {
		return nil, err
	}

	notify, err := a.buildNotifier(policy.Location)
	if err != nil {
		return nil, err
	}

	assigner := assignment.NewService(a.slots, a.salesmen, a.log)

	return &components{
		assigner: assigner,
		slots:    slotsService.NewService(a.slots, a.log),
		leads:    leadsService.NewService(a.leads, a.bookings, a.slots, a.txManager, a.log),
		salesmen: salesmenService.NewService(a.salesmen, a.slots, a.txManager, a.log),
		book: bookAppointmentUC.NewUseCase(
			a.slots,
			a.bookings,
			a.leads,
			a.txManager,
			notify,
			a.metrics,
			a.cfg.Booking.MinLeadTime(),
			a.log,
		),
		cancel:    cancelBookingUC.NewUseCase(a.slots, a.bookings, a.txManager, a.cfg.Booking.Policy(), a.log),
		freeSlots: getFreeSlotsUC.NewUseCase(a.slots, a.cfg.Booking.MinLeadTime(), a.cfg.Slots.HorizonDays, a.log),
		generate: generateSlotsUC.NewUseCase(
			a.slots,
			a.salesmen,
			assigner,
			a.metrics,
			policy,
			generateSlotsUC.Strategy(a.cfg.Slots.Strategy),
			a.log,
		),
		maintenance: maintenanceUC.NewUseCase(a.slots, assigner, a.metrics, a.log),
	}, nil
}

// buildNotifier SMTP при включенных уведомлениях, иначе запись в лог
func (a *app) buildNotifier(loc *time.Location) (bookAppointmentUC.Notifier, error) {
	cfg := a.cfg.Notifications
	if !cfg.Enabled {
		a.log.Info("Notifications disabled, confirmations are written to the log")
		return notifier.NewLogNotifier(a.log), nil
	}

	smtp, err := notifier.NewSMTPNotifier(notifier.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.Username,
		Password: cfg.Password,
		From:     cfg.From,
		FromName: cfg.FromName,
		Subject:  cfg.Subject,
		TLS:      cfg.TLS,
		Timeout:  cfg.Timeout(),
		Location: loc,
	}, a.log)
	if err != nil {
		return nil, fmt.Errorf("init smtp notifier: %w", err)
	}
	a.log.Info("SMTP notifier initialized (host=%s, port=%d, tls=%s)", cfg.SMTPHost, cfg.SMTPPort, cfg.TLS)
	return smtp, nil
}

// ensureSchema применяет ограничения графа. Для postgres схема ведется миграциями.
func (a *app) ensureSchema(ctx context.Context) error {
	if a.graph == nil {
		return errors.New("graph schema requested for non-graph storage")
	}
	if err := neo4jstore.EnsureSchema(ctx, a.graph); err != nil {
		return fmt.Errorf("ensure graph schema: %w", err)
	}
	a.log.Info("Graph schema is up to date")
	return nil
}
