package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	bookAppointmentHandler "github.com/m04kA/MHS-BookingService/internal/api/handlers/book_appointment"
	cancelBookingHandler "github.com/m04kA/MHS-BookingService/internal/api/handlers/cancel_booking"
	generateSlotsHandler "github.com/m04kA/MHS-BookingService/internal/api/handlers/generate_slots"
	getFreeSlotsHandler "github.com/m04kA/MHS-BookingService/internal/api/handlers/get_free_slots"
	"github.com/m04kA/MHS-BookingService/internal/api/handlers/health"
	leadsHandler "github.com/m04kA/MHS-BookingService/internal/api/handlers/leads"
	runMaintenanceHandler "github.com/m04kA/MHS-BookingService/internal/api/handlers/run_maintenance"
	salesmenHandler "github.com/m04kA/MHS-BookingService/internal/api/handlers/salesmen"
	slotsHandler "github.com/m04kA/MHS-BookingService/internal/api/handlers/slots"
	"github.com/m04kA/MHS-BookingService/internal/api/middleware"
	"github.com/m04kA/MHS-BookingService/internal/scheduler"
	generateSlotsUC "github.com/m04kA/MHS-BookingService/internal/usecase/generate_slots"
)

const (
	jobMaintenance   = "maintenance"
	jobGenerateSlots = "generate_slots"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Запустить HTTP API и планировщик обслуживания",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), *configPath)
		},
	}
}

func runServe(ctx context.Context, configPath string) error {
	a, err := newApp(ctx, configPath, prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}
	defer a.Close()

	log := a.log
	log.Info("Starting MHS-BookingService...")

	if a.graph != nil {
		if err := a.ensureSchema(ctx); err != nil {
			log.Error("Failed to prepare graph schema: %v", err)
			return err
		}
	}

	c, err := a.buildComponents()
	if err != nil {
		log.Error("Failed to build components: %v", err)
		return err
	}

	// Планировщик периодических задач
	sched, err := newScheduler(a, c)
	if err != nil {
		log.Error("Failed to configure scheduler: %v", err)
		return err
	}
	if sched != nil {
		sched.Start()
		log.Info("Scheduler started")
	}

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", a.cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      newRouter(a, c),
		ReadTimeout:  time.Duration(a.cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(a.cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(a.cfg.Server.IdleTimeout) * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Ожидаем сигнал завершения или падение сервера
	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			log.Error("Server failed: %v", err)
			return err
		}
	}

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(a.cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}
	if sched != nil {
		if err := sched.Stop(shutdownCtx); err != nil {
			log.Error("Scheduler did not stop in time: %v", err)
		}
	}

	log.Info("Server stopped gracefully")
	return nil
}

// newScheduler регистрирует обслуживание и, если задано расписание, генерацию слотов.
// Возвращает nil при выключенном обслуживании.
func newScheduler(a *app, c *components) (*scheduler.Scheduler, error) {
	cfg := a.cfg.Maintenance
	if !cfg.Enabled {
		a.log.Info("Maintenance scheduler disabled")
		return nil, nil
	}

	sched := scheduler.New(cfg.Timeout(), a.log)
	err := sched.Add(jobMaintenance, cfg.Schedule, func(ctx context.Context) error {
		_, err := c.maintenance.PruneAndReconcile(ctx, time.Now())
		return err
	})
	if err != nil {
		return nil, err
	}

	if cfg.GenerateSchedule != "" {
		err = sched.Add(jobGenerateSlots, cfg.GenerateSchedule, func(ctx context.Context) error {
			_, err := c.generate.Execute(ctx, &generateSlotsUC.Request{})
			return err
		})
		if err != nil {
			return nil, err
		}
	}
	return sched, nil
}

func newRouter(a *app, c *components) *mux.Router {
	log := a.log

	// Инициализируем handlers
	healthCheck := health.NewHandler(a.pinger, a.cfg.Storage.Driver, log)
	bookAppointment := bookAppointmentHandler.NewHandler(c.book, log)
	cancelBooking := cancelBookingHandler.NewHandler(c.cancel, log)
	getFreeSlots := getFreeSlotsHandler.NewHandler(c.freeSlots, log)
	generateSlots := generateSlotsHandler.NewHandler(c.generate, log)
	runMaintenance := runMaintenanceHandler.NewHandler(c.maintenance, log)
	slotsAdmin := slotsHandler.NewHandler(c.slots, log)
	leadsAdmin := leadsHandler.NewHandler(c.leads, log)
	salesmenAdmin := salesmenHandler.NewHandler(c.salesmen, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.Recover(log))
	r.Use(middleware.AccessLog(log))

	if a.cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(a.metrics))
		r.Handle(a.cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", a.cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health", healthCheck.Handle).Methods(http.MethodGet)

	// ============================================================
	// BOOKING
	// ============================================================

	// Свободные слоты (регистрируется раньше /slots/{slotId})
	api.HandleFunc("/slots/free", getFreeSlots.Handle).Methods(http.MethodGet)

	// Бронирование консультации
	api.HandleFunc("/bookings", bookAppointment.Handle).Methods(http.MethodPost)

	// Отмена бронирования
	api.HandleFunc("/slots/{slotId}/booking", cancelBooking.Handle).Methods(http.MethodDelete)

	// Заявка лида без бронирования
	api.HandleFunc("/leads", leadsAdmin.Submit).Methods(http.MethodPost)

	// ============================================================
	// ADMIN
	// ============================================================

	// --- Расписание ---
	api.HandleFunc("/slots/generate", generateSlots.Handle).Methods(http.MethodPost)
	api.HandleFunc("/maintenance/run", runMaintenance.Handle).Methods(http.MethodPost)

	// --- Слоты ---
	api.HandleFunc("/slots", slotsAdmin.List).Methods(http.MethodGet)
	api.HandleFunc("/slots/{slotId}", slotsAdmin.Get).Methods(http.MethodGet)
	api.HandleFunc("/slots/{slotId}", slotsAdmin.UpdateStatus).Methods(http.MethodPut)
	api.HandleFunc("/slots/{slotId}", slotsAdmin.Delete).Methods(http.MethodDelete)

	// --- Лиды ---
	api.HandleFunc("/leads", leadsAdmin.List).Methods(http.MethodGet)
	api.HandleFunc("/leads/{leadId}", leadsAdmin.Get).Methods(http.MethodGet)
	api.HandleFunc("/leads/{leadId}", leadsAdmin.Delete).Methods(http.MethodDelete)

	// --- Менеджеры ---
	api.HandleFunc("/salesmen", salesmenAdmin.Create).Methods(http.MethodPost)
	api.HandleFunc("/salesmen", salesmenAdmin.List).Methods(http.MethodGet)
	api.HandleFunc("/salesmen/{salesmanId}", salesmenAdmin.Get).Methods(http.MethodGet)
	api.HandleFunc("/salesmen/{salesmanId}", salesmenAdmin.Update).Methods(http.MethodPut)
	api.HandleFunc("/salesmen/{salesmanId}", salesmenAdmin.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/salesmen/{salesmanId}/availability", salesmenAdmin.AddAvailability).Methods(http.MethodPost)
	api.HandleFunc("/salesmen/{salesmanId}/slots", salesmenAdmin.ListSlots).Methods(http.MethodGet)

	return r
}
