// Package metrics содержит prometheus-коллекторы сервиса.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics набор коллекторов сервиса
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBQueryDuration    *prometheus.HistogramVec
	DBOpenConnections  *prometheus.GaugeVec
	DBInUseConnections *prometheus.GaugeVec
	DBIdleConnections  *prometheus.GaugeVec
	DBWaitCount        *prometheus.GaugeVec

	BookingsTotal   *prometheus.CounterVec
	SlotsGenerated  *prometheus.CounterVec
	SlotsPruned     *prometheus.CounterVec
	MaintenanceRuns *prometheus.CounterVec
}

// New создает и регистрирует коллекторы в переданном registerer
func New(serviceName string, reg prometheus.Registerer) *Metrics {
	constLabels := prometheus.Labels{"service": serviceName}

	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),
		DBQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query duration in seconds",
			ConstLabels: constLabels,
			Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
		DBOpenConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_open_connections",
			Help:        "Number of established connections",
			ConstLabels: constLabels,
		}, []string{}),
		DBInUseConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_in_use_connections",
			Help:        "Number of connections currently in use",
			ConstLabels: constLabels,
		}, []string{}),
		DBIdleConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_idle_connections",
			Help:        "Number of idle connections",
			ConstLabels: constLabels,
		}, []string{}),
		DBWaitCount: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_wait_count",
			Help:        "Total number of connections waited for",
			ConstLabels: constLabels,
		}, []string{}),
		BookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "bookings_total",
			Help:        "Booking attempts by outcome",
			ConstLabels: constLabels,
		}, []string{"outcome"}),
		SlotsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "slots_generated_total",
			Help:        "Slots created by generation runs",
			ConstLabels: constLabels,
		}, []string{}),
		SlotsPruned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "slots_pruned_total",
			Help:        "Expired available slots removed by maintenance",
			ConstLabels: constLabels,
		}, []string{}),
		MaintenanceRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "maintenance_runs_total",
			Help:        "Maintenance runs by result",
			ConstLabels: constLabels,
		}, []string{"result"}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DBQueryDuration,
		m.DBOpenConnections,
		m.DBInUseConnections,
		m.DBIdleConnections,
		m.DBWaitCount,
		m.BookingsTotal,
		m.SlotsGenerated,
		m.SlotsPruned,
		m.MaintenanceRuns,
	)

	return m
}

// ObserveHTTPRequest фиксирует завершенный HTTP запрос
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveDBQuery фиксирует длительность запроса к БД
func (m *Metrics) ObserveDBQuery(operation string, duration time.Duration) {
	m.DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// ObserveBooking фиксирует результат попытки бронирования
func (m *Metrics) ObserveBooking(outcome string) {
	m.BookingsTotal.WithLabelValues(outcome).Inc()
}

// AddGeneratedSlots увеличивает счетчик созданных слотов
func (m *Metrics) AddGeneratedSlots(n int) {
	m.SlotsGenerated.WithLabelValues().Add(float64(n))
}

// ObserveMaintenance фиксирует результат прогона обслуживания
func (m *Metrics) ObserveMaintenance(pruned int64, err error) {
	if err != nil {
		m.MaintenanceRuns.WithLabelValues("error").Inc()
		return
	}
	m.MaintenanceRuns.WithLabelValues("ok").Inc()
	m.SlotsPruned.WithLabelValues().Add(float64(pruned))
}
