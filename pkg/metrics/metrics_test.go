package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := New("booking-test", prometheus.NewRegistry())

	m.ObserveBooking("booked")
	m.ObserveBooking("booked")
	m.ObserveBooking("slot_unavailable")
	m.AddGeneratedSlots(9)
	m.ObserveMaintenance(3, nil)
	m.ObserveMaintenance(0, errors.New("boom"))
	m.ObserveHTTPRequest("GET", "/api/v1/slots/free", 200, 15*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.BookingsTotal.WithLabelValues("booked")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BookingsTotal.WithLabelValues("slot_unavailable")))
	assert.Equal(t, 9.0, testutil.ToFloat64(m.SlotsGenerated.WithLabelValues()))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.SlotsPruned.WithLabelValues()))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MaintenanceRuns.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/slots/free", "200")))
}
