package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artemis-hunt/artemis-go/pkg/artemis/event"
)

func TestManager_Counters(t *testing.T) {
	m := NewManager()

	m.ObserveRead(120, 3, false)
	m.ObserveRead(40, 1, true)
	m.IncReadError()
	m.ObserveBatch(4, []event.Event{
		{Payload: event.Shot{}},
		{Payload: event.Hit{Damage: 1}},
		{Payload: event.Shot{}},
	}, 1)
	m.ObserveAggregate(3, 2)
	m.ObserveIdentify(true, 3*time.Millisecond)
	m.ObserveIdentify(false, time.Millisecond)
	m.ObserveSave(nil)
	m.ObserveSave(errors.New("disk full"))

	assert.Equal(t, 160.0, testutil.ToFloat64(m.bytesRead))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.linesRead))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.truncations))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.readErrors))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.batches))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.events.WithLabelValues(string(event.ShotFired))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.events.WithLabelValues(string(event.HitRegistered))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.skippedLines))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.sessionEvents))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.patches))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.identifications.WithLabelValues(OutcomeIdentified)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.identifications.WithLabelValues(OutcomeUnidentified)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.saves.WithLabelValues("error")))
}

func TestManager_NilIsNoop(t *testing.T) {
	var m *Manager
	assert.NotPanics(t, func() {
		m.ObserveRead(1, 1, true)
		m.IncReadError()
		m.ObserveBatch(1, nil, 0)
		m.ObserveAggregate(1, 1)
		m.ObserveIdentify(true, time.Second)
		m.ObserveSave(nil)
	})
}

func TestManager_Options(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewManager(
		WithNamespace("test"),
		WithSubsystem("unit"),
		WithHistogramBuckets([]float64{0.1, 1}),
		WithRegistry(registry),
	)
	require.Same(t, registry, m.Registry())

	m.ObserveRead(1, 1, false)
	families, err := registry.Gather()
	require.NoError(t, err)

	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "test_unit_bytes_read_total")
}

func TestManager_Handler(t *testing.T) {
	m := NewManager()
	m.ObserveRead(10, 2, false)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "artemis_tracker_lines_read_total 2"), body)
}
