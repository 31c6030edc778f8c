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
	m := New(prometheus.NewRegistry())

	m.SessionStarted()
	m.SessionStarted()
	m.SessionCancelled()
	m.SessionsEvicted(3)
	m.SessionsEvicted(0)
	m.ValidationFailed("phone")
	m.Submitted(true, false)
	m.SinkFailed("store")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.sessionsStarted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessionsCancelled))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.sessionsEvicted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.validationFailures.WithLabelValues("phone")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.submissions.WithLabelValues("true", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sinkFailures.WithLabelValues("store")))
}

func TestMetrics_HandlerLatency(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveHandler("message", time.Now(), nil)
	m.ObserveHandler("callback", time.Now(), errors.New("boom"))

	assert.Equal(t, 2, testutil.CollectAndCount(m.handlerLatency))
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.SessionStarted()
		m.SessionCancelled()
		m.SessionsEvicted(1)
		m.ValidationFailed("name")
		m.Submitted(true, true)
		m.SinkFailed("chat")
		m.ObserveHandler("message", time.Now(), nil)
	})
}
