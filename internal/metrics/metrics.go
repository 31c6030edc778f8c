package metrics

import (
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the bot's Prometheus collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	sessionsStarted    prom.Counter
	sessionsCancelled  prom.Counter
	sessionsEvicted    prom.Counter
	validationFailures *prom.CounterVec
	submissions        *prom.CounterVec
	sinkFailures       *prom.CounterVec
	handlerLatency     *prom.SummaryVec
}

// New creates the collectors and registers them with reg
func New(reg prom.Registerer) *Metrics {
	m := &Metrics{
		sessionsStarted: prom.NewCounter(prom.CounterOpts{
			Name: "leadbot_sessions_started_total",
			Help: "form sessions started with /start",
		}),
		sessionsCancelled: prom.NewCounter(prom.CounterOpts{
			Name: "leadbot_sessions_cancelled_total",
			Help: "form sessions cancelled by the user",
		}),
		sessionsEvicted: prom.NewCounter(prom.CounterOpts{
			Name: "leadbot_sessions_evicted_total",
			Help: "idle form sessions removed by the sweeper",
		}),
		validationFailures: prom.NewCounterVec(prom.CounterOpts{
			Name: "leadbot_validation_failures_total",
			Help: "rejected user inputs per field",
		}, []string{"field"}),
		submissions: prom.NewCounterVec(prom.CounterOpts{
			Name: "leadbot_submissions_total",
			Help: "completed forms by delivery outcome",
		}, []string{"chat_notified", "persisted"}),
		sinkFailures: prom.NewCounterVec(prom.CounterOpts{
			Name: "leadbot_sink_failures_total",
			Help: "failed submission steps per target",
		}, []string{"target"}),
		handlerLatency: prom.NewSummaryVec(prom.SummaryOpts{
			Name:       "leadbot_handler_latency_seconds",
			Help:       "latency of update handling per route and status",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		}, []string{"route", "status"}),
	}

	reg.MustRegister(
		m.sessionsStarted,
		m.sessionsCancelled,
		m.sessionsEvicted,
		m.validationFailures,
		m.submissions,
		m.sinkFailures,
		m.handlerLatency,
	)
	return m
}

func (m *Metrics) SessionStarted() {
	if m == nil {
		return
	}
	m.sessionsStarted.Inc()
}

func (m *Metrics) SessionCancelled() {
	if m == nil {
		return
	}
	m.sessionsCancelled.Inc()
}

func (m *Metrics) SessionsEvicted(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.sessionsEvicted.Add(float64(n))
}

func (m *Metrics) ValidationFailed(field string) {
	if m == nil {
		return
	}
	m.validationFailures.WithLabelValues(field).Inc()
}

// Submitted records one completed form
func (m *Metrics) Submitted(chatNotified, persisted bool) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(strconv.FormatBool(chatNotified), strconv.FormatBool(persisted)).Inc()
}

// SinkFailed records a failed delivery step, target is "chat" or "store"
func (m *Metrics) SinkFailed(target string) {
	if m == nil {
		return
	}
	m.sinkFailures.WithLabelValues(target).Inc()
}

// ObserveHandler records how long one update took to handle
func (m *Metrics) ObserveHandler(route string, start time.Time, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "fail"
	}
	m.handlerLatency.WithLabelValues(route, status).Observe(time.Since(start).Seconds())
}
