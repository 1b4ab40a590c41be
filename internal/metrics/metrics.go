// Package metrics exposes quiz counters to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tg383520/geo-quiz/internal/domain"
)

// Metrics implements app.Recorder on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	SessionsActive     prometheus.Gauge
	QuizzesStarted     *prometheus.CounterVec
	AnswersTotal       *prometheus.CounterVec
	QuizzesCompleted   *prometheus.CounterVec
	ScoreRatio         *prometheus.HistogramVec
	CatalogCountries   prometheus.Gauge
	CatalogLoadSeconds prometheus.Histogram
	MessagesTotal      *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		SessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "geoquiz_sessions_active",
			Help: "Number of open quiz sessions",
		}),
		QuizzesStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "geoquiz_quizzes_started_total",
			Help: "Quizzes started by mode",
		}, []string{"mode"}),
		AnswersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "geoquiz_answers_total",
			Help: "Answers by mode and outcome",
		}, []string{"mode", "result"}),
		QuizzesCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "geoquiz_quizzes_completed_total",
			Help: "Quizzes played to the results screen by mode",
		}, []string{"mode"}),
		ScoreRatio: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "geoquiz_score_ratio",
			Help:    "Final score divided by question count",
			Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1},
		}, []string{"mode"}),
		CatalogCountries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "geoquiz_catalog_countries",
			Help: "Countries in the loaded catalog",
		}),
		CatalogLoadSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "geoquiz_catalog_load_seconds",
			Help:    "Time to load the catalog and the map at startup",
			Buckets: prometheus.DefBuckets,
		}),
		MessagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "geoquiz_ws_messages_total",
			Help: "WebSocket messages by direction and type",
		}, []string{"direction", "type"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.SessionsActive,
		m.QuizzesStarted,
		m.AnswersTotal,
		m.QuizzesCompleted,
		m.ScoreRatio,
		m.CatalogCountries,
		m.CatalogLoadSeconds,
		m.MessagesTotal,
	)
	return m
}

// Handler serves the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) CatalogLoaded(countries int, took time.Duration) {
	m.CatalogCountries.Set(float64(countries))
	m.CatalogLoadSeconds.Observe(took.Seconds())
}

func (m *Metrics) SessionOpened() { m.SessionsActive.Inc() }
func (m *Metrics) SessionClosed() { m.SessionsActive.Dec() }

func (m *Metrics) QuizStarted(mode domain.Mode) {
	m.QuizzesStarted.WithLabelValues(string(mode)).Inc()
}

func (m *Metrics) Answered(mode domain.Mode, correct bool) {
	result := "incorrect"
	if correct {
		result = "correct"
	}
	m.AnswersTotal.WithLabelValues(string(mode), result).Inc()
}

func (m *Metrics) QuizCompleted(mode domain.Mode, score, total int) {
	m.QuizzesCompleted.WithLabelValues(string(mode)).Inc()
	if total > 0 {
		m.ScoreRatio.WithLabelValues(string(mode)).Observe(float64(score) / float64(total))
	}
}

// Inbound counts a message read from a client.
func (m *Metrics) Inbound(msgType string) {
	m.MessagesTotal.WithLabelValues("in", msgType).Inc()
}

// Outbound counts a message written to a client.
func (m *Metrics) Outbound(msgType string) {
	m.MessagesTotal.WithLabelValues("out", msgType).Inc()
}
