// Package metrics exposes pipeline counters and timings in Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "docqa"

// Pipeline stages reported by ObserveStage
const (
	StageDownload = "download"
	StageExtract  = "extract"
	StageChunk    = "chunk"
	StageIndex    = "index"
	StageAnswer   = "answer"
)

type Metrics struct {
	registry *prometheus.Registry

	stageDuration *prometheus.HistogramVec
	answers       *prometheus.CounterVec
	retries       prometheus.Counter
	requests      *prometheus.CounterVec
	indexedChunks prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"stage"}),
		answers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answers_total",
			Help:      "Answers produced, by outcome.",
		}, []string{"outcome"}),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_retries_total",
			Help:      "Model calls retried after a rate limit response.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Question-answering runs, by result.",
		}, []string{"result"}),
		indexedChunks: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "indexed_chunks",
			Help:      "Number of chunks indexed per document.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.stageDuration,
		m.answers,
		m.retries,
		m.requests,
		m.indexedChunks,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveStage(stage string, took time.Duration) {
	m.stageDuration.WithLabelValues(stage).Observe(took.Seconds())
}

func (m *Metrics) ObserveIndexed(chunks int) {
	m.indexedChunks.Observe(float64(chunks))
}

func (m *Metrics) RunFinished(err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.requests.WithLabelValues(result).Inc()
}

func (m *Metrics) AnswerOutcome(outcome string) {
	m.answers.WithLabelValues(outcome).Inc()
}

func (m *Metrics) GenerationRetry() {
	m.retries.Inc()
}
