package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsService exposes engine counters to Prometheus.
type MetricsService struct {
	generationRuns *prometheus.CounterVec
	slotsCreated   prometheus.Counter
	attempts       prometheus.Histogram
	substitutions  *prometheus.CounterVec
}

func NewMetricsService(reg prometheus.Registerer) *MetricsService {
	factory := promauto.With(reg)
	return &MetricsService{
		generationRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "timetable_generation_runs_total",
			Help: "Timetable generation runs by outcome.",
		}, []string{"outcome"}),
		slotsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "timetable_slots_created_total",
			Help: "Teaching slots written by successful generation runs.",
		}),
		attempts: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "timetable_generation_attempts",
			Help:    "Attempts consumed per generation run.",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100},
		}),
		substitutions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "timetable_substitutions_total",
			Help: "Per-slot substitution outcomes.",
		}, []string{"outcome"}),
	}
}

func (m *MetricsService) RecordGeneration(success bool, slotsCreated, attempts int) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.generationRuns.WithLabelValues(outcome).Inc()
	if success {
		m.slotsCreated.Add(float64(slotsCreated))
	}
	m.attempts.Observe(float64(attempts))
}

func (m *MetricsService) RecordSubstitution(found bool) {
	outcome := "substituted"
	if !found {
		outcome = "unfilled"
	}
	m.substitutions.WithLabelValues(outcome).Inc()
}
