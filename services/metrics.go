package services

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are optional; a nil *Metrics records nothing.
type Metrics struct {
	submissions *prometheus.CounterVec
	toggles     prometheus.Counter
	score       prometheus.Gauge
	tasks       prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dailyledger",
			Name:      "submissions_total",
			Help:      "Daily record submissions by mode and result.",
		}, []string{"mode", "result"}),
		toggles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dailyledger",
			Name:      "toggles_total",
			Help:      "Accepted task toggles.",
		}),
		score: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "dailyledger",
			Name:      "today_score",
			Help:      "Score of the current day.",
		}),
		tasks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "dailyledger",
			Name:      "tasks",
			Help:      "Number of tasks in the current task list.",
		}),
	}
	reg.MustRegister(m.submissions, m.toggles, m.score, m.tasks)
	return m
}

func (m *Metrics) submission(auto bool, err error) {
	if m == nil {
		return
	}
	mode := "manual"
	if auto {
		mode = "auto"
	}
	result := "sealed"
	if err != nil {
		result = "failed"
	}
	m.submissions.WithLabelValues(mode, result).Inc()
}

func (m *Metrics) toggled() {
	if m == nil {
		return
	}
	m.toggles.Inc()
}

func (m *Metrics) observe(score, tasks int) {
	if m == nil {
		return
	}
	m.score.Set(float64(score))
	m.tasks.Set(float64(tasks))
}
