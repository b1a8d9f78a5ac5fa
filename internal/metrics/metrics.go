package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wonny/capexwatch/internal/contracts"
)

const namespace = "capexwatch"

// Metrics owns a private registry so tests and multiple servers never collide
type Metrics struct {
	registry *prometheus.Registry

	RunsTotal      *prometheus.CounterVec
	StageDuration  *prometheus.HistogramVec
	RiskScore      prometheus.Gauge
	HealthScore    prometheus.Gauge
	StressScore    prometheus.Gauge
	OverallStatus  prometheus.Gauge
	SignalSeverity *prometheus.GaugeVec
	HTTPRequests   *prometheus.CounterVec
}

// New registers every collector on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Pipeline runs by outcome",
		}, []string{"status"}),
		StageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Pipeline stage duration",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		}, []string{"stage"}),
		RiskScore: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "risk_score",
			Help:      "Latest aggregate risk score (0-100, higher is riskier)",
		}),
		HealthScore: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "health_score",
			Help:      "Latest funding health score (0-100, higher is healthier)",
		}),
		StressScore: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stress_score",
			Help:      "Latest funding stress score (0-100)",
		}),
		OverallStatus: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "overall_status",
			Help:      "Latest dashboard status rank (0 GREEN .. 3 RED)",
		}),
		SignalSeverity: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "signal_severity",
			Help:      "Latest severity rank per warning signal (0 GREEN .. 3 RED)",
		}, []string{"signal"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "API requests by route and status code",
		}, []string{"route", "code"}),
	}
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveStage records one stage duration
func (m *Metrics) ObserveStage(stage contracts.Stage, d time.Duration) {
	m.StageDuration.WithLabelValues(stage.ShortName()).Observe(d.Seconds())
}

// ObserveRun counts a finished run
func (m *Metrics) ObserveRun(success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	m.RunsTotal.WithLabelValues(status).Inc()
}

// ObserveAssessment publishes the aggregate risk score
func (m *Metrics) ObserveAssessment(a *contracts.RiskAssessment) {
	if a != nil {
		m.RiskScore.Set(a.OverallScore)
	}
}

// ObserveDashboard publishes health, stress and every signal severity
func (m *Metrics) ObserveDashboard(d *contracts.WarningDashboard) {
	if d == nil {
		return
	}
	m.HealthScore.Set(d.HealthScore)
	m.StressScore.Set(d.StressScore)
	m.OverallStatus.Set(float64(d.OverallStatus.Rank()))
	for _, s := range d.Signals {
		m.SignalSeverity.WithLabelValues(s.ID).Set(float64(s.Severity.Rank()))
	}
}
