// Package telemetry exposes Prometheus metrics for the control loop.
package telemetry

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "poise"

// Torque command kinds.
const (
	KindTorque  = "torque"
	KindImpulse = "impulse"
)

// Metrics holds the Prometheus collectors of a simulation run.
type Metrics struct {
	registry *prometheus.Registry

	// TorqueCommands counts torques submitted to bodies, by kind.
	TorqueCommands *prometheus.CounterVec
	// ControlFailures counts per-body failures, by component.
	ControlFailures *prometheus.CounterVec
	// Perturbations counts the perturbation passes that fired.
	Perturbations prometheus.Counter
	// ErrorAngle is the last orientation error angle of each body.
	ErrorAngle *prometheus.GaugeVec
	// TickDuration observes the wall time of a whole tick.
	TickDuration prometheus.Histogram
}

// NewMetrics creates the collectors and registers them on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		TorqueCommands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "torque_commands_total",
				Help:      "Total number of torque commands submitted to bodies",
			},
			[]string{"kind"},
		),

		ControlFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "control_failures_total",
				Help:      "Total number of per-body control failures",
			},
			[]string{"component"},
		),

		Perturbations: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "perturbations_total",
				Help:      "Total number of perturbation passes applied",
			},
		),

		ErrorAngle: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "error_angle_radians",
				Help:      "Angle between a body orientation and its target",
			},
			[]string{"body"},
		),

		TickDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "tick_duration_seconds",
				Help:      "Wall time of a simulation tick in seconds",
				Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
			},
		),
	}

	m.registry.MustRegister(
		m.TorqueCommands,
		m.ControlFailures,
		m.Perturbations,
		m.ErrorAngle,
		m.TickDuration,
	)

	return m
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the collectors in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveTorques adds n commands of the given kind.
func (m *Metrics) ObserveTorques(kind string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.TorqueCommands.WithLabelValues(kind).Add(float64(n))
}

// ObserveFailures adds n failures for component.
func (m *Metrics) ObserveFailures(component string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ControlFailures.WithLabelValues(component).Add(float64(n))
}

// ObservePerturbation records a perturbation pass.
func (m *Metrics) ObservePerturbation() {
	if m == nil {
		return
	}
	m.Perturbations.Inc()
}

// SetErrorAngle records the orientation error angle of body index.
func (m *Metrics) SetErrorAngle(index int, angle float64) {
	if m == nil {
		return
	}
	m.ErrorAngle.WithLabelValues(strconv.Itoa(index)).Set(angle)
}

// ObserveTick records the wall time of a tick in seconds.
func (m *Metrics) ObserveTick(seconds float64) {
	if m == nil {
		return
	}
	m.TickDuration.Observe(seconds)
}
