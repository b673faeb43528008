package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles the Prometheus metrics of the training simulator and
// provides a ready-to-use /metrics handler.
type Collector struct {
	gatherer prometheus.Gatherer

	TurnsTotal   *prometheus.CounterVec
	AlarmsTotal  *prometheus.CounterVec
	TurnDuration *prometheus.HistogramVec

	ActiveSessions prometheus.Gauge
	ProcessValue   *prometheus.GaugeVec
}

// NewCollector registers the simulator metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	turns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ots_turns_total",
		Help: "Executed simulation turns, labeled by plant type and safety outcome.",
	}, []string{"plant", "outcome"})
	turns, err := registerCounterVec(reg, turns, "ots_turns_total")
	if err != nil {
		return nil, err
	}

	alarms := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ots_alarms_total",
		Help: "Alarms raised by the safety evaluator, labeled by plant type.",
	}, []string{"plant"})
	alarms, err = registerCounterVec(reg, alarms, "ots_alarms_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ots_turn_duration_seconds",
		Help:    "Wall-clock duration of a full turn (limit, step, evaluate, commit).",
		Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
	}, []string{"plant"})
	durations, err = registerHistogramVec(reg, durations, "ots_turn_duration_seconds")
	if err != nil {
		return nil, err
	}

	sessions, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ots_active_sessions",
		Help: "Training sessions currently held by the session manager.",
	}), "ots_active_sessions")
	if err != nil {
		return nil, err
	}

	pv := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ots_process_value",
		Help: "Last committed value of a monitored process variable.",
	}, []string{"plant", "tag"})
	pv, err = registerGaugeVec(reg, pv, "ots_process_value")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:       gatherer,
		TurnsTotal:     turns,
		AlarmsTotal:    alarms,
		TurnDuration:   durations,
		ActiveSessions: sessions,
		ProcessValue:   pv,
	}, nil
}

// ObserveTurn satisfies the core turn-recorder interface: one committed (or
// shut down) turn with its safety outcome and duration.
func (c *Collector) ObserveTurn(plant, outcome string, seconds float64) {
	if c == nil {
		return
	}
	c.TurnsTotal.WithLabelValues(plant, outcome).Inc()
	c.TurnDuration.WithLabelValues(plant).Observe(seconds)
}

// AddAlarms counts alarms raised in a turn.
func (c *Collector) AddAlarms(plant string, n int) {
	if c == nil || n <= 0 {
		return
	}
	c.AlarmsTotal.WithLabelValues(plant).Add(float64(n))
}

// SetProcessValue exports the committed value of one state tag.
func (c *Collector) SetProcessValue(plant, tag string, v float64) {
	if c == nil {
		return
	}
	c.ProcessValue.WithLabelValues(plant, tag).Set(v)
}

// SetActiveSessions drives the session gauge from the manager.
func (c *Collector) SetActiveSessions(n int) {
	if c == nil {
		return
	}
	c.ActiveSessions.Set(float64(n))
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, g prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(g); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return g, nil
}

func registerGaugeVec(reg prometheus.Registerer, vec *prometheus.GaugeVec, name string) (*prometheus.GaugeVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}
