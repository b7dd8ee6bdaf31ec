package observability

import (
	"context"
	"errors"

	"github.com/aretw0/formtree/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors fed by tree lifecycle hooks.
type Metrics struct {
	Commits        *prometheus.CounterVec
	CommitDuration prometheus.Histogram
	Nodes          *prometheus.CounterVec
	Validations    *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg. Collectors
// already registered by another tree are reused. A nil reg skips registration.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Commits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "formtree_commits_total",
				Help: "Total number of commits by outcome",
			},
			[]string{"result"},
		),
		CommitDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "formtree_commit_duration_seconds",
				Help:    "Duration of commits",
				Buckets: prometheus.ExponentialBuckets(0.00005, 4, 8),
			},
		),
		Nodes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "formtree_node_events_total",
				Help: "Total number of mounts and unmounts by node kind",
			},
			[]string{"event", "kind"},
		),
		Validations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "formtree_validations_total",
				Help: "Total number of validator runs by mode and result",
			},
			[]string{"mode", "result"},
		),
	}
	if reg == nil {
		return m, nil
	}

	var err error
	if m.Commits, err = register(reg, m.Commits); err != nil {
		return nil, err
	}
	if m.CommitDuration, err = register(reg, m.CommitDuration); err != nil {
		return nil, err
	}
	if m.Nodes, err = register(reg, m.Nodes); err != nil {
		return nil, err
	}
	if m.Validations, err = register(reg, m.Validations); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// Hooks returns lifecycle hooks recording into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnMount: func(_ context.Context, e *domain.NodeEvent) {
			m.Nodes.WithLabelValues(string(domain.EventMount), string(e.Kind)).Inc()
		},
		OnUnmount: func(_ context.Context, e *domain.NodeEvent) {
			m.Nodes.WithLabelValues(string(domain.EventUnmount), string(e.Kind)).Inc()
		},
		OnCommit: func(_ context.Context, e *domain.CommitEvent) {
			result := "ok"
			if e.Failed {
				result = "error"
			}
			m.Commits.WithLabelValues(result).Inc()
			m.CommitDuration.Observe(e.Duration.Seconds())
		},
		OnValidate: func(_ context.Context, e *domain.ValidationEvent) {
			mode := "sync"
			if e.Async {
				mode = "async"
			}
			result := "pass"
			switch {
			case e.Discarded:
				result = "discarded"
			case !e.Passed:
				result = "fail"
			}
			m.Validations.WithLabelValues(mode, result).Inc()
		},
	}
}
