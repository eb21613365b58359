// Package metrics exports store activity as Prometheus metrics.
//
//	obs := metrics.New(metrics.WithNamespace("myapp"))
//	state, set, err := store.New(data, store.WithObserver(obs))
//
//	// Expose metrics endpoint
//	http.Handle("/metrics", promhttp.Handler())
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/vstore/pkg/store"
)

// Config configures the Prometheus observer.
type Config struct {
	// Namespace is the metrics namespace (default: "vstore").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the Prometheus observer.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "vstore",
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Observer is a store.Observer that counts store activity.
//
// Metrics collected:
//   - vstore_writes_total: Counter of raw writes by kind (set, add, remove)
//   - vstore_notifications_total: Counter of signal notifications by signal kind
//   - vstore_nodes_total: Counter of tracked containers created
//   - vstore_errors_total: Counter of setter failures by error type
//
// One Observer can be shared by any number of stores. Create it once per
// registry: registering the same metric names twice panics.
type Observer struct {
	writes        *prometheus.CounterVec
	notifications *prometheus.CounterVec
	nodes         prometheus.Counter
	errors        *prometheus.CounterVec
}

var _ store.Observer = (*Observer)(nil)

// New creates an Observer and registers its metrics.
func New(opts ...Option) *Observer {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &Observer{
		writes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "writes_total",
			Help:        "Total number of raw store writes",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "notifications_total",
			Help:        "Total number of store signal notifications",
			ConstLabels: config.ConstLabels,
		}, []string{"signal"}),

		nodes: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "nodes_total",
			Help:        "Total number of tracked containers created",
			ConstLabels: config.ConstLabels,
		}),

		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "errors_total",
			Help:        "Total number of failed setter calls by error type",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),
	}
}

func (o *Observer) NodeCreated(*store.Store) {
	o.nodes.Inc()
}

func (o *Observer) Wrote(_ *store.Store, kind store.WriteKind) {
	o.writes.WithLabelValues(string(kind)).Inc()
}

func (o *Observer) Notified(_ *store.Store, kind store.SignalKind) {
	o.notifications.WithLabelValues(string(kind)).Inc()
}

func (o *Observer) Failed(_ *store.Store, err error) {
	o.errors.WithLabelValues(categorizeError(err)).Inc()
}

// categorizeError returns a category for the error type.
// This prevents high-cardinality labels from error messages.
func categorizeError(err error) string {
	switch {
	case errors.Is(err, store.ErrPathTypeMismatch):
		return "path_type_mismatch"
	case errors.Is(err, store.ErrNotStorable):
		return "not_storable"
	case errors.Is(err, store.ErrMutationNotAllowed):
		return "mutation_not_allowed"
	default:
		return "internal"
	}
}
