package store

import "log/slog"

// Option configures a Store.
type Option func(*Store)

// WithStrict makes direct writes through a View return
// ErrMutationNotAllowed instead of being silently ignored.
func WithStrict(strict bool) Option {
	return func(s *Store) {
		s.strict = strict
	}
}

// WithLogger sets the logger used for store diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithObserver installs hooks that are told about node creation, writes,
// notifications and setter failures.
func WithObserver(o Observer) Option {
	return func(s *Store) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithName gives the store a human-readable name for logs and metrics.
func WithName(name string) Option {
	return func(s *Store) {
		s.name = name
	}
}
