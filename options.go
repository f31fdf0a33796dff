package nasc

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/toutaio/toutago-nasc-container/introspect"
)

// Option is a function that configures a Nasc container.
type Option func(*Nasc) error

// WithIntrospector replaces the default Reflector.
// Use it to share a catalogue of types or to drive the container with a fake.
func WithIntrospector(i introspect.Introspector) Option {
	return func(n *Nasc) error {
		if i == nil {
			return fmt.Errorf("introspector cannot be nil")
		}
		n.introspector = i
		return nil
	}
}

// WithLogger sets the logger used for registration and resolution events.
func WithLogger(logger *zap.Logger) Option {
	return func(n *Nasc) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		n.logger = logger
		return nil
	}
}

// WithDebug logs every registration and resolution step to a zap
// development logger.
func WithDebug() Option {
	return func(n *Nasc) error {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("create debug logger: %w", err)
		}
		n.logger = logger.Named("nasc")
		return nil
	}
}

// WithMetrics registers the container's Prometheus collectors with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(n *Nasc) error {
		if reg == nil {
			return fmt.Errorf("registerer cannot be nil")
		}
		m := newMetrics()
		if err := m.register(reg); err != nil {
			return fmt.Errorf("register metrics: %w", err)
		}
		n.metrics = m
		return nil
	}
}

// SetOption configures a single Set call.
type SetOption func(*setConfig)

type setConfig struct {
	share bool
}

// Share sets whether the identifier's instance is cached. Set defaults to true.
func Share(share bool) SetOption {
	return func(c *setConfig) {
		c.share = share
	}
}

// GetOption configures a single Get call.
type GetOption func(*getConfig)

type getConfig struct {
	fresh    bool
	data     map[string]any
	defaults map[string]any
}

// Fresh forces construction even when a cached instance exists.
// The new instance still replaces the cache entry for shared identifiers.
func Fresh() GetOption {
	return func(c *getConfig) {
		c.fresh = true
	}
}

// WithData supplies per-call values matched by parameter name and declared
// type. Get passes them to type constructors only; factories receive
// container-resolved values.
//
// Cached instances ignore data, so combine WithData with Fresh to build
// with different values.
func WithData(data map[string]any) GetOption {
	return func(c *getConfig) {
		c.data = data
	}
}

// WithDefaults supplies override values keyed by parameter name (untyped
// parameters) or type identifier (typed parameters). Only Call honours them.
func WithDefaults(defaults map[string]any) GetOption {
	return func(c *getConfig) {
		c.defaults = defaults
	}
}

func newGetConfig(opts []GetOption) getConfig {
	var cfg getConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
