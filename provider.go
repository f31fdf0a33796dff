package nasc

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"
)

// ServiceProvider is the interface that must be implemented by service providers.
// Service providers group related registrations for bootstrap code.
//
// Example:
//
//	type LoggingProvider struct{}
//
//	func (p *LoggingProvider) Register(container *Nasc) error {
//	    return container.Set(introspect.Key[*Logger](), NewLogger)
//	}
type ServiceProvider interface {
	Register(container *Nasc) error
}

// BootableProvider is an optional interface for providers that need a boot phase.
// The Boot method is called after all providers have been registered.
//
// Example:
//
//	func (p *DatabaseProvider) Boot(container *Nasc) error {
//	    db, err := Resolve[*Database](container, introspect.Key[*Database]())
//	    if err != nil {
//	        return err
//	    }
//	    return db.Connect()
//	}
type BootableProvider interface {
	ServiceProvider
	Boot(container *Nasc) error
}

// DeferredProvider is an optional interface for providers that register
// only when a condition holds.
//
// Example:
//
//	func (p *CacheProvider) ShouldRegister(container *Nasc) bool {
//	    return container.Has("cache.enabled")
//	}
type DeferredProvider interface {
	ServiceProvider
	ShouldRegister(container *Nasc) bool
}

// providerEntry tracks a registered provider.
type providerEntry struct {
	provider ServiceProvider
	booted   bool
}

// RegisterProvider registers a service provider with the container.
// The provider's Register method is called immediately. Registering a second
// provider of the same type is a no-op.
//
// Example:
//
//	container.RegisterProvider(&LoggingProvider{})
//	container.RegisterProvider(&DatabaseProvider{})
//	container.BootProviders()
func (n *Nasc) RegisterProvider(provider ServiceProvider) error {
	if provider == nil {
		return fmt.Errorf("provider cannot be nil")
	}

	if deferred, ok := provider.(DeferredProvider); ok {
		if !deferred.ShouldRegister(n) {
			n.logger.Debug("provider skipped", zap.String("provider", fmt.Sprintf("%T", provider)))
			return nil
		}
	}

	providerType := reflect.TypeOf(provider)
	for _, entry := range n.providers {
		if reflect.TypeOf(entry.provider) == providerType {
			return nil
		}
	}

	if err := provider.Register(n); err != nil {
		return fmt.Errorf("provider registration failed: %w", err)
	}

	n.providers = append(n.providers, &providerEntry{provider: provider})
	n.logger.Debug("provider registered", zap.String("provider", fmt.Sprintf("%T", provider)))
	return nil
}

// BootProviders calls Boot on every registered BootableProvider that has
// not booted yet, in registration order. It stops at the first failure.
func (n *Nasc) BootProviders() error {
	for _, entry := range n.providers {
		if entry.booted {
			continue
		}

		if bootable, ok := entry.provider.(BootableProvider); ok {
			if err := bootable.Boot(n); err != nil {
				return fmt.Errorf("provider boot failed: %w", err)
			}
			entry.booted = true
		}
	}

	return nil
}

// Providers returns the registered providers in registration order.
func (n *Nasc) Providers() []ServiceProvider {
	providers := make([]ServiceProvider, len(n.providers))
	for i, entry := range n.providers {
		providers[i] = entry.provider
	}
	return providers
}
