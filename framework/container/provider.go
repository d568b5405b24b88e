package container

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider groups related registrations.
//
// Register binds tokens into the container and must not resolve anything.
// Boot runs once every provider is registered, so it may resolve bindings
// contributed by other providers.
//
//	type DatabaseProvider struct{ container.BaseProvider }
//
//	func (p *DatabaseProvider) Register(c *container.Container) {
//	    c.Provide(DatabaseClass)
//	    c.Register(container.TypeKey[*Database](), DatabaseClass)
//	}
type ServiceProvider interface {
	Register(c *Container)
	Boot(c *Container) error
}

// BaseProvider is an embeddable no-op Boot.
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ *Container) error { return nil }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry registers and boots ServiceProviders against one container.
type ProviderRegistry struct {
	c          *Container
	providers  []ServiceProvider
	registered map[ServiceProvider]bool
	booted     bool
}

// NewProviderRegistry creates a registry bound to c.
func NewProviderRegistry(c *Container) *ProviderRegistry {
	return &ProviderRegistry{
		c:          c,
		registered: make(map[ServiceProvider]bool),
	}
}

// Register calls provider.Register once per provider value. A provider added
// after Boot is booted immediately.
func (r *ProviderRegistry) Register(provider ServiceProvider) error {
	if r.registered[provider] {
		return nil
	}
	r.registered[provider] = true

	provider.Register(r.c)
	r.providers = append(r.providers, provider)

	if r.booted {
		return provider.Boot(r.c)
	}
	return nil
}

// Boot calls Boot on every provider in registration order. Later calls are
// no-ops.
func (r *ProviderRegistry) Boot() error {
	if r.booted {
		return nil
	}
	r.booted = true
	for _, provider := range r.providers {
		if err := provider.Boot(r.c); err != nil {
			return err
		}
	}
	return nil
}

// Booted reports whether Boot has been called.
func (r *ProviderRegistry) Booted() bool { return r.booted }

// Providers returns the registered providers in order.
func (r *ProviderRegistry) Providers() []ServiceProvider { return r.providers }
