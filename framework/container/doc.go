// Package container provides the IoC container at the heart of the kernel:
// a registry of tokens bound to providers, a resolver that builds singleton
// object graphs, and a lifecycle executor that runs phase hooks across the
// whole graph in dependency order.
//
// # Overview
//
// A token is any comparable value: a reflect.Type, a string, a *Symbol or a
// *Class. A provider is either a *Class, which the container constructs, or
// a plain value handed out as is. Every resolved value is cached for the
// lifetime of the container.
//
// Go has no decorators and cannot map a constructor parameter's type to a
// class on its own, so facts that other platforms attach with annotations
// are recorded explicitly on the *Class through the decorator package.
//
// # Container Lifecycle
//
//  1. Create: c := container.New(container.WithLogger(log))
//  2. Register classes and values (directly or through a ProviderRegistry)
//  3. Execute the start phase: c.Execute(ctx, lc.Start, nil)
//  4. Serve
//  5. Execute the stop phase: c.Execute(ctx, lc.Stop, nil)
//
// # Classes
//
//	var RepoClass = container.NewClass(func(db *sql.DB, log *zap.Logger) *Repo {
//	    return &Repo{db: db, log: log}
//	})
//
//	func init() {
//	    container.Injectable().Class(RepoClass)
//	    container.Inject("db").Param(RepoClass, 0)     // override the declared type
//	    container.Optional(nil).Param(RepoClass, 1)    // zero value when unavailable
//	}
//
// # Registering
//
//	// Self-registration: the class is its own token
//	c.Provide(RepoClass)
//
//	// Type token bound to a class
//	c.Register(container.TypeKey[*Repo](), RepoClass)
//
//	// Explicit parameter list, no Injectable metadata needed
//	c.Register(RepoClass, nil, container.WithParams("db", container.TypeKey[*zap.Logger]()))
//
//	// Pre-built value
//	c.Instance("db", db)
//
//	// Allowed to be absent
//	c.Register("tracer", nil, container.AllowUndefined())
//
// # Resolving
//
//	raw, err := c.Resolve(RepoClass)
//	repo, err := container.ResolveAs[*Repo](c, RepoClass)
//
//	// Lazy handle, resolved on every access
//	p := container.ResolveProxy(c, RepoClass, func(v any) *Repo { return v.(*Repo) })
//
// # Lifecycle hooks
//
//	lc := container.NewLifecycle()
//	lc.Start.With().Method(RepoClass, "Migrate")
//	lc.Stop.With().Method(RepoClass, "Close")
//
//	out, err := c.Execute(ctx, lc.Start, nil)
//
// Hooks of a class's constructor dependencies run before the class's own
// hooks. Hook parameters are resolved like constructor parameters; a
// context.Context parameter receives the execution context. Maps and structs
// returned by hooks are deep-merged into the Output.
//
// # Service Providers
//
//	registry := container.NewProviderRegistry(c)
//	registry.Register(&DatabaseProvider{})
//	err := registry.Boot()
package container
