package app

import (
	"context"
	"maps"
	"net"
	"net/http"
	"slices"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/km-arc/go-kernel/framework/config"
	"github.com/km-arc/go-kernel/framework/container"
	"github.com/km-arc/go-kernel/framework/logging"
	"github.com/km-arc/go-kernel/framework/providers"
	"github.com/km-arc/go-kernel/framework/routing"
)

// Version of the kernel.
const Version = "0.1.0"

// Application is the top-level application container.
// It embeds the IoC Container so user code can call app.Provide(),
// app.Instance() and app.Register() directly; service providers go through
// app.RegisterProvider().
type Application struct {
	*container.Container
	Providers *container.ProviderRegistry
	Lifecycle container.Lifecycle

	cfg *config.Config
	log *zap.Logger
}

// Option configures New.
type Option func(*options)

type options struct {
	envFiles    []string
	cfg         *config.Config
	log         *zap.Logger
	lifecycle   *container.Lifecycle
	controllers []container.Token
}

// WithEnvFiles loads configuration from the given .env files.
func WithEnvFiles(files ...string) Option {
	return func(o *options) { o.envFiles = files }
}

// WithConfig skips environment loading.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithLogger skips building a logger from the configuration.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithLifecycle uses lc instead of a fresh Start/Stop pair.
func WithLifecycle(lc container.Lifecycle) Option {
	return func(o *options) { o.lifecycle = &lc }
}

// WithControllers mounts the given controller tokens on the router at boot.
func WithControllers(tokens ...container.Token) Option {
	return func(o *options) { o.controllers = append(o.controllers, tokens...) }
}

// New creates the application and registers the framework core providers.
func New(opts ...Option) (*Application, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	cfg := o.cfg
	if cfg == nil {
		cfg = config.Load(o.envFiles...)
	}
	log := o.log
	if log == nil {
		var err error
		if log, err = logging.New(cfg); err != nil {
			return nil, errors.Wrap(err, "app: create logger")
		}
	}

	copts := []container.Option{container.WithStrictOptional(cfg.Container.StrictOptional)}
	if cfg.Container.Trace {
		copts = append(copts, container.WithLogger(log.Named("container")))
	}
	c := container.New(copts...)

	lc := container.NewLifecycle()
	if o.lifecycle != nil {
		lc = *o.lifecycle
	}

	a := &Application{
		Container: c,
		Providers: container.NewProviderRegistry(c),
		Lifecycle: lc,
		cfg:       cfg,
		log:       log,
	}

	// Register framework core providers
	core := []container.ServiceProvider{
		&providers.ConfigServiceProvider{Config: cfg},
		&providers.LoggingServiceProvider{Logger: log},
		&providers.RoutingServiceProvider{Controllers: o.controllers},
	}
	for _, p := range core {
		if err := a.Providers.Register(p); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// RegisterProvider adds a ServiceProvider to the application.
func (a *Application) RegisterProvider(provider container.ServiceProvider) error {
	return a.Providers.Register(provider)
}

// Boot runs the Boot() phase on all providers.
func (a *Application) Boot() error {
	return errors.Wrap(a.Providers.Boot(), "app: boot providers")
}

// Config returns the application configuration.
func (a *Application) Config() *config.Config { return a.cfg }

// Logger returns the application logger.
func (a *Application) Logger() *zap.Logger { return a.log }

// Router resolves the router from the container.
func (a *Application) Router() (*routing.Router, error) {
	return container.ResolveAs[*routing.Router](a.Container, providers.RouterToken)
}

// Start boots the providers if needed and runs the start phase.
func (a *Application) Start(ctx context.Context) (container.Output, error) {
	if !a.Providers.Booted() {
		if err := a.Boot(); err != nil {
			return nil, err
		}
	}
	input := map[string]any{"app": a.cfg.App.Name, "env": a.cfg.App.Env}
	out, err := a.Execute(ctx, a.Lifecycle.Start, input)
	if err != nil {
		return out, err
	}
	a.log.Info("application started", zap.Strings("keys", slices.Sorted(maps.Keys(out))))
	return out, nil
}

// Stop runs the stop phase.
func (a *Application) Stop(ctx context.Context) (container.Output, error) {
	out, err := a.Execute(ctx, a.Lifecycle.Stop, nil)
	if err != nil {
		return out, err
	}
	a.log.Info("application stopped")
	return out, nil
}

// Run starts the application, serves the router on APP_PORT until ctx is
// done, then shuts the server down and runs the stop phase.
func (a *Application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", ":"+a.cfg.App.Port)
	if err != nil {
		return errors.Wrapf(err, "app: listen on port %s", a.cfg.App.Port)
	}
	return a.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	if _, err := a.Start(ctx); err != nil {
		_ = ln.Close()
		return err
	}
	router, err := a.Router()
	if err != nil {
		_ = ln.Close()
		return err
	}

	srv := &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second}
	served := make(chan error, 1)
	go func() { served <- srv.Serve(ln) }()

	a.log.Info("listening",
		zap.String("addr", ln.Addr().String()),
		zap.String("env", a.cfg.App.Env))

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-served:
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Warn("shutdown", zap.Error(err))
	}
	if _, err := a.Stop(shutdownCtx); err != nil {
		return err
	}
	if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
		return errors.Wrap(serveErr, "app: serve")
	}
	return nil
}

// Environment returns APP_ENV value.
func (a *Application) Environment() string { return a.cfg.App.Env }
func (a *Application) IsLocal() bool       { return a.Environment() == "local" }
func (a *Application) IsProduction() bool  { return a.cfg.IsProduction() }
func (a *Application) IsTesting() bool     { return a.Environment() == "testing" }
func (a *Application) IsDebug() bool       { return a.cfg.App.Debug }
