package providers

import (
	"go.uber.org/zap"

	"github.com/km-arc/go-kernel/framework/config"
	"github.com/km-arc/go-kernel/framework/container"
	"github.com/km-arc/go-kernel/framework/logging"
	"github.com/km-arc/go-kernel/framework/routing"
)

// Tokens bound by the framework providers.
var (
	ConfigToken = container.TypeKey[*config.Config]()
	LoggerToken = container.TypeKey[*zap.Logger]()
	RouterToken = container.TypeKey[*routing.Router]()
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider binds the application configuration.
//
// Bound tokens:
//   - ConfigToken → *config.Config
//
// When Config is nil the configuration is loaded from EnvFiles on first
// resolution.
type ConfigServiceProvider struct {
	container.BaseProvider
	Config   *config.Config
	EnvFiles []string
}

func (p *ConfigServiceProvider) Register(c *container.Container) {
	if p.Config != nil {
		c.Instance(ConfigToken, p.Config)
	} else {
		envFiles := p.EnvFiles
		cls := container.NewClass(func() *config.Config { return config.Load(envFiles...) }).Named("Config")
		c.Register(ConfigToken, cls, container.WithParams())
	}
}

// ── LoggingServiceProvider ────────────────────────────────────────────────────

// LoggingServiceProvider binds the zap logger.
//
// Bound tokens:
//   - LoggerToken → *zap.Logger
//
// A nil Logger is built from the bound configuration with logging.New.
type LoggingServiceProvider struct {
	Logger *zap.Logger
}

var loggerClass = container.NewClass(logging.New).Named("Logger")

func (p *LoggingServiceProvider) Register(c *container.Container) {
	if p.Logger != nil {
		c.Instance(LoggerToken, p.Logger)
		return
	}
	c.Register(LoggerToken, loggerClass, container.WithParams(ConfigToken))
}

// Boot builds the logger so a bad LOG_LEVEL or LOG_FORMAT fails the boot.
func (p *LoggingServiceProvider) Boot(c *container.Container) error {
	log, err := container.ResolveAs[*zap.Logger](c, LoggerToken)
	if err != nil {
		return err
	}
	log.Debug("logger ready")
	return nil
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider registers the HTTP router and mounts controllers.
//
// Bound tokens:
//   - RouterToken → *routing.Router
//
// Controllers are resolved and mounted during Boot, after every provider
// has registered its bindings.
type RoutingServiceProvider struct {
	Controllers []container.Token
}

var routerClass = container.NewClass(func(log *zap.Logger) *routing.Router {
	return routing.New(routing.WithLogger(log))
}).Named("Router")

func (p *RoutingServiceProvider) Register(c *container.Container) {
	c.Register(RouterToken, routerClass, container.WithParams(LoggerToken))
}

func (p *RoutingServiceProvider) Boot(c *container.Container) error {
	router, err := container.ResolveAs[*routing.Router](c, RouterToken)
	if err != nil {
		return err
	}
	return router.Mount(c, p.Controllers...)
}
