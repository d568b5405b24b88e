package container

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ── Registration types ────────────────────────────────────────────────────────

// Options tune how a registration resolves.
type Options struct {
	// AllowUndefined lets the token resolve to nothing without an error.
	AllowUndefined bool

	// ParamTokens, when non-nil, replaces the constructor's parameter tokens
	// and makes the class constructable without Injectable metadata.
	ParamTokens []Token
}

// RegisterOption configures a registration.
type RegisterOption func(*Options)

// AllowUndefined lets the registration resolve to nothing.
func AllowUndefined() RegisterOption {
	return func(o *Options) { o.AllowUndefined = true }
}

// WithParams supplies the constructor parameter tokens explicitly.
func WithParams(tokens ...Token) RegisterOption {
	return func(o *Options) {
		o.ParamTokens = append([]Token{}, tokens...)
	}
}

// RegistrationItem is the container's record of one binding.
type RegistrationItem struct {
	Token    Token
	Provider any
	// Value caches the resolved instance. Once set it is never recomputed.
	Value   any
	Options Options
	// Dependencies lists the tokens discovered while constructing the item,
	// followed by the parameter tokens of its lifecycle hooks.
	Dependencies []Token

	// recovered is set when an optional parameter swallowed this item's
	// resolution failure. Execute skips such items while they stay unbuilt.
	recovered bool
}

// ── Container ─────────────────────────────────────────────────────────────────

// Container binds tokens to providers and resolves object graphs.
//
// Registration is safe from several goroutines. Resolution and Execute are
// not: the active-resolution stack and the cached values are mutated in place,
// so a host sharing one container across goroutines must serialise those calls.
type Container struct {
	mu    sync.RWMutex
	items []*RegistrationItem

	// tokens currently being constructed, outermost first
	stack []Token

	log            *zap.Logger
	strictOptional bool
}

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger used for registration, resolution and hook
// traces. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *Container) {
		if l != nil {
			c.log = l
		}
	}
}

// WithStrictOptional narrows optional parameters to swallow only
// ErrMissingDependency. By default every failure is swallowed.
func WithStrictOptional(strict bool) Option {
	return func(c *Container) { c.strictOptional = strict }
}

// New creates an empty container. The container registers itself under
// TypeKey[*Container]() so constructors may declare a *Container parameter.
func New(opts ...Option) *Container {
	c := &Container{log: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	c.Instance(TypeKey[*Container](), c)
	return c
}

// ── Registration ──────────────────────────────────────────────────────────────

// Register binds token to provider. A nil provider with a *Class token binds
// the class to itself.
//
// Register does not deduplicate: registering a token twice leaves two items
// and lookups keep returning the first one.
//
//	c.Register("config", cfg)
//	c.Register(UserRepoClass, nil)
//	c.Register(container.TypeKey[Repo](), UserRepoClass, container.WithParams("db"))
//	c.Register("tracer", nil, container.AllowUndefined())
func (c *Container) Register(token Token, provider any, opts ...RegisterOption) *RegistrationItem {
	if !comparableToken(token) {
		panic(fmt.Sprintf("container: token of type %T cannot be compared by identity", token))
	}
	if provider == nil {
		if cls, ok := token.(*Class); ok {
			provider = cls
		}
	}

	item := &RegistrationItem{Token: token, Provider: provider}
	for _, opt := range opts {
		opt(&item.Options)
	}

	c.mu.Lock()
	c.items = append(c.items, item)
	c.mu.Unlock()

	c.log.Debug("registered",
		zap.String("token", TokenName(token)),
		zap.Bool("constructable", isClass(provider)),
		zap.Bool("allowUndefined", item.Options.AllowUndefined))
	return item
}

// Instance binds token to a pre-built value.
func (c *Container) Instance(token Token, value any) *RegistrationItem {
	return c.Register(token, value)
}

// Provide registers cls under itself.
func (c *Container) Provide(cls *Class, opts ...RegisterOption) *RegistrationItem {
	return c.Register(cls, cls, opts...)
}

// GetRegistrationItem returns the first item registered for token, or nil.
func (c *Container) GetRegistrationItem(token Token) *RegistrationItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, item := range c.items {
		if sameToken(item.Token, token) {
			return item
		}
	}
	return nil
}

// Tokens returns every registered token in registration order.
func (c *Container) Tokens() []Token {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Token, len(c.items))
	for i, item := range c.items {
		out[i] = item.Token
	}
	return out
}

// Bound reports whether token has a registration.
func (c *Container) Bound(token Token) bool {
	return c.GetRegistrationItem(token) != nil
}

// Resolved reports whether token has a cached value.
func (c *Container) Resolved(token Token) bool {
	item := c.GetRegistrationItem(token)
	return item != nil && item.Value != nil
}

// ── Generics helpers ──────────────────────────────────────────────────────────

// ResolveAs resolves token and type-asserts the result.
//
//	repo, err := container.ResolveAs[*UserRepo](c, UserRepoClass)
func ResolveAs[T any](c *Container, token Token) (T, error) {
	var zero T
	v, err := c.Resolve(token)
	if err != nil || v == nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, errors.Errorf("container: ResolveAs[%s]: %s resolved to %T",
			reflect.TypeFor[T](), TokenName(token), v)
	}
	return typed, nil
}

// MustResolveAs is like ResolveAs but panics on error.
func MustResolveAs[T any](c *Container, token Token) T {
	v, err := ResolveAs[T](c, token)
	if err != nil {
		panic(err)
	}
	return v
}

func isClass(provider any) bool {
	_, ok := provider.(*Class)
	return ok
}
