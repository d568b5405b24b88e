package routing

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/km-arc/go-kernel/framework/container"
	"github.com/km-arc/go-kernel/framework/decorator"
	"github.com/km-arc/go-kernel/framework/metadata"
)

// RouteDecorator carries routing facts: a path prefix at class level, a
// (method, pattern) pair on handler methods.
var RouteDecorator = decorator.Create("routing:route")

// Controller marks a class as a controller mounted under prefix.
//
//	routing.Controller("/users").Class(UserControllerClass)
func Controller(prefix string) decorator.Attacher { return RouteDecorator.With(prefix) }

// Route binds a handler method to an HTTP method and pattern.
//
//	routing.Route(http.MethodGet, "/{id}").Method(UserControllerClass, "Show")
func Route(method, pattern string) decorator.Attacher {
	return RouteDecorator.With(method, pattern)
}

var handlerType = reflect.TypeFor[func(http.ResponseWriter, *http.Request)]()

// Mount resolves each token from c and registers its routed methods. Handler
// methods must have the signature func(http.ResponseWriter, *http.Request).
func (r *Router) Mount(c *container.Container, tokens ...container.Token) error {
	for _, token := range tokens {
		if err := r.mount(c, token); err != nil {
			return err
		}
	}
	return nil
}

func (r *Router) mount(c *container.Container, token container.Token) error {
	ctrl, err := c.Resolve(token)
	if err != nil {
		return errors.Wrapf(err, "routing: resolve controller %s", container.TokenName(token))
	}
	cls, ok := c.GetRegistrationItem(token).Provider.(*container.Class)
	if !ok {
		return errors.Errorf("routing: %s is not provided by a class", container.TokenName(token))
	}

	key := RouteDecorator.Key()
	var prefix string
	if rec, ok := metadata.GetMetadata(key, cls, ""); ok {
		if args, ok := rec.Args(metadata.ClassLevel); ok && len(args) > 0 {
			prefix, _ = args[0].(string)
		}
	}

	rv := reflect.ValueOf(ctrl)
	for _, name := range metadata.ListDecoratorMethods(key, cls) {
		rec, _ := metadata.GetMetadata(key, cls, name)
		args, _ := rec.Args(metadata.ClassLevel)
		if len(args) != 2 {
			return errors.Errorf("routing: %s.%s needs a method and a pattern", cls, name)
		}
		verb, _ := args[0].(string)
		pattern, _ := args[1].(string)

		m := rv.MethodByName(name)
		if !m.IsValid() || m.Type() != handlerType {
			return errors.Errorf("routing: %s.%s is not an http handler", cls, name)
		}
		h := m.Interface().(func(http.ResponseWriter, *http.Request))

		full := joinPath(prefix, pattern)
		r.mux.Method(strings.ToUpper(verb), full, http.HandlerFunc(h))
		r.log.Debug("route mounted",
			zap.String("method", verb),
			zap.String("path", full),
			zap.String("handler", cls.String()+"."+name))
	}
	return nil
}

func joinPath(prefix, pattern string) string {
	p := strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(pattern, "/")
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	return p
}
