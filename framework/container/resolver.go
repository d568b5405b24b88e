package container

import (
	"reflect"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Resolve returns the singleton instance bound to token, constructing it and
// its dependencies on first use. Unseen tokens are registered on the fly, so
// an unregistered *Class resolves against itself.
//
// Resolve fails with NotInjectableError, MissingDependencyError or
// CircularDependencyError; errors returned by constructors are passed
// through unchanged.
//
// Constructors may call Resolve themselves: nested calls share the active
// resolution stack, so cycles running through them are still reported.
func (c *Container) Resolve(token Token) (any, error) {
	return c.resolveItem(token)
}

func (c *Container) resolveItem(token Token) (any, error) {
	if !comparableToken(token) {
		return nil, errors.Errorf("container: token of type %T cannot be compared by identity", token)
	}
	item := c.GetRegistrationItem(token)
	if item == nil {
		item = c.Register(token, nil)
	}
	if item.Value != nil {
		return item.Value, nil
	}

	chain := append(append(make([]Token, 0, len(c.stack)+1), c.stack...), token)
	path := tokenPath(chain)

	if cls, ok := item.Provider.(*Class); ok {
		v, err := c.construct(item, cls, path)
		if err != nil {
			return nil, err
		}
		if !isNil(v) {
			item.Value = v
		}
	} else if !isNil(item.Provider) {
		item.Value = item.Provider
	}

	if item.Value == nil && !item.Options.AllowUndefined {
		return nil, &MissingDependencyError{Path: path}
	}
	return item.Value, nil
}

func (c *Container) construct(item *RegistrationItem, cls *Class, path string) (any, error) {
	// The outermost token is not guarded: a cycle through the requested
	// token is reported once it has gone fully round, as in Bar > Foo > Bar > Foo.
	if len(c.stack) > 1 {
		for _, active := range c.stack[1:] {
			if sameToken(active, item.Token) {
				return nil, &CircularDependencyError{Path: path}
			}
		}
	}
	c.stack = append(c.stack, item.Token)
	defer func() { c.stack = c.stack[:len(c.stack)-1] }()

	explicit := item.Options.ParamTokens != nil
	if !explicit && !isInjectable(cls) {
		return nil, &NotInjectableError{Path: path}
	}

	params := item.Options.ParamTokens
	if !explicit {
		params = cls.declared
	}

	item.Dependencies = make([]Token, 0, len(params))
	args := make([]any, len(params))
	for i, declared := range params {
		in := injectionAt(cls, "", i)
		tok := declared
		if in.override && !explicit {
			tok = in.token
		}
		item.Dependencies = append(item.Dependencies, tok)

		v, err := c.resolveParam(tok, in.optional)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	c.log.Debug("constructing", zap.String("path", path), zap.Int("params", len(args)))
	return cls.construct(args)
}

// resolveParam resolves a parameter token. Optional parameters turn a
// failure into nil; unless the container is strict that covers every failure
// kind, not only a missing value.
func (c *Container) resolveParam(tok Token, optional bool) (any, error) {
	v, err := c.resolveItem(tok)
	if err == nil || !optional {
		return v, err
	}
	if !errors.Is(err, ErrMissingDependency) && c.strictOptional {
		return nil, err
	}
	if item := c.GetRegistrationItem(tok); item != nil {
		item.recovered = true
	}
	if errors.Is(err, ErrMissingDependency) {
		return nil, nil
	}
	c.log.Warn("optional dependency swallowed a resolution failure",
		zap.String("token", TokenName(tok)), zap.Error(err))
	return nil, nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
