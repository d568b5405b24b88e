package container

import (
	"context"
	"reflect"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/km-arc/go-kernel/framework/decorator"
	"github.com/km-arc/go-kernel/framework/merge"
	"github.com/km-arc/go-kernel/framework/metadata"
)

var contextType = reflect.TypeFor[context.Context]()

// Output aggregates the results of one execution pass.
type Output map[string]any

// Decode copies the output into dst, usually a pointer to a struct.
//
//	var started struct{ Addr string; Routes []string }
//	err := out.Decode(&started)
func (o Output) Decode(dst any) error {
	return mapstructure.Decode(map[string]any(o), dst)
}

// session is one execution pass.
type session struct {
	ctx     context.Context
	key     metadata.Key
	visited []Token
	output  Output
}

func (s *session) seen(token Token) bool {
	for _, t := range s.visited {
		if sameToken(t, token) {
			return true
		}
	}
	return false
}

// Execute runs every method tagged with dec on every constructable
// registration, in registration order, dependencies first. Each node runs at
// most once per call; calling Execute again runs the hooks again.
//
// Hook return values are deep-merged into the returned Output, which starts
// as a copy of input. Hooks run one at a time; a cancelled ctx stops the pass
// before the next hook. Errors from constructors and hooks are returned
// unchanged.
func (c *Container) Execute(ctx context.Context, dec *decorator.Decorator, input map[string]any) (Output, error) {
	if dec == nil {
		return nil, errors.New("container: Execute needs a decorator")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	s := &session{
		ctx:    ctx,
		key:    dec.Key(),
		output: merge.Deep(nil, input),
	}
	for _, token := range c.Tokens() {
		if err := c.executeItem(s, token); err != nil {
			return s.output, err
		}
	}
	return s.output, nil
}

func (c *Container) executeItem(s *session, token Token) error {
	item := c.GetRegistrationItem(token)
	if item == nil {
		return nil
	}
	cls, ok := item.Provider.(*Class)
	if !ok {
		return nil
	}
	if item.Value == nil {
		if item.recovered {
			return nil
		}
		if _, err := c.Resolve(token); err != nil {
			return err
		}
	}
	if s.seen(token) {
		return nil
	}
	s.visited = append(s.visited, token)

	deps := append([]Token(nil), item.Dependencies...)
	for _, dep := range deps {
		if err := c.executeItem(s, dep); err != nil {
			return err
		}
	}

	if item.Value == nil {
		// AllowUndefined class that built nothing
		return nil
	}
	for _, name := range metadata.ListDecoratorMethods(s.key, cls) {
		if err := c.runHook(s, item, cls, name); err != nil {
			return err
		}
	}
	return nil
}

func (c *Container) runHook(s *session, item *RegistrationItem, cls *Class, name string) error {
	method := reflect.ValueOf(item.Value).MethodByName(name)
	if !method.IsValid() {
		return errors.Errorf("container: %s has no method %s", cls, name)
	}
	mt := method.Type()

	args := make([]reflect.Value, mt.NumIn())
	for i := range args {
		pt := mt.In(i)
		in := injectionAt(cls, name, i)
		if !in.override && pt == contextType {
			args[i] = reflect.ValueOf(&s.ctx).Elem()
			continue
		}

		tok := Token(pt)
		if in.override {
			tok = in.token
		}
		addDependency(item, tok)

		v, err := c.resolveParam(tok, in.optional)
		if err != nil {
			return err
		}
		if err := c.executeItem(s, tok); err != nil {
			return err
		}
		av, err := argValue(v, pt)
		if err != nil {
			return errors.Wrapf(err, "container: %s.%s parameter #%d", cls, name, i)
		}
		args[i] = av
	}

	if err := s.ctx.Err(); err != nil {
		return err
	}

	c.log.Debug("running hook",
		zap.String("token", TokenName(item.Token)),
		zap.String("method", name),
		zap.String("phase", string(s.key)))

	var out []reflect.Value
	if mt.IsVariadic() {
		out = method.CallSlice(args)
	} else {
		out = method.Call(args)
	}
	return s.collect(out)
}

// collect merges a hook's result into the session output. A trailing error
// result is returned as is.
func (s *session) collect(out []reflect.Value) error {
	if n := len(out); n > 0 && out[n-1].Type() == errorType {
		if !out[n-1].IsNil() {
			return out[n-1].Interface().(error)
		}
		out = out[:n-1]
	}
	if len(out) == 0 {
		return nil
	}

	result := out[0].Interface()
	if isNil(result) {
		return nil
	}
	switch r := result.(type) {
	case map[string]any:
		s.output = merge.Deep(s.output, r)
		return nil
	case Output:
		s.output = merge.Deep(s.output, r)
		return nil
	}

	rv := reflect.Indirect(reflect.ValueOf(result))
	if rv.Kind() != reflect.Struct && rv.Kind() != reflect.Map {
		// scalars carry no keys to merge
		return nil
	}
	var fields map[string]any
	if err := mapstructure.Decode(result, &fields); err != nil {
		return errors.Wrap(err, "container: decode hook result")
	}
	s.output = merge.Deep(s.output, fields)
	return nil
}

func addDependency(item *RegistrationItem, tok Token) {
	for _, d := range item.Dependencies {
		if sameToken(d, tok) {
			return
		}
	}
	item.Dependencies = append(item.Dependencies, tok)
}
