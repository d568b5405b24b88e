package container

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"

	"github.com/km-arc/go-kernel/framework/metadata"
)

var errorType = reflect.TypeFor[error]()

// Class is a constructable provider: a constructor function plus the
// metadata decorators attached to the type it builds. A *Class is also a
// valid token, registering it without a provider binds it to itself.
//
//	var UserRepoClass = container.NewClass(NewUserRepo)
//
//	func init() {
//	    container.Injectable().Class(UserRepoClass)
//	    container.Inject("db").Param(UserRepoClass, 0)
//	}
type Class struct {
	name     string
	typ      reflect.Type
	ctor     reflect.Value
	declared []Token
	table    *metadata.Table
	base     *Class
}

// NewClass wraps ctor, which must be a non-variadic function returning
// either T or (T, error). The declared parameter tokens are the reflect.Type
// of each constructor parameter.
//
// NewClass panics when ctor has another shape: that is a programming error
// caught at package initialisation.
func NewClass(ctor any) *Class {
	v := reflect.ValueOf(ctor)
	if v.Kind() != reflect.Func || v.IsNil() {
		panic(fmt.Sprintf("container: NewClass expects a constructor function, got %T", ctor))
	}
	ft := v.Type()
	if ft.IsVariadic() {
		panic(fmt.Sprintf("container: NewClass: variadic constructor %s is not supported", ft))
	}
	switch {
	case ft.NumOut() == 1 && ft.Out(0) != errorType:
	case ft.NumOut() == 2 && ft.Out(1) == errorType:
	default:
		panic(fmt.Sprintf("container: NewClass: constructor %s must return T or (T, error)", ft))
	}

	declared := make([]Token, ft.NumIn())
	for i := range declared {
		declared[i] = ft.In(i)
	}

	return &Class{
		name:     typeName(ft.Out(0)),
		typ:      ft.Out(0),
		ctor:     v,
		declared: declared,
		table:    metadata.NewTable(),
	}
}

// Extends makes base the next metadata target up the chain: method-level
// decorators of base apply to c, and base hooks are listed before c's own.
func (c *Class) Extends(base *Class) *Class {
	c.base = base
	return c
}

// Named overrides the name shown in dependency paths.
func (c *Class) Named(name string) *Class {
	c.name = name
	return c
}

// Metadata implements metadata.Target.
func (c *Class) Metadata() *metadata.Table { return c.table }

// Type implements metadata.Target; it is the type the constructor returns.
func (c *Class) Type() reflect.Type { return c.typ }

// Base implements metadata.Target.
func (c *Class) Base() metadata.Target {
	if c.base == nil {
		return nil
	}
	return c.base
}

// DeclaredParams returns the constructor's declared parameter tokens.
func (c *Class) DeclaredParams() []Token {
	out := make([]Token, len(c.declared))
	copy(out, c.declared)
	return out
}

// String implements fmt.Stringer.
func (c *Class) String() string { return c.name }

// construct calls the constructor. Errors returned by the constructor are
// passed through untouched.
func (c *Class) construct(args []any) (any, error) {
	ft := c.ctor.Type()
	if len(args) != ft.NumIn() {
		return nil, errors.Errorf("container: %s expects %d constructor arguments, got %d", c.name, ft.NumIn(), len(args))
	}
	in := make([]reflect.Value, len(args))
	for i, a := range args {
		v, err := argValue(a, ft.In(i))
		if err != nil {
			return nil, errors.Wrapf(err, "container: %s parameter #%d", c.name, i)
		}
		in[i] = v
	}

	out := c.ctor.Call(in)
	if len(out) == 2 && !out[1].IsNil() {
		return nil, out[1].Interface().(error)
	}
	return out[0].Interface(), nil
}

// argValue converts a resolved dependency into a call argument of type want.
// nil becomes the zero value, which is how optional dependencies arrive.
func argValue(a any, want reflect.Type) (reflect.Value, error) {
	if a == nil {
		return reflect.Zero(want), nil
	}
	v := reflect.ValueOf(a)
	if !v.Type().AssignableTo(want) {
		return reflect.Value{}, errors.Errorf("%T is not assignable to %s", a, want)
	}
	return v, nil
}

func typeName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}
