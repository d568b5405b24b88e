package container

import (
	"github.com/km-arc/go-kernel/framework/decorator"
	"github.com/km-arc/go-kernel/framework/metadata"
)

// Built-in decorators read by the resolver.
var (
	// InjectableDecorator marks a class as constructable by the container.
	InjectableDecorator = decorator.Create("container:injectable")

	// InjectDecorator overrides the token of a constructor or hook parameter
	// and optionally marks it as allowed to resolve to nothing.
	InjectDecorator = decorator.Create("container:inject")
)

// Injectable returns the class-level attacher marking a class injectable.
func Injectable() decorator.Attacher { return InjectableDecorator.With() }

// Inject returns a parameter attacher resolving the parameter from token.
func Inject(token Token) decorator.Attacher { return InjectDecorator.With(token) }

// Optional returns a parameter attacher that substitutes the zero value when
// resolution fails. A nil token keeps the declared parameter type.
func Optional(token Token) decorator.Attacher { return InjectDecorator.With(token, true) }

// injection is the decoded Inject metadata of one parameter.
type injection struct {
	token    Token
	override bool
	optional bool
}

func injectionAt(target metadata.Target, property string, index int) injection {
	rec, ok := metadata.GetMetadata(InjectDecorator.Key(), target, property)
	if !ok {
		return injection{}
	}
	args, ok := rec.Args(index)
	if !ok || len(args) == 0 {
		return injection{}
	}
	in := injection{token: args[0], override: args[0] != nil}
	if len(args) > 1 {
		in.optional, _ = args[1].(bool)
	}
	return in
}

func isInjectable(target metadata.Target) bool {
	_, ok := metadata.GetMetadata(InjectableDecorator.Key(), target, "")
	return ok
}

// Lifecycle is the conventional pair of phase decorators a host executes to
// bring a registered graph up and down. Build one per application and hand it
// to the code that declares hooks; there is no process-wide default.
//
//	lc := container.NewLifecycle()
//	lc.Start.With().Method(DatabaseClass, "Connect")
//	lc.Stop.With().Method(DatabaseClass, "Close")
//	out, err := c.Execute(ctx, lc.Start, nil)
type Lifecycle struct {
	Start *decorator.Decorator
	Stop  *decorator.Decorator
}

// NewLifecycle creates a Start/Stop pair with fresh keys.
func NewLifecycle() Lifecycle {
	return Lifecycle{
		Start: decorator.Create(""),
		Stop:  decorator.Create(""),
	}
}
