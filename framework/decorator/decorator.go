// Package decorator creates decorator identities: keyed callables that record
// their call arguments as metadata on a class, a constructor parameter, a
// method or a method parameter.
//
//	start := decorator.Create("")                  // fresh opaque key
//	start.With().Method(cls, "Open")               // method level
//	container.Inject("db").Param(cls, 0)           // constructor parameter
package decorator

import (
	"github.com/google/uuid"

	"github.com/km-arc/go-kernel/framework/metadata"
)

// Decorator is a decorator identity.
type Decorator struct {
	key metadata.Key
}

// Create returns a decorator identified by key. An empty key yields a fresh
// opaque key so independent decorator families never collide.
func Create(key metadata.Key) *Decorator {
	if key == "" {
		key = metadata.Key("decorator:" + uuid.NewString())
	}
	return &Decorator{key: key}
}

// Key returns the metadata key the decorator writes under.
func (d *Decorator) Key() metadata.Key { return d.key }

// String implements fmt.Stringer.
func (d *Decorator) String() string { return string(d.key) }

// With captures call arguments and returns the attacher that records them.
func (d *Decorator) With(args ...any) Attacher {
	return Attacher{key: d.key, args: args}
}

// Attacher records one decorator call at an attachment point.
type Attacher struct {
	key  metadata.Key
	args []any
}

// Apply records the call arguments on target.
//
// property "" addresses the class itself; index < 0 means "no parameter
// index", which stores the arguments in the metadata.ClassLevel slot.
// Applying twice at the same point overwrites the earlier arguments.
func (a Attacher) Apply(target metadata.Target, property string, index int) {
	table := target.Metadata()
	rec, ok := table.Get(a.key, property)
	if !ok {
		rec = metadata.Record{}
	}
	slot := metadata.ClassLevel
	if index >= 0 {
		slot = index
	}
	rec[slot] = a.args
	table.Set(a.key, property, rec)
}

// Class attaches at class level.
func (a Attacher) Class(target metadata.Target) { a.Apply(target, "", -1) }

// Param attaches to constructor parameter index.
func (a Attacher) Param(target metadata.Target, index int) { a.Apply(target, "", index) }

// Method attaches to the method named name.
func (a Attacher) Method(target metadata.Target, name string) { a.Apply(target, name, -1) }

// MethodParam attaches to parameter index of method name.
func (a Attacher) MethodParam(target metadata.Target, name string, index int) {
	a.Apply(target, name, index)
}
