package container

import (
	"fmt"
	"reflect"
	"strings"
)

// Token identifies a binding. Any comparable value works: a reflect.Type
// (see TypeKey), a string, a *Symbol or a *Class. Function values are not
// comparable in Go and cannot be tokens, use a *Symbol instead.
type Token = any

// Symbol is an opaque token compared by identity. Two symbols created with
// the same name are still distinct bindings.
type Symbol struct {
	name string
}

// NewSymbol creates a new opaque token. name is only used in diagnostics.
func NewSymbol(name string) *Symbol { return &Symbol{name: name} }

// String implements fmt.Stringer.
func (s *Symbol) String() string { return "Symbol(" + s.name + ")" }

// TypeKey returns the reflect.Type token for T.
//
//	c.Register(container.TypeKey[*Config](), cfg)
//	cfg, err := container.ResolveAs[*Config](c, container.TypeKey[*Config]())
func TypeKey[T any]() Token {
	return reflect.TypeFor[T]()
}

// TokenName renders a token for error paths and logs.
func TokenName(t Token) string {
	switch v := t.(type) {
	case nil:
		return "<nil>"
	case string:
		return v
	case reflect.Type:
		return v.String()
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

func tokenPath(tokens []Token) string {
	names := make([]string, len(tokens))
	for i, t := range tokens {
		names[i] = TokenName(t)
	}
	return strings.Join(names, " > ")
}

// sameToken compares two tokens by identity without panicking on values
// whose dynamic type is not comparable.
func sameToken(a, b Token) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

func comparableToken(t Token) bool {
	return t != nil && reflect.TypeOf(t).Comparable()
}
