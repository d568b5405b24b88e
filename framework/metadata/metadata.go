package metadata

import (
	"reflect"
	"sync"
)

// Key identifies one decorator family inside a Table.
type Key string

// ClassLevel is the Record slot used when a decorator is attached without a
// parameter index (class or method level).
const ClassLevel = -1

// Record maps a parameter index (or ClassLevel) to the arguments the
// decorator was called with.
type Record map[int][]any

// Args returns the arguments stored at idx.
func (r Record) Args(idx int) ([]any, bool) {
	args, ok := r[idx]
	return args, ok
}

// clone returns a shallow copy so callers never mutate a stored record.
func (r Record) clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// ── Table ─────────────────────────────────────────────────────────────────────

// Table is the metadata storage owned by a single target. Property "" holds
// class-level and constructor-parameter facts; any other property holds the
// facts of the method with that name.
type Table struct {
	mu      sync.RWMutex
	entries map[Key]map[string]Record
}

// NewTable creates an empty Table.
func NewTable() *Table {
	return &Table{entries: make(map[Key]map[string]Record)}
}

// Get returns a copy of the record stored at (key, property).
func (t *Table) Get(key Key, property string) (Record, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rec, ok := t.entries[key][property]
	if !ok {
		return nil, false
	}
	return rec.clone(), true
}

// Set replaces the record stored at (key, property).
func (t *Table) Set(key Key, property string, rec Record) {
	t.mu.Lock()
	defer t.mu.Unlock()
	props, ok := t.entries[key]
	if !ok {
		props = make(map[string]Record)
		t.entries[key] = props
	}
	props[property] = rec.clone()
}

// Has reports whether a record exists at (key, property).
func (t *Table) Has(key Key, property string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.entries[key][property]
	return ok
}

// Keys returns every decorator key with at least one record in the table.
func (t *Table) Keys() []Key {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Key, 0, len(t.entries))
	for k := range t.entries {
		out = append(out, k)
	}
	return out
}

// ── Targets ───────────────────────────────────────────────────────────────────

// Target is anything decorators can be attached to.
//
// Base returns the next target up the inheritance chain, or nil at the root.
type Target interface {
	Metadata() *Table
	Type() reflect.Type
	Base() Target
}

// GetMetadata reads the record stored under key for target.
//
// Class-level lookups (property == "") read the target's own table. Method
// lookups walk the base chain, most-derived first, so an inherited hook keeps
// the metadata its base declared.
func GetMetadata(key Key, target Target, property string) (Record, bool) {
	if target == nil {
		return nil, false
	}
	if property == "" {
		return target.Metadata().Get(key, property)
	}
	for t := target; t != nil; t = t.Base() {
		if rec, ok := t.Metadata().Get(key, property); ok {
			return rec, true
		}
	}
	return nil, false
}

// ListAllMethods returns the exported method names of target and all of its
// bases, base-class names first. Names shared by several levels are listed
// once, at the position of the most basic level declaring them.
func ListAllMethods(target Target) []string {
	var chain []Target
	for t := target; t != nil; t = t.Base() {
		chain = append(chain, t)
	}

	seen := make(map[string]bool)
	var names []string
	for i := len(chain) - 1; i >= 0; i-- {
		typ := chain[i].Type()
		if typ == nil {
			continue
		}
		for m := 0; m < typ.NumMethod(); m++ {
			name := typ.Method(m).Name
			if seen[name] {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// ListDecoratorMethods returns the methods of target carrying metadata under key.
func ListDecoratorMethods(key Key, target Target) []string {
	var out []string
	for _, name := range ListAllMethods(target) {
		if _, ok := GetMetadata(key, target, name); ok {
			out = append(out, name)
		}
	}
	return out
}
