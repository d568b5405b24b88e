// Package merge implements the deep merge used to aggregate lifecycle hook
// results.
package merge

import (
	"reflect"

	"github.com/mohae/deepcopy"
)

// Deep merges src into dst and returns dst (allocated when nil).
//
// Keys holding maps on both sides merge recursively, keys holding slices on
// both sides concatenate, anything else is overwritten by src. Values taken
// from src are deep copies, so later merges into dst never reach back into a
// structure the caller still holds.
func Deep(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for k, sv := range src {
		dv, exists := dst[k]
		if !exists {
			dst[k] = deepcopy.Copy(sv)
			continue
		}
		dst[k] = value(dv, sv)
	}
	return dst
}

func value(dv, sv any) any {
	if dm, ok := dv.(map[string]any); ok {
		if sm, ok := sv.(map[string]any); ok {
			return Deep(dm, sm)
		}
	}
	if joined, ok := concat(dv, sv); ok {
		return joined
	}
	return deepcopy.Copy(sv)
}

// concat appends two slices. Slices of the same type keep that type, mixed
// element types fall back to []any.
func concat(dv, sv any) (any, bool) {
	d, s := reflect.ValueOf(dv), reflect.ValueOf(sv)
	if d.Kind() != reflect.Slice || s.Kind() != reflect.Slice {
		return nil, false
	}
	tail := reflect.ValueOf(deepcopy.Copy(sv))
	if d.Type() == s.Type() {
		out := reflect.MakeSlice(d.Type(), 0, d.Len()+s.Len())
		out = reflect.AppendSlice(out, d)
		return reflect.AppendSlice(out, tail).Interface(), true
	}
	out := make([]any, 0, d.Len()+s.Len())
	for i := 0; i < d.Len(); i++ {
		out = append(out, d.Index(i).Interface())
	}
	for i := 0; i < tail.Len(); i++ {
		out = append(out, tail.Index(i).Interface())
	}
	return out, true
}
