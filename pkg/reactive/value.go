package reactive

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
)

// Kind tags what a Cell holds. It is decided when the cell is created and
// changes only when a write replaces a composite with a scalar or the
// reverse.
type Kind uint8

const (
	KindScalar    Kind = iota // Any non-observed value
	KindComposite             // An observed *Object
	KindComputed              // Get-only, produced by a ComputedFunc
	KindMethod                // Get-only, yields the method value itself
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "Scalar"
	case KindComposite:
		return "Composite"
	case KindComputed:
		return "Computed"
	case KindMethod:
		return "Method"
	default:
		return "Unknown"
	}
}

type undefined struct{}

func (undefined) String() string { return "undefined" }

// Undefined is the value produced by reading a path that does not resolve.
var Undefined any = undefined{}

// IsUndefined reports whether v is the Undefined sentinel.
func IsUndefined(v any) bool {
	_, ok := v.(undefined)
	return ok
}

// Field is one key/value pair of an ordered composite.
type Field struct {
	Key   string
	Value any
}

// Fields is an ordered composite. Observe keeps its order, which plain Go
// maps cannot provide.
type Fields []Field

// Get returns the value stored under key.
func (f Fields) Get(key string) (any, bool) {
	for _, field := range f {
		if field.Key == key {
			return field.Value, true
		}
	}
	return nil, false
}

// Clone returns a deep copy of f. Nested Fields, maps and slices are
// copied; other values are shared.
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	for i, fld := range f {
		out[i] = Field{Key: fld.Key, Value: cloneValue(fld.Value)}
	}
	return out
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case Fields:
		return x.Clone()
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, e := range x {
			m[k] = cloneValue(e)
		}
		return m
	case []any:
		s := make([]any, len(x))
		for i, e := range x {
			s[i] = cloneValue(e)
		}
		return s
	default:
		return v
	}
}

// asFields reports whether v is an unobserved composite and returns its
// entries in observation order. Map keys are visited in sorted order.
func asFields(v any) (Fields, bool) {
	switch m := v.(type) {
	case Fields:
		return m, true
	case map[string]any:
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fields := make(Fields, 0, len(keys))
		for _, k := range keys {
			fields = append(fields, Field{Key: k, Value: m[k]})
		}
		return fields, true
	default:
		return nil, false
	}
}

// SameValue reports whether a and b are the same value for change
// detection: == for comparable dynamic types, reference identity for maps,
// slices, funcs, channels and pointers.
func SameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	switch ta.Kind() {
	case reflect.Map, reflect.Func, reflect.Chan, reflect.Pointer, reflect.UnsafePointer:
		return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
	case reflect.Slice:
		va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
		return va.Len() == vb.Len() && va.Pointer() == vb.Pointer()
	}
	if !ta.Comparable() {
		return false
	}
	return safeEqual(a, b)
}

// safeEqual compares two values of a comparable static type. Structs and
// arrays holding interfaces can still panic at runtime; those count as
// different.
func safeEqual(a, b any) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}

// Stringify renders a resolved value for display in a document. Undefined
// and nil render as the empty string; composites render as JSON.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil, undefined:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case fmt.Stringer:
		return x.String()
	case *Object:
		b, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return string(b)
	case map[string]any, Fields, []any:
		b, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return string(b)
	}
	if reflect.TypeOf(v).Kind() == reflect.Func {
		return ""
	}
	return fmt.Sprint(v)
}
