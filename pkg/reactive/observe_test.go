package reactive

import (
	"errors"
	"reflect"
	"testing"
)

func sampleData() map[string]any {
	return map[string]any{
		"person": map[string]any{
			"name": "alice",
			"age":  40,
			"son": map[string]any{
				"name": "bob",
				"age":  14,
			},
		},
	}
}

func mustObserve(t *testing.T, data any, opts ...Option) *Object {
	t.Helper()
	root, err := Observe(data, opts...)
	if err != nil {
		t.Fatalf("Observe: %v", err)
	}
	return root
}

func TestObserveInterceptsEveryLevel(t *testing.T) {
	data := sampleData()
	root := mustObserve(t, data)

	var walk func(plain map[string]any, obj *Object)
	walk = func(plain map[string]any, obj *Object) {
		if obj.Len() != len(plain) {
			t.Fatalf("%q: got %d keys, want %d", obj.Path(), obj.Len(), len(plain))
		}
		for key, v := range plain {
			c, ok := obj.Cell(key)
			if !ok {
				t.Fatalf("%q: key %q not intercepted", obj.Path(), key)
			}
			if c.Dep() == nil {
				t.Errorf("%q: no dep", c.Path())
			}
			if nested, ok := v.(map[string]any); ok {
				if c.Kind() != KindComposite {
					t.Fatalf("%q: kind = %v, want Composite", c.Path(), c.Kind())
				}
				walk(nested, c.Peek().(*Object))
			} else if c.Kind() != KindScalar {
				t.Errorf("%q: kind = %v, want Scalar", c.Path(), c.Kind())
			}
		}
	}
	walk(data, root)
}

func TestObserveKeepsFieldOrder(t *testing.T) {
	root := mustObserve(t, Fields{
		{Key: "zeta", Value: 1},
		{Key: "alpha", Value: Fields{{Key: "y", Value: 2}, {Key: "x", Value: 3}}},
	})

	if got := root.Keys(); !reflect.DeepEqual(got, []string{"zeta", "alpha"}) {
		t.Errorf("root keys = %v", got)
	}
	alpha, _ := root.Get("alpha")
	if got := alpha.(*Object).Keys(); !reflect.DeepEqual(got, []string{"y", "x"}) {
		t.Errorf("alpha keys = %v", got)
	}
}

func TestObserveSortsMapKeys(t *testing.T) {
	root := mustObserve(t, map[string]any{"b": 1, "a": 2, "c": 3})
	if got := root.Keys(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("keys = %v", got)
	}
}

func TestObserveRejectsScalar(t *testing.T) {
	if _, err := Observe(42); !errors.Is(err, ErrNotComposite) {
		t.Errorf("err = %v, want ErrNotComposite", err)
	}
	if _, err := Observe(nil); !errors.Is(err, ErrNotComposite) {
		t.Errorf("nil: err = %v, want ErrNotComposite", err)
	}
}

func TestObserveObjectIsIdentity(t *testing.T) {
	root := mustObserve(t, sampleData())
	again, err := Observe(root)
	if err != nil {
		t.Fatal(err)
	}
	if again != root {
		t.Error("observing an observed object should return it unchanged")
	}
}

func TestCellPaths(t *testing.T) {
	root := mustObserve(t, sampleData())
	person, _ := root.Get("person")
	son, _ := person.(*Object).Get("son")
	c, _ := son.(*Object).Cell("name")
	if c.Path() != "person.son.name" {
		t.Errorf("path = %q", c.Path())
	}
	if c.Dep().Path() != "person.son.name" {
		t.Errorf("dep path = %q", c.Dep().Path())
	}
}

func TestSetNewKeyAddsProperty(t *testing.T) {
	root := mustObserve(t, sampleData())
	if err := root.Set("title", "hello"); err != nil {
		t.Fatal(err)
	}
	if v, ok := root.Get("title"); !ok || v != "hello" {
		t.Errorf("title = %v, %v", v, ok)
	}
	if keys := root.Keys(); keys[len(keys)-1] != "title" {
		t.Errorf("new key should be appended, keys = %v", keys)
	}
}

func TestSetCompositeStaysUnobserved(t *testing.T) {
	root := mustObserve(t, sampleData())
	scope := NewScope(root)

	fresh := map[string]any{"name": "dan"}
	if err := scope.Assign("person.son", fresh); err != nil {
		t.Fatal(err)
	}
	c, _ := mustGetObject(t, root, "person").Cell("son")
	if c.Kind() != KindScalar {
		t.Errorf("kind = %v, want Scalar (unobserved composite)", c.Kind())
	}
	if got := scope.Get("person.son.name"); got != "dan" {
		t.Errorf("person.son.name = %v, want dan", got)
	}

	// Writes into the fresh composite are plain writes: no notification.
	count := 0
	if _, err := NewWatcher(scope, "person.son.name", func(any) { count++ }); err != nil {
		t.Fatal(err)
	}
	if err := scope.Assign("person.son.name", "eve"); err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("unobserved write notified %d times", count)
	}
	if fresh["name"] != "eve" {
		t.Errorf("fresh[name] = %v", fresh["name"])
	}
}

func TestSnapshotAndJSON(t *testing.T) {
	root := mustObserve(t, Fields{
		{Key: "b", Value: 1},
		{Key: "a", Value: Fields{{Key: "x", Value: "y"}}},
	})
	_ = root.DefineComputed("c", func(Scope) any { return 3 })

	snap := root.Snapshot()
	want := map[string]any{"b": 1, "a": map[string]any{"x": "y"}}
	if !reflect.DeepEqual(snap, want) {
		t.Errorf("snapshot = %#v", snap)
	}
	if got := Stringify(root); got != `{"b":1,"a":{"x":"y"}}` {
		t.Errorf("json = %s", got)
	}
}

func mustGetObject(t *testing.T, o *Object, key string) *Object {
	t.Helper()
	v, ok := o.Get(key)
	if !ok {
		t.Fatalf("missing %q", key)
	}
	obj, ok := v.(*Object)
	if !ok {
		t.Fatalf("%q is %T, not *Object", key, v)
	}
	return obj
}
