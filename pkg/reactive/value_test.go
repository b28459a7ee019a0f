package reactive

import "testing"

func TestSameValue(t *testing.T) {
	m := map[string]any{"a": 1}
	s := []int{1, 2}
	p := &struct{ X int }{1}

	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"equal ints", 1, 1, true},
		{"different ints", 1, 2, false},
		{"int vs string", 1, "1", false},
		{"int vs int64", 1, int64(1), false},
		{"equal strings", "a", "a", true},
		{"nil nil", nil, nil, true},
		{"nil vs value", nil, 0, false},
		{"same map", m, m, true},
		{"equal but distinct maps", m, map[string]any{"a": 1}, false},
		{"same slice", s, s, true},
		{"resliced", s, s[:1], false},
		{"same pointer", p, p, true},
		{"undefined", Undefined, Undefined, true},
		{"undefined vs nil", Undefined, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SameValue(tt.a, tt.b); got != tt.want {
				t.Errorf("SameValue(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestStringify(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{Undefined, ""},
		{nil, ""},
		{"x", "x"},
		{40, "40"},
		{int64(7), "7"},
		{1.5, "1.5"},
		{true, "true"},
		{func() {}, ""},
		{map[string]any{"a": 1}, `{"a":1}`},
		{Fields{{Key: "b", Value: 2}, {Key: "a", Value: 1}}, `{"b":2,"a":1}`},
	}
	for _, tt := range tests {
		if got := Stringify(tt.in); got != tt.want {
			t.Errorf("Stringify(%#v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestKindString(t *testing.T) {
	if KindComposite.String() != "Composite" || Kind(99).String() != "Unknown" {
		t.Error("unexpected Kind strings")
	}
}
