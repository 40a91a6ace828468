package jsonvalue

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestParseShapes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		kind Kind
	}{
		{name: "object", in: `{"a":1}`, kind: KindObject},
		{name: "array", in: `[1,2,3]`, kind: KindArray},
		{name: "string", in: `"hi"`, kind: KindString},
		{name: "number", in: `3.5`, kind: KindNumber},
		{name: "bool", in: `true`, kind: KindBool},
		{name: "null", in: `null`, kind: KindNull},
		{name: "whitespace", in: "  {}\n", kind: KindObject},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Parse([]byte(tt.in))
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.in, err)
			}
			if v.Kind() != tt.kind {
				t.Fatalf("kind = %s, want %s", v.Kind(), tt.kind)
			}
		})
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, in := range []string{``, `{`, `{"a":}`, `[1 2]`, `{"a":1} trailing`, `1 2`, `nope`} {
		if _, err := Parse([]byte(in)); err == nil {
			t.Fatalf("Parse(%q) expected error", in)
		}
	}
}

func TestParseNestingLimit(t *testing.T) {
	atLimit := strings.Repeat("[", MaxDepth) + strings.Repeat("]", MaxDepth)
	v, err := Parse([]byte(atLimit))
	if err != nil {
		t.Fatalf("Parse at max depth: %v", err)
	}
	if v.Kind() != KindArray {
		t.Fatalf("kind = %v", v.Kind())
	}

	for _, in := range []string{
		strings.Repeat("[", 20000) + strings.Repeat("]", 20000),
		strings.Repeat(`{"a":`, 20000) + "1" + strings.Repeat("}", 20000),
		strings.Repeat("[", 3_000_000),
	} {
		if _, err := Parse([]byte(in)); !errors.Is(err, ErrMaxDepth) {
			t.Fatalf("Parse(%d bytes) err = %v, want ErrMaxDepth", len(in), err)
		}
	}
}

func TestParseKeepsNumberLiteral(t *testing.T) {
	v, err := Parse([]byte(`{"id":101,"ratio":0.25}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	id, _ := v.Get("id")
	if n, ok := id.AsNumber(); !ok || n != "101" {
		t.Fatalf("id = %v", id)
	}
	if i, ok := id.Int64(); !ok || i != 101 {
		t.Fatalf("Int64 = %d %v", i, ok)
	}
	ratio, _ := v.Get("ratio")
	if _, ok := ratio.Int64(); ok {
		t.Fatalf("expected non-integral ratio to fail Int64")
	}
	if f, ok := ratio.Float64(); !ok || f != 0.25 {
		t.Fatalf("Float64 = %v %v", f, ok)
	}
}

func TestMarshalSortsKeys(t *testing.T) {
	v := Object(map[string]Value{
		"userId": Int(1),
		"body":   String("bar"),
		"tags":   Array(String("x"), Null(), Bool(false)),
	})
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"body":"bar","tags":["x",null,false],"userId":1}`
	if string(raw) != want {
		t.Fatalf("got %s, want %s", raw, want)
	}
}

func TestEqualComparesNumbersByValue(t *testing.T) {
	a, _ := Parse([]byte(`{"n":1,"list":[1,2]}`))
	b, _ := Parse([]byte(`{"list":[1.0,2],"n":1e0}`))
	if !a.Equal(b) {
		t.Fatalf("expected %s == %s", a, b)
	}
	c, _ := Parse([]byte(`{"n":2,"list":[1,2]}`))
	if a.Equal(c) {
		t.Fatalf("expected %s != %s", a, c)
	}
}

func TestFromAny(t *testing.T) {
	v, err := FromAny(map[string]any{"title": "foo", "userId": 1})
	if err != nil {
		t.Fatalf("FromAny: %v", err)
	}
	if v.Kind() != KindObject || v.Len() != 2 {
		t.Fatalf("unexpected value %s", v)
	}
	if _, err := FromAny(make(chan int)); err == nil {
		t.Fatalf("expected error for channel")
	}
}

func TestAccessorsCopy(t *testing.T) {
	v := Array(Int(1), Int(2))
	items, ok := v.AsArray()
	if !ok {
		t.Fatalf("expected array")
	}
	items[0] = String("mutated")
	again, _ := v.AsArray()
	if again[0].Kind() != KindNumber {
		t.Fatalf("array mutated through accessor")
	}
}

func TestUnmarshalIntoValue(t *testing.T) {
	var payload struct {
		Data Value `json:"data"`
	}
	if err := json.Unmarshal([]byte(`{"data":[{"a":true}]}`), &payload); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if payload.Data.Kind() != KindArray || payload.Data.Len() != 1 {
		t.Fatalf("data = %s", payload.Data)
	}
	if got := payload.Data.Interface().([]any)[0].(map[string]any)["a"]; got != true {
		t.Fatalf("Interface = %v", got)
	}
}
