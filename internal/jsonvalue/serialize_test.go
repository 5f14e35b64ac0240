package jsonvalue

import "testing"

func TestSerializeScalars(t *testing.T) {
	cases := []struct {
		value Any
		want  string
	}{
		{Null(), "null"},
		{Empty(), "null"},
		{Bool(true), "true"},
		{Bool(false), "false"},
		{Number(42), "42"},
		{Number(3.5), "3.5"},
		{String("hi\n\"there\""), `"hi\n\"there\""`},
		{Raw(`{"already":"json"}`), `{"already":"json"}`},
	}
	for _, c := range cases {
		got := c.value.String()
		if got != c.want {
			t.Errorf("String() = %q, want %q", got, c.want)
		}
	}
}

func TestSerializeObjectOrderPreserved(t *testing.T) {
	v := ObjectOf(
		Entry{"b", Number(1)},
		Entry{"a", Number(2)},
	)
	want := `{"b":1,"a":2}`
	if got := v.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestSerializeDeterministic(t *testing.T) {
	v := ObjectOf(
		Entry{"name", String("echo")},
		Entry{"items", ArrayOf(Number(1), Number(2), Bool(true))},
	)
	a, err := Serialize(v)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	b, err := Serialize(v)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if a != b {
		t.Fatalf("serialization not deterministic: %q vs %q", a, b)
	}
}

func TestSerializeCycleDetected(t *testing.T) {
	o, _ := NewObject().Object()
	o.Set("self", FromObject(o))
	if _, err := Serialize(FromObject(o)); err == nil {
		t.Fatal("expected cycle error")
	}
}

func TestSerializeErrorValue(t *testing.T) {
	e := FromError(&ErrorValue{Message: "bad"})
	want := `{"message":"bad"}`
	if got := e.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	full := FromError(&ErrorValue{Name: "TypeError", Message: "bad", Code: 7, Location: "x:1"})
	wantFull := `{"name":"TypeError","message":"bad","code":7,"location":"x:1"}`
	if got := full.String(); got != wantFull {
		t.Errorf("String() = %q, want %q", got, wantFull)
	}
}

func TestObjectSharedIdentity(t *testing.T) {
	base := NewObject()
	obj, _ := base.Object()
	obj.Set("k", String("v"))

	copy1 := base // Any is a value type, but obj pointer is shared
	copy1obj, _ := copy1.Object()
	copy1obj.Set("k2", Number(5))

	if !base.Equal(copy1) {
		t.Fatal("copies sharing the same *Object must compare equal")
	}
	origObj, _ := base.Object()
	if !origObj.Has("k2") {
		t.Fatal("mutation through a copy must be visible to the original (by-reference semantics)")
	}

	other := NewObject()
	if base.Equal(other) {
		t.Fatal("distinct objects with different content must not be equal")
	}
}
