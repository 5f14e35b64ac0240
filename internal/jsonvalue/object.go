package jsonvalue

// Object is an insertion-order-preserving String -> Any map. It is
// always referenced through a pointer so that copying the Any that
// wraps it shares the same underlying map (spec.md's "by-reference
// semantics for composite values").
type Object struct {
	order  []string
	values map[string]Any
}

func newObject() *Object {
	return &Object{values: make(map[string]Any)}
}

// Set inserts or overwrites key. First insertion fixes the key's
// position in iteration order; subsequent Sets on the same key do not
// move it.
func (o *Object) Set(key string, value Any) {
	if _, exists := o.values[key]; !exists {
		o.order = append(o.order, key)
	}
	o.values[key] = value
}

// Get returns the value at key, or Empty if absent.
func (o *Object) Get(key string) Any {
	if v, ok := o.values[key]; ok {
		return v
	}
	return Empty()
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.values[key]
	return ok
}

// Delete removes key, if present.
func (o *Object) Delete(key string) {
	if _, ok := o.values[key]; !ok {
		return
	}
	delete(o.values, key)
	for i, k := range o.order {
		if k == key {
			o.order = append(o.order[:i], o.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of entries.
func (o *Object) Len() int { return len(o.order) }

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	out := make([]string, len(o.order))
	copy(out, o.order)
	return out
}

// Range calls fn for each entry in insertion order, stopping early if
// fn returns false.
func (o *Object) Range(fn func(key string, value Any) bool) {
	for _, k := range o.order {
		if !fn(k, o.values[k]) {
			return
		}
	}
}

// ObjectOf builds an Object from key/value pairs supplied in order,
// mirroring JSON::Object::Entries initializer-list construction.
func ObjectOf(pairs ...Entry) Any {
	o := newObject()
	for _, p := range pairs {
		o.Set(p.Key, p.Value)
	}
	return FromObject(o)
}

// Entry is one key/value pair used by ObjectOf.
type Entry struct {
	Key   string
	Value Any
}
